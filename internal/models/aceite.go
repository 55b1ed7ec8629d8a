// server/internal/models/aceite.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Aceite es una entrada del catálogo de referencia de aceites: SKU único y
// litros por tambor, usado para reconstruir costo/pvp por litro.
type Aceite struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Sku             string             `bson:"sku" json:"sku"`
	LitrosPorTambor float64            `bson:"litrosPorTambor" json:"litrosPorTambor"`
	Auditoria       AuditoriaAceite    `bson:"auditoria" json:"auditoria"`
}

type AuditoriaAceite struct {
	FechaCreacion        time.Time `bson:"fechaCreacion" json:"fechaCreacion"`
	FechaActualizacion   time.Time `bson:"fechaActualizacion" json:"fechaActualizacion"`
	UsuarioCreacion      string    `bson:"usuarioCreacion" json:"usuarioCreacion"`
	UsuarioActualizacion string    `bson:"usuarioActualizacion" json:"usuarioActualizacion"`
}

// NormalizarSku aplica la normalización usada en escritura y en búsqueda.
func NormalizarSku(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}
