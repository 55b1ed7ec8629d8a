// server/internal/models/taller.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Taller mapea un código de taller a su nombre visible. Varios códigos pueden
// compartir el mismo nombre; las estadísticas agrupan por nombre.
type Taller struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Codigo             string             `bson:"codigo" json:"codigo"`
	Nombre             string             `bson:"nombre" json:"nombre"`
	Activo             bool               `bson:"activo" json:"activo"`
	FechaCreacion      time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
	FechaActualizacion time.Time          `bson:"fechaActualizacion" json:"fechaActualizacion"`
}
