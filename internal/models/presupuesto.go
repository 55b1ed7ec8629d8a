// server/internal/models/presupuesto.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Estados válidos de un presupuesto.
const (
	EstadoAbierto   = "Abierto"
	EstadoAceptado  = "Aceptado"
	EstadoRechazado = "Rechazado"
)

// Subestados derivados de un presupuesto abierto. Nunca se persisten.
const (
	SubestadoEnEspera  = "En espera"
	SubestadoPendiente = "Pendiente"
)

// EsEstadoValido indica si el valor es un estado reconocido.
func EsEstadoValido(estado string) bool {
	switch estado {
	case EstadoAbierto, EstadoAceptado, EstadoRechazado:
		return true
	}
	return false
}

// Pieza es una línea del presupuesto. Para aceites, costo y pvp vienen a nivel
// tambor desde la planilla; los valores por unidad se derivan en lectura.
type Pieza struct {
	Pieza    string  `bson:"pieza" json:"pieza"`
	Concepto string  `bson:"concepto" json:"concepto"`
	Cantidad float64 `bson:"cantidad" json:"cantidad"`
	Costo    float64 `bson:"costo" json:"costo"`
	Pvp      float64 `bson:"pvp" json:"pvp"`
	Importe  float64 `bson:"importe" json:"importe"`

	// Campos derivados, solo en respuestas.
	CostoCalculado *float64 `bson:"-" json:"costoCalculado,omitempty"`
	PvpCalculado   *float64 `bson:"-" json:"pvpCalculado,omitempty"`
	EsAceite       bool     `bson:"-" json:"esAceite,omitempty"`
}

type Comentario struct {
	ID      int64     `bson:"id" json:"id"`
	Texto   string    `bson:"texto" json:"texto"`
	Fecha   time.Time `bson:"fecha" json:"fecha"`
	Usuario string    `bson:"usuario" json:"usuario"`
}

type Adjunto struct {
	NombreOriginal string    `bson:"nombreOriginal" json:"nombreOriginal"`
	NombreArchivo  string    `bson:"nombreArchivo" json:"nombreArchivo"`
	Tamanio        int64     `bson:"tamanio" json:"tamanio"`
	Tipo           string    `bson:"tipo" json:"tipo"`
	FechaSubida    time.Time `bson:"fechaSubida" json:"fechaSubida"`
	Usuario        string    `bson:"usuario" json:"usuario"`
}

type Auditoria struct {
	CreadoPor         string     `bson:"creadoPor,omitempty" json:"creadoPor,omitempty"`
	FechaCreacion     *time.Time `bson:"fechaCreacion,omitempty" json:"fechaCreacion,omitempty"`
	ModificadoPor     string     `bson:"modificadoPor,omitempty" json:"modificadoPor,omitempty"`
	FechaModificacion *time.Time `bson:"fechaModificacion,omitempty" json:"fechaModificacion,omitempty"`
	EstadoCambiadoPor string     `bson:"estadoCambiadoPor,omitempty" json:"estadoCambiadoPor,omitempty"`
	FechaCambioEstado *time.Time `bson:"fechaCambioEstado,omitempty" json:"fechaCambioEstado,omitempty"`
	EstadoAnterior    string     `bson:"estadoAnterior,omitempty" json:"estadoAnterior,omitempty"`
}

// Presupuesto es el documento central. La referencia es la clave de negocio,
// única en la colección.
type Presupuesto struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Referencia           string             `bson:"referencia" json:"referencia"`
	Cta                  string             `bson:"cta" json:"cta"`
	Nombre               string             `bson:"nombre" json:"nombre"`
	Taller               string             `bson:"taller" json:"taller"` // código de taller
	Usuario              string             `bson:"usuario" json:"usuario"`
	DescripcionSiniestro string             `bson:"descripcionSiniestro" json:"descripcionSiniestro"`
	OrSiniestro          string             `bson:"orSiniestro" json:"orSiniestro"`
	Estado               string             `bson:"estado" json:"estado"`
	Piezas               []Pieza            `bson:"piezas" json:"piezas"`
	Comentarios          []Comentario       `bson:"comentarios" json:"comentarios"`
	Adjuntos             []Adjunto          `bson:"adjuntos" json:"adjuntos"`
	FechaCarga           time.Time          `bson:"fechaCarga" json:"fechaCarga"`
	UltimaActualizacion  time.Time          `bson:"ultimaActualizacion" json:"ultimaActualizacion"`
	Auditoria            Auditoria          `bson:"auditoria" json:"auditoria"`

	// Campos derivados en lectura, nunca almacenados.
	Subestado         string   `bson:"-" json:"subestado,omitempty"`
	NombreTaller      string   `bson:"-" json:"nombreTaller,omitempty"`
	Costo             float64  `bson:"-" json:"costo"`
	Pvp               float64  `bson:"-" json:"pvp"`
	Importe           float64  `bson:"-" json:"importe"`
	Margen            int      `bson:"-" json:"margen"`
	CostoCalculado    *float64 `bson:"-" json:"costoCalculado,omitempty"`
	PvpCalculado      *float64 `bson:"-" json:"pvpCalculado,omitempty"`
	ImporteCalculado  *float64 `bson:"-" json:"importeCalculado,omitempty"`
}

// FechaCreacion es la fecha que ordena y filtra los presupuestos:
// auditoria.fechaCreacion cuando existe, si no la fecha de carga.
func (p *Presupuesto) FechaCreacion() time.Time {
	if p.Auditoria.FechaCreacion != nil && !p.Auditoria.FechaCreacion.IsZero() {
		return *p.Auditoria.FechaCreacion
	}
	return p.FechaCarga
}
