// server/internal/models/configuracion.go
package models

// Valores por defecto de la configuración general.
const (
	DiasParaPendienteDefault   = 2
	DirectorioAdjuntosDefault  = "uploads/adjuntos"
	ConfiguracionGeneralDocKey = "general"
)

// ConfiguracionGeneral es el documento único de configuración de negocio.
// Se inicializa con valores por defecto en la primera lectura.
type ConfiguracionGeneral struct {
	Clave              string `bson:"clave" json:"-"`
	DiasParaPendiente  int    `bson:"diasParaPendiente" json:"diasParaPendiente"`
	DirectorioAdjuntos string `bson:"directorioAdjuntos" json:"directorioAdjuntos"`
}

// ConfiguracionGeneralDefault devuelve la configuración inicial.
func ConfiguracionGeneralDefault() ConfiguracionGeneral {
	return ConfiguracionGeneral{
		Clave:              ConfiguracionGeneralDocKey,
		DiasParaPendiente:  DiasParaPendienteDefault,
		DirectorioAdjuntos: DirectorioAdjuntosDefault,
	}
}
