// server/internal/api/handlers/adjunto_handler_test.go
package handlers

import (
	"testing"

	"presupuestos-api-server/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDirectorioAdjuntos(t *testing.T) {
	porDefecto := models.DirectorioAdjuntosDefault

	t.Run("manda el valor persistido en la configuración", func(t *testing.T) {
		cfg := models.ConfiguracionGeneral{DirectorioAdjuntos: "/datos/adjuntos"}
		assert.Equal(t, "/datos/adjuntos", directorioAdjuntos(cfg, porDefecto))
	})

	t.Run("sin configuración cae al directorio del proceso", func(t *testing.T) {
		assert.Equal(t, porDefecto, directorioAdjuntos(models.ConfiguracionGeneral{}, porDefecto))
	})

	t.Run("espacios en blanco no cuentan como valor", func(t *testing.T) {
		cfg := models.ConfiguracionGeneral{DirectorioAdjuntos: "   "}
		assert.Equal(t, porDefecto, directorioAdjuntos(cfg, porDefecto))
	})
}
