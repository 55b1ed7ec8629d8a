// server/internal/subestado/subestado_test.go
package subestado

import (
	"testing"
	"time"

	"presupuestos-api-server/internal/models"

	"github.com/stretchr/testify/assert"
)

func fechaPtr(t time.Time) *time.Time { return &t }

func TestCalcular(t *testing.T) {
	creacion := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	base := models.Presupuesto{
		Referencia: "REF-001",
		Estado:     models.EstadoAbierto,
		Auditoria:  models.Auditoria{FechaCreacion: fechaPtr(creacion)},
	}

	t.Run("dentro del umbral queda en espera", func(t *testing.T) {
		p := base
		ahora := creacion.Add(47 * time.Hour)
		assert.Equal(t, models.SubestadoEnEspera, Calcular(&p, 2, ahora))
	})

	t.Run("pasado el umbral queda pendiente", func(t *testing.T) {
		p := base
		ahora := creacion.Add(49 * time.Hour)
		assert.Equal(t, models.SubestadoPendiente, Calcular(&p, 2, ahora))
	})

	t.Run("exactamente en el umbral sigue en espera", func(t *testing.T) {
		p := base
		ahora := creacion.Add(48 * time.Hour)
		assert.Equal(t, models.SubestadoEnEspera, Calcular(&p, 2, ahora))
	})

	t.Run("un comentario nuevo reinicia la cuenta", func(t *testing.T) {
		p := base
		p.Comentarios = []models.Comentario{
			{ID: 1, Texto: "primer contacto", Fecha: creacion.Add(40 * time.Hour), Usuario: "ana"},
		}
		ahora := creacion.Add(60 * time.Hour)
		// Sin el comentario serían 60h desde la creación: Pendiente.
		assert.Equal(t, models.SubestadoEnEspera, Calcular(&p, 2, ahora))
	})

	t.Run("comentarios viejos no corren la referencia", func(t *testing.T) {
		p := base
		p.Comentarios = []models.Comentario{
			{ID: 1, Texto: "nota previa", Fecha: creacion.Add(-2 * time.Hour), Usuario: "ana"},
		}
		ahora := creacion.Add(49 * time.Hour)
		assert.Equal(t, models.SubestadoPendiente, Calcular(&p, 2, ahora))
	})

	t.Run("sin auditoria usa la fecha de carga", func(t *testing.T) {
		p := models.Presupuesto{
			Estado:     models.EstadoAbierto,
			FechaCarga: creacion,
		}
		assert.Equal(t, models.SubestadoPendiente, Calcular(&p, 2, creacion.Add(50*time.Hour)))
	})

	t.Run("estados no abiertos no tienen subestado", func(t *testing.T) {
		for _, estado := range []string{models.EstadoAceptado, models.EstadoRechazado} {
			p := base
			p.Estado = estado
			assert.Empty(t, Calcular(&p, 2, creacion.Add(100*time.Hour)))
		}
	})
}

func TestAplicar(t *testing.T) {
	creacion := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	presupuestos := []models.Presupuesto{
		{Referencia: "A", Estado: models.EstadoAbierto, FechaCarga: creacion},
		{Referencia: "B", Estado: models.EstadoAceptado, FechaCarga: creacion},
	}

	Aplicar(presupuestos, 2, creacion.Add(72*time.Hour))

	assert.Equal(t, models.SubestadoPendiente, presupuestos[0].Subestado)
	assert.Empty(t, presupuestos[1].Subestado)
}
