// server/internal/stats/rechazos_test.go
package stats

import (
	"testing"

	"presupuestos-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comentarios(textos ...string) []models.Comentario {
	lista := make([]models.Comentario, 0, len(textos))
	for i, texto := range textos {
		lista = append(lista, models.Comentario{ID: int64(i + 1), Texto: texto, Usuario: "ana"})
	}
	return lista
}

func TestClasificarMotivo(t *testing.T) {
	casos := []struct {
		nombre   string
		textos   []string
		esperado string
	}{
		{"cliente que no responde", []string{"Llamé dos veces y el cliente NO responde"}, MotivoNoResponde},
		{"precio sin adjetivo contiguo no matchea", []string{"dice que el precio es muy caro para él"}, ""},
		{"precio elevado con adjetivo", []string{"rechaza por precio elevado"}, MotivoPrecioElevado},
		{"precio alto", []string{"le pareció un precio alto"}, MotivoPrecioElevado},
		{"demora simple", []string{"lo rechazó por la demora del repuesto"}, MotivoDemora},
		{"tardanza", []string{"mucha tardanza en la entrega"}, MotivoDemora},
		{"sin matcheo", []string{"prefiere otro taller"}, ""},
		{"sin comentarios", nil, ""},
		{
			// "no responde" aparece después pero gana por prioridad.
			"prioridad entre categorías",
			[]string{"se quejó de la demora", "y ahora no responde"},
			MotivoNoResponde,
		},
	}

	for _, caso := range casos {
		t.Run(caso.nombre, func(t *testing.T) {
			assert.Equal(t, caso.esperado, ClasificarMotivo(comentarios(caso.textos...)))
		})
	}
}

func TestEsMotivoValido(t *testing.T) {
	for _, motivo := range MotivosRechazo() {
		assert.True(t, EsMotivoValido(motivo))
	}
	assert.False(t, EsMotivoValido("Otro"))
	assert.False(t, EsMotivoValido(""))
}

func TestRechazos(t *testing.T) {
	rechazo := func(referencia, taller string, importe float64, textos ...string) models.Presupuesto {
		p := presupuesto(referencia, taller, models.EstadoRechazado, importe)
		p.Comentarios = comentarios(textos...)
		return p
	}

	t.Run("desglose por motivo con porcentajes", func(t *testing.T) {
		d := datosPrueba(
			rechazo("R1", "T01", 100, "no responde el teléfono"),
			rechazo("R2", "T01", 100, "precio elevado"),
			rechazo("R3", "T01", 100, "prefiere otro taller"),
			rechazo("R4", "T02", 50, "demora en los repuestos"),
		)

		filas, totales := Rechazos(d)

		require.Len(t, filas, 2)
		norte := filas[0] // mayor importe primero
		assert.Equal(t, "Taller Norte", norte.Taller)
		assert.Equal(t, 3, norte.Cantidad)
		assert.Equal(t, 1, norte.Motivos[MotivoNoResponde].Cantidad)
		assert.Equal(t, 33, norte.Motivos[MotivoNoResponde].Porcentaje)
		assert.Equal(t, 1, norte.Motivos[MotivoPrecioElevado].Cantidad)
		// El rechazo sin categoría cuenta en el total pero no en los motivos.
		assert.Equal(t, 0, norte.Motivos[MotivoDemora].Cantidad)

		assert.Equal(t, 4, totales.Cantidad)
		assert.InDelta(t, 350, totales.Importe, 0.001)
	})

	t.Run("las categorías nunca superan el total del taller", func(t *testing.T) {
		d := datosPrueba(
			rechazo("R1", "T01", 100, "no responde, y además el precio elevado, y la demora"),
		)

		filas, _ := Rechazos(d)

		for _, fila := range filas {
			suma := 0
			for _, detalle := range fila.Motivos {
				suma += detalle.Cantidad
				assert.LessOrEqual(t, detalle.Porcentaje, 100)
			}
			assert.LessOrEqual(t, suma, fila.Cantidad)
		}
	})

	t.Run("talleres sin rechazos aparecen en cero", func(t *testing.T) {
		d := datosPrueba(rechazo("R1", "T01", 100, "no responde"))

		filas, _ := Rechazos(d)

		require.Len(t, filas, 2)
		assert.Equal(t, "Taller Sur", filas[1].Taller)
		assert.Zero(t, filas[1].Cantidad)
	})
}
