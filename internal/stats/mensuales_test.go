// server/internal/stats/mensuales_test.go
package stats

import (
	"testing"
	"time"

	"presupuestos-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVentanaMensual(t *testing.T) {
	t.Run("desde la época hasta el mes actual", func(t *testing.T) {
		ahora := time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, []string{"2025-08", "2025-09", "2025-10"}, VentanaMensual(ahora))
	})

	t.Run("antes de la época devuelve solo el mes inicial", func(t *testing.T) {
		ahora := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, []string{"2025-08"}, VentanaMensual(ahora))
	})

	t.Run("se recorta a los últimos seis meses", func(t *testing.T) {
		ahora := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
		claves := VentanaMensual(ahora)
		require.Len(t, claves, 6)
		assert.Equal(t, "2026-04", claves[0])
		assert.Equal(t, "2026-09", claves[5])
	})
}

func TestMensuales(t *testing.T) {
	ahora := time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC)

	enMes := func(referencia, taller, estado string, importe float64, mes time.Month) models.Presupuesto {
		p := presupuesto(referencia, taller, estado, importe)
		p.FechaCarga = time.Date(2025, mes, 10, 0, 0, 0, 0, time.UTC)
		return p
	}

	d := datosPrueba(
		enMes("R1", "T01", models.EstadoAceptado, 100, time.August),
		enMes("R2", "T01", models.EstadoRechazado, 50, time.August),
		enMes("R3", "T02", models.EstadoAceptado, 200, time.September),
		enMes("R4", "T02", models.EstadoAbierto, 999, time.September), // no cuenta
		enMes("R5", "T01", models.EstadoAceptado, 80, time.March),     // fuera de la ventana
	)

	resultado := Mensuales(d, ahora)

	assert.Equal(t, []string{"2025-08", "2025-09", "2025-10"}, resultado.MesesDisponibles)

	require.Len(t, resultado.Talleres, 2)
	// Orden alfabético por nombre de taller.
	norte := resultado.Talleres[0]
	sur := resultado.Talleres[1]
	assert.Equal(t, "Taller Norte", norte.Taller)
	assert.Equal(t, "Taller Sur", sur.Taller)

	agosto := norte.Meses["2025-08"]
	assert.Equal(t, 2, agosto.Realizados)
	assert.Equal(t, 1, agosto.Aceptados)
	assert.Equal(t, 50, agosto.Conversion)
	assert.InDelta(t, 100, agosto.Monto, 0.001)

	septiembre := sur.Meses["2025-09"]
	assert.Equal(t, 1, septiembre.Realizados)
	assert.Equal(t, 100, septiembre.Conversion)

	// Octubre existe en la grilla aunque no tenga datos.
	octubre, ok := norte.Meses["2025-10"]
	require.True(t, ok)
	assert.Zero(t, octubre.Realizados)

	totalAgosto := resultado.TotalesPorMes["2025-08"]
	assert.Equal(t, 2, totalAgosto.Realizados)
	assert.Equal(t, 1, totalAgosto.Aceptados)
	assert.InDelta(t, 100, totalAgosto.Monto, 0.001)
}
