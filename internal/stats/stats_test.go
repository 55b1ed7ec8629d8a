// server/internal/stats/stats_test.go
package stats

import (
	"testing"
	"time"

	"presupuestos-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fechaBase = time.Date(2026, time.February, 15, 12, 0, 0, 0, time.UTC)

func presupuesto(referencia, taller, estado string, importe float64) models.Presupuesto {
	return models.Presupuesto{
		Referencia: referencia,
		Taller:     taller,
		Estado:     estado,
		Importe:    importe,
		FechaCarga: fechaBase,
	}
}

func datosPrueba(presupuestos ...models.Presupuesto) Datos {
	return Datos{
		Presupuestos: presupuestos,
		Codigos:      []string{"T01", "T02", "T03"},
		Mapeo: map[string]string{
			"T01": "Taller Norte",
			"T02": "Taller Sur",
			"T03": "Taller Norte", // dos códigos, un mismo nombre
		},
	}
}

func TestNombreTaller(t *testing.T) {
	d := datosPrueba()
	assert.Equal(t, "Taller Norte", d.NombreTaller("T01"))
	// Sin entrada en la tabla se usa el código tal cual.
	assert.Equal(t, "T99", d.NombreTaller("T99"))
}

func TestEnRango(t *testing.T) {
	p := presupuesto("R1", "T01", models.EstadoAbierto, 100)

	desde := time.Date(2026, time.February, 15, 23, 0, 0, 0, time.UTC)
	hasta := time.Date(2026, time.February, 15, 1, 0, 0, 0, time.UTC)

	t.Run("los límites son inclusivos a nivel día", func(t *testing.T) {
		// Aunque la hora del límite sea posterior a la del documento,
		// importa el día calendario.
		assert.True(t, EnRango(&p, &desde, &hasta))
	})

	t.Run("fuera del rango", func(t *testing.T) {
		otroDia := time.Date(2026, time.February, 16, 0, 0, 0, 0, time.UTC)
		assert.False(t, EnRango(&p, &otroDia, nil))
		anterior := time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC)
		assert.False(t, EnRango(&p, nil, &anterior))
	})

	t.Run("prioriza la fecha de auditoría", func(t *testing.T) {
		conAuditoria := p
		creacion := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
		conAuditoria.Auditoria.FechaCreacion = &creacion
		enero := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
		assert.True(t, EnRango(&conAuditoria, &enero, &enero))
	})
}

func TestPorTallerEstado(t *testing.T) {
	d := datosPrueba(
		presupuesto("R1", "T01", models.EstadoAceptado, 500),
		presupuesto("R2", "T03", models.EstadoAceptado, 300), // mismo nombre que T01
		presupuesto("R3", "T02", models.EstadoAceptado, 200),
		presupuesto("R4", "T02", models.EstadoRechazado, 900),
	)

	filas, totales := PorTallerEstado(d, models.EstadoAceptado)

	require.Len(t, filas, 2)
	assert.Equal(t, "Taller Norte", filas[0].Taller)
	assert.Equal(t, 2, filas[0].Cantidad)
	assert.InDelta(t, 800, filas[0].Importe, 0.001)
	assert.Equal(t, "Taller Sur", filas[1].Taller)
	assert.Equal(t, 1, filas[1].Cantidad)

	assert.Equal(t, 3, totales.Cantidad)
	assert.InDelta(t, 1000, totales.Importe, 0.001)
}

func TestPorTallerEstadoFilasEnCero(t *testing.T) {
	d := datosPrueba() // sin presupuestos

	filas, totales := PorTallerEstado(d, models.EstadoAceptado)

	require.Len(t, filas, 2) // Norte y Sur, ambos en cero
	for _, fila := range filas {
		assert.Zero(t, fila.Cantidad)
		assert.Zero(t, fila.Importe)
	}
	assert.Zero(t, totales.Cantidad)
}

func TestAbiertosPendientes(t *testing.T) {
	viejo := presupuesto("R1", "T01", models.EstadoAbierto, 100)
	reciente := presupuesto("R2", "T02", models.EstadoAbierto, 200)
	reciente.FechaCarga = fechaBase.Add(47 * time.Hour)
	cerrado := presupuesto("R3", "T01", models.EstadoAceptado, 300)

	d := datosPrueba(viejo, reciente, cerrado)
	filas, totales := AbiertosPendientes(d, 2, fechaBase.Add(49*time.Hour))

	assert.Equal(t, 1, totales.Cantidad)
	for _, fila := range filas {
		if fila.Taller == "Taller Norte" {
			assert.Equal(t, 1, fila.Cantidad)
		} else {
			assert.Zero(t, fila.Cantidad)
		}
	}
}

func TestConversion(t *testing.T) {
	t.Run("los abiertos no cuentan y el total usa los contadores", func(t *testing.T) {
		d := datosPrueba(
			presupuesto("R1", "T01", models.EstadoAceptado, 100),
			presupuesto("R2", "T01", models.EstadoRechazado, 100),
			presupuesto("R3", "T01", models.EstadoRechazado, 100),
			presupuesto("R4", "T02", models.EstadoAceptado, 100),
			presupuesto("R5", "T02", models.EstadoAbierto, 100),
		)

		filas, totales := Conversion(d)

		porNombre := make(map[string]ConversionTaller)
		for _, fila := range filas {
			porNombre[fila.Taller] = fila
		}
		assert.Equal(t, 33, porNombre["Taller Norte"].Conversion) // 1 de 3
		assert.Equal(t, 100, porNombre["Taller Sur"].Conversion)  // 1 de 1

		assert.Equal(t, "TOTAL", totales.Taller)
		assert.Equal(t, 4, totales.Total)
		assert.Equal(t, 2, totales.Aceptados)
		assert.Equal(t, 50, totales.Conversion)
	})

	t.Run("denominador cero da conversión cero", func(t *testing.T) {
		d := datosPrueba(presupuesto("R1", "T01", models.EstadoAbierto, 100))
		filas, totales := Conversion(d)
		for _, fila := range filas {
			assert.Zero(t, fila.Conversion)
		}
		assert.Zero(t, totales.Conversion)
	})
}

func TestGenerales(t *testing.T) {
	p1 := presupuesto("R1", "T01", models.EstadoAceptado, 200)
	p1.Costo = 100
	p1.Pvp = 220
	p2 := presupuesto("R2", "T02", models.EstadoAbierto, 100)
	p2.Costo = 50
	p2.Pvp = 110

	e := Generales([]models.Presupuesto{p1, p2})

	assert.Equal(t, 2, e.TotalPresupuestos)
	assert.InDelta(t, 300, e.TotalImporte, 0.001)
	assert.InDelta(t, 150, e.TotalCosto, 0.001)
	assert.InDelta(t, 330, e.TotalPvp, 0.001)
	assert.Equal(t, 50, e.Margen)
}

func TestPorEstado(t *testing.T) {
	filas := PorEstado([]models.Presupuesto{
		presupuesto("R1", "T01", models.EstadoAceptado, 100),
		presupuesto("R2", "T01", models.EstadoAceptado, 200),
		presupuesto("R3", "T01", models.EstadoRechazado, 50),
	})

	require.Len(t, filas, 2)
	assert.Equal(t, models.EstadoAceptado, filas[0].Estado)
	assert.Equal(t, 2, filas[0].Cantidad)
	assert.InDelta(t, 300, filas[0].Importe, 0.001)
}

func TestMesesDisponibles(t *testing.T) {
	enero := presupuesto("R1", "T01", models.EstadoAbierto, 100)
	enero.FechaCarga = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	febrero := presupuesto("R2", "T01", models.EstadoAbierto, 200)
	febrero.FechaCarga = time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC)

	meses := MesesDisponibles([]models.Presupuesto{enero, febrero, febrero})

	require.Len(t, meses, 2)
	assert.Equal(t, 2026, meses[0].Year)
	assert.Equal(t, 2, meses[0].Month)
	assert.Equal(t, 2, meses[0].Cantidad)
	assert.Equal(t, 1, meses[1].Month)
}

func TestOrsPorTaller(t *testing.T) {
	conOr := presupuesto("R1", "T01", models.EstadoAceptado, 100)
	conOr.OrSiniestro = "OR-123"
	sinOr := presupuesto("R2", "T01", models.EstadoAceptado, 100)
	rechazadoConOr := presupuesto("R3", "T02", models.EstadoRechazado, 100)
	rechazadoConOr.OrSiniestro = "OR-999"
	orVacio := presupuesto("R4", "T02", models.EstadoAceptado, 100)
	orVacio.OrSiniestro = "   "

	porTaller, total := OrsPorTaller([]models.Presupuesto{conOr, sinOr, rechazadoConOr, orVacio})

	assert.Equal(t, 1, total)
	assert.Equal(t, 1, porTaller["T01"])
	assert.Zero(t, porTaller["T02"])
}
