// server/internal/excel/parser_test.go
package excel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var encabezados = []string{
	"Referencia", "Fecha", "Cta", "Nombre", "Taller",
	"Pieza", "Concepto", "Cant.", "Costo", "PVP", "Importe",
	"Usuario", "Descripcion Siniestro",
}

var ahoraPrueba = time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

func TestMapearColumnas(t *testing.T) {
	t.Run("encuentra por fragmento sin importar mayúsculas", func(t *testing.T) {
		indices, err := mapearColumnas(encabezados)
		require.NoError(t, err)
		assert.Equal(t, 0, indices["referencia"])
		assert.Equal(t, 7, indices["cantidad"])
		assert.Equal(t, 12, indices["descripcionSiniestro"])
	})

	t.Run("nombra las columnas faltantes", func(t *testing.T) {
		_, err := mapearColumnas([]string{"Referencia", "Nombre"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "taller")
		assert.Contains(t, err.Error(), "importe")
	})
}

func TestParseFecha(t *testing.T) {
	porDefecto := ahoraPrueba

	assert.Equal(t,
		time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
		parseFecha("15/03/2026", porDefecto))
	assert.Equal(t,
		time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
		parseFecha("2026-03-15", porDefecto))
	// Número de serie de Excel: 45292 = 01/01/2024.
	assert.Equal(t,
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		parseFecha("45292", porDefecto))
	assert.Equal(t, porDefecto, parseFecha("", porDefecto))
	assert.Equal(t, porDefecto, parseFecha("no es fecha", porDefecto))
}

func TestParsear(t *testing.T) {
	t.Run("agrupa filas por referencia con arrastre", func(t *testing.T) {
		filas := [][]string{
			encabezados,
			{"P-100", "15/03/2026", "C1", "Juan Pérez", "T01", "ACE-10W40", "Aceite motor", "5", "2000", "3000", "75", "ana", "Golpe frontal"},
			{"", "", "", "", "", "FILTRO-A", "Filtro de aceite", "1", "20", "35", "35", "", ""},
			{"P-200", "16/03/2026", "C2", "María Gómez", "T02", "PARAGOLPES", "Paragolpes delantero", "1", "120", "180", "180", "", ""},
		}

		crudos, errores, total, err := Parsear(filas, ahoraPrueba)

		require.NoError(t, err)
		assert.Empty(t, errores)
		assert.Equal(t, 3, total)
		require.Len(t, crudos, 2)

		assert.Equal(t, "P-100", crudos[0].Referencia)
		assert.Equal(t, "Juan Pérez", crudos[0].Nombre)
		require.Len(t, crudos[0].Piezas, 2)
		assert.Equal(t, "FILTRO-A", crudos[0].Piezas[1].Pieza)

		assert.Equal(t, "P-200", crudos[1].Referencia)
		require.Len(t, crudos[1].Piezas, 1)
	})

	t.Run("defaults de usuario y descripción", func(t *testing.T) {
		filas := [][]string{
			encabezados,
			{"P-300", "", "C3", "Carlos Ruiz", "T01", "PIEZA-X", "Concepto", "1", "10", "15", "15", "", ""},
		}

		crudos, _, _, err := Parsear(filas, ahoraPrueba)

		require.NoError(t, err)
		require.Len(t, crudos, 1)
		assert.Equal(t, "Sistema", crudos[0].Usuario)
		assert.Equal(t, "Sin descripción", crudos[0].DescripcionSiniestro)
		assert.Equal(t, ahoraPrueba, crudos[0].Fecha)
	})

	t.Run("referencia sin nombre se reporta y corta el arrastre", func(t *testing.T) {
		filas := [][]string{
			encabezados,
			{"P-400", "", "", "", "T01", "PIEZA-X", "", "1", "10", "15", "15", "", ""},
			{"", "", "", "", "", "PIEZA-Y", "", "1", "10", "15", "15", "", ""},
		}

		crudos, errores, _, err := Parsear(filas, ahoraPrueba)

		require.NoError(t, err)
		assert.Empty(t, crudos)
		require.Len(t, errores, 1)
		assert.Equal(t, 2, errores[0].Fila)
		assert.Contains(t, errores[0].Error, "P-400")
	})

	t.Run("referencias sin piezas se descartan", func(t *testing.T) {
		filas := [][]string{
			encabezados,
			{"P-500", "", "C5", "Laura Díaz", "T01", "", "", "", "", "", "", "", ""},
		}

		crudos, errores, _, err := Parsear(filas, ahoraPrueba)

		require.NoError(t, err)
		assert.Empty(t, crudos)
		assert.Empty(t, errores)
	})

	t.Run("decimales con coma", func(t *testing.T) {
		filas := [][]string{
			encabezados,
			{"P-600", "", "C6", "Pedro López", "T01", "PIEZA-Z", "", "2", "10,5", "15,75", "31,5", "", ""},
		}

		crudos, _, _, err := Parsear(filas, ahoraPrueba)

		require.NoError(t, err)
		require.Len(t, crudos, 1)
		require.Len(t, crudos[0].Piezas, 1)
		assert.InDelta(t, 10.5, crudos[0].Piezas[0].Costo, 0.001)
		assert.InDelta(t, 31.5, crudos[0].Piezas[0].Importe, 0.001)
	})

	t.Run("sin datos es un error", func(t *testing.T) {
		_, _, _, err := Parsear([][]string{encabezados}, ahoraPrueba)
		assert.Error(t, err)
	})
}
