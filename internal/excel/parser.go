// server/internal/excel/parser.go
//
// Lectura de planillas de presupuestos. Las columnas se ubican por coincidencia
// parcial del encabezado (insensible a mayúsculas) porque las planillas de
// origen no tienen un formato fijo. Las filas se agrupan por referencia con
// arrastre: una fila sin referencia agrega piezas al presupuesto anterior.
package excel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"presupuestos-api-server/internal/models"
)

// Columnas requeridas y el fragmento de encabezado que las identifica.
var columnas = []struct {
	clave     string
	fragmento string
}{
	{"referencia", "referencia"},
	{"fecha", "fecha"},
	{"cta", "cta"},
	{"nombre", "nombre"},
	{"taller", "taller"},
	{"pieza", "pieza"},
	{"concepto", "concepto"},
	{"cantidad", "cant"},
	{"costo", "costo"},
	{"pvp", "pvp"},
	{"importe", "importe"},
	{"usuario", "usuario"},
	{"descripcionSiniestro", "descripcion siniestro"},
}

// FilaError es un error de procesamiento de una fila puntual. La fila se
// informa en numeración de planilla (encabezado = fila 1).
type FilaError struct {
	Fila  int    `json:"fila"`
	Error string `json:"error"`
}

// Crudo es un presupuesto armado desde la planilla, antes de persistir.
type Crudo struct {
	Referencia           string
	Cta                  string
	Nombre               string
	Taller               string
	Usuario              string
	DescripcionSiniestro string
	Fecha                time.Time
	Piezas               []models.Pieza
}

func mapearColumnas(encabezados []string) (map[string]int, error) {
	indices := make(map[string]int, len(columnas))
	var faltantes []string
	for _, col := range columnas {
		indices[col.clave] = -1
		for i, h := range encabezados {
			if strings.Contains(strings.ToLower(h), col.fragmento) {
				indices[col.clave] = i
				break
			}
		}
		if indices[col.clave] == -1 {
			faltantes = append(faltantes, col.clave)
		}
	}
	if len(faltantes) > 0 {
		return nil, fmt.Errorf("columnas faltantes: %s", strings.Join(faltantes, ", "))
	}
	return indices, nil
}

func celda(fila []string, indice int) string {
	if indice < 0 || indice >= len(fila) {
		return ""
	}
	return strings.TrimSpace(fila[indice])
}

func numero(fila []string, indice int) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(celda(fila, indice), ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseFecha acepta los formatos habituales de la planilla y el número de
// serie de Excel (días desde 1900) que aparece cuando la celda no tiene
// formato de fecha.
func parseFecha(valor string, porDefecto time.Time) time.Time {
	if valor == "" {
		return porDefecto
	}
	for _, layout := range []string{"02/01/2006", "2/1/2006", "2006-01-02", "02-01-2006", "01-02-06", time.RFC3339} {
		if fecha, err := time.Parse(layout, valor); err == nil {
			return fecha
		}
	}
	if serial, err := strconv.ParseFloat(valor, 64); err == nil && serial > 0 {
		dias := int64(serial - 25569)
		return time.Unix(dias*86400, 0).UTC()
	}
	return porDefecto
}

// Parsear agrupa las filas de la planilla en presupuestos. Devuelve los
// presupuestos crudos (solo los que tienen al menos una pieza), los errores
// por fila y el total de filas de datos.
func Parsear(filas [][]string, ahora time.Time) ([]Crudo, []FilaError, int, error) {
	if len(filas) < 2 {
		return nil, nil, 0, fmt.Errorf("el archivo no contiene datos suficientes")
	}

	indices, err := mapearColumnas(filas[0])
	if err != nil {
		return nil, nil, 0, err
	}

	datos := filas[1:]
	var orden []string
	porReferencia := make(map[string]*Crudo)
	var errores []FilaError
	var actual *Crudo

	for i, fila := range datos {
		numFila := i + 2

		if referencia := celda(fila, indices["referencia"]); referencia != "" {
			if celda(fila, indices["nombre"]) == "" {
				errores = append(errores, FilaError{Fila: numFila, Error: fmt.Sprintf("referencia %s sin nombre", referencia)})
				actual = nil
				continue
			}
			crudo, visto := porReferencia[referencia]
			if !visto {
				crudo = &Crudo{
					Referencia:           referencia,
					Cta:                  celda(fila, indices["cta"]),
					Nombre:               celda(fila, indices["nombre"]),
					Taller:               celda(fila, indices["taller"]),
					Usuario:              celda(fila, indices["usuario"]),
					DescripcionSiniestro: celda(fila, indices["descripcionSiniestro"]),
					Fecha:                parseFecha(celda(fila, indices["fecha"]), ahora),
				}
				if crudo.Usuario == "" {
					crudo.Usuario = "Sistema"
				}
				if crudo.DescripcionSiniestro == "" {
					crudo.DescripcionSiniestro = "Sin descripción"
				}
				porReferencia[referencia] = crudo
				orden = append(orden, referencia)
			}
			actual = crudo
		}

		if actual == nil {
			continue
		}
		if pieza := celda(fila, indices["pieza"]); pieza != "" {
			cantidad := numero(fila, indices["cantidad"])
			if cantidad == 0 {
				cantidad = 1
			}
			actual.Piezas = append(actual.Piezas, models.Pieza{
				Pieza:    pieza,
				Concepto: celda(fila, indices["concepto"]),
				Cantidad: cantidad,
				Costo:    numero(fila, indices["costo"]),
				Pvp:      numero(fila, indices["pvp"]),
				Importe:  numero(fila, indices["importe"]),
			})
		}
	}

	crudos := make([]Crudo, 0, len(orden))
	for _, referencia := range orden {
		if crudo := porReferencia[referencia]; len(crudo.Piezas) > 0 {
			crudos = append(crudos, *crudo)
		}
	}
	return crudos, errores, len(datos), nil
}
