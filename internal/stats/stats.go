// server/internal/stats/stats.go
//
// Motor de estadísticas del dashboard. Trabaja sobre presupuestos ya
// enriquecidos por el cálculo de aceites (importe/costo/pvp reales) y agrupa
// siempre por NOMBRE de taller: varios códigos pueden compartir nombre y el
// dashboard los muestra como uno solo. Todos los rollups incluyen filas en
// cero para los talleres sin actividad.
package stats

import (
	"sort"
	"strings"
	"time"

	"presupuestos-api-server/internal/aceites"
	"presupuestos-api-server/internal/models"
	"presupuestos-api-server/internal/subestado"
)

// Datos es la entrada común del motor: los presupuestos del rango (enriquecidos),
// todos los códigos de taller conocidos y el mapeo código -> nombre. Un mapeo
// vacío o nulo degrada a usar el código como nombre.
type Datos struct {
	Presupuestos []models.Presupuesto
	Codigos      []string
	Mapeo        map[string]string
}

// NombreTaller resuelve el nombre visible de un código, con el código como respaldo.
func (d Datos) NombreTaller(codigo string) string {
	if nombre, ok := d.Mapeo[codigo]; ok && nombre != "" {
		return nombre
	}
	return codigo
}

// nombresConocidos devuelve los nombres únicos de todos los códigos, ordenados.
func (d Datos) nombresConocidos() []string {
	set := make(map[string]struct{})
	for _, codigo := range d.Codigos {
		set[d.NombreTaller(codigo)] = struct{}{}
	}
	nombres := make([]string, 0, len(set))
	for nombre := range set {
		nombres = append(nombres, nombre)
	}
	sort.Slice(nombres, func(i, j int) bool {
		return strings.ToLower(nombres[i]) < strings.ToLower(nombres[j])
	})
	return nombres
}

// EnRango indica si la fecha de creación del presupuesto cae dentro del rango
// inclusivo [desde, hasta], interpretado a nivel día.
func EnRango(p *models.Presupuesto, desde, hasta *time.Time) bool {
	fecha := p.FechaCreacion()
	if desde != nil {
		inicio := time.Date(desde.Year(), desde.Month(), desde.Day(), 0, 0, 0, 0, desde.Location())
		if fecha.Before(inicio) {
			return false
		}
	}
	if hasta != nil {
		fin := time.Date(hasta.Year(), hasta.Month(), hasta.Day(), 23, 59, 59, 999999999, hasta.Location())
		if fecha.After(fin) {
			return false
		}
	}
	return true
}

// FiltrarRango devuelve los presupuestos dentro del rango inclusivo.
func FiltrarRango(presupuestos []models.Presupuesto, desde, hasta *time.Time) []models.Presupuesto {
	if desde == nil && hasta == nil {
		return presupuestos
	}
	filtrados := make([]models.Presupuesto, 0, len(presupuestos))
	for i := range presupuestos {
		if EnRango(&presupuestos[i], desde, hasta) {
			filtrados = append(filtrados, presupuestos[i])
		}
	}
	return filtrados
}

// ResumenTaller es una fila cantidad/importe de un rollup por taller.
type ResumenTaller struct {
	Taller   string  `json:"taller"`
	Cantidad int     `json:"cantidad"`
	Importe  float64 `json:"importe"`
}

// TotalesResumen acumula las filas de un rollup.
type TotalesResumen struct {
	Cantidad int     `json:"cantidad"`
	Importe  float64 `json:"importe"`
}

// PorTallerEstado cuenta e importa los presupuestos con el estado dado,
// agrupados por nombre de taller, con filas en cero y ordenados por importe
// descendente.
func PorTallerEstado(d Datos, estado string) ([]ResumenTaller, TotalesResumen) {
	return porTaller(d, func(p *models.Presupuesto) bool {
		return p.Estado == estado
	})
}

// AbiertosPendientes cuenta los presupuestos abiertos cuyo subestado derivado
// es Pendiente en el instante "ahora".
func AbiertosPendientes(d Datos, diasParaPendiente int, ahora time.Time) ([]ResumenTaller, TotalesResumen) {
	return porTaller(d, func(p *models.Presupuesto) bool {
		return subestado.Calcular(p, diasParaPendiente, ahora) == models.SubestadoPendiente
	})
}

// PorTodos cuenta e importa todos los presupuestos por taller, sin filtrar.
func PorTodos(d Datos) ([]ResumenTaller, TotalesResumen) {
	return porTaller(d, func(*models.Presupuesto) bool { return true })
}

func porTaller(d Datos, incluir func(*models.Presupuesto) bool) ([]ResumenTaller, TotalesResumen) {
	porNombre := make(map[string]*ResumenTaller)
	for _, nombre := range d.nombresConocidos() {
		porNombre[nombre] = &ResumenTaller{Taller: nombre}
	}

	for i := range d.Presupuestos {
		p := &d.Presupuestos[i]
		if !incluir(p) {
			continue
		}
		fila, ok := porNombre[d.NombreTaller(p.Taller)]
		if !ok {
			continue
		}
		fila.Cantidad++
		fila.Importe += p.Importe
	}

	filas := make([]ResumenTaller, 0, len(porNombre))
	var totales TotalesResumen
	for _, fila := range porNombre {
		filas = append(filas, *fila)
		totales.Cantidad += fila.Cantidad
		totales.Importe += fila.Importe
	}
	sort.Slice(filas, func(i, j int) bool {
		if filas[i].Importe != filas[j].Importe {
			return filas[i].Importe > filas[j].Importe
		}
		return filas[i].Taller < filas[j].Taller
	})
	return filas, totales
}

// ConversionTaller es la fila de conversión de un taller.
type ConversionTaller struct {
	Taller           string  `json:"taller"`
	Total            int     `json:"total"`
	Aceptados        int     `json:"aceptados"`
	Conversion       int     `json:"conversion"`
	ImporteTotal     float64 `json:"importeTotal"`
	ImporteAceptados float64 `json:"importeAceptados"`
}

// Conversion calcula aceptados/(aceptados+rechazados)*100 redondeado por taller.
// Los abiertos no cuentan. El total general usa los contadores sumados, no el
// promedio de las tasas por taller. Denominador cero da conversión 0.
func Conversion(d Datos) ([]ConversionTaller, ConversionTaller) {
	porNombre := make(map[string]*ConversionTaller)
	for _, nombre := range d.nombresConocidos() {
		porNombre[nombre] = &ConversionTaller{Taller: nombre}
	}

	for i := range d.Presupuestos {
		p := &d.Presupuestos[i]
		if p.Estado == models.EstadoAbierto {
			continue
		}
		fila, ok := porNombre[d.NombreTaller(p.Taller)]
		if !ok {
			continue
		}
		fila.Total++
		fila.ImporteTotal += p.Importe
		if p.Estado == models.EstadoAceptado {
			fila.Aceptados++
			fila.ImporteAceptados += p.Importe
		}
	}

	filas := make([]ConversionTaller, 0, len(porNombre))
	totales := ConversionTaller{Taller: "TOTAL"}
	for _, fila := range porNombre {
		fila.Conversion = porcentaje(fila.Aceptados, fila.Total)
		filas = append(filas, *fila)
		totales.Total += fila.Total
		totales.Aceptados += fila.Aceptados
		totales.ImporteTotal += fila.ImporteTotal
		totales.ImporteAceptados += fila.ImporteAceptados
	}
	totales.Conversion = porcentaje(totales.Aceptados, totales.Total)
	sort.Slice(filas, func(i, j int) bool {
		if filas[i].Conversion != filas[j].Conversion {
			return filas[i].Conversion > filas[j].Conversion
		}
		return filas[i].Taller < filas[j].Taller
	})
	return filas, totales
}

func porcentaje(parte, total int) int {
	if total == 0 {
		return 0
	}
	return redondear(float64(parte) / float64(total) * 100)
}

func redondear(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

// Estadisticas son los acumulados generales de un conjunto de presupuestos.
type Estadisticas struct {
	TotalPresupuestos int     `json:"totalPresupuestos"`
	TotalImporte      float64 `json:"totalImporte"`
	TotalCosto        float64 `json:"totalCosto"`
	TotalPvp          float64 `json:"totalPvp"`
	Margen            int     `json:"margen"`
}

// Generales acumula importe/costo/pvp y margen global.
func Generales(presupuestos []models.Presupuesto) Estadisticas {
	var e Estadisticas
	for i := range presupuestos {
		p := &presupuestos[i]
		e.TotalPresupuestos++
		e.TotalImporte += p.Importe
		e.TotalCosto += p.Costo
		e.TotalPvp += p.Pvp
	}
	e.Margen = aceites.Margen(e.TotalImporte, e.TotalCosto)
	return e
}

// ResumenEstado es la fila por estado del dashboard.
type ResumenEstado struct {
	Estado   string  `json:"estado"`
	Cantidad int     `json:"cantidad"`
	Importe  float64 `json:"importe"`
	Costo    float64 `json:"costo"`
	Pvp      float64 `json:"pvp"`
	Margen   int     `json:"margen"`
}

// PorEstado agrupa por estado, ordenado por cantidad descendente.
func PorEstado(presupuestos []models.Presupuesto) []ResumenEstado {
	porEstado := make(map[string]*ResumenEstado)
	for i := range presupuestos {
		p := &presupuestos[i]
		fila, ok := porEstado[p.Estado]
		if !ok {
			fila = &ResumenEstado{Estado: p.Estado}
			porEstado[p.Estado] = fila
		}
		fila.Cantidad++
		fila.Importe += p.Importe
		fila.Costo += p.Costo
		fila.Pvp += p.Pvp
	}
	filas := make([]ResumenEstado, 0, len(porEstado))
	for _, fila := range porEstado {
		fila.Margen = aceites.Margen(fila.Importe, fila.Costo)
		filas = append(filas, *fila)
	}
	sort.Slice(filas, func(i, j int) bool {
		if filas[i].Cantidad != filas[j].Cantidad {
			return filas[i].Cantidad > filas[j].Cantidad
		}
		return filas[i].Estado < filas[j].Estado
	})
	return filas
}

// ResumenTipo es la fila por tipo de siniestro.
type ResumenTipo struct {
	Tipo         string  `json:"tipo"`
	Cantidad     int     `json:"cantidad"`
	TotalImporte float64 `json:"totalImporte"`
}

// PorTipoSiniestro agrupa por descripción de siniestro, importe descendente.
func PorTipoSiniestro(presupuestos []models.Presupuesto) []ResumenTipo {
	porTipo := make(map[string]*ResumenTipo)
	for i := range presupuestos {
		p := &presupuestos[i]
		fila, ok := porTipo[p.DescripcionSiniestro]
		if !ok {
			fila = &ResumenTipo{Tipo: p.DescripcionSiniestro}
			porTipo[p.DescripcionSiniestro] = fila
		}
		fila.Cantidad++
		fila.TotalImporte += p.Importe
	}
	filas := make([]ResumenTipo, 0, len(porTipo))
	for _, fila := range porTipo {
		filas = append(filas, *fila)
	}
	sort.Slice(filas, func(i, j int) bool {
		if filas[i].TotalImporte != filas[j].TotalImporte {
			return filas[i].TotalImporte > filas[j].TotalImporte
		}
		return filas[i].Tipo < filas[j].Tipo
	})
	return filas
}

// MesDisponible es un mes calendario con registros.
type MesDisponible struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Cantidad     int     `json:"cantidad"`
	TotalImporte float64 `json:"totalImporte"`
}

// MesesDisponibles lista los meses con presupuestos, del más reciente al más viejo.
func MesesDisponibles(presupuestos []models.Presupuesto) []MesDisponible {
	type clave struct{ year, month int }
	porMes := make(map[clave]*MesDisponible)
	for i := range presupuestos {
		p := &presupuestos[i]
		fecha := p.FechaCreacion()
		k := clave{fecha.Year(), int(fecha.Month())}
		fila, ok := porMes[k]
		if !ok {
			fila = &MesDisponible{Year: k.year, Month: k.month}
			porMes[k] = fila
		}
		fila.Cantidad++
		fila.TotalImporte += p.Importe
	}
	filas := make([]MesDisponible, 0, len(porMes))
	for _, fila := range porMes {
		filas = append(filas, *fila)
	}
	sort.Slice(filas, func(i, j int) bool {
		if filas[i].Year != filas[j].Year {
			return filas[i].Year > filas[j].Year
		}
		return filas[i].Month > filas[j].Month
	})
	return filas
}

// OrsPorTaller cuenta los presupuestos aceptados con OR de siniestro, por código
// de taller, y el total global.
func OrsPorTaller(presupuestos []models.Presupuesto) (map[string]int, int) {
	porTaller := make(map[string]int)
	total := 0
	for i := range presupuestos {
		p := &presupuestos[i]
		if p.Estado != models.EstadoAceptado || strings.TrimSpace(p.OrSiniestro) == "" {
			continue
		}
		porTaller[p.Taller]++
		total++
	}
	return porTaller, total
}
