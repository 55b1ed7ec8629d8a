// server/internal/stats/rechazos.go
package stats

import (
	"regexp"
	"sort"
	"strings"

	"presupuestos-api-server/internal/models"
)

// Motivos de rechazo fijos, en orden de prioridad de detección.
const (
	MotivoNoResponde    = "No responde"
	MotivoPrecioElevado = "Precio elevado"
	MotivoDemora        = "Tiempo de demora"
)

// MotivosRechazo devuelve las categorías en su orden de prioridad.
func MotivosRechazo() []string {
	return []string{MotivoNoResponde, MotivoPrecioElevado, MotivoDemora}
}

// EsMotivoValido indica si el texto es una de las tres categorías fijas.
func EsMotivoValido(motivo string) bool {
	switch motivo {
	case MotivoNoResponde, MotivoPrecioElevado, MotivoDemora:
		return true
	}
	return false
}

var (
	reNoResponde    = regexp.MustCompile(`(?i)\bno\s+responde\b`)
	rePrecioElevado = regexp.MustCompile(`(?i)\bprecio\s+(elevado|alto|muy\s+caro)\b`)
	reDemora        = regexp.MustCompile(`(?i)\btiempo\s+de\s+demora\b|\bdemora\b|\btardanza\b`)
)

// ClasificarMotivo escanea el texto concatenado de los comentarios y devuelve
// a lo sumo una categoría; gana la primera en el orden de prioridad. Devuelve
// "" cuando ningún patrón matchea: el presupuesto cuenta para el total de
// rechazados del taller pero no aporta a ninguna categoría.
func ClasificarMotivo(comentarios []models.Comentario) string {
	if len(comentarios) == 0 {
		return ""
	}
	textos := make([]string, 0, len(comentarios))
	for _, c := range comentarios {
		textos = append(textos, c.Texto)
	}
	texto := strings.ToLower(strings.Join(textos, " "))

	switch {
	case reNoResponde.MatchString(texto):
		return MotivoNoResponde
	case rePrecioElevado.MatchString(texto):
		return MotivoPrecioElevado
	case reDemora.MatchString(texto):
		return MotivoDemora
	}
	return ""
}

// DetalleMotivo es el desglose de una categoría dentro de un taller.
type DetalleMotivo struct {
	Cantidad   int `json:"cantidad"`
	Porcentaje int `json:"porcentaje"`
}

// RechazosTaller es la fila de rechazos de un taller con su desglose por motivo.
type RechazosTaller struct {
	Taller   string                   `json:"taller"`
	Cantidad int                      `json:"cantidad"`
	Importe  float64                  `json:"importe"`
	Motivos  map[string]DetalleMotivo `json:"motivosRechazo"`
}

// Rechazos agrupa los presupuestos rechazados por nombre de taller con el
// desglose por motivo. Si los motivos detectados superan el total de rechazados
// del taller (ruido en los comentarios) se escalan proporcionalmente para que
// nunca lo excedan. Filas en cero para todos los talleres, importe descendente.
func Rechazos(d Datos) ([]RechazosTaller, TotalesResumen) {
	porNombre := make(map[string]*RechazosTaller)
	motivosPorNombre := make(map[string]map[string]int)
	for _, nombre := range d.nombresConocidos() {
		porNombre[nombre] = &RechazosTaller{Taller: nombre}
		motivosPorNombre[nombre] = make(map[string]int)
	}

	for i := range d.Presupuestos {
		p := &d.Presupuestos[i]
		if p.Estado != models.EstadoRechazado {
			continue
		}
		nombre := d.NombreTaller(p.Taller)
		fila, ok := porNombre[nombre]
		if !ok {
			continue
		}
		fila.Cantidad++
		fila.Importe += p.Importe
		if motivo := ClasificarMotivo(p.Comentarios); motivo != "" {
			motivosPorNombre[nombre][motivo]++
		}
	}

	filas := make([]RechazosTaller, 0, len(porNombre))
	var totales TotalesResumen
	for nombre, fila := range porNombre {
		conteos := motivosPorNombre[nombre]

		totalMotivos := 0
		for _, cantidad := range conteos {
			totalMotivos += cantidad
		}
		// Corrección proporcional cuando los motivos exceden el total.
		if totalMotivos > fila.Cantidad && totalMotivos > 0 {
			factor := float64(fila.Cantidad) / float64(totalMotivos)
			for motivo, cantidad := range conteos {
				conteos[motivo] = redondear(float64(cantidad) * factor)
			}
		}

		fila.Motivos = make(map[string]DetalleMotivo, 3)
		for _, motivo := range MotivosRechazo() {
			detalle := DetalleMotivo{Cantidad: conteos[motivo]}
			if fila.Cantidad > 0 {
				detalle.Porcentaje = porcentaje(detalle.Cantidad, fila.Cantidad)
			}
			fila.Motivos[motivo] = detalle
		}

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
