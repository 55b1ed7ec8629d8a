// server/internal/subestado/subestado.go
package subestado

import (
	"time"

	"presupuestos-api-server/internal/models"
)

// Calcular deriva el subestado de un presupuesto en el instante "ahora".
// Solo los presupuestos abiertos tienen subestado; para el resto devuelve "".
//
// La fecha de referencia es la más reciente entre la fecha de creación y el
// último comentario: un comentario nuevo reinicia la cuenta. Si han pasado más
// de diasParaPendiente*24 horas desde esa fecha, el presupuesto está Pendiente;
// si no, En espera. El resultado nunca se persiste, se recalcula en cada lectura.
func Calcular(p *models.Presupuesto, diasParaPendiente int, ahora time.Time) string {
	if p.Estado != models.EstadoAbierto {
		return ""
	}

	fechaReferencia := p.FechaCreacion()
	for _, c := range p.Comentarios {
		if c.Fecha.After(fechaReferencia) {
			fechaReferencia = c.Fecha
		}
	}

	horasTranscurridas := ahora.Sub(fechaReferencia).Hours()
	horasParaPendiente := float64(diasParaPendiente) * 24

	if horasTranscurridas > horasParaPendiente {
		return models.SubestadoPendiente
	}
	return models.SubestadoEnEspera
}

// Aplicar calcula y asigna el subestado de cada presupuesto del slice.
func Aplicar(presupuestos []models.Presupuesto, diasParaPendiente int, ahora time.Time) {
	for i := range presupuestos {
		presupuestos[i].Subestado = Calcular(&presupuestos[i], diasParaPendiente, ahora)
	}
}
