// server/internal/api/handlers/estadisticas_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"presupuestos-api-server/internal/models"
	"presupuestos-api-server/internal/stats"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type EstadisticasHandler struct {
	DB *mongo.Database
}

// datos arma la entrada del motor de estadísticas: presupuestos del filtro,
// enriquecidos con el catálogo de aceites y acotados al rango de fechas, más
// el universo de talleres conocidos.
func (h *EstadisticasHandler) datos(c *gin.Context, filtro bson.M) (stats.Datos, bool) {
	ctx := context.Background()

	cursor, err := h.DB.Collection("presupuestos").Find(ctx, filtro)
	if err != nil {
		respondError(c, errInterno, "Error al consultar presupuestos")
		return stats.Datos{}, false
	}
	defer cursor.Close(ctx)

	var presupuestos []models.Presupuesto
	if err := cursor.All(ctx, &presupuestos); err != nil {
		respondError(c, errInterno, "Error al decodificar presupuestos")
		return stats.Datos{}, false
	}

	desde := parseFechaParam(c.Query("fechaDesde"))
	hasta := parseFechaParam(c.Query("fechaHasta"))
	presupuestos = stats.FiltrarRango(presupuestos, desde, hasta)

	ph := PresupuestoHandler{DB: h.DB}
	catalogo := ph.catalogo(ctx)
	catalogo.EnriquecerTodos(presupuestos)

	mapeo := ph.mapeoTalleres(ctx)
	codigos := make([]string, 0, len(mapeo))
	for codigo := range mapeo {
		codigos = append(codigos, codigo)
	}
	// Códigos presentes en los datos pero ausentes de la tabla también cuentan.
	vistos := make(map[string]struct{}, len(mapeo))
	for _, codigo := range codigos {
		vistos[codigo] = struct{}{}
	}
	for i := range presupuestos {
		if _, ok := vistos[presupuestos[i].Taller]; !ok {
			vistos[presupuestos[i].Taller] = struct{}{}
			codigos = append(codigos, presupuestos[i].Taller)
		}
	}

	return stats.Datos{Presupuestos: presupuestos, Codigos: codigos, Mapeo: mapeo}, true
}

// GetEstadisticas devuelve los acumulados generales del dashboard.
func (h *EstadisticasHandler) GetEstadisticas(c *gin.Context) {
	d, ok := h.datos(c, bson.M{})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats.Generales(d.Presupuestos))
}

// GetPorEstado desglosa cantidades e importes por estado.
func (h *EstadisticasHandler) GetPorEstado(c *gin.Context) {
	d, ok := h.datos(c, bson.M{})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats.PorEstado(d.Presupuestos))
}

// GetPorTipoSiniestro desglosa por descripción de siniestro.
func (h *EstadisticasHandler) GetPorTipoSiniestro(c *gin.Context) {
	d, ok := h.datos(c, bson.M{})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats.PorTipoSiniestro(d.Presupuestos))
}

// GetPorTaller devuelve cantidad e importe de todos los presupuestos por taller.
func (h *EstadisticasHandler) GetPorTaller(c *gin.Context) {
	d, ok := h.datos(c, bson.M{})
	if !ok {
		return
	}
	filas, totales := stats.PorTodos(d)
	c.JSON(http.StatusOK, gin.H{"talleres": filas, "totales": totales})
}

// GetAceptadosPorTaller lista los aceptados por taller con totales.
func (h *EstadisticasHandler) GetAceptadosPorTaller(c *gin.Context) {
	d, ok := h.datos(c, bson.M{"estado": models.EstadoAceptado})
	if !ok {
		return
	}
	filas, totales := stats.PorTallerEstado(d, models.EstadoAceptado)
	c.JSON(http.StatusOK, gin.H{"talleres": filas, "totales": totales})
}

// GetRechazadosPorTaller lista los rechazados por taller, clasificados por motivo.
func (h *EstadisticasHandler) GetRechazadosPorTaller(c *gin.Context) {
	d, ok := h.datos(c, bson.M{"estado": models.EstadoRechazado})
	if !ok {
		return
	}
	filas, totales := stats.Rechazos(d)
	c.JSON(http.StatusOK, gin.H{"talleres": filas, "totales": totales})
}

// GetAbiertosPendientesPorTaller lista los abiertos con subestado Pendiente.
func (h *EstadisticasHandler) GetAbiertosPendientesPorTaller(c *gin.Context) {
	d, ok := h.datos(c, bson.M{"estado": models.EstadoAbierto})
	if !ok {
		return
	}
	ph := PresupuestoHandler{DB: h.DB}
	dias := ph.diasParaPendiente(context.Background())
	filas, totales := stats.AbiertosPendientes(d, dias, time.Now())
	c.JSON(http.StatusOK, gin.H{"talleres": filas, "totales": totales, "diasParaPendiente": dias})
}

// GetConversionPorTaller devuelve la tasa de conversión por taller.
func (h *EstadisticasHandler) GetConversionPorTaller(c *gin.Context) {
	d, ok := h.datos(c, bson.M{})
	if !ok {
		return
	}
	filas, totales := stats.Conversion(d)
	c.JSON(http.StatusOK, gin.H{"talleres": filas, "totales": totales})
}

// GetMensualesPorTaller arma la grilla mensual por taller.
func (h *EstadisticasHandler) GetMensualesPorTaller(c *gin.Context) {
	d, ok := h.datos(c, bson.M{})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats.Mensuales(d, time.Now()))
}

// GetAceptadosConOrs devuelve el total de aceptados con OR asignado.
func (h *EstadisticasHandler) GetAceptadosConOrs(c *gin.Context) {
	d, ok := h.datos(c, bson.M{"estado": models.EstadoAceptado})
	if !ok {
		return
	}
	_, total := stats.OrsPorTaller(d.Presupuestos)
	c.JSON(http.StatusOK, gin.H{"total": total})
}

// GetOrsPorTaller desglosa los aceptados con OR por nombre de taller.
func (h *EstadisticasHandler) GetOrsPorTaller(c *gin.Context) {
	d, ok := h.datos(c, bson.M{"estado": models.EstadoAceptado})
	if !ok {
		return
	}
	porCodigo, total := stats.OrsPorTaller(d.Presupuestos)
	porNombre := make(map[string]int)
	for codigo, cantidad := range porCodigo {
		porNombre[d.NombreTaller(codigo)] += cantidad
	}
	c.JSON(http.StatusOK, gin.H{"talleres": porNombre, "total": total})
}

// GetMesesDisponibles lista los meses con datos para los filtros de la UI.
func (h *EstadisticasHandler) GetMesesDisponibles(c *gin.Context) {
	d, ok := h.datos(c, bson.M{})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats.MesesDisponibles(d.Presupuestos))
}

// GetTalleresUnicos lista los códigos de taller usados por los presupuestos.
func (h *EstadisticasHandler) GetTalleresUnicos(c *gin.Context) {
	ctx := context.Background()
	valores, err := h.DB.Collection("presupuestos").Distinct(ctx, "taller", bson.M{})
	if err != nil {
		respondError(c, errInterno, "Error al consultar talleres")
		return
	}
	talleres := make([]string, 0, len(valores))
	for _, v := range valores {
		if s, ok := v.(string); ok && s != "" {
			talleres = append(talleres, s)
		}
	}
	c.JSON(http.StatusOK, talleres)
}

// GetTiposSiniestro lista las descripciones de siniestro distintas.
func (h *EstadisticasHandler) GetTiposSiniestro(c *gin.Context) {
	ctx := context.Background()
	valores, err := h.DB.Collection("presupuestos").Distinct(ctx, "descripcionSiniestro", bson.M{})
	if err != nil {
		respondError(c, errInterno, "Error al consultar tipos de siniestro")
		return
	}
	tipos := make([]string, 0, len(valores))
	for _, v := range valores {
		if s, ok := v.(string); ok && s != "" {
			tipos = append(tipos, s)
		}
	}
	c.JSON(http.StatusOK, tipos)
}
