// server/internal/api/handlers/presupuesto_handler.go
package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"presupuestos-api-server/internal/aceites"
	"presupuestos-api-server/internal/models"
	"presupuestos-api-server/internal/stats"
	"presupuestos-api-server/internal/subestado"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type PresupuestoHandler struct {
	DB *mongo.Database
}

// catalogo materializa el catálogo de aceites una vez por request. Si la
// lectura falla se sigue sin catálogo: las piezas se tratan como no-aceite.
func (h *PresupuestoHandler) catalogo(ctx context.Context) aceites.Catalogo {
	cat, err := aceites.CargarCatalogo(ctx, h.DB)
	if err != nil {
		log.Printf("No se pudo cargar el catálogo de aceites: %v", err)
		return aceites.Catalogo{}
	}
	return cat
}

// diasParaPendiente lee el umbral de la configuración general en cada consulta.
func (h *PresupuestoHandler) diasParaPendiente(ctx context.Context) int {
	var cfg models.ConfiguracionGeneral
	err := h.DB.Collection("configuracion").
		FindOne(ctx, bson.M{"clave": models.ConfiguracionGeneralDocKey}).
		Decode(&cfg)
	if err != nil || cfg.DiasParaPendiente < 1 {
		return models.DiasParaPendienteDefault
	}
	return cfg.DiasParaPendiente
}

// mapeoTalleres devuelve codigo→nombre. Una tabla vacía no es un error: los
// códigos sin nombre se muestran tal cual.
func (h *PresupuestoHandler) mapeoTalleres(ctx context.Context) map[string]string {
	cursor, err := h.DB.Collection("talleres").Find(ctx, bson.M{})
	if err != nil {
		log.Printf("No se pudo leer la tabla de talleres: %v", err)
		return map[string]string{}
	}
	defer cursor.Close(ctx)

	var talleres []models.Taller
	if err := cursor.All(ctx, &talleres); err != nil {
		log.Printf("No se pudo decodificar la tabla de talleres: %v", err)
		return map[string]string{}
	}
	mapeo := make(map[string]string, len(talleres))
	for _, t := range talleres {
		mapeo[t.Codigo] = t.Nombre
	}
	return mapeo
}

func parseFechaParam(valor string) *time.Time {
	if valor == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", valor)
	if err != nil {
		return nil
	}
	return &t
}

// GetPresupuestos lista presupuestos con búsqueda, filtros, orden y paginación.
func (h *PresupuestoHandler) GetPresupuestos(c *gin.Context) {
	ctx := context.Background()

	filtro := bson.M{}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		regex := bson.M{"$regex": search, "$options": "i"}
		filtro["$or"] = []bson.M{
			{"referencia": regex},
			{"nombre": regex},
			{"piezas.concepto": regex},
		}
	}
	if estado := c.Query("estado"); estado != "" {
		filtro["estado"] = estado
	}
	if tipo := strings.TrimSpace(c.Query("tipoSiniestro")); tipo != "" {
		filtro["descripcionSiniestro"] = bson.M{"$regex": tipo, "$options": "i"}
	}
	if taller := strings.TrimSpace(c.Query("taller")); taller != "" {
		codigos := strings.Split(taller, ",")
		for i := range codigos {
			codigos[i] = strings.TrimSpace(codigos[i])
		}
		filtro["taller"] = bson.M{"$in": codigos}
	}

	cursor, err := h.DB.Collection("presupuestos").Find(ctx, filtro)
	if err != nil {
		respondError(c, errInterno, "Error al consultar presupuestos")
		return
	}
	defer cursor.Close(ctx)

	var presupuestos []models.Presupuesto
	if err := cursor.All(ctx, &presupuestos); err != nil {
		respondError(c, errInterno, "Error al decodificar presupuestos")
		return
	}

	// El rango de fechas opera sobre fechaCreacion con fallback a fechaCarga,
	// por eso se filtra acá y no en la consulta.
	desde := parseFechaParam(c.Query("fechaDesde"))
	hasta := parseFechaParam(c.Query("fechaHasta"))
	presupuestos = stats.FiltrarRango(presupuestos, desde, hasta)

	catalogo := h.catalogo(ctx)
	catalogo.EnriquecerTodos(presupuestos)

	ahora := time.Now()
	dias := h.diasParaPendiente(ctx)
	subestado.Aplicar(presupuestos, dias, ahora)

	mapeo := h.mapeoTalleres(ctx)
	for i := range presupuestos {
		if nombre, ok := mapeo[presupuestos[i].Taller]; ok && nombre != "" {
			presupuestos[i].NombreTaller = nombre
		} else {
			presupuestos[i].NombreTaller = presupuestos[i].Taller
		}
	}

	// El subestado solo existe después de derivarlo, así que se filtra y se
	// repagina en memoria.
	if sub := c.Query("subestado"); sub != "" {
		filtrados := presupuestos[:0]
		for i := range presupuestos {
			if presupuestos[i].Subestado == sub {
				filtrados = append(filtrados, presupuestos[i])
			}
		}
		presupuestos = filtrados
	}

	ordenarPresupuestos(presupuestos, c.DefaultQuery("sortBy", "fecha"), c.DefaultQuery("sortOrder", "desc"))

	pagina, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if pagina < 1 {
		pagina = 1
	}
	limite, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limite < 1 {
		limite = 20
	}
	total := len(presupuestos)
	totalPaginas := (total + limite - 1) / limite

	inicio := (pagina - 1) * limite
	if inicio > total {
		inicio = total
	}
	fin := inicio + limite
	if fin > total {
		fin = total
	}
	paginados := presupuestos[inicio:fin]
	if paginados == nil {
		paginados = []models.Presupuesto{}
	}

	c.JSON(http.StatusOK, gin.H{
		"presupuestos": paginados,
		"paginacion": gin.H{
			"total":        total,
			"pagina":       pagina,
			"limite":       limite,
			"totalPaginas": totalPaginas,
		},
	})
}

func ordenarPresupuestos(presupuestos []models.Presupuesto, campo, orden string) {
	menor := func(a, b *models.Presupuesto) bool {
		switch campo {
		case "referencia":
			return a.Referencia < b.Referencia
		case "estado":
			return a.Estado < b.Estado
		case "importe":
			return a.Importe < b.Importe
		case "margen":
			return a.Margen < b.Margen
		default: // fecha
			return a.FechaCreacion().Before(b.FechaCreacion())
		}
	}
	sort.SliceStable(presupuestos, func(i, j int) bool {
		if orden == "asc" {
			return menor(&presupuestos[i], &presupuestos[j])
		}
		return menor(&presupuestos[j], &presupuestos[i])
	})
}

// GetPresupuestoByReferencia devuelve un presupuesto enriquecido.
func (h *PresupuestoHandler) GetPresupuestoByReferencia(c *gin.Context) {
	ctx := context.Background()
	referencia := c.Param("referencia")

	var presupuesto models.Presupuesto
	err := h.DB.Collection("presupuestos").
		FindOne(ctx, bson.M{"referencia": referencia}).
		Decode(&presupuesto)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, errNoEncontrado, "Presupuesto no encontrado")
		} else {
			respondError(c, errInterno, "Error al consultar el presupuesto")
		}
		return
	}

	catalogo := h.catalogo(ctx)
	catalogo.Enriquecer(&presupuesto)
	presupuesto.Subestado = subestado.Calcular(&presupuesto, h.diasParaPendiente(ctx), time.Now())

	var taller models.Taller
	err = h.DB.Collection("talleres").
		FindOne(ctx, bson.M{"codigo": presupuesto.Taller}).
		Decode(&taller)
	if err == nil && taller.Nombre != "" {
		presupuesto.NombreTaller = taller.Nombre
	} else {
		presupuesto.NombreTaller = presupuesto.Taller
	}

	c.JSON(http.StatusOK, presupuesto)
}

// DeletePresupuesto elimina un presupuesto por referencia.
func (h *PresupuestoHandler) DeletePresupuesto(c *gin.Context) {
	referencia := c.Param("referencia")

	result, err := h.DB.Collection("presupuestos").
		DeleteOne(context.Background(), bson.M{"referencia": referencia})
	if err != nil {
		respondError(c, errInterno, "Error al eliminar el presupuesto")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, errNoEncontrado, "Presupuesto no encontrado")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Presupuesto eliminado correctamente"})
}

type CambiarEstadoRequest struct {
	NuevoEstado         string `json:"nuevoEstado" binding:"required"`
	UsuarioCambioEstado string `json:"usuarioCambioEstado" binding:"required"`
	MotivoRechazo       string `json:"motivoRechazo"`
	ComentarioRechazo   string `json:"comentarioRechazo"`
}

// CambiarEstado transiciona el estado del presupuesto. Cualquier transición
// entre estados válidos está permitida; un rechazo exige motivo y explicación.
func (h *PresupuestoHandler) CambiarEstado(c *gin.Context) {
	ctx := context.Background()
	referencia := c.Param("referencia")

	var req CambiarEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errValidacion, err.Error())
		return
	}
	if !models.EsEstadoValido(req.NuevoEstado) {
		respondError(c, errValidacion, "Estado no válido: "+req.NuevoEstado)
		return
	}
	if req.NuevoEstado == models.EstadoRechazado {
		if !stats.EsMotivoValido(req.MotivoRechazo) {
			respondError(c, errValidacion, "El rechazo requiere un motivo válido")
			return
		}
		if strings.TrimSpace(req.ComentarioRechazo) == "" {
			respondError(c, errValidacion, "El rechazo requiere un comentario explicativo")
			return
		}
	}

	collection := h.DB.Collection("presupuestos")

	var presupuesto models.Presupuesto
	err := collection.FindOne(ctx, bson.M{"referencia": referencia}).Decode(&presupuesto)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, errNoEncontrado, "Presupuesto no encontrado")
		} else {
			respondError(c, errInterno, "Error al consultar el presupuesto")
		}
		return
	}

	ahora := time.Now()
	comentario := models.Comentario{
		ID:      ahora.UnixMilli(),
		Texto:   textoCambioEstado(presupuesto.Estado, req.NuevoEstado, req.MotivoRechazo, req.ComentarioRechazo),
		Fecha:   ahora,
		Usuario: req.UsuarioCambioEstado,
	}

	update := bson.M{
		"$set": bson.M{
			"estado":                      req.NuevoEstado,
			"ultimaActualizacion":         ahora,
			"auditoria.estadoAnterior":    presupuesto.Estado,
			"auditoria.estadoCambiadoPor": req.UsuarioCambioEstado,
			"auditoria.fechaCambioEstado": ahora,
		},
		"$push": bson.M{"comentarios": comentario},
	}
	if _, err := collection.UpdateOne(ctx, bson.M{"referencia": referencia}, update); err != nil {
		respondError(c, errInterno, "Error al actualizar el estado")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Estado actualizado correctamente",
		"referencia":     referencia,
		"estadoAnterior": presupuesto.Estado,
		"estado":         req.NuevoEstado,
	})
}

// textoCambioEstado arma el comentario que deja registro de la transición.
// Para un rechazo incluye el motivo y la explicación del usuario.
func textoCambioEstado(anterior, nuevo, motivo, explicacion string) string {
	texto := fmt.Sprintf("Estado cambiado de %s a %s", anterior, nuevo)
	if nuevo == models.EstadoRechazado {
		texto = fmt.Sprintf("%s. Motivo: %s. %s", texto, motivo, strings.TrimSpace(explicacion))
	}
	return texto
}

type ComentarioRequest struct {
	Texto   string `json:"texto" binding:"required"`
	Usuario string `json:"usuario" binding:"required"`
}

// AgregarComentario agrega un comentario al presupuesto.
func (h *PresupuestoHandler) AgregarComentario(c *gin.Context) {
	ctx := context.Background()
	referencia := c.Param("referencia")

	var req ComentarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errValidacion, err.Error())
		return
	}

	ahora := time.Now()
	comentario := models.Comentario{
		ID:      ahora.UnixMilli(),
		Texto:   req.Texto,
		Fecha:   ahora,
		Usuario: req.Usuario,
	}

	result, err := h.DB.Collection("presupuestos").UpdateOne(ctx,
		bson.M{"referencia": referencia},
		bson.M{
			"$push": bson.M{"comentarios": comentario},
			"$set":  bson.M{"ultimaActualizacion": ahora},
		})
	if err != nil {
		respondError(c, errInterno, "Error al agregar el comentario")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, errNoEncontrado, "Presupuesto no encontrado")
		return
	}

	c.JSON(http.StatusCreated, comentario)
}

// EliminarComentario borra un comentario por su id.
func (h *PresupuestoHandler) EliminarComentario(c *gin.Context) {
	ctx := context.Background()
	referencia := c.Param("referencia")

	id, err := strconv.ParseInt(c.Param("comentarioId"), 10, 64)
	if err != nil {
		respondError(c, errValidacion, "Id de comentario inválido")
		return
	}

	result, err := h.DB.Collection("presupuestos").UpdateOne(ctx,
		bson.M{"referencia": referencia},
		bson.M{
			"$pull": bson.M{"comentarios": bson.M{"id": id}},
			"$set":  bson.M{"ultimaActualizacion": time.Now()},
		})
	if err != nil {
		respondError(c, errInterno, "Error al eliminar el comentario")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, errNoEncontrado, "Presupuesto no encontrado")
		return
	}
	if result.ModifiedCount == 0 {
		respondError(c, errNoEncontrado, "Comentario no encontrado")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comentario eliminado correctamente"})
}

type OrSiniestroRequest struct {
	OrSiniestro string `json:"orSiniestro" binding:"required,max=15"`
	Usuario     string `json:"usuario" binding:"required"`
}

// ActualizarOrSiniestro asigna el número de OR. Solo válido en Aceptado.
func (h *PresupuestoHandler) ActualizarOrSiniestro(c *gin.Context) {
	ctx := context.Background()
	referencia := c.Param("referencia")

	var req OrSiniestroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errValidacion, err.Error())
		return
	}

	var presupuesto models.Presupuesto
	err := h.DB.Collection("presupuestos").
		FindOne(ctx, bson.M{"referencia": referencia}).
		Decode(&presupuesto)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, errNoEncontrado, "Presupuesto no encontrado")
		} else {
			respondError(c, errInterno, "Error al consultar el presupuesto")
		}
		return
	}
	if presupuesto.Estado != models.EstadoAceptado {
		respondError(c, errValidacion, "Solo se puede asignar OR a un presupuesto aceptado")
		return
	}

	ahora := time.Now()
	_, err = h.DB.Collection("presupuestos").UpdateOne(ctx,
		bson.M{"referencia": referencia},
		bson.M{"$set": bson.M{
			"orSiniestro":                 strings.TrimSpace(req.OrSiniestro),
			"ultimaActualizacion":         ahora,
			"auditoria.modificadoPor":     req.Usuario,
			"auditoria.fechaModificacion": ahora,
		}})
	if err != nil {
		respondError(c, errInterno, "Error al actualizar el OR")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OR actualizado correctamente"})
}
