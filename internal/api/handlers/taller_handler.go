// server/internal/api/handlers/taller_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"presupuestos-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TallerHandler struct {
	DB *mongo.Database
}

type CreateTallerRequest struct {
	Codigo string `json:"codigo" binding:"required"`
	Nombre string `json:"nombre" binding:"required"`
}

type UpdateTallerRequest struct {
	Nombre string `json:"nombre" binding:"required"`
	Activo *bool  `json:"activo"`
}

func (h *TallerHandler) listar(c *gin.Context, filtro bson.M) {
	ctx := context.Background()

	opts := options.Find().SetSort(bson.D{{Key: "nombre", Value: 1}})
	cursor, err := h.DB.Collection("talleres").Find(ctx, filtro, opts)
	if err != nil {
		respondError(c, errInterno, "Error al consultar talleres")
		return
	}
	defer cursor.Close(ctx)

	var talleres []models.Taller
	if err := cursor.All(ctx, &talleres); err != nil {
		respondError(c, errInterno, "Error al decodificar talleres")
		return
	}
	if talleres == nil {
		talleres = []models.Taller{}
	}

	c.JSON(http.StatusOK, talleres)
}

// GetTalleres lista todos los talleres ordenados por nombre.
func (h *TallerHandler) GetTalleres(c *gin.Context) {
	h.listar(c, bson.M{})
}

// GetTalleresActivos lista solo los talleres activos.
func (h *TallerHandler) GetTalleresActivos(c *gin.Context) {
	h.listar(c, bson.M{"activo": true})
}

// GetTallerByCodigo devuelve un taller por su código.
func (h *TallerHandler) GetTallerByCodigo(c *gin.Context) {
	codigo := c.Param("codigo")

	var taller models.Taller
	err := h.DB.Collection("talleres").
		FindOne(context.Background(), bson.M{"codigo": codigo}).
		Decode(&taller)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, errNoEncontrado, "Taller no encontrado")
		} else {
			respondError(c, errInterno, "Error al consultar el taller")
		}
		return
	}

	c.JSON(http.StatusOK, taller)
}

// CreateTaller da de alta un taller. El código debe ser único; el nombre puede
// repetirse entre códigos (las estadísticas los agrupan).
func (h *TallerHandler) CreateTaller(c *gin.Context) {
	ctx := context.Background()

	var req CreateTallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errValidacion, err.Error())
		return
	}

	codigo := strings.TrimSpace(req.Codigo)
	nombre := strings.TrimSpace(req.Nombre)
	if codigo == "" || nombre == "" {
		respondError(c, errValidacion, "Código y nombre no pueden ser vacíos")
		return
	}

	collection := h.DB.Collection("talleres")
	count, err := collection.CountDocuments(ctx, bson.M{"codigo": codigo})
	if err != nil {
		respondError(c, errInterno, "Error al verificar el código")
		return
	}
	if count > 0 {
		respondError(c, errConflicto, "Ya existe un taller con ese código")
		return
	}

	ahora := time.Now()
	taller := models.Taller{
		Codigo:             codigo,
		Nombre:             nombre,
		Activo:             true,
		FechaCreacion:      ahora,
		FechaActualizacion: ahora,
	}

	result, err := collection.InsertOne(ctx, taller)
	if err != nil {
		respondMongoWrite(c, err, "Ya existe un taller con ese código", "Error al crear el taller")
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		taller.ID = oid
	}

	c.JSON(http.StatusCreated, taller)
}

// UpdateTaller modifica nombre y/o estado de actividad.
func (h *TallerHandler) UpdateTaller(c *gin.Context) {
	codigo := c.Param("codigo")

	var req UpdateTallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errValidacion, err.Error())
		return
	}

	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		respondError(c, errValidacion, "El nombre no puede ser vacío")
		return
	}

	set := bson.M{
		"nombre":             nombre,
		"fechaActualizacion": time.Now(),
	}
	if req.Activo != nil {
		set["activo"] = *req.Activo
	}

	result, err := h.DB.Collection("talleres").
		UpdateOne(context.Background(), bson.M{"codigo": codigo}, bson.M{"$set": set})
	if err != nil {
		respondError(c, errInterno, "Error al actualizar el taller")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, errNoEncontrado, "Taller no encontrado")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Taller actualizado correctamente"})
}

// DeleteTaller desactiva el taller. No se borra: los presupuestos históricos
// siguen refiriendo su código.
func (h *TallerHandler) DeleteTaller(c *gin.Context) {
	codigo := c.Param("codigo")

	result, err := h.DB.Collection("talleres").UpdateOne(context.Background(),
		bson.M{"codigo": codigo},
		bson.M{"$set": bson.M{"activo": false, "fechaActualizacion": time.Now()}})
	if err != nil {
		respondError(c, errInterno, "Error al desactivar el taller")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, errNoEncontrado, "Taller no encontrado")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Taller desactivado correctamente"})
}

// GetCodigosEnUso lista los códigos de taller referidos por presupuestos que
// aún no tienen entrada en la tabla de talleres.
func (h *TallerHandler) GetCodigosEnUso(c *gin.Context) {
	ctx := context.Background()

	valores, err := h.DB.Collection("presupuestos").Distinct(ctx, "taller", bson.M{})
	if err != nil {
		respondError(c, errInterno, "Error al consultar códigos de taller")
		return
	}

	registrados, err := h.DB.Collection("talleres").Distinct(ctx, "codigo", bson.M{})
	if err != nil {
		respondError(c, errInterno, "Error al consultar talleres registrados")
		return
	}
	conEntrada := make(map[string]struct{}, len(registrados))
	for _, v := range registrados {
		if s, ok := v.(string); ok {
			conEntrada[s] = struct{}{}
		}
	}

	sinRegistrar := make([]string, 0)
	for _, v := range valores {
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		if _, ya := conEntrada[s]; !ya {
			sinRegistrar = append(sinRegistrar, s)
		}
	}

	c.JSON(http.StatusOK, sinRegistrar)
}
