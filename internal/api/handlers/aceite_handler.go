// server/internal/api/handlers/aceite_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"presupuestos-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AceiteHandler struct {
	DB *mongo.Database
}

type AceiteRequest struct {
	Sku             string  `json:"sku" binding:"required"`
	LitrosPorTambor float64 `json:"litrosPorTambor" binding:"required,gt=0,max=1000"`
	Usuario         string  `json:"usuario" binding:"required"`
}

// GetAceites lista el catálogo, el más reciente primero.
func (h *AceiteHandler) GetAceites(c *gin.Context) {
	ctx := context.Background()

	opts := options.Find().SetSort(bson.D{{Key: "auditoria.fechaCreacion", Value: -1}})
	cursor, err := h.DB.Collection("aceites").Find(ctx, bson.M{}, opts)
	if err != nil {
		respondError(c, errInterno, "Error al consultar el catálogo de aceites")
		return
	}
	defer cursor.Close(ctx)

	var lista []models.Aceite
	if err := cursor.All(ctx, &lista); err != nil {
		respondError(c, errInterno, "Error al decodificar el catálogo")
		return
	}
	if lista == nil {
		lista = []models.Aceite{}
	}

	c.JSON(http.StatusOK, lista)
}

// BuscarAceite busca por fragmento de SKU, sin distinguir mayúsculas.
func (h *AceiteHandler) BuscarAceite(c *gin.Context) {
	ctx := context.Background()

	sku := c.Query("sku")
	if sku == "" {
		respondError(c, errValidacion, "Falta el parámetro sku")
		return
	}

	cursor, err := h.DB.Collection("aceites").
		Find(ctx, bson.M{"sku": bson.M{"$regex": sku, "$options": "i"}})
	if err != nil {
		respondError(c, errInterno, "Error al buscar aceites")
		return
	}
	defer cursor.Close(ctx)

	var lista []models.Aceite
	if err := cursor.All(ctx, &lista); err != nil {
		respondError(c, errInterno, "Error al decodificar el resultado")
		return
	}
	if lista == nil {
		lista = []models.Aceite{}
	}

	c.JSON(http.StatusOK, lista)
}

// GetAceiteByID devuelve una entrada del catálogo por su id.
func (h *AceiteHandler) GetAceiteByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, errValidacion, "Id inválido")
		return
	}

	var aceite models.Aceite
	err = h.DB.Collection("aceites").
		FindOne(context.Background(), bson.M{"_id": id}).
		Decode(&aceite)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, errNoEncontrado, "Aceite no encontrado")
		} else {
			respondError(c, errInterno, "Error al consultar el aceite")
		}
		return
	}

	c.JSON(http.StatusOK, aceite)
}

// CreateAceite da de alta un SKU. El SKU se normaliza y debe ser único.
func (h *AceiteHandler) CreateAceite(c *gin.Context) {
	ctx := context.Background()

	var req AceiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errValidacion, err.Error())
		return
	}

	sku := models.NormalizarSku(req.Sku)
	if sku == "" {
		respondError(c, errValidacion, "El SKU no puede ser vacío")
		return
	}

	collection := h.DB.Collection("aceites")
	count, err := collection.CountDocuments(ctx, bson.M{"sku": sku})
	if err != nil {
		respondError(c, errInterno, "Error al verificar el SKU")
		return
	}
	if count > 0 {
		respondError(c, errConflicto, "Ya existe un aceite con ese SKU")
		return
	}

	ahora := time.Now()
	aceite := models.Aceite{
		Sku:             sku,
		LitrosPorTambor: req.LitrosPorTambor,
		Auditoria: models.AuditoriaAceite{
			FechaCreacion:        ahora,
			FechaActualizacion:   ahora,
			UsuarioCreacion:      req.Usuario,
			UsuarioActualizacion: req.Usuario,
		},
	}

	result, err := collection.InsertOne(ctx, aceite)
	if err != nil {
		// El índice único cubre la carrera entre el chequeo previo y el insert.
		respondMongoWrite(c, err, "Ya existe un aceite con ese SKU", "Error al crear el aceite")
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		aceite.ID = oid
	}

	c.JSON(http.StatusCreated, aceite)
}

// UpdateAceite modifica SKU o litros, cuidando la unicidad del SKU.
func (h *AceiteHandler) UpdateAceite(c *gin.Context) {
	ctx := context.Background()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, errValidacion, "Id inválido")
		return
	}

	var req AceiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errValidacion, err.Error())
		return
	}

	sku := models.NormalizarSku(req.Sku)
	if sku == "" {
		respondError(c, errValidacion, "El SKU no puede ser vacío")
		return
	}

	collection := h.DB.Collection("aceites")
	count, err := collection.CountDocuments(ctx, bson.M{"sku": sku, "_id": bson.M{"$ne": id}})
	if err != nil {
		respondError(c, errInterno, "Error al verificar el SKU")
		return
	}
	if count > 0 {
		respondError(c, errConflicto, "Ya existe otro aceite con ese SKU")
		return
	}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"sku":                            sku,
		"litrosPorTambor":                req.LitrosPorTambor,
		"auditoria.fechaActualizacion":   time.Now(),
		"auditoria.usuarioActualizacion": req.Usuario,
	}})
	if err != nil {
		respondMongoWrite(c, err, "Ya existe otro aceite con ese SKU", "Error al actualizar el aceite")
		return
	}
	if result.MatchedCount == 0 {
		respondError(c, errNoEncontrado, "Aceite no encontrado")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Aceite actualizado correctamente"})
}

// DeleteAceite elimina una entrada del catálogo.
func (h *AceiteHandler) DeleteAceite(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, errValidacion, "Id inválido")
		return
	}

	result, err := h.DB.Collection("aceites").
		DeleteOne(context.Background(), bson.M{"_id": id})
	if err != nil {
		respondError(c, errInterno, "Error al eliminar el aceite")
		return
	}
	if result.DeletedCount == 0 {
		respondError(c, errNoEncontrado, "Aceite no encontrado")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Aceite eliminado correctamente"})
}
