// server/internal/api/handlers/configuracion_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"

	"presupuestos-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ConfiguracionHandler struct {
	DB *mongo.Database
}

type UpdateConfiguracionRequest struct {
	DiasParaPendiente  *int    `json:"diasParaPendiente"`
	DirectorioAdjuntos *string `json:"directorioAdjuntos"`
}

// GetConfiguracion devuelve la configuración general, creándola con los valores
// por defecto si todavía no existe.
func (h *ConfiguracionHandler) GetConfiguracion(c *gin.Context) {
	ctx := context.Background()
	collection := h.DB.Collection("configuracion")

	var cfg models.ConfiguracionGeneral
	err := collection.
		FindOne(ctx, bson.M{"clave": models.ConfiguracionGeneralDocKey}).
		Decode(&cfg)
	if err == mongo.ErrNoDocuments {
		cfg = models.ConfiguracionGeneralDefault()
		if _, err := collection.InsertOne(ctx, cfg); err != nil {
			respondError(c, errInterno, "Error al inicializar la configuración")
			return
		}
	} else if err != nil {
		respondError(c, errInterno, "Error al consultar la configuración")
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// UpdateConfiguracion actualiza solo los campos presentes en la petición.
func (h *ConfiguracionHandler) UpdateConfiguracion(c *gin.Context) {
	ctx := context.Background()

	var req UpdateConfiguracionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errValidacion, err.Error())
		return
	}
	if req.DiasParaPendiente == nil && req.DirectorioAdjuntos == nil {
		respondError(c, errValidacion, "No hay campos para actualizar")
		return
	}

	set := bson.M{"clave": models.ConfiguracionGeneralDocKey}
	if req.DiasParaPendiente != nil {
		dias := *req.DiasParaPendiente
		if dias < 1 || dias > 30 {
			respondError(c, errValidacion, "diasParaPendiente debe estar entre 1 y 30")
			return
		}
		set["diasParaPendiente"] = dias
	}
	if req.DirectorioAdjuntos != nil {
		dir := strings.TrimSpace(*req.DirectorioAdjuntos)
		if dir == "" {
			respondError(c, errValidacion, "directorioAdjuntos no puede ser vacío")
			return
		}
		set["directorioAdjuntos"] = dir
	}

	collection := h.DB.Collection("configuracion")
	_, err := collection.UpdateOne(ctx,
		bson.M{"clave": models.ConfiguracionGeneralDocKey},
		bson.M{"$set": set},
		options.Update().SetUpsert(true))
	if err != nil {
		respondError(c, errInterno, "Error al guardar la configuración")
		return
	}

	var cfg models.ConfiguracionGeneral
	if err := collection.
		FindOne(ctx, bson.M{"clave": models.ConfiguracionGeneralDocKey}).
		Decode(&cfg); err != nil {
		respondError(c, errInterno, "Error al releer la configuración")
		return
	}

	c.JSON(http.StatusOK, cfg)
}
