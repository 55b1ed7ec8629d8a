// server/internal/api/handlers/errors.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// Tipos de error que devuelve la API. El cliente distingue por "error".
const (
	errValidacion   = "validation_error"
	errNoEncontrado = "not_found"
	errConflicto    = "conflict"
	errUpstream     = "upstream_error"
	errInterno      = "internal_error"
)

var codigoHTTP = map[string]int{
	errValidacion:   http.StatusBadRequest,
	errNoEncontrado: http.StatusNotFound,
	errConflicto:    http.StatusConflict,
	errUpstream:     http.StatusBadGateway,
	errInterno:      http.StatusInternalServerError,
}

// respondError escribe el cuerpo de error uniforme {"error": tipo, "message": msg}.
func respondError(c *gin.Context, tipo, mensaje string) {
	status, ok := codigoHTTP[tipo]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": tipo, "message": mensaje})
}

// respondMongoWrite traduce errores de escritura de Mongo. Una clave duplicada
// (dos escrituras concurrentes pasando el chequeo previo) es un conflicto, no
// un error interno.
func respondMongoWrite(c *gin.Context, err error, mensajeConflicto, mensajeInterno string) {
	if mongo.IsDuplicateKeyError(err) {
		respondError(c, errConflicto, mensajeConflicto)
		return
	}
	respondError(c, errInterno, mensajeInterno)
}
