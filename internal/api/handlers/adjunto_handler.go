// server/internal/api/handlers/adjunto_handler.go
package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"presupuestos-api-server/internal/models"
	"presupuestos-api-server/internal/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Tamaño máximo de un adjunto: 50MB.
const maxTamanioAdjunto = 50 << 20

type AdjuntoHandler struct {
	DB *mongo.Database
	// Directorio del proceso, usado cuando la configuración general no define uno.
	DirPorDefecto string
}

// disco resuelve el directorio de adjuntos en cada operación: manda el valor
// persistido en la configuración general y, si no hay, el del proceso.
func (h *AdjuntoHandler) disco(ctx context.Context) (*storage.Disk, error) {
	var cfg models.ConfiguracionGeneral
	err := h.DB.Collection("configuracion").
		FindOne(ctx, bson.M{"clave": models.ConfiguracionGeneralDocKey}).
		Decode(&cfg)
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, err
	}
	return storage.NewDisk(directorioAdjuntos(cfg, h.DirPorDefecto))
}

func directorioAdjuntos(cfg models.ConfiguracionGeneral, porDefecto string) string {
	if dir := strings.TrimSpace(cfg.DirectorioAdjuntos); dir != "" {
		return dir
	}
	return porDefecto
}

// SubirAdjunto recibe el archivo por multipart ("archivo") y lo asocia al
// presupuesto. Si el presupuesto no existe o el alta de metadatos falla, el
// archivo guardado se elimina.
func (h *AdjuntoHandler) SubirAdjunto(c *gin.Context) {
	ctx := context.Background()
	referencia := c.Param("referencia")

	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		respondError(c, errValidacion, "Falta el archivo en el campo 'archivo'")
		return
	}
	if fileHeader.Size > maxTamanioAdjunto {
		respondError(c, errValidacion, fmt.Sprintf("El archivo supera el máximo de %dMB", maxTamanioAdjunto>>20))
		return
	}
	usuario := c.PostForm("usuario")
	if usuario == "" {
		respondError(c, errValidacion, "Falta el usuario")
		return
	}

	count, err := h.DB.Collection("presupuestos").
		CountDocuments(ctx, bson.M{"referencia": referencia})
	if err != nil {
		respondError(c, errInterno, "Error al consultar el presupuesto")
		return
	}
	if count == 0 {
		respondError(c, errNoEncontrado, "Presupuesto no encontrado")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		respondError(c, errInterno, "No se pudo leer el archivo recibido")
		return
	}
	defer src.Close()

	disco, err := h.disco(ctx)
	if err != nil {
		respondError(c, errInterno, "No se pudo resolver el directorio de adjuntos")
		return
	}
	nombreArchivo, tamanio, err := disco.Guardar(src, fileHeader.Filename)
	if err != nil {
		respondError(c, errInterno, "No se pudo guardar el archivo")
		return
	}

	adjunto := models.Adjunto{
		NombreOriginal: fileHeader.Filename,
		NombreArchivo:  nombreArchivo,
		Tamanio:        tamanio,
		Tipo:           fileHeader.Header.Get("Content-Type"),
		FechaSubida:    time.Now(),
		Usuario:        usuario,
	}

	_, err = h.DB.Collection("presupuestos").UpdateOne(ctx,
		bson.M{"referencia": referencia},
		bson.M{
			"$push": bson.M{"adjuntos": adjunto},
			"$set":  bson.M{"ultimaActualizacion": time.Now()},
		})
	if err != nil {
		disco.Eliminar(nombreArchivo)
		respondError(c, errInterno, "Error al registrar el adjunto")
		return
	}

	c.JSON(http.StatusCreated, adjunto)
}

// DescargarAdjunto sirve el archivo con su nombre original.
func (h *AdjuntoHandler) DescargarAdjunto(c *gin.Context) {
	ctx := context.Background()
	referencia := c.Param("referencia")
	nombreArchivo := c.Param("nombreArchivo")

	adjunto, ok := h.buscarAdjunto(ctx, c, referencia, nombreArchivo)
	if !ok {
		return
	}

	disco, err := h.disco(ctx)
	if err != nil {
		respondError(c, errInterno, "No se pudo resolver el directorio de adjuntos")
		return
	}
	ruta := disco.Ruta(adjunto.NombreArchivo)
	if _, err := os.Stat(ruta); err != nil {
		respondError(c, errNoEncontrado, "El archivo no está disponible en el servidor")
		return
	}

	c.FileAttachment(ruta, adjunto.NombreOriginal)
}

// EliminarAdjunto quita el adjunto del presupuesto y borra el archivo. El
// borrado del archivo es best effort: los metadatos mandan.
func (h *AdjuntoHandler) EliminarAdjunto(c *gin.Context) {
	ctx := context.Background()
	referencia := c.Param("referencia")
	nombreArchivo := c.Param("nombreArchivo")

	adjunto, ok := h.buscarAdjunto(ctx, c, referencia, nombreArchivo)
	if !ok {
		return
	}

	disco, err := h.disco(ctx)
	if err != nil {
		respondError(c, errInterno, "No se pudo resolver el directorio de adjuntos")
		return
	}

	_, err = h.DB.Collection("presupuestos").UpdateOne(ctx,
		bson.M{"referencia": referencia},
		bson.M{
			"$pull": bson.M{"adjuntos": bson.M{"nombreArchivo": adjunto.NombreArchivo}},
			"$set":  bson.M{"ultimaActualizacion": time.Now()},
		})
	if err != nil {
		respondError(c, errInterno, "Error al eliminar el adjunto")
		return
	}

	if err := disco.Eliminar(adjunto.NombreArchivo); err != nil {
		// El documento ya quedó consistente; solo se deja constancia.
		log.Printf("No se pudo borrar el archivo %s: %v", adjunto.NombreArchivo, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Adjunto eliminado correctamente"})
}

func (h *AdjuntoHandler) buscarAdjunto(ctx context.Context, c *gin.Context, referencia, nombreArchivo string) (models.Adjunto, bool) {
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
		return models.Adjunto{}, false
	}

	for _, adjunto := range presupuesto.Adjuntos {
		if adjunto.NombreArchivo == nombreArchivo {
			return adjunto, true
		}
	}
	respondError(c, errNoEncontrado, "Adjunto no encontrado")
	return models.Adjunto{}, false
}
