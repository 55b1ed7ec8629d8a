// server/internal/api/handlers/upload_handler.go
package handlers

import (
	"context"
	"net/http"

	"presupuestos-api-server/internal/excel"
	"presupuestos-api-server/internal/scheduler"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	Cargador *excel.Cargador
	// Ruta y hoja por defecto cuando la petición no las trae.
	ExcelPath  string
	ExcelSheet string
	Scheduler  *scheduler.Service
}

type UploadExcelRequest struct {
	ExcelPath  string `json:"excelPath"`
	ExcelSheet string `json:"excelSheet"`
}

// CargarExcel procesa la planilla indicada (o la configurada) y devuelve el
// resumen de la carga.
func (h *UploadHandler) CargarExcel(c *gin.Context) {
	var req UploadExcelRequest
	// El cuerpo es opcional: sin cuerpo se usan los valores configurados.
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errValidacion, err.Error())
			return
		}
	}

	ruta := req.ExcelPath
	if ruta == "" {
		ruta = h.ExcelPath
	}
	hoja := req.ExcelSheet
	if hoja == "" {
		hoja = h.ExcelSheet
	}
	if ruta == "" {
		respondError(c, errValidacion, "No hay ruta de Excel configurada ni indicada")
		return
	}

	resumen, err := h.Cargador.Cargar(context.Background(), ruta, hoja)
	if err != nil {
		respondError(c, errUpstream, err.Error())
		return
	}

	c.JSON(http.StatusOK, resumen)
}

// EjecutarCargaProgramada dispara manualmente la carga del scheduler con su
// configuración persistida.
func (h *UploadHandler) EjecutarCargaProgramada(c *gin.Context) {
	go h.Scheduler.RunNow()
	c.JSON(http.StatusAccepted, gin.H{"message": "Carga programada ejecutada"})
}
