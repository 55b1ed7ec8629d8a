// server/internal/api/handlers/scheduler_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"presupuestos-api-server/internal/scheduler"

	"github.com/gin-gonic/gin"
)

type SchedulerHandler struct {
	Service *scheduler.Service
}

// GetStatus devuelve el estado del scheduler con los últimos logs.
func (h *SchedulerHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Status())
}

// Start arranca el scheduler.
func (h *SchedulerHandler) Start(c *gin.Context) {
	h.Service.Start()
	c.JSON(http.StatusOK, h.Service.Status())
}

// Stop detiene el scheduler.
func (h *SchedulerHandler) Stop(c *gin.Context) {
	h.Service.Stop()
	c.JSON(http.StatusOK, h.Service.Status())
}

// UpdateConfig actualiza la configuración; si estaba corriendo, se reinicia.
func (h *SchedulerHandler) UpdateConfig(c *gin.Context) {
	var cfg scheduler.ConfigUpdate
	if err := c.ShouldBindJSON(&cfg); err != nil {
		respondError(c, errValidacion, err.Error())
		return
	}
	if err := h.Service.UpdateConfig(cfg); err != nil {
		respondError(c, errValidacion, err.Error())
		return
	}
	c.JSON(http.StatusOK, h.Service.Status())
}

// Execute dispara una carga inmediata sin esperar el próximo tick.
func (h *SchedulerHandler) Execute(c *gin.Context) {
	go h.Service.RunNow()
	c.JSON(http.StatusAccepted, gin.H{"message": "Ejecución iniciada"})
}

// GetLogs devuelve los logs del anillo, del más nuevo al más viejo.
func (h *SchedulerHandler) GetLogs(c *gin.Context) {
	limite, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	c.JSON(http.StatusOK, h.Service.Logs(limite))
}
