// server/internal/api/routes/routes.go
package routes

import (
	"presupuestos-api-server/internal/api/handlers"
	"presupuestos-api-server/internal/excel"
	"presupuestos-api-server/internal/scheduler"
	"presupuestos-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter recibe las dependencias ya construidas y arma todas las rutas.
func SetupRouter(
	db *mongo.Database,
	cargador *excel.Cargador,
	schedulerService *scheduler.Service,
	wsHub *socket.Hub,
	uploadsDir, excelPath, excelSheet string,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	presupuestoHandler := &handlers.PresupuestoHandler{DB: db}
	estadisticasHandler := &handlers.EstadisticasHandler{DB: db}
	adjuntoHandler := &handlers.AdjuntoHandler{DB: db, DirPorDefecto: uploadsDir}
	aceiteHandler := &handlers.AceiteHandler{DB: db}
	tallerHandler := &handlers.TallerHandler{DB: db}
	configuracionHandler := &handlers.ConfiguracionHandler{DB: db}
	uploadHandler := &handlers.UploadHandler{
		Cargador:   cargador,
		ExcelPath:  excelPath,
		ExcelSheet: excelSheet,
		Scheduler:  schedulerService,
	}
	schedulerHandler := &handlers.SchedulerHandler{Service: schedulerService}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	api := router.Group("/api")
	{
		api.GET("/ws", webSocketHandler.ServeWs)

		presupuestos := api.Group("/presupuestos")
		{
			presupuestos.GET("", presupuestoHandler.GetPresupuestos)
			presupuestos.GET("/:referencia", presupuestoHandler.GetPresupuestoByReferencia)
			presupuestos.DELETE("/:referencia", presupuestoHandler.DeletePresupuesto)
			presupuestos.PUT("/:referencia/estado", presupuestoHandler.CambiarEstado)
			presupuestos.PUT("/:referencia/or-siniestro", presupuestoHandler.ActualizarOrSiniestro)
			presupuestos.POST("/:referencia/comentarios", presupuestoHandler.AgregarComentario)
			presupuestos.DELETE("/:referencia/comentarios/:comentarioId", presupuestoHandler.EliminarComentario)

			presupuestos.POST("/:referencia/adjuntos", adjuntoHandler.SubirAdjunto)
			presupuestos.GET("/:referencia/adjuntos/:nombreArchivo", adjuntoHandler.DescargarAdjunto)
			presupuestos.DELETE("/:referencia/adjuntos/:nombreArchivo", adjuntoHandler.EliminarAdjunto)
		}

		estadisticas := api.Group("/estadisticas")
		{
			estadisticas.GET("", estadisticasHandler.GetEstadisticas)
			estadisticas.GET("/por-estado", estadisticasHandler.GetPorEstado)
			estadisticas.GET("/por-tipo-siniestro", estadisticasHandler.GetPorTipoSiniestro)
			estadisticas.GET("/por-taller", estadisticasHandler.GetPorTaller)
			estadisticas.GET("/talleres", estadisticasHandler.GetTalleresUnicos)
			estadisticas.GET("/tipos-siniestro", estadisticasHandler.GetTiposSiniestro)
			estadisticas.GET("/meses-disponibles", estadisticasHandler.GetMesesDisponibles)
			estadisticas.GET("/aceptados-por-taller", estadisticasHandler.GetAceptadosPorTaller)
			estadisticas.GET("/rechazados-por-taller", estadisticasHandler.GetRechazadosPorTaller)
			estadisticas.GET("/abiertos-pendientes-por-taller", estadisticasHandler.GetAbiertosPendientesPorTaller)
			estadisticas.GET("/conversion-por-taller", estadisticasHandler.GetConversionPorTaller)
			estadisticas.GET("/mensuales-por-taller", estadisticasHandler.GetMensualesPorTaller)
			estadisticas.GET("/aceptados-con-ors", estadisticasHandler.GetAceptadosConOrs)
			estadisticas.GET("/ors-por-taller", estadisticasHandler.GetOrsPorTaller)
		}

		aceitesGroup := api.Group("/aceites")
		{
			aceitesGroup.GET("", aceiteHandler.GetAceites)
			aceitesGroup.GET("/buscar", aceiteHandler.BuscarAceite)
			aceitesGroup.GET("/:id", aceiteHandler.GetAceiteByID)
			aceitesGroup.POST("", aceiteHandler.CreateAceite)
			aceitesGroup.PUT("/:id", aceiteHandler.UpdateAceite)
			aceitesGroup.DELETE("/:id", aceiteHandler.DeleteAceite)
		}

		talleres := api.Group("/talleres")
		{
			talleres.GET("", tallerHandler.GetTalleres)
			talleres.GET("/activos", tallerHandler.GetTalleresActivos)
			talleres.GET("/codigos-sin-registrar", tallerHandler.GetCodigosEnUso)
			talleres.GET("/:codigo", tallerHandler.GetTallerByCodigo)
			talleres.POST("", tallerHandler.CreateTaller)
			talleres.PUT("/:codigo", tallerHandler.UpdateTaller)
			talleres.DELETE("/:codigo", tallerHandler.DeleteTaller)
		}

		configuracion := api.Group("/configuracion")
		{
			configuracion.GET("", configuracionHandler.GetConfiguracion)
			configuracion.PUT("", configuracionHandler.UpdateConfiguracion)
		}

		upload := api.Group("/upload")
		{
			upload.POST("/excel", uploadHandler.CargarExcel)
			upload.POST("/from-config", uploadHandler.EjecutarCargaProgramada)
		}

		schedulerGroup := api.Group("/scheduler")
		{
			schedulerGroup.GET("/status", schedulerHandler.GetStatus)
			schedulerGroup.POST("/start", schedulerHandler.Start)
			schedulerGroup.POST("/stop", schedulerHandler.Stop)
			schedulerGroup.PUT("/config", schedulerHandler.UpdateConfig)
			schedulerGroup.POST("/execute", schedulerHandler.Execute)
			schedulerGroup.GET("/logs", schedulerHandler.GetLogs)
		}
	}

	return router
}
