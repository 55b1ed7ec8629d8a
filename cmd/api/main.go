// server/cmd/api/main.go
package main

import (
	"log"

	"presupuestos-api-server/config"
	"presupuestos-api-server/internal/api/routes"
	"presupuestos-api-server/internal/database"
	"presupuestos-api-server/internal/excel"
	"presupuestos-api-server/internal/scheduler"
	"presupuestos-api-server/internal/socket"
	"presupuestos-api-server/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Las variables de .env alimentan los BindEnv de la configuración.
	if err := godotenv.Load(); err != nil {
		log.Println("Sin archivo .env, se usa el entorno del proceso")
	}

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("No se pudo cargar la configuración: %v", err)
	}

	client, err := database.Connect(cfg.Mongo.URI)
	if err != nil {
		log.Fatalf("No se pudo conectar a MongoDB: %v", err)
	}
	db := client.Database(cfg.Mongo.DBName)

	if err := database.EnsureIndexes(db); err != nil {
		log.Fatalf("No se pudieron crear los índices: %v", err)
	}

	// El directorio por defecto se crea de entrada; si la configuración general
	// define otro, los handlers lo resuelven en cada operación.
	if _, err := storage.NewDisk(cfg.Uploads.Dir); err != nil {
		log.Fatalf("No se pudo preparar el directorio de adjuntos: %v", err)
	}

	cargador := &excel.Cargador{DB: db}
	wsHub := socket.NewHub()

	schedulerService := scheduler.New(db, cargador, wsHub, cfg.Excel.Path, cfg.Excel.Sheet)
	schedulerService.Start()

	router := routes.SetupRouter(db, cargador, schedulerService, wsHub, cfg.Uploads.Dir, cfg.Excel.Path, cfg.Excel.Sheet)

	log.Printf("Servidor escuchando en el puerto %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("No se pudo iniciar el servidor: %v", err)
	}
}
