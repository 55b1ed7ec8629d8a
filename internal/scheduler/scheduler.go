// server/internal/scheduler/scheduler.go
//
// Carga automática de planillas en segundo plano. El servicio mantiene la
// configuración (expresión cron, habilitado, ruta de la planilla), un anillo
// acotado con los últimos 100 logs de ejecución y la tarea cron activa.
// Cada entrada de log se difunde además por el hub de WebSocket para que el
// dashboard se entere sin recargar.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"presupuestos-api-server/internal/excel"
	"presupuestos-api-server/internal/socket"
)

const maxLogs = 100

// Config es la configuración persistida del scheduler.
type Config struct {
	Interval   string `bson:"interval" json:"interval"`
	Enabled    bool   `bson:"enabled" json:"enabled"`
	ExcelPath  string `bson:"excelPath" json:"excelPath"`
	ExcelSheet string `bson:"excelSheet" json:"excelSheet"`
}

// DefaultConfig corre cada 30 minutos, habilitado.
func DefaultConfig() Config {
	return Config{Interval: "*/30 * * * *", Enabled: true}
}

// ConfigUpdate es la actualización parcial que recibe la API. Enabled es un
// puntero para distinguir "no enviado" de "deshabilitar".
type ConfigUpdate struct {
	Interval   string `json:"interval"`
	Enabled    *bool  `json:"enabled"`
	ExcelPath  string `json:"excelPath"`
	ExcelSheet string `json:"excelSheet"`
}

// LogEntry es una entrada del anillo de logs.
type LogEntry struct {
	Timestamp time.Time   `json:"timestamp"`
	Message   string      `json:"message"`
	Type      string      `json:"type"` // info, success, warning, error
	Data      interface{} `json:"data,omitempty"`
}

// Status es la foto del servicio que consume el dashboard.
type Status struct {
	IsRunning     bool       `json:"isRunning"`
	Config        Config     `json:"config"`
	Logs          []LogEntry `json:"logs"`
	NextExecution *time.Time `json:"nextExecution"`
}

// Service es el scheduler inyectable. Una sola instancia por proceso.
type Service struct {
	cargador *excel.Cargador
	db       *mongo.Database
	hub      *socket.Hub

	mu      sync.Mutex
	config  Config
	cron    *cron.Cron
	entryID cron.EntryID
	running bool
	logs    []LogEntry
}

// New crea el servicio con la configuración persistida. La ruta y hoja de
// Excel del proceso actúan de semilla cuando todavía no hay nada guardado.
func New(db *mongo.Database, cargador *excel.Cargador, hub *socket.Hub, excelPath, excelSheet string) *Service {
	s := &Service{
		cargador: cargador,
		db:       db,
		hub:      hub,
		config:   DefaultConfig(),
	}
	s.config.ExcelPath = excelPath
	s.config.ExcelSheet = excelSheet
	s.loadConfig()
	return s
}

func (s *Service) loadConfig() {
	if s.db == nil {
		return
	}
	var guardada Config
	err := s.db.Collection("configuracion").
		FindOne(context.Background(), bson.M{"clave": "scheduler"}).
		Decode(&guardada)
	if err == nil {
		if guardada.Interval != "" {
			s.config.Interval = guardada.Interval
		}
		s.config.Enabled = guardada.Enabled
		if guardada.ExcelPath != "" {
			s.config.ExcelPath = guardada.ExcelPath
		}
		if guardada.ExcelSheet != "" {
			s.config.ExcelSheet = guardada.ExcelSheet
		}
	} else if err != mongo.ErrNoDocuments {
		log.Printf("No se pudo leer configuración del scheduler: %v", err)
	}
}

func (s *Service) saveConfig() {
	if s.db == nil {
		return
	}
	_, err := s.db.Collection("configuracion").UpdateOne(
		context.Background(),
		bson.M{"clave": "scheduler"},
		bson.M{"$set": bson.M{
			"clave":      "scheduler",
			"interval":   s.config.Interval,
			"enabled":    s.config.Enabled,
			"excelPath":  s.config.ExcelPath,
			"excelSheet": s.config.ExcelSheet,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Printf("No se pudo guardar configuración del scheduler: %v", err)
	}
}

// addLog agrega una entrada al frente del anillo y la difunde por WebSocket.
func (s *Service) addLog(message, tipo string, data interface{}) {
	entry := LogEntry{
		Timestamp: time.Now(),
		Message:   message,
		Type:      tipo,
		Data:      data,
	}
	s.logs = append([]LogEntry{entry}, s.logs...)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[:maxLogs]
	}
	log.Printf("[SCHEDULER %s] %s", strings.ToUpper(tipo), message)
	if s.hub != nil {
		s.hub.Broadcast(entry)
	}
}

// Start arranca la tarea cron si está habilitada. Idempotente.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.addLog("El scheduler ya está ejecutándose", "warning", nil)
		return
	}
	if !s.config.Enabled {
		s.addLog("Scheduler deshabilitado en configuración", "warning", nil)
		return
	}

	c := cron.New()
	entryID, err := c.AddFunc(s.config.Interval, s.RunNow)
	if err != nil {
		s.addLog(fmt.Sprintf("Error al iniciar scheduler: %v", err), "error", nil)
		return
	}
	c.Start()

	s.cron = c
	s.entryID = entryID
	s.running = true
	s.addLog(fmt.Sprintf("Scheduler iniciado con intervalo: %s", s.config.Interval), "success", nil)
}

// Stop detiene la tarea cron. Idempotente.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.addLog("El scheduler no está ejecutándose", "warning", nil)
		return
	}
	s.cron.Stop()
	s.cron = nil
	s.running = false
	s.addLog("Scheduler detenido", "info", nil)
}

// UpdateConfig pisa solo los campos recibidos, persiste y reinicia si estaba
// corriendo. Los campos ausentes conservan el valor actual.
func (s *Service) UpdateConfig(nueva ConfigUpdate) error {
	if nueva.Interval != "" {
		if _, err := cron.ParseStandard(nueva.Interval); err != nil {
			return fmt.Errorf("expresión cron inválida: %w", err)
		}
	}

	s.mu.Lock()
	if nueva.Interval != "" {
		s.config.Interval = nueva.Interval
	}
	if nueva.Enabled != nil {
		s.config.Enabled = *nueva.Enabled
	}
	if nueva.ExcelPath != "" {
		s.config.ExcelPath = nueva.ExcelPath
	}
	if nueva.ExcelSheet != "" {
		s.config.ExcelSheet = nueva.ExcelSheet
	}
	s.saveConfig()
	s.addLog("Configuración del scheduler actualizada", "info", nil)
	estabaCorriendo := s.running
	s.mu.Unlock()

	if estabaCorriendo {
		s.Stop()
		s.Start()
	}
	return nil
}

// RunNow ejecuta una carga inmediatamente (la usa la tarea cron y el endpoint
// de ejecución manual).
func (s *Service) RunNow() {
	s.mu.Lock()
	if !s.config.Enabled {
		s.addLog("Scheduler deshabilitado", "warning", nil)
		s.mu.Unlock()
		return
	}
	ruta := s.config.ExcelPath
	hoja := s.config.ExcelSheet
	s.mu.Unlock()

	if ruta == "" {
		s.log("Ruta de Excel no configurada", "error", nil)
		return
	}

	s.log("Iniciando carga automática de Excel", "info", nil)
	resumen, err := s.cargador.Cargar(context.Background(), ruta, hoja)
	if err != nil {
		s.log(fmt.Sprintf("Error en carga automática: %v", err), "error", nil)
		return
	}

	s.log(fmt.Sprintf("Carga automática completada: %d nuevos, %d existentes, %d errores",
		resumen.PresupuestosNuevos, resumen.ReferenciasExistentes, resumen.Errores), "success", resumen)
}

// log toma el lock solo para registrar; RunNow corre fuera del lock porque la
// carga puede tardar.
func (s *Service) log(message, tipo string, data interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLog(message, tipo, data)
}

// Status devuelve el estado actual con los últimos 20 logs.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := s.logs
	if len(logs) > 20 {
		logs = logs[:20]
	}
	status := Status{
		IsRunning: s.running,
		Config:    s.config,
		Logs:      append([]LogEntry(nil), logs...),
	}
	if s.running && s.cron != nil {
		next := s.cron.Entry(s.entryID).Next
		if !next.IsZero() {
			status.NextExecution = &next
		}
	}
	return status
}

// Logs devuelve hasta "limit" entradas del anillo, de la más nueva a la más vieja.
func (s *Service) Logs(limit int) []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.logs) {
		limit = len(s.logs)
	}
	return append([]LogEntry(nil), s.logs[:limit]...)
}
