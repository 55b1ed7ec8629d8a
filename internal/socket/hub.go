// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub administra los clientes WebSocket del dashboard. A diferencia de un chat,
// acá todos los clientes reciben lo mismo: novedades del scheduler.
type Hub struct {
	clients map[*websocket.Conn]struct{}
	// mu protege el mapa de clientes frente a conexiones concurrentes.
	mu sync.RWMutex
}

// NewHub crea un Hub vacío.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Register agrega una conexión al Hub.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
	log.Printf("Cliente WebSocket conectado (%d activos)", len(h.clients))
}

// Unregister quita una conexión del Hub.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		log.Printf("Cliente WebSocket desconectado (%d activos)", len(h.clients))
	}
}

// Broadcast serializa el mensaje como JSON y lo envía a todos los clientes.
// Un cliente que falla no interrumpe al resto.
func (h *Hub) Broadcast(mensaje interface{}) {
	datos, err := json.Marshal(mensaje)
	if err != nil {
		log.Printf("No se pudo serializar mensaje para WebSocket: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, datos); err != nil {
			log.Printf("Error enviando a cliente WebSocket: %v", err)
		}
	}
}
