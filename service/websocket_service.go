package service

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/casedocsearch/ingest-be/types"
)

// WebSocketService broadcasts ingestion progress to connected clients. A
// client connects once and receives every status update produced while it
// stays connected; slow clients are disconnected rather than allowed to
// stall the pipeline.
type WebSocketService struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan types.IngestStatus
}

func NewWebSocketService() *WebSocketService {
	return &WebSocketService{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
		clients: make(map[*websocket.Conn]chan types.IngestStatus),
	}
}

// HandleStatus upgrades the request and streams status updates to the
// client until it disconnects.
func (s *WebSocketService) HandleStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade error")
		return
	}
	defer conn.Close()

	// Set connection properties
	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	updates := s.register(conn)
	defer s.unregister(conn)

	// Channel to signal when the connection closes
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Warn().Err(err).Msg("websocket read error")
				}
				return
			}
			// Incoming messages keep the read deadline fresh; their
			// content is ignored.
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		}
	}()

	for {
		select {
		case <-done:
			return
		case status := <-updates:
			if err := conn.WriteJSON(status); err != nil {
				log.Warn().Err(err).Msg("websocket write error")
				return
			}
		}
	}
}

// Broadcast sends a status update to every connected client. Clients whose
// buffers are full are dropped.
func (s *WebSocketService) Broadcast(status types.IngestStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn, updates := range s.clients {
		select {
		case updates <- status:
		default:
			log.Warn().Msg("dropping slow websocket client")
			delete(s.clients, conn)
			conn.Close()
		}
	}
}

func (s *WebSocketService) register(conn *websocket.Conn) chan types.IngestStatus {
	updates := make(chan types.IngestStatus, 32)
	s.mu.Lock()
	s.clients[conn] = updates
	s.mu.Unlock()
	return updates
}

func (s *WebSocketService) unregister(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
}

func (s *WebSocketService) Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
