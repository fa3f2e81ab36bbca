// ABOUTME: Websocket remote control for the playback session
// ABOUTME: Broadcasts state and item lists and forwards client commands to the session
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/memorylane/memorylane-go/internal/discovery"
	"github.com/memorylane/memorylane-go/internal/version"
	"github.com/memorylane/memorylane-go/pkg/playback"
	"go.uber.org/zap"
)

const (
	// Path is where the websocket endpoint is served
	Path = "/memorylane"

	DefaultPort = 8928

	sendBuffer    = 32
	writeDeadline = 10 * time.Second
	pingInterval  = 30 * time.Second
)

// Controller is the part of the playback session remote clients drive
type Controller interface {
	Toggle(ctx context.Context, itemID, locator string) error
	Stop()
	SkipBy(ctx context.Context, deltaMillis int64)
	SeekTo(ctx context.Context, positionMillis int64)
	State() playback.State
}

// Catalog resolves item ids; clients never send locators
type Catalog interface {
	Items() []playback.Item
	Lookup(id string) (playback.Item, bool)
}

// Config configures the remote control server
type Config struct {
	// Port to listen on (default: 8928)
	Port int

	// Name advertised to clients and over mDNS
	Name string

	Controller Controller
	Catalog    Catalog

	// EnableMDNS advertises _memorylane._tcp
	EnableMDNS bool

	Logger *zap.Logger
}

// Server serves the remote control websocket
type Server struct {
	config   Config
	serverID string
	log      *zap.Logger

	upgrader websocket.Upgrader
	mux      *http.ServeMux

	clients   map[string]*client
	clientsMu sync.RWMutex

	// ctx scopes commands issued on behalf of clients
	ctx context.Context

	wg sync.WaitGroup
}

type client struct {
	id       string
	conn     *websocket.Conn
	sendChan chan Message
	done     chan struct{}
	once     sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// New creates a remote control server
func New(config Config) (*Server, error) {
	if config.Controller == nil {
		return nil, errors.New("remote: controller is required")
	}
	if config.Catalog == nil {
		return nil, errors.New("remote: catalog is required")
	}
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Name == "" {
		config.Name = version.Product
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		log:      config.Logger.Named("remote"),
		mux:      http.NewServeMux(),
		clients:  make(map[string]*client),
		ctx:      context.Background(),
		upgrader: websocket.Upgrader{
			// companion apps run on the home network
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.mux.HandleFunc(Path, s.handleWebSocket)

	return s, nil
}

// Handler exposes the websocket endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run listens until ctx is done
func (s *Server) Run(ctx context.Context) error {
	s.ctx = ctx

	if s.config.EnableMDNS {
		adv := discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
			Logger:      s.log,
		})
		if err := adv.Advertise(); err != nil {
			s.log.Warn("failed to start mDNS advertisement", zap.Error(err))
		} else {
			defer adv.Stop()
		}
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("remote control listening", zap.String("addr", httpServer.Addr), zap.String("path", Path))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errChan:
		return fmt.Errorf("remote control server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("remote shutdown error", zap.Error(err))
	}

	s.clientsMu.Lock()
	for _, c := range s.clients {
		c.close()
		c.conn.Close()
	}
	s.clientsMu.Unlock()

	s.wg.Wait()
	s.log.Info("remote control stopped")
	return nil
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// PublishState sends st to every client
func (s *Server) PublishState(st playback.State) {
	s.broadcast(Message{Type: TypeState, Payload: st})
}

// PublishItems sends the item list to every client
func (s *Server) PublishItems(items []playback.Item) {
	s.broadcast(Message{Type: TypeItems, Payload: itemInfos(items)})
}

func (s *Server) broadcast(msg Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		s.send(c, msg)
	}
}

// send queues msg without blocking; slow clients miss updates
func (s *Server) send(c *client, msg Message) {
	select {
	case c.sendChan <- msg:
	case <-c.done:
	default:
		s.log.Debug("dropping message for slow client", zap.String("client", c.id), zap.String("type", msg.Type))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade error", zap.Error(err))
		return
	}

	s.log.Info("remote client connected", zap.String("addr", r.RemoteAddr))
	s.handleConnection(conn)
}

func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	c := &client{
		id:       uuid.New().String(),
		conn:     conn,
		sendChan: make(chan Message, sendBuffer),
		done:     make(chan struct{}),
	}

	// queue the greeting before registering so it precedes any broadcast
	s.send(c, Message{Type: TypeHello, Payload: Hello{
		ServerID: s.serverID,
		Name:     s.config.Name,
		Version:  version.Version,
	}})
	s.send(c, Message{Type: TypeState, Payload: s.config.Controller.State()})
	s.send(c, Message{Type: TypeItems, Payload: itemInfos(s.config.Catalog.Items())})

	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c.id)
		s.clientsMu.Unlock()
		c.close()
		s.log.Info("remote client disconnected", zap.String("client", c.id))
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(c)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		s.handleCommand(c, data)
	}
}

func (s *Server) clientWriter(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.sendChan:
			data, err := json.Marshal(msg)
			if err != nil {
				s.log.Warn("failed to encode message", zap.String("type", msg.Type), zap.Error(err))
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

func (s *Server) handleCommand(c *client, data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		s.sendError(c, cmd, "malformed command")
		return
	}

	ctrl := s.config.Controller
	switch cmd.Type {
	case CommandToggle:
		item, ok := s.config.Catalog.Lookup(cmd.ItemID)
		if !ok {
			s.sendError(c, cmd, "unknown item")
			return
		}
		if !item.HasAudio() {
			s.sendError(c, cmd, "No audio available")
			return
		}
		if err := ctrl.Toggle(s.ctx, item.ID, item.Locator); err != nil {
			s.log.Warn("remote toggle failed", zap.String("item", item.ID), zap.Error(err))
			s.sendError(c, cmd, "Failed to play audio")
		}
	case CommandStop:
		ctrl.Stop()
	case CommandSkip:
		ctrl.SkipBy(s.ctx, cmd.DeltaMillis)
	case CommandSeek:
		ctrl.SeekTo(s.ctx, cmd.PositionMillis)
	default:
		s.sendError(c, cmd, fmt.Sprintf("unknown command %q", cmd.Type))
	}
}

func (s *Server) sendError(c *client, cmd Command, message string) {
	s.send(c, Message{Type: TypeError, Payload: ErrorPayload{
		Command: cmd.Type,
		ItemID:  cmd.ItemID,
		Message: message,
	}})
}
