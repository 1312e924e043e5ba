// Package server accepts websocket clients, runs the connect
// handshake and routes their messages through the handler.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/openmonopoly/monopoly-server-go/internal/config"
	"github.com/openmonopoly/monopoly-server-go/internal/lobby"
	"github.com/openmonopoly/monopoly-server-go/internal/monitor"
	"github.com/openmonopoly/monopoly-server-go/internal/protocol"
	"github.com/openmonopoly/monopoly-server-go/internal/session"
)

// Server is the websocket front of the game server.
type Server struct {
	cfg      config.ServerConfig
	sessions *session.Manager
	games    *lobby.Manager
	handler  *MessageHandler
	metrics  *monitor.Monitor
	logger   *zap.Logger

	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// New wires the server. metrics may be nil.
func New(cfg config.ServerConfig, sessions *session.Manager, games *lobby.Manager, metrics *monitor.Monitor, logger *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		games:    games,
		handler:  NewMessageHandler(games, sessions, logger),
		metrics:  metrics,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Clients connect from arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Start blocks serving websocket connections until Shutdown.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	s.httpSrv = &http.Server{
		Addr:    s.cfg.Address,
		Handler: mux,
	}

	s.logger.Info("websocket server listening", zap.String("address", s.cfg.Address))
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and drains existing ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	playerID, ok := s.handshake(conn)
	if !ok {
		return
	}

	if s.metrics != nil {
		s.metrics.IncOnlinePlayers()
		defer s.metrics.DecOnlinePlayers()
	}
	defer s.handleDisconnect(playerID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("connection closed", zap.String("player_id", playerID), zap.Error(err))
			}
			return
		}
		s.handleMessage(playerID, raw)
	}
}

// handshake waits for the CONNECT frame, registers the connection and
// sends the acknowledgment. Reconnecting players get the other
// players notified and their current game state pushed.
func (s *Server) handshake(conn *websocket.Conn) (string, bool) {
	timeout := s.cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	conn.SetReadDeadline(time.Now().Add(timeout))

	_, raw, err := conn.ReadMessage()
	if err != nil {
		s.sendRawError(conn, "Connection timeout", "TIMEOUT")
		return "", false
	}
	conn.SetReadDeadline(time.Time{})

	req, err := protocol.ParseRequest(raw)
	if err != nil {
		s.sendRawError(conn, "Invalid JSON", "PARSE_ERROR")
		return "", false
	}
	if req.Type != protocol.TypeConnect {
		s.sendRawError(conn, "First message must be CONNECT", "CONNECT_REQUIRED")
		return "", false
	}

	var payload protocol.ConnectRequest
	if err := req.DecodeData(&payload); err != nil || payload.PlayerID == "" {
		s.sendRawError(conn, "player_id is required", "MISSING_PLAYER_ID")
		return "", false
	}
	if payload.PlayerName == "" {
		payload.PlayerName = "Player"
	}

	pc := s.sessions.Connect(conn, payload.PlayerID, payload.PlayerName)

	gameID := pc.GameID
	if gameID != "" {
		if mg := s.games.GetGame(gameID); mg != nil {
			s.sessions.Broadcast(gameID,
				protocol.NewPlayerReconnected(payload.PlayerID, payload.PlayerName),
				session.BroadcastOptions{ExcludePlayerID: payload.PlayerID},
			)

			mg.Lock()
			state := stateMessage(mg, payload.PlayerID)
			mg.Unlock()
			pc.Send(state)
		} else {
			gameID = ""
		}
	}

	ack := protocol.Message{
		Type: protocol.TypeConnect,
		Data: protocol.ConnectAck{
			Success:           true,
			PlayerID:          payload.PlayerID,
			PlayerName:        payload.PlayerName,
			ReconnectedToGame: gameID,
		},
	}
	if err := pc.Send(ack); err != nil {
		return "", false
	}
	return payload.PlayerID, true
}

func (s *Server) handleMessage(playerID string, raw []byte) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.IncMessagesReceived()
		defer func() { s.metrics.ObserveMessageLatency(time.Since(start)) }()
	}

	req, err := protocol.ParseRequest(raw)
	if err != nil {
		s.sessions.SendToPlayer(playerID, protocol.NewError(
			fmt.Sprintf("Invalid message format: %v", err), "PARSE_ERROR"))
		return
	}

	result := s.dispatch(playerID, req)

	if result.Response != nil {
		s.sessions.SendToPlayer(playerID, *result.Response)
	}

	gameID := s.sessions.GameID(playerID)
	if gameID == "" {
		return
	}

	// The requester already got their response.
	for _, broadcast := range result.Broadcasts {
		s.sessions.Broadcast(gameID, broadcast, session.BroadcastOptions{ExcludePlayerID: playerID})
	}

	if result.BroadcastState {
		if mg := s.games.GetGame(gameID); mg != nil {
			s.broadcastState(gameID, mg)
		}
	}

	if result.ShouldSave {
		s.games.AutoSaveIfNeeded(gameID)
	}

	if s.metrics != nil {
		s.metrics.SetActiveGames(s.games.GetStats().TotalGames)
	}
}

// dispatch runs the handler under the lock of the affected game. A
// JOIN_GAME targets a game the player is not in yet.
func (s *Server) dispatch(playerID string, req protocol.Request) HandleResult {
	var mg *lobby.ManagedGame
	if req.Type == protocol.TypeJoinGame {
		var payload protocol.JoinGameRequest
		if err := req.DecodeData(&payload); err == nil {
			mg = s.games.GetGame(payload.GameID)
		}
	} else {
		mg = s.games.GameForPlayer(playerID)
	}
	if mg != nil {
		mg.Lock()
		defer mg.Unlock()
	}
	return s.handler.Handle(playerID, req)
}

// broadcastState pushes each connected player their own view.
func (s *Server) broadcastState(gameID string, mg *lobby.ManagedGame) {
	conns := s.sessions.ConnectedInGame(gameID)

	mg.Lock()
	views := make(map[string]protocol.Message, len(conns))
	for _, pc := range conns {
		views[pc.PlayerID] = stateMessage(mg, pc.PlayerID)
	}
	mg.Unlock()

	for _, pc := range conns {
		if err := pc.Send(views[pc.PlayerID]); err != nil {
			s.logger.Error("failed to send state",
				zap.String("player_id", pc.PlayerID),
				zap.String("game_id", gameID),
				zap.Error(err),
			)
		}
	}
}

func (s *Server) handleDisconnect(playerID string) {
	pc := s.sessions.Disconnect(playerID)
	if pc == nil || pc.GameID == "" {
		return
	}

	s.sessions.Broadcast(pc.GameID,
		protocol.NewPlayerDisconnected(playerID, pc.PlayerName),
		session.BroadcastOptions{},
	)
	s.games.AutoSaveIfNeeded(pc.GameID)

	s.logger.Info("player disconnected from game",
		zap.String("player_id", playerID),
		zap.String("game_id", pc.GameID),
	)
}

func (s *Server) sendRawError(conn *websocket.Conn, message, code string) {
	raw, err := protocol.NewError(message, code).Encode()
	if err != nil {
		return
	}
	// Connection may already be gone.
	conn.WriteMessage(websocket.TextMessage, raw)
}

// GetStats merges connection and lobby statistics.
func (s *Server) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"connections": s.sessions.GetStats(),
		"games":       s.games.GetStats(),
	}
}
