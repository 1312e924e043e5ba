// Package session tracks websocket connections and their game
// associations, including players awaiting reconnection.
package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openmonopoly/monopoly-server-go/internal/protocol"
)

// Conn is the write side of a client transport. *websocket.Conn from
// gorilla satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// TextMessage mirrors websocket.TextMessage so callers outside the
// read loop do not need the gorilla import.
const TextMessage = 1

// PlayerConnection tracks one connected player.
type PlayerConnection struct {
	PlayerID    string
	PlayerName  string
	GameID      string
	IsHost      bool
	IsSpectator bool
	ConnectedAt time.Time
	lastActive  time.Time

	conn      Conn
	sendMutex sync.Mutex
}

// Send writes an encoded message to the client. Gorilla connections
// allow one concurrent writer, hence the mutex.
func (c *PlayerConnection) Send(msg protocol.Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return err
	}
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	c.lastActive = time.Now()
	return c.conn.WriteMessage(TextMessage, raw)
}

// Manager maintains the player and game connection tables.
//
// Disconnected players that were in a game stay in a side table so a
// later CONNECT with the same player ID restores their seat.
type Manager struct {
	mu sync.RWMutex

	byPlayer     map[string]*PlayerConnection
	gamePlayers  map[string]map[string]struct{}
	disconnected map[string]*PlayerConnection

	logger *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		byPlayer:     make(map[string]*PlayerConnection),
		gamePlayers:  make(map[string]map[string]struct{}),
		disconnected: make(map[string]*PlayerConnection),
		logger:       logger,
	}
}

// Connect registers a player connection. A player found in the
// disconnected table gets their game association back.
func (m *Manager) Connect(conn Conn, playerID, playerName string) *PlayerConnection {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pc, ok := m.disconnected[playerID]; ok {
		delete(m.disconnected, playerID)
		pc.conn = conn
		pc.ConnectedAt = time.Now()
		pc.lastActive = time.Now()
		m.byPlayer[playerID] = pc
		m.logger.Info("player reconnected",
			zap.String("player_id", playerID),
			zap.String("player_name", playerName),
			zap.String("game_id", pc.GameID),
		)
		return pc
	}

	pc := &PlayerConnection{
		PlayerID:    playerID,
		PlayerName:  playerName,
		ConnectedAt: time.Now(),
		lastActive:  time.Now(),
		conn:        conn,
	}
	m.byPlayer[playerID] = pc
	m.logger.Info("player connected",
		zap.String("player_id", playerID),
		zap.String("player_name", playerName),
	)
	return pc
}

// Disconnect drops the live connection. Players in a game are parked
// for reconnection; the rest are forgotten.
func (m *Manager) Disconnect(playerID string) *PlayerConnection {
	m.mu.Lock()
	defer m.mu.Unlock()

	pc, ok := m.byPlayer[playerID]
	if !ok {
		return nil
	}
	delete(m.byPlayer, playerID)
	pc.conn = nil

	if pc.GameID != "" {
		m.disconnected[playerID] = pc
		m.logger.Info("player disconnected, awaiting reconnection",
			zap.String("player_id", playerID),
			zap.String("game_id", pc.GameID),
		)
	} else {
		m.logger.Info("player disconnected", zap.String("player_id", playerID))
	}
	return pc
}

// RemoveCompletely forgets a player entirely, including any pending
// reconnection slot. Used after an explicit leave or kick.
func (m *Manager) RemoveCompletely(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pc, ok := m.byPlayer[playerID]; ok {
		if pc.GameID != "" {
			m.removeFromGameLocked(playerID, pc.GameID)
			pc.GameID = ""
		}
		delete(m.byPlayer, playerID)
	}
	delete(m.disconnected, playerID)
}

// JoinGame associates a connected player with a game.
func (m *Manager) JoinGame(playerID, gameID string, isHost, isSpectator bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	pc, ok := m.byPlayer[playerID]
	if !ok {
		return false
	}
	if pc.GameID != "" {
		m.removeFromGameLocked(playerID, pc.GameID)
	}

	pc.GameID = gameID
	pc.IsHost = isHost
	pc.IsSpectator = isSpectator

	if m.gamePlayers[gameID] == nil {
		m.gamePlayers[gameID] = make(map[string]struct{})
	}
	m.gamePlayers[gameID][playerID] = struct{}{}

	m.logger.Info("player joined game",
		zap.String("player_id", playerID),
		zap.String("game_id", gameID),
		zap.Bool("is_host", isHost),
		zap.Bool("is_spectator", isSpectator),
	)
	return true
}

// LeaveGame detaches a player from their game and returns the game ID
// they left. Works for connected and disconnected players.
func (m *Manager) LeaveGame(playerID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pc, ok := m.byPlayer[playerID]; ok {
		if pc.GameID == "" {
			return ""
		}
		gameID := pc.GameID
		m.removeFromGameLocked(playerID, gameID)
		pc.GameID = ""
		pc.IsHost = false
		pc.IsSpectator = false
		m.logger.Info("player left game",
			zap.String("player_id", playerID),
			zap.String("game_id", gameID),
		)
		return gameID
	}

	if pc, ok := m.disconnected[playerID]; ok && pc.GameID != "" {
		gameID := pc.GameID
		m.removeFromGameLocked(playerID, gameID)
		delete(m.disconnected, playerID)
		return gameID
	}
	return ""
}

func (m *Manager) removeFromGameLocked(playerID, gameID string) {
	players, ok := m.gamePlayers[gameID]
	if !ok {
		return
	}
	delete(players, playerID)
	if len(players) == 0 {
		delete(m.gamePlayers, gameID)
	}
}

// Connection returns the live connection for a player, if any.
func (m *Manager) Connection(playerID string) *PlayerConnection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byPlayer[playerID]
}

// GameID reports the game a player belongs to, including players that
// are currently disconnected.
func (m *Manager) GameID(playerID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if pc, ok := m.byPlayer[playerID]; ok {
		return pc.GameID
	}
	if pc, ok := m.disconnected[playerID]; ok {
		return pc.GameID
	}
	return ""
}

// PlayersInGame lists every player ID attached to a game, connected
// or not, spectators included.
func (m *Manager) PlayersInGame(gameID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.gamePlayers[gameID]))
	for id := range m.gamePlayers[gameID] {
		ids = append(ids, id)
	}
	return ids
}

// ConnectedInGame lists the currently connected players of a game.
func (m *Manager) ConnectedInGame(gameID string) []*PlayerConnection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connectedInGameLocked(gameID)
}

func (m *Manager) connectedInGameLocked(gameID string) []*PlayerConnection {
	var conns []*PlayerConnection
	for id := range m.gamePlayers[gameID] {
		if pc, ok := m.byPlayer[id]; ok {
			conns = append(conns, pc)
		}
	}
	return conns
}

// DisconnectedInGame lists players of a game awaiting reconnection.
func (m *Manager) DisconnectedInGame(gameID string) []*PlayerConnection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var conns []*PlayerConnection
	for _, pc := range m.disconnected {
		if pc.GameID == gameID {
			conns = append(conns, pc)
		}
	}
	return conns
}

func (m *Manager) IsConnected(playerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byPlayer[playerID]
	return ok
}

func (m *Manager) IsInGame(playerID, gameID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.gamePlayers[gameID][playerID]
	return ok
}

// SendToPlayer delivers a message to a single connected player.
func (m *Manager) SendToPlayer(playerID string, msg protocol.Message) bool {
	pc := m.Connection(playerID)
	if pc == nil {
		return false
	}
	if err := pc.Send(msg); err != nil {
		m.logger.Error("failed to send message",
			zap.String("player_id", playerID),
			zap.Error(err),
		)
		return false
	}
	return true
}

// BroadcastOptions narrow the recipients of a game broadcast.
type BroadcastOptions struct {
	ExcludePlayerID   string
	ExcludeSpectators bool
}

// Broadcast sends a message to the connected players of a game and
// returns how many received it.
func (m *Manager) Broadcast(gameID string, msg protocol.Message, opts BroadcastOptions) int {
	m.mu.RLock()
	conns := m.connectedInGameLocked(gameID)
	m.mu.RUnlock()

	sent := 0
	for _, pc := range conns {
		if opts.ExcludePlayerID != "" && pc.PlayerID == opts.ExcludePlayerID {
			continue
		}
		if opts.ExcludeSpectators && pc.IsSpectator {
			continue
		}
		if err := pc.Send(msg); err != nil {
			m.logger.Error("broadcast send failed",
				zap.String("player_id", pc.PlayerID),
				zap.String("game_id", gameID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}
	return sent
}

// TransferHost moves the host flag to another player in the game. Both
// the old and the new host may be sitting in the disconnected table;
// their parked flags move too, so a later reconnect restores the right
// one.
func (m *Manager) TransferHost(gameID, newHostID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.gamePlayers[gameID][newHostID]; !ok {
		return false
	}
	target := m.byPlayer[newHostID]
	if target == nil {
		target = m.disconnected[newHostID]
	}
	if target == nil {
		return false
	}
	for playerID := range m.gamePlayers[gameID] {
		if pc := m.byPlayer[playerID]; pc != nil {
			pc.IsHost = false
		}
		if pc := m.disconnected[playerID]; pc != nil {
			pc.IsHost = false
		}
	}
	target.IsHost = true
	m.logger.Info("host transferred",
		zap.String("game_id", gameID),
		zap.String("new_host_id", newHostID),
	)
	return true
}

// Stats summarizes connection state for diagnostics.
type Stats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveGames      int            `json:"active_games"`
	AwaitingPlayers  int            `json:"disconnected_awaiting_reconnect"`
	PlayersPerGame   map[string]int `json:"players_per_game"`
}

func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	perGame := make(map[string]int, len(m.gamePlayers))
	for gameID, players := range m.gamePlayers {
		perGame[gameID] = len(players)
	}
	return Stats{
		TotalConnections: len(m.byPlayer),
		ActiveGames:      len(m.gamePlayers),
		AwaitingPlayers:  len(m.disconnected),
		PlayersPerGame:   perGame,
	}
}
