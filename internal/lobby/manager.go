// Package lobby owns the set of running games, player membership, host
// privileges and persistence of game state.
package lobby

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openmonopoly/monopoly-server-go/internal/game"
	"github.com/openmonopoly/monopoly-server-go/internal/protocol"
	"github.com/openmonopoly/monopoly-server-go/internal/repository"
)

// ManagedGame wraps an engine game with lobby metadata. The embedded
// mutex serializes all handler access to the underlying game, which is
// itself not goroutine safe.
type ManagedGame struct {
	sync.Mutex

	Game         *game.Game
	HostPlayerID string
	Settings     protocol.GameSettings
	CreatedAt    time.Time

	lastSavedTurn int
}

func (mg *ManagedGame) IsStarted() bool {
	return mg.Game.Phase != game.PhaseWaiting
}

func (mg *ManagedGame) IsFinished() bool {
	return mg.Game.Phase == game.PhaseGameOver
}

// NeedsSave reports whether the game advanced past the last saved turn.
func (mg *ManagedGame) NeedsSave() bool {
	return mg.Game.TurnNumber > mg.lastSavedTurn
}

// DefaultSnapshotsToKeep bounds per-game snapshot history when no
// retention limit is configured.
const DefaultSnapshotsToKeep = 10

// Manager tracks games in memory and persists them through the store.
type Manager struct {
	mu          sync.RWMutex
	games       map[string]*ManagedGame
	playerGames map[string]string
	spectators  map[string]bool

	store           repository.Store
	snapshotsToKeep int
	logger          *zap.Logger
}

func NewManager(store repository.Store, snapshotsToKeep int, logger *zap.Logger) *Manager {
	if snapshotsToKeep <= 0 {
		snapshotsToKeep = DefaultSnapshotsToKeep
	}
	return &Manager{
		games:           make(map[string]*ManagedGame),
		playerGames:     make(map[string]string),
		spectators:      make(map[string]bool),
		store:           store,
		snapshotsToKeep: snapshotsToKeep,
		logger:          logger,
	}
}

// CreateGame creates a game with the caller as host and first player.
func (m *Manager) CreateGame(name, hostID, hostName string, settings protocol.GameSettings) (*ManagedGame, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gameID, ok := m.playerGames[hostID]; ok {
		return nil, fmt.Sprintf("Already in game %s", gameID), false
	}

	settings.ApplyDefaults()

	g := game.NewGame(name)
	g.MaxPlayers = settings.MaxPlayers
	if _, msg, ok := g.AddPlayer(hostName, hostID); !ok {
		return nil, msg, false
	}

	mg := &ManagedGame{
		Game:         g,
		HostPlayerID: hostID,
		Settings:     settings,
		CreatedAt:    time.Now(),
	}
	m.games[g.ID] = mg
	m.playerGames[hostID] = g.ID

	m.logger.Info("game created",
		zap.String("game_id", g.ID),
		zap.String("name", name),
		zap.String("host_id", hostID),
	)
	return mg, "Game created", true
}

// JoinGame adds a player to a game. Joining a game the player already
// belongs to counts as a reconnect. Returns a nil player for
// spectators.
func (m *Manager) JoinGame(gameID, playerID, playerName string, asSpectator bool) (*game.Player, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, ok := m.games[gameID]
	if !ok {
		return nil, "Game not found", false
	}

	if current, inGame := m.playerGames[playerID]; inGame {
		if current != gameID {
			return nil, fmt.Sprintf("Already in game %s", current), false
		}
		if m.spectators[playerID] {
			return nil, "Reconnected to game", true
		}
		player := mg.Game.Players[playerID]
		if player == nil {
			return nil, "Player record missing", false
		}
		return player, "Reconnected to game", true
	}

	if asSpectator {
		if !mg.Settings.AllowSpectators {
			return nil, "Spectators are not allowed in this game", false
		}
		m.playerGames[playerID] = gameID
		m.spectators[playerID] = true
		return nil, "Joined as spectator", true
	}

	if mg.IsStarted() {
		return nil, "Game has already started", false
	}

	player, msg, ok := mg.Game.AddPlayer(playerName, playerID)
	if !ok {
		return nil, msg, false
	}
	m.playerGames[playerID] = gameID

	m.logger.Info("player joined game",
		zap.String("game_id", gameID),
		zap.String("player_id", playerID),
	)
	return player, "Joined game", true
}

// LeaveGame removes a player from their game. A leaving host keeps the
// host slot; the seat is held until they reconnect or the game ends.
// Empty unstarted games are deleted.
func (m *Manager) LeaveGame(playerID string) (string, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gameID, ok := m.playerGames[playerID]
	if !ok {
		return "", "Not in a game", false
	}
	mg := m.games[gameID]

	delete(m.playerGames, playerID)
	if m.spectators[playerID] {
		delete(m.spectators, playerID)
		return gameID, "Left game", true
	}

	if mg != nil {
		if msg, removed := mg.Game.RemovePlayer(playerID); !removed {
			m.logger.Warn("failed to remove player from game",
				zap.String("game_id", gameID),
				zap.String("player_id", playerID),
				zap.String("reason", msg),
			)
		}
		if !mg.IsStarted() && len(mg.Game.Players) == 0 {
			delete(m.games, gameID)
			if _, err := m.store.DeleteGame(context.Background(), gameID); err != nil {
				m.logger.Error("failed to delete empty game", zap.String("game_id", gameID), zap.Error(err))
			}
			m.logger.Info("empty game deleted", zap.String("game_id", gameID))
		}
	}
	return gameID, "Left game", true
}

// RemovePlayer kicks a player out of a game. Host only; the host
// cannot kick themselves.
func (m *Manager) RemovePlayer(gameID, targetID, requesterID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, ok := m.games[gameID]
	if !ok {
		return "Game not found", false
	}
	if mg.HostPlayerID != requesterID {
		return "Only the host can remove players", false
	}
	if targetID == requesterID {
		return "Host cannot remove themselves", false
	}

	if m.spectators[targetID] {
		delete(m.playerGames, targetID)
		delete(m.spectators, targetID)
		return "Spectator removed", true
	}

	msg, removed := mg.Game.RemovePlayer(targetID)
	if !removed {
		return msg, false
	}
	delete(m.playerGames, targetID)
	return "Player removed", true
}

// TransferHost hands host privileges to another player in the game.
func (m *Manager) TransferHost(gameID, newHostID, requesterID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, ok := m.games[gameID]
	if !ok {
		return "Game not found", false
	}
	if mg.HostPlayerID != requesterID {
		return "Only the host can transfer host privileges", false
	}
	if mg.Game.Players[newHostID] == nil {
		return "Player not in game", false
	}
	mg.HostPlayerID = newHostID
	return "Host transferred", true
}

// StartGame starts a game. Host only. The initial state is saved so a
// crashed server can recover the game from turn one.
func (m *Manager) StartGame(gameID, playerID string) (string, bool) {
	m.mu.Lock()
	mg, ok := m.games[gameID]
	if ok && mg.HostPlayerID != playerID {
		m.mu.Unlock()
		return "Only the host can start the game", false
	}
	m.mu.Unlock()
	if !ok {
		return "Game not found", false
	}

	msg, ok := mg.Game.Start()
	if !ok {
		return msg, false
	}

	// The caller serializes access to mg, as with every other
	// game-mutating call.
	if err := m.saveLocked(mg); err != nil {
		m.logger.Error("failed to save started game", zap.String("game_id", gameID), zap.Error(err))
	}
	m.logger.Info("game started", zap.String("game_id", gameID))
	return msg, true
}

// GetGame returns the managed game, or nil.
func (m *Manager) GetGame(gameID string) *ManagedGame {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.games[gameID]
}

// GameForPlayer returns the game a player or spectator belongs to.
func (m *Manager) GameForPlayer(playerID string) *ManagedGame {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gameID, ok := m.playerGames[playerID]
	if !ok {
		return nil
	}
	return m.games[gameID]
}

// IsSpectator reports whether the player joined as a spectator.
func (m *Manager) IsSpectator(playerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.spectators[playerID]
}

// SaveGame persists the full game state. It takes the game's own lock;
// callers already holding it use saveLocked.
func (m *Manager) SaveGame(gameID string) error {
	m.mu.RLock()
	mg, ok := m.games[gameID]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}

	mg.Lock()
	defer mg.Unlock()
	return m.saveLocked(mg)
}

// saveLocked builds and stores the persistence records. The engine is
// not goroutine safe, so the caller must hold mg's mutex for the whole
// call; the message loop mutates the game under that same lock.
func (m *Manager) saveLocked(mg *ManagedGame) error {
	g := mg.Game

	settingsJSON, err := json.Marshal(mg.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	record := repository.GameRecord{
		ID:                 g.ID,
		Name:               g.Name,
		Status:             string(g.Phase),
		CurrentPlayerIndex: g.CurrentPlayerIndex,
		WinnerID:           g.WinnerID,
		SettingsJSON:       settingsJSON,
	}
	if mg.IsFinished() {
		now := time.Now()
		record.FinishedAt = &now
	}

	players := make([]repository.PlayerRecord, 0, len(g.PlayerOrder))
	for order, playerID := range g.PlayerOrder {
		p := g.Players[playerID]
		if p == nil {
			continue
		}
		players = append(players, repository.PlayerRecord{
			ID:        p.ID,
			GameID:    g.ID,
			Name:      p.Name,
			Token:     "default",
			Position:  p.Position,
			Money:     p.Money,
			Bankrupt:  p.State == game.StateBankrupt,
			InJail:    p.State == game.StateInJail,
			JailTurns: p.JailTurns,
			JailCards: p.JailCards,
			TurnOrder: order,
		})
	}

	var properties []repository.PropertyRecord
	for position, prop := range g.Board().Properties() {
		if !prop.IsOwned() {
			continue
		}
		houses := prop.Houses
		if prop.HasHotel {
			houses = 5
		}
		properties = append(properties, repository.PropertyRecord{
			GameID:      g.ID,
			Position:    position,
			OwnerID:     prop.OwnerID,
			Houses:      houses,
			IsMortgaged: prop.IsMortgaged,
		})
	}

	decks := make([]repository.CardDeckRecord, 0, 2)
	for _, deck := range []struct {
		kind      game.CardType
		remaining int
		discarded int
	}{
		{game.CardChance, g.Cards().Chance.Remaining(), g.Cards().Chance.DiscardCount()},
		{game.CardCommunityChest, g.Cards().CommunityChest.Remaining(), g.Cards().CommunityChest.DiscardCount()},
	} {
		counts, err := json.Marshal(map[string]int{
			"remaining": deck.remaining,
			"discarded": deck.discarded,
		})
		if err != nil {
			return fmt.Errorf("marshal deck counts: %w", err)
		}
		decks = append(decks, repository.CardDeckRecord{
			GameID:        g.ID,
			DeckType:      string(deck.kind),
			CardOrderJSON: counts,
			CurrentIndex:  deck.discarded,
		})
	}

	snapshot, err := json.Marshal(g.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := m.store.SaveFullGame(context.Background(), record, players, properties, decks, snapshot, g.TurnNumber); err != nil {
		return fmt.Errorf("save game %s: %w", g.ID, err)
	}

	if _, err := m.store.CleanupOldSnapshots(context.Background(), g.ID, m.snapshotsToKeep); err != nil {
		m.logger.Warn("snapshot cleanup failed", zap.String("game_id", g.ID), zap.Error(err))
	}

	mg.lastSavedTurn = g.TurnNumber
	m.logger.Debug("game saved",
		zap.String("game_id", g.ID),
		zap.Int("turn_number", g.TurnNumber),
	)
	return nil
}

// AutoSaveIfNeeded saves only when the turn counter moved since the
// last save.
func (m *Manager) AutoSaveIfNeeded(gameID string) {
	mg := m.GetGame(gameID)
	if mg == nil {
		return
	}

	mg.Lock()
	defer mg.Unlock()
	if !mg.NeedsSave() {
		return
	}
	if err := m.saveLocked(mg); err != nil {
		m.logger.Error("auto-save failed", zap.String("game_id", gameID), zap.Error(err))
	}
}

// LoadGame restores a game from its latest snapshot. The first player
// in turn order becomes host.
func (m *Manager) LoadGame(ctx context.Context, gameID string) (*ManagedGame, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mg, ok := m.games[gameID]; ok {
		return mg, "Game already loaded", true
	}

	record, err := m.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, "Game not found", false
	}
	stored, err := m.store.LatestSnapshot(ctx, gameID)
	if err != nil {
		return nil, "No saved state for game", false
	}

	var snap game.GameSnapshot
	if err := json.Unmarshal(stored.StateJSON, &snap); err != nil {
		m.logger.Error("corrupt snapshot", zap.String("game_id", gameID), zap.Error(err))
		return nil, "Saved state is corrupt", false
	}

	settings := protocol.DefaultSettings()
	if len(record.SettingsJSON) > 0 {
		if err := json.Unmarshal(record.SettingsJSON, &settings); err != nil {
			m.logger.Warn("unreadable settings, using defaults", zap.String("game_id", gameID), zap.Error(err))
		}
		settings.ApplyDefaults()
	}

	g := game.RestoreGame(snap)
	g.MaxPlayers = settings.MaxPlayers

	mg := &ManagedGame{
		Game:          g,
		Settings:      settings,
		CreatedAt:     record.CreatedAt,
		lastSavedTurn: g.TurnNumber,
	}
	if len(g.PlayerOrder) > 0 {
		mg.HostPlayerID = g.PlayerOrder[0]
	}

	m.games[gameID] = mg
	for _, playerID := range g.PlayerOrder {
		m.playerGames[playerID] = gameID
	}

	m.logger.Info("game loaded from store",
		zap.String("game_id", gameID),
		zap.Int("turn_number", g.TurnNumber),
	)
	return mg, "Game loaded", true
}

// DeleteGame removes a game from memory and the store. Only the host
// may delete an unfinished game.
func (m *Manager) DeleteGame(gameID, requesterID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mg, inMemory := m.games[gameID]
	if inMemory && !mg.IsFinished() && mg.HostPlayerID != requesterID {
		return "Only the host can delete the game", false
	}

	if inMemory {
		for _, playerID := range mg.Game.PlayerOrder {
			delete(m.playerGames, playerID)
		}
		for playerID, id := range m.playerGames {
			if id == gameID {
				delete(m.playerGames, playerID)
				delete(m.spectators, playerID)
			}
		}
		delete(m.games, gameID)
	}

	deleted, err := m.store.DeleteGame(context.Background(), gameID)
	if err != nil {
		m.logger.Error("failed to delete game", zap.String("game_id", gameID), zap.Error(err))
		return "Failed to delete game", false
	}
	if !inMemory && !deleted {
		return "Game not found", false
	}
	return "Game deleted", true
}

// ListGames merges in-memory games with stored ones, deduplicated by
// game ID. Stored-only entries carry no host and default player caps.
func (m *Manager) ListGames(status string) []protocol.GameSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var out []protocol.GameSummary

	for gameID, mg := range m.games {
		phase := string(mg.Game.Phase)
		if status != "" && phase != status {
			continue
		}
		hostName := ""
		if host := mg.Game.Players[mg.HostPlayerID]; host != nil {
			hostName = host.Name
		}
		seen[gameID] = true
		out = append(out, protocol.GameSummary{
			GameID:      gameID,
			Name:        mg.Game.Name,
			Status:      phase,
			PlayerCount: len(mg.Game.Players),
			MaxPlayers:  mg.Settings.MaxPlayers,
			HostName:    hostName,
			InMemory:    true,
			CreatedAt:   mg.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	stored, err := m.store.ListGames(context.Background(), status, 50, 0)
	if err != nil {
		m.logger.Error("failed to list stored games", zap.Error(err))
		return out
	}
	for _, g := range stored {
		if seen[g.ID] {
			continue
		}
		out = append(out, protocol.GameSummary{
			GameID:      g.ID,
			Name:        g.Name,
			Status:      g.Status,
			PlayerCount: g.PlayerCount,
			MaxPlayers:  4,
			InMemory:    false,
			CreatedAt:   g.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// ListJoinableGames lists in-memory games that have not started and
// still have a free seat.
func (m *Manager) ListJoinableGames() []protocol.GameSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []protocol.GameSummary
	for gameID, mg := range m.games {
		if mg.IsStarted() || len(mg.Game.Players) >= mg.Settings.MaxPlayers {
			continue
		}
		hostName := ""
		if host := mg.Game.Players[mg.HostPlayerID]; host != nil {
			hostName = host.Name
		}
		out = append(out, protocol.GameSummary{
			GameID:      gameID,
			Name:        mg.Game.Name,
			Status:      string(mg.Game.Phase),
			PlayerCount: len(mg.Game.Players),
			MaxPlayers:  mg.Settings.MaxPlayers,
			HostName:    hostName,
			InMemory:    true,
			CreatedAt:   mg.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// Stats summarizes lobby state for diagnostics.
type Stats struct {
	TotalGames    int `json:"total_games"`
	ActiveGames   int `json:"active_games"`
	WaitingGames  int `json:"waiting_games"`
	FinishedGames int `json:"finished_games"`
	TotalPlayers  int `json:"total_players"`
	Spectators    int `json:"spectators"`
}

func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{
		TotalGames: len(m.games),
		Spectators: len(m.spectators),
	}
	for _, mg := range m.games {
		switch {
		case mg.IsFinished():
			stats.FinishedGames++
		case mg.IsStarted():
			stats.ActiveGames++
		default:
			stats.WaitingGames++
		}
		stats.TotalPlayers += len(mg.Game.Players)
	}
	return stats
}
