package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store. It backs tests and servers that
// run with persistence disabled.
type MemoryStore struct {
	mu         sync.RWMutex
	games      map[string]GameRecord
	players    map[string][]PlayerRecord
	properties map[string][]PropertyRecord
	decks      map[string][]CardDeckRecord
	snapshots  map[string][]StateSnapshot
	nextSnapID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:      make(map[string]GameRecord),
		players:    make(map[string][]PlayerRecord),
		properties: make(map[string][]PropertyRecord),
		decks:      make(map[string][]CardDeckRecord),
		snapshots:  make(map[string][]StateSnapshot),
	}
}

func (s *MemoryStore) SaveFullGame(_ context.Context, game GameRecord, players []PlayerRecord, properties []PropertyRecord, decks []CardDeckRecord, snapshot []byte, turnNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.games[game.ID]; ok {
		game.CreatedAt = existing.CreatedAt
	} else {
		game.CreatedAt = now
	}
	game.UpdatedAt = now
	s.games[game.ID] = game

	s.players[game.ID] = append([]PlayerRecord(nil), players...)
	s.properties[game.ID] = append([]PropertyRecord(nil), properties...)
	s.decks[game.ID] = append([]CardDeckRecord(nil), decks...)

	if snapshot != nil {
		s.nextSnapID++
		s.snapshots[game.ID] = append(s.snapshots[game.ID], StateSnapshot{
			ID:         s.nextSnapID,
			GameID:     game.ID,
			StateJSON:  append([]byte(nil), snapshot...),
			TurnNumber: turnNumber,
			CreatedAt:  now,
		})
	}
	return nil
}

func (s *MemoryStore) GetGame(_ context.Context, gameID string) (*GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (s *MemoryStore) PlayersForGame(_ context.Context, gameID string) ([]PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := append([]PlayerRecord(nil), s.players[gameID]...)
	sort.Slice(players, func(i, j int) bool { return players[i].TurnOrder < players[j].TurnOrder })
	return players, nil
}

func (s *MemoryStore) PropertiesForGame(_ context.Context, gameID string) ([]PropertyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	props := append([]PropertyRecord(nil), s.properties[gameID]...)
	sort.Slice(props, func(i, j int) bool { return props[i].Position < props[j].Position })
	return props, nil
}

func (s *MemoryStore) LatestSnapshot(_ context.Context, gameID string) (*StateSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.snapshots[gameID]
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	best := snaps[0]
	for _, snap := range snaps[1:] {
		if snap.TurnNumber > best.TurnNumber ||
			(snap.TurnNumber == best.TurnNumber && snap.ID > best.ID) {
			best = snap
		}
	}
	return &best, nil
}

func (s *MemoryStore) ListGames(_ context.Context, status string, limit, offset int) ([]GameSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var games []GameSummary
	for id, g := range s.games {
		if status != "" && g.Status != status {
			continue
		}
		games = append(games, GameSummary{
			ID:          g.ID,
			Name:        g.Name,
			Status:      g.Status,
			PlayerCount: len(s.players[id]),
			CreatedAt:   g.CreatedAt,
			UpdatedAt:   g.UpdatedAt,
		})
	}
	sort.Slice(games, func(i, j int) bool { return games[i].UpdatedAt.After(games[j].UpdatedAt) })

	if offset >= len(games) {
		return nil, nil
	}
	games = games[offset:]
	if limit > 0 && len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

func (s *MemoryStore) DeleteGame(_ context.Context, gameID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[gameID]; !ok {
		return false, nil
	}
	delete(s.games, gameID)
	delete(s.players, gameID)
	delete(s.properties, gameID)
	delete(s.decks, gameID)
	delete(s.snapshots, gameID)
	return true, nil
}

func (s *MemoryStore) CleanupOldSnapshots(_ context.Context, gameID string, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snaps := s.snapshots[gameID]
	if len(snaps) <= keep {
		return 0, nil
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID > snaps[j].ID })
	removed := int64(len(snaps) - keep)
	s.snapshots[gameID] = append([]StateSnapshot(nil), snaps[:keep]...)
	return removed, nil
}

func (s *MemoryStore) Close() {}
