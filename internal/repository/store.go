package repository

import "context"

// Store is the persistence surface the lobby depends on.
type Store interface {
	// SaveFullGame upserts the game, its players, properties and card
	// decks, and appends a state snapshot, atomically.
	SaveFullGame(ctx context.Context, game GameRecord, players []PlayerRecord, properties []PropertyRecord, decks []CardDeckRecord, snapshot []byte, turnNumber int) error

	GetGame(ctx context.Context, gameID string) (*GameRecord, error)
	PlayersForGame(ctx context.Context, gameID string) ([]PlayerRecord, error)
	PropertiesForGame(ctx context.Context, gameID string) ([]PropertyRecord, error)
	LatestSnapshot(ctx context.Context, gameID string) (*StateSnapshot, error)

	ListGames(ctx context.Context, status string, limit, offset int) ([]GameSummary, error)
	DeleteGame(ctx context.Context, gameID string) (bool, error)
	CleanupOldSnapshots(ctx context.Context, gameID string, keep int) (int64, error)

	Close()
}
