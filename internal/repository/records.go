// Package repository persists games, players, properties, card decks
// and full state snapshots.
package repository

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// GameRecord is a row of the games table.
type GameRecord struct {
	ID                 string
	Name               string
	Status             string
	CurrentPlayerIndex int
	CreatedAt          time.Time
	UpdatedAt          time.Time
	FinishedAt         *time.Time
	WinnerID           string
	SettingsJSON       []byte
}

// PlayerRecord is a row of the players table.
type PlayerRecord struct {
	ID        string
	GameID    string
	Name      string
	Token     string
	Position  int
	Money     int
	Bankrupt  bool
	InJail    bool
	JailTurns int
	JailCards int
	TurnOrder int
	Connected bool
}

// PropertyRecord is a row of the properties table. Houses carries 5 to
// encode a hotel.
type PropertyRecord struct {
	GameID      string
	Position    int
	OwnerID     string
	Houses      int
	IsMortgaged bool
}

// CardDeckRecord stores a deck's remaining and discarded counts.
type CardDeckRecord struct {
	GameID        string
	DeckType      string
	CardOrderJSON []byte
	CurrentIndex  int
}

// StateSnapshot is a full serialized game state at some turn.
type StateSnapshot struct {
	ID         int64
	GameID     string
	StateJSON  []byte
	TurnNumber int
	CreatedAt  time.Time
}

// GameSummary is a lobby-facing listing row.
type GameSummary struct {
	ID          string
	Name        string
	Status      string
	PlayerCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
