package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'WAITING',
	current_player_index INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ,
	winner_id TEXT NOT NULL DEFAULT '',
	settings_json JSONB NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS players (
	id TEXT PRIMARY KEY,
	game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	token TEXT NOT NULL,
	position INT NOT NULL DEFAULT 0,
	money INT NOT NULL DEFAULT 1500,
	is_bankrupt BOOLEAN NOT NULL DEFAULT false,
	is_in_jail BOOLEAN NOT NULL DEFAULT false,
	jail_turns INT NOT NULL DEFAULT 0,
	get_out_of_jail_cards INT NOT NULL DEFAULT 0,
	turn_order INT NOT NULL,
	connected BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS properties (
	game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	position INT NOT NULL,
	owner_id TEXT NOT NULL DEFAULT '',
	houses INT NOT NULL DEFAULT 0,
	is_mortgaged BOOLEAN NOT NULL DEFAULT false,
	PRIMARY KEY (game_id, position)
);

CREATE TABLE IF NOT EXISTS card_decks (
	game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	deck_type TEXT NOT NULL,
	card_order_json JSONB NOT NULL DEFAULT '{}',
	current_index INT NOT NULL DEFAULT 0,
	PRIMARY KEY (game_id, deck_type)
);

CREATE TABLE IF NOT EXISTS game_states (
	id BIGSERIAL PRIMARY KEY,
	game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	state_json JSONB NOT NULL,
	turn_number INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_players_game_id ON players(game_id);
CREATE INDEX IF NOT EXISTS idx_properties_game_id ON properties(game_id);
CREATE INDEX IF NOT EXISTS idx_game_states_game_id ON game_states(game_id);
CREATE INDEX IF NOT EXISTS idx_games_status ON games(status);
`

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres connects to the database, verifies the connection and
// ensures the schema exists.
func NewPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	cfg.MaxConns = 25
	cfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	logger.Info("database connection pool initialized",
		zap.Int32("max_conns", cfg.MaxConns),
	)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) SaveFullGame(ctx context.Context, game GameRecord, players []PlayerRecord, properties []PropertyRecord, decks []CardDeckRecord, snapshot []byte, turnNumber int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO games (id, name, status, current_player_index, finished_at, winner_id, settings_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			current_player_index = EXCLUDED.current_player_index,
			updated_at = now(),
			finished_at = EXCLUDED.finished_at,
			winner_id = EXCLUDED.winner_id,
			settings_json = EXCLUDED.settings_json`,
		game.ID, game.Name, game.Status, game.CurrentPlayerIndex,
		game.FinishedAt, game.WinnerID, game.SettingsJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert game: %w", err)
	}

	for _, p := range players {
		_, err = tx.Exec(ctx, `
			INSERT INTO players (id, game_id, name, token, position, money,
				is_bankrupt, is_in_jail, jail_turns, get_out_of_jail_cards, turn_order, connected)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (id) DO UPDATE SET
				position = EXCLUDED.position,
				money = EXCLUDED.money,
				is_bankrupt = EXCLUDED.is_bankrupt,
				is_in_jail = EXCLUDED.is_in_jail,
				jail_turns = EXCLUDED.jail_turns,
				get_out_of_jail_cards = EXCLUDED.get_out_of_jail_cards,
				connected = EXCLUDED.connected`,
			p.ID, p.GameID, p.Name, p.Token, p.Position, p.Money,
			p.Bankrupt, p.InJail, p.JailTurns, p.JailCards, p.TurnOrder, p.Connected,
		)
		if err != nil {
			return fmt.Errorf("upsert player %s: %w", p.ID, err)
		}
	}

	for _, prop := range properties {
		_, err = tx.Exec(ctx, `
			INSERT INTO properties (game_id, position, owner_id, houses, is_mortgaged)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (game_id, position) DO UPDATE SET
				owner_id = EXCLUDED.owner_id,
				houses = EXCLUDED.houses,
				is_mortgaged = EXCLUDED.is_mortgaged`,
			prop.GameID, prop.Position, prop.OwnerID, prop.Houses, prop.IsMortgaged,
		)
		if err != nil {
			return fmt.Errorf("upsert property %d: %w", prop.Position, err)
		}
	}

	for _, deck := range decks {
		_, err = tx.Exec(ctx, `
			INSERT INTO card_decks (game_id, deck_type, card_order_json, current_index)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (game_id, deck_type) DO UPDATE SET
				card_order_json = EXCLUDED.card_order_json,
				current_index = EXCLUDED.current_index`,
			deck.GameID, deck.DeckType, deck.CardOrderJSON, deck.CurrentIndex,
		)
		if err != nil {
			return fmt.Errorf("upsert card deck %s: %w", deck.DeckType, err)
		}
	}

	if snapshot != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO game_states (game_id, state_json, turn_number)
			VALUES ($1, $2, $3)`,
			game.ID, snapshot, turnNumber,
		)
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) GetGame(ctx context.Context, gameID string) (*GameRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, status, current_player_index, created_at, updated_at, finished_at, winner_id, settings_json
		FROM games WHERE id = $1`, gameID)

	var g GameRecord
	err := row.Scan(&g.ID, &g.Name, &g.Status, &g.CurrentPlayerIndex,
		&g.CreatedAt, &g.UpdatedAt, &g.FinishedAt, &g.WinnerID, &g.SettingsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return &g, nil
}

func (s *PostgresStore) PlayersForGame(ctx context.Context, gameID string) ([]PlayerRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, game_id, name, token, position, money,
			is_bankrupt, is_in_jail, jail_turns, get_out_of_jail_cards, turn_order, connected
		FROM players WHERE game_id = $1 ORDER BY turn_order`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []PlayerRecord
	for rows.Next() {
		var p PlayerRecord
		if err := rows.Scan(&p.ID, &p.GameID, &p.Name, &p.Token, &p.Position, &p.Money,
			&p.Bankrupt, &p.InJail, &p.JailTurns, &p.JailCards, &p.TurnOrder, &p.Connected); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *PostgresStore) PropertiesForGame(ctx context.Context, gameID string) ([]PropertyRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT game_id, position, owner_id, houses, is_mortgaged
		FROM properties WHERE game_id = $1 ORDER BY position`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	var props []PropertyRecord
	for rows.Next() {
		var p PropertyRecord
		if err := rows.Scan(&p.GameID, &p.Position, &p.OwnerID, &p.Houses, &p.IsMortgaged); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

func (s *PostgresStore) LatestSnapshot(ctx context.Context, gameID string) (*StateSnapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, game_id, state_json, turn_number, created_at
		FROM game_states
		WHERE game_id = $1
		ORDER BY turn_number DESC, id DESC
		LIMIT 1`, gameID)

	var snap StateSnapshot
	err := row.Scan(&snap.ID, &snap.GameID, &snap.StateJSON, &snap.TurnNumber, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	return &snap, nil
}

func (s *PostgresStore) ListGames(ctx context.Context, status string, limit, offset int) ([]GameSummary, error) {
	query := `
		SELECT g.id, g.name, g.status, g.created_at, g.updated_at, COUNT(p.id) AS player_count
		FROM games g
		LEFT JOIN players p ON g.id = p.game_id`
	args := []interface{}{limit, offset}
	if status != "" {
		query += ` WHERE g.status = $3`
		args = append(args, status)
	}
	query += `
		GROUP BY g.id
		ORDER BY g.updated_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var games []GameSummary
	for rows.Next() {
		var g GameSummary
		if err := rows.Scan(&g.ID, &g.Name, &g.Status, &g.CreatedAt, &g.UpdatedAt, &g.PlayerCount); err != nil {
			return nil, fmt.Errorf("scan game summary: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *PostgresStore) DeleteGame(ctx context.Context, gameID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, gameID)
	if err != nil {
		return false, fmt.Errorf("delete game: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) CleanupOldSnapshots(ctx context.Context, gameID string, keep int) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM game_states
		WHERE game_id = $1 AND id NOT IN (
			SELECT id FROM game_states
			WHERE game_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		)`, gameID, keep)
	if err != nil {
		return 0, fmt.Errorf("cleanup snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
