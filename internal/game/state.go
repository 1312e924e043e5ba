package game

import (
	"sort"
	"time"
)

// PlayerSnapshot is a player's serialized state, used both for
// persistence and on the wire.
type PlayerSnapshot struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Money      int         `json:"money"`
	Position   int         `json:"position"`
	State      PlayerState `json:"state"`
	JailTurns  int         `json:"jail_turns"`
	JailCards  int         `json:"jail_cards"`
	Properties []int       `json:"properties"`
}

// PropertySnapshot is a property's serialized state.
type PropertySnapshot struct {
	Position    int           `json:"position"`
	Name        string        `json:"name"`
	SpaceType   SpaceType     `json:"space_type"`
	Cost        int           `json:"cost"`
	Group       PropertyGroup `json:"group"`
	OwnerID     string        `json:"owner_id"`
	Houses      int           `json:"houses"`
	HasHotel    bool          `json:"has_hotel"`
	IsMortgaged bool          `json:"is_mortgaged"`
}

// BoardSnapshot carries the mutable state of every purchasable space.
type BoardSnapshot struct {
	Properties map[int]PropertySnapshot `json:"properties"`
}

// RulesSnapshot carries the bank's remaining building stock.
type RulesSnapshot struct {
	HousesAvailable int `json:"houses_available"`
	HotelsAvailable int `json:"hotels_available"`
}

// DeckSnapshot summarizes one deck's pile sizes.
type DeckSnapshot struct {
	CardType       CardType `json:"card_type"`
	CardsRemaining int      `json:"cards_remaining"`
	DiscardCount   int      `json:"discard_count"`
}

// CardsSnapshot summarizes both decks.
type CardsSnapshot struct {
	Chance         DeckSnapshot `json:"chance"`
	CommunityChest DeckSnapshot `json:"community_chest"`
}

// GameSnapshot is the full serialized game state, JSON-stable for
// persistence and recovery.
type GameSnapshot struct {
	ID                 string                    `json:"id"`
	Name               string                    `json:"name"`
	CreatedAt          time.Time                 `json:"created_at"`
	Phase              GamePhase                 `json:"phase"`
	TurnNumber         int                       `json:"turn_number"`
	CurrentPlayerIndex int                       `json:"current_player_index"`
	PlayerOrder        []string                  `json:"player_order"`
	WinnerID           string                    `json:"winner_id,omitempty"`
	LastDiceRoll       []int                     `json:"last_dice_roll,omitempty"`
	Players            map[string]PlayerSnapshot `json:"players"`
	Board              BoardSnapshot             `json:"board"`
	Rules              RulesSnapshot             `json:"rules"`
	Cards              CardsSnapshot             `json:"cards"`
}

func (p *Player) snapshot() PlayerSnapshot {
	positions := make([]int, 0, len(p.Properties))
	for pos := range p.Properties {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return PlayerSnapshot{
		ID:         p.ID,
		Name:       p.Name,
		Money:      p.Money,
		Position:   p.Position,
		State:      p.State,
		JailTurns:  p.JailTurns,
		JailCards:  p.JailCards,
		Properties: positions,
	}
}

func (p *Property) snapshot() PropertySnapshot {
	return PropertySnapshot{
		Position:    p.Position,
		Name:        p.Name,
		SpaceType:   p.Type,
		Cost:        p.Cost,
		Group:       p.Group,
		OwnerID:     p.OwnerID,
		Houses:      p.Houses,
		HasHotel:    p.HasHotel,
		IsMortgaged: p.IsMortgaged,
	}
}

// Snapshot serializes the complete game state.
func (g *Game) Snapshot() GameSnapshot {
	players := make(map[string]PlayerSnapshot, len(g.Players))
	for id, player := range g.Players {
		players[id] = player.snapshot()
	}

	properties := make(map[int]PropertySnapshot, len(g.board.Properties()))
	for pos, prop := range g.board.Properties() {
		properties[pos] = prop.snapshot()
	}

	var lastRoll []int
	if g.LastDiceRoll != nil {
		lastRoll = []int{g.LastDiceRoll.Die1, g.LastDiceRoll.Die2}
	}

	return GameSnapshot{
		ID:                 g.ID,
		Name:               g.Name,
		CreatedAt:          g.CreatedAt,
		Phase:              g.Phase,
		TurnNumber:         g.TurnNumber,
		CurrentPlayerIndex: g.CurrentPlayerIndex,
		PlayerOrder:        append([]string(nil), g.PlayerOrder...),
		WinnerID:           g.WinnerID,
		LastDiceRoll:       lastRoll,
		Players:            players,
		Board:              BoardSnapshot{Properties: properties},
		Rules: RulesSnapshot{
			HousesAvailable: g.rules.HousesAvailable,
			HotelsAvailable: g.rules.HotelsAvailable,
		},
		Cards: CardsSnapshot{
			Chance: DeckSnapshot{
				CardType:       CardChance,
				CardsRemaining: g.cards.Chance.Remaining(),
				DiscardCount:   g.cards.Chance.DiscardCount(),
			},
			CommunityChest: DeckSnapshot{
				CardType:       CardCommunityChest,
				CardsRemaining: g.cards.CommunityChest.Remaining(),
				DiscardCount:   g.cards.CommunityChest.DiscardCount(),
			},
		},
	}
}

// RestoreGame rebuilds a game from a snapshot. Deck order is not part
// of the snapshot; decks come back freshly shuffled.
func RestoreGame(snap GameSnapshot) *Game {
	g := NewGame(snap.Name)
	g.ID = snap.ID
	if !snap.CreatedAt.IsZero() {
		g.CreatedAt = snap.CreatedAt
	}
	g.Phase = snap.Phase
	g.TurnNumber = snap.TurnNumber
	g.CurrentPlayerIndex = snap.CurrentPlayerIndex
	g.PlayerOrder = append([]string(nil), snap.PlayerOrder...)
	g.WinnerID = snap.WinnerID

	if len(snap.LastDiceRoll) == 2 {
		g.LastDiceRoll = &DiceResult{Die1: snap.LastDiceRoll[0], Die2: snap.LastDiceRoll[1]}
	}

	for id, ps := range snap.Players {
		player := &Player{
			ID:         ps.ID,
			Name:       ps.Name,
			Money:      ps.Money,
			Position:   ps.Position,
			State:      ps.State,
			JailTurns:  ps.JailTurns,
			JailCards:  ps.JailCards,
			Properties: make(map[int]bool, len(ps.Properties)),
		}
		for _, pos := range ps.Properties {
			player.Properties[pos] = true
		}
		g.Players[id] = player
	}

	for pos, psnap := range snap.Board.Properties {
		if prop := g.board.Property(pos); prop != nil {
			prop.OwnerID = psnap.OwnerID
			prop.Houses = psnap.Houses
			prop.HasHotel = psnap.HasHotel
			prop.IsMortgaged = psnap.IsMortgaged
		}
	}

	g.rules.HousesAvailable = snap.Rules.HousesAvailable
	g.rules.HotelsAvailable = snap.Rules.HotelsAvailable

	return g
}

// PlayerView is the game state as pushed to one client.
type PlayerView struct {
	GameID          string                   `json:"game_id"`
	GameName        string                   `json:"game_name"`
	Phase           GamePhase                `json:"phase"`
	TurnNumber      int                      `json:"turn_number"`
	CurrentPlayerID string                   `json:"current_player_id"`
	IsYourTurn      bool                     `json:"is_your_turn"`
	LastDiceRoll    []int                    `json:"last_dice_roll,omitempty"`
	Players         []PlayerSnapshot         `json:"players"`
	Board           map[int]PropertySnapshot `json:"board"`
	HousesAvailable int                      `json:"houses_available"`
	HotelsAvailable int                      `json:"hotels_available"`
	WinnerID        string                   `json:"winner_id,omitempty"`
}

// StateForPlayer assembles the view sent to one player. Spectators pass
// an ID that is not in the game and simply never see is_your_turn set.
func (g *Game) StateForPlayer(playerID string) PlayerView {
	players := make([]PlayerSnapshot, 0, len(g.PlayerOrder))
	for _, id := range g.PlayerOrder {
		if player, ok := g.Players[id]; ok {
			players = append(players, player.snapshot())
		}
	}

	board := make(map[int]PropertySnapshot, len(g.board.Properties()))
	for pos, prop := range g.board.Properties() {
		board[pos] = prop.snapshot()
	}

	var lastRoll []int
	if g.LastDiceRoll != nil {
		lastRoll = []int{g.LastDiceRoll.Die1, g.LastDiceRoll.Die2}
	}

	return PlayerView{
		GameID:          g.ID,
		GameName:        g.Name,
		Phase:           g.Phase,
		TurnNumber:      g.TurnNumber,
		CurrentPlayerID: g.currentPlayerID(),
		IsYourTurn:      g.currentPlayerID() != "" && g.currentPlayerID() == playerID,
		LastDiceRoll:    lastRoll,
		Players:         players,
		Board:           board,
		HousesAvailable: g.rules.HousesAvailable,
		HotelsAvailable: g.rules.HotelsAvailable,
		WinnerID:        g.WinnerID,
	}
}
