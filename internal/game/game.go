package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Game is the authoritative state of one Monopoly game. It owns the
// board, dice, decks and rule engine and drives the turn state machine.
// Game itself is not goroutine safe; callers serialize access per game.
type Game struct {
	ID        string
	Name      string
	CreatedAt time.Time

	board *Board
	dice  Roller
	cards *CardManager
	rules *RuleEngine

	Players            map[string]*Player
	PlayerOrder        []string
	CurrentPlayerIndex int

	Phase        GamePhase
	TurnNumber   int
	LastDiceRoll *DiceResult
	WinnerID     string

	events []GameEvent

	MinPlayers int
	MaxPlayers int
}

// NewGame creates an empty game in the waiting phase.
func NewGame(name string) *Game {
	board := NewBoard()
	return &Game{
		ID:         uuid.NewString(),
		Name:       name,
		CreatedAt:  time.Now().UTC(),
		board:      board,
		dice:       NewDice(),
		cards:      NewCardManager(),
		rules:      NewRuleEngine(board),
		Players:    make(map[string]*Player),
		Phase:      PhaseWaiting,
		MinPlayers: 2,
		MaxPlayers: 4,
	}
}

// Board exposes the board for rent queries and state assembly.
func (g *Game) Board() *Board {
	return g.board
}

// Rules exposes the rule engine, mainly for the building stock counters.
func (g *Game) Rules() *RuleEngine {
	return g.rules
}

// Cards exposes the card decks.
func (g *Game) Cards() *CardManager {
	return g.cards
}

// Events returns the event log accumulated so far.
func (g *Game) Events() []GameEvent {
	return g.events
}

// SetDice swaps the dice roller, letting tests install a scripted one.
func (g *Game) SetDice(dice Roller) {
	g.dice = dice
}

// CurrentPlayer returns the player whose turn it is, or nil before start.
func (g *Game) CurrentPlayer() *Player {
	if len(g.PlayerOrder) == 0 {
		return nil
	}
	return g.Players[g.PlayerOrder[g.CurrentPlayerIndex]]
}

func (g *Game) currentPlayerID() string {
	if p := g.CurrentPlayer(); p != nil {
		return p.ID
	}
	return ""
}

// ActivePlayers returns all players who have not gone bankrupt.
func (g *Game) ActivePlayers() []*Player {
	var active []*Player
	for _, id := range g.PlayerOrder {
		if p := g.Players[id]; p != nil && p.State != StateBankrupt {
			active = append(active, p)
		}
	}
	return active
}

// IsGameOver reports whether at most one active player remains.
func (g *Game) IsGameOver() bool {
	return len(g.ActivePlayers()) <= 1 && g.Phase != PhaseWaiting
}

func (g *Game) logEvent(eventType string, data map[string]interface{}) {
	g.events = append(g.events, newEvent(eventType, data))
}

// advanceTurn moves play to the next non-bankrupt player, bumps the turn
// counter and resets turn flags. A jailed player's attempt counter ticks
// when their turn comes around.
func (g *Game) advanceTurn() {
	if len(g.PlayerOrder) == 0 {
		return
	}
	start := g.CurrentPlayerIndex
	for {
		g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(g.PlayerOrder)
		if g.CurrentPlayerIndex == start {
			break
		}
		if next := g.CurrentPlayer(); next != nil && next.State != StateBankrupt {
			break
		}
	}

	g.TurnNumber++
	g.Phase = PhasePreRoll

	if current := g.CurrentPlayer(); current != nil {
		current.ResetTurn()
		if current.State == StateInJail {
			current.JailTurns++
		}
	}

	g.logEvent("turn_started", map[string]interface{}{
		"player_id":   g.currentPlayerID(),
		"turn_number": g.TurnNumber,
	})
}

// AddPlayer joins a player to a waiting game. An empty playerID gets a
// generated one (reconnecting sessions pass their existing ID).
func (g *Game) AddPlayer(name, playerID string) (*Player, string, bool) {
	if g.Phase != PhaseWaiting {
		return nil, "Game has already started", false
	}
	if len(g.Players) >= g.MaxPlayers {
		return nil, fmt.Sprintf("Game is full (%d players maximum)", g.MaxPlayers), false
	}

	player := NewPlayer(name)
	if playerID != "" {
		player.ID = playerID
	}
	g.Players[player.ID] = player
	g.PlayerOrder = append(g.PlayerOrder, player.ID)

	g.logEvent("player_joined", map[string]interface{}{
		"player_id":   player.ID,
		"player_name": player.Name,
	})

	return player, fmt.Sprintf("%s joined the game", name), true
}

// RemovePlayer removes a player. Before the game starts they simply
// leave; afterwards they go bankrupt to the bank.
func (g *Game) RemovePlayer(playerID string) (string, bool) {
	player, ok := g.Players[playerID]
	if !ok {
		return "Player not found", false
	}

	if g.Phase == PhaseWaiting {
		delete(g.Players, playerID)
		for i, id := range g.PlayerOrder {
			if id == playerID {
				g.PlayerOrder = append(g.PlayerOrder[:i], g.PlayerOrder[i+1:]...)
				break
			}
		}
	} else {
		g.handleBankruptcy(player, nil)
	}

	g.logEvent("player_left", map[string]interface{}{"player_id": playerID})

	return fmt.Sprintf("%s left the game", player.Name), true
}

// Start shuffles the turn order and begins play with turn 1.
func (g *Game) Start() (string, bool) {
	if g.Phase != PhaseWaiting {
		return "Game has already started", false
	}
	if len(g.Players) < g.MinPlayers {
		return fmt.Sprintf("Need at least %d players to start", g.MinPlayers), false
	}

	rand.Shuffle(len(g.PlayerOrder), func(i, j int) {
		g.PlayerOrder[i], g.PlayerOrder[j] = g.PlayerOrder[j], g.PlayerOrder[i]
	})

	g.Phase = PhasePreRoll
	g.TurnNumber = 1
	if current := g.CurrentPlayer(); current != nil {
		current.ResetTurn()
	}

	g.logEvent("game_started", map[string]interface{}{
		"player_order": g.PlayerOrder,
	})

	return "Game started!", true
}

// RollDice rolls for a player and resolves the outcome: jail escape
// attempts, the three-doubles rule, movement and landing.
func (g *Game) RollDice(playerID string) (*DiceResult, string, bool) {
	player, ok := g.Players[playerID]
	if !ok {
		return nil, "Player not found", false
	}

	if v := g.rules.ValidateRollDice(player, g.currentPlayerID(), g.Phase); !v.Valid {
		return nil, v.Message, false
	}

	result := g.dice.Roll()
	g.LastDiceRoll = &result
	player.HasRolled = true

	g.logEvent("dice_rolled", map[string]interface{}{
		"player_id": playerID,
		"die1":      result.Die1,
		"die2":      result.Die2,
		"total":     result.Total(),
		"is_double": result.IsDouble(),
	})

	if player.State == StateInJail {
		return g.handleJailRoll(player, &result)
	}

	if result.IsDouble() {
		player.ConsecutiveDoubles++
		if player.ConsecutiveDoubles >= 3 {
			player.SendToJail()
			g.Phase = PhasePostRoll
			g.logEvent("sent_to_jail", map[string]interface{}{
				"player_id": playerID,
				"reason":    "three_doubles",
			})
			return &result, "Three doubles! Go to jail!", true
		}
	} else {
		player.ConsecutiveDoubles = 0
	}

	return g.movePlayer(player, result.Total(), &result)
}

// handleJailRoll resolves a roll made from jail: doubles escape and
// move, the third failed attempt forces bail or a debt, anything else
// stays put.
func (g *Game) handleJailRoll(player *Player, result *DiceResult) (*DiceResult, string, bool) {
	if result.IsDouble() {
		player.ReleaseFromJail()
		g.logEvent("released_from_jail", map[string]interface{}{
			"player_id": player.ID,
			"reason":    "rolled_doubles",
		})
		return g.movePlayer(player, result.Total(), result)
	}

	if player.JailTurns >= MaxJailTurns {
		if player.CanAfford(JailBail) {
			player.RemoveMoney(JailBail)
			player.ReleaseFromJail()
			g.logEvent("released_from_jail", map[string]interface{}{
				"player_id": player.ID,
				"reason":    "forced_bail",
				"amount":    JailBail,
			})
			return g.movePlayer(player, result.Total(), result)
		}
		// Cannot cover the forced bail; player must liquidate or go bankrupt.
		g.Phase = PhasePayingRent
		return result, fmt.Sprintf("Must pay $%d bail - sell assets or go bankrupt", JailBail), true
	}

	g.Phase = PhasePostRoll
	return result, fmt.Sprintf("No doubles. %d attempts remaining.", MaxJailTurns-player.JailTurns), true
}

func (g *Game) movePlayer(player *Player, spaces int, result *DiceResult) (*DiceResult, string, bool) {
	oldPosition := player.Position
	passedGo := player.MoveForward(spaces)

	if passedGo {
		g.logEvent("passed_go", map[string]interface{}{
			"player_id": player.ID,
			"collected": SalaryAmount,
		})
	}

	g.logEvent("player_moved", map[string]interface{}{
		"player_id": player.ID,
		"from":      oldPosition,
		"to":        player.Position,
		"spaces":    spaces,
	})

	return g.handleLanding(player, result)
}

// handleLanding resolves the space the player stopped on. Card movement
// re-enters this resolution, so a Chance hop onto an owned property
// still charges rent.
func (g *Game) handleLanding(player *Player, result *DiceResult) (*DiceResult, string, bool) {
	space := g.board.Space(player.Position)

	switch space.Type {
	case SpaceGo:
		g.Phase = PhasePostRoll
		return result, "Landed on GO!", true

	case SpaceJail:
		g.Phase = PhasePostRoll
		return result, "Just visiting jail", true

	case SpaceFreeParking:
		g.Phase = PhasePostRoll
		return result, "Free Parking - take a rest!", true

	case SpaceGoToJail:
		player.SendToJail()
		g.Phase = PhasePostRoll
		g.logEvent("sent_to_jail", map[string]interface{}{
			"player_id": player.ID,
			"reason":    "landed_on_go_to_jail",
		})
		return result, "Go to Jail!", true

	case SpaceTax:
		tax := space.Cost
		if player.CanAfford(tax) {
			player.RemoveMoney(tax)
			g.Phase = PhasePostRoll
			g.logEvent("tax_paid", map[string]interface{}{
				"player_id": player.ID,
				"amount":    tax,
			})
			return result, fmt.Sprintf("Paid $%d in taxes", tax), true
		}
		g.Phase = PhasePayingRent
		return result, fmt.Sprintf("Must pay $%d in taxes", tax), true

	case SpaceChance:
		return g.handleCard(player, CardChance, result)

	case SpaceCommunityChest:
		return g.handleCard(player, CardCommunityChest, result)

	case SpaceProperty, SpaceRailroad, SpaceUtility:
		return g.handlePropertyLanding(player, result)
	}

	g.Phase = PhasePostRoll
	return result, fmt.Sprintf("Landed on %s", space.Name), true
}

func (g *Game) handlePropertyLanding(player *Player, result *DiceResult) (*DiceResult, string, bool) {
	prop := g.board.Property(player.Position)
	if prop == nil {
		g.Phase = PhasePostRoll
		return result, "Unknown space", true
	}

	if !prop.IsOwned() {
		g.Phase = PhasePropertyDecision
		return result, fmt.Sprintf("%s is available for $%d", prop.Name, prop.Cost), true
	}

	if prop.OwnerID == player.ID {
		g.Phase = PhasePostRoll
		return result, fmt.Sprintf("Welcome home to %s!", prop.Name), true
	}

	diceTotal := 0
	if result != nil {
		diceTotal = result.Total()
	}
	rent := g.board.Rent(player.Position, diceTotal, player.ID)
	if rent == 0 {
		g.Phase = PhasePostRoll
		return result, fmt.Sprintf("%s is mortgaged - no rent due", prop.Name), true
	}

	owner := g.Players[prop.OwnerID]
	ownerName := "Unknown"
	if owner != nil {
		ownerName = owner.Name
	}

	if player.CanAfford(rent) {
		player.RemoveMoney(rent)
		if owner != nil {
			owner.AddMoney(rent)
		}
		g.Phase = PhasePostRoll
		g.logEvent("rent_paid", map[string]interface{}{
			"payer_id": player.ID,
			"payee_id": prop.OwnerID,
			"amount":   rent,
			"property": prop.Name,
		})
		return result, fmt.Sprintf("Paid $%d rent to %s", rent, ownerName), true
	}

	g.Phase = PhasePayingRent
	g.logEvent("rent_due", map[string]interface{}{
		"payer_id": player.ID,
		"payee_id": prop.OwnerID,
		"amount":   rent,
		"property": prop.Name,
	})
	return result, fmt.Sprintf("Owe $%d to %s - raise funds!", rent, ownerName), true
}

func (g *Game) handleCard(player *Player, cardType CardType, result *DiceResult) (*DiceResult, string, bool) {
	var card Card
	if cardType == CardChance {
		card = g.cards.DrawChance()
	} else {
		card = g.cards.DrawCommunityChest()
	}

	g.logEvent("card_drawn", map[string]interface{}{
		"player_id": player.ID,
		"card_type": string(cardType),
		"card_text": card.Text,
	})

	return g.executeCard(player, card, result)
}

func (g *Game) executeCard(player *Player, card Card, result *DiceResult) (*DiceResult, string, bool) {
	switch card.Action {
	case ActionCollectMoney:
		player.AddMoney(card.Value)
		g.Phase = PhasePostRoll
		return result, fmt.Sprintf("%s (+$%d)", card.Text, card.Value), true

	case ActionPayMoney:
		if player.CanAfford(card.Value) {
			player.RemoveMoney(card.Value)
			g.Phase = PhasePostRoll
		} else {
			g.Phase = PhasePayingRent
		}
		return result, fmt.Sprintf("%s (-$%d)", card.Text, card.Value), true

	case ActionCollectFromPlayers:
		total := 0
		for _, other := range g.ActivePlayers() {
			if other.ID == player.ID {
				continue
			}
			amount := card.Value
			if other.Money < amount {
				amount = other.Money
			}
			other.RemoveMoney(amount)
			total += amount
		}
		player.AddMoney(total)
		g.Phase = PhasePostRoll
		return result, fmt.Sprintf("%s (+$%d)", card.Text, total), true

	case ActionPayToPlayers:
		totalOwed := card.Value * (len(g.ActivePlayers()) - 1)
		if player.CanAfford(totalOwed) {
			player.RemoveMoney(totalOwed)
			for _, other := range g.ActivePlayers() {
				if other.ID != player.ID {
					other.AddMoney(card.Value)
				}
			}
			g.Phase = PhasePostRoll
		} else {
			g.Phase = PhasePayingRent
		}
		return result, fmt.Sprintf("%s (-$%d)", card.Text, totalOwed), true

	case ActionMoveTo:
		var newPos int
		switch card.Value {
		case MoveToNearestUtility:
			newPos = g.rules.NearestUtility(player.Position)
		case MoveToNearestRailroad:
			newPos = g.rules.NearestRailroad(player.Position)
		default:
			newPos = card.Value
		}
		player.MoveTo(newPos, true)
		return g.handleLanding(player, result)

	case ActionMoveBack:
		newPos := ((player.Position-card.Value)%BoardSize + BoardSize) % BoardSize
		player.MoveTo(newPos, false)
		return g.handleLanding(player, result)

	case ActionGoToJail:
		player.SendToJail()
		g.Phase = PhasePostRoll
		return result, card.Text, true

	case ActionGetOutOfJail:
		player.JailCards++
		g.Phase = PhasePostRoll
		return result, fmt.Sprintf("%s (Card kept)", card.Text), true

	case ActionRepairs:
		totalCost := 0
		for pos := range player.Properties {
			if prop := g.board.Property(pos); prop != nil {
				totalCost += prop.Houses * card.PerHouse
				if prop.HasHotel {
					totalCost += card.PerHotel
				}
			}
		}
		if player.CanAfford(totalCost) {
			player.RemoveMoney(totalCost)
			g.Phase = PhasePostRoll
		} else {
			g.Phase = PhasePayingRent
		}
		return result, fmt.Sprintf("%s (-$%d)", card.Text, totalCost), true
	}

	g.Phase = PhasePostRoll
	return result, card.Text, true
}

// BuyProperty buys the property the player is standing on.
func (g *Game) BuyProperty(playerID string) (string, bool) {
	player, ok := g.Players[playerID]
	if !ok {
		return "Player not found", false
	}

	if v := g.rules.ValidateBuyProperty(player, player.Position, g.currentPlayerID(), g.Phase); !v.Valid {
		return v.Message, false
	}

	prop := g.board.Property(player.Position)
	player.RemoveMoney(prop.Cost)
	prop.OwnerID = player.ID
	player.AddProperty(prop.Position)

	g.Phase = PhasePostRoll

	g.logEvent("property_bought", map[string]interface{}{
		"player_id": playerID,
		"property":  prop.Name,
		"position":  prop.Position,
		"price":     prop.Cost,
	})

	return fmt.Sprintf("Bought %s for $%d", prop.Name, prop.Cost), true
}

// DeclineProperty passes on an offered property. House rules: no
// auction, the property stays with the bank.
func (g *Game) DeclineProperty(playerID string) (string, bool) {
	player, ok := g.Players[playerID]
	if !ok {
		return "Player not found", false
	}
	if g.Phase != PhasePropertyDecision {
		return "Not in property decision phase", false
	}
	if player.ID != g.currentPlayerID() {
		return "Not your turn", false
	}

	prop := g.board.Property(player.Position)
	g.Phase = PhasePostRoll

	name := "property"
	if prop != nil {
		name = prop.Name
	}
	g.logEvent("property_declined", map[string]interface{}{
		"player_id": playerID,
		"property":  name,
		"position":  player.Position,
	})

	return fmt.Sprintf("Declined to buy %s", name), true
}

// BuildHouse builds one house on a property the player owns.
func (g *Game) BuildHouse(playerID string, position int) (string, bool) {
	player, ok := g.Players[playerID]
	if !ok {
		return "Player not found", false
	}

	if v := g.rules.ValidateBuildHouse(player, position, g.currentPlayerID()); !v.Valid {
		return v.Message, false
	}

	prop := g.board.Property(position)
	player.RemoveMoney(prop.HouseCost)
	prop.BuildHouse()
	g.rules.UseHouse()

	g.logEvent("house_built", map[string]interface{}{
		"player_id": playerID,
		"property":  prop.Name,
		"position":  position,
		"houses":    prop.Houses,
	})

	return fmt.Sprintf("Built house on %s (now %d houses)", prop.Name, prop.Houses), true
}

// BuildHotel upgrades four houses into a hotel.
func (g *Game) BuildHotel(playerID string, position int) (string, bool) {
	player, ok := g.Players[playerID]
	if !ok {
		return "Player not found", false
	}

	if v := g.rules.ValidateBuildHotel(player, position, g.currentPlayerID()); !v.Valid {
		return v.Message, false
	}

	prop := g.board.Property(position)
	player.RemoveMoney(prop.HouseCost)
	prop.BuildHotel()
	g.rules.UseHotel()

	g.logEvent("hotel_built", map[string]interface{}{
		"player_id": playerID,
		"property":  prop.Name,
		"position":  position,
	})

	return fmt.Sprintf("Built hotel on %s", prop.Name), true
}

// SellBuilding sells a hotel (back to four houses) or one house, and
// returns half the build cost. Reports the building type sold.
func (g *Game) SellBuilding(playerID string, position int) (string, string, bool) {
	player, ok := g.Players[playerID]
	if !ok {
		return "", "Player not found", false
	}

	if v := g.rules.ValidateSellBuilding(player, position); !v.Valid {
		return "", v.Message, false
	}

	prop := g.board.Property(position)
	var refund int
	var buildingType string
	if prop.HasHotel {
		refund = prop.SellHotel()
		g.rules.ReturnHotel()
		buildingType = "hotel"
	} else {
		refund = prop.SellHouse()
		g.rules.ReturnHouse()
		buildingType = "house"
	}
	player.AddMoney(refund)

	g.logEvent("building_sold", map[string]interface{}{
		"player_id":     playerID,
		"property":      prop.Name,
		"position":      position,
		"building_type": buildingType,
		"refund":        refund,
	})

	return buildingType, fmt.Sprintf("Sold %s on %s for $%d", buildingType, prop.Name, refund), true
}

// MortgageProperty mortgages a property for half its cost.
func (g *Game) MortgageProperty(playerID string, position int) (string, bool) {
	player, ok := g.Players[playerID]
	if !ok {
		return "Player not found", false
	}

	if v := g.rules.ValidateMortgage(player, position); !v.Valid {
		return v.Message, false
	}

	prop := g.board.Property(position)
	value := prop.Mortgage()
	player.AddMoney(value)

	g.logEvent("property_mortgaged", map[string]interface{}{
		"player_id": playerID,
		"property":  prop.Name,
		"position":  position,
		"value":     value,
	})

	return fmt.Sprintf("Mortgaged %s for $%d", prop.Name, value), true
}

// UnmortgageProperty lifts a mortgage at mortgage value plus 10%.
func (g *Game) UnmortgageProperty(playerID string, position int) (string, bool) {
	player, ok := g.Players[playerID]
	if !ok {
		return "Player not found", false
	}

	if v := g.rules.ValidateUnmortgage(player, position); !v.Valid {
		return v.Message, false
	}

	prop := g.board.Property(position)
	cost := prop.UnmortgageCost()
	player.RemoveMoney(cost)
	prop.Unmortgage()

	g.logEvent("property_unmortgaged", map[string]interface{}{
		"player_id": playerID,
		"property":  prop.Name,
		"position":  position,
		"cost":      cost,
	})

	return fmt.Sprintf("Unmortgaged %s for $%d", prop.Name, cost), true
}

// PayBail pays the fixed bail and releases the player from jail.
func (g *Game) PayBail(playerID string) (string, bool) {
	player, ok := g.Players[playerID]
	if !ok {
		return "Player not found", false
	}

	if v := g.rules.ValidatePayBail(player, g.currentPlayerID()); !v.Valid {
		return v.Message, false
	}

	player.RemoveMoney(JailBail)
	player.ReleaseFromJail()

	g.logEvent("bail_paid", map[string]interface{}{
		"player_id": playerID,
		"amount":    JailBail,
	})

	return fmt.Sprintf("Paid $%d bail", JailBail), true
}

// UseJailCard spends a Get Out of Jail Free card and returns it to
// circulation.
func (g *Game) UseJailCard(playerID string) (string, bool) {
	player, ok := g.Players[playerID]
	if !ok {
		return "Player not found", false
	}

	if v := g.rules.ValidateUseJailCard(player, g.currentPlayerID()); !v.Valid {
		return v.Message, false
	}

	player.JailCards--
	player.ReleaseFromJail()
	g.cards.ReturnJailCard()

	g.logEvent("jail_card_used", map[string]interface{}{
		"player_id": playerID,
	})

	return "Used Get Out of Jail Free card", true
}

// EndTurn finishes the current player's turn. Doubles grant another
// roll instead (unless the double sent them to jail); otherwise play
// advances, ending the game when one player remains.
func (g *Game) EndTurn(playerID string) (string, bool) {
	player, ok := g.Players[playerID]
	if !ok {
		return "Player not found", false
	}

	if v := g.rules.ValidateEndTurn(player, g.currentPlayerID(), g.Phase); !v.Valid {
		return v.Message, false
	}

	if g.LastDiceRoll != nil && g.LastDiceRoll.IsDouble() &&
		player.ConsecutiveDoubles < 3 && player.State != StateInJail {
		g.Phase = PhasePreRoll
		player.HasRolled = false
		g.logEvent("extra_turn", map[string]interface{}{
			"player_id": playerID,
			"reason":    "doubles",
		})
		return "Doubles! Roll again", true
	}

	if g.IsGameOver() {
		g.endGame()
		return g.gameOverMessage(), true
	}

	g.advanceTurn()

	if current := g.CurrentPlayer(); current != nil {
		return fmt.Sprintf("Turn ended. %s's turn", current.Name), true
	}
	return "Turn ended", true
}

func (g *Game) gameOverMessage() string {
	if active := g.ActivePlayers(); len(active) > 0 {
		return fmt.Sprintf("Game Over! %s wins!", active[0].Name)
	}
	return "Game Over! Nobody wins!"
}

func (g *Game) endGame() {
	g.Phase = PhaseGameOver

	if active := g.ActivePlayers(); len(active) > 0 {
		winner := active[0]
		g.WinnerID = winner.ID
		g.logEvent("game_over", map[string]interface{}{
			"winner_id":   winner.ID,
			"winner_name": winner.Name,
		})
	}
}

// DeclareBankruptcy removes a player from play. With a creditor the
// estate transfers wholesale; without one it liquidates to the bank.
func (g *Game) DeclareBankruptcy(playerID, creditorID string) (string, bool) {
	player, ok := g.Players[playerID]
	if !ok {
		return "Player not found", false
	}

	var creditor *Player
	if creditorID != "" {
		creditor = g.Players[creditorID]
	}
	g.handleBankruptcy(player, creditor)

	if g.IsGameOver() {
		g.endGame()
		return g.gameOverMessage(), true
	}

	if g.currentPlayerID() == playerID {
		g.advanceTurn()
	}

	return fmt.Sprintf("%s declared bankruptcy", player.Name), true
}

// handleBankruptcy settles the estate. Properties pass to the creditor
// as-is (mortgages and buildings included); with no creditor buildings
// liquidate back to the bank stock and the deeds return unmortgaged.
func (g *Game) handleBankruptcy(player *Player, creditor *Player) {
	if creditor != nil {
		creditor.AddMoney(player.Money)
		creditor.JailCards += player.JailCards

		for pos := range player.Properties {
			if prop := g.board.Property(pos); prop != nil {
				prop.OwnerID = creditor.ID
				creditor.AddProperty(pos)
			}
		}
	} else {
		for pos := range player.Properties {
			prop := g.board.Property(pos)
			if prop == nil {
				continue
			}
			for prop.HasHotel {
				prop.SellHotel()
				g.rules.ReturnHotel()
			}
			for prop.Houses > 0 {
				prop.SellHouse()
				g.rules.ReturnHouse()
			}
			prop.OwnerID = ""
			prop.IsMortgaged = false
		}
	}

	creditorID := ""
	if creditor != nil {
		creditorID = creditor.ID
	}

	player.DeclareBankruptcy()

	g.logEvent("bankruptcy", map[string]interface{}{
		"player_id":   player.ID,
		"player_name": player.Name,
		"creditor_id": creditorID,
	})
}
