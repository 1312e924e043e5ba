package game

import "math/rand"

// CardAction is the effect a Chance or Community Chest card triggers.
type CardAction string

const (
	ActionCollectMoney       CardAction = "COLLECT_MONEY"
	ActionPayMoney           CardAction = "PAY_MONEY"
	ActionCollectFromPlayers CardAction = "COLLECT_FROM_PLAYERS"
	ActionPayToPlayers       CardAction = "PAY_TO_PLAYERS"
	ActionMoveTo             CardAction = "MOVE_TO"
	ActionMoveBack           CardAction = "MOVE_BACK"
	ActionGoToJail           CardAction = "GO_TO_JAIL"
	ActionGetOutOfJail       CardAction = "GET_OUT_OF_JAIL"
	ActionRepairs            CardAction = "REPAIRS"
)

// MoveTo sentinel values for the "advance to nearest" cards.
const (
	MoveToNearestUtility  = -1
	MoveToNearestRailroad = -2
)

// Card is one Chance or Community Chest card. Value carries the money
// amount or target position depending on the action; PerHouse/PerHotel
// apply to repair assessments. Keep cards stay with the player.
type Card struct {
	Type     CardType   `json:"card_type"`
	Text     string     `json:"text"`
	Action   CardAction `json:"action"`
	Value    int        `json:"value"`
	PerHouse int        `json:"per_house"`
	PerHotel int        `json:"per_hotel"`
	Keep     bool       `json:"keep"`
}

var chanceCards = []Card{
	{Type: CardChance, Text: "Advance to Go (Collect $200)", Action: ActionMoveTo, Value: 0},
	{Type: CardChance, Text: "Advance to Illinois Avenue. If you pass Go, collect $200.", Action: ActionMoveTo, Value: 24},
	{Type: CardChance, Text: "Advance to St. Charles Place. If you pass Go, collect $200.", Action: ActionMoveTo, Value: 11},
	{Type: CardChance, Text: "Advance to nearest Utility. If unowned, you may buy it. If owned, throw dice and pay owner 10 times the amount thrown.", Action: ActionMoveTo, Value: MoveToNearestUtility},
	{Type: CardChance, Text: "Advance to nearest Railroad. If unowned, you may buy it. If owned, pay owner twice the rental.", Action: ActionMoveTo, Value: MoveToNearestRailroad},
	{Type: CardChance, Text: "Bank pays you dividend of $50.", Action: ActionCollectMoney, Value: 50},
	{Type: CardChance, Text: "Get Out of Jail Free.", Action: ActionGetOutOfJail, Keep: true},
	{Type: CardChance, Text: "Go Back 3 Spaces.", Action: ActionMoveBack, Value: 3},
	{Type: CardChance, Text: "Go to Jail. Go directly to Jail, do not pass Go, do not collect $200.", Action: ActionGoToJail},
	{Type: CardChance, Text: "Make general repairs on all your property. For each house pay $25. For each hotel pay $100.", Action: ActionRepairs, PerHouse: 25, PerHotel: 100},
	{Type: CardChance, Text: "Speeding fine $15.", Action: ActionPayMoney, Value: 15},
	{Type: CardChance, Text: "Take a trip to Reading Railroad. If you pass Go, collect $200.", Action: ActionMoveTo, Value: 5},
	{Type: CardChance, Text: "You have been elected Chairman of the Board. Pay each player $50.", Action: ActionPayToPlayers, Value: 50},
	{Type: CardChance, Text: "Your building loan matures. Collect $150.", Action: ActionCollectMoney, Value: 150},
	{Type: CardChance, Text: "Advance to Boardwalk.", Action: ActionMoveTo, Value: 39},
	{Type: CardChance, Text: "Advance to nearest Railroad. If unowned, you may buy it. If owned, pay owner twice the rental.", Action: ActionMoveTo, Value: MoveToNearestRailroad},
}

var communityChestCards = []Card{
	{Type: CardCommunityChest, Text: "Advance to Go (Collect $200).", Action: ActionMoveTo, Value: 0},
	{Type: CardCommunityChest, Text: "Bank error in your favor. Collect $200.", Action: ActionCollectMoney, Value: 200},
	{Type: CardCommunityChest, Text: "Doctor's fee. Pay $50.", Action: ActionPayMoney, Value: 50},
	{Type: CardCommunityChest, Text: "From sale of stock you get $50.", Action: ActionCollectMoney, Value: 50},
	{Type: CardCommunityChest, Text: "Get Out of Jail Free.", Action: ActionGetOutOfJail, Keep: true},
	{Type: CardCommunityChest, Text: "Go to Jail. Go directly to jail, do not pass Go, do not collect $200.", Action: ActionGoToJail},
	{Type: CardCommunityChest, Text: "Holiday fund matures. Receive $100.", Action: ActionCollectMoney, Value: 100},
	{Type: CardCommunityChest, Text: "Income tax refund. Collect $20.", Action: ActionCollectMoney, Value: 20},
	{Type: CardCommunityChest, Text: "It is your birthday. Collect $10 from every player.", Action: ActionCollectFromPlayers, Value: 10},
	{Type: CardCommunityChest, Text: "Life insurance matures. Collect $100.", Action: ActionCollectMoney, Value: 100},
	{Type: CardCommunityChest, Text: "Pay hospital fees of $100.", Action: ActionPayMoney, Value: 100},
	{Type: CardCommunityChest, Text: "Pay school fees of $50.", Action: ActionPayMoney, Value: 50},
	{Type: CardCommunityChest, Text: "Receive $25 consultancy fee.", Action: ActionCollectMoney, Value: 25},
	{Type: CardCommunityChest, Text: "You are assessed for street repair. $40 per house. $115 per hotel.", Action: ActionRepairs, PerHouse: 40, PerHotel: 115},
	{Type: CardCommunityChest, Text: "You have won second prize in a beauty contest. Collect $10.", Action: ActionCollectMoney, Value: 10},
	{Type: CardCommunityChest, Text: "You inherit $100.", Action: ActionCollectMoney, Value: 100},
}

// CardDeck holds the draw and discard piles for one card type.
type CardDeck struct {
	Type    CardType
	cards   []Card
	discard []Card
	rng     *rand.Rand
}

// NewCardDeck creates a shuffled deck of the given type.
func NewCardDeck(cardType CardType, rng *rand.Rand) *CardDeck {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	d := &CardDeck{Type: cardType, rng: rng}
	d.Reset()
	return d
}

// Reset rebuilds the deck from the full card set and shuffles it.
func (d *CardDeck) Reset() {
	var source []Card
	if d.Type == CardChance {
		source = chanceCards
	} else {
		source = communityChestCards
	}
	d.cards = make([]Card, len(source))
	copy(d.cards, source)
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	d.discard = nil
}

// Draw takes the top card. When the draw pile runs out the discard pile
// is reshuffled. Keep cards leave the deck until returned by the player.
func (d *CardDeck) Draw() Card {
	if len(d.cards) == 0 {
		d.cards = d.discard
		d.discard = nil
		d.rng.Shuffle(len(d.cards), func(i, j int) {
			d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
		})
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	if !card.Keep {
		d.discard = append(d.discard, card)
	}
	return card
}

// ReturnCard places a kept card onto the discard pile.
func (d *CardDeck) ReturnCard(card Card) {
	d.discard = append(d.discard, card)
}

// Remaining is the size of the draw pile.
func (d *CardDeck) Remaining() int {
	return len(d.cards)
}

// DiscardCount is the size of the discard pile.
func (d *CardDeck) DiscardCount() int {
	return len(d.discard)
}

// CardManager owns both decks of a game.
type CardManager struct {
	Chance         *CardDeck
	CommunityChest *CardDeck
}

// NewCardManager creates shuffled Chance and Community Chest decks.
func NewCardManager() *CardManager {
	return &CardManager{
		Chance:         NewCardDeck(CardChance, nil),
		CommunityChest: NewCardDeck(CardCommunityChest, nil),
	}
}

// NewCardManagerWithSeed creates decks shuffled from a fixed seed, for tests.
func NewCardManagerWithSeed(seed int64) *CardManager {
	return &CardManager{
		Chance:         NewCardDeck(CardChance, rand.New(rand.NewSource(seed))),
		CommunityChest: NewCardDeck(CardCommunityChest, rand.New(rand.NewSource(seed+1))),
	}
}

// DrawChance draws from the Chance deck.
func (m *CardManager) DrawChance() Card {
	return m.Chance.Draw()
}

// DrawCommunityChest draws from the Community Chest deck.
func (m *CardManager) DrawCommunityChest() Card {
	return m.CommunityChest.Draw()
}

// ReturnJailCard puts a used Get Out of Jail Free card back into
// circulation. Used cards always return to the Chance deck; the two
// jail cards are interchangeable in play.
func (m *CardManager) ReturnJailCard() {
	m.Chance.ReturnCard(Card{
		Type:   CardChance,
		Text:   "Get Out of Jail Free.",
		Action: ActionGetOutOfJail,
		Keep:   true,
	})
}

// Reset reshuffles both decks back to full.
func (m *CardManager) Reset() {
	m.Chance.Reset()
	m.CommunityChest.Reset()
}
