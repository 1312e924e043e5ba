package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stackChance forces the next chance draws to come in the given order.
func stackChance(g *Game, cards ...Card) {
	g.Cards().Chance.cards = cards
	g.Cards().Chance.discard = nil
}

func stackCommunityChest(g *Game, cards ...Card) {
	g.Cards().CommunityChest.cards = cards
	g.Cards().CommunityChest.discard = nil
}

func TestChanceAdvanceToGo(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]

	stackChance(g, Card{Type: CardChance, Text: "Advance to Go (Collect $200)", Action: ActionMoveTo, Value: 0})

	// 3+4 lands on the first Chance space.
	g.SetDice(rollsOf([2]int{3, 4}))
	_, msg, ok := g.RollDice(current.ID)
	require.True(t, ok, msg)

	assert.Equal(t, 0, current.Position)
	assert.Equal(t, StartingMoney+SalaryAmount, current.Money, "moving to GO collects salary")
	assert.Equal(t, PhasePostRoll, g.Phase)
}

func TestChanceGoToJail(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]

	stackChance(g, Card{Type: CardChance, Text: "Go to Jail. Go directly to Jail, do not pass Go, do not collect $200.", Action: ActionGoToJail})

	g.SetDice(rollsOf([2]int{3, 4}))
	_, _, ok := g.RollDice(current.ID)
	require.True(t, ok)

	assert.Equal(t, JailPosition, current.Position)
	assert.Equal(t, StateInJail, current.State)
	assert.Equal(t, StartingMoney, current.Money, "no salary on the way to jail")
}

func TestChanceMoveBackLandsAndResolves(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]

	stackChance(g, Card{Type: CardChance, Text: "Go Back 3 Spaces.", Action: ActionMoveBack, Value: 3})

	// Chance at 7, back 3 is Income Tax at 4.
	g.SetDice(rollsOf([2]int{3, 4}))
	_, _, ok := g.RollDice(current.ID)
	require.True(t, ok)

	assert.Equal(t, 4, current.Position)
	assert.Equal(t, StartingMoney-200, current.Money, "card movement resolves the landing")
	assert.Equal(t, PhasePostRoll, g.Phase)
}

func TestChanceNearestRailroadPaysRent(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current, owner := players[0], players[1]

	g.Board().Property(15).OwnerID = owner.ID
	owner.AddProperty(15)

	stackChance(g, Card{Type: CardChance, Text: "Advance to nearest Railroad. If unowned, you may buy it. If owned, pay owner twice the rental.", Action: ActionMoveTo, Value: MoveToNearestRailroad})

	g.SetDice(rollsOf([2]int{3, 4}))
	_, _, ok := g.RollDice(current.ID)
	require.True(t, ok)

	assert.Equal(t, 15, current.Position)
	assert.Equal(t, StartingMoney-25, current.Money)
	assert.Equal(t, StartingMoney+25, owner.Money)
}

func TestChanceJailCardKept(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]

	stackChance(g, Card{Type: CardChance, Text: "Get Out of Jail Free.", Action: ActionGetOutOfJail, Keep: true})

	g.SetDice(rollsOf([2]int{3, 4}))
	_, msg, ok := g.RollDice(current.ID)
	require.True(t, ok)

	assert.Equal(t, 1, current.JailCards)
	assert.Contains(t, msg, "Card kept")
	assert.Zero(t, g.Cards().Chance.DiscardCount(), "kept card stays out of the discard pile")
}

func TestCommunityChestCollect(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]

	stackCommunityChest(g, Card{Type: CardCommunityChest, Text: "Bank error in your favor. Collect $200.", Action: ActionCollectMoney, Value: 200})

	// 1+1 lands on the first Community Chest space.
	g.SetDice(rollsOf([2]int{1, 1}))
	_, _, ok := g.RollDice(current.ID)
	require.True(t, ok)

	assert.Equal(t, 2, current.Position)
	assert.Equal(t, StartingMoney+200, current.Money)
}

func TestBirthdayCollectsFromEveryPlayer(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob", "carol")
	current := players[0]

	stackCommunityChest(g, Card{Type: CardCommunityChest, Text: "It is your birthday. Collect $10 from every player.", Action: ActionCollectFromPlayers, Value: 10})

	g.SetDice(rollsOf([2]int{1, 1}))
	_, _, ok := g.RollDice(current.ID)
	require.True(t, ok)

	assert.Equal(t, StartingMoney+20, current.Money)
	assert.Equal(t, StartingMoney-10, players[1].Money)
	assert.Equal(t, StartingMoney-10, players[2].Money)
}

func TestChairmanPaysEveryPlayer(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob", "carol")
	current := players[0]

	stackChance(g, Card{Type: CardChance, Text: "You have been elected Chairman of the Board. Pay each player $50.", Action: ActionPayToPlayers, Value: 50})

	g.SetDice(rollsOf([2]int{3, 4}))
	_, _, ok := g.RollDice(current.ID)
	require.True(t, ok)

	assert.Equal(t, StartingMoney-100, current.Money)
	assert.Equal(t, StartingMoney+50, players[1].Money)
	assert.Equal(t, StartingMoney+50, players[2].Money)
}

func TestRepairsCharged(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]

	med := g.Board().Property(1)
	baltic := g.Board().Property(3)
	med.OwnerID = current.ID
	baltic.OwnerID = current.ID
	current.AddProperty(1)
	current.AddProperty(3)
	med.Houses = 2
	baltic.HasHotel = true

	stackChance(g, Card{Type: CardChance, Text: "Make general repairs on all your property. For each house pay $25. For each hotel pay $100.", Action: ActionRepairs, PerHouse: 25, PerHotel: 100})

	g.SetDice(rollsOf([2]int{3, 4}))
	_, msg, ok := g.RollDice(current.ID)
	require.True(t, ok)

	assert.Equal(t, StartingMoney-150, current.Money)
	assert.Contains(t, msg, "-$150")
}

func TestUnaffordableCardDebtBlocks(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]
	current.Money = 40

	stackCommunityChest(g, Card{Type: CardCommunityChest, Text: "Pay hospital fees of $100.", Action: ActionPayMoney, Value: 100})

	g.SetDice(rollsOf([2]int{1, 1}))
	_, _, ok := g.RollDice(current.ID)
	require.True(t, ok)

	assert.Equal(t, PhasePayingRent, g.Phase)
	assert.Equal(t, 40, current.Money, "debt waits for liquidation")
}
