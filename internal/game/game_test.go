package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartGameValidation(t *testing.T) {
	g := NewGame("solo")
	_, _, ok := g.AddPlayer("alice", "")
	require.True(t, ok)

	_, ok = g.Start()
	assert.False(t, ok, "one player cannot start")

	_, _, ok = g.AddPlayer("bob", "")
	require.True(t, ok)

	msg, ok := g.Start()
	require.True(t, ok, msg)
	assert.Equal(t, PhasePreRoll, g.Phase)
	assert.Equal(t, 1, g.TurnNumber)

	_, ok = g.Start()
	assert.False(t, ok, "cannot start twice")

	_, _, ok = g.AddPlayer("carol", "")
	assert.False(t, ok, "cannot join a started game")
}

func TestGameFull(t *testing.T) {
	g := NewGame("full house")
	for _, name := range []string{"a", "b", "c", "d"} {
		_, msg, ok := g.AddPlayer(name, "")
		require.True(t, ok, msg)
	}
	_, msg, ok := g.AddPlayer("e", "")
	assert.False(t, ok)
	assert.Contains(t, msg, "full")
}

func TestRemovePlayerBeforeStart(t *testing.T) {
	g := NewGame("lobby churn")
	alice, _, _ := g.AddPlayer("alice", "")
	g.AddPlayer("bob", "")

	_, ok := g.RemovePlayer(alice.ID)
	require.True(t, ok)
	assert.Len(t, g.Players, 1)
	assert.Len(t, g.PlayerOrder, 1)
}

func TestRollMoveAndBuy(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]
	g.SetDice(rollsOf([2]int{1, 2}))

	result, msg, ok := g.RollDice(current.ID)
	require.True(t, ok, msg)
	assert.Equal(t, 3, result.Total())
	assert.Equal(t, 3, current.Position)
	assert.Equal(t, PhasePropertyDecision, g.Phase)

	msg, ok = g.BuyProperty(current.ID)
	require.True(t, ok, msg)
	assert.Equal(t, StartingMoney-60, current.Money)
	assert.Equal(t, current.ID, g.Board().Property(3).OwnerID)
	assert.True(t, current.Properties[3])
	assert.Equal(t, PhasePostRoll, g.Phase)
}

func TestDeclineProperty(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]
	g.SetDice(rollsOf([2]int{1, 2}))

	_, _, ok := g.RollDice(current.ID)
	require.True(t, ok)

	msg, ok := g.DeclineProperty(current.ID)
	require.True(t, ok, msg)
	assert.Equal(t, PhasePostRoll, g.Phase)
	assert.Empty(t, g.Board().Property(3).OwnerID, "no auction, property stays with the bank")
	assert.Equal(t, StartingMoney, current.Money)
}

func TestRollOutOfTurnRejected(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	other := players[1]

	_, msg, ok := g.RollDice(other.ID)
	assert.False(t, ok)
	assert.Contains(t, msg, "not your turn")
}

func TestRentPaidOnLanding(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current, owner := players[0], players[1]

	g.Board().Property(3).OwnerID = owner.ID
	owner.AddProperty(3)

	g.SetDice(rollsOf([2]int{1, 2}))
	_, msg, ok := g.RollDice(current.ID)
	require.True(t, ok, msg)

	assert.Equal(t, StartingMoney-4, current.Money)
	assert.Equal(t, StartingMoney+4, owner.Money)
	assert.Equal(t, PhasePostRoll, g.Phase)
}

func TestUnpayableRentBlocksTurn(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current, owner := players[0], players[1]

	boardwalk := g.Board().Property(39)
	boardwalk.OwnerID = owner.ID
	boardwalk.HasHotel = true
	owner.AddProperty(39)

	current.Position = 35
	g.SetDice(rollsOf([2]int{1, 3}))
	_, msg, ok := g.RollDice(current.ID)
	require.True(t, ok, msg)

	assert.Equal(t, PhasePayingRent, g.Phase)
	assert.Equal(t, StartingMoney, current.Money, "debt is not collected until settled")

	_, ok = g.EndTurn(current.ID)
	assert.False(t, ok, "cannot end the turn with rent outstanding")
}

func TestPassGoCollectsSalary(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]
	current.Position = 37

	g.SetDice(rollsOf([2]int{1, 3}))
	_, msg, ok := g.RollDice(current.ID)
	require.True(t, ok, msg)

	assert.Equal(t, 1, current.Position)
	assert.Equal(t, StartingMoney+SalaryAmount, current.Money)
}

func TestThreeDoublesGoToJail(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]
	g.SetDice(rollsOf([2]int{2, 2}))

	// First double: lands on Income Tax and pays.
	_, msg, ok := g.RollDice(current.ID)
	require.True(t, ok, msg)
	assert.Equal(t, 1, current.ConsecutiveDoubles)
	assert.Equal(t, StartingMoney-200, current.Money)

	msg, ok = g.EndTurn(current.ID)
	require.True(t, ok, msg)
	assert.Contains(t, msg, "Roll again")
	assert.Equal(t, PhasePreRoll, g.Phase)

	// Second double: lands on Vermont Avenue, declines.
	_, _, ok = g.RollDice(current.ID)
	require.True(t, ok)
	assert.Equal(t, 2, current.ConsecutiveDoubles)
	_, ok = g.DeclineProperty(current.ID)
	require.True(t, ok)
	_, ok = g.EndTurn(current.ID)
	require.True(t, ok)

	// Third double: straight to jail, no movement.
	_, msg, ok = g.RollDice(current.ID)
	require.True(t, ok)
	assert.Contains(t, msg, "jail")
	assert.Equal(t, JailPosition, current.Position)
	assert.Equal(t, StateInJail, current.State)
	assert.Zero(t, current.ConsecutiveDoubles, "jail resets the streak")

	// The double that jailed them does not grant another roll.
	_, ok = g.EndTurn(current.ID)
	require.True(t, ok)
	assert.Equal(t, players[1].ID, g.CurrentPlayer().ID)
}

func TestJailEscapeByDoubles(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]
	current.SendToJail()
	current.JailTurns = 1

	g.SetDice(rollsOf([2]int{3, 3}))
	_, msg, ok := g.RollDice(current.ID)
	require.True(t, ok, msg)

	assert.Equal(t, StateActive, current.State)
	assert.Equal(t, 16, current.Position, "moves by the escaping roll")
	assert.Equal(t, PhasePropertyDecision, g.Phase)
}

func TestJailStayWithoutDoubles(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]
	current.SendToJail()
	current.JailTurns = 1

	g.SetDice(rollsOf([2]int{1, 2}))
	_, msg, ok := g.RollDice(current.ID)
	require.True(t, ok)

	assert.Equal(t, StateInJail, current.State)
	assert.Equal(t, JailPosition, current.Position)
	assert.Equal(t, PhasePostRoll, g.Phase)
	assert.Contains(t, msg, "2 attempts remaining")
}

func TestJailForcedBail(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]
	current.SendToJail()
	current.JailTurns = MaxJailTurns

	g.SetDice(rollsOf([2]int{1, 2}))
	_, msg, ok := g.RollDice(current.ID)
	require.True(t, ok, msg)

	assert.Equal(t, StateActive, current.State)
	assert.Equal(t, StartingMoney-JailBail, current.Money)
	assert.Equal(t, 13, current.Position, "moves after the forced bail")
}

func TestJailForcedBailUnaffordable(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]
	current.SendToJail()
	current.JailTurns = MaxJailTurns
	current.Money = 10

	g.SetDice(rollsOf([2]int{1, 2}))
	_, msg, ok := g.RollDice(current.ID)
	require.True(t, ok)

	assert.Equal(t, StateInJail, current.State)
	assert.Equal(t, PhasePayingRent, g.Phase)
	assert.Contains(t, msg, "bail")
	assert.Equal(t, 10, current.Money)
}

func TestPayBail(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]
	current.SendToJail()

	msg, ok := g.PayBail(current.ID)
	require.True(t, ok, msg)
	assert.Equal(t, StateActive, current.State)
	assert.Equal(t, StartingMoney-JailBail, current.Money)

	_, ok = g.PayBail(current.ID)
	assert.False(t, ok, "not in jail anymore")
}

func TestUseJailCard(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]
	current.SendToJail()

	_, ok := g.UseJailCard(current.ID)
	assert.False(t, ok, "no card held")

	current.JailCards = 1
	discardBefore := g.Cards().Chance.DiscardCount()

	msg, ok := g.UseJailCard(current.ID)
	require.True(t, ok, msg)
	assert.Equal(t, StateActive, current.State)
	assert.Zero(t, current.JailCards)
	assert.Equal(t, discardBefore+1, g.Cards().Chance.DiscardCount(),
		"used card returns to circulation")
}

func TestEndTurnAdvances(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	current := players[0]
	g.SetDice(rollsOf([2]int{1, 2}))

	_, _, ok := g.RollDice(current.ID)
	require.True(t, ok)
	_, ok = g.DeclineProperty(current.ID)
	require.True(t, ok)

	msg, ok := g.EndTurn(current.ID)
	require.True(t, ok, msg)
	assert.Equal(t, players[1].ID, g.CurrentPlayer().ID)
	assert.Equal(t, 2, g.TurnNumber)
	assert.Equal(t, PhasePreRoll, g.Phase)
}

func TestAdvanceTurnSkipsBankrupt(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob", "carol")
	current := players[0]

	_, ok := g.DeclareBankruptcy(players[1].ID, "")
	require.True(t, ok)

	g.SetDice(rollsOf([2]int{1, 2}))
	_, _, ok = g.RollDice(current.ID)
	require.True(t, ok)
	_, ok = g.DeclineProperty(current.ID)
	require.True(t, ok)
	_, ok = g.EndTurn(current.ID)
	require.True(t, ok)

	assert.Equal(t, players[2].ID, g.CurrentPlayer().ID, "bankrupt player is skipped")
}

func TestBankruptcyToCreditor(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob", "carol")
	debtor, creditor := players[0], players[1]

	med := g.Board().Property(1)
	med.OwnerID = debtor.ID
	med.IsMortgaged = true
	debtor.AddProperty(1)
	debtor.Money = 75
	debtor.JailCards = 1

	_, ok := g.DeclareBankruptcy(debtor.ID, creditor.ID)
	require.True(t, ok)

	assert.Equal(t, StateBankrupt, debtor.State)
	assert.Empty(t, debtor.Properties)
	assert.Equal(t, StartingMoney+75, creditor.Money)
	assert.Equal(t, 1, creditor.JailCards)
	assert.Equal(t, creditor.ID, med.OwnerID)
	assert.True(t, med.IsMortgaged, "mortgage carries over to the creditor")
	assert.True(t, creditor.Properties[1])
}

func TestBankruptcyToBank(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob", "carol")
	debtor := players[0]

	med := g.Board().Property(1)
	baltic := g.Board().Property(3)
	med.OwnerID = debtor.ID
	baltic.OwnerID = debtor.ID
	debtor.AddProperty(1)
	debtor.AddProperty(3)
	med.Houses = 1
	baltic.Houses = 1
	g.Rules().UseHouse()
	g.Rules().UseHouse()
	baltic.IsMortgaged = false

	_, ok := g.DeclareBankruptcy(debtor.ID, "")
	require.True(t, ok)

	assert.Equal(t, StateBankrupt, debtor.State)
	assert.Empty(t, med.OwnerID)
	assert.Empty(t, baltic.OwnerID)
	assert.Zero(t, med.Houses)
	assert.False(t, med.IsMortgaged)
	assert.Equal(t, TotalHouses, g.Rules().HousesAvailable, "buildings return to the bank")
}

func TestLastPlayerStandingWins(t *testing.T) {
	g, players := newStartedGame(t, "alice", "bob")
	loser, winner := players[0], players[1]

	msg, ok := g.DeclareBankruptcy(loser.ID, winner.ID)
	require.True(t, ok)

	assert.Equal(t, PhaseGameOver, g.Phase)
	assert.Equal(t, winner.ID, g.WinnerID)
	assert.Contains(t, msg, winner.Name)
	assert.Contains(t, msg, "wins")
}
