package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedRoller returns a fixed sequence of rolls, cycling when exhausted.
type scriptedRoller struct {
	rolls []DiceResult
	next  int
}

func (r *scriptedRoller) Roll() DiceResult {
	roll := r.rolls[r.next%len(r.rolls)]
	r.next++
	return roll
}

func rollsOf(pairs ...[2]int) *scriptedRoller {
	rolls := make([]DiceResult, len(pairs))
	for i, p := range pairs {
		rolls[i] = DiceResult{Die1: p[0], Die2: p[1]}
	}
	return &scriptedRoller{rolls: rolls}
}

// newStartedGame creates a started game with the given player names.
// The returned players are in turn order, the first one to act.
func newStartedGame(t *testing.T, names ...string) (*Game, []*Player) {
	t.Helper()

	g := NewGame("test game")
	for _, name := range names {
		_, msg, ok := g.AddPlayer(name, "")
		require.True(t, ok, msg)
	}

	msg, ok := g.Start()
	require.True(t, ok, msg)

	players := make([]*Player, 0, len(g.PlayerOrder))
	for _, id := range g.PlayerOrder {
		players = append(players, g.Players[id])
	}
	return g, players
}
