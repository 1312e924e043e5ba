package game

import "math/rand"

// DiceResult holds the outcome of rolling two six-sided dice.
type DiceResult struct {
	Die1 int `json:"die1"`
	Die2 int `json:"die2"`
}

// Total is the sum of both dice.
func (d DiceResult) Total() int {
	return d.Die1 + d.Die2
}

// IsDouble reports whether both dice show the same value.
func (d DiceResult) IsDouble() bool {
	return d.Die1 == d.Die2
}

// Roller produces dice rolls. Games take the dependency as an
// interface so tests can script exact sequences.
type Roller interface {
	Roll() DiceResult
}

// Dice rolls two six-sided dice from a private random source, so that
// concurrent games never share a stream and tests can seed them.
type Dice struct {
	rng *rand.Rand
}

// NewDice returns a dice roller with a randomly seeded source.
func NewDice() *Dice {
	return &Dice{rng: rand.New(rand.NewSource(rand.Int63()))}
}

// NewDiceWithSeed returns a dice roller with a fixed seed for reproducible rolls.
func NewDiceWithSeed(seed int64) *Dice {
	return &Dice{rng: rand.New(rand.NewSource(seed))}
}

// Roll rolls both dice.
func (d *Dice) Roll() DiceResult {
	return DiceResult{
		Die1: d.rng.Intn(6) + 1,
		Die2: d.rng.Intn(6) + 1,
	}
}
