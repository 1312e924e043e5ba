package game

import "github.com/google/uuid"

// Player holds one player's money, position and turn state.
// Properties tracks owned board positions alongside Board ownership so
// repair cards and bankruptcy can walk a player's holdings directly.
type Player struct {
	ID       string
	Name     string
	Money    int
	Position int
	State    PlayerState

	JailTurns int
	JailCards int

	Properties map[int]bool

	ConsecutiveDoubles int
	HasRolled          bool
}

// NewPlayer creates an active player at GO with the starting bankroll.
func NewPlayer(name string) *Player {
	return &Player{
		ID:         uuid.NewString(),
		Name:       name,
		Money:      StartingMoney,
		State:      StateActive,
		Properties: make(map[int]bool),
	}
}

// AddMoney credits the player and returns the new balance.
// A negative amount debits without an affordability check.
func (p *Player) AddMoney(amount int) int {
	p.Money += amount
	return p.Money
}

// RemoveMoney debits the player, failing if funds are insufficient.
func (p *Player) RemoveMoney(amount int) bool {
	if p.Money < amount {
		return false
	}
	p.Money -= amount
	return true
}

// CanAfford reports whether the player holds at least amount in cash.
func (p *Player) CanAfford(amount int) bool {
	return p.Money >= amount
}

// MoveTo places the player on a position and reports whether GO salary
// was collected. Moving to a lower position counts as passing GO unless
// collectGo is false or the player sits in jail.
func (p *Player) MoveTo(position int, collectGo bool) bool {
	passedGo := false
	if collectGo && position < p.Position && p.State != StateInJail {
		p.AddMoney(SalaryAmount)
		passedGo = true
	}
	p.Position = ((position % BoardSize) + BoardSize) % BoardSize
	return passedGo
}

// MoveForward advances the player and reports whether GO was passed.
func (p *Player) MoveForward(spaces int) bool {
	return p.MoveTo((p.Position+spaces)%BoardSize, true)
}

// SendToJail moves the player to jail and resets the doubles streak.
func (p *Player) SendToJail() {
	p.Position = JailPosition
	p.State = StateInJail
	p.JailTurns = 0
	p.ConsecutiveDoubles = 0
}

// ReleaseFromJail returns the player to active play.
func (p *Player) ReleaseFromJail() {
	p.State = StateActive
	p.JailTurns = 0
}

// AddProperty records ownership of a board position.
func (p *Player) AddProperty(position int) {
	p.Properties[position] = true
}

// RemoveProperty drops ownership of a board position.
func (p *Player) RemoveProperty(position int) {
	delete(p.Properties, position)
}

// DeclareBankruptcy marks the player bankrupt and clears their holdings.
func (p *Player) DeclareBankruptcy() {
	p.State = StateBankrupt
	p.Properties = make(map[int]bool)
}

// ResetTurn clears per-turn flags at the start of the player's turn.
func (p *Player) ResetTurn() {
	p.HasRolled = false
}
