package game

import "fmt"

// ActionResult categorizes why a validation failed.
type ActionResult string

const (
	ResultSuccess              ActionResult = "SUCCESS"
	ResultInsufficientFunds    ActionResult = "INSUFFICIENT_FUNDS"
	ResultNotYourTurn          ActionResult = "NOT_YOUR_TURN"
	ResultInvalidProperty      ActionResult = "INVALID_PROPERTY"
	ResultPropertyOwned        ActionResult = "PROPERTY_OWNED"
	ResultNotOwner             ActionResult = "NOT_OWNER"
	ResultNoMonopoly           ActionResult = "NO_MONOPOLY"
	ResultUnevenBuilding       ActionResult = "UNEVEN_BUILDING"
	ResultMaxDevelopment       ActionResult = "MAX_DEVELOPMENT"
	ResultPropertyMortgaged    ActionResult = "PROPERTY_MORTGAGED"
	ResultHasBuildings         ActionResult = "HAS_BUILDINGS"
	ResultNotInJail            ActionResult = "NOT_IN_JAIL"
	ResultAlreadyRolled        ActionResult = "ALREADY_ROLLED"
	ResultMustRoll             ActionResult = "MUST_ROLL"
	ResultInvalidTrade         ActionResult = "INVALID_TRADE"
	ResultGameNotStarted       ActionResult = "GAME_NOT_STARTED"
	ResultNoBuildingsAvailable ActionResult = "NO_BUILDINGS_AVAILABLE"
)

// ValidationResult is the outcome of checking a rule. Rule violations are
// values, not errors; Message is safe to send to the acting player.
type ValidationResult struct {
	Valid   bool
	Result  ActionResult
	Message string
}

func valid() ValidationResult {
	return ValidationResult{Valid: true, Result: ResultSuccess}
}

func invalid(result ActionResult, message string) ValidationResult {
	return ValidationResult{Valid: false, Result: result, Message: message}
}

// RuleEngine validates player actions against the board state and tracks
// the bank's building stock.
type RuleEngine struct {
	board *Board

	HousesAvailable int
	HotelsAvailable int
}

// NewRuleEngine creates a rule engine with the full building stock.
func NewRuleEngine(board *Board) *RuleEngine {
	return &RuleEngine{
		board:           board,
		HousesAvailable: TotalHouses,
		HotelsAvailable: TotalHotels,
	}
}

// ValidateRollDice checks turn order, phase and that the player has not
// already rolled. Jailed players may always attempt their escape roll.
func (r *RuleEngine) ValidateRollDice(player *Player, currentPlayerID string, phase GamePhase) ValidationResult {
	if player.ID != currentPlayerID {
		return invalid(ResultNotYourTurn, "It's not your turn")
	}
	if phase != PhasePreRoll && phase != PhasePostRoll {
		return invalid(ResultGameNotStarted, "Game is not in a rollable phase")
	}
	if player.HasRolled && player.State != StateInJail {
		return invalid(ResultAlreadyRolled, "You have already rolled this turn")
	}
	return valid()
}

// ValidateBuyProperty checks that the player stands on an unowned
// purchasable property during the decision phase and can pay for it.
func (r *RuleEngine) ValidateBuyProperty(player *Player, position int, currentPlayerID string, phase GamePhase) ValidationResult {
	if player.ID != currentPlayerID {
		return invalid(ResultNotYourTurn, "It's not your turn")
	}
	if phase != PhasePropertyDecision {
		return invalid(ResultInvalidProperty, "Not in property decision phase")
	}
	if player.Position != position {
		return invalid(ResultInvalidProperty, "You are not on this property")
	}
	prop := r.board.Property(position)
	if prop == nil {
		return invalid(ResultInvalidProperty, "This space is not a purchasable property")
	}
	if prop.IsOwned() {
		return invalid(ResultPropertyOwned, fmt.Sprintf("%s is already owned", prop.Name))
	}
	if !player.CanAfford(prop.Cost) {
		return invalid(ResultInsufficientFunds, fmt.Sprintf("You need $%d to buy %s", prop.Cost, prop.Name))
	}
	return valid()
}

// ValidateBuildHouse checks ownership, monopoly, mortgage state across
// the group, the even-building rule, bank stock and funds.
func (r *RuleEngine) ValidateBuildHouse(player *Player, position int, currentPlayerID string) ValidationResult {
	if player.ID != currentPlayerID {
		return invalid(ResultNotYourTurn, "It's not your turn")
	}
	prop := r.board.Property(position)
	if prop == nil {
		return invalid(ResultInvalidProperty, "This is not a property")
	}
	if prop.OwnerID != player.ID {
		return invalid(ResultNotOwner, "You don't own this property")
	}
	if prop.Type != SpaceProperty {
		return invalid(ResultInvalidProperty, "Can only build on color properties")
	}
	if prop.IsMortgaged {
		return invalid(ResultPropertyMortgaged, "Cannot build on mortgaged property")
	}
	if !r.board.HasMonopoly(player.ID, prop.Group) {
		return invalid(ResultNoMonopoly, "You need a monopoly to build")
	}
	for _, p := range r.board.GroupProperties(prop.Group) {
		if p.IsMortgaged {
			return invalid(ResultPropertyMortgaged, "Cannot build while any property in group is mortgaged")
		}
	}
	if prop.HasHotel {
		return invalid(ResultMaxDevelopment, "Property already has a hotel")
	}
	if prop.Houses >= MaxHousesPerProperty {
		return invalid(ResultMaxDevelopment, "Property has maximum houses, build a hotel instead")
	}
	if !r.board.CanBuildHouse(position, player.ID) {
		return invalid(ResultUnevenBuilding, "Must build evenly across all properties in group")
	}
	if r.HousesAvailable <= 0 {
		return invalid(ResultNoBuildingsAvailable, "No houses available in the bank")
	}
	if !player.CanAfford(prop.HouseCost) {
		return invalid(ResultInsufficientFunds, fmt.Sprintf("You need $%d to build a house", prop.HouseCost))
	}
	return valid()
}

// ValidateBuildHotel checks that the property carries four houses, the
// group is fully developed, and a hotel is in stock.
func (r *RuleEngine) ValidateBuildHotel(player *Player, position int, currentPlayerID string) ValidationResult {
	if player.ID != currentPlayerID {
		return invalid(ResultNotYourTurn, "It's not your turn")
	}
	prop := r.board.Property(position)
	if prop == nil {
		return invalid(ResultInvalidProperty, "This is not a property")
	}
	if prop.OwnerID != player.ID {
		return invalid(ResultNotOwner, "You don't own this property")
	}
	if prop.Type != SpaceProperty {
		return invalid(ResultInvalidProperty, "Can only build on color properties")
	}
	if prop.IsMortgaged {
		return invalid(ResultPropertyMortgaged, "Cannot build on mortgaged property")
	}
	if prop.HasHotel {
		return invalid(ResultMaxDevelopment, "Property already has a hotel")
	}
	if prop.Houses != MaxHousesPerProperty {
		return invalid(ResultUnevenBuilding, "Need 4 houses before building a hotel")
	}
	if !r.board.CanBuildHotel(position, player.ID) {
		return invalid(ResultUnevenBuilding, "Must build evenly across all properties in group")
	}
	if r.HotelsAvailable <= 0 {
		return invalid(ResultNoBuildingsAvailable, "No hotels available in the bank")
	}
	if !player.CanAfford(prop.HouseCost) {
		return invalid(ResultInsufficientFunds, fmt.Sprintf("You need $%d to build a hotel", prop.HouseCost))
	}
	return valid()
}

// ValidateSellBuilding checks ownership, that something stands on the
// property, and the even-selling rule.
func (r *RuleEngine) ValidateSellBuilding(player *Player, position int) ValidationResult {
	prop := r.board.Property(position)
	if prop == nil {
		return invalid(ResultInvalidProperty, "This is not a property")
	}
	if prop.OwnerID != player.ID {
		return invalid(ResultNotOwner, "You don't own this property")
	}
	if prop.Houses <= 0 && !prop.HasHotel {
		return invalid(ResultHasBuildings, "No buildings to sell")
	}
	if prop.Houses > 0 {
		maxLevel := 0
		for _, p := range r.board.GroupProperties(prop.Group) {
			if p.DevelopmentLevel() > maxLevel {
				maxLevel = p.DevelopmentLevel()
			}
		}
		if prop.DevelopmentLevel() < maxLevel {
			return invalid(ResultUnevenBuilding, "Must sell evenly across all properties in group")
		}
	}
	return valid()
}

// ValidateMortgage checks ownership and that the property carries no
// buildings and is not already mortgaged.
func (r *RuleEngine) ValidateMortgage(player *Player, position int) ValidationResult {
	prop := r.board.Property(position)
	if prop == nil {
		return invalid(ResultInvalidProperty, "This is not a property")
	}
	if prop.OwnerID != player.ID {
		return invalid(ResultNotOwner, "You don't own this property")
	}
	if prop.IsMortgaged {
		return invalid(ResultPropertyMortgaged, "Property is already mortgaged")
	}
	if prop.Houses > 0 || prop.HasHotel {
		return invalid(ResultHasBuildings, "Must sell all buildings before mortgaging")
	}
	return valid()
}

// ValidateUnmortgage checks ownership, mortgage state and funds.
func (r *RuleEngine) ValidateUnmortgage(player *Player, position int) ValidationResult {
	prop := r.board.Property(position)
	if prop == nil {
		return invalid(ResultInvalidProperty, "This is not a property")
	}
	if prop.OwnerID != player.ID {
		return invalid(ResultNotOwner, "You don't own this property")
	}
	if !prop.IsMortgaged {
		return invalid(ResultPropertyMortgaged, "Property is not mortgaged")
	}
	if !player.CanAfford(prop.UnmortgageCost()) {
		return invalid(ResultInsufficientFunds, fmt.Sprintf("You need $%d to unmortgage", prop.UnmortgageCost()))
	}
	return valid()
}

// ValidatePayBail checks jail state and funds.
func (r *RuleEngine) ValidatePayBail(player *Player, currentPlayerID string) ValidationResult {
	if player.ID != currentPlayerID {
		return invalid(ResultNotYourTurn, "It's not your turn")
	}
	if player.State != StateInJail {
		return invalid(ResultNotInJail, "You are not in jail")
	}
	if !player.CanAfford(JailBail) {
		return invalid(ResultInsufficientFunds, fmt.Sprintf("You need $%d to pay bail", JailBail))
	}
	return valid()
}

// ValidateUseJailCard checks jail state and card possession.
func (r *RuleEngine) ValidateUseJailCard(player *Player, currentPlayerID string) ValidationResult {
	if player.ID != currentPlayerID {
		return invalid(ResultNotYourTurn, "It's not your turn")
	}
	if player.State != StateInJail {
		return invalid(ResultNotInJail, "You are not in jail")
	}
	if player.JailCards <= 0 {
		return invalid(ResultInvalidProperty, "You don't have a Get Out of Jail Free card")
	}
	return valid()
}

// ValidateEndTurn rejects ending a turn before rolling or while an
// obligation (property decision, unpaid debt) is pending.
func (r *RuleEngine) ValidateEndTurn(player *Player, currentPlayerID string, phase GamePhase) ValidationResult {
	if player.ID != currentPlayerID {
		return invalid(ResultNotYourTurn, "It's not your turn")
	}
	switch phase {
	case PhasePreRoll:
		return invalid(ResultMustRoll, "You must roll the dice first")
	case PhasePropertyDecision:
		return invalid(ResultInvalidProperty, "You must decide on the property first")
	case PhasePayingRent:
		return invalid(ResultInsufficientFunds, "You must pay rent first")
	}
	return valid()
}

// TradeOffer describes one side's stake in a proposed trade.
type TradeOffer struct {
	Money      int
	Properties []int
	JailCards  int
}

// ValidateTrade checks both sides can deliver what they offer and that
// the trade moves at least one item. Developed properties cannot trade.
func (r *RuleEngine) ValidateTrade(from, to *Player, offered, requested TradeOffer) ValidationResult {
	if offered.Money > 0 && !from.CanAfford(offered.Money) {
		return invalid(ResultInsufficientFunds, "You cannot afford to offer that much money")
	}
	if requested.Money > 0 && !to.CanAfford(requested.Money) {
		return invalid(ResultInsufficientFunds, "Other player cannot afford that much money")
	}
	for _, pos := range offered.Properties {
		prop := r.board.Property(pos)
		if prop == nil || prop.OwnerID != from.ID {
			return invalid(ResultNotOwner, fmt.Sprintf("You don't own property at position %d", pos))
		}
		if prop.Houses > 0 || prop.HasHotel {
			return invalid(ResultHasBuildings, "Cannot trade properties with buildings")
		}
	}
	for _, pos := range requested.Properties {
		prop := r.board.Property(pos)
		if prop == nil || prop.OwnerID != to.ID {
			return invalid(ResultNotOwner, fmt.Sprintf("Other player doesn't own property at position %d", pos))
		}
		if prop.Houses > 0 || prop.HasHotel {
			return invalid(ResultHasBuildings, "Cannot trade properties with buildings")
		}
	}
	if offered.JailCards > from.JailCards {
		return invalid(ResultInvalidTrade, "You don't have enough Get Out of Jail Free cards")
	}
	if requested.JailCards > to.JailCards {
		return invalid(ResultInvalidTrade, "Other player doesn't have enough Get Out of Jail Free cards")
	}
	if offered.Money == 0 && requested.Money == 0 &&
		len(offered.Properties) == 0 && len(requested.Properties) == 0 &&
		offered.JailCards == 0 && requested.JailCards == 0 {
		return invalid(ResultInvalidTrade, "Trade must involve at least one item")
	}
	return valid()
}

// TotalAssets is cash plus the liquidation value of properties and
// buildings: unmortgaged properties at mortgage value, buildings at half
// their build cost.
func (r *RuleEngine) TotalAssets(player *Player) int {
	total := player.Money
	for pos := range player.Properties {
		prop := r.board.Property(pos)
		if prop == nil {
			continue
		}
		if !prop.IsMortgaged {
			total += prop.MortgageValue()
		}
		if prop.HouseCost > 0 {
			total += prop.Houses * prop.HouseCost / 2
			if prop.HasHotel {
				total += prop.HouseCost / 2
			}
		}
	}
	return total
}

// CanPlayerPay reports whether the player could raise amount by selling
// and mortgaging everything.
func (r *RuleEngine) CanPlayerPay(player *Player, amount int) bool {
	return r.TotalAssets(player) >= amount
}

// UseHouse takes a house from the bank stock.
func (r *RuleEngine) UseHouse() bool {
	if r.HousesAvailable <= 0 {
		return false
	}
	r.HousesAvailable--
	return true
}

// ReturnHouse puts a house back into the bank stock.
func (r *RuleEngine) ReturnHouse() {
	r.HousesAvailable++
}

// UseHotel takes a hotel from the bank and returns the four houses it
// replaces to the stock.
func (r *RuleEngine) UseHotel() bool {
	if r.HotelsAvailable <= 0 {
		return false
	}
	r.HotelsAvailable--
	r.HousesAvailable += 4
	return true
}

// ReturnHotel puts a hotel back and takes the four replacement houses.
func (r *RuleEngine) ReturnHotel() {
	r.HotelsAvailable++
	r.HousesAvailable -= 4
}

// NearestUtility returns the first utility position ahead of the given one.
func (r *RuleEngine) NearestUtility(position int) int {
	return nearestOf(position, []int{12, 28})
}

// NearestRailroad returns the first railroad position ahead of the given one.
func (r *RuleEngine) NearestRailroad(position int) int {
	return nearestOf(position, []int{5, 15, 25, 35})
}

func nearestOf(position int, targets []int) int {
	for i := 1; i < BoardSize; i++ {
		pos := (position + i) % BoardSize
		for _, t := range targets {
			if pos == t {
				return pos
			}
		}
	}
	return targets[0]
}
