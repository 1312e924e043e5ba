package game

// Space is the static description of one board position. Purchasable
// spaces additionally get a Property carrying their mutable state.
type Space struct {
	Position  int
	Name      string
	Type      SpaceType
	Cost      int
	Group     PropertyGroup
	Rents     []int
	HouseCost int
}

// boardSpaces is the standard US board, indexed by position.
// Rents for color properties are [base, 1 house .. 4 houses, hotel];
// railroads use [1 owned .. 4 owned]; utilities rent on dice instead.
var boardSpaces = [BoardSize]Space{
	{Position: 0, Name: "GO", Type: SpaceGo},
	{Position: 1, Name: "Mediterranean Avenue", Type: SpaceProperty, Cost: 60, Group: GroupBrown, Rents: []int{2, 10, 30, 90, 160, 250}, HouseCost: 50},
	{Position: 2, Name: "Community Chest", Type: SpaceCommunityChest},
	{Position: 3, Name: "Baltic Avenue", Type: SpaceProperty, Cost: 60, Group: GroupBrown, Rents: []int{4, 20, 60, 180, 320, 450}, HouseCost: 50},
	{Position: 4, Name: "Income Tax", Type: SpaceTax, Cost: 200},
	{Position: 5, Name: "Reading Railroad", Type: SpaceRailroad, Cost: 200, Group: GroupRailroad, Rents: []int{25, 50, 100, 200}},
	{Position: 6, Name: "Oriental Avenue", Type: SpaceProperty, Cost: 100, Group: GroupLightBlue, Rents: []int{6, 30, 90, 270, 400, 550}, HouseCost: 50},
	{Position: 7, Name: "Chance", Type: SpaceChance},
	{Position: 8, Name: "Vermont Avenue", Type: SpaceProperty, Cost: 100, Group: GroupLightBlue, Rents: []int{6, 30, 90, 270, 400, 550}, HouseCost: 50},
	{Position: 9, Name: "Connecticut Avenue", Type: SpaceProperty, Cost: 120, Group: GroupLightBlue, Rents: []int{8, 40, 100, 300, 450, 600}, HouseCost: 50},
	{Position: 10, Name: "Jail/Just Visiting", Type: SpaceJail},
	{Position: 11, Name: "St. Charles Place", Type: SpaceProperty, Cost: 140, Group: GroupPink, Rents: []int{10, 50, 150, 450, 625, 750}, HouseCost: 100},
	{Position: 12, Name: "Electric Company", Type: SpaceUtility, Cost: 150, Group: GroupUtility},
	{Position: 13, Name: "States Avenue", Type: SpaceProperty, Cost: 140, Group: GroupPink, Rents: []int{10, 50, 150, 450, 625, 750}, HouseCost: 100},
	{Position: 14, Name: "Virginia Avenue", Type: SpaceProperty, Cost: 160, Group: GroupPink, Rents: []int{12, 60, 180, 500, 700, 900}, HouseCost: 100},
	{Position: 15, Name: "Pennsylvania Railroad", Type: SpaceRailroad, Cost: 200, Group: GroupRailroad, Rents: []int{25, 50, 100, 200}},
	{Position: 16, Name: "St. James Place", Type: SpaceProperty, Cost: 180, Group: GroupOrange, Rents: []int{14, 70, 200, 550, 750, 950}, HouseCost: 100},
	{Position: 17, Name: "Community Chest", Type: SpaceCommunityChest},
	{Position: 18, Name: "Tennessee Avenue", Type: SpaceProperty, Cost: 180, Group: GroupOrange, Rents: []int{14, 70, 200, 550, 750, 950}, HouseCost: 100},
	{Position: 19, Name: "New York Avenue", Type: SpaceProperty, Cost: 200, Group: GroupOrange, Rents: []int{16, 80, 220, 600, 800, 1000}, HouseCost: 100},
	{Position: 20, Name: "Free Parking", Type: SpaceFreeParking},
	{Position: 21, Name: "Kentucky Avenue", Type: SpaceProperty, Cost: 220, Group: GroupRed, Rents: []int{18, 90, 250, 700, 875, 1050}, HouseCost: 150},
	{Position: 22, Name: "Chance", Type: SpaceChance},
	{Position: 23, Name: "Indiana Avenue", Type: SpaceProperty, Cost: 220, Group: GroupRed, Rents: []int{18, 90, 250, 700, 875, 1050}, HouseCost: 150},
	{Position: 24, Name: "Illinois Avenue", Type: SpaceProperty, Cost: 240, Group: GroupRed, Rents: []int{20, 100, 300, 750, 925, 1100}, HouseCost: 150},
	{Position: 25, Name: "B & O Railroad", Type: SpaceRailroad, Cost: 200, Group: GroupRailroad, Rents: []int{25, 50, 100, 200}},
	{Position: 26, Name: "Atlantic Avenue", Type: SpaceProperty, Cost: 260, Group: GroupYellow, Rents: []int{22, 110, 330, 800, 975, 1150}, HouseCost: 150},
	{Position: 27, Name: "Ventnor Avenue", Type: SpaceProperty, Cost: 260, Group: GroupYellow, Rents: []int{22, 110, 330, 800, 975, 1150}, HouseCost: 150},
	{Position: 28, Name: "Water Works", Type: SpaceUtility, Cost: 150, Group: GroupUtility},
	{Position: 29, Name: "Marvin Gardens", Type: SpaceProperty, Cost: 280, Group: GroupYellow, Rents: []int{24, 120, 360, 850, 1025, 1200}, HouseCost: 150},
	{Position: 30, Name: "Go To Jail", Type: SpaceGoToJail},
	{Position: 31, Name: "Pacific Avenue", Type: SpaceProperty, Cost: 300, Group: GroupGreen, Rents: []int{26, 130, 390, 900, 1100, 1275}, HouseCost: 200},
	{Position: 32, Name: "North Carolina Avenue", Type: SpaceProperty, Cost: 300, Group: GroupGreen, Rents: []int{26, 130, 390, 900, 1100, 1275}, HouseCost: 200},
	{Position: 33, Name: "Community Chest", Type: SpaceCommunityChest},
	{Position: 34, Name: "Pennsylvania Avenue", Type: SpaceProperty, Cost: 320, Group: GroupGreen, Rents: []int{28, 150, 450, 1000, 1200, 1400}, HouseCost: 200},
	{Position: 35, Name: "Short Line", Type: SpaceRailroad, Cost: 200, Group: GroupRailroad, Rents: []int{25, 50, 100, 200}},
	{Position: 36, Name: "Chance", Type: SpaceChance},
	{Position: 37, Name: "Park Place", Type: SpaceProperty, Cost: 350, Group: GroupDarkBlue, Rents: []int{35, 175, 500, 1100, 1300, 1500}, HouseCost: 200},
	{Position: 38, Name: "Luxury Tax", Type: SpaceTax, Cost: 100},
	{Position: 39, Name: "Boardwalk", Type: SpaceProperty, Cost: 400, Group: GroupDarkBlue, Rents: []int{50, 200, 600, 1400, 1700, 2000}, HouseCost: 200},
}

// utilityRentMultipliers maps the number of utilities owned to the dice multiplier.
var utilityRentMultipliers = map[int]int{1: 4, 2: 10}

// Property is a purchasable space with its ownership and development state.
// OwnerID is empty while the bank holds it.
type Property struct {
	Position  int
	Name      string
	Type      SpaceType
	Cost      int
	Group     PropertyGroup
	Rents     []int
	HouseCost int

	OwnerID     string
	Houses      int
	HasHotel    bool
	IsMortgaged bool
}

// IsOwned reports whether a player holds this property.
func (p *Property) IsOwned() bool {
	return p.OwnerID != ""
}

// CanBeDeveloped reports whether houses or hotels may be built here at all.
func (p *Property) CanBeDeveloped() bool {
	return p.Type == SpaceProperty && !p.IsMortgaged && p.HouseCost > 0
}

// DevelopmentLevel is 0 for undeveloped, 1-4 for houses, 5 for a hotel.
func (p *Property) DevelopmentLevel() int {
	if p.HasHotel {
		return 5
	}
	return p.Houses
}

// MortgageValue is half the purchase price.
func (p *Property) MortgageValue() int {
	return p.Cost / 2
}

// UnmortgageCost is the mortgage value plus 10% interest.
func (p *Property) UnmortgageCost() int {
	return p.MortgageValue() * 11 / 10
}

// Rent computes the rent owed when an opponent lands here. diceTotal feeds
// utility rent, sameGroupOwned the railroad/utility tiers, and hasMonopoly
// the doubled base rent on undeveloped color properties.
func (p *Property) Rent(diceTotal, sameGroupOwned int, hasMonopoly bool) int {
	if p.IsMortgaged || !p.IsOwned() {
		return 0
	}
	switch p.Type {
	case SpaceProperty:
		if p.HasHotel {
			return p.Rents[5]
		}
		if p.Houses > 0 {
			return p.Rents[p.Houses]
		}
		if hasMonopoly {
			return p.Rents[0] * 2
		}
		return p.Rents[0]
	case SpaceRailroad:
		if sameGroupOwned >= 1 && sameGroupOwned <= 4 {
			return p.Rents[sameGroupOwned-1]
		}
		return p.Rents[0]
	case SpaceUtility:
		mult, ok := utilityRentMultipliers[sameGroupOwned]
		if !ok {
			mult = 4
		}
		return diceTotal * mult
	}
	return 0
}

// BuildHouse adds one house, if development allows it.
func (p *Property) BuildHouse() bool {
	if !p.CanBeDeveloped() || p.Houses >= MaxHousesPerProperty || p.HasHotel {
		return false
	}
	p.Houses++
	return true
}

// BuildHotel replaces four houses with a hotel.
func (p *Property) BuildHotel() bool {
	if !p.CanBeDeveloped() || p.Houses != MaxHousesPerProperty || p.HasHotel {
		return false
	}
	p.Houses = 0
	p.HasHotel = true
	return true
}

// SellHouse removes one house and returns the refund (half the house cost).
func (p *Property) SellHouse() int {
	if p.Houses <= 0 {
		return 0
	}
	p.Houses--
	return p.HouseCost / 2
}

// SellHotel converts a hotel back into four houses and returns the refund.
func (p *Property) SellHotel() int {
	if !p.HasHotel {
		return 0
	}
	p.HasHotel = false
	p.Houses = MaxHousesPerProperty
	return p.HouseCost / 2
}

// Mortgage mortgages the property and returns the money received,
// or 0 if it is already mortgaged or carries buildings.
func (p *Property) Mortgage() int {
	if p.IsMortgaged || p.Houses > 0 || p.HasHotel {
		return 0
	}
	p.IsMortgaged = true
	return p.MortgageValue()
}

// Unmortgage lifts the mortgage. The caller charges the unmortgage cost.
func (p *Property) Unmortgage() bool {
	if !p.IsMortgaged {
		return false
	}
	p.IsMortgaged = false
	return true
}

// Board holds the mutable ownership state for all purchasable spaces.
type Board struct {
	properties map[int]*Property
}

// NewBoard creates a board with every property unowned.
func NewBoard() *Board {
	b := &Board{properties: make(map[int]*Property)}
	for _, space := range boardSpaces {
		switch space.Type {
		case SpaceProperty, SpaceRailroad, SpaceUtility:
			b.properties[space.Position] = &Property{
				Position:  space.Position,
				Name:      space.Name,
				Type:      space.Type,
				Cost:      space.Cost,
				Group:     space.Group,
				Rents:     space.Rents,
				HouseCost: space.HouseCost,
			}
		}
	}
	return b
}

// Space returns the static description of a board position.
func (b *Board) Space(position int) Space {
	if position < 0 || position >= BoardSize {
		return Space{}
	}
	return boardSpaces[position]
}

// Property returns the property at position, or nil for non-purchasable spaces.
func (b *Board) Property(position int) *Property {
	return b.properties[position]
}

// Properties returns the property map keyed by position.
func (b *Board) Properties() map[int]*Property {
	return b.properties
}

// PropertyOwner returns the owner of the property at position, or "" if
// unowned or not a property.
func (b *Board) PropertyOwner(position int) string {
	if prop := b.properties[position]; prop != nil {
		return prop.OwnerID
	}
	return ""
}

// IsPropertyAvailable reports whether the property at position can be bought.
func (b *Board) IsPropertyAvailable(position int) bool {
	prop := b.properties[position]
	return prop != nil && !prop.IsOwned()
}

// PlayerProperties returns all properties owned by a player.
func (b *Board) PlayerProperties(playerID string) []*Property {
	var props []*Property
	for _, prop := range b.properties {
		if prop.OwnerID == playerID {
			props = append(props, prop)
		}
	}
	return props
}

// GroupProperties returns all properties in a color group.
func (b *Board) GroupProperties(group PropertyGroup) []*Property {
	var props []*Property
	for _, prop := range b.properties {
		if prop.Group == group {
			props = append(props, prop)
		}
	}
	return props
}

// HasMonopoly reports whether a player owns every property in a color group.
// Railroads and utilities never form a monopoly.
func (b *Board) HasMonopoly(playerID string, group PropertyGroup) bool {
	if group == GroupRailroad || group == GroupUtility {
		return false
	}
	props := b.GroupProperties(group)
	if len(props) == 0 {
		return false
	}
	for _, prop := range props {
		if prop.OwnerID != playerID {
			return false
		}
	}
	return true
}

// CountGroupOwned counts the properties of a group held by a player.
func (b *Board) CountGroupOwned(playerID string, group PropertyGroup) int {
	n := 0
	for _, prop := range b.GroupProperties(group) {
		if prop.OwnerID == playerID {
			n++
		}
	}
	return n
}

// CanBuildHouse checks ownership, monopoly, development limits and the
// even-building rule (no property may run more than one house ahead of
// the rest of its group).
func (b *Board) CanBuildHouse(position int, playerID string) bool {
	prop := b.properties[position]
	if prop == nil || prop.OwnerID != playerID || !prop.CanBeDeveloped() {
		return false
	}
	if prop.Houses >= MaxHousesPerProperty || prop.HasHotel {
		return false
	}
	if !b.HasMonopoly(playerID, prop.Group) {
		return false
	}
	minLevel := -1
	for _, p := range b.GroupProperties(prop.Group) {
		if minLevel < 0 || p.DevelopmentLevel() < minLevel {
			minLevel = p.DevelopmentLevel()
		}
	}
	return prop.DevelopmentLevel() <= minLevel
}

// CanBuildHotel checks the monopoly requirements plus the hotel rule:
// every property in the group must already carry four houses or a hotel.
func (b *Board) CanBuildHotel(position int, playerID string) bool {
	prop := b.properties[position]
	if prop == nil || prop.OwnerID != playerID || !prop.CanBeDeveloped() {
		return false
	}
	if prop.Houses != MaxHousesPerProperty || prop.HasHotel {
		return false
	}
	if !b.HasMonopoly(playerID, prop.Group) {
		return false
	}
	for _, p := range b.GroupProperties(prop.Group) {
		if p.Houses < MaxHousesPerProperty && !p.HasHotel {
			return false
		}
	}
	return true
}

// Rent computes the rent a landing player owes at position.
// Landing on your own property, an unowned or a mortgaged one costs nothing.
func (b *Board) Rent(position, diceTotal int, landingPlayerID string) int {
	prop := b.properties[position]
	if prop == nil || !prop.IsOwned() || prop.OwnerID == landingPlayerID {
		return 0
	}
	sameGroupOwned := b.CountGroupOwned(prop.OwnerID, prop.Group)
	hasMonopoly := b.HasMonopoly(prop.OwnerID, prop.Group)
	return prop.Rent(diceTotal, sameGroupOwned, hasMonopoly)
}

// TransferProperty reassigns ownership. An empty newOwnerID returns the
// property to the bank.
func (b *Board) TransferProperty(position int, newOwnerID string) bool {
	prop := b.properties[position]
	if prop == nil {
		return false
	}
	prop.OwnerID = newOwnerID
	return true
}

// Reset returns every property to its unowned, undeveloped state.
func (b *Board) Reset() {
	for _, prop := range b.properties {
		prop.OwnerID = ""
		prop.Houses = 0
		prop.HasHotel = false
		prop.IsMortgaged = false
	}
}
