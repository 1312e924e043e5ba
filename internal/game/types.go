package game

// Board geometry and bank limits for the standard US board.
const (
	BoardSize            = 40
	StartingMoney        = 1500
	SalaryAmount         = 200
	JailPosition         = 10
	GoToJailSpace        = 30
	MaxJailTurns         = 3
	JailBail             = 50
	MaxHousesPerProperty = 4
	TotalHouses          = 32
	TotalHotels          = 12
)

// SpaceType classifies a board space.
type SpaceType string

const (
	SpaceProperty       SpaceType = "PROPERTY"
	SpaceRailroad       SpaceType = "RAILROAD"
	SpaceUtility        SpaceType = "UTILITY"
	SpaceGo             SpaceType = "GO"
	SpaceJail           SpaceType = "JAIL"
	SpaceFreeParking    SpaceType = "FREE_PARKING"
	SpaceGoToJail       SpaceType = "GO_TO_JAIL"
	SpaceTax            SpaceType = "TAX"
	SpaceChance         SpaceType = "CHANCE"
	SpaceCommunityChest SpaceType = "COMMUNITY_CHEST"
)

// PropertyGroup is a color group, or the railroad/utility pseudo-groups.
type PropertyGroup string

const (
	GroupBrown     PropertyGroup = "BROWN"
	GroupLightBlue PropertyGroup = "LIGHT_BLUE"
	GroupPink      PropertyGroup = "PINK"
	GroupOrange    PropertyGroup = "ORANGE"
	GroupRed       PropertyGroup = "RED"
	GroupYellow    PropertyGroup = "YELLOW"
	GroupGreen     PropertyGroup = "GREEN"
	GroupDarkBlue  PropertyGroup = "DARK_BLUE"
	GroupRailroad  PropertyGroup = "RAILROAD"
	GroupUtility   PropertyGroup = "UTILITY"
)

// GamePhase is the phase of the current player's turn.
type GamePhase string

const (
	PhaseWaiting          GamePhase = "WAITING"
	PhasePreRoll          GamePhase = "PRE_ROLL"
	PhasePostRoll         GamePhase = "POST_ROLL"
	PhasePropertyDecision GamePhase = "PROPERTY_DECISION"
	PhaseTrading          GamePhase = "TRADING"
	PhasePayingRent       GamePhase = "PAYING_RENT"
	PhaseBankrupt         GamePhase = "BANKRUPT"
	PhaseGameOver         GamePhase = "GAME_OVER"
)

// PlayerState is a player's standing within the game.
type PlayerState string

const (
	StateActive       PlayerState = "ACTIVE"
	StateInJail       PlayerState = "IN_JAIL"
	StateBankrupt     PlayerState = "BANKRUPT"
	StateDisconnected PlayerState = "DISCONNECTED"
)

// CardType identifies one of the two card decks.
type CardType string

const (
	CardChance         CardType = "CHANCE"
	CardCommunityChest CardType = "COMMUNITY_CHEST"
)
