package protocol

// Payload shapes for each message type. Incoming payloads carry pointer
// fields where the handler must distinguish "absent" from zero.

// ConnectRequest is the first frame a client must send.
type ConnectRequest struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// ConnectAck acknowledges a successful handshake. ReconnectedToGame is
// empty unless the player rejoined an ongoing game.
type ConnectAck struct {
	Success           bool   `json:"success"`
	PlayerID          string `json:"player_id"`
	PlayerName        string `json:"player_name"`
	ReconnectedToGame string `json:"reconnected_to_game,omitempty"`
}

type CreateGameRequest struct {
	GameName   string        `json:"game_name"`
	PlayerName string        `json:"player_name"`
	Settings   *GameSettings `json:"settings"`
}

type JoinGameRequest struct {
	GameID      string `json:"game_id"`
	PlayerName  string `json:"player_name"`
	AsSpectator bool   `json:"as_spectator"`
}

type ListGamesRequest struct {
	Status string `json:"status"`
}

// PositionRequest covers every per-property action.
type PositionRequest struct {
	Position *int `json:"position"`
}

// TargetPlayerRequest covers kick and host transfer.
type TargetPlayerRequest struct {
	PlayerID string `json:"player_id"`
}

type BankruptcyRequest struct {
	CreditorID string `json:"creditor_id"`
}

type ErrorData struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// NewError builds an ERROR message with a machine-readable code.
func NewError(message, code string) Message {
	return Message{Type: TypeError, Data: ErrorData{Message: message, Code: code}}
}

type GameListData struct {
	Games []GameSummary `json:"games"`
}

// GameSummary is one entry of a GAME_LIST response.
type GameSummary struct {
	GameID      string `json:"game_id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
	HostName    string `json:"host_name,omitempty"`
	InMemory    bool   `json:"in_memory"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func NewGameList(games []GameSummary) Message {
	if games == nil {
		games = []GameSummary{}
	}
	return Message{Type: TypeGameList, Data: GameListData{Games: games}}
}

// NewGameState wraps a per-player view of the game. The view is built
// by the engine and serialized as-is.
func NewGameState(view interface{}) Message {
	return Message{Type: TypeGameState, Data: view}
}

func NewGameStarted(state interface{}) Message {
	return Message{Type: TypeGameStarted, Data: state}
}

type DiceRolledData struct {
	PlayerID      string `json:"player_id"`
	PlayerName    string `json:"player_name"`
	Die1          int    `json:"die1"`
	Die2          int    `json:"die2"`
	Total         int    `json:"total"`
	IsDouble      bool   `json:"is_double"`
	ResultMessage string `json:"result_message"`
}

func NewDiceRolled(d DiceRolledData) Message {
	return Message{Type: TypeDiceRolled, Data: d}
}

type PropertyBoughtData struct {
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	PropertyName string `json:"property_name"`
	Position     int    `json:"position"`
	Price        int    `json:"price"`
}

func NewPropertyBought(d PropertyBoughtData) Message {
	return Message{Type: TypePropertyBought, Data: d}
}

// BuildingAction values for BuildingChangedData.Action.
const (
	BuiltHouse = "built_house"
	BuiltHotel = "built_hotel"
	SoldHouse  = "sold_house"
	SoldHotel  = "sold_hotel"
)

type BuildingChangedData struct {
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	PropertyName string `json:"property_name"`
	Position     int    `json:"position"`
	Action       string `json:"action"`
	Houses       int    `json:"houses"`
	HasHotel     bool   `json:"has_hotel"`
}

func NewBuildingChanged(d BuildingChangedData) Message {
	return Message{Type: TypeBuildingChanged, Data: d}
}

type PropertyMortgagedData struct {
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	PropertyName string `json:"property_name"`
	Position     int    `json:"position"`
	IsMortgaged  bool   `json:"is_mortgaged"`
	Amount       int    `json:"amount"`
}

func NewPropertyMortgaged(d PropertyMortgagedData) Message {
	return Message{Type: TypePropertyMortgaged, Data: d}
}

type RentPaidData struct {
	PayerID      string `json:"payer_id"`
	PayerName    string `json:"payer_name"`
	PayeeID      string `json:"payee_id"`
	PayeeName    string `json:"payee_name"`
	PropertyName string `json:"property_name"`
	Amount       int    `json:"amount"`
}

func NewRentPaid(d RentPaidData) Message {
	return Message{Type: TypeRentPaid, Data: d}
}

type TurnEndedData struct {
	PreviousPlayerID   string `json:"previous_player_id"`
	PreviousPlayerName string `json:"previous_player_name"`
	CurrentPlayerID    string `json:"current_player_id"`
	CurrentPlayerName  string `json:"current_player_name"`
	TurnNumber         int    `json:"turn_number"`
}

func NewTurnEnded(d TurnEndedData) Message {
	return Message{Type: TypeTurnEnded, Data: d}
}

// JailReason values for JailStatusData.Reason.
const (
	JailReasonSent          = "sent_to_jail"
	JailReasonPaidBail      = "paid_bail"
	JailReasonUsedCard      = "used_card"
	JailReasonRolledDoubles = "rolled_doubles"
)

type JailStatusData struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	InJail     bool   `json:"in_jail"`
	Reason     string `json:"reason"`
}

func NewJailStatus(d JailStatusData) Message {
	return Message{Type: TypeJailStatus, Data: d}
}

type CardDrawnData struct {
	PlayerID      string `json:"player_id"`
	PlayerName    string `json:"player_name"`
	CardType      string `json:"card_type"`
	CardText      string `json:"card_text"`
	ResultMessage string `json:"result_message"`
}

func NewCardDrawn(d CardDrawnData) Message {
	return Message{Type: TypeCardDrawn, Data: d}
}

type PlayerBankruptData struct {
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	CreditorID   string `json:"creditor_id,omitempty"`
	CreditorName string `json:"creditor_name,omitempty"`
}

func NewPlayerBankrupt(d PlayerBankruptData) Message {
	return Message{Type: TypePlayerBankrupt, Data: d}
}

type GameWonData struct {
	WinnerID   string `json:"winner_id"`
	WinnerName string `json:"winner_name"`
}

func NewGameWon(d GameWonData) Message {
	return Message{Type: TypeGameWon, Data: d}
}

type PlayerJoinedData struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	GameID     string `json:"game_id"`
}

func NewPlayerJoined(d PlayerJoinedData) Message {
	return Message{Type: TypeJoinGame, Data: d}
}

type PlayerLeftData struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

func NewPlayerLeft(d PlayerLeftData) Message {
	return Message{Type: TypeLeaveGame, Data: d}
}

type PlayerKickedData struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	KickedBy   string `json:"kicked_by"`
}

func NewPlayerKicked(d PlayerKickedData) Message {
	return Message{Type: TypeKickPlayer, Data: d}
}

type HostTransferredData struct {
	NewHostID   string `json:"new_host_id"`
	NewHostName string `json:"new_host_name"`
	OldHostID   string `json:"old_host_id"`
}

func NewHostTransferred(d HostTransferredData) Message {
	return Message{Type: TypeTransferHost, Data: d}
}

type PlayerPresenceData struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

func NewPlayerDisconnected(playerID, playerName string) Message {
	return Message{Type: TypeDisconnect, Data: PlayerPresenceData{PlayerID: playerID, PlayerName: playerName}}
}

func NewPlayerReconnected(playerID, playerName string) Message {
	return Message{Type: TypeReconnect, Data: PlayerPresenceData{PlayerID: playerID, PlayerName: playerName}}
}
