// Package protocol defines the JSON wire format spoken between the
// server and its websocket clients.
package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies a wire message.
type MessageType string

const (
	// Connection lifecycle
	TypeConnect    MessageType = "CONNECT"
	TypeDisconnect MessageType = "DISCONNECT"
	TypeReconnect  MessageType = "RECONNECT"

	// Lobby
	TypeCreateGame MessageType = "CREATE_GAME"
	TypeJoinGame   MessageType = "JOIN_GAME"
	TypeLeaveGame  MessageType = "LEAVE_GAME"
	TypeListGames  MessageType = "LIST_GAMES"
	TypeGameList   MessageType = "GAME_LIST"

	// Game flow
	TypeStartGame   MessageType = "START_GAME"
	TypeGameStarted MessageType = "GAME_STARTED"
	TypeGameState   MessageType = "GAME_STATE"

	// Turn actions
	TypeRollDice   MessageType = "ROLL_DICE"
	TypeDiceRolled MessageType = "DICE_ROLLED"
	TypeEndTurn    MessageType = "END_TURN"
	TypeTurnEnded  MessageType = "TURN_ENDED"

	// Property actions
	TypeBuyProperty     MessageType = "BUY_PROPERTY"
	TypeDeclineProperty MessageType = "DECLINE_PROPERTY"
	TypePropertyBought  MessageType = "PROPERTY_BOUGHT"

	// Building
	TypeBuildHouse      MessageType = "BUILD_HOUSE"
	TypeBuildHotel      MessageType = "BUILD_HOTEL"
	TypeSellBuilding    MessageType = "SELL_BUILDING"
	TypeBuildingChanged MessageType = "BUILDING_CHANGED"

	// Money and rent
	TypePayRent       MessageType = "PAY_RENT"
	TypeRentPaid      MessageType = "RENT_PAID"
	TypeMoneyTransfer MessageType = "MONEY_TRANSFER"

	// Jail
	TypePayBail     MessageType = "PAY_BAIL"
	TypeUseJailCard MessageType = "USE_JAIL_CARD"
	TypeJailStatus  MessageType = "JAIL_STATUS"

	// Cards
	TypeDrawCard  MessageType = "DRAW_CARD"
	TypeCardDrawn MessageType = "CARD_DRAWN"

	// Mortgage
	TypeMortgageProperty   MessageType = "MORTGAGE_PROPERTY"
	TypeUnmortgageProperty MessageType = "UNMORTGAGE_PROPERTY"
	TypePropertyMortgaged  MessageType = "PROPERTY_MORTGAGED"

	// Game end
	TypePlayerBankrupt MessageType = "PLAYER_BANKRUPT"
	TypeGameWon        MessageType = "GAME_WON"

	// Host privileges
	TypeKickPlayer   MessageType = "KICK_PLAYER"
	TypeTransferHost MessageType = "TRANSFER_HOST"

	// Errors
	TypeError         MessageType = "ERROR"
	TypeInvalidAction MessageType = "INVALID_ACTION"
)

// Message is an outgoing envelope. Data holds the typed payload and is
// serialized as a JSON object.
type Message struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// Encode serializes the message for the wire.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Request is an incoming envelope. The payload stays raw until the
// handler for the message type decodes it.
type Request struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
}

// ParseRequest decodes a raw client frame.
func ParseRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	if req.Type == "" {
		return Request{}, fmt.Errorf("request has no type")
	}
	return req, nil
}

// DecodeData unmarshals the request payload into v. A missing payload
// is treated as an empty object.
func (r Request) DecodeData(v interface{}) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// GameSettings are configured by the host at game creation.
type GameSettings struct {
	AllowSpectators bool `json:"allow_spectators"`
	StartingMoney   int  `json:"starting_money"`
	SalaryAmount    int  `json:"salary_amount"`
	MaxPlayers      int  `json:"max_players"`
}

// DefaultSettings returns the settings used when the host supplies none.
func DefaultSettings() GameSettings {
	return GameSettings{
		AllowSpectators: false,
		StartingMoney:   1500,
		SalaryAmount:    200,
		MaxPlayers:      4,
	}
}

// ApplyDefaults fills in zero-valued fields clients are allowed to omit.
func (s *GameSettings) ApplyDefaults() {
	if s.StartingMoney == 0 {
		s.StartingMoney = 1500
	}
	if s.SalaryAmount == 0 {
		s.SalaryAmount = 200
	}
	if s.MaxPlayers == 0 {
		s.MaxPlayers = 4
	}
}
