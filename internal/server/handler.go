package server

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/openmonopoly/monopoly-server-go/internal/game"
	"github.com/openmonopoly/monopoly-server-go/internal/lobby"
	"github.com/openmonopoly/monopoly-server-go/internal/protocol"
	"github.com/openmonopoly/monopoly-server-go/internal/session"
)

// HandleResult is what processing one client message produces.
type HandleResult struct {
	// Response goes back to the requesting player only.
	Response *protocol.Message
	// Broadcasts go to the other players in the game.
	Broadcasts []protocol.Message
	// BroadcastState pushes each player their own view of the game.
	BroadcastState bool
	// ShouldSave triggers an auto-save after the action.
	ShouldSave bool
}

// MessageHandler routes client requests to lobby and game actions.
type MessageHandler struct {
	games    *lobby.Manager
	sessions *session.Manager
	logger   *zap.Logger
}

func NewMessageHandler(games *lobby.Manager, sessions *session.Manager, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{games: games, sessions: sessions, logger: logger}
}

// Handle processes one request from a player. The caller holds the
// per-game lock for the player's game.
func (h *MessageHandler) Handle(playerID string, req protocol.Request) HandleResult {
	var result HandleResult
	switch req.Type {
	case protocol.TypeListGames:
		result = h.handleListGames(playerID, req)
	case protocol.TypeCreateGame:
		result = h.handleCreateGame(playerID, req)
	case protocol.TypeJoinGame:
		result = h.handleJoinGame(playerID, req)
	case protocol.TypeLeaveGame:
		result = h.handleLeaveGame(playerID, req)
	case protocol.TypeStartGame:
		result = h.handleStartGame(playerID, req)
	case protocol.TypeKickPlayer:
		result = h.handleKickPlayer(playerID, req)
	case protocol.TypeTransferHost:
		result = h.handleTransferHost(playerID, req)
	case protocol.TypeRollDice:
		result = h.handleRollDice(playerID, req)
	case protocol.TypeBuyProperty:
		result = h.handleBuyProperty(playerID, req)
	case protocol.TypeDeclineProperty:
		result = h.handleDeclineProperty(playerID, req)
	case protocol.TypeBuildHouse:
		result = h.handleBuildHouse(playerID, req)
	case protocol.TypeBuildHotel:
		result = h.handleBuildHotel(playerID, req)
	case protocol.TypeSellBuilding:
		result = h.handleSellBuilding(playerID, req)
	case protocol.TypeMortgageProperty:
		result = h.handleMortgage(playerID, req)
	case protocol.TypeUnmortgageProperty:
		result = h.handleUnmortgage(playerID, req)
	case protocol.TypePayBail:
		result = h.handlePayBail(playerID, req)
	case protocol.TypeUseJailCard:
		result = h.handleUseJailCard(playerID, req)
	case protocol.TypeEndTurn:
		result = h.handleEndTurn(playerID, req)
	case protocol.TypePlayerBankrupt:
		result = h.handleBankruptcy(playerID, req)
	case protocol.TypeGameState:
		result = h.handleGetState(playerID, req)
	default:
		result = errorResult(fmt.Sprintf("Unknown message type: %s", req.Type), "UNKNOWN_MESSAGE_TYPE")
	}

	if result.Response != nil && req.RequestID != "" {
		result.Response.RequestID = req.RequestID
	}
	return result
}

func errorResult(message, code string) HandleResult {
	msg := protocol.NewError(message, code)
	return HandleResult{Response: &msg}
}

func responseResult(msg protocol.Message) HandleResult {
	return HandleResult{Response: &msg}
}

func (h *MessageHandler) playerGame(playerID string) (*lobby.ManagedGame, *HandleResult) {
	mg := h.games.GameForPlayer(playerID)
	if mg == nil {
		r := errorResult("You are not in a game", "NOT_IN_GAME")
		return nil, &r
	}
	return mg, nil
}

func stateMessage(mg *lobby.ManagedGame, playerID string) protocol.Message {
	return protocol.NewGameState(mg.Game.StateForPlayer(playerID))
}

func playerName(g *game.Game, playerID string) string {
	if p := g.Players[playerID]; p != nil {
		return p.Name
	}
	return "Unknown"
}

func decodePosition(req protocol.Request) (int, *HandleResult) {
	var payload protocol.PositionRequest
	if err := req.DecodeData(&payload); err != nil {
		r := errorResult(fmt.Sprintf("Invalid message format: %v", err), "PARSE_ERROR")
		return 0, &r
	}
	if payload.Position == nil {
		r := errorResult("position is required", "MISSING_POSITION")
		return 0, &r
	}
	return *payload.Position, nil
}

// ----- lobby -----

func (h *MessageHandler) handleListGames(_ string, req protocol.Request) HandleResult {
	var payload protocol.ListGamesRequest
	if err := req.DecodeData(&payload); err != nil {
		return errorResult(fmt.Sprintf("Invalid message format: %v", err), "PARSE_ERROR")
	}

	var games []protocol.GameSummary
	if payload.Status == "" {
		games = h.games.ListJoinableGames()
	} else {
		games = h.games.ListGames(payload.Status)
	}
	return responseResult(protocol.NewGameList(games))
}

func (h *MessageHandler) handleCreateGame(playerID string, req protocol.Request) HandleResult {
	var payload protocol.CreateGameRequest
	if err := req.DecodeData(&payload); err != nil {
		return errorResult(fmt.Sprintf("Invalid message format: %v", err), "PARSE_ERROR")
	}
	if payload.GameName == "" {
		payload.GameName = "Unnamed Game"
	}
	if payload.PlayerName == "" {
		payload.PlayerName = "Player"
	}
	settings := protocol.DefaultSettings()
	if payload.Settings != nil {
		settings = *payload.Settings
		settings.ApplyDefaults()
	}

	mg, msg, ok := h.games.CreateGame(payload.GameName, playerID, payload.PlayerName, settings)
	if !ok {
		return errorResult(msg, "CREATE_GAME_FAILED")
	}

	h.sessions.JoinGame(playerID, mg.Game.ID, true, false)
	return responseResult(stateMessage(mg, playerID))
}

func (h *MessageHandler) handleJoinGame(playerID string, req protocol.Request) HandleResult {
	var payload protocol.JoinGameRequest
	if err := req.DecodeData(&payload); err != nil {
		return errorResult(fmt.Sprintf("Invalid message format: %v", err), "PARSE_ERROR")
	}
	if payload.GameID == "" {
		return errorResult("game_id is required", "MISSING_GAME_ID")
	}
	if payload.PlayerName == "" {
		payload.PlayerName = "Player"
	}

	_, msg, ok := h.games.JoinGame(payload.GameID, playerID, payload.PlayerName, payload.AsSpectator)
	if !ok {
		return errorResult(msg, "JOIN_GAME_FAILED")
	}

	h.sessions.JoinGame(playerID, payload.GameID, false, payload.AsSpectator)

	mg := h.games.GetGame(payload.GameID)
	return HandleResult{
		Response: msgPtr(stateMessage(mg, playerID)),
		Broadcasts: []protocol.Message{
			protocol.NewPlayerJoined(protocol.PlayerJoinedData{
				PlayerID:   playerID,
				PlayerName: payload.PlayerName,
				GameID:     payload.GameID,
			}),
		},
		BroadcastState: true,
	}
}

func (h *MessageHandler) handleLeaveGame(playerID string, _ protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}

	name := playerName(mg.Game, playerID)
	wasStarted := mg.IsStarted()

	_, msg, ok := h.games.LeaveGame(playerID)
	if !ok {
		return errorResult(msg, "LEAVE_GAME_FAILED")
	}
	h.sessions.LeaveGame(playerID)

	ack := protocol.Message{Type: protocol.TypeLeaveGame, Data: map[string]bool{"success": true}}
	return HandleResult{
		Response: &ack,
		Broadcasts: []protocol.Message{
			protocol.NewPlayerLeft(protocol.PlayerLeftData{PlayerID: playerID, PlayerName: name}),
		},
		BroadcastState: true,
		ShouldSave:     wasStarted,
	}
}

func (h *MessageHandler) handleStartGame(playerID string, _ protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}

	msg, ok := h.games.StartGame(mg.Game.ID, playerID)
	if !ok {
		return errorResult(msg, "START_GAME_FAILED")
	}

	return HandleResult{
		Response: msgPtr(stateMessage(mg, playerID)),
		Broadcasts: []protocol.Message{
			protocol.NewGameStarted(mg.Game.Snapshot()),
		},
		BroadcastState: true,
		ShouldSave:     true,
	}
}

// ----- host privileges -----

func (h *MessageHandler) handleKickPlayer(playerID string, req protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}

	var payload protocol.TargetPlayerRequest
	if err := req.DecodeData(&payload); err != nil {
		return errorResult(fmt.Sprintf("Invalid message format: %v", err), "PARSE_ERROR")
	}
	if payload.PlayerID == "" {
		return errorResult("player_id is required", "MISSING_PLAYER_ID")
	}

	targetName := playerName(mg.Game, payload.PlayerID)

	msg, ok := h.games.RemovePlayer(mg.Game.ID, payload.PlayerID, playerID)
	if !ok {
		return errorResult(msg, "KICK_PLAYER_FAILED")
	}

	h.sessions.LeaveGame(payload.PlayerID)
	h.sessions.SendToPlayer(payload.PlayerID, protocol.NewError("You have been kicked from the game", "KICKED"))

	return HandleResult{
		Response: msgPtr(stateMessage(mg, playerID)),
		Broadcasts: []protocol.Message{
			protocol.NewPlayerKicked(protocol.PlayerKickedData{
				PlayerID:   payload.PlayerID,
				PlayerName: targetName,
				KickedBy:   playerName(mg.Game, playerID),
			}),
		},
		BroadcastState: true,
	}
}

func (h *MessageHandler) handleTransferHost(playerID string, req protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}
	if mg.HostPlayerID != playerID {
		return errorResult("Only the host can transfer host privileges", "NOT_HOST")
	}

	var payload protocol.TargetPlayerRequest
	if err := req.DecodeData(&payload); err != nil {
		return errorResult(fmt.Sprintf("Invalid message format: %v", err), "PARSE_ERROR")
	}
	if payload.PlayerID == "" {
		return errorResult("player_id is required", "MISSING_PLAYER_ID")
	}
	if mg.Game.Players[payload.PlayerID] == nil {
		return errorResult("Player not in game", "PLAYER_NOT_FOUND")
	}

	oldHostID := mg.HostPlayerID
	if msg, ok := h.games.TransferHost(mg.Game.ID, payload.PlayerID, playerID); !ok {
		return errorResult(msg, "TRANSFER_HOST_FAILED")
	}
	h.sessions.TransferHost(mg.Game.ID, payload.PlayerID)

	return HandleResult{
		Response: msgPtr(stateMessage(mg, playerID)),
		Broadcasts: []protocol.Message{
			protocol.NewHostTransferred(protocol.HostTransferredData{
				NewHostID:   payload.PlayerID,
				NewHostName: playerName(mg.Game, payload.PlayerID),
				OldHostID:   oldHostID,
			}),
		},
		BroadcastState: true,
	}
}

// ----- game actions -----

func (h *MessageHandler) handleRollDice(playerID string, _ protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}

	dice, msg, ok := mg.Game.RollDice(playerID)
	if !ok {
		return errorResult(msg, "ROLL_DICE_FAILED")
	}

	name := playerName(mg.Game, playerID)
	broadcasts := []protocol.Message{
		protocol.NewDiceRolled(protocol.DiceRolledData{
			PlayerID:      playerID,
			PlayerName:    name,
			Die1:          dice.Die1,
			Die2:          dice.Die2,
			Total:         dice.Total(),
			IsDouble:      dice.IsDouble(),
			ResultMessage: msg,
		}),
	}

	if player := mg.Game.Players[playerID]; player != nil && strings.Contains(strings.ToLower(msg), "jail") {
		reason := protocol.JailReasonSent
		if dice.IsDouble() {
			reason = protocol.JailReasonRolledDoubles
		}
		broadcasts = append(broadcasts, protocol.NewJailStatus(protocol.JailStatusData{
			PlayerID:   playerID,
			PlayerName: name,
			InJail:     player.State == game.StateInJail,
			Reason:     reason,
		}))
	}

	return HandleResult{
		Response:       msgPtr(stateMessage(mg, playerID)),
		Broadcasts:     broadcasts,
		BroadcastState: true,
	}
}

func (h *MessageHandler) handleBuyProperty(playerID string, _ protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}

	position := 0
	if player := mg.Game.Players[playerID]; player != nil {
		position = player.Position
	}
	prop := mg.Game.Board().Property(position)

	msg, ok := mg.Game.BuyProperty(playerID)
	if !ok {
		return errorResult(msg, "BUY_PROPERTY_FAILED")
	}

	data := protocol.PropertyBoughtData{
		PlayerID:     playerID,
		PlayerName:   playerName(mg.Game, playerID),
		PropertyName: "Unknown",
		Position:     position,
	}
	if prop != nil {
		data.PropertyName = prop.Name
		data.Price = prop.Cost
	}

	return HandleResult{
		Response:       msgPtr(stateMessage(mg, playerID)),
		Broadcasts:     []protocol.Message{protocol.NewPropertyBought(data)},
		BroadcastState: true,
	}
}

func (h *MessageHandler) handleDeclineProperty(playerID string, _ protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}

	msg, ok := mg.Game.DeclineProperty(playerID)
	if !ok {
		return errorResult(msg, "DECLINE_PROPERTY_FAILED")
	}

	// House rules: no auction, the property just stays with the bank.
	return HandleResult{
		Response:       msgPtr(stateMessage(mg, playerID)),
		BroadcastState: true,
	}
}

func (h *MessageHandler) handleBuildHouse(playerID string, req protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}
	position, errRes := decodePosition(req)
	if errRes != nil {
		return *errRes
	}

	msg, ok := mg.Game.BuildHouse(playerID, position)
	if !ok {
		return errorResult(msg, "BUILD_HOUSE_FAILED")
	}

	prop := mg.Game.Board().Property(position)
	data := protocol.BuildingChangedData{
		PlayerID:     playerID,
		PlayerName:   playerName(mg.Game, playerID),
		PropertyName: "Unknown",
		Position:     position,
		Action:       protocol.BuiltHouse,
	}
	if prop != nil {
		data.PropertyName = prop.Name
		data.Houses = prop.Houses
		data.HasHotel = prop.HasHotel
	}

	return HandleResult{
		Response:       msgPtr(stateMessage(mg, playerID)),
		Broadcasts:     []protocol.Message{protocol.NewBuildingChanged(data)},
		BroadcastState: true,
	}
}

func (h *MessageHandler) handleBuildHotel(playerID string, req protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}
	position, errRes := decodePosition(req)
	if errRes != nil {
		return *errRes
	}

	msg, ok := mg.Game.BuildHotel(playerID, position)
	if !ok {
		return errorResult(msg, "BUILD_HOTEL_FAILED")
	}

	prop := mg.Game.Board().Property(position)
	data := protocol.BuildingChangedData{
		PlayerID:     playerID,
		PlayerName:   playerName(mg.Game, playerID),
		PropertyName: "Unknown",
		Position:     position,
		Action:       protocol.BuiltHotel,
		HasHotel:     true,
	}
	if prop != nil {
		data.PropertyName = prop.Name
	}

	return HandleResult{
		Response:       msgPtr(stateMessage(mg, playerID)),
		Broadcasts:     []protocol.Message{protocol.NewBuildingChanged(data)},
		BroadcastState: true,
	}
}

func (h *MessageHandler) handleSellBuilding(playerID string, req protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}
	position, errRes := decodePosition(req)
	if errRes != nil {
		return *errRes
	}

	buildingType, msg, ok := mg.Game.SellBuilding(playerID, position)
	if !ok {
		return errorResult(msg, "SELL_BUILDING_FAILED")
	}

	action := protocol.SoldHouse
	if buildingType == "hotel" {
		action = protocol.SoldHotel
	}

	prop := mg.Game.Board().Property(position)
	data := protocol.BuildingChangedData{
		PlayerID:     playerID,
		PlayerName:   playerName(mg.Game, playerID),
		PropertyName: "Unknown",
		Position:     position,
		Action:       action,
	}
	if prop != nil {
		data.PropertyName = prop.Name
		data.Houses = prop.Houses
		data.HasHotel = prop.HasHotel
	}

	return HandleResult{
		Response:       msgPtr(stateMessage(mg, playerID)),
		Broadcasts:     []protocol.Message{protocol.NewBuildingChanged(data)},
		BroadcastState: true,
	}
}

func (h *MessageHandler) handleMortgage(playerID string, req protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}
	position, errRes := decodePosition(req)
	if errRes != nil {
		return *errRes
	}

	msg, ok := mg.Game.MortgageProperty(playerID, position)
	if !ok {
		return errorResult(msg, "MORTGAGE_PROPERTY_FAILED")
	}

	prop := mg.Game.Board().Property(position)
	data := protocol.PropertyMortgagedData{
		PlayerID:     playerID,
		PlayerName:   playerName(mg.Game, playerID),
		PropertyName: "Unknown",
		Position:     position,
		IsMortgaged:  true,
	}
	if prop != nil {
		data.PropertyName = prop.Name
		data.Amount = prop.MortgageValue()
	}

	return HandleResult{
		Response:       msgPtr(stateMessage(mg, playerID)),
		Broadcasts:     []protocol.Message{protocol.NewPropertyMortgaged(data)},
		BroadcastState: true,
	}
}

func (h *MessageHandler) handleUnmortgage(playerID string, req protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}
	position, errRes := decodePosition(req)
	if errRes != nil {
		return *errRes
	}

	msg, ok := mg.Game.UnmortgageProperty(playerID, position)
	if !ok {
		return errorResult(msg, "UNMORTGAGE_PROPERTY_FAILED")
	}

	prop := mg.Game.Board().Property(position)
	data := protocol.PropertyMortgagedData{
		PlayerID:     playerID,
		PlayerName:   playerName(mg.Game, playerID),
		PropertyName: "Unknown",
		Position:     position,
		IsMortgaged:  false,
	}
	if prop != nil {
		data.PropertyName = prop.Name
		data.Amount = prop.UnmortgageCost()
	}

	return HandleResult{
		Response:       msgPtr(stateMessage(mg, playerID)),
		Broadcasts:     []protocol.Message{protocol.NewPropertyMortgaged(data)},
		BroadcastState: true,
	}
}

func (h *MessageHandler) handlePayBail(playerID string, _ protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}

	msg, ok := mg.Game.PayBail(playerID)
	if !ok {
		return errorResult(msg, "PAY_BAIL_FAILED")
	}

	return HandleResult{
		Response: msgPtr(stateMessage(mg, playerID)),
		Broadcasts: []protocol.Message{
			protocol.NewJailStatus(protocol.JailStatusData{
				PlayerID:   playerID,
				PlayerName: playerName(mg.Game, playerID),
				InJail:     false,
				Reason:     protocol.JailReasonPaidBail,
			}),
		},
		BroadcastState: true,
	}
}

func (h *MessageHandler) handleUseJailCard(playerID string, _ protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}

	msg, ok := mg.Game.UseJailCard(playerID)
	if !ok {
		return errorResult(msg, "USE_JAIL_CARD_FAILED")
	}

	return HandleResult{
		Response: msgPtr(stateMessage(mg, playerID)),
		Broadcasts: []protocol.Message{
			protocol.NewJailStatus(protocol.JailStatusData{
				PlayerID:   playerID,
				PlayerName: playerName(mg.Game, playerID),
				InJail:     false,
				Reason:     protocol.JailReasonUsedCard,
			}),
		},
		BroadcastState: true,
	}
}

func (h *MessageHandler) handleEndTurn(playerID string, _ protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}

	previousID := ""
	previousName := "Unknown"
	if p := mg.Game.CurrentPlayer(); p != nil {
		previousID = p.ID
		previousName = p.Name
	}

	msg, ok := mg.Game.EndTurn(playerID)
	if !ok {
		return errorResult(msg, "END_TURN_FAILED")
	}

	var broadcasts []protocol.Message
	if mg.Game.Phase == game.PhaseGameOver {
		broadcasts = append(broadcasts, protocol.NewGameWon(protocol.GameWonData{
			WinnerID:   mg.Game.WinnerID,
			WinnerName: playerName(mg.Game, mg.Game.WinnerID),
		}))
	} else {
		currentID := ""
		currentName := "Unknown"
		if p := mg.Game.CurrentPlayer(); p != nil {
			currentID = p.ID
			currentName = p.Name
		}
		broadcasts = append(broadcasts, protocol.NewTurnEnded(protocol.TurnEndedData{
			PreviousPlayerID:   previousID,
			PreviousPlayerName: previousName,
			CurrentPlayerID:    currentID,
			CurrentPlayerName:  currentName,
			TurnNumber:         mg.Game.TurnNumber,
		}))
	}

	return HandleResult{
		Response:       msgPtr(stateMessage(mg, playerID)),
		Broadcasts:     broadcasts,
		BroadcastState: true,
		ShouldSave:     true,
	}
}

func (h *MessageHandler) handleBankruptcy(playerID string, req protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}

	var payload protocol.BankruptcyRequest
	if err := req.DecodeData(&payload); err != nil {
		return errorResult(fmt.Sprintf("Invalid message format: %v", err), "PARSE_ERROR")
	}

	name := playerName(mg.Game, playerID)
	creditorName := ""
	if payload.CreditorID != "" {
		creditorName = playerName(mg.Game, payload.CreditorID)
	}

	msg, ok := mg.Game.DeclareBankruptcy(playerID, payload.CreditorID)
	if !ok {
		return errorResult(msg, "BANKRUPTCY_FAILED")
	}

	broadcasts := []protocol.Message{
		protocol.NewPlayerBankrupt(protocol.PlayerBankruptData{
			PlayerID:     playerID,
			PlayerName:   name,
			CreditorID:   payload.CreditorID,
			CreditorName: creditorName,
		}),
	}
	if mg.Game.Phase == game.PhaseGameOver {
		broadcasts = append(broadcasts, protocol.NewGameWon(protocol.GameWonData{
			WinnerID:   mg.Game.WinnerID,
			WinnerName: playerName(mg.Game, mg.Game.WinnerID),
		}))
	}

	return HandleResult{
		Response:       msgPtr(stateMessage(mg, playerID)),
		Broadcasts:     broadcasts,
		BroadcastState: true,
		ShouldSave:     true,
	}
}

func (h *MessageHandler) handleGetState(playerID string, _ protocol.Request) HandleResult {
	mg, errRes := h.playerGame(playerID)
	if errRes != nil {
		return *errRes
	}
	return responseResult(stateMessage(mg, playerID))
}

func msgPtr(msg protocol.Message) *protocol.Message {
	return &msg
}
