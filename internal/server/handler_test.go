package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openmonopoly/monopoly-server-go/internal/game"
	"github.com/openmonopoly/monopoly-server-go/internal/lobby"
	"github.com/openmonopoly/monopoly-server-go/internal/protocol"
	"github.com/openmonopoly/monopoly-server-go/internal/repository"
	"github.com/openmonopoly/monopoly-server-go/internal/session"
)

// fakeConn records frames instead of writing to a socket.
type fakeConn struct {
	frames [][]byte
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) Close() error { return nil }

// scriptedRoller returns a fixed sequence of rolls, cycling when exhausted.
type scriptedRoller struct {
	rolls []game.DiceResult
	next  int
}

func (r *scriptedRoller) Roll() game.DiceResult {
	roll := r.rolls[r.next%len(r.rolls)]
	r.next++
	return roll
}

type fixture struct {
	games    *lobby.Manager
	sessions *session.Manager
	handler  *MessageHandler
	conns    map[string]*fakeConn
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	games := lobby.NewManager(repository.NewMemoryStore(), 0, logger)
	sessions := session.NewManager(logger)
	return &fixture{
		games:    games,
		sessions: sessions,
		handler:  NewMessageHandler(games, sessions, logger),
		conns:    make(map[string]*fakeConn),
	}
}

func (f *fixture) connect(playerID, playerName string) {
	conn := &fakeConn{}
	f.conns[playerID] = conn
	f.sessions.Connect(conn, playerID, playerName)
}

func request(t *testing.T, msgType protocol.MessageType, payload interface{}) protocol.Request {
	t.Helper()

	req := protocol.Request{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		req.Data = raw
	}
	return req
}

func errorCode(t *testing.T, result HandleResult) string {
	t.Helper()

	require.NotNil(t, result.Response)
	require.Equal(t, protocol.TypeError, result.Response.Type)
	data, ok := result.Response.Data.(protocol.ErrorData)
	require.True(t, ok)
	return data.Code
}

// startedGame creates a two player game and starts it. It returns the
// id of the player whose turn it is and the id of the other player.
func (f *fixture) startedGame(t *testing.T) (string, string, *lobby.ManagedGame) {
	t.Helper()

	f.connect("host", "Alice")
	f.connect("guest", "Bob")

	result := f.handler.Handle("host", request(t, protocol.TypeCreateGame,
		protocol.CreateGameRequest{GameName: "Friday Night", PlayerName: "Alice"}))
	require.NotNil(t, result.Response)
	require.Equal(t, protocol.TypeGameState, result.Response.Type)

	mg := f.games.GameForPlayer("host")
	require.NotNil(t, mg)

	result = f.handler.Handle("guest", request(t, protocol.TypeJoinGame,
		protocol.JoinGameRequest{GameID: mg.Game.ID, PlayerName: "Bob"}))
	require.Equal(t, protocol.TypeGameState, result.Response.Type)

	result = f.handler.Handle("host", request(t, protocol.TypeStartGame, nil))
	require.Equal(t, protocol.TypeGameState, result.Response.Type)

	current := mg.Game.CurrentPlayer()
	require.NotNil(t, current)
	other := "host"
	if current.ID == "host" {
		other = "guest"
	}
	return current.ID, other, mg
}

func TestCreateGameReturnsState(t *testing.T) {
	f := newFixture(t)
	f.connect("p1", "Alice")

	result := f.handler.Handle("p1", request(t, protocol.TypeCreateGame,
		protocol.CreateGameRequest{GameName: "My Game", PlayerName: "Alice"}))

	require.NotNil(t, result.Response)
	assert.Equal(t, protocol.TypeGameState, result.Response.Type)
	assert.Empty(t, result.Broadcasts)

	mg := f.games.GameForPlayer("p1")
	require.NotNil(t, mg)
	assert.Equal(t, "p1", mg.HostPlayerID)
	assert.True(t, f.sessions.IsInGame("p1", mg.Game.ID))
}

func TestJoinGameBroadcastsAndPushesState(t *testing.T) {
	f := newFixture(t)
	f.connect("p1", "Alice")
	f.connect("p2", "Bob")

	f.handler.Handle("p1", request(t, protocol.TypeCreateGame,
		protocol.CreateGameRequest{GameName: "My Game", PlayerName: "Alice"}))
	mg := f.games.GameForPlayer("p1")

	result := f.handler.Handle("p2", request(t, protocol.TypeJoinGame,
		protocol.JoinGameRequest{GameID: mg.Game.ID, PlayerName: "Bob"}))

	require.NotNil(t, result.Response)
	assert.Equal(t, protocol.TypeGameState, result.Response.Type)
	require.Len(t, result.Broadcasts, 1)
	assert.Equal(t, protocol.TypeJoinGame, result.Broadcasts[0].Type)
	assert.True(t, result.BroadcastState)
}

func TestJoinGameRequiresGameID(t *testing.T) {
	f := newFixture(t)
	f.connect("p1", "Alice")

	result := f.handler.Handle("p1", request(t, protocol.TypeJoinGame,
		protocol.JoinGameRequest{PlayerName: "Alice"}))

	assert.Equal(t, "MISSING_GAME_ID", errorCode(t, result))
}

func TestActionsRequireGame(t *testing.T) {
	f := newFixture(t)
	f.connect("p1", "Alice")

	result := f.handler.Handle("p1", request(t, protocol.TypeRollDice, nil))
	assert.Equal(t, "NOT_IN_GAME", errorCode(t, result))

	result = f.handler.Handle("p1", request(t, protocol.TypeEndTurn, nil))
	assert.Equal(t, "NOT_IN_GAME", errorCode(t, result))
}

func TestUnknownMessageType(t *testing.T) {
	f := newFixture(t)
	f.connect("p1", "Alice")

	result := f.handler.Handle("p1", protocol.Request{Type: "DANCE"})
	assert.Equal(t, "UNKNOWN_MESSAGE_TYPE", errorCode(t, result))
}

func TestBuildHouseRequiresPosition(t *testing.T) {
	f := newFixture(t)
	current, _, _ := f.startedGame(t)

	result := f.handler.Handle(current, request(t, protocol.TypeBuildHouse, map[string]int{}))
	assert.Equal(t, "MISSING_POSITION", errorCode(t, result))
}

func TestRequestIDPreserved(t *testing.T) {
	f := newFixture(t)
	f.connect("p1", "Alice")

	req := request(t, protocol.TypeListGames, nil)
	req.RequestID = "req-42"

	result := f.handler.Handle("p1", req)
	require.NotNil(t, result.Response)
	assert.Equal(t, "req-42", result.Response.RequestID)
}

func TestRollBuyAndEndTurn(t *testing.T) {
	f := newFixture(t)
	current, other, mg := f.startedGame(t)

	// Lands on Baltic Avenue.
	mg.Game.SetDice(&scriptedRoller{rolls: []game.DiceResult{{Die1: 1, Die2: 2}}})

	result := f.handler.Handle(current, request(t, protocol.TypeRollDice, nil))
	require.NotNil(t, result.Response)
	assert.Equal(t, protocol.TypeGameState, result.Response.Type)
	require.NotEmpty(t, result.Broadcasts)
	assert.Equal(t, protocol.TypeDiceRolled, result.Broadcasts[0].Type)
	assert.True(t, result.BroadcastState)

	rolled, ok := result.Broadcasts[0].Data.(protocol.DiceRolledData)
	require.True(t, ok)
	assert.Equal(t, 3, rolled.Total)
	assert.False(t, rolled.IsDouble)

	result = f.handler.Handle(current, request(t, protocol.TypeBuyProperty, nil))
	require.NotNil(t, result.Response)
	assert.Equal(t, protocol.TypeGameState, result.Response.Type)
	require.Len(t, result.Broadcasts, 1)
	assert.Equal(t, protocol.TypePropertyBought, result.Broadcasts[0].Type)

	bought, ok := result.Broadcasts[0].Data.(protocol.PropertyBoughtData)
	require.True(t, ok)
	assert.Equal(t, "Baltic Avenue", bought.PropertyName)
	assert.Equal(t, 3, bought.Position)

	result = f.handler.Handle(current, request(t, protocol.TypeEndTurn, nil))
	require.Len(t, result.Broadcasts, 1)
	assert.Equal(t, protocol.TypeTurnEnded, result.Broadcasts[0].Type)
	assert.True(t, result.ShouldSave)

	ended, ok := result.Broadcasts[0].Data.(protocol.TurnEndedData)
	require.True(t, ok)
	assert.Equal(t, current, ended.PreviousPlayerID)
	assert.Equal(t, other, ended.CurrentPlayerID)
}

func TestRollOutOfTurnFails(t *testing.T) {
	f := newFixture(t)
	_, other, _ := f.startedGame(t)

	result := f.handler.Handle(other, request(t, protocol.TypeRollDice, nil))
	assert.Equal(t, "ROLL_DICE_FAILED", errorCode(t, result))
}

func TestKickSendsKickedToTarget(t *testing.T) {
	f := newFixture(t)
	f.connect("host", "Alice")
	f.connect("guest", "Bob")

	f.handler.Handle("host", request(t, protocol.TypeCreateGame,
		protocol.CreateGameRequest{GameName: "My Game", PlayerName: "Alice"}))
	mg := f.games.GameForPlayer("host")
	f.handler.Handle("guest", request(t, protocol.TypeJoinGame,
		protocol.JoinGameRequest{GameID: mg.Game.ID, PlayerName: "Bob"}))

	result := f.handler.Handle("host", request(t, protocol.TypeKickPlayer,
		protocol.TargetPlayerRequest{PlayerID: "guest"}))

	require.NotNil(t, result.Response)
	assert.Equal(t, protocol.TypeGameState, result.Response.Type)
	require.Len(t, result.Broadcasts, 1)
	assert.Equal(t, protocol.TypeKickPlayer, result.Broadcasts[0].Type)

	assert.Empty(t, f.sessions.GameID("guest"))
	assert.Nil(t, f.games.GameForPlayer("guest"))

	// The last frame sent to the target is the KICKED error.
	frames := f.conns["guest"].frames
	require.NotEmpty(t, frames)
	var decoded struct {
		Type string `json:"type"`
		Data struct {
			Code string `json:"code"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frames[len(frames)-1], &decoded))
	assert.Equal(t, string(protocol.TypeError), decoded.Type)
	assert.Equal(t, "KICKED", decoded.Data.Code)
}

func TestKickRequiresHost(t *testing.T) {
	f := newFixture(t)
	f.connect("host", "Alice")
	f.connect("guest", "Bob")

	f.handler.Handle("host", request(t, protocol.TypeCreateGame,
		protocol.CreateGameRequest{GameName: "My Game", PlayerName: "Alice"}))
	mg := f.games.GameForPlayer("host")
	f.handler.Handle("guest", request(t, protocol.TypeJoinGame,
		protocol.JoinGameRequest{GameID: mg.Game.ID, PlayerName: "Bob"}))

	result := f.handler.Handle("guest", request(t, protocol.TypeKickPlayer,
		protocol.TargetPlayerRequest{PlayerID: "host"}))
	assert.Equal(t, "KICK_PLAYER_FAILED", errorCode(t, result))
}

func TestTransferHost(t *testing.T) {
	f := newFixture(t)
	f.connect("host", "Alice")
	f.connect("guest", "Bob")

	f.handler.Handle("host", request(t, protocol.TypeCreateGame,
		protocol.CreateGameRequest{GameName: "My Game", PlayerName: "Alice"}))
	mg := f.games.GameForPlayer("host")
	f.handler.Handle("guest", request(t, protocol.TypeJoinGame,
		protocol.JoinGameRequest{GameID: mg.Game.ID, PlayerName: "Bob"}))

	result := f.handler.Handle("guest", request(t, protocol.TypeTransferHost,
		protocol.TargetPlayerRequest{PlayerID: "guest"}))
	assert.Equal(t, "NOT_HOST", errorCode(t, result))

	result = f.handler.Handle("host", request(t, protocol.TypeTransferHost,
		protocol.TargetPlayerRequest{PlayerID: "stranger"}))
	assert.Equal(t, "PLAYER_NOT_FOUND", errorCode(t, result))

	result = f.handler.Handle("host", request(t, protocol.TypeTransferHost,
		protocol.TargetPlayerRequest{PlayerID: "guest"}))
	require.Len(t, result.Broadcasts, 1)
	assert.Equal(t, protocol.TypeTransferHost, result.Broadcasts[0].Type)
	assert.Equal(t, "guest", mg.HostPlayerID)
}

func TestLeaveGameBeforeStartDoesNotSave(t *testing.T) {
	f := newFixture(t)
	f.connect("host", "Alice")
	f.connect("guest", "Bob")

	f.handler.Handle("host", request(t, protocol.TypeCreateGame,
		protocol.CreateGameRequest{GameName: "My Game", PlayerName: "Alice"}))
	mg := f.games.GameForPlayer("host")
	f.handler.Handle("guest", request(t, protocol.TypeJoinGame,
		protocol.JoinGameRequest{GameID: mg.Game.ID, PlayerName: "Bob"}))

	result := f.handler.Handle("guest", request(t, protocol.TypeLeaveGame, nil))

	require.NotNil(t, result.Response)
	assert.Equal(t, protocol.TypeLeaveGame, result.Response.Type)
	assert.False(t, result.ShouldSave)
	require.Len(t, result.Broadcasts, 1)
	assert.Equal(t, protocol.TypeLeaveGame, result.Broadcasts[0].Type)
	assert.Nil(t, f.games.GameForPlayer("guest"))
}

func TestLeaveStartedGameSaves(t *testing.T) {
	f := newFixture(t)
	current, _, _ := f.startedGame(t)

	result := f.handler.Handle(current, request(t, protocol.TypeLeaveGame, nil))
	assert.True(t, result.ShouldSave)
}

func TestGetState(t *testing.T) {
	f := newFixture(t)
	current, _, _ := f.startedGame(t)

	result := f.handler.Handle(current, request(t, protocol.TypeGameState, nil))
	require.NotNil(t, result.Response)
	assert.Equal(t, protocol.TypeGameState, result.Response.Type)
	assert.Empty(t, result.Broadcasts)
	assert.False(t, result.ShouldSave)
}

func TestListGamesShowsJoinable(t *testing.T) {
	f := newFixture(t)
	f.connect("host", "Alice")
	f.connect("p2", "Bob")

	f.handler.Handle("host", request(t, protocol.TypeCreateGame,
		protocol.CreateGameRequest{GameName: "Open Table", PlayerName: "Alice"}))

	result := f.handler.Handle("p2", request(t, protocol.TypeListGames, nil))
	require.NotNil(t, result.Response)
	require.Equal(t, protocol.TypeGameList, result.Response.Type)

	data, ok := result.Response.Data.(protocol.GameListData)
	require.True(t, ok)
	require.Len(t, data.Games, 1)
	assert.Equal(t, "Open Table", data.Games[0].Name)
	assert.Equal(t, 1, data.Games[0].PlayerCount)
}

func TestStartGameRequiresHost(t *testing.T) {
	f := newFixture(t)
	f.connect("host", "Alice")
	f.connect("guest", "Bob")

	f.handler.Handle("host", request(t, protocol.TypeCreateGame,
		protocol.CreateGameRequest{GameName: "My Game", PlayerName: "Alice"}))
	mg := f.games.GameForPlayer("host")
	f.handler.Handle("guest", request(t, protocol.TypeJoinGame,
		protocol.JoinGameRequest{GameID: mg.Game.ID, PlayerName: "Bob"}))

	result := f.handler.Handle("guest", request(t, protocol.TypeStartGame, nil))
	assert.Equal(t, "START_GAME_FAILED", errorCode(t, result))

	result = f.handler.Handle("host", request(t, protocol.TypeStartGame, nil))
	require.NotNil(t, result.Response)
	assert.Equal(t, protocol.TypeGameState, result.Response.Type)
	require.Len(t, result.Broadcasts, 1)
	assert.Equal(t, protocol.TypeGameStarted, result.Broadcasts[0].Type)
	assert.True(t, result.ShouldSave)
}
