package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	raw := []byte(`{"type":"BUILD_HOUSE","data":{"position":11},"request_id":"r1"}`)

	req, err := ParseRequest(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeBuildHouse, req.Type)
	assert.Equal(t, "r1", req.RequestID)

	var payload PositionRequest
	require.NoError(t, req.DecodeData(&payload))
	require.NotNil(t, payload.Position)
	assert.Equal(t, 11, *payload.Position)
}

func TestParseRequestMissingPosition(t *testing.T) {
	req, err := ParseRequest([]byte(`{"type":"BUILD_HOUSE","data":{}}`))
	require.NoError(t, err)

	var payload PositionRequest
	require.NoError(t, req.DecodeData(&payload))
	assert.Nil(t, payload.Position, "absent position stays nil")
}

func TestParseRequestRejectsGarbage(t *testing.T) {
	_, err := ParseRequest([]byte(`{not json`))
	assert.Error(t, err)

	_, err = ParseRequest([]byte(`{"data":{}}`))
	assert.Error(t, err, "type is required")
}

func TestErrorMessageShape(t *testing.T) {
	raw, err := NewError("You are not in a game", "NOT_IN_GAME").Encode()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "ERROR", decoded["type"])

	data := decoded["data"].(map[string]interface{})
	assert.Equal(t, "You are not in a game", data["message"])
	assert.Equal(t, "NOT_IN_GAME", data["code"])
}

func TestDiceRolledWireShape(t *testing.T) {
	msg := NewDiceRolled(DiceRolledData{
		PlayerID:   "p1",
		PlayerName: "alice",
		Die1:       3,
		Die2:       3,
		Total:      6,
		IsDouble:   true,
	})
	raw, err := msg.Encode()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	data := decoded["data"].(map[string]interface{})
	for _, key := range []string{"player_id", "player_name", "die1", "die2", "total", "is_double", "result_message"} {
		assert.Contains(t, data, key)
	}
	assert.Equal(t, true, data["is_double"])
}

func TestRequestIDRoundTrip(t *testing.T) {
	msg := NewGameList(nil)
	msg.RequestID = "abc-123"

	raw, err := msg.Encode()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "abc-123", decoded["request_id"])

	data := decoded["data"].(map[string]interface{})
	games, ok := data["games"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, games, "nil list serializes as an empty array")
}

func TestGameSettingsDefaults(t *testing.T) {
	s := DefaultSettings()
	assert.False(t, s.AllowSpectators)
	assert.Equal(t, 1500, s.StartingMoney)
	assert.Equal(t, 200, s.SalaryAmount)
	assert.Equal(t, 4, s.MaxPlayers)

	var partial GameSettings
	require.NoError(t, json.Unmarshal([]byte(`{"allow_spectators":true,"max_players":3}`), &partial))
	partial.ApplyDefaults()
	assert.True(t, partial.AllowSpectators)
	assert.Equal(t, 3, partial.MaxPlayers)
	assert.Equal(t, 1500, partial.StartingMoney)
	assert.Equal(t, 200, partial.SalaryAmount)
}
