package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_RequiredPartySize(t *testing.T) {
	testCases := []struct {
		format   Format
		size     int
		isTeam   bool
		maxCount int
	}{
		{FormatOneVOne, 0, false, 2},
		{FormatFourVFour, 4, true, 8},
		{FormatFiveVFive, 5, true, 10},
		{Format("ffa"), 0, false, 0},
	}

	for _, tc := range testCases {
		t.Run(string(tc.format), func(t *testing.T) {
			assert.Equal(t, tc.size, tc.format.RequiredPartySize())
			assert.Equal(t, tc.isTeam, tc.format.IsTeam())
			assert.Equal(t, tc.maxCount, tc.format.MaxPlayers())
		})
	}
}

func TestGame_Opponents(t *testing.T) {
	game := Game{Players: []string{"alice", "bob"}}

	assert.Equal(t, []string{"bob"}, game.Opponents("alice"))
	assert.Equal(t, []string{"alice", "bob"}, game.Opponents("carol"))
	assert.Empty(t, (&Game{Players: []string{"alice"}}).Opponents("alice"))
}

func TestGame_Membership(t *testing.T) {
	game := Game{Players: []string{"a", "b"}, ReadyPlayers: []string{"a"}, MaxPlayers: 2}

	assert.True(t, game.HasPlayer("b"))
	assert.False(t, game.HasPlayer("c"))
	assert.True(t, game.IsReady("a"))
	assert.False(t, game.IsReady("b"))
	assert.True(t, game.IsFull())
}

func TestParty_Helpers(t *testing.T) {
	party := Party{ID: "p1", CreatorID: "alice", Members: []string{"alice", "bob"}}

	assert.Equal(t, 2, party.Size())
	assert.True(t, party.HasMember("bob"))
	assert.True(t, party.IsCreator("alice"))
	assert.False(t, party.IsCreator("bob"))
}

func TestTimestamp_UnmarshalNaive(t *testing.T) {
	var ts Timestamp
	err := json.Unmarshal([]byte(`"2024-05-01T12:30:45.123456"`), &ts)

	require.NoError(t, err)
	assert.Equal(t, time.UTC, ts.Location())
	assert.Equal(t, 2024, ts.Year())
	assert.Equal(t, 45, ts.Second())
	assert.Equal(t, 123456000, ts.Nanosecond())
}

func TestTimestamp_UnmarshalRFC3339(t *testing.T) {
	var ts Timestamp
	err := json.Unmarshal([]byte(`"2024-05-01T14:30:45+02:00"`), &ts)

	require.NoError(t, err)
	assert.Equal(t, 12, ts.Hour())
}

func TestTimestamp_NullAndInvalid(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())

	err := json.Unmarshal([]byte(`"yesterday"`), &ts)
	assert.Error(t, err)
}

func TestTimestamp_RoundTripInGame(t *testing.T) {
	expires := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	game := Game{ID: "g1", Format: FormatOneVOne, ExpiresAt: NewTimestamp(expires)}

	data, err := json.Marshal(game)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"expires_at":"2024-05-01T13:00:00Z"`)

	var decoded Game
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, expires.Equal(decoded.ExpiresAt.Time))
}
