package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	require.NoError(t, Initialize(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() {
		Close()
		globalDB = nil
	})
	return GetDB()
}

func TestIncidentRoundTrip(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.LogIncident(&Incident{
		GuildID:     "guild-1",
		ActorID:     "actor-1",
		Action:      "channel_create",
		Verdict:     "escalate",
		ActionTaken: "banned, restored",
	}))
	require.NoError(t, db.LogIncident(&Incident{
		GuildID:     "guild-1",
		ActorID:     "actor-2",
		Action:      "ban",
		Verdict:     "escalate",
		ActionTaken: "alerted",
	}))

	incidents, err := db.RecentIncidents("guild-1", 10)
	require.NoError(t, err)
	require.Len(t, incidents, 2)
	assert.Equal(t, "channel_create", incidents[0].Action)

	other, err := db.RecentIncidents("guild-2", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestBannedUserLifecycle(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.AddBannedUser("guild-1", "user-1", "Suspicious: channel_create"))
	assert.True(t, db.IsBannedUser("guild-1", "user-1"))
	assert.False(t, db.IsBannedUser("guild-2", "user-1"))

	// Re-banning the same user must not violate uniqueness.
	require.NoError(t, db.AddBannedUser("guild-1", "user-1", "Suspicious: role_create"))
	assert.True(t, db.IsBannedUser("guild-1", "user-1"))

	require.NoError(t, db.RemoveBannedUser("guild-1", "user-1"))
	assert.False(t, db.IsBannedUser("guild-1", "user-1"))
}

func TestIsConnected(t *testing.T) {
	openTestDB(t)
	assert.True(t, IsConnected())
}
