package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildID = "100"
	ownerID = "1"
)

func TestAddAndContains(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Add(guildID, ownerID, ownerID, "42"))
	assert.True(t, r.Contains(guildID, "42"))
	assert.False(t, r.Contains("999", "42"))
}

func TestAddRejectsNonOwnerCaller(t *testing.T) {
	r := NewRegistry()

	err := r.Add(guildID, ownerID, "42", "43")
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Empty(t, r.List(guildID))
}

func TestAddOwnerIsRejected(t *testing.T) {
	r := NewRegistry()

	err := r.Add(guildID, ownerID, ownerID, ownerID)
	assert.ErrorIs(t, err, ErrOwnerImplicit)
	assert.Empty(t, r.List(guildID))
}

func TestRemove(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(guildID, ownerID, ownerID, "42"))

	require.NoError(t, r.Remove(guildID, ownerID, ownerID, "42"))
	assert.False(t, r.Contains(guildID, "42"))
}

func TestRemoveMissingUser(t *testing.T) {
	r := NewRegistry()

	assert.ErrorIs(t, r.Remove(guildID, ownerID, ownerID, "42"), ErrNotListed)

	require.NoError(t, r.Add(guildID, ownerID, ownerID, "43"))
	assert.ErrorIs(t, r.Remove(guildID, ownerID, ownerID, "42"), ErrNotListed)
}

func TestRemoveRejectsNonOwnerCaller(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(guildID, ownerID, ownerID, "42"))

	assert.ErrorIs(t, r.Remove(guildID, ownerID, "42", "42"), ErrNotOwner)
	assert.True(t, r.Contains(guildID, "42"))
}

func TestListIsSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(guildID, ownerID, ownerID, "30"))
	require.NoError(t, r.Add(guildID, ownerID, ownerID, "10"))
	require.NoError(t, r.Add(guildID, ownerID, ownerID, "20"))

	assert.Equal(t, []string{"10", "20", "30"}, r.List(guildID))
}
