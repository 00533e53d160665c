package whitelist

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNotOwner is returned when a mutation is attempted on behalf of
	// anyone other than the guild owner.
	ErrNotOwner = errors.New("only the guild owner can modify the whitelist")

	// ErrOwnerImplicit is returned when adding the owner, who is always
	// exempt and never stored.
	ErrOwnerImplicit = errors.New("the guild owner is automatically whitelisted")

	// ErrNotListed is returned when removing a user that is not present.
	ErrNotListed = errors.New("user is not in the whitelist")
)

// Registry holds the per-guild sets of users exempt from punitive action.
// Entries live in process memory only; they are lost on restart.
type Registry struct {
	mu     sync.RWMutex
	guilds map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		guilds: make(map[string]map[string]struct{}),
	}
}

// Add exempts userID in guildID. The caller identity is checked again
// here even though the command layer already gates on ownership.
func (r *Registry) Add(guildID, ownerID, callerID, userID string) error {
	if callerID != ownerID {
		return ErrNotOwner
	}
	if userID == ownerID {
		return ErrOwnerImplicit
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.guilds[guildID]
	if !ok {
		set = make(map[string]struct{})
		r.guilds[guildID] = set
	}
	set[userID] = struct{}{}
	return nil
}

// Remove revokes userID's exemption in guildID.
func (r *Registry) Remove(guildID, ownerID, callerID, userID string) error {
	if callerID != ownerID {
		return ErrNotOwner
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.guilds[guildID]
	if !ok {
		return ErrNotListed
	}
	if _, listed := set[userID]; !listed {
		return ErrNotListed
	}
	delete(set, userID)
	return nil
}

// List returns the explicitly whitelisted users for a guild, sorted for
// stable output. The implicit owner exemption is not included.
func (r *Registry) List(guildID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.guilds[guildID]
	users := make([]string, 0, len(set))
	for id := range set {
		users = append(users, id)
	}
	sort.Strings(users)
	return users
}

// Contains reports whether userID is explicitly whitelisted in guildID.
func (r *Registry) Contains(guildID, userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.guilds[guildID]
	if !ok {
		return false
	}
	_, listed := set[userID]
	return listed
}
