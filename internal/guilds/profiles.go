package guilds

import "sync"

// Profile is the per-guild runtime state the engine tracks outside the
// platform's own cache: owner identity and the resolved alert channel.
type Profile struct {
	GuildID        string
	Name           string
	OwnerID        string
	MemberCount    int
	AlertChannelID string
}

// ProfileStore is the process-wide registry of guild profiles.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]*Profile),
	}
}

func (ps *ProfileStore) Get(guildID string) *Profile {
	ps.mu.RLock()
	profile := ps.profiles[guildID]
	ps.mu.RUnlock()

	if profile == nil {
		return ps.GetOrCreate(guildID)
	}
	return profile
}

func (ps *ProfileStore) GetOrCreate(guildID string) *Profile {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if profile, exists := ps.profiles[guildID]; exists {
		return profile
	}

	profile := &Profile{GuildID: guildID}
	ps.profiles[guildID] = profile
	return profile
}

// Update applies fn to the guild's profile under the store lock.
func (ps *ProfileStore) Update(guildID string, fn func(*Profile)) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	profile, exists := ps.profiles[guildID]
	if !exists {
		profile = &Profile{GuildID: guildID}
		ps.profiles[guildID] = profile
	}
	fn(profile)
}

func (ps *ProfileStore) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.profiles)
}
