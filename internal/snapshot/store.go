package snapshot

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"guildguard/internal/logging"
)

// ErrNoSnapshot is returned by Restore when no baseline has been captured
// for the guild.
var ErrNoSnapshot = errors.New("no permission snapshot captured for guild")

// OverwriteType mirrors the platform's overwrite target kinds.
type OverwriteType int

const (
	OverwriteRole OverwriteType = iota
	OverwriteMember
)

// Overwrite is one channel-scoped permission exception.
type Overwrite struct {
	TargetID string
	Type     OverwriteType
	Allow    int64
	Deny     int64
}

// Editor is the slice of the platform the store reads and writes
// permission state through.
type Editor interface {
	EveryonePermissions(guildID string) (int64, error)
	TextChannelIDs(guildID string) ([]string, error)
	ChannelOverwrites(channelID string) ([]Overwrite, error)
	SetEveryonePermissions(guildID string, permissions int64) error
	ApplyChannelOverwrite(channelID string, ow Overwrite) error
	DeleteChannelOverwrite(channelID, targetID string) error
}

// Snapshot is a guild's known-good permission baseline: the default-role
// permission bitset plus every text channel's ordered overwrite list.
type Snapshot struct {
	GuildID  string
	TakenAt  time.Time
	Everyone int64
	Channels map[string][]Overwrite
}

// Store keeps at most one snapshot per guild for the lifetime of the
// process. Capture and restore for the same guild are serialized by a
// per-guild lock so a burst of concurrent first triggers still produces
// exactly one baseline.
type Store struct {
	editor Editor

	mu     sync.Mutex
	guilds map[string]*guildState
}

type guildState struct {
	mu   sync.Mutex
	snap *Snapshot
}

func NewStore(editor Editor) *Store {
	return &Store{
		editor: editor,
		guilds: make(map[string]*guildState),
	}
}

func (s *Store) guild(guildID string) *guildState {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guilds[guildID]
	if !ok {
		g = &guildState{}
		s.guilds[guildID] = g
	}
	return g
}

// Has reports whether a baseline exists for the guild.
func (s *Store) Has(guildID string) bool {
	g := s.guild(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snap != nil
}

// Get returns the stored baseline, or nil.
func (s *Store) Get(guildID string) *Snapshot {
	g := s.guild(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snap
}

// CaptureIfAbsent records the guild's current permission state as its
// baseline. If a baseline already exists the call is a no-op. One
// overwrite read is issued per text channel, so cost scales with channel
// count.
func (s *Store) CaptureIfAbsent(guildID string) error {
	g := s.guild(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.snap != nil {
		return nil
	}

	everyone, err := s.editor.EveryonePermissions(guildID)
	if err != nil {
		return fmt.Errorf("failed to read default role permissions: %w", err)
	}

	channelIDs, err := s.editor.TextChannelIDs(guildID)
	if err != nil {
		return fmt.Errorf("failed to list text channels: %w", err)
	}

	channels := make(map[string][]Overwrite, len(channelIDs))
	for _, channelID := range channelIDs {
		overwrites, err := s.editor.ChannelOverwrites(channelID)
		if err != nil {
			return fmt.Errorf("failed to read overwrites for channel %s: %w", channelID, err)
		}
		channels[channelID] = overwrites
	}

	g.snap = &Snapshot{
		GuildID:  guildID,
		TakenAt:  time.Now(),
		Everyone: everyone,
		Channels: channels,
	}

	logging.Info("[SNAPSHOT] Captured baseline for guild %s (%d channels)", guildID, len(channels))
	return nil
}

// Restore resets the guild's default-role permissions and per-channel
// overwrites back to the stored baseline. Each channel's overwrite list
// is made exactly the snapshotted set: overwrites added after capture
// are deleted before the baseline is re-applied, so a lockdown built
// from new deny overwrites does not survive. Any platform error aborts
// the restore; edits applied before the failure are left in place and
// the error is reported to the caller. The baseline itself is retained
// after a restore.
func (s *Store) Restore(guildID string) error {
	g := s.guild(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.snap == nil {
		return ErrNoSnapshot
	}

	if err := s.editor.SetEveryonePermissions(guildID, g.snap.Everyone); err != nil {
		return fmt.Errorf("failed to restore default role permissions: %w", err)
	}

	channelIDs, err := s.editor.TextChannelIDs(guildID)
	if err != nil {
		return fmt.Errorf("failed to list text channels: %w", err)
	}

	for _, channelID := range channelIDs {
		baseline, ok := g.snap.Channels[channelID]
		if !ok {
			continue
		}

		current, err := s.editor.ChannelOverwrites(channelID)
		if err != nil {
			return fmt.Errorf("failed to read overwrites for channel %s: %w", channelID, err)
		}
		for _, ow := range current {
			if inBaseline(baseline, ow) {
				continue
			}
			if err := s.editor.DeleteChannelOverwrite(channelID, ow.TargetID); err != nil {
				return fmt.Errorf("failed to remove overwrite on channel %s: %w", channelID, err)
			}
		}

		for _, ow := range baseline {
			if err := s.editor.ApplyChannelOverwrite(channelID, ow); err != nil {
				return fmt.Errorf("failed to restore overwrite on channel %s: %w", channelID, err)
			}
		}
	}

	logging.Info("[SNAPSHOT] Restored baseline for guild %s", guildID)
	return nil
}

func inBaseline(baseline []Overwrite, ow Overwrite) bool {
	for _, b := range baseline {
		if b.TargetID == ow.TargetID && b.Type == ow.Type {
			return true
		}
	}
	return false
}
