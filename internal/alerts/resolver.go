package alerts

import (
	"github.com/bwmarrin/discordgo"

	"guildguard/internal/guilds"
	"guildguard/internal/logging"
)

// Resolver locates a guild's dedicated alert channel, provisioning it on
// first use. The channel is hidden from the default role and visible only
// to the engine's own account. The resolved ID is remembered on the guild
// profile so repeat alerts skip the channel scan.
type Resolver struct {
	session     *discordgo.Session
	profiles    *guilds.ProfileStore
	channelName string
}

func NewResolver(session *discordgo.Session, channelName string, profiles *guilds.ProfileStore) *Resolver {
	return &Resolver{
		session:     session,
		profiles:    profiles,
		channelName: channelName,
	}
}

// Resolve returns the guild's alert channel, or nil when it can neither
// be found nor created. Failures are logged and swallowed: alerting is
// best-effort and must never block the response flow.
func (r *Resolver) Resolve(guildID string) *discordgo.Channel {
	if id := r.profiles.Get(guildID).AlertChannelID; id != "" {
		if channel, err := r.session.State.Channel(id); err == nil {
			return channel
		}
	}

	guild, err := r.session.State.Guild(guildID)
	if err != nil {
		guild, err = r.session.Guild(guildID)
		if err != nil {
			logging.Warn("[ALERTS] Failed to fetch guild %s: %v", guildID, err)
			return nil
		}
	}

	for _, channel := range guild.Channels {
		if channel.Type == discordgo.ChannelTypeGuildText && channel.Name == r.channelName {
			r.remember(guildID, channel.ID)
			return channel
		}
	}

	// The @everyone role shares the guild's ID.
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    r.session.State.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel,
		},
	}

	channel, err := r.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 r.channelName,
		Type:                 discordgo.ChannelTypeGuildText,
		PermissionOverwrites: overwrites,
	}, discordgo.WithAuditLogReason("Security alert channel"))
	if err != nil {
		logging.Warn("[ALERTS] Failed to create alert channel in guild %s: %v", guildID, err)
		return nil
	}

	logging.Info("[ALERTS] Provisioned alert channel #%s in guild %s", r.channelName, guildID)
	r.remember(guildID, channel.ID)
	return channel
}

func (r *Resolver) remember(guildID, channelID string) {
	r.profiles.Update(guildID, func(p *guilds.Profile) {
		p.AlertChannelID = channelID
	})
}
