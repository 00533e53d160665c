package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"guildguard/internal/dispatcher"
	"guildguard/internal/policy"
	"guildguard/internal/snapshot"
)

// Platform adapts the gateway session and the raw REST executor into the
// narrow interfaces the response engine and snapshot store operate on.
// Bans take the pooled fasthttp path; everything else goes through the
// gateway library, which handles rate limits itself.
type Platform struct {
	session  *discordgo.Session
	executor *dispatcher.Executor
}

func NewPlatform(session *discordgo.Session, executor *dispatcher.Executor) *Platform {
	return &Platform{
		session:  session,
		executor: executor,
	}
}

func (p *Platform) BanMember(guildID, userID, reason string) error {
	return p.executor.Ban(guildID, userID, reason)
}

func (p *Platform) DeleteChannel(channelID, reason string) error {
	_, err := p.session.ChannelDelete(channelID, discordgo.WithAuditLogReason(reason))
	return err
}

func (p *Platform) DeleteRole(guildID, roleID, reason string) error {
	return p.session.GuildRoleDelete(guildID, roleID, discordgo.WithAuditLogReason(reason))
}

// guild returns the guild from the state cache, falling back to REST.
func (p *Platform) guild(guildID string) (*discordgo.Guild, error) {
	guild, err := p.session.State.Guild(guildID)
	if err == nil {
		return guild, nil
	}
	return p.session.Guild(guildID)
}

func (p *Platform) member(guildID, userID string) (*discordgo.Member, error) {
	member, err := p.session.State.Member(guildID, userID)
	if err == nil {
		return member, nil
	}
	return p.session.GuildMember(guildID, userID)
}

// topRolePosition returns the position of the member's highest role.
// A member with no roles sits at the @everyone position, 0.
func topRolePosition(guild *discordgo.Guild, member *discordgo.Member) int {
	highest := 0
	for _, roleID := range member.Roles {
		for _, role := range guild.Roles {
			if role.ID == roleID && role.Position > highest {
				highest = role.Position
			}
		}
	}
	return highest
}

// GuildInfo resolves the owner and our own top role position for gating.
func (p *Platform) GuildInfo(guildID string) (policy.GuildInfo, error) {
	guild, err := p.guild(guildID)
	if err != nil {
		return policy.GuildInfo{}, fmt.Errorf("failed to resolve guild %s: %w", guildID, err)
	}

	botRank := 0
	if p.session.State.User != nil {
		if me, err := p.member(guildID, p.session.State.User.ID); err == nil {
			botRank = topRolePosition(guild, me)
		}
	}

	return policy.GuildInfo{
		ID:             guild.ID,
		OwnerID:        guild.OwnerID,
		BotTopRoleRank: botRank,
	}, nil
}

// ActorRank returns the actor's top role position in the guild.
func (p *Platform) ActorRank(guildID, userID string) (int, error) {
	guild, err := p.guild(guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve guild %s: %w", guildID, err)
	}
	member, err := p.member(guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve member %s: %w", userID, err)
	}
	return topRolePosition(guild, member), nil
}

// EveryonePermissions reads the default role's permission bitset.
// The @everyone role shares the guild's ID.
func (p *Platform) EveryonePermissions(guildID string) (int64, error) {
	guild, err := p.guild(guildID)
	if err != nil {
		return 0, err
	}
	for _, role := range guild.Roles {
		if role.ID == guildID {
			return role.Permissions, nil
		}
	}
	return 0, fmt.Errorf("default role missing in guild %s", guildID)
}

func (p *Platform) TextChannelIDs(guildID string) ([]string, error) {
	guild, err := p.guild(guildID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, channel := range guild.Channels {
		if channel.Type == discordgo.ChannelTypeGuildText {
			ids = append(ids, channel.ID)
		}
	}
	return ids, nil
}

func (p *Platform) ChannelOverwrites(channelID string) ([]snapshot.Overwrite, error) {
	channel, err := p.session.State.Channel(channelID)
	if err != nil {
		channel, err = p.session.Channel(channelID)
		if err != nil {
			return nil, err
		}
	}

	overwrites := make([]snapshot.Overwrite, 0, len(channel.PermissionOverwrites))
	for _, ow := range channel.PermissionOverwrites {
		overwrites = append(overwrites, snapshot.Overwrite{
			TargetID: ow.ID,
			Type:     snapshot.OverwriteType(ow.Type),
			Allow:    ow.Allow,
			Deny:     ow.Deny,
		})
	}
	return overwrites, nil
}

func (p *Platform) SetEveryonePermissions(guildID string, permissions int64) error {
	_, err := p.session.GuildRoleEdit(guildID, guildID, &discordgo.RoleParams{
		Permissions: &permissions,
	})
	return err
}

func (p *Platform) ApplyChannelOverwrite(channelID string, ow snapshot.Overwrite) error {
	return p.session.ChannelPermissionSet(
		channelID,
		ow.TargetID,
		discordgo.PermissionOverwriteType(ow.Type),
		ow.Allow,
		ow.Deny,
	)
}

func (p *Platform) DeleteChannelOverwrite(channelID, targetID string) error {
	return p.session.ChannelPermissionDelete(channelID, targetID)
}
