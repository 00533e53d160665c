package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func resolveGuild(s *discordgo.Session, guildID string) (*discordgo.Guild, error) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		guild, err = s.Guild(guildID)
		if err != nil {
			return nil, fmt.Errorf("failed to get guild: %w", err)
		}
	}
	return guild, nil
}

// checkAdministrator reports whether the invoking member is the guild
// owner or carries the Administrator permission.
func checkAdministrator(s *discordgo.Session, i *discordgo.InteractionCreate) (bool, error) {
	guild, err := resolveGuild(s, i.GuildID)
	if err != nil {
		return false, err
	}

	if i.Member.User.ID == guild.OwnerID {
		return true, nil
	}

	permissions, err := s.State.UserChannelPermissions(i.Member.User.ID, i.ChannelID)
	if err != nil {
		permissions, err = s.UserChannelPermissions(i.Member.User.ID, i.ChannelID)
		if err != nil {
			return false, fmt.Errorf("failed to get permissions: %w", err)
		}
	}

	return permissions&discordgo.PermissionAdministrator != 0, nil
}

// checkOwnerOnly reports whether the invoking member owns the guild.
func checkOwnerOnly(s *discordgo.Session, i *discordgo.InteractionCreate) (bool, error) {
	guild, err := resolveGuild(s, i.GuildID)
	if err != nil {
		return false, err
	}
	return i.Member.User.ID == guild.OwnerID, nil
}
