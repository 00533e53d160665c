package alerts

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"guildguard/internal/events"
	"guildguard/internal/logging"
)

const embedColorRed = 0xED4245

// Notifier posts structured notices to a guild's alert channel.
type Notifier struct {
	session  *discordgo.Session
	resolver *Resolver
}

func NewNotifier(session *discordgo.Session, resolver *Resolver) *Notifier {
	return &Notifier{
		session:  session,
		resolver: resolver,
	}
}

// Suspicious posts the initial detection notice for an escalated event.
// Returns false when no alert could be delivered; callers proceed with
// mitigation regardless.
func (n *Notifier) Suspicious(guildID string, evt events.Event) bool {
	channel := n.resolver.Resolve(guildID)
	if channel == nil {
		return false
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🚨 Suspicious Activity Detected",
		Description: fmt.Sprintf("Action: %s", evt.Type.Label()),
		Color:       embedColorRed,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "User",
				Value: fmt.Sprintf("<@%s> (`%s`)", evt.ActorID, evt.ActorID),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Guild Guard",
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if _, err := n.session.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		logging.Warn("[ALERTS] Failed to send alert in guild %s: %v", guildID, err)
		return false
	}
	return true
}

// ActionTaken posts a follow-up describing the outcome of mitigation.
func (n *Notifier) ActionTaken(guildID, message string) {
	channel := n.resolver.Resolve(guildID)
	if channel == nil {
		return
	}
	if _, err := n.session.ChannelMessageSend(channel.ID, fmt.Sprintf("Action taken: %s", message)); err != nil {
		logging.Warn("[ALERTS] Failed to send action notice in guild %s: %v", guildID, err)
	}
}
