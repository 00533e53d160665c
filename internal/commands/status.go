package commands

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"guildguard/internal/database"
)

var processStartTime = time.Now()

// handleStatus shows guard health plus host statistics. Stats gathering
// takes over a second (CPU sampling), so the response is deferred.
func (h *Handler) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		return err
	}

	embed := h.buildStatusEmbed(s, i.GuildID)
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	return err
}

func (h *Handler) buildStatusEmbed(s *discordgo.Session, guildID string) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{
			Name: "Guard",
			Value: fmt.Sprintf("**Uptime:** `%s`\n**Guilds:** `%d`\n**Latency:** `%dms`\n**Baseline saved:** `%t`\n**Database:** `%s`",
				formatDuration(time.Since(processStartTime)),
				h.profiles.Count(),
				s.HeartbeatLatency().Milliseconds(),
				h.snapshots.Has(guildID),
				map[bool]string{true: "connected", false: "unavailable"}[database.IsConnected()]),
			Inline: false,
		},
		{
			Name:   "Components",
			Value:  h.componentHealth(),
			Inline: false,
		},
	}

	if hostInfo, err := host.Info(); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Host",
			Value: fmt.Sprintf("**OS:** `%s/%s`\n**Uptime:** `%s`",
				hostInfo.OS, hostInfo.KernelArch,
				formatDuration(time.Duration(hostInfo.Uptime)*time.Second)),
			Inline: true,
		})
	}

	cpuValue := "unavailable"
	if cpuPercent, err := cpu.Percent(time.Second, false); err == nil && len(cpuPercent) > 0 {
		cpuValue = fmt.Sprintf("`%.1f%%` of %d threads", cpuPercent[0], runtime.NumCPU())
	}
	fields = append(fields, &discordgo.MessageEmbedField{
		Name:   "CPU",
		Value:  cpuValue,
		Inline: true,
	})

	if memInfo, err := mem.VirtualMemory(); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Memory",
			Value: fmt.Sprintf("`%s` / `%s` (%.1f%%)",
				formatBytes(memInfo.Used), formatBytes(memInfo.Total), memInfo.UsedPercent),
			Inline: true,
		})
	}

	fields = append(fields, &discordgo.MessageEmbedField{
		Name: "Runtime",
		Value: fmt.Sprintf("**Go:** `%s`\n**Goroutines:** `%d`",
			runtime.Version(), runtime.NumGoroutine()),
		Inline: true,
	})

	if value := recentIncidents(guildID); value != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Recent incidents",
			Value:  value,
			Inline: false,
		})
	}

	return &discordgo.MessageEmbed{
		Title:     "🛡️ Guard Status",
		Color:     0x00BFFF,
		Fields:    fields,
		Footer:    &discordgo.MessageEmbedFooter{Text: "Guild Guard"},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func recentIncidents(guildID string) string {
	db := database.GetDB()
	if db == nil {
		return ""
	}

	incidents, err := db.RecentIncidents(guildID, 5)
	if err != nil || len(incidents) == 0 {
		return ""
	}

	var b strings.Builder
	for _, inc := range incidents {
		fmt.Fprintf(&b, "`%s` by <@%s>: %s\n", inc.Action, inc.ActorID, inc.ActionTaken)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *Handler) componentHealth() string {
	if h.watchdog == nil {
		return "watchdog disabled"
	}

	status := h.watchdog.Status()
	if len(status) == 0 {
		return "no components registered"
	}

	var b strings.Builder
	for name, healthy := range status {
		mark := "✅"
		if !healthy {
			mark = "⚠️"
		}
		fmt.Fprintf(&b, "%s `%s`\n", mark, name)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
