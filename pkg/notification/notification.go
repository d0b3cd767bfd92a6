package notification

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/officehours/officehours/internal/event_bus"
	"github.com/officehours/officehours/pkg/schedule"
)

// DefaultUpdateMessage is used until an administrator sets another template.
const DefaultUpdateMessage = "📢 **Office Hours Updated**\n{user} {action} office hours: {details}"

// Settings controls where and how schedule updates are announced.
type Settings struct {
	UpdateMessage   string `json:"update_message"`
	UpdateChannelID string `json:"update_channel_id,omitempty"`
	UpdateRoleID    string `json:"update_role_id,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{UpdateMessage: DefaultUpdateMessage}
}

// UnmarshalJSON accepts ids stored as numbers as well as strings.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw struct {
		UpdateMessage   *string         `json:"update_message"`
		UpdateChannelID json.RawMessage `json:"update_channel_id"`
		UpdateRoleID    json.RawMessage `json:"update_role_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = DefaultSettings()
	if raw.UpdateMessage != nil && *raw.UpdateMessage != "" {
		s.UpdateMessage = *raw.UpdateMessage
	}
	s.UpdateChannelID = snowflake(raw.UpdateChannelID)
	s.UpdateRoleID = snowflake(raw.UpdateRoleID)
	return nil
}

func snowflake(raw json.RawMessage) string {
	value := strings.TrimSpace(string(raw))
	if value == "" || value == "null" {
		return ""
	}
	if unquoted, err := strconv.Unquote(value); err == nil {
		return unquoted
	}
	return value
}

// RenderMessage fills the {user}, {action} and {details} placeholders of template.
func RenderMessage(template string, update event_bus.ScheduleUpdated) string {
	user := update.Actor
	if user == "" {
		user = "Someone"
	}
	return strings.NewReplacer(
		"{user}", user,
		"{action}", update.Action,
		"{details}", update.Details,
	).Replace(template)
}

// FormatWeek renders a week as a bold title followed by a code block, one line per day.
func FormatWeek(title string, days []schedule.EffectiveDay) string {
	var b strings.Builder
	b.WriteString("**" + title + "**\n```\n")
	for _, day := range days {
		b.WriteString(day.Day + " (" + day.DateKey + "): " + day.DisplayTime() + "\n")
	}
	b.WriteString("```")
	return b.String()
}

// RoleMention returns the Discord mention markup for a role id.
func RoleMention(roleID string) string {
	return "<@&" + roleID + ">"
}
