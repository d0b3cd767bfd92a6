package notification

import (
	"context"
	"fmt"

	"github.com/officehours/officehours/internal/event_bus"
	"github.com/officehours/officehours/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

// Sender delivers a message to a chat channel.
type Sender interface {
	SendMessage(ctx context.Context, channelID string, content string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, channelID string, content string) error

func (f SenderFunc) SendMessage(ctx context.Context, channelID string, content string) error {
	return f(ctx, channelID, content)
}

// Notifier announces schedule updates in the configured channel.
type Notifier struct {
	settings Service
	schedule schedule.Service
	sender   Sender
	title    string
}

func NewNotifier(settings Service, scheduleService schedule.Service, sender Sender, title string) *Notifier {
	return &Notifier{settings: settings, schedule: scheduleService, sender: sender, title: title}
}

// Subscribe registers the notifier for schedule updates on bus.
func (n *Notifier) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	return event_bus.SubscribeTyped[event_bus.ScheduleUpdated](bus, event_bus.ScheduleUpdatedEvent,
		func(e event_bus.EventT[event_bus.ScheduleUpdated]) error {
			return n.Notify(e.Context(), e.Data)
		})
}

// Notify posts update together with the week people currently care about. Nothing is
// sent while no channel is configured.
func (n *Notifier) Notify(ctx context.Context, update event_bus.ScheduleUpdated) error {
	settings, err := n.settings.GetSettings(ctx)
	if err != nil {
		return err
	}
	if settings.UpdateChannelID == "" {
		log.Debug("no update channel configured, skipping notification")
		return nil
	}

	content, err := n.Compose(ctx, settings, update)
	if err != nil {
		return err
	}
	if err := n.sender.SendMessage(ctx, settings.UpdateChannelID, content); err != nil {
		return fmt.Errorf("failed to send update notification: %w", err)
	}
	log.Infof("Sent schedule update notification to channel %s", settings.UpdateChannelID)
	return nil
}

// Compose builds the notification text without sending it.
func (n *Notifier) Compose(ctx context.Context, settings Settings, update event_bus.ScheduleUpdated) (string, error) {
	week, err := n.schedule.EffectiveWeek(ctx, n.schedule.DisplayWeekStart())
	if err != nil {
		return "", fmt.Errorf("failed to resolve display week: %w", err)
	}

	content := RenderMessage(settings.UpdateMessage, update) + "\n\n" + FormatWeek(n.title, week)
	if settings.UpdateRoleID != "" {
		content = RoleMention(settings.UpdateRoleID) + " " + content
	}
	return content, nil
}
