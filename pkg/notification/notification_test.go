package notification

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/officehours/officehours/internal/event_bus"
	"github.com/officehours/officehours/internal/utils"
	"github.com/officehours/officehours/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	channelID string
	content   string
}

type recordingSender struct {
	sent []sentMessage
	err  error
}

func (s *recordingSender) SendMessage(ctx context.Context, channelID string, content string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMessage{channelID: channelID, content: content})
	return nil
}

func setupNotifier(t *testing.T, now time.Time) (*Notifier, *ServiceImpl, *schedule.ServiceImpl, *recordingSender, *event_bus.EventBus) {
	t.Helper()
	ctx := context.Background()
	bus := event_bus.NewEventBus()
	scheduleService, err := schedule.NewService(ctx, schedule.NewRepositoryStub(), &utils.MockClock{FixedNow: now}, bus)
	require.NoError(t, err)
	settings, err := NewService(ctx, NewRepositoryStub())
	require.NoError(t, err)
	sender := &recordingSender{}
	notifier := NewNotifier(settings, scheduleService, sender, "Office Hours Schedule")
	notifier.Subscribe(bus)
	return notifier, settings, scheduleService, sender, bus
}

var wednesday = time.Date(2025, time.September, 3, 10, 0, 0, 0, time.UTC)

func TestRenderMessage(t *testing.T) {
	t.Run("should fill every placeholder", func(t *testing.T) {
		got := RenderMessage(DefaultUpdateMessage, event_bus.ScheduleUpdated{
			Actor: "alice", Action: "closed", Details: "Friday: CLOSED (Holiday)",
		})
		assert.Equal(t, "📢 **Office Hours Updated**\nalice closed office hours: Friday: CLOSED (Holiday)", got)
	})

	t.Run("should use a neutral name when the actor is unknown", func(t *testing.T) {
		got := RenderMessage("{user} {action}", event_bus.ScheduleUpdated{Action: "opened"})
		assert.Equal(t, "Someone opened", got)
	})
}

func TestNotifier(t *testing.T) {
	t.Run("should not send anything without a channel", func(t *testing.T) {
		// given
		_, _, scheduleService, sender, _ := setupNotifier(t, wednesday)

		// when
		_, err := scheduleService.SetDefault(context.Background(), "Monday", "x")

		// then
		require.NoError(t, err)
		assert.Empty(t, sender.sent)
	})

	t.Run("should post the change, the week and the role mention", func(t *testing.T) {
		// given
		_, settings, scheduleService, sender, _ := setupNotifier(t, wednesday)
		ctx := context.Background()
		_, err := settings.SetChannel(ctx, "111")
		require.NoError(t, err)
		_, err = settings.SetRole(ctx, "222")
		require.NoError(t, err)
		_, err = scheduleService.SetDefault(ctx, "Monday", "2:00 PM - 5:00 PM")
		require.NoError(t, err)
		sender.sent = nil

		// when
		_, err = scheduleService.SetOverride(schedule.WithAction(schedule.WithActor(ctx, "alice"), "closed"), "09/05", "Friday", "CLOSED (Holiday)")

		// then
		require.NoError(t, err)
		require.Len(t, sender.sent, 1)
		assert.Equal(t, "111", sender.sent[0].channelID)
		assert.Equal(t, "<@&222> 📢 **Office Hours Updated**\n"+
			"alice closed office hours: 09/05 Friday: CLOSED (Holiday)\n\n"+
			"**Office Hours Schedule**\n```\n"+
			"Monday (09/01): 2:00 PM - 5:00 PM\n"+
			"Tuesday (09/02): —\n"+
			"Wednesday (09/03): —\n"+
			"Thursday (09/04): —\n"+
			"Friday (09/05): CLOSED (Holiday)\n"+
			"```", sender.sent[0].content)
	})

	t.Run("should show next week from Friday evening", func(t *testing.T) {
		// given
		notifier, settings, _, _, _ := setupNotifier(t, time.Date(2025, time.September, 5, 18, 0, 0, 0, time.UTC))
		current, err := settings.SetMessage(context.Background(), "{action}")
		require.NoError(t, err)

		// when
		content, err := notifier.Compose(context.Background(), current, event_bus.ScheduleUpdated{Action: "updated"})

		// then
		require.NoError(t, err)
		assert.Contains(t, content, "Monday (09/08)")
		assert.NotContains(t, content, "<@&")
	})

	t.Run("should report send failures", func(t *testing.T) {
		// given
		notifier, settings, _, sender, _ := setupNotifier(t, wednesday)
		_, err := settings.SetChannel(context.Background(), "111")
		require.NoError(t, err)
		sender.err = errors.New("missing access")

		// when
		err = notifier.Notify(context.Background(), event_bus.ScheduleUpdated{Action: "updated"})

		// then
		assert.ErrorContains(t, err, "missing access")
	})
}

func TestServiceImpl(t *testing.T) {
	t.Run("should reject an empty message", func(t *testing.T) {
		// given
		service, err := NewService(context.Background(), NewRepositoryStub())
		require.NoError(t, err)

		// when
		_, err = service.SetMessage(context.Background(), "  ")

		// then
		assert.Error(t, err)
		settings, _ := service.GetSettings(context.Background())
		assert.Equal(t, DefaultUpdateMessage, settings.UpdateMessage)
	})

	t.Run("should keep settings when saving fails", func(t *testing.T) {
		// given
		repo := NewRepositoryStub()
		service, err := NewService(context.Background(), repo)
		require.NoError(t, err)
		repo.SetSaveError(errors.New("read-only"))

		// when
		_, err = service.SetChannel(context.Background(), "111")

		// then
		assert.Error(t, err)
		settings, _ := service.GetSettings(context.Background())
		assert.Equal(t, "", settings.UpdateChannelID)
	})
}

func TestFileRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("should use defaults when the file is missing", func(t *testing.T) {
		repo := NewFileRepository(filepath.Join(t.TempDir(), "bot_settings.json"))
		settings, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, DefaultSettings(), settings)
	})

	t.Run("should read numeric ids and fill a missing message", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "bot_settings.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"update_message": null, "update_channel_id": 1234567890123, "update_role_id": null}`), 0o644))

		// when
		settings, err := NewFileRepository(path).Load(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, Settings{UpdateMessage: DefaultUpdateMessage, UpdateChannelID: "1234567890123"}, settings)
	})

	t.Run("should round trip saved settings", func(t *testing.T) {
		// given
		repo := NewFileRepository(filepath.Join(t.TempDir(), "bot_settings.json"))
		settings := Settings{UpdateMessage: "{user} did {action}", UpdateChannelID: "1", UpdateRoleID: "2"}

		// when
		require.NoError(t, repo.Save(ctx, settings))
		loaded, err := repo.Load(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, settings, loaded)
	})

	t.Run("should keep string ids as they are", func(t *testing.T) {
		var settings Settings
		require.NoError(t, json.Unmarshal([]byte(`{"update_channel_id": "42"}`), &settings))
		assert.Equal(t, "42", settings.UpdateChannelID)
		assert.Equal(t, DefaultUpdateMessage, settings.UpdateMessage)
	})
}
