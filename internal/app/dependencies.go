package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/officehours/officehours/internal/config"
	"github.com/officehours/officehours/internal/database"
	"github.com/officehours/officehours/internal/event_bus"
	"github.com/officehours/officehours/internal/metrics"
	"github.com/officehours/officehours/internal/utils"
	"github.com/officehours/officehours/pkg/bot"
	"github.com/officehours/officehours/pkg/notification"
	"github.com/officehours/officehours/pkg/schedule"
	"github.com/officehours/officehours/pkg/viewer"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus
	Metrics  *metrics.Metrics

	ScheduleRepo    schedule.Repository
	ScheduleService *schedule.ServiceImpl
	ScheduleHandler *schedule.Handler

	ViewerHandler *viewer.Handler

	NotificationService *notification.ServiceImpl
	Notifier            *notification.Notifier

	BotCommands *bot.Commands
	DiscordBot  *bot.DiscordBot

	db *pgxpool.Pool
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(ctx context.Context, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	deps.Clock = utils.SystemClock{Location: loc}
	deps.EventBus = event_bus.NewEventBus()

	deps.Metrics, err = metrics.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	deps.Metrics.Subscribe(deps.EventBus)

	deps.ScheduleRepo, err = deps.openScheduleRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps.ScheduleService, err = schedule.NewService(ctx, deps.ScheduleRepo, deps.Clock, deps.EventBus)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.ScheduleHandler = schedule.NewHandler(deps.ScheduleService)
	deps.ViewerHandler = viewer.NewHandler(deps.ScheduleService, cfg.Viewer.Title)

	deps.NotificationService, err = notification.NewService(ctx, notification.NewFileRepository(cfg.Notification.SettingsPath))
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.BotCommands = bot.NewCommands(deps.ScheduleService, deps.NotificationService, cfg.Viewer.Title)

	if cfg.Discord.Enabled {
		deps.DiscordBot, err = bot.NewDiscordBot(cfg.Discord.Token, cfg.Discord.GuildId, deps.BotCommands)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.Notifier = notification.NewNotifier(deps.NotificationService, deps.ScheduleService, deps.DiscordBot, cfg.Viewer.Title)
		deps.Notifier.Subscribe(deps.EventBus)
	}

	return deps, nil
}

func (d *Dependencies) openScheduleRepository(ctx context.Context, cfg config.Application) (schedule.Repository, error) {
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		if err := database.Migrate(cfg.Database); err != nil {
			return nil, err
		}
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		d.db = db
		log.Infof("Storing schedule in postgres database %s", cfg.Database.Name)
		return schedule.NewPostgresRepository(db), nil
	default:
		log.Infof("Storing schedule in %s", cfg.Storage.Path)
		return schedule.NewFileRepository(cfg.Storage.Path), nil
	}
}

// Close releases the database pool, if any.
func (d *Dependencies) Close() {
	if d.db != nil {
		d.db.Close()
		d.db = nil
	}
}
