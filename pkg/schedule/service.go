package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/officehours/officehours/internal/event_bus"
	"github.com/officehours/officehours/internal/utils"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetDocument(ctx context.Context) (Document, error)
	SetDefault(ctx context.Context, day string, timeRange string) (Document, error)
	SetDefaultBulk(ctx context.Context, times map[string]string) (Document, error)
	SetOverride(ctx context.Context, date string, day string, timeRange string) (Document, error)
	SetOverrides(ctx context.Context, date string, updates map[string]string) (Document, error)
	// SetWeek stores times as overrides for the week containing weekStart (MM/DD).
	SetWeek(ctx context.Context, weekStart string, times map[string]string) (Document, error)
	ClearOverrides(ctx context.Context, date string) (Document, error)
	// EffectiveWeek resolves Monday..Friday of the week containing weekStart.
	EffectiveWeek(ctx context.Context, weekStart time.Time) ([]EffectiveDay, error)
	// WeekStartFor resolves a MM/DD key in the current year to the Monday of its week.
	WeekStartFor(date string) (time.Time, error)
	CurrentWeekStart() time.Time
	// DisplayWeekStart is the week people care about right now: the current one during
	// the week, the next one from Friday 17:00 onwards and over the weekend.
	DisplayWeekStart() time.Time
}

// displayCutoffHour is when Friday stops showing the current week.
const displayCutoffHour = 17

type ServiceImpl struct {
	mu       sync.RWMutex
	doc      Document
	repo     Repository
	clock    utils.Clock
	eventBus *event_bus.EventBus
}

// NewService loads the stored document once; it is kept in memory afterwards and
// written back on every mutation.
func NewService(ctx context.Context, repo Repository, clock utils.Clock, eventBus *event_bus.EventBus) (*ServiceImpl, error) {
	doc, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return &ServiceImpl{
		doc:      doc,
		repo:     repo,
		clock:    clock,
		eventBus: eventBus,
	}, nil
}

func (s *ServiceImpl) GetDocument(ctx context.Context) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone(), nil
}

func (s *ServiceImpl) SetDefault(ctx context.Context, day string, timeRange string) (Document, error) {
	name, err := NormalizeDay(day)
	if err != nil {
		return Document{}, err
	}
	return s.mutate(ctx, "updated default hours for", describe(name, timeRange), func(doc *Document) error {
		doc.Default[name] = timeRange
		return nil
	})
}

func (s *ServiceImpl) SetDefaultBulk(ctx context.Context, times map[string]string) (Document, error) {
	normalized, err := normalizeDays(times)
	if err != nil {
		return Document{}, err
	}
	if len(normalized) == 0 {
		return s.GetDocument(ctx)
	}
	return s.mutate(ctx, "updated default hours for", describeDays(normalized), func(doc *Document) error {
		for day, value := range normalized {
			doc.Default[day] = value
		}
		return nil
	})
}

func (s *ServiceImpl) SetOverride(ctx context.Context, date string, day string, timeRange string) (Document, error) {
	return s.SetOverrides(ctx, date, map[string]string{day: timeRange})
}

func (s *ServiceImpl) SetOverrides(ctx context.Context, date string, updates map[string]string) (Document, error) {
	normalized, err := normalizeDays(updates)
	if err != nil {
		return Document{}, err
	}
	key, err := NormalizeDateKey(date)
	if err != nil {
		return Document{}, err
	}
	if len(normalized) == 0 {
		return s.GetDocument(ctx)
	}
	return s.mutate(ctx, "set overrides for", key+" "+describeDays(normalized), func(doc *Document) error {
		mergeOverrides(doc, key, normalized)
		return nil
	})
}

func (s *ServiceImpl) SetWeek(ctx context.Context, weekStart string, times map[string]string) (Document, error) {
	normalized, err := normalizeDays(times)
	if err != nil {
		return Document{}, err
	}
	monday, err := s.WeekStartFor(weekStart)
	if err != nil {
		return Document{}, err
	}
	if len(normalized) == 0 {
		return s.GetDocument(ctx)
	}
	key := DateKey(monday)
	return s.mutate(ctx, "set overrides for", "week of "+key+" "+describeDays(normalized), func(doc *Document) error {
		mergeOverrides(doc, key, normalized)
		return nil
	})
}

func (s *ServiceImpl) ClearOverrides(ctx context.Context, date string) (Document, error) {
	key, err := NormalizeDateKey(date)
	if err != nil {
		return Document{}, err
	}
	return s.mutate(ctx, "cleared overrides for", key, func(doc *Document) error {
		delete(doc.Overrides, key)
		return nil
	})
}

func (s *ServiceImpl) EffectiveWeek(ctx context.Context, weekStart time.Time) ([]EffectiveDay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	monday := WeekStart(weekStart)

	s.mu.RLock()
	defer s.mu.RUnlock()

	weekKeys := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		weekKeys = append(weekKeys, DateKey(monday.AddDate(0, 0, i)))
	}

	days := make([]EffectiveDay, 0, len(Weekdays))
	for i, day := range Weekdays {
		date := monday.AddDate(0, 0, i)
		key := DateKey(date)
		effective := EffectiveDay{Day: day, Date: date, DateKey: key, Time: s.doc.Default[day]}

		if value, ok := s.lookupOverride(day, key, weekKeys); ok {
			effective.Time = value
			effective.Overridden = true
		}
		days = append(days, effective)
	}
	return days, nil
}

// lookupOverride checks the day's own date, then the week start, then the remaining
// dates of the week in calendar order. Callers hold the read lock.
func (s *ServiceImpl) lookupOverride(day string, ownKey string, weekKeys []string) (string, bool) {
	if value, ok := s.doc.Overrides[ownKey][day]; ok {
		return value, true
	}
	for _, key := range weekKeys {
		if key == ownKey {
			continue
		}
		if value, ok := s.doc.Overrides[key][day]; ok {
			return value, true
		}
	}
	return "", false
}

func (s *ServiceImpl) WeekStartFor(date string) (time.Time, error) {
	now := s.clock.Now()
	parsed, err := ParseDateKey(date, now.Year(), now.Location())
	if err != nil {
		return time.Time{}, err
	}
	return WeekStart(parsed), nil
}

func (s *ServiceImpl) CurrentWeekStart() time.Time {
	return WeekStart(s.clock.Now())
}

func (s *ServiceImpl) DisplayWeekStart() time.Time {
	now := s.clock.Now()
	current := WeekStart(now)
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return current.AddDate(0, 0, 7)
	case time.Friday:
		if now.Hour() >= displayCutoffHour {
			return current.AddDate(0, 0, 7)
		}
	}
	return current
}

// mutate applies change to a copy of the document and swaps it in only after the copy
// has been persisted.
func (s *ServiceImpl) mutate(ctx context.Context, action string, details string, change func(doc *Document) error) (Document, error) {
	s.mu.Lock()
	next := s.doc.Clone()
	if err := change(&next); err != nil {
		s.mu.Unlock()
		return Document{}, err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return Document{}, fmt.Errorf("failed to save schedule: %w", err)
	}
	s.doc = next
	result := next.Clone()
	s.mu.Unlock()

	s.publish(ctx, action, details)
	return result, nil
}

func (s *ServiceImpl) publish(ctx context.Context, action string, details string) {
	if s.eventBus == nil {
		return
	}
	payload := event_bus.ScheduleUpdated{
		Actor:   Actor(ctx),
		Action:  actionOr(ctx, action),
		Details: details,
	}
	log.Debugf("publishing schedule update: %+v", payload)
	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.ScheduleUpdatedEvent, payload)); err != nil {
		log.Errorf("failed to publish schedule update: %v", err)
	}
}

func mergeOverrides(doc *Document, key string, updates map[string]string) {
	if len(updates) == 0 {
		return
	}
	bucket, ok := doc.Overrides[key]
	if !ok {
		bucket = make(map[string]string, len(updates))
		doc.Overrides[key] = bucket
	}
	for day, value := range updates {
		bucket[day] = value
	}
}

func describe(day, timeRange string) string {
	if timeRange == "" {
		timeRange = EmptyTimePlaceholder
	}
	return day + ": " + timeRange
}

// describeDays lists the updated days in weekday order.
func describeDays(days map[string]string) string {
	parts := make([]string, 0, len(days))
	for _, day := range Weekdays {
		if value, ok := days[day]; ok {
			parts = append(parts, describe(day, value))
		}
	}
	return strings.Join(parts, ", ")
}
