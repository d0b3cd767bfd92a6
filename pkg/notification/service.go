package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type Service interface {
	GetSettings(ctx context.Context) (Settings, error)
	SetMessage(ctx context.Context, message string) (Settings, error)
	SetChannel(ctx context.Context, channelID string) (Settings, error)
	SetRole(ctx context.Context, roleID string) (Settings, error)
}

type ServiceImpl struct {
	mu       sync.RWMutex
	settings Settings
	repo     Repository
}

func NewService(ctx context.Context, repo Repository) (*ServiceImpl, error) {
	settings, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification settings: %w", err)
	}
	return &ServiceImpl{settings: settings, repo: repo}, nil
}

func (s *ServiceImpl) GetSettings(ctx context.Context) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *ServiceImpl) SetMessage(ctx context.Context, message string) (Settings, error) {
	if strings.TrimSpace(message) == "" {
		return Settings{}, fmt.Errorf("update message must not be empty")
	}
	return s.update(ctx, func(settings *Settings) { settings.UpdateMessage = message })
}

func (s *ServiceImpl) SetChannel(ctx context.Context, channelID string) (Settings, error) {
	return s.update(ctx, func(settings *Settings) { settings.UpdateChannelID = channelID })
}

func (s *ServiceImpl) SetRole(ctx context.Context, roleID string) (Settings, error) {
	return s.update(ctx, func(settings *Settings) { settings.UpdateRoleID = roleID })
}

func (s *ServiceImpl) update(ctx context.Context, change func(settings *Settings)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.settings
	change(&next)
	if err := s.repo.Save(ctx, next); err != nil {
		return Settings{}, err
	}
	s.settings = next
	return next, nil
}
