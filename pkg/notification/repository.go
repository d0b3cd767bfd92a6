package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/officehours/officehours/internal/jsonfile"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, settings Settings) error
}

type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Load(ctx context.Context) (Settings, error) {
	data, err := jsonfile.Read(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Infof("Notification settings not found at %s, using defaults", r.path)
		} else {
			log.Warnf("could not read notification settings %s, using defaults: %v", r.path, err)
		}
		return DefaultSettings(), nil
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		log.Warnf("notification settings %s are not valid JSON, using defaults: %v", r.path, err)
		return DefaultSettings(), nil
	}
	return settings, nil
}

func (r *FileRepository) Save(ctx context.Context, settings Settings) error {
	if err := jsonfile.Write(r.path, settings); err != nil {
		return fmt.Errorf("could not save notification settings: %w", err)
	}
	return nil
}

type RepositoryStub struct {
	mu       sync.Mutex
	settings Settings
	saveErr  error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{settings: DefaultSettings()}
}

func (r *RepositoryStub) Load(ctx context.Context) (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings, nil
}

func (r *RepositoryStub) Save(ctx context.Context, settings Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.settings = settings
	return nil
}

func (r *RepositoryStub) SetSaveError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}
