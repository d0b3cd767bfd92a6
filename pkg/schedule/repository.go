package schedule

import (
	"context"
	"fmt"
	"os"

	"github.com/officehours/officehours/internal/jsonfile"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// Load returns the stored document, or an empty one when nothing usable is stored.
	Load(ctx context.Context) (Document, error)
	// Save replaces the stored document.
	Save(ctx context.Context, doc Document) error
}

// FileRepository keeps the document in a single JSON file.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Load(ctx context.Context) (Document, error) {
	data, err := jsonfile.Read(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Infof("Schedule file not found at %s, starting with an empty schedule", r.path)
		} else {
			log.Warnf("could not read schedule file %s, starting with an empty schedule: %v", r.path, err)
		}
		return NewDocument(), nil
	}

	doc, err := DecodeDocument(data)
	if err != nil {
		log.Warnf("schedule file %s is not valid JSON, starting with an empty schedule: %v", r.path, err)
		return NewDocument(), nil
	}
	log.Debugf("Loaded schedule from %s with %d override date(s)", r.path, len(doc.Overrides))
	return doc, nil
}

func (r *FileRepository) Save(ctx context.Context, doc Document) error {
	if err := jsonfile.Write(r.path, doc); err != nil {
		err = fmt.Errorf("could not save schedule: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
