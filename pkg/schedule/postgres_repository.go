package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// documentId is the key of the single row holding the document.
const documentId = 1

// PostgresRepository stores the document as jsonb in the schedule_document table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context) (Document, error) {
	query := `SELECT document FROM schedule_document WHERE id = $1`

	var data []byte
	err := r.db.QueryRow(ctx, query, documentId).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Info("No schedule stored yet, starting with an empty schedule")
			return NewDocument(), nil
		}
		err := fmt.Errorf("could not query schedule document: %w", err)
		log.Error(err)
		return Document{}, err
	}

	doc, err := DecodeDocument(data)
	if err != nil {
		log.Warnf("stored schedule document is not valid JSON, starting with an empty schedule: %v", err)
		return NewDocument(), nil
	}
	return doc, nil
}

func (r *PostgresRepository) Save(ctx context.Context, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("could not encode schedule document: %w", err)
	}

	query := `INSERT INTO schedule_document (id, document, updated_at)
			  VALUES ($1, $2, now())
			  ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.Exec(ctx, query, documentId, string(data)); err != nil {
		err := fmt.Errorf("could not store schedule document: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
