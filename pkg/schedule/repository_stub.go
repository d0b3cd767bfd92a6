package schedule

import (
	"context"
	"sync"
)

type RepositoryStub struct {
	mu      sync.Mutex
	doc     *Document
	saves   int
	saveErr error
	loadErr error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{}
}

func (r *RepositoryStub) Load(ctx context.Context) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return Document{}, r.loadErr
	}
	if r.doc == nil {
		return NewDocument(), nil
	}
	return r.doc.Clone(), nil
}

func (r *RepositoryStub) Save(ctx context.Context, doc Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	stored := doc.Clone()
	r.doc = &stored
	r.saves++
	return nil
}

// Helper methods for test setup and assertions

func (r *RepositoryStub) SetDocument(doc Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := doc.Clone()
	r.doc = &stored
}

func (r *RepositoryStub) SetSaveError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

func (r *RepositoryStub) SetLoadError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadErr = err
}

// Stored returns the last saved document, or nil when nothing was saved.
func (r *RepositoryStub) Stored() *Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc == nil {
		return nil
	}
	stored := r.doc.Clone()
	return &stored
}

func (r *RepositoryStub) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
