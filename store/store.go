package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record is the history entry kept for one generation run. The bundle itself
// stays request-scoped in memory; only this summary is persisted.
type Record struct {
	ID                string    `bson:"_id" json:"id"`
	Niche             string    `bson:"niche" json:"niche"`
	Style             string    `bson:"style" json:"style"`
	Duration          int       `bson:"duration" json:"duration"`
	Language          string    `bson:"language" json:"language"`
	Status            string    `bson:"status" json:"status"`
	Title             string    `bson:"title,omitempty" json:"title,omitempty"`
	SceneCount        int       `bson:"scene_count" json:"scene_count"`
	HasVoice          bool      `bson:"has_voice" json:"has_voice"`
	ErrorMessage      string    `bson:"error_message,omitempty" json:"error_message,omitempty"`
	ProcessingSeconds float64   `bson:"processing_time_seconds" json:"processing_time_seconds"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
}

// Store keeps generation history. Implementations: Mongo when MONGODB_URI is
// configured, a process-local memory store otherwise.
type Store interface {
	Save(ctx context.Context, record *Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// MemoryStore is the credential-absent degraded mode: history lives for the
// process lifetime only.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *record)
	return nil
}

func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close(ctx context.Context) error { return nil }
