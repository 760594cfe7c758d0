// Package store owns the ordered collection of studies and its persistence
// round-trip. Every mutation writes the full collection through to the
// key-value backend before the operation reports success; on a failed write
// the in-memory mutation is kept and the error surfaced, so the caller can
// warn that the change is not yet durable.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"metacalc/internal/model"
	"metacalc/internal/storage"
)

// StudiesKey is the single storage key the whole collection lives under.
const StudiesKey = "rob-studies"

var (
	ErrNotFound          = errors.New("study not found")
	ErrInvalidEffectType = errors.New("effect type is not one of assignment, adhering")
)

// StudyInfo carries the descriptive fields a reviewer can edit directly.
type StudyInfo struct {
	Title      string           `json:"title"`
	Authors    string           `json:"authors"`
	Year       string           `json:"year"`
	Outcome    string           `json:"outcome"`
	EffectType model.EffectType `json:"effectType"`
	Notes      string           `json:"notes"`
}

// Store is the single point of truth for study records. All access goes
// through the mutex: acquire, mutate, persist, release.
type Store struct {
	mu      sync.Mutex
	kv      storage.KV
	studies []*model.Study
}

// New creates a store backed by the given KV. Call Load before use.
func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// Load replaces the in-memory collection with the persisted one. A missing
// key loads an empty collection.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.kv.Get(ctx, StudiesKey)
	if err != nil {
		return fmt.Errorf("load studies: %w", err)
	}
	if !ok {
		s.studies = nil
		return nil
	}
	var studies []*model.Study
	if err := json.Unmarshal(data, &studies); err != nil {
		return fmt.Errorf("load studies: %w", err)
	}
	s.studies = studies
	return nil
}

// Save persists the current collection under the single storage key.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx)
}

func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.studiesOrEmpty())
	if err != nil {
		return fmt.Errorf("save studies: %w", err)
	}
	if err := s.kv.Set(ctx, StudiesKey, data); err != nil {
		return fmt.Errorf("save studies: %w", err)
	}
	return nil
}

func (s *Store) studiesOrEmpty() []*model.Study {
	if s.studies == nil {
		return []*model.Study{}
	}
	return s.studies
}

// List returns snapshots of the studies in display order. Callers encode and
// project these outside the lock, so they must never alias store state.
func (s *Store) List() []*model.Study {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Study, len(s.studies))
	for i, st := range s.studies {
		out[i] = st.Clone()
	}
	return out
}

// Count returns the number of studies.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.studies)
}

// Get returns a snapshot of the study with the given id. Mutations go
// through Mutate or SetInfo, never through the returned copy.
func (s *Store) Get(id string) (*model.Study, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.find(id)
	if st == nil {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

func (s *Store) find(id string) *model.Study {
	for _, st := range s.studies {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// Add appends a new empty study and persists. A snapshot of the study is
// returned for immediate editing even when the persist fails.
func (s *Store) Add(ctx context.Context) (*model.Study, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	st := &model.Study{
		ID:          uuid.NewString(),
		EffectType:  model.EffectAssignment,
		Assessments: make(map[string]*model.DomainAssessment),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.studies = append(s.studies, st)
	return st.Clone(), s.persist(ctx)
}

// Duplicate copies an existing study under a fresh id with the descriptive
// fields retained and the assessments and overall risk reset.
func (s *Store) Duplicate(ctx context.Context, id string) (*model.Study, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orig := s.find(id)
	if orig == nil {
		return nil, ErrNotFound
	}
	now := time.Now().UTC()
	dup := &model.Study{
		ID:          uuid.NewString(),
		Title:       orig.Title + " (copy)",
		Authors:     orig.Authors,
		Year:        orig.Year,
		Outcome:     orig.Outcome,
		EffectType:  orig.EffectType,
		Notes:       orig.Notes,
		Assessments: make(map[string]*model.DomainAssessment),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.studies = append(s.studies, dup)
	return dup.Clone(), s.persist(ctx)
}

// Delete removes one study. A missing id is reported, never ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, st := range s.studies {
		if st.ID == id {
			s.studies = append(s.studies[:i], s.studies[i+1:]...)
			return s.persist(ctx)
		}
	}
	return ErrNotFound
}

// Clear empties the whole collection. Confirmation is the caller's concern.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.studies = nil
	return s.persist(ctx)
}

// SetInfo updates a study's descriptive fields and persists.
func (s *Store) SetInfo(ctx context.Context, id string, info StudyInfo) (*model.Study, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info.EffectType != "" && !model.ValidEffectTypes[info.EffectType] {
		return nil, ErrInvalidEffectType
	}
	st := s.find(id)
	if st == nil {
		return nil, ErrNotFound
	}
	st.Title = info.Title
	st.Authors = info.Authors
	st.Year = info.Year
	st.Outcome = info.Outcome
	if info.EffectType != "" {
		st.EffectType = info.EffectType
	}
	st.Notes = info.Notes
	st.UpdatedAt = time.Now().UTC()
	return st.Clone(), s.persist(ctx)
}

// Mutate applies fn to the study under the store lock and persists
// afterwards: acquire, mutate, persist, release. If fn fails nothing is
// persisted and the error is returned as-is. The returned study is a
// snapshot taken inside the lock; it is returned even when the persist
// fails so the caller can warn that the change is not yet durable.
func (s *Store) Mutate(ctx context.Context, id string, fn func(*model.Study) error) (*model.Study, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.find(id)
	if st == nil {
		return nil, ErrNotFound
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	st.UpdatedAt = time.Now().UTC()
	return st.Clone(), s.persist(ctx)
}

// ReplaceAll swaps the whole collection for the imported one and persists.
// Imported ids are kept when present and unique; blank or colliding ids are
// re-minted so the uniqueness invariant holds.
func (s *Store) ReplaceAll(ctx context.Context, studies []*model.Study) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(studies))
	for _, st := range studies {
		if st.ID == "" || seen[st.ID] {
			st.ID = uuid.NewString()
		}
		seen[st.ID] = true
	}
	s.studies = studies
	return s.persist(ctx)
}
