package service

import (
	"context"

	"go.uber.org/zap"

	"metacalc/internal/cache"
	"metacalc/internal/export"
	"metacalc/internal/model"
	"metacalc/internal/store"
)

// StudyService handles study CRUD and the import/export round trip.
type StudyService struct {
	store  *store.Store
	charts cache.ProjectionCache // optional; invalidated on every mutation
	logger *zap.Logger
}

// NewStudyService creates a new study service. charts may be nil when no
// cache is configured.
func NewStudyService(st *store.Store, charts cache.ProjectionCache, logger *zap.Logger) *StudyService {
	return &StudyService{store: st, charts: charts, logger: logger}
}

func (s *StudyService) invalidateCharts(ctx context.Context) {
	if s.charts == nil {
		return
	}
	if err := s.charts.Invalidate(ctx); err != nil {
		s.logger.Warn("chart cache invalidation failed", zap.Error(err))
	}
}

// List returns all studies in display order.
func (s *StudyService) List() []*model.Study {
	return s.store.List()
}

// Get returns one study by id.
func (s *StudyService) Get(id string) (*model.Study, error) {
	return s.store.Get(id)
}

// Add creates a new empty study for immediate editing.
func (s *StudyService) Add(ctx context.Context) (*model.Study, error) {
	st, err := s.store.Add(ctx)
	s.invalidateCharts(ctx)
	return st, err
}

// Duplicate copies a study with a fresh id and cleared assessments.
func (s *StudyService) Duplicate(ctx context.Context, id string) (*model.Study, error) {
	st, err := s.store.Duplicate(ctx, id)
	if err == store.ErrNotFound {
		return nil, err
	}
	s.invalidateCharts(ctx)
	return st, err
}

// SetInfo updates a study's descriptive fields.
func (s *StudyService) SetInfo(ctx context.Context, id string, info store.StudyInfo) (*model.Study, error) {
	st, err := s.store.SetInfo(ctx, id, info)
	if err == store.ErrNotFound || err == store.ErrInvalidEffectType {
		return nil, err
	}
	s.invalidateCharts(ctx)
	return st, err
}

// Delete removes one study.
func (s *StudyService) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if err == store.ErrNotFound {
		return err
	}
	s.invalidateCharts(ctx)
	return err
}

// Clear empties the store. The confirmation prompt is the client's concern.
func (s *StudyService) Clear(ctx context.Context) error {
	err := s.store.Clear(ctx)
	s.invalidateCharts(ctx)
	return err
}

// Export serializes the whole collection to the JSON interchange format.
func (s *StudyService) Export() ([]byte, error) {
	return export.Serialize(s.store.List())
}

// Import validates the payload and replaces the whole collection. A
// malformed payload leaves the store untouched.
func (s *StudyService) Import(ctx context.Context, data []byte) (int, error) {
	studies, err := export.Parse(data)
	if err != nil {
		return 0, err
	}
	if err := s.store.ReplaceAll(ctx, studies); err != nil {
		return len(studies), err
	}
	s.invalidateCharts(ctx)
	s.logger.Info("studies imported", zap.Int("count", len(studies)))
	return len(studies), nil
}
