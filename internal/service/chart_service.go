package service

import (
	"context"

	"go.uber.org/zap"

	"metacalc/internal/cache"
	"metacalc/internal/model"
	"metacalc/internal/projection"
	"metacalc/internal/store"
)

// ChartService serves the two chart projections, fronted by the Redis cache
// when one is configured.
type ChartService struct {
	store  *store.Store
	charts cache.ProjectionCache
	logger *zap.Logger
}

// NewChartService creates a new chart service.
func NewChartService(st *store.Store, charts cache.ProjectionCache, logger *zap.Logger) *ChartService {
	return &ChartService{store: st, charts: charts, logger: logger}
}

// TrafficLight returns the per-study traffic-light matrix.
func (s *ChartService) TrafficLight(ctx context.Context) (projection.TrafficLight, error) {
	if s.charts != nil {
		cached, err := s.charts.GetTrafficLight(ctx)
		if err != nil {
			s.logger.Warn("chart cache read failed", zap.Error(err))
		} else if cached != nil {
			return *cached, nil
		}
	}

	studies := s.store.List()
	s.logConflicts(studies)
	tl := projection.BuildTrafficLight(studies)

	if s.charts != nil {
		if err := s.charts.SetTrafficLight(ctx, &tl); err != nil {
			s.logger.Warn("chart cache write failed", zap.Error(err))
		}
	}
	return tl, nil
}

// WeightedBars returns the per-domain judgment distribution.
func (s *ChartService) WeightedBars(ctx context.Context) ([]projection.BarRow, error) {
	if s.charts != nil {
		cached, err := s.charts.GetWeightedBars(ctx)
		if err != nil {
			s.logger.Warn("chart cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	studies := s.store.List()
	s.logConflicts(studies)
	rows := projection.BuildWeightedBars(studies)

	if s.charts != nil && rows != nil {
		if err := s.charts.SetWeightedBars(ctx, rows); err != nil {
			s.logger.Warn("chart cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}

// logConflicts reports studies carrying judgments for both Domain 2
// variants. The projections fall back to the assignment variant; the data
// itself is the defect.
func (s *ChartService) logConflicts(studies []*model.Study) {
	if ids := projection.D2Conflicts(studies); len(ids) > 0 {
		s.logger.Error("studies carry both Domain 2 variants; using assignment",
			zap.Strings("studyIds", ids))
	}
}
