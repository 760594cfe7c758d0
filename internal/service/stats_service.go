package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"metacalc/internal/stats"
	"metacalc/internal/storage"
)

const (
	historyKey = "calc-history"
	historyCap = 100
)

// CalcRecord is one entry in the calculation history.
type CalcRecord struct {
	Calculation string      `json:"calculation"`
	Inputs      interface{} `json:"inputs"`
	Outputs     interface{} `json:"outputs"`
	Reference   string      `json:"reference,omitempty"`
	At          time.Time   `json:"at"`
}

// StatsService runs the conversion formulas and keeps a bounded calculation
// history in the key-value store. History writes are best-effort: a failed
// append never fails the calculation itself. The mutex serializes the
// read-append-write so concurrent calculations cannot drop records.
type StatsService struct {
	mu     sync.Mutex
	kv     storage.KV
	logger *zap.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(kv storage.KV, logger *zap.Logger) *StatsService {
	return &StatsService{kv: kv, logger: logger}
}

func (s *StatsService) record(ctx context.Context, rec CalcRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.History(ctx)
	if err != nil {
		s.logger.Warn("calculation history read failed", zap.Error(err))
		return
	}
	history = append(history, rec)
	if len(history) > historyCap {
		history = history[len(history)-historyCap:]
	}
	data, err := json.Marshal(history)
	if err != nil {
		s.logger.Warn("calculation history marshal failed", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, historyKey, data); err != nil {
		s.logger.Warn("calculation history write failed", zap.Error(err))
	}
}

// History returns the stored calculation records, oldest first.
func (s *StatsService) History(ctx context.Context) ([]CalcRecord, error) {
	data, ok, err := s.kv.Get(ctx, historyKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var history []CalcRecord
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// SEToSD converts a standard error to a standard deviation.
func (s *StatsService) SEToSD(ctx context.Context, se float64, n int) (float64, error) {
	sd, err := stats.SEToSD(se, n)
	if err != nil {
		return 0, err
	}
	s.record(ctx, CalcRecord{
		Calculation: "SE to SD",
		Inputs:      map[string]interface{}{"se": se, "n": n},
		Outputs:     map[string]float64{"sd": sd},
		Reference:   "Standard error relationship",
		At:          time.Now().UTC(),
	})
	return sd, nil
}

// CIToMeanSD recovers mean and SD from a confidence interval.
func (s *StatsService) CIToMeanSD(ctx context.Context, lower, upper float64, n int, level float64) (stats.MeanSD, error) {
	res, err := stats.CIToMeanSD(lower, upper, n, level)
	if err != nil {
		return stats.MeanSD{}, err
	}
	s.record(ctx, CalcRecord{
		Calculation: "CI to Mean/SD",
		Inputs:      map[string]interface{}{"lower": lower, "upper": upper, "n": n, "level": level},
		Outputs:     res,
		At:          time.Now().UTC(),
	})
	return res, nil
}

// SMD computes the standardized mean difference.
func (s *StatsService) SMD(ctx context.Context, in stats.SMDInput) (stats.SMDResult, error) {
	res, err := stats.SMD(in)
	if err != nil {
		return stats.SMDResult{}, err
	}
	s.record(ctx, CalcRecord{
		Calculation: "Standardized Mean Difference (SMD)",
		Inputs:      in,
		Outputs:     res,
		Reference:   "Hedges & Olkin (1985)",
		At:          time.Now().UTC(),
	})
	return res, nil
}

// BinaryOutcomes computes OR, RR and RD from a 2x2 table.
func (s *StatsService) BinaryOutcomes(ctx context.Context, in stats.BinaryInput) (stats.BinaryResult, error) {
	res, err := stats.BinaryOutcomes(in)
	if err != nil {
		return stats.BinaryResult{}, err
	}
	s.record(ctx, CalcRecord{
		Calculation: "Binary Outcomes (OR/RR/RD)",
		Inputs:      in,
		Outputs:     res,
		Reference:   "Standard 2x2 table analysis",
		At:          time.Now().UTC(),
	})
	return res, nil
}
