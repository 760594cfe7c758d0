package service

import (
	"context"

	"go.uber.org/zap"

	"metacalc/internal/cache"
	"metacalc/internal/engine"
	"metacalc/internal/model"
	"metacalc/internal/schema"
	"metacalc/internal/store"
)

// QuestionView is one currently visible signalling question together with
// the stored answer and the per-option colour hints.
type QuestionView struct {
	ID     string                           `json:"id"`
	Text   string                           `json:"text"`
	Answer model.Answer                     `json:"answer,omitempty"`
	Hints  map[model.Answer]engine.RiskHint `json:"hints"`
}

// DomainView is the assessment form for one domain of one study.
type DomainView struct {
	Key           string              `json:"key"`
	DisplayName   string              `json:"displayName"`
	Questions     []QuestionView      `json:"questions"`
	Judgment      model.Judgment      `json:"judgment,omitempty"`
	Rationale     string              `json:"rationale,omitempty"`
	BiasDirection model.BiasDirection `json:"biasDirection,omitempty"`
}

// AssessmentService drives the per-domain assessment workflow: answers,
// judgments, rationale and bias direction, each persisted write-through.
type AssessmentService struct {
	store  *store.Store
	charts cache.ProjectionCache
	logger *zap.Logger
}

// NewAssessmentService creates a new assessment service.
func NewAssessmentService(st *store.Store, charts cache.ProjectionCache, logger *zap.Logger) *AssessmentService {
	return &AssessmentService{store: st, charts: charts, logger: logger}
}

func (s *AssessmentService) invalidateCharts(ctx context.Context) {
	if s.charts == nil {
		return
	}
	if err := s.charts.Invalidate(ctx); err != nil {
		s.logger.Warn("chart cache invalidation failed", zap.Error(err))
	}
}

// DomainViews returns the assessment forms for the study's five active
// domains, visible questions only, re-evaluated from the current answers.
func (s *AssessmentService) DomainViews(studyID string) ([]DomainView, error) {
	study, err := s.store.Get(studyID)
	if err != nil {
		return nil, err
	}

	views := make([]DomainView, 0, 5)
	for _, d := range schema.DomainsFor(study.EffectType) {
		views = append(views, buildDomainView(study, d))
	}
	return views, nil
}

// DomainView returns the assessment form for one domain.
func (s *AssessmentService) DomainView(studyID, domainKey string) (*DomainView, error) {
	study, err := s.store.Get(studyID)
	if err != nil {
		return nil, err
	}
	d := schema.ByKey(domainKey)
	if d == nil {
		return nil, engine.ErrUnknownDomain
	}
	if !d.ActiveFor(study.EffectType) {
		return nil, engine.ErrInactiveDomain
	}
	v := buildDomainView(study, d)
	return &v, nil
}

func buildDomainView(study *model.Study, d *schema.Domain) DomainView {
	var answers map[string]model.Answer
	var assessment model.DomainAssessment
	if a, ok := study.Assessments[d.Key]; ok && a != nil {
		answers = a.Answers
		assessment = *a
	}

	view := DomainView{
		Key:           d.Key,
		DisplayName:   d.DisplayName,
		Judgment:      assessment.Judgment,
		Rationale:     assessment.Rationale,
		BiasDirection: assessment.BiasDirection,
	}
	for _, q := range engine.VisibleQuestions(d, answers) {
		qv := QuestionView{
			ID:    q.ID,
			Text:  q.Text,
			Hints: make(map[model.Answer]engine.RiskHint, len(model.ValidAnswers)),
		}
		if a, ok := answers[q.ID]; ok {
			qv.Answer = a
		}
		question := q
		for a := range model.ValidAnswers {
			qv.Hints[a] = engine.AnswerRiskHint(&question, a)
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

// SetAnswer records a signalling-question answer and persists.
func (s *AssessmentService) SetAnswer(ctx context.Context, studyID, domainKey, questionID string, a model.Answer) (*model.Study, error) {
	study, err := s.store.Mutate(ctx, studyID, func(st *model.Study) error {
		return engine.SetAnswer(st, domainKey, questionID, a)
	})
	if err != nil {
		return study, err
	}
	s.invalidateCharts(ctx)
	return study, nil
}

// SetJudgment records a reviewer's domain judgment, recomputes the overall
// risk and persists.
func (s *AssessmentService) SetJudgment(ctx context.Context, studyID, domainKey string, j model.Judgment) (*model.Study, error) {
	study, err := s.store.Mutate(ctx, studyID, func(st *model.Study) error {
		return engine.SetJudgment(st, domainKey, j)
	})
	if err != nil {
		return study, err
	}
	s.invalidateCharts(ctx)
	return study, nil
}

// SetRationale records the free-text rationale for a domain and persists.
func (s *AssessmentService) SetRationale(ctx context.Context, studyID, domainKey, rationale string) (*model.Study, error) {
	return s.store.Mutate(ctx, studyID, func(st *model.Study) error {
		return engine.SetRationale(st, domainKey, rationale)
	})
}

// SetBiasDirection records the predicted bias direction for a domain and
// persists.
func (s *AssessmentService) SetBiasDirection(ctx context.Context, studyID, domainKey string, dir model.BiasDirection) (*model.Study, error) {
	return s.store.Mutate(ctx, studyID, func(st *model.Study) error {
		return engine.SetBiasDirection(st, domainKey, dir)
	})
}

// Progress reports how many of a study's five active domains are judged.
func (s *AssessmentService) Progress(studyID string) (done, total int, err error) {
	study, err := s.store.Get(studyID)
	if err != nil {
		return 0, 0, err
	}
	done, total = engine.CompletedDomains(study)
	return done, total, nil
}
