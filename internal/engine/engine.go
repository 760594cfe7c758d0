// Package engine evaluates RoB 2.0 assessments: which signalling questions
// are currently visible, what risk polarity an answer suggests, and the
// overall-risk roll-up across the five active domains. Judgments themselves
// are always entered by the reviewer; the engine only informs them.
package engine

import (
	"errors"

	"metacalc/internal/model"
	"metacalc/internal/schema"
)

var (
	ErrInvalidAnswer    = errors.New("answer is not one of Y, PY, PN, N, NI, NA")
	ErrInvalidJudgment  = errors.New("judgment is not one of Low, Some concerns, High")
	ErrInvalidDirection = errors.New("invalid bias direction")
	ErrUnknownDomain    = errors.New("unknown domain")
	ErrUnknownQuestion  = errors.New("unknown question")
	ErrHiddenQuestion   = errors.New("question is hidden by its visibility rule")
	ErrInactiveDomain   = errors.New("domain is not active for the study's effect type")
)

// RiskHint is the colour-coding aid attached to an answer option.
type RiskHint string

const (
	HintLow     RiskHint = "low"
	HintHigh    RiskHint = "high"
	HintNeutral RiskHint = "neutral"
)

// VisibleQuestions returns the domain's currently relevant questions in
// declaration order. A single forward pass suffices: visibility rules only
// reference earlier-declared questions (schema.Validate enforces this), so
// the pass is already at fixed point when it completes. Results are never
// cached; callers re-evaluate after every answer change.
func VisibleQuestions(d *schema.Domain, answers map[string]model.Answer) []schema.Question {
	visible := make([]schema.Question, 0, len(d.Questions))
	effective := make(map[string]model.Answer, len(answers))
	for _, q := range d.Questions {
		if !q.ShowWhen.Visible(effective) {
			continue
		}
		visible = append(visible, q)
		// Only answers to visible questions feed later rules, so a stale
		// answer on a hidden question can never resurrect its dependents.
		if a, ok := answers[q.ID]; ok {
			effective[q.ID] = a
		}
	}
	return visible
}

// EffectiveAnswers returns the subset of the stored answers that belongs to
// currently visible questions. Hidden answers are retained in the assessment
// but must not feed any judgment-aiding computation.
func EffectiveAnswers(d *schema.Domain, answers map[string]model.Answer) map[string]model.Answer {
	effective := make(map[string]model.Answer)
	for _, q := range VisibleQuestions(d, answers) {
		if a, ok := answers[q.ID]; ok {
			effective[q.ID] = a
		}
	}
	return effective
}

// AnswerRiskHint reports the polarity the given answer suggests for the
// question, for option colour-coding only.
func AnswerRiskHint(q *schema.Question, a model.Answer) RiskHint {
	if q.Risk == nil {
		return HintNeutral
	}
	for _, v := range q.Risk.Low {
		if v == a {
			return HintLow
		}
	}
	for _, v := range q.Risk.High {
		if v == a {
			return HintHigh
		}
	}
	return HintNeutral
}

// activeDomain resolves domainKey against the study's effect type.
func activeDomain(study *model.Study, domainKey string) (*schema.Domain, error) {
	d := schema.ByKey(domainKey)
	if d == nil {
		return nil, ErrUnknownDomain
	}
	if !d.ActiveFor(study.EffectType) {
		return nil, ErrInactiveDomain
	}
	return d, nil
}

// SetAnswer records a signalling-question answer on the study. The answer is
// validated against the fixed enumeration before anything is touched; on any
// error the assessment is left unchanged. A question hidden by its visibility
// rule is not answerable; hidden answers only ever enter a study through
// import, where they stay inert until a rule reveals the question again.
func SetAnswer(study *model.Study, domainKey, questionID string, a model.Answer) error {
	if !model.ValidAnswers[a] {
		return ErrInvalidAnswer
	}
	d, err := activeDomain(study, domainKey)
	if err != nil {
		return err
	}
	if d.Question(questionID) == nil {
		return ErrUnknownQuestion
	}

	var answers map[string]model.Answer
	if cur, ok := study.Assessments[domainKey]; ok && cur != nil {
		answers = cur.Answers
	}
	shown := false
	for _, q := range VisibleQuestions(d, answers) {
		if q.ID == questionID {
			shown = true
			break
		}
	}
	if !shown {
		return ErrHiddenQuestion
	}

	study.Assessment(domainKey).Answers[questionID] = a
	return nil
}

// SetJudgment records the reviewer's domain judgment and recomputes the
// study's overall risk.
func SetJudgment(study *model.Study, domainKey string, j model.Judgment) error {
	if !model.ValidJudgments[j] {
		return ErrInvalidJudgment
	}
	if _, err := activeDomain(study, domainKey); err != nil {
		return err
	}
	study.Assessment(domainKey).Judgment = j
	study.OverallRisk = OverallRisk(study)
	return nil
}

// SetRationale records the free-text rationale for a domain judgment.
func SetRationale(study *model.Study, domainKey, rationale string) error {
	if _, err := activeDomain(study, domainKey); err != nil {
		return err
	}
	study.Assessment(domainKey).Rationale = rationale
	return nil
}

// SetBiasDirection records the predicted direction of bias for a domain.
func SetBiasDirection(study *model.Study, domainKey string, dir model.BiasDirection) error {
	if !model.ValidBiasDirections[dir] {
		return ErrInvalidDirection
	}
	if _, err := activeDomain(study, domainKey); err != nil {
		return err
	}
	study.Assessment(domainKey).BiasDirection = dir
	return nil
}

// OverallRisk rolls the active domain judgments up into the study-level
// judgment using the Cochrane RoB 2.0 rules: any High poisons the whole
// result, uniform Low is required for Low, anything else is Some concerns.
// Until every active domain is judged the overall risk stays Unset.
func OverallRisk(study *model.Study) model.Judgment {
	judgments := make([]model.Judgment, 0, 5)
	for _, d := range schema.DomainsFor(study.EffectType) {
		a, ok := study.Assessments[d.Key]
		if !ok || a.Judgment == model.JudgmentUnset {
			return model.JudgmentUnset
		}
		judgments = append(judgments, a.Judgment)
	}

	allLow := true
	for _, j := range judgments {
		switch j {
		case model.JudgmentHigh:
			return model.JudgmentHigh
		case model.JudgmentSomeConcerns:
			allLow = false
		case model.JudgmentLow:
		default:
			allLow = false
		}
	}
	if allLow {
		return model.JudgmentLow
	}
	// Reachable only when a stored judgment is outside the enumeration.
	return model.JudgmentSomeConcerns
}

// CompletedDomains counts the active domains that carry a judgment, out of
// the five the study needs.
func CompletedDomains(study *model.Study) (done, total int) {
	active := schema.DomainsFor(study.EffectType)
	for _, d := range active {
		if a, ok := study.Assessments[d.Key]; ok && a.Judgment != model.JudgmentUnset {
			done++
		}
	}
	return done, len(active)
}
