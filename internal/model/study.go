package model

import "time"

// Answer is one of the six RoB 2.0 signalling-question responses.
type Answer string

const (
	AnswerYes         Answer = "Y"
	AnswerProbablyYes Answer = "PY"
	AnswerProbablyNo  Answer = "PN"
	AnswerNo          Answer = "N"
	AnswerNoInfo      Answer = "NI"
	AnswerNotApplic   Answer = "NA"
)

var ValidAnswers = map[Answer]bool{
	AnswerYes:         true,
	AnswerProbablyYes: true,
	AnswerProbablyNo:  true,
	AnswerNo:          true,
	AnswerNoInfo:      true,
	AnswerNotApplic:   true,
}

// Judgment is a per-domain (or overall) risk-of-bias rating.
// The empty string is the Unset sentinel for in-progress assessments.
type Judgment string

const (
	JudgmentLow          Judgment = "Low"
	JudgmentSomeConcerns Judgment = "Some concerns"
	JudgmentHigh         Judgment = "High"
	JudgmentUnset        Judgment = ""
)

var ValidJudgments = map[Judgment]bool{
	JudgmentLow:          true,
	JudgmentSomeConcerns: true,
	JudgmentHigh:         true,
}

// EffectType selects which Domain 2 variant applies to a study.
type EffectType string

const (
	EffectAssignment EffectType = "assignment" // intention-to-treat
	EffectAdhering   EffectType = "adhering"   // per-protocol
)

var ValidEffectTypes = map[EffectType]bool{
	EffectAssignment: true,
	EffectAdhering:   true,
}

// BiasDirection is an optional prediction of which way a domain's bias leans.
type BiasDirection string

const (
	DirectionNA           BiasDirection = "NA"
	DirectionExperimental BiasDirection = "favours_experimental"
	DirectionComparator   BiasDirection = "favours_comparator"
	DirectionTowardsNull  BiasDirection = "towards_null"
	DirectionAwayFromNull BiasDirection = "away_from_null"
	DirectionUnpredict    BiasDirection = "unpredictable"
)

var ValidBiasDirections = map[BiasDirection]bool{
	DirectionNA:           true,
	DirectionExperimental: true,
	DirectionComparator:   true,
	DirectionTowardsNull:  true,
	DirectionAwayFromNull: true,
	DirectionUnpredict:    true,
}

// DomainAssessment holds one study's answers and judgment for one domain.
// Answers for questions hidden by a visibility rule are retained here but
// excluded from any judgment-aiding computation while hidden.
type DomainAssessment struct {
	Answers       map[string]Answer `json:"answers,omitempty" bson:"answers,omitempty"`
	Judgment      Judgment          `json:"judgment,omitempty" bson:"judgment,omitempty"`
	Rationale     string            `json:"rationale,omitempty" bson:"rationale,omitempty"`
	BiasDirection BiasDirection     `json:"biasDirection,omitempty" bson:"biasDirection,omitempty"`
}

// Study is one randomized trial under assessment for one outcome.
type Study struct {
	ID          string                       `json:"id" bson:"_id"`
	Title       string                       `json:"title" bson:"title"`
	Authors     string                       `json:"authors" bson:"authors"`
	Year        string                       `json:"year" bson:"year"`
	Outcome     string                       `json:"outcome" bson:"outcome"`
	EffectType  EffectType                   `json:"effectType" bson:"effectType"`
	Assessments map[string]*DomainAssessment `json:"assessments" bson:"assessments"`
	OverallRisk Judgment                     `json:"overallRisk,omitempty" bson:"overallRisk,omitempty"`
	Notes       string                       `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt   time.Time                    `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time                    `json:"updatedAt" bson:"updatedAt"`
}

// Assessment returns the study's assessment for a domain, creating an empty
// one in place if absent.
func (s *Study) Assessment(domainKey string) *DomainAssessment {
	if s.Assessments == nil {
		s.Assessments = make(map[string]*DomainAssessment)
	}
	a, ok := s.Assessments[domainKey]
	if !ok {
		a = &DomainAssessment{Answers: make(map[string]Answer)}
		s.Assessments[domainKey] = a
	}
	if a.Answers == nil {
		a.Answers = make(map[string]Answer)
	}
	return a
}

// Clone returns a deep copy of the study. The copy shares no maps with the
// original, so mutating one never leaks into the other.
func (s *Study) Clone() *Study {
	c := *s
	c.Assessments = make(map[string]*DomainAssessment, len(s.Assessments))
	for key, a := range s.Assessments {
		ac := *a
		ac.Answers = make(map[string]Answer, len(a.Answers))
		for q, ans := range a.Answers {
			ac.Answers[q] = ans
		}
		c.Assessments[key] = &ac
	}
	return &c
}
