// Package schema declares the RoB 2.0 domain and signalling-question
// structure as read-only data. The five bias domains, the two mutually
// exclusive Domain 2 variants, per-answer risk indicators and the
// show/hide rules for follow-up questions all live here; evaluation
// lives in the engine package.
package schema

import (
	"fmt"

	"metacalc/internal/model"
)

// RuleMode says how a visibility rule combines its conditions.
type RuleMode string

const (
	AnyOf RuleMode = "anyOf"
	AllOf RuleMode = "allOf"
)

// Condition matches when the referenced question's current answer is in the
// given set. An unanswered question never matches.
type Condition struct {
	QuestionID string
	Answers    []model.Answer
}

func (c Condition) matches(answers map[string]model.Answer) bool {
	got, ok := answers[c.QuestionID]
	if !ok {
		return false
	}
	for _, a := range c.Answers {
		if a == got {
			return true
		}
	}
	return false
}

// VisibilityRule decides whether a follow-up question is currently relevant,
// given the answers recorded so far in the same domain.
type VisibilityRule struct {
	Mode       RuleMode
	Conditions []Condition
}

// Visible evaluates the rule against the current answers map.
func (r *VisibilityRule) Visible(answers map[string]model.Answer) bool {
	if r == nil {
		return true
	}
	for _, c := range r.Conditions {
		matched := c.matches(answers)
		if r.Mode == AllOf && !matched {
			return false
		}
		if r.Mode != AllOf && matched {
			return true
		}
	}
	return r.Mode == AllOf
}

// RiskIndicators maps answer values to the risk polarity they suggest.
// A question with nil indicators is neutral (e.g. pure awareness checks).
type RiskIndicators struct {
	Low  []model.Answer
	High []model.Answer
}

// Question is one signalling question within a domain.
type Question struct {
	ID       string
	Text     string
	Risk     *RiskIndicators // nil = neutral, never colour-coded
	ShowWhen *VisibilityRule // nil = always visible
}

// Domain is one of the five RoB 2.0 bias domains. The two Domain 2 variants
// carry a non-empty EffectType and are active for exactly one of the two
// study-level effect types; all other domains are always active.
type Domain struct {
	Key         string
	DisplayName string
	EffectType  model.EffectType
	Questions   []Question
}

// ActiveFor reports whether the domain applies to a study with the given
// effect type.
func (d *Domain) ActiveFor(et model.EffectType) bool {
	return d.EffectType == "" || d.EffectType == et
}

// Question returns the declared question with the given id, or nil.
func (d *Domain) Question(id string) *Question {
	for i := range d.Questions {
		if d.Questions[i].ID == id {
			return &d.Questions[i]
		}
	}
	return nil
}

// All returns every declared domain, both Domain 2 variants included, in
// declaration order.
func All() []*Domain {
	return domains
}

// DomainsFor returns the five active domains for the given effect type, in
// assessment order.
func DomainsFor(et model.EffectType) []*Domain {
	active := make([]*Domain, 0, 5)
	for _, d := range domains {
		if d.ActiveFor(et) {
			active = append(active, d)
		}
	}
	return active
}

// ByKey returns the domain with the given key, or nil.
func ByKey(key string) *Domain {
	for _, d := range domains {
		if d.Key == key {
			return d
		}
	}
	return nil
}

// Validate checks the structural invariants the engine's single forward pass
// relies on: unique question ids per domain, visibility rules that reference
// only earlier-declared questions, and answer sets drawn from the valid
// enumeration.
func Validate() error {
	for _, d := range domains {
		seen := make(map[string]int, len(d.Questions))
		for i, q := range d.Questions {
			if _, dup := seen[q.ID]; dup {
				return fmt.Errorf("domain %s: duplicate question id %s", d.Key, q.ID)
			}
			seen[q.ID] = i
			if q.ShowWhen == nil {
				continue
			}
			if len(q.ShowWhen.Conditions) == 0 {
				return fmt.Errorf("domain %s: question %s has an empty visibility rule", d.Key, q.ID)
			}
			for _, c := range q.ShowWhen.Conditions {
				ref, ok := seen[c.QuestionID]
				if !ok || ref >= i {
					return fmt.Errorf("domain %s: question %s references %s, which is not declared earlier", d.Key, q.ID, c.QuestionID)
				}
				for _, a := range c.Answers {
					if !model.ValidAnswers[a] {
						return fmt.Errorf("domain %s: question %s condition uses invalid answer %q", d.Key, q.ID, a)
					}
				}
			}
		}
	}
	return nil
}
