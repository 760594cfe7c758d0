// Package export serializes the study collection to its JSON interchange
// format and validates imports. Imports are all-or-nothing: a payload either
// parses completely into study records or is rejected with ErrMalformedImport
// and the existing collection is left untouched.
package export

import (
	"encoding/json"
	"errors"
	"fmt"

	"metacalc/internal/engine"
	"metacalc/internal/model"
)

var ErrMalformedImport = errors.New("import payload is not an array of studies")

// Serialize dumps the studies as a top-level JSON array, the same shape the
// store persists and Parse accepts.
func Serialize(studies []*model.Study) ([]byte, error) {
	if studies == nil {
		studies = []*model.Study{}
	}
	return json.MarshalIndent(studies, "", "  ")
}

// Parse validates an import payload and returns the decoded studies. Any
// top-level shape other than an array, or any element that is not
// study-shaped, rejects the whole payload.
func Parse(data []byte) ([]*model.Study, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	studies := make([]*model.Study, 0, len(raw))
	for i, el := range raw {
		var st model.Study
		if err := json.Unmarshal(el, &st); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformedImport, i, err)
		}
		if err := validate(&st); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformedImport, i, err)
		}
		if st.EffectType == "" {
			st.EffectType = model.EffectAssignment
		}
		if st.Assessments == nil {
			st.Assessments = make(map[string]*model.DomainAssessment)
		}
		// The claimed overall risk is not trusted: a payload stating Low
		// alongside a High domain would flow into the projections otherwise.
		st.OverallRisk = engine.OverallRisk(&st)
		studies = append(studies, &st)
	}
	return studies, nil
}

func validate(st *model.Study) error {
	if st.EffectType != "" && !model.ValidEffectTypes[st.EffectType] {
		return fmt.Errorf("invalid effect type %q", st.EffectType)
	}
	if st.OverallRisk != model.JudgmentUnset && !model.ValidJudgments[st.OverallRisk] {
		return fmt.Errorf("invalid overall risk %q", st.OverallRisk)
	}
	for key, a := range st.Assessments {
		if a == nil {
			return fmt.Errorf("domain %s: null assessment", key)
		}
		if a.Judgment != model.JudgmentUnset && !model.ValidJudgments[a.Judgment] {
			return fmt.Errorf("domain %s: invalid judgment %q", key, a.Judgment)
		}
		if a.BiasDirection != "" && !model.ValidBiasDirections[a.BiasDirection] {
			return fmt.Errorf("domain %s: invalid bias direction %q", key, a.BiasDirection)
		}
		for q, ans := range a.Answers {
			if !model.ValidAnswers[ans] {
				return fmt.Errorf("domain %s: question %s has invalid answer %q", key, q, ans)
			}
		}
	}
	return nil
}
