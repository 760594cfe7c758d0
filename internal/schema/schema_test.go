package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metacalc/internal/model"
)

func TestValidate(t *testing.T) {
	require.NoError(t, Validate())
}

func TestNoForwardReferences(t *testing.T) {
	// The engine's single forward pass is only correct if every visibility
	// rule references strictly earlier questions.
	for _, d := range All() {
		declared := make(map[string]bool)
		for _, q := range d.Questions {
			if q.ShowWhen != nil {
				for _, c := range q.ShowWhen.Conditions {
					assert.Truef(t, declared[c.QuestionID],
						"domain %s question %s references %s before declaration", d.Key, q.ID, c.QuestionID)
				}
			}
			declared[q.ID] = true
		}
	}
}

func TestDomainsForEffectType(t *testing.T) {
	assignment := DomainsFor(model.EffectAssignment)
	require.Len(t, assignment, 5)
	keys := make([]string, 0, 5)
	for _, d := range assignment {
		keys = append(keys, d.Key)
	}
	assert.Contains(t, keys, KeyDeviationsAssignment)
	assert.NotContains(t, keys, KeyDeviationsAdhering)

	adhering := DomainsFor(model.EffectAdhering)
	require.Len(t, adhering, 5)
	keys = keys[:0]
	for _, d := range adhering {
		keys = append(keys, d.Key)
	}
	assert.Contains(t, keys, KeyDeviationsAdhering)
	assert.NotContains(t, keys, KeyDeviationsAssignment)
}

func TestVisibilityRuleModes(t *testing.T) {
	anyRule := &VisibilityRule{Mode: AnyOf, Conditions: []Condition{
		{QuestionID: "2.1", Answers: []model.Answer{model.AnswerYes}},
		{QuestionID: "2.2", Answers: []model.Answer{model.AnswerYes}},
	}}
	assert.True(t, anyRule.Visible(map[string]model.Answer{"2.2": model.AnswerYes}))
	assert.False(t, anyRule.Visible(map[string]model.Answer{"2.2": model.AnswerNo}))
	assert.False(t, anyRule.Visible(nil))

	allRule := &VisibilityRule{Mode: AllOf, Conditions: []Condition{
		{QuestionID: "4.1", Answers: []model.Answer{model.AnswerNo}},
		{QuestionID: "4.2", Answers: []model.Answer{model.AnswerNo}},
	}}
	assert.False(t, allRule.Visible(map[string]model.Answer{"4.1": model.AnswerNo}))
	assert.True(t, allRule.Visible(map[string]model.Answer{
		"4.1": model.AnswerNo,
		"4.2": model.AnswerNo,
	}))

	var nilRule *VisibilityRule
	assert.True(t, nilRule.Visible(nil), "questions without a rule are always visible")
}

func TestByKey(t *testing.T) {
	require.NotNil(t, ByKey(KeyRandomization))
	assert.Nil(t, ByKey("nope"))
}

func TestQuestionLookup(t *testing.T) {
	d := ByKey(KeyMissing)
	require.NotNil(t, d)
	require.NotNil(t, d.Question("3.2"))
	assert.Nil(t, d.Question("9.9"))
}
