package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metacalc/internal/model"
	"metacalc/internal/schema"
)

func completedStudy(id string, judgments map[string]model.Judgment, overall model.Judgment) *model.Study {
	st := &model.Study{
		ID:          id,
		Authors:     "Author " + id,
		Year:        "2020",
		EffectType:  model.EffectAssignment,
		Assessments: make(map[string]*model.DomainAssessment),
		OverallRisk: overall,
	}
	for key, j := range judgments {
		st.Assessments[key] = &model.DomainAssessment{Judgment: j}
	}
	return st
}

func allDomains(j model.Judgment) map[string]model.Judgment {
	return map[string]model.Judgment{
		schema.KeyRandomization:        j,
		schema.KeyDeviationsAssignment: j,
		schema.KeyMissing:              j,
		schema.KeyMeasurement:          j,
		schema.KeySelection:            j,
	}
}

// The three-study scenario: A all Low, B has D4 High, C has D1 Some concerns.
func scenario() []*model.Study {
	a := completedStudy("A", allDomains(model.JudgmentLow), model.JudgmentLow)
	b := completedStudy("B", allDomains(model.JudgmentLow), model.JudgmentHigh)
	b.Assessments[schema.KeyMeasurement].Judgment = model.JudgmentHigh
	c := completedStudy("C", allDomains(model.JudgmentLow), model.JudgmentSomeConcerns)
	c.Assessments[schema.KeyRandomization].Judgment = model.JudgmentSomeConcerns
	return []*model.Study{a, b, c}
}

func TestTrafficLightMatrix(t *testing.T) {
	tl := BuildTrafficLight(scenario())

	require.Len(t, tl.Slots, 5)
	require.Len(t, tl.Rows, 3)

	labels := []string{tl.Slots[0].Label, tl.Slots[1].Label, tl.Slots[2].Label, tl.Slots[3].Label, tl.Slots[4].Label}
	assert.Equal(t, []string{"D1", "D2", "D3", "D4", "D5"}, labels)

	a := tl.Rows[0]
	assert.Equal(t, "A", a.StudyID)
	assert.Equal(t, "Author A 2020", a.Label)
	for _, cell := range a.Cells {
		assert.Equal(t, "+", cell.Symbol)
	}
	assert.Equal(t, "+", a.Overall.Symbol)

	b := tl.Rows[1]
	assert.Equal(t, "X", b.Cells[3].Symbol, "D4 cell")
	assert.Equal(t, "X", b.Overall.Symbol)

	c := tl.Rows[2]
	assert.Equal(t, "−", c.Cells[0].Symbol, "D1 cell")
	assert.Equal(t, "−", c.Overall.Symbol)
}

func TestTrafficLightExcludesInProgressStudies(t *testing.T) {
	studies := scenario()
	studies = append(studies, &model.Study{ID: "wip", EffectType: model.EffectAssignment})

	tl := BuildTrafficLight(studies)
	assert.Len(t, tl.Rows, 3)
}

func TestTrafficLightMissingJudgmentSymbol(t *testing.T) {
	st := completedStudy("X", map[string]model.Judgment{
		schema.KeyRandomization: model.JudgmentLow,
	}, model.JudgmentLow)

	tl := BuildTrafficLight([]*model.Study{st})
	require.Len(t, tl.Rows, 1)
	assert.Equal(t, "+", tl.Rows[0].Cells[0].Symbol)
	assert.Equal(t, "?", tl.Rows[0].Cells[2].Symbol, "unassessed domain renders the question mark")
}

func TestD2SlotResolvesAdheringVariant(t *testing.T) {
	st := completedStudy("X", map[string]model.Judgment{
		schema.KeyDeviationsAdhering: model.JudgmentHigh,
	}, model.JudgmentHigh)

	tl := BuildTrafficLight([]*model.Study{st})
	assert.Equal(t, "X", tl.Rows[0].Cells[1].Symbol)
}

func TestD2SlotAssignmentWinsOnConflict(t *testing.T) {
	st := completedStudy("X", map[string]model.Judgment{
		schema.KeyDeviationsAssignment: model.JudgmentLow,
		schema.KeyDeviationsAdhering:   model.JudgmentHigh,
	}, model.JudgmentLow)

	tl := BuildTrafficLight([]*model.Study{st})
	assert.Equal(t, "+", tl.Rows[0].Cells[1].Symbol)
	assert.Equal(t, []string{"X"}, D2Conflicts([]*model.Study{st}))
}

func TestWeightedBarsScenario(t *testing.T) {
	rows := BuildWeightedBars(scenario())
	require.Len(t, rows, 6)

	overall := rows[5]
	assert.Equal(t, "Overall risk of bias", overall.Domain)
	assert.InDelta(t, 33.33, overall.Low, 0.01)
	assert.InDelta(t, 33.33, overall.SomeConcerns, 0.01)
	assert.InDelta(t, 33.33, overall.High, 0.01)

	d1 := rows[0]
	assert.InDelta(t, 66.67, d1.Low, 0.01)
	assert.InDelta(t, 33.33, d1.SomeConcerns, 0.01)
	assert.InDelta(t, 0, d1.High, 0.01)

	d4 := rows[3]
	assert.InDelta(t, 66.67, d4.Low, 0.01)
	assert.InDelta(t, 33.33, d4.High, 0.01)
}

func TestWeightedBarsSumToHundred(t *testing.T) {
	rows := BuildWeightedBars(scenario())
	for _, row := range rows {
		assert.InDeltaf(t, 100.0, row.Low+row.SomeConcerns+row.High, 1e-9,
			"row %s must sum to 100", row.Domain)
	}
}

func TestWeightedBarsEmptyWhenNoCompletedStudies(t *testing.T) {
	assert.Nil(t, BuildWeightedBars(nil))
	assert.Nil(t, BuildWeightedBars([]*model.Study{{ID: "wip"}}))
}
