// Package projection turns completed studies into the two RoB 2.0
// presentation models: the traffic-light matrix and the weighted-bar
// distribution. Both are pure transforms; rendering to images belongs to
// whatever consumes them.
package projection

import (
	"fmt"

	"metacalc/internal/model"
	"metacalc/internal/schema"
)

// Slot is one of the five canonical domain columns. Both Domain 2 variants
// project into the D2 slot.
type Slot struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Name  string `json:"name"`
}

var slots = []Slot{
	{Key: "randomization", Label: "D1", Name: "Randomization process"},
	{Key: "deviations", Label: "D2", Name: "Deviations from the intended interventions"},
	{Key: "missing", Label: "D3", Name: "Missing outcome data"},
	{Key: "measurement", Label: "D4", Name: "Measurement of the outcome"},
	{Key: "selection", Label: "D5", Name: "Selection of the reported result"},
}

// Slots returns the five canonical domain columns in display order.
func Slots() []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}

// Symbol is the 4-way traffic-light glyph for a judgment.
func Symbol(j model.Judgment) string {
	switch j {
	case model.JudgmentLow:
		return "+"
	case model.JudgmentSomeConcerns:
		return "−"
	case model.JudgmentHigh:
		return "X"
	default:
		return "?"
	}
}

// Cell is one traffic-light matrix entry.
type Cell struct {
	Judgment model.Judgment `json:"judgment"`
	Symbol   string         `json:"symbol"`
}

// Row is one study's traffic-light line: five domain cells plus Overall.
type Row struct {
	StudyID string `json:"studyId"`
	Label   string `json:"label"`
	Cells   []Cell `json:"cells"`
	Overall Cell   `json:"overall"`
}

// TrafficLight is the per-study × per-domain judgment matrix.
type TrafficLight struct {
	Slots []Slot `json:"slots"`
	Rows  []Row  `json:"rows"`
}

// BarRow is one weighted-bar line: the share of completed studies at each
// judgment level for one domain. The three percentages sum to 100 because
// only completed studies (all five domains judged) enter the projection.
type BarRow struct {
	Domain       string  `json:"domain"`
	Low          float64 `json:"low"`
	SomeConcerns float64 `json:"someConcerns"`
	High         float64 `json:"high"`
}

// completed filters to studies whose assessment is finished; in-progress
// studies are excluded from both projections.
func completed(studies []*model.Study) []*model.Study {
	out := make([]*model.Study, 0, len(studies))
	for _, st := range studies {
		if st.OverallRisk != model.JudgmentUnset {
			out = append(out, st)
		}
	}
	return out
}

// slotJudgment resolves a canonical slot to a study's judgment. The D2 slot
// looks up the assignment variant first; a study should never carry both,
// but if it does, assignment wins.
func slotJudgment(st *model.Study, slotKey string) model.Judgment {
	keys := []string{slotKey}
	if slotKey == "deviations" {
		keys = []string{schema.KeyDeviationsAssignment, schema.KeyDeviationsAdhering}
	}
	for _, key := range keys {
		if a, ok := st.Assessments[key]; ok && a.Judgment != model.JudgmentUnset {
			return a.Judgment
		}
	}
	return model.JudgmentUnset
}

// D2Conflicts returns the ids of studies that carry judgments for both
// Domain 2 variants. That violates the effect-type invariant; callers log it
// as a defect while the projections fall back to the assignment variant.
func D2Conflicts(studies []*model.Study) []string {
	var ids []string
	for _, st := range studies {
		a, okA := st.Assessments[schema.KeyDeviationsAssignment]
		b, okB := st.Assessments[schema.KeyDeviationsAdhering]
		if okA && okB && a.Judgment != model.JudgmentUnset && b.Judgment != model.JudgmentUnset {
			ids = append(ids, st.ID)
		}
	}
	return ids
}

func studyLabel(st *model.Study, index int) string {
	if st.Authors != "" {
		if st.Year != "" {
			return st.Authors + " " + st.Year
		}
		return st.Authors
	}
	return fmt.Sprintf("Study %d", index+1)
}

// BuildTrafficLight projects completed studies into the traffic-light
// matrix, rows in store order.
func BuildTrafficLight(studies []*model.Study) TrafficLight {
	done := completed(studies)
	tl := TrafficLight{Slots: Slots(), Rows: make([]Row, 0, len(done))}
	for i, st := range done {
		row := Row{
			StudyID: st.ID,
			Label:   studyLabel(st, i),
			Cells:   make([]Cell, 0, len(slots)),
			Overall: Cell{Judgment: st.OverallRisk, Symbol: Symbol(st.OverallRisk)},
		}
		for _, slot := range slots {
			j := slotJudgment(st, slot.Key)
			row.Cells = append(row.Cells, Cell{Judgment: j, Symbol: Symbol(j)})
		}
		tl.Rows = append(tl.Rows, row)
	}
	return tl
}

// BuildWeightedBars projects completed studies into the six-row percentage
// distribution (five domains plus Overall). With no completed studies the
// projection is empty.
func BuildWeightedBars(studies []*model.Study) []BarRow {
	done := completed(studies)
	if len(done) == 0 {
		return nil
	}

	rows := make([]BarRow, 0, len(slots)+1)
	total := float64(len(done))
	for _, slot := range slots {
		var low, concerns, high int
		for _, st := range done {
			switch slotJudgment(st, slot.Key) {
			case model.JudgmentLow:
				low++
			case model.JudgmentSomeConcerns:
				concerns++
			case model.JudgmentHigh:
				high++
			}
		}
		rows = append(rows, BarRow{
			Domain:       slot.Name,
			Low:          float64(low) / total * 100,
			SomeConcerns: float64(concerns) / total * 100,
			High:         float64(high) / total * 100,
		})
	}

	var low, concerns, high int
	for _, st := range done {
		switch st.OverallRisk {
		case model.JudgmentLow:
			low++
		case model.JudgmentSomeConcerns:
			concerns++
		case model.JudgmentHigh:
			high++
		}
	}
	rows = append(rows, BarRow{
		Domain:       "Overall risk of bias",
		Low:          float64(low) / total * 100,
		SomeConcerns: float64(concerns) / total * 100,
		High:         float64(high) / total * 100,
	})
	return rows
}
