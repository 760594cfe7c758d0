package schema

import "metacalc/internal/model"

// Domain keys. The two deviations variants share the D2 display slot and are
// selected by the study's effect type.
const (
	KeyRandomization        = "randomization"
	KeyDeviationsAssignment = "deviations_assignment"
	KeyDeviationsAdhering   = "deviations_adhering"
	KeyMissing              = "missing"
	KeyMeasurement          = "measurement"
	KeySelection            = "selection"
)

var (
	yesish    = []model.Answer{model.AnswerYes, model.AnswerProbablyYes}
	noish     = []model.Answer{model.AnswerNo, model.AnswerProbablyNo}
	yesOrNI   = []model.Answer{model.AnswerYes, model.AnswerProbablyYes, model.AnswerNoInfo}
	noOrNI    = []model.Answer{model.AnswerNo, model.AnswerProbablyNo, model.AnswerNoInfo}
	yesOrNA   = []model.Answer{model.AnswerYes, model.AnswerProbablyYes, model.AnswerNotApplic}
	noOrNA    = []model.Answer{model.AnswerNo, model.AnswerProbablyNo, model.AnswerNotApplic}
	lowOnYes  = &RiskIndicators{Low: yesish, High: noish}
	lowOnNo   = &RiskIndicators{Low: noish, High: yesish}
	lowOnYesA = &RiskIndicators{Low: yesOrNA, High: noish}
	lowOnNoA  = &RiskIndicators{Low: noOrNA, High: yesish}
)

// domains is the full RoB 2.0 catalog in assessment order. Follow-up
// questions only ever reference earlier questions in the same domain; the
// engine's single forward evaluation pass depends on that and Validate
// enforces it.
var domains = []*Domain{
	{
		Key:         KeyRandomization,
		DisplayName: "Domain 1: Bias arising from the randomization process",
		Questions: []Question{
			{
				ID:   "1.1",
				Text: "Was the allocation sequence random?",
				Risk: lowOnYes,
			},
			{
				ID:   "1.2",
				Text: "Was the allocation sequence concealed until participants were enrolled and assigned to interventions?",
				Risk: lowOnYes,
			},
			{
				ID:   "1.3",
				Text: "Did baseline differences between intervention groups suggest a problem with the randomization process?",
				Risk: lowOnNo,
			},
		},
	},
	{
		Key:         KeyDeviationsAssignment,
		DisplayName: "Domain 2: Bias due to deviations from intended interventions (effect of assignment)",
		EffectType:  model.EffectAssignment,
		Questions: []Question{
			{
				ID:   "2.1",
				Text: "Were participants aware of their assigned intervention during the trial?",
			},
			{
				ID:   "2.2",
				Text: "Were carers and people delivering the interventions aware of participants' assigned intervention during the trial?",
			},
			{
				ID:   "2.3",
				Text: "If Y/PY/NI to 2.1 or 2.2: Were there deviations from the intended intervention that arose because of the trial context?",
				Risk: lowOnNo,
				ShowWhen: &VisibilityRule{Mode: AnyOf, Conditions: []Condition{
					{QuestionID: "2.1", Answers: yesOrNI},
					{QuestionID: "2.2", Answers: yesOrNI},
				}},
			},
			{
				ID:   "2.4",
				Text: "If Y/PY to 2.3: Were these deviations likely to have affected the outcome?",
				Risk: lowOnNo,
				ShowWhen: &VisibilityRule{Mode: AnyOf, Conditions: []Condition{
					{QuestionID: "2.3", Answers: yesish},
				}},
			},
			{
				ID:   "2.5",
				Text: "If Y/PY/NI to 2.4: Were these deviations from intended intervention balanced between groups?",
				Risk: lowOnYes,
				ShowWhen: &VisibilityRule{Mode: AnyOf, Conditions: []Condition{
					{QuestionID: "2.4", Answers: yesOrNI},
				}},
			},
			{
				ID:   "2.6",
				Text: "Was an appropriate analysis used to estimate the effect of assignment to intervention?",
				Risk: lowOnYes,
			},
			{
				ID:   "2.7",
				Text: "If N/PN/NI to 2.6: Was there potential for a substantial impact (on the result) of the failure to analyse participants in the group to which they were randomized?",
				Risk: lowOnNo,
				ShowWhen: &VisibilityRule{Mode: AnyOf, Conditions: []Condition{
					{QuestionID: "2.6", Answers: noOrNI},
				}},
			},
		},
	},
	{
		Key:         KeyDeviationsAdhering,
		DisplayName: "Domain 2: Bias due to deviations from intended interventions (effect of adhering)",
		EffectType:  model.EffectAdhering,
		Questions: []Question{
			{
				ID:   "2.1",
				Text: "Were participants aware of their assigned intervention during the trial?",
			},
			{
				ID:   "2.2",
				Text: "Were carers and people delivering the interventions aware of participants' assigned intervention during the trial?",
			},
			{
				ID:   "2.3",
				Text: "[If applicable:] If Y/PY/NI to 2.1 or 2.2: Were important non-protocol interventions balanced across intervention groups?",
				Risk: lowOnYesA,
				ShowWhen: &VisibilityRule{Mode: AnyOf, Conditions: []Condition{
					{QuestionID: "2.1", Answers: yesOrNI},
					{QuestionID: "2.2", Answers: yesOrNI},
				}},
			},
			{
				ID:   "2.4",
				Text: "[If applicable:] Were there failures in implementing the intervention that could have affected the outcome?",
				Risk: lowOnNoA,
			},
			{
				ID:   "2.5",
				Text: "[If applicable:] Was there non-adherence to the assigned intervention regimen that could have affected participants' outcomes?",
				Risk: lowOnNoA,
			},
			{
				ID:   "2.6",
				Text: "If N/PN/NI to 2.3, or Y/PY/NI to 2.4 or 2.5: Was an appropriate analysis used to estimate the effect of adhering to the intervention?",
				Risk: lowOnYesA,
				ShowWhen: &VisibilityRule{Mode: AnyOf, Conditions: []Condition{
					{QuestionID: "2.3", Answers: noOrNI},
					{QuestionID: "2.4", Answers: yesOrNI},
					{QuestionID: "2.5", Answers: yesOrNI},
				}},
			},
		},
	},
	{
		Key:         KeyMissing,
		DisplayName: "Domain 3: Bias due to missing outcome data",
		Questions: []Question{
			{
				ID:   "3.1",
				Text: "Were data for this outcome available for all, or nearly all, participants randomized?",
				Risk: lowOnYes,
			},
			{
				ID:   "3.2",
				Text: "If N/PN/NI to 3.1: Is there evidence that the result was not biased by missing outcome data?",
				Risk: lowOnYes,
				ShowWhen: &VisibilityRule{Mode: AnyOf, Conditions: []Condition{
					{QuestionID: "3.1", Answers: noOrNI},
				}},
			},
			{
				ID:   "3.3",
				Text: "If N/PN to 3.2: Could missingness in the outcome depend on its true value?",
				Risk: lowOnNo,
				ShowWhen: &VisibilityRule{Mode: AnyOf, Conditions: []Condition{
					{QuestionID: "3.2", Answers: noish},
				}},
			},
			{
				ID:   "3.4",
				Text: "If Y/PY/NI to 3.3: Is it likely that missingness in the outcome depended on its true value?",
				Risk: lowOnNo,
				ShowWhen: &VisibilityRule{Mode: AnyOf, Conditions: []Condition{
					{QuestionID: "3.3", Answers: yesOrNI},
				}},
			},
		},
	},
	{
		Key:         KeyMeasurement,
		DisplayName: "Domain 4: Bias in measurement of the outcome",
		Questions: []Question{
			{
				ID:   "4.1",
				Text: "Was the method of measuring the outcome inappropriate?",
				Risk: lowOnNo,
			},
			{
				ID:   "4.2",
				Text: "Could measurement or ascertainment of the outcome have differed between intervention groups?",
				Risk: lowOnNo,
			},
			{
				ID:   "4.3",
				Text: "If N/PN/NI to 4.1 and 4.2: Were outcome assessors aware of the intervention received by study participants?",
				ShowWhen: &VisibilityRule{Mode: AllOf, Conditions: []Condition{
					{QuestionID: "4.1", Answers: noOrNI},
					{QuestionID: "4.2", Answers: noOrNI},
				}},
			},
			{
				ID:   "4.4",
				Text: "If Y/PY/NI to 4.3: Could assessment of the outcome have been influenced by knowledge of intervention received?",
				Risk: lowOnNo,
				ShowWhen: &VisibilityRule{Mode: AnyOf, Conditions: []Condition{
					{QuestionID: "4.3", Answers: yesOrNI},
				}},
			},
			{
				ID:   "4.5",
				Text: "If Y/PY/NI to 4.4: Is it likely that assessment of the outcome was influenced by knowledge of intervention received?",
				Risk: lowOnNo,
				ShowWhen: &VisibilityRule{Mode: AnyOf, Conditions: []Condition{
					{QuestionID: "4.4", Answers: yesOrNI},
				}},
			},
		},
	},
	{
		Key:         KeySelection,
		DisplayName: "Domain 5: Bias in selection of the reported result",
		Questions: []Question{
			{
				ID:   "5.1",
				Text: "Were the data that produced this result analysed in accordance with a pre-specified analysis plan that was finalized before unblinded outcome data were available for analysis?",
				Risk: lowOnYes,
			},
			{
				ID:   "5.2",
				Text: "Is the numerical result being assessed likely to have been selected, on the basis of the results, from multiple eligible outcome measurements (e.g. scales, definitions, time points) within the outcome domain?",
				Risk: lowOnNo,
			},
			{
				ID:   "5.3",
				Text: "Is the numerical result being assessed likely to have been selected, on the basis of the results, from multiple eligible analyses of the data?",
				Risk: lowOnNo,
			},
		},
	},
}
