// Package stats holds the meta-analysis conversion formulas: effect sizes,
// pooled variances and 2x2 binary outcome measures. Each function is a pure
// computation over its inputs.
package stats

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidInput = errors.New("invalid input")

// criticalZ returns the two-sided normal critical value for the supported
// confidence levels.
func criticalZ(level float64) (float64, error) {
	switch level {
	case 90:
		return 1.6449, nil
	case 95:
		return 1.96, nil
	case 99:
		return 2.5758, nil
	default:
		return 0, fmt.Errorf("%w: unsupported confidence level %.0f", ErrInvalidInput, level)
	}
}

// normalCDF is the standard normal cumulative distribution function.
func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// SEToSD converts a standard error back to a standard deviation:
// SD = SE x sqrt(n).
func SEToSD(se float64, n int) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: sample size must be positive", ErrInvalidInput)
	}
	if se < 0 {
		return 0, fmt.Errorf("%w: standard error must be non-negative", ErrInvalidInput)
	}
	return se * math.Sqrt(float64(n)), nil
}

// MeanSD is a mean with its standard deviation.
type MeanSD struct {
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
}

// CIToMeanSD recovers mean and SD from a confidence interval:
// mean = (lower+upper)/2, SD = sqrt(n) x (upper-lower) / (2z).
func CIToMeanSD(lower, upper float64, n int, level float64) (MeanSD, error) {
	if n <= 0 {
		return MeanSD{}, fmt.Errorf("%w: sample size must be positive", ErrInvalidInput)
	}
	if upper < lower {
		return MeanSD{}, fmt.Errorf("%w: upper bound below lower bound", ErrInvalidInput)
	}
	z, err := criticalZ(level)
	if err != nil {
		return MeanSD{}, err
	}
	return MeanSD{
		Mean: (lower + upper) / 2,
		SD:   math.Sqrt(float64(n)) * (upper - lower) / (2 * z),
	}, nil
}

// PooledSD pools two group standard deviations:
// sqrt(((n1-1)sd1^2 + (n2-1)sd2^2) / (n1+n2-2)).
func PooledSD(n1 int, sd1 float64, n2 int, sd2 float64) (float64, error) {
	if n1 <= 0 || n2 <= 0 {
		return 0, fmt.Errorf("%w: sample sizes must be positive", ErrInvalidInput)
	}
	if n1+n2 <= 2 {
		return 0, fmt.Errorf("%w: pooled SD needs n1+n2 > 2", ErrInvalidInput)
	}
	if sd1 < 0 || sd2 < 0 {
		return 0, fmt.Errorf("%w: standard deviations must be non-negative", ErrInvalidInput)
	}
	num := float64(n1-1)*sd1*sd1 + float64(n2-1)*sd2*sd2
	return math.Sqrt(num / float64(n1+n2-2)), nil
}

// SMDInput describes a two-group continuous comparison.
type SMDInput struct {
	Mean1      float64 `json:"mean1"`
	SD1        float64 `json:"sd1"`
	N1         int     `json:"n1"`
	Mean2      float64 `json:"mean2"`
	SD2        float64 `json:"sd2"`
	N2         int     `json:"n2"`
	Correction bool    `json:"correction"` // apply Hedges' small-sample J
}

// SMDResult is the standardized mean difference with its dispersion.
type SMDResult struct {
	CohensD  float64 `json:"cohensD"`
	HedgesG  float64 `json:"hedgesG"`
	J        float64 `json:"j"`
	PooledSD float64 `json:"pooledSD"`
	SE       float64 `json:"se"`
	CILower  float64 `json:"ciLower"`
	CIUpper  float64 `json:"ciUpper"`
	Z        float64 `json:"z"`
	P        float64 `json:"p"`
}

// SMD computes Cohen's d and Hedges' g (J = 1 - 3/(4df-1)) with SE, 95% CI,
// z and a two-sided p value.
func SMD(in SMDInput) (SMDResult, error) {
	pooled, err := PooledSD(in.N1, in.SD1, in.N2, in.SD2)
	if err != nil {
		return SMDResult{}, err
	}
	if pooled == 0 {
		return SMDResult{}, fmt.Errorf("%w: pooled SD is zero", ErrInvalidInput)
	}

	d := (in.Mean1 - in.Mean2) / pooled
	df := in.N1 + in.N2 - 2
	j := 1 - 3/float64(4*df-1)
	g := d
	if in.Correction {
		g = d * j
	}

	n1, n2 := float64(in.N1), float64(in.N2)
	se := math.Sqrt((n1+n2)/(n1*n2) + g*g/(2*(n1+n2)))
	z := g / se
	return SMDResult{
		CohensD:  d,
		HedgesG:  g,
		J:        j,
		PooledSD: pooled,
		SE:       se,
		CILower:  g - 1.96*se,
		CIUpper:  g + 1.96*se,
		Z:        z,
		P:        2 * (1 - normalCDF(math.Abs(z))),
	}, nil
}

// BinaryInput is a 2x2 table: events/totals for the experimental and
// comparator arms.
type BinaryInput struct {
	Events1 int `json:"events1"`
	Total1  int `json:"total1"`
	Events2 int `json:"events2"`
	Total2  int `json:"total2"`
	// Haldane applies the 0.5 continuity correction to every cell when any
	// cell is zero.
	Haldane bool `json:"haldane"`
}

// Interval is an effect estimate with its 95% confidence bounds.
type Interval struct {
	Estimate float64 `json:"estimate"`
	SE       float64 `json:"se"`
	CILower  float64 `json:"ciLower"`
	CIUpper  float64 `json:"ciUpper"`
}

// BinaryResult holds the three binary effect measures.
type BinaryResult struct {
	OddsRatio         Interval `json:"oddsRatio"`  // SE and CI on the log scale, bounds exponentiated
	RiskRatio         Interval `json:"riskRatio"`  // likewise
	RiskDifference    Interval `json:"riskDifference"`
	P1                float64  `json:"p1"`
	P2                float64  `json:"p2"`
	CorrectionApplied bool     `json:"correctionApplied"`
}

// BinaryOutcomes computes OR, RR and RD with 95% CIs from a 2x2 table.
func BinaryOutcomes(in BinaryInput) (BinaryResult, error) {
	if in.Total1 <= 0 || in.Total2 <= 0 {
		return BinaryResult{}, fmt.Errorf("%w: totals must be positive", ErrInvalidInput)
	}
	if in.Events1 < 0 || in.Events2 < 0 || in.Events1 > in.Total1 || in.Events2 > in.Total2 {
		return BinaryResult{}, fmt.Errorf("%w: events must be between 0 and the arm total", ErrInvalidInput)
	}

	a := float64(in.Events1)
	b := float64(in.Total1 - in.Events1)
	c := float64(in.Events2)
	d := float64(in.Total2 - in.Events2)

	corrected := false
	if (a == 0 || b == 0 || c == 0 || d == 0) && in.Haldane {
		a, b, c, d = a+0.5, b+0.5, c+0.5, d+0.5
		corrected = true
	}
	if a == 0 || b == 0 || c == 0 || d == 0 {
		return BinaryResult{}, fmt.Errorf("%w: zero cell without continuity correction", ErrInvalidInput)
	}

	p1 := a / (a + b)
	p2 := c / (c + d)

	or := (a * d) / (b * c)
	seLogOR := math.Sqrt(1/a + 1/b + 1/c + 1/d)
	logOR := math.Log(or)

	rr := p1 / p2
	seLogRR := math.Sqrt(1/a - 1/(a+b) + 1/c - 1/(c+d))
	logRR := math.Log(rr)

	rd := p1 - p2
	seRD := math.Sqrt(p1*(1-p1)/(a+b) + p2*(1-p2)/(c+d))

	return BinaryResult{
		OddsRatio: Interval{
			Estimate: or,
			SE:       seLogOR,
			CILower:  math.Exp(logOR - 1.96*seLogOR),
			CIUpper:  math.Exp(logOR + 1.96*seLogOR),
		},
		RiskRatio: Interval{
			Estimate: rr,
			SE:       seLogRR,
			CILower:  math.Exp(logRR - 1.96*seLogRR),
			CIUpper:  math.Exp(logRR + 1.96*seLogRR),
		},
		RiskDifference: Interval{
			Estimate: rd,
			SE:       seRD,
			CILower:  rd - 1.96*seRD,
			CIUpper:  rd + 1.96*seRD,
		},
		P1:                p1,
		P2:                p2,
		CorrectionApplied: corrected,
	}, nil
}
