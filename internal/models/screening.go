package models

import "time"

// Grade is the letter grade attached to a halal score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// Grades lists every grade from best to worst.
var Grades = []Grade{GradeAPlus, GradeA, GradeBPlus, GradeB, GradeC, GradeD, GradeF}

func (g Grade) String() string { return string(g) }

// Recommendation is the investment guidance derived from a halal score.
type Recommendation string

const (
	HighlyRecommended Recommendation = "highly_recommended"
	Recommended       Recommendation = "recommended"
	Caution           Recommendation = "caution"
	Avoid             Recommendation = "avoid"
)

// Recommendations lists every recommendation from best to worst.
var Recommendations = []Recommendation{HighlyRecommended, Recommended, Caution, Avoid}

func (r Recommendation) String() string { return string(r) }

// Label is the badge text for the recommendation.
func (r Recommendation) Label() string {
	switch r {
	case HighlyRecommended:
		return "Highly Recommended"
	case Recommended:
		return "Recommended"
	case Caution:
		return "Use Caution"
	default:
		return "Avoid"
	}
}

// GhararLevel grades the uncertainty exposure of a security.
type GhararLevel string

const (
	GhararLow    GhararLevel = "low"
	GhararMedium GhararLevel = "medium"
	GhararHigh   GhararLevel = "high"
)

// ComplianceMetrics is the per-security screening input. Ratios are percentages.
type ComplianceMetrics struct {
	Symbol              string  `json:"symbol" yaml:"symbol"`
	HaramIndustry       bool    `json:"haram_industry" yaml:"haram_industry"`
	InterestIncomeRatio float64 `json:"interest_income_ratio" yaml:"interest_income_ratio"`
	HaramRevenueRatio   float64 `json:"haram_revenue_ratio" yaml:"haram_revenue_ratio"`
	DebtRatio           float64 `json:"debt_ratio" yaml:"debt_ratio"`
}

// ComplianceChecks reports each quantitative screen individually.
type ComplianceChecks struct {
	RibaFree         bool `json:"riba_free"`
	DebtCompliant    bool `json:"debt_compliant"`
	RevenueCompliant bool `json:"revenue_compliant"`
	HaramIndustry    bool `json:"haram_industry"`
}

// ScreeningResult is the outcome of screening one security.
type ScreeningResult struct {
	Symbol         string           `json:"symbol,omitempty"`
	Score          int              `json:"halal_score"`
	Grade          Grade            `json:"grade"`
	Recommendation Recommendation   `json:"recommendation"`
	Gharar         GhararLevel      `json:"gharar_level"`
	Checks         ComplianceChecks `json:"compliance"`
	Alternatives   []string         `json:"alternatives,omitempty"`
}

// SecurityInfo is reference data for a tradable symbol.
type SecurityInfo struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Class    string `json:"class"`
	Sector   string `json:"sector,omitempty"`
	Tradable bool   `json:"tradable"`
}

// Holding is one line of a portfolio file.
type Holding struct {
	ComplianceMetrics `yaml:",inline"`
	Name              string `json:"name,omitempty" yaml:"name,omitempty"`
}

// HoldingResult pairs a holding with its screening outcome or the reason it was rejected.
type HoldingResult struct {
	Symbol string           `json:"symbol"`
	Name   string           `json:"name,omitempty"`
	Result *ScreeningResult `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// PortfolioReport is the outcome of screening a whole portfolio.
type PortfolioReport struct {
	ID           string          `json:"id"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Holdings     []HoldingResult `json:"holdings"`
	Screened     int             `json:"screened"`
	Rejected     int             `json:"rejected"`
	AverageScore float64         `json:"average_score"`
	Compliant    int             `json:"compliant"` // recommended or better
}
