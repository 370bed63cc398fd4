package screening

import (
	"errors"
	"math"
	"testing"

	"halal_finance/internal/models"

	"github.com/google/go-cmp/cmp"
)

func TestScreen_Scores(t *testing.T) {
	cases := []struct {
		name    string
		metrics models.ComplianceMetrics
		score   int
		grade   models.Grade
		rec     models.Recommendation
	}{
		{
			name:    "clean technology company",
			metrics: models.ComplianceMetrics{Symbol: "aapl", DebtRatio: 15.2, InterestIncomeRatio: 1.8},
			score:   100, grade: models.GradeAPlus, rec: models.HighlyRecommended,
		},
		{
			name:    "small breaches on every ratio",
			metrics: models.ComplianceMetrics{DebtRatio: 40, InterestIncomeRatio: 7, HaramRevenueRatio: 6},
			score:   90, grade: models.GradeAPlus, rec: models.HighlyRecommended,
		},
		{
			name:    "leveraged",
			metrics: models.ComplianceMetrics{DebtRatio: 50},
			score:   83, grade: models.GradeA, rec: models.HighlyRecommended,
		},
		{
			name:    "fractional excess rounds half up",
			metrics: models.ComplianceMetrics{DebtRatio: 34.6},
			score:   98, grade: models.GradeAPlus, rec: models.HighlyRecommended,
		},
		{
			name:    "interest heavy",
			metrics: models.ComplianceMetrics{InterestIncomeRatio: 45},
			score:   60, grade: models.GradeB, rec: models.Caution,
		},
		{
			name:    "deductions saturate at zero",
			metrics: models.ComplianceMetrics{DebtRatio: 100, InterestIncomeRatio: 100, HaramRevenueRatio: 100},
			score:   0, grade: models.GradeF, rec: models.Avoid,
		},
		{
			name: "bank",
			metrics: models.ComplianceMetrics{
				Symbol: "JPM", HaramIndustry: true,
				DebtRatio: 85.2, InterestIncomeRatio: 78.5, HaramRevenueRatio: 95,
			},
			score: 0, grade: models.GradeF, rec: models.Avoid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Screen(tc.metrics)
			if err != nil {
				t.Fatalf("Screen failed: %v", err)
			}
			if res.Score != tc.score {
				t.Errorf("Expected score %d, got %d", tc.score, res.Score)
			}
			if res.Grade != tc.grade {
				t.Errorf("Expected grade %s, got %s", tc.grade, res.Grade)
			}
			if res.Recommendation != tc.rec {
				t.Errorf("Expected recommendation %s, got %s", tc.rec, res.Recommendation)
			}
		})
	}
}

func TestScreen_HaramIndustryDisqualifies(t *testing.T) {
	res, err := Screen(models.ComplianceMetrics{Symbol: "BREW", HaramIndustry: true})
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}

	if res.Score > HaramIndustryCap {
		t.Errorf("Expected score capped at %d, got %d", HaramIndustryCap, res.Score)
	}
	if res.Grade != models.GradeD && res.Grade != models.GradeF {
		t.Errorf("Expected fail-tier grade, got %s", res.Grade)
	}
	if res.Recommendation != models.Avoid {
		t.Errorf("Expected avoid, got %s", res.Recommendation)
	}
	if !res.Checks.HaramIndustry {
		t.Error("Expected haram industry check to be reported")
	}
	if diff := cmp.Diff(Alternatives, res.Alternatives); diff != "" {
		t.Errorf("alternatives mismatch (-want +got):\n%s", diff)
	}
}

func TestScreen_Idempotent(t *testing.T) {
	m := models.ComplianceMetrics{Symbol: "TSLA", DebtRatio: 22.1, InterestIncomeRatio: 0.5, HaramRevenueRatio: 6.25}

	first, err := Screen(m)
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := Screen(m)
		if err != nil {
			t.Fatalf("Screen failed: %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestScreen_Checks(t *testing.T) {
	res, err := Screen(models.ComplianceMetrics{DebtRatio: 33, InterestIncomeRatio: 5.01, HaramRevenueRatio: 5})
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}

	want := models.ComplianceChecks{RibaFree: false, DebtCompliant: true, RevenueCompliant: true}
	if diff := cmp.Diff(want, res.Checks); diff != "" {
		t.Errorf("checks mismatch (-want +got):\n%s", diff)
	}
	if res.Alternatives != nil {
		t.Errorf("Expected no alternatives for a compliant security, got %v", res.Alternatives)
	}
}

func TestScreen_InvalidRatio(t *testing.T) {
	cases := []struct {
		name string
		m    models.ComplianceMetrics
	}{
		{"interest above 100", models.ComplianceMetrics{InterestIncomeRatio: 150}},
		{"negative debt", models.ComplianceMetrics{DebtRatio: -0.1}},
		{"haram revenue NaN", models.ComplianceMetrics{HaramRevenueRatio: math.NaN()}},
		{"debt infinite", models.ComplianceMetrics{DebtRatio: math.Inf(1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Screen(tc.m)
			if !errors.Is(err, ErrInvalidRatio) {
				t.Fatalf("Expected ErrInvalidRatio, got %v", err)
			}
			if diff := cmp.Diff(models.ScreeningResult{}, res); diff != "" {
				t.Errorf("Expected no partial result:\n%s", diff)
			}
		})
	}
}

func TestPolicy_Weights(t *testing.T) {
	p := Policy{DebtWeight: 2, InterestWeight: 1, HaramRevenueWeight: 1}

	res, err := p.Screen(models.ComplianceMetrics{DebtRatio: 43})
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}
	if res.Score != 80 {
		t.Errorf("Expected score 80, got %d", res.Score)
	}
	// 80 is an A but not above the highly_recommended band.
	if res.Grade != models.GradeA || res.Recommendation != models.Recommended {
		t.Errorf("Expected A/recommended, got %s/%s", res.Grade, res.Recommendation)
	}

	negative := Policy{DebtWeight: -5}
	res, err = negative.Screen(models.ComplianceMetrics{DebtRatio: 90})
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}
	if res.Score != 100 {
		t.Errorf("Expected negative weight to be ignored, got score %d", res.Score)
	}
}
