package allocation

import (
	"testing"
	"time"

	"goodplay-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_StaysWithinBounds(t *testing.T) {
	budget := 500000.0
	in := ScoringInput{
		Request: &models.AllocationRequest{
			RequestedAmount: 10000,
			ProjectTitle:    "Emergency flood relief",
			UrgencyLevel:    5,
			Priority:        models.PriorityEmergency,
			Category:        "emergency_relief",
		},
		Profile:          &models.Onlus{AnnualBudget: &budget, CurrentFunding: 10000},
		ComplianceScore:  floatPtr(100),
		RecentResults:    completedSnapshots(10),
		CompletedResults: completedSnapshots(5),
		DonorPreferences: []string{"emergency", "relief"},
		Now:              time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC),
	}

	breakdown := Score(in)

	assert.GreaterOrEqual(t, breakdown.Total, 0.0)
	assert.LessOrEqual(t, breakdown.Total, 100.0)
	require.Len(t, breakdown.Factors, 6)
	for _, f := range breakdown.Factors {
		assert.GreaterOrEqual(t, f.Raw, 0.0, f.Name)
		assert.LessOrEqual(t, f.Raw, 100.0, f.Name)
		assert.InDelta(t, f.Raw*f.Weight, f.Weighted, 1e-9, f.Name)
	}
}

func TestScore_RecoversFromBrokenInput(t *testing.T) {
	// Nil request blows up the request-dependent factors; each must fall
	// back instead of taking the composite down.
	in := ScoringInput{
		Request:          nil,
		Profile:          &models.Onlus{},
		DonorPreferences: []string{"health"},
		Now:              time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}

	breakdown := Score(in)

	assert.GreaterOrEqual(t, breakdown.Total, 0.0)
	assert.LessOrEqual(t, breakdown.Total, 100.0)
	assert.Equal(t, neutralScore, factorRaw(t, breakdown, "urgency"))
	assert.Equal(t, neutralScore, factorRaw(t, breakdown, "preferences_match"))
	assert.Equal(t, neutralScore, factorRaw(t, breakdown, "seasonal"))
}

func TestUrgencyScore_CapsDeadlineBumpAtMaximum(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	deadline := now.Add(3 * 24 * time.Hour)
	in := ScoringInput{
		Request: &models.AllocationRequest{UrgencyLevel: 5, Priority: 3, Deadline: &deadline},
		Now:     now,
	}

	// 5*20 plus the short-deadline bump overshoots before clamping.
	assert.Equal(t, 120.0, urgencyScore(in))

	breakdown := Score(in)
	assert.Equal(t, 100.0, factorRaw(t, breakdown, "urgency"))
}

func TestUrgencyScore_EmergencyShortCircuits(t *testing.T) {
	in := ScoringInput{
		Request: &models.AllocationRequest{UrgencyLevel: 2, Priority: models.PriorityEmergency},
		Now:     time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, 100.0, urgencyScore(in))
	assert.Equal(t, 90.0, seasonalScore(in))
}

func TestUrgencyScore_DeadlineBumps(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		deadline time.Time
		expected float64
	}{
		{"within a week", now.Add(5 * 24 * time.Hour), 60},
		{"within a month", now.Add(20 * 24 * time.Hour), 50},
		{"within a quarter", now.Add(60 * 24 * time.Hour), 45},
		{"far out", now.Add(200 * 24 * time.Hour), 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deadline := tc.deadline
			in := ScoringInput{
				Request: &models.AllocationRequest{UrgencyLevel: 2, Priority: 3, Deadline: &deadline},
				Now:     now,
			}
			assert.Equal(t, tc.expected, urgencyScore(in))
		})
	}
}

func TestFundingGapScore_TiersByRemainingGap(t *testing.T) {
	cases := []struct {
		name     string
		funding  float64
		expected float64
	}{
		{"nearly unfunded", 10000, 95},
		{"mostly unfunded", 30000, 85},
		{"half funded", 50000, 70},
		{"mostly funded", 70000, 55},
		{"nearly complete", 95000, 40},
		{"overfunded", 120000, 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			budget := 100000.0
			in := ScoringInput{Profile: &models.Onlus{AnnualBudget: &budget, CurrentFunding: tc.funding}}
			assert.Equal(t, tc.expected, fundingGapScore(in))
		})
	}
}

func TestFundingGapScore_NeutralWithoutBudget(t *testing.T) {
	assert.Equal(t, neutralScore, fundingGapScore(ScoringInput{Profile: &models.Onlus{}}))

	zero := 0.0
	in := ScoringInput{Profile: &models.Onlus{AnnualBudget: &zero}}
	assert.Equal(t, neutralScore, fundingGapScore(in))
}

func TestPerformanceScore_BlendsComplianceAndHistory(t *testing.T) {
	recent := completedSnapshots(8)
	recent = append(recent, ResultSnapshot{Status: models.ResultStatusFailed}, ResultSnapshot{Status: models.ResultStatusPartial})

	in := ScoringInput{ComplianceScore: floatPtr(90), RecentResults: recent}

	// 0.7*90 compliance plus 0.3*80 completion rate.
	assert.InDelta(t, 87.0, performanceScore(in), 1e-9)
}

func TestPerformanceScore_DefaultsWithoutData(t *testing.T) {
	assert.InDelta(t, 70.0, performanceScore(ScoringInput{}), 1e-9)
}

func TestPreferencesScore_MatchesCategoryAndKeywords(t *testing.T) {
	req := &models.AllocationRequest{
		Category:           "healthcare",
		ProjectTitle:       "Clean water initiative.",
		ProjectDescription: "Wells for rural villages",
	}

	full := ScoringInput{Request: req, DonorPreferences: []string{"health", "water"}}
	assert.Equal(t, 100.0, preferencesScore(full))

	half := ScoringInput{Request: req, DonorPreferences: []string{"health", "wildlife"}}
	assert.Equal(t, 50.0, preferencesScore(half))

	none := ScoringInput{Request: req}
	assert.Equal(t, neutralScore, preferencesScore(none))
}

func TestEfficiencyScore_AveragesNetOverTotal(t *testing.T) {
	in := ScoringInput{CompletedResults: []ResultSnapshot{
		{Status: models.ResultStatusCompleted, NetAmount: 90, TotalDonationsAmount: 100},
		{Status: models.ResultStatusCompleted, NetAmount: 80, TotalDonationsAmount: 100},
		{Status: models.ResultStatusCompleted, NetAmount: 0, TotalDonationsAmount: 0},
	}}

	assert.InDelta(t, 85.0, efficiencyScore(in), 1e-9)
	assert.Equal(t, defaultEfficiencyScore, efficiencyScore(ScoringInput{}))
}

func TestSeasonalScore_AppliesSeasonAndCategoryBonuses(t *testing.T) {
	cases := []struct {
		name     string
		month    time.Month
		category string
		expected float64
	}{
		{"giving season", time.December, "general", 70},
		{"spring season", time.March, "general", 60},
		{"back to school", time.September, "education", 65},
		{"health awareness overlaps giving season", time.November, "health", 80},
		{"earth month", time.April, "environment", 70},
		{"off season", time.June, "general", 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := ScoringInput{
				Request: &models.AllocationRequest{Priority: 2, Category: tc.category},
				Now:     time.Date(2024, tc.month, 15, 0, 0, 0, 0, time.UTC),
			}
			assert.Equal(t, tc.expected, seasonalScore(in))
		})
	}
}

func factorRaw(t *testing.T, breakdown ScoreBreakdown, name string) float64 {
	t.Helper()
	for _, f := range breakdown.Factors {
		if f.Name == name {
			return f.Raw
		}
	}
	t.Fatalf("factor %s not found", name)
	return 0
}

func completedSnapshots(n int) []ResultSnapshot {
	out := make([]ResultSnapshot, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ResultSnapshot{
			Status:               models.ResultStatusCompleted,
			NetAmount:            95,
			TotalDonationsAmount: 100,
		})
	}
	return out
}

func floatPtr(v float64) *float64 {
	return &v
}
