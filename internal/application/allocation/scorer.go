package allocation

import (
	"strings"
	"time"

	"goodplay-backend/internal/models"
)

// Factor weights of the composite allocation score.
const (
	weightFundingGap  = 0.25
	weightUrgency     = 0.20
	weightPerformance = 0.20
	weightPreferences = 0.15
	weightEfficiency  = 0.10
	weightSeasonal    = 0.10
)

// Fallbacks used when a factor has no data or its computation fails.
const (
	neutralScore           = 50.0
	defaultComplianceScore = 70.0
	defaultSuccessScore    = 70.0
	defaultEfficiencyScore = 70.0
)

// History windows read per ONLUS when assembling scoring input.
const (
	recentResultsWindow    = 10
	completedResultsWindow = 5
)

// ResultSnapshot is the slice of a past allocation result the scorer reads.
type ResultSnapshot struct {
	Status               string
	NetAmount            float64
	TotalDonationsAmount float64
}

// ScoringInput carries everything Score reads. Score never touches storage;
// callers assemble the input.
type ScoringInput struct {
	Request          *models.AllocationRequest
	Profile          *models.Onlus
	ComplianceScore  *float64
	RecentResults    []ResultSnapshot // newest first, at most recentResultsWindow
	CompletedResults []ResultSnapshot // newest first, at most completedResultsWindow
	DonorPreferences []string
	Now              time.Time
}

// FactorScore is one scored factor with its weight applied.
type FactorScore struct {
	Name     string  `json:"name"`
	Raw      float64 `json:"raw"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// ScoreBreakdown is the composite 0-100 score with its decomposition.
type ScoreBreakdown struct {
	Total   float64       `json:"total"`
	Factors []FactorScore `json:"factors"`
}

// Score computes the composite allocation score for a request. Each factor
// is clamped to [0,100] before weighting and independently fault tolerant: a
// factor that fails falls back to its neutral value instead of aborting the
// composite.
func Score(in ScoringInput) ScoreBreakdown {
	factors := []FactorScore{
		scoreFactor("funding_gap", weightFundingGap, neutralScore, func() float64 { return fundingGapScore(in) }),
		scoreFactor("urgency", weightUrgency, neutralScore, func() float64 { return urgencyScore(in) }),
		scoreFactor("performance", weightPerformance, neutralScore, func() float64 { return performanceScore(in) }),
		scoreFactor("preferences_match", weightPreferences, neutralScore, func() float64 { return preferencesScore(in) }),
		scoreFactor("efficiency", weightEfficiency, defaultEfficiencyScore, func() float64 { return efficiencyScore(in) }),
		scoreFactor("seasonal", weightSeasonal, neutralScore, func() float64 { return seasonalScore(in) }),
	}

	total := 0.0
	for _, f := range factors {
		total += f.Weighted
	}
	return ScoreBreakdown{Total: clampScore(total), Factors: factors}
}

// scoreFactor runs one factor computation, clamps it and applies the weight.
// A panic inside compute is replaced by the factor's fallback value.
func scoreFactor(name string, weight, fallback float64, compute func() float64) (factor FactorScore) {
	factor = FactorScore{Name: name, Weight: weight}
	defer func() {
		if recover() != nil {
			factor.Raw = fallback
		}
		factor.Raw = clampScore(factor.Raw)
		factor.Weighted = factor.Raw * factor.Weight
	}()
	factor.Raw = compute()
	return factor
}

// fundingGapScore rewards organizations far from their annual budget.
func fundingGapScore(in ScoringInput) float64 {
	if in.Profile == nil || in.Profile.AnnualBudget == nil || *in.Profile.AnnualBudget <= 0 {
		return neutralScore
	}
	budget := *in.Profile.AnnualBudget
	gap := (budget - in.Profile.CurrentFunding) / budget
	if gap < 0 {
		gap = 0
	}
	switch {
	case gap >= 0.8:
		return 95
	case gap >= 0.6:
		return 85
	case gap >= 0.4:
		return 70
	case gap >= 0.2:
		return 55
	default:
		return 40
	}
}

// urgencyScore maps urgency level 1-5 to 20-100 with deadline bumps.
// Emergency priority short-circuits to the maximum.
func urgencyScore(in ScoringInput) float64 {
	if in.Request.IsEmergency() {
		return 100
	}
	score := float64(in.Request.UrgencyLevel) * 20
	if in.Request.Deadline != nil {
		daysLeft := in.Request.Deadline.Sub(in.Now).Hours() / 24
		switch {
		case daysLeft <= 7:
			score += 20
		case daysLeft <= 30:
			score += 10
		case daysLeft <= 90:
			score += 5
		}
	}
	return score
}

// performanceScore blends the compliance score with the completion rate of
// recent allocations.
func performanceScore(in ScoringInput) float64 {
	compliance := defaultComplianceScore
	if in.ComplianceScore != nil {
		compliance = *in.ComplianceScore
	}
	return 0.7*compliance + 0.3*successScore(in.RecentResults)
}

func successScore(recent []ResultSnapshot) float64 {
	if len(recent) == 0 {
		return defaultSuccessScore
	}
	completed := 0
	for _, r := range recent {
		if r.Status == models.ResultStatusCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(recent)) * 100
}

// preferencesScore is the fraction of donor preference terms found in the
// request category or the title/description word set, scaled to 100.
func preferencesScore(in ScoringInput) float64 {
	if len(in.DonorPreferences) == 0 {
		return neutralScore
	}
	category := strings.ToLower(in.Request.Category)
	keywords := requestKeywords(in.Request)
	matched := 0
	for _, pref := range in.DonorPreferences {
		term := strings.ToLower(strings.TrimSpace(pref))
		if term == "" {
			continue
		}
		if strings.Contains(category, term) || keywords[term] {
			matched++
		}
	}
	return float64(matched) / float64(len(in.DonorPreferences)) * 100
}

func requestKeywords(req *models.AllocationRequest) map[string]bool {
	words := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(req.ProjectTitle + " " + req.ProjectDescription)) {
		w = strings.Trim(w, ".,;:!?()\"'")
		if w != "" {
			words[w] = true
		}
	}
	return words
}

// efficiencyScore is the mean net/total ratio over recent completed results.
func efficiencyScore(in ScoringInput) float64 {
	if len(in.CompletedResults) == 0 {
		return defaultEfficiencyScore
	}
	sum, counted := 0.0, 0
	for _, r := range in.CompletedResults {
		if r.TotalDonationsAmount <= 0 {
			continue
		}
		sum += r.NetAmount / r.TotalDonationsAmount
		counted++
	}
	if counted == 0 {
		return defaultEfficiencyScore
	}
	return sum / float64(counted) * 100
}

// seasonalScore applies giving-season and category-season bonuses.
// Emergency requests short-circuit to 90.
func seasonalScore(in ScoringInput) float64 {
	if in.Request.IsEmergency() {
		return 90
	}
	score := neutralScore
	month := in.Now.Month()
	switch month {
	case time.November, time.December:
		score += 20
	case time.March, time.April:
		score += 10
	}
	category := strings.ToLower(in.Request.Category)
	switch {
	case strings.Contains(category, "education") && (month == time.August || month == time.September):
		score += 15
	case strings.Contains(category, "health") && (month == time.October || month == time.November):
		score += 10
	case strings.Contains(category, "environment") && (month == time.April || month == time.May):
		score += 10
	}
	return score
}

func clampScore(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return x
}
