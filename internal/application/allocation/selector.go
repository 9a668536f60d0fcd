package allocation

import (
	"sort"
	"time"

	"goodplay-backend/internal/models"
)

// Pool ranking weights: pool priority dominates, then how full the pool is,
// then category and pool-type affinity.
const (
	poolPriorityFactor     = 40.0
	poolAvailabilityFactor = 30.0
	categoryMatchBonus     = 20.0
	emergencyTypeBonus     = 10.0
	generalTypeBonus       = 5.0
)

// PoolScore is one eligible candidate pool with its composite ranking score.
type PoolScore struct {
	Pool  *models.FundingPool `json:"pool"`
	Score float64             `json:"score"`
}

// RankPools filters candidates able to serve the request and ranks them by
// composite score, best first. Equal scores keep the candidate order.
func RankPools(pools []models.FundingPool, req *models.AllocationRequest, geography string, now time.Time) []PoolScore {
	ranked := make([]PoolScore, 0, len(pools))
	for i := range pools {
		p := &pools[i]
		if !p.CanAllocate(req.RequestedAmount, req.Category, geography, now) {
			continue
		}
		ranked = append(ranked, PoolScore{Pool: p, Score: poolScore(p, req)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

// SelectPool picks the highest ranked eligible pool, nil when none
// qualifies. Ties go to the first listed candidate.
func SelectPool(pools []models.FundingPool, req *models.AllocationRequest, geography string, now time.Time) *models.FundingPool {
	ranked := RankPools(pools, req, geography, now)
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0].Pool
}

func poolScore(p *models.FundingPool, req *models.AllocationRequest) float64 {
	score := p.PriorityWeight*poolPriorityFactor + p.AvailabilityRate()*poolAvailabilityFactor
	if p.MatchesCategory(req.Category) {
		score += categoryMatchBonus
	}
	switch {
	case p.PoolType == models.PoolTypeEmergency && req.IsEmergency():
		score += emergencyTypeBonus
	case p.PoolType == models.PoolTypeGeneral:
		score += generalTypeBonus
	}
	return score
}
