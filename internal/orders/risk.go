package orders

import (
	"hash/fnv"
	"math/rand/v2"

	"mets-backend/internal/models"
)

// RiskScorer derives the risk level of an order. Stored or submitted risk
// levels are never trusted; the engine rescores every order it holds.
type RiskScorer interface {
	Score(o models.Order) models.RiskLevel
}

// FallbackFunc scores orders that no explicit rule covers.
type FallbackFunc func(o models.Order) models.RiskLevel

// LowFallback is the default: anything not flagged by a rule is low risk.
func LowFallback(models.Order) models.RiskLevel {
	return models.RiskLow
}

var weightedRisks = [...]models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskLow}

// SeededFallback spreads uncovered orders over low and medium (two to one)
// for demo data. The pick depends only on the seed and the order id, so a
// given order always gets the same level.
func SeededFallback(seed int64) FallbackFunc {
	return func(o models.Order) models.RiskLevel {
		h := fnv.New64a()
		_, _ = h.Write([]byte(o.ID))
		r := rand.New(rand.NewPCG(uint64(seed), h.Sum64()))
		return weightedRisks[r.IntN(len(weightedRisks))]
	}
}

// RuleScorer applies the production rules and defers to Fallback for the
// rest.
type RuleScorer struct {
	Fallback FallbackFunc
}

// DefaultScorer returns a RuleScorer with the deterministic low fallback.
func DefaultScorer() RuleScorer {
	return RuleScorer{Fallback: LowFallback}
}

func (s RuleScorer) Score(o models.Order) models.RiskLevel {
	switch {
	case o.Status == models.StatusDelayed:
		return models.RiskHigh
	case o.Status == models.StatusInProgress && o.Progress < 40:
		return models.RiskMedium
	case o.Status == models.StatusPlanned && o.Priority == models.PriorityHigh:
		return models.RiskMedium
	case o.Status == models.StatusCompleted:
		return models.RiskLow
	}
	if s.Fallback == nil {
		return LowFallback(o)
	}
	return s.Fallback(o)
}

// AssignRisk returns a copy of orders with RiskLevel recomputed by scorer.
func AssignRisk(orders []models.Order, scorer RiskScorer) []models.Order {
	out := make([]models.Order, len(orders))
	for i, o := range orders {
		c := o.Clone()
		c.RiskLevel = scorer.Score(c)
		out[i] = c
	}
	return out
}
