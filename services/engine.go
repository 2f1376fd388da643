package services

import (
	"context"

	"jaikod-scoring/models"
	"jaikod-scoring/utils"
)

// Engine composes the condition, price, trust and boost scorers behind one call.
type Engine struct {
	condition *ConditionNormalizer
	pricing   *PriceEstimator
	trust     *TrustScorer
	boost     *BoostEngine
	logger    *utils.Logger

	maxWorkers int
}

// EngineDeps wires the scorers into an Engine. Nil scorers get defaults.
type EngineDeps struct {
	Condition  *ConditionNormalizer
	Pricing    *PriceEstimator
	Trust      *TrustScorer
	Boost      *BoostEngine
	MaxWorkers int
}

// NewEngine builds an Engine from deps.
func NewEngine(deps EngineDeps, logger *utils.Logger) *Engine {
	e := &Engine{
		condition:  deps.Condition,
		pricing:    deps.Pricing,
		trust:      deps.Trust,
		boost:      deps.Boost,
		logger:     logger,
		maxWorkers: deps.MaxWorkers,
	}
	if e.condition == nil {
		e.condition = NewConditionNormalizer(logger)
	}
	if e.pricing == nil {
		e.pricing = NewPriceEstimator(nil, EstimatorConfig{}, logger)
	}
	if e.trust == nil {
		e.trust = NewTrustScorer(nil, logger)
	}
	if e.boost == nil {
		e.boost = NewBoostEngine(nil, logger)
	}
	if e.maxWorkers < 1 {
		e.maxWorkers = 1
	}
	return e
}

// NormalizeCondition delegates to the condition normalizer.
func (e *Engine) NormalizeCondition(defects []models.Defect, imageQuality float64) models.ConditionReport {
	return e.condition.NormalizeCondition(defects, imageQuality)
}

// AnalyzePrice delegates to the price estimator.
func (e *Engine) AnalyzePrice(ctx context.Context, category string, price float64, region string) models.PriceAnalysis {
	return e.pricing.AnalyzePrice(ctx, category, price, region)
}

// CalculateUserTrustScore delegates to the trust scorer.
func (e *Engine) CalculateUserTrustScore(profile models.SellerProfile, stats *models.TrustInputs) models.TrustScore {
	return e.trust.CalculateUserTrustScore(profile, stats)
}

// CheckAndTriggerAutoBoost delegates to the boost engine.
func (e *Engine) CheckAndTriggerAutoBoost(itemID string, engagement models.EngagementSnapshot, settings models.BoostSettings) *models.BoostDecision {
	return e.boost.CheckAndTriggerAutoBoost(itemID, engagement, settings)
}

// Assess runs every scorer for one listing. A request without engagement or
// boost settings never produces a boost.
func (e *Engine) Assess(ctx context.Context, req models.ScoreRequest) models.Assessment {
	a := models.Assessment{
		ItemID:    req.ItemID,
		Condition: e.condition.NormalizeCondition(req.Defects, req.ImageQuality),
		Price:     e.pricing.AnalyzePrice(ctx, req.Category, req.Price, req.Region),
		Trust:     e.trust.CalculateUserTrustScore(req.Seller, req.SellerStats),
	}
	if req.Engagement != nil && req.Boost != nil {
		a.Boost = e.boost.CheckAndTriggerAutoBoost(req.ItemID, *req.Engagement, *req.Boost)
	}
	return a
}

// AssessBatch assesses every request in parallel. The i-th assessment always
// belongs to the i-th request.
func (e *Engine) AssessBatch(ctx context.Context, reqs []models.ScoreRequest) []models.Assessment {
	out := make([]models.Assessment, len(reqs))
	if len(reqs) == 0 {
		return out
	}

	pool := utils.NewWorkerPool(e.maxWorkers, 0)
	for i := range reqs {
		i := i
		pool.Submit(func() {
			out[i] = e.Assess(ctx, reqs[i])
		})
	}
	pool.Wait()

	e.logger.Info("[engine] Assessed %d listings with %d workers", len(reqs), e.maxWorkers)
	return out
}
