package services

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"jaikod-scoring/models"
	"jaikod-scoring/utils"
)

// Momentum rules.
const (
	momentumThreshold = 50

	ctrRulePoints   = 40
	ctrRuleMin      = 0.05
	ctrRuleMinViews = 50

	chatRulePoints = 30
	chatRuleMin    = 3

	trendRulePoints = 15
	trendRuleMin    = 80.0

	viewsRulePoints = 20
	viewsRuleMin    = 100

	highCTR = 0.08
)

// DefaultCostCap is the per-boost ceiling of the legacy cost formula.
const DefaultCostCap = 5

// CostPolicy prices a boost. Returning false declines the boost.
type CostPolicy interface {
	Cost(settings models.BoostSettings, momentum int) (decimal.Decimal, bool)
}

// CappedCost charges min(maxBidPerBoost, Cap) and ignores the remaining daily
// budget.
type CappedCost struct {
	Cap decimal.Decimal
}

func (c CappedCost) Cost(settings models.BoostSettings, _ int) (decimal.Decimal, bool) {
	return nonNegative(decimal.Min(settings.MaxBidPerBoost, c.Cap)), true
}

// BudgetAwareCost charges min(maxBidPerBoost, dailyBudget - spentToday) and
// declines once the day's budget is used up.
type BudgetAwareCost struct{}

func (BudgetAwareCost) Cost(settings models.BoostSettings, _ int) (decimal.Decimal, bool) {
	remaining := settings.DailyBudget.Sub(settings.SpentToday)
	if !remaining.IsPositive() {
		return decimal.Zero, false
	}
	cost := decimal.Min(settings.MaxBidPerBoost, remaining)
	if !cost.IsPositive() {
		return decimal.Zero, false
	}
	return cost, true
}

// BoostEngine decides whether short-window engagement justifies a paid boost.
type BoostEngine struct {
	cost   CostPolicy
	logger *utils.Logger
}

// NewBoostEngine creates a BoostEngine. A nil policy uses CappedCost with
// DefaultCostCap.
func NewBoostEngine(cost CostPolicy, logger *utils.Logger) *BoostEngine {
	if cost == nil {
		cost = CappedCost{Cap: decimal.NewFromInt(DefaultCostCap)}
	}
	return &BoostEngine{cost: cost, logger: logger}
}

// CheckAndTriggerAutoBoost returns the boost to trigger for itemID, or nil when
// auto-boost is disabled, has no budget, or momentum stays under the threshold.
// Every qualifying rule adds points; the first rule to qualify picks the
// channel and reason.
func (e *BoostEngine) CheckAndTriggerAutoBoost(itemID string, engagement models.EngagementSnapshot, settings models.BoostSettings) *models.BoostDecision {
	if !settings.IsEnabled || !settings.DailyBudget.IsPositive() {
		return nil
	}

	views := maxInt(engagement.ViewsLastHour, 0)
	clicks := maxInt(engagement.ClicksLastHour, 0)
	chats := maxInt(engagement.ChatsLastHour, 0)
	trend := engagement.CategoryTrendScore
	if math.IsNaN(trend) {
		trend = 0
	}

	ctr := 0.0
	if views > 0 {
		ctr = float64(clicks) / float64(views)
	}

	var momentum int
	var boostType models.BoostType
	var reason string
	pick := func(t models.BoostType, r string) {
		if boostType == "" {
			boostType = t
			reason = r
		}
	}

	if ctr > ctrRuleMin && views > ctrRuleMinViews {
		momentum += ctrRulePoints
		pick(models.BoostTrendingPage, fmt.Sprintf("High click-through rate (%.1f%%) in the last hour", ctr*100))
	}
	if chats >= chatRuleMin {
		momentum += chatRulePoints
		pick(models.BoostSearchTop, fmt.Sprintf("%d buyers started a chat in the last hour", chats))
	}
	if trend > trendRuleMin {
		momentum += trendRulePoints
		pick(models.BoostForYouFeed, fmt.Sprintf("Category is trending (score %.0f)", trend))
	}
	if views > viewsRuleMin {
		momentum += viewsRulePoints
		pick(models.BoostTrendingPage, fmt.Sprintf("%d views in the last hour", views))
	}

	if momentum < momentumThreshold {
		e.logger.Debug("[boost] %s momentum %d below threshold", itemID, momentum)
		return nil
	}

	cost, ok := e.cost.Cost(settings, momentum)
	if !ok {
		e.logger.Debug("[boost] %s momentum %d but cost policy declined", itemID, momentum)
		return nil
	}

	ctrCode := models.CTRCodeHighIntent
	if ctr > highCTR {
		ctrCode = models.CTRCodeHigh
	}

	decision := &models.BoostDecision{
		ItemID:        itemID,
		BoostType:     boostType,
		Reason:        reason,
		Cost:          cost,
		MomentumScore: momentum,
		Metrics:       models.BoostMetrics{CTRCode: ctrCode},
	}

	e.logger.Debug("[boost] %s → %s (momentum %d, cost %s)", itemID, boostType, momentum, cost)
	return decision
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
