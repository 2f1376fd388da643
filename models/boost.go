package models

import "github.com/shopspring/decimal"

// BoostType is the promotional channel a boost is bought on.
type BoostType string

const (
	BoostTrendingPage      BoostType = "trending_page"
	BoostSearchTop         BoostType = "search_top"
	BoostForYouFeed        BoostType = "for_you_feed"
	BoostHomepageSpotlight BoostType = "homepage_spotlight"
)

// CTR codes attached to a boost's metrics.
const (
	CTRCodeHigh       = "high_ctr"
	CTRCodeHighIntent = "high_intent"
)

// EngagementSnapshot holds short-window counters for one listing. Windowing is
// the caller's job.
type EngagementSnapshot struct {
	ViewsLastHour      int     `json:"viewsLastHour"`
	ClicksLastHour     int     `json:"clicksLastHour"`
	ChatsLastHour      int     `json:"chatsLastHour"`
	CategoryTrendScore float64 `json:"categoryTrendScore"`
}

// BoostSettings is the seller's auto-boost configuration.
type BoostSettings struct {
	IsEnabled      bool            `json:"isEnabled"`
	DailyBudget    decimal.Decimal `json:"dailyBudget"`
	MaxBidPerBoost decimal.Decimal `json:"maxBidPerBoost"`
	SpentToday     decimal.Decimal `json:"spentToday"`
}

// BoostMetrics is the initial metrics shell of a triggered boost.
type BoostMetrics struct {
	CTRCode     string `json:"ctrCode"`
	Impressions int    `json:"impressions"`
	Clicks      int    `json:"clicks"`
	Chats       int    `json:"chats"`
}

// BoostDecision describes a boost to trigger. A nil decision means no action.
type BoostDecision struct {
	ItemID        string          `json:"itemId"`
	BoostType     BoostType       `json:"boostType"`
	Reason        string          `json:"reason"`
	Cost          decimal.Decimal `json:"cost"`
	MomentumScore int             `json:"momentumScore"`
	Metrics       BoostMetrics    `json:"metrics"`
}
