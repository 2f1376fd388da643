package models

// ScoreRequest is everything the facade needs to assess one listing.
type ScoreRequest struct {
	ItemID       string              `json:"itemId"`
	Category     string              `json:"category"`
	Price        float64             `json:"price"`
	Region       string              `json:"region,omitempty"`
	Defects      []Defect            `json:"defects,omitempty"`
	ImageQuality float64             `json:"imageQuality"`
	Seller       SellerProfile       `json:"seller"`
	SellerStats  *TrustInputs        `json:"sellerStats,omitempty"`
	Engagement   *EngagementSnapshot `json:"engagement,omitempty"`
	Boost        *BoostSettings      `json:"boost,omitempty"`
}

// Assessment is the combined result for one listing.
type Assessment struct {
	ItemID    string          `json:"itemId"`
	Condition ConditionReport `json:"condition"`
	Price     PriceAnalysis   `json:"price"`
	Trust     TrustScore      `json:"trust"`
	Boost     *BoostDecision  `json:"boost,omitempty"`
}

// InsightReport summarises a batch of assessments.
type InsightReport struct {
	TotalAssessed     int
	AverageTrustScore float64
	AveragePercentile float64
	BoostsTriggered   int
	TotalBoostCost    string
	DegradedPricing   int
	StatusCounts      map[PriceStatus]int
	LevelCounts       map[TrustLevel]int
	ConditionCounts   map[ConditionLabel]int
	MostOverpriced    *Assessment
	TopTrusted        []*Assessment
}
