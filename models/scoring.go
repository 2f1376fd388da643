package models

// Severity tiers for a detected defect, ordered minor < moderate < severe.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Defect is one observation from image or text inspection.
type Defect struct {
	Type       string   `json:"type"`
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`
}

// ConditionLabel is the coarse condition bucket shown to buyers.
type ConditionLabel string

const (
	ConditionNew      ConditionLabel = "New"
	ConditionLikeNew  ConditionLabel = "Like New"
	ConditionGood     ConditionLabel = "Good"
	ConditionFair     ConditionLabel = "Fair"
	ConditionPoor     ConditionLabel = "Poor"
	ConditionForParts ConditionLabel = "For Parts"
)

// ConditionReport is the bounded condition score and its label.
type ConditionReport struct {
	Score int            `json:"score"`
	Label ConditionLabel `json:"label"`
}

// CandidatePrice is a proposed listing price to be compared with the market.
type CandidatePrice struct {
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Region   string  `json:"region,omitempty"`
}

// PriceStatus classifies a price against its category distribution.
type PriceStatus string

const (
	PriceOptimal          PriceStatus = "optimal"
	PriceGoodDeal         PriceStatus = "good_deal"
	PriceOverpriced       PriceStatus = "overpriced"
	PriceSuspiciouslyLow  PriceStatus = "suspiciously_low"
	PriceInsufficientData PriceStatus = "insufficient_data"
)

// Price badges.
const (
	BadgeMarketPrice        = "market_price"
	BadgeGoodDeal           = "good_deal"
	BadgeAboveMarket        = "above_market"
	BadgeVerifyAuthenticity = "verify_authenticity"
	BadgeDefaultReference   = "default_reference"
	BadgeLowSample          = "low_sample"
	BadgeNarrowRange        = "narrow_range"
	BadgeInsufficientData   = "insufficient_data"
)

// PriceRange is the suggested interquartile price band.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// GeoPrice is the category average adjusted for one region.
type GeoPrice struct {
	Region      string  `json:"region"`
	AvgPrice    float64 `json:"avg_price"`
	DiffPercent int     `json:"diff_percent"`
}

// PriceAnalysis is the estimator's verdict on a candidate price.
type PriceAnalysis struct {
	Category           string      `json:"category"`
	Price              float64     `json:"price"`
	Status             PriceStatus `json:"status"`
	SuggestedRange     PriceRange  `json:"suggested_range"`
	AveragePrice       float64     `json:"average_price"`
	Percentile         float64     `json:"percentile"`
	SampleSize         int         `json:"sample_size"`
	Badges             []string    `json:"badges"`
	GeoPricing         []GeoPrice  `json:"geo_pricing"`
	RegionalComparison *GeoPrice   `json:"regional_comparison,omitempty"`
	Confidence         float64     `json:"confidence"`
}
