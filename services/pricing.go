package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"jaikod-scoring/models"
	"jaikod-scoring/utils"
)

// Percentile cutpoints. Boundaries are half-open: a percentile of exactly 10
// is a good deal, exactly 30 or 85 is optimal.
const (
	suspiciousBelow = 10.0
	goodDealBelow   = 30.0
	overpricedAbove = 85.0

	lowSampleSize  = 5
	maxConfidence  = 0.95
	baseConfidence = 0.5

	// Regional differences are reported within ±maxDiffPercent.
	maxDiffPercent = 1_000_000.0
)

// ReferenceProvider supplies comparable prices and regional multipliers. It is
// the only blocking boundary of the estimator.
type ReferenceProvider interface {
	Distribution(ctx context.Context, category string) ([]float64, error)
	RegionMultipliers(ctx context.Context) (map[string]float64, error)
}

// DefaultDistribution is the reference used when a category has no data of its own.
func DefaultDistribution() []float64 {
	return []float64{100, 250, 500, 750, 1000, 1500, 2000, 3000, 5000, 10000}
}

// EstimatorConfig tunes a PriceEstimator. Zero values fall back to defaults.
type EstimatorConfig struct {
	LookupTimeout       time.Duration
	DefaultDistribution []float64
}

// PriceEstimator places a candidate price within its category's market.
type PriceEstimator struct {
	provider ReferenceProvider
	fallback []float64
	timeout  time.Duration
	logger   *utils.Logger
}

// NewPriceEstimator creates a PriceEstimator reading reference data from provider.
// A nil provider makes every lookup fall back to the default distribution.
func NewPriceEstimator(provider ReferenceProvider, cfg EstimatorConfig, logger *utils.Logger) *PriceEstimator {
	fallback := cfg.DefaultDistribution
	if len(fallback) == 0 {
		fallback = DefaultDistribution()
	}
	return &PriceEstimator{
		provider: provider,
		fallback: sanitizeDistribution(fallback),
		timeout:  cfg.LookupTimeout,
		logger:   logger,
	}
}

// AnalyzePrice compares price with the category distribution. It never fails:
// a missing category or a failed lookup degrades to the default distribution
// with lower confidence.
func (e *PriceEstimator) AnalyzePrice(ctx context.Context, category string, price float64, region string) models.PriceAnalysis {
	dist, fromDefault := e.distribution(ctx, category)
	multipliers := e.regionMultipliers(ctx)

	candidate := models.CandidatePrice{Category: category, Price: price, Region: region}
	result := analyzeSorted(candidate, dist, multipliers, fromDefault)

	e.logger.Debug("[pricing] %s @ %.2f → %s (p%.1f, n=%d, conf %.2f)",
		category, price, result.Status, result.Percentile, result.SampleSize, result.Confidence)
	return result
}

func (e *PriceEstimator) distribution(ctx context.Context, category string) ([]float64, bool) {
	if e.provider == nil {
		return e.fallback, true
	}

	lookupCtx, cancel := e.withTimeout(ctx)
	defer cancel()

	dist, err := e.provider.Distribution(lookupCtx, category)
	if err != nil {
		e.logger.Warn("[pricing] Reference lookup for %q failed, using default: %v", category, err)
		return e.fallback, true
	}

	sorted := sanitizeDistribution(dist)
	if len(sorted) == 0 {
		e.logger.Debug("[pricing] No reference data for %q, using default", category)
		return e.fallback, true
	}
	return sorted, false
}

func (e *PriceEstimator) regionMultipliers(ctx context.Context) map[string]float64 {
	if e.provider == nil {
		return nil
	}

	lookupCtx, cancel := e.withTimeout(ctx)
	defer cancel()

	m, err := e.provider.RegionMultipliers(lookupCtx)
	if err != nil {
		e.logger.Warn("[pricing] Region multiplier lookup failed: %v", err)
		return nil
	}
	return m
}

func (e *PriceEstimator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

// AnalyzeDistribution is the pure scoring step behind AnalyzePrice. dist need
// not be sorted; it is copied and never modified.
func AnalyzeDistribution(candidate models.CandidatePrice, dist []float64, multipliers map[string]float64, fromDefault bool) models.PriceAnalysis {
	return analyzeSorted(candidate, sanitizeDistribution(dist), multipliers, fromDefault)
}

// analyzeSorted expects sorted to be ascending and free of invalid entries.
func analyzeSorted(candidate models.CandidatePrice, sorted []float64, multipliers map[string]float64, fromDefault bool) models.PriceAnalysis {
	price := candidate.Price
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		price = 0
	}

	result := models.PriceAnalysis{
		Category:   candidate.Category,
		Price:      price,
		Badges:     []string{},
		GeoPricing: []models.GeoPrice{},
	}

	n := len(sorted)
	if n == 0 {
		result.Status = models.PriceInsufficientData
		result.Badges = append(result.Badges, models.BadgeInsufficientData)
		return result
	}

	rank := sort.Search(n, func(i int) bool { return sorted[i] >= price })

	result.SampleSize = n
	result.Percentile = float64(rank*100) / float64(n)
	result.Status = classifyPercentile(result.Percentile)
	result.SuggestedRange = models.PriceRange{Min: sorted[n/4], Max: sorted[(3*n)/4]}
	average := mean(sorted)
	result.AveragePrice = round2(average)
	result.Confidence = confidenceFor(n, fromDefault)

	result.Badges = append(result.Badges, statusBadge(result.Status))
	if fromDefault {
		result.Badges = append(result.Badges, models.BadgeDefaultReference)
	}
	if n < lowSampleSize {
		result.Badges = append(result.Badges, models.BadgeLowSample)
	}
	if result.SuggestedRange.Min == result.SuggestedRange.Max {
		result.Badges = append(result.Badges, models.BadgeNarrowRange)
	}

	result.GeoPricing = geoPricing(price, average, multipliers)
	if want := normalizeRegion(candidate.Region); want != "" {
		for i := range result.GeoPricing {
			if result.GeoPricing[i].Region == want {
				gp := result.GeoPricing[i]
				result.RegionalComparison = &gp
				break
			}
		}
	}

	return result
}

func classifyPercentile(p float64) models.PriceStatus {
	switch {
	case p < suspiciousBelow:
		return models.PriceSuspiciouslyLow
	case p < goodDealBelow:
		return models.PriceGoodDeal
	case p > overpricedAbove:
		return models.PriceOverpriced
	default:
		return models.PriceOptimal
	}
}

func statusBadge(s models.PriceStatus) string {
	switch s {
	case models.PriceGoodDeal:
		return models.BadgeGoodDeal
	case models.PriceOverpriced:
		return models.BadgeAboveMarket
	case models.PriceSuspiciouslyLow:
		return models.BadgeVerifyAuthenticity
	default:
		return models.BadgeMarketPrice
	}
}

func confidenceFor(n int, fromDefault bool) float64 {
	c := math.Min(maxConfidence, baseConfidence+float64(n)/40)
	if fromDefault {
		c /= 2
	}
	return c
}

func geoPricing(price, average float64, multipliers map[string]float64) []models.GeoPrice {
	out := make([]models.GeoPrice, 0, len(multipliers))
	for region, m := range multipliers {
		if math.IsNaN(m) || math.IsInf(m, 0) || m <= 0 {
			continue
		}
		regional := average * m
		diff := 0
		if pct := (price - regional) / regional * 100; regional > 0 && !math.IsNaN(pct) {
			diff = int(math.Round(clamp(pct, -maxDiffPercent, maxDiffPercent)))
		}
		out = append(out, models.GeoPrice{
			Region:      normalizeRegion(region),
			AvgPrice:    round2(regional),
			DiffPercent: diff,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Region != out[j].Region {
			return out[i].Region < out[j].Region
		}
		return out[i].AvgPrice < out[j].AvgPrice
	})
	return out
}

// sanitizeDistribution returns a sorted copy without negative or NaN entries.
func sanitizeDistribution(dist []float64) []float64 {
	out := make([]float64, 0, len(dist))
	for _, v := range dist {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

func mean(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func normalizeRegion(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
