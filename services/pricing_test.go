package services

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"jaikod-scoring/models"
)

var mobileTablet = []float64{3500, 4500, 5900, 6900, 7500, 8200, 8900, 9900, 11900, 14900, 18900}

type stubReference struct {
	dists       map[string][]float64
	multipliers map[string]float64
	err         error
	block       bool
}

func (s *stubReference) Distribution(ctx context.Context, category string) ([]float64, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.dists[category], nil
}

func (s *stubReference) RegionMultipliers(ctx context.Context) (map[string]float64, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.multipliers, nil
}

func tens() []float64 {
	return []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
}

func TestAnalyzePriceMobileTablet(t *testing.T) {
	ref := &stubReference{dists: map[string][]float64{"mobile-tablet": mobileTablet}}
	e := NewPriceEstimator(ref, EstimatorConfig{}, newTestLogger())

	got := e.AnalyzePrice(context.Background(), "mobile-tablet", 8800, "")
	if got.Status != models.PriceOptimal {
		t.Errorf("Status: got %q, want %q", got.Status, models.PriceOptimal)
	}
	if got.Percentile <= 30 || got.Percentile >= 85 {
		t.Errorf("Percentile: got %.2f, want strictly between 30 and 85", got.Percentile)
	}
	if got.SampleSize != 11 {
		t.Errorf("SampleSize: got %d, want 11", got.SampleSize)
	}
	if got.SuggestedRange.Min != 5900 || got.SuggestedRange.Max != 11900 {
		t.Errorf("SuggestedRange: got %+v, want {5900 11900}", got.SuggestedRange)
	}
	if got.Badges[0] != models.BadgeMarketPrice {
		t.Errorf("first badge: got %q, want %q", got.Badges[0], models.BadgeMarketPrice)
	}
}

func TestAnalyzeDistributionBoundaries(t *testing.T) {
	twenty := make([]float64, 20)
	for i := range twenty {
		twenty[i] = float64(i + 1)
	}

	tests := []struct {
		name       string
		dist       []float64
		price      float64
		percentile float64
		status     models.PriceStatus
	}{
		{"at minimum", tens(), 10, 0, models.PriceSuspiciouslyLow},
		{"exactly 10", tens(), 20, 10, models.PriceGoodDeal},
		{"just under 30", tens(), 30, 20, models.PriceGoodDeal},
		{"exactly 30", tens(), 40, 30, models.PriceOptimal},
		{"exactly 85", twenty, 18, 85, models.PriceOptimal},
		{"just over 85", twenty, 19, 90, models.PriceOverpriced},
		{"above all", tens(), 1000, 100, models.PriceOverpriced},
		{"negative price clamps", tens(), -50, 0, models.PriceSuspiciouslyLow},
	}

	for _, tt := range tests {
		got := AnalyzeDistribution(models.CandidatePrice{Category: "test", Price: tt.price}, tt.dist, nil, false)
		if got.Percentile != tt.percentile {
			t.Errorf("%s: percentile got %v, want %v", tt.name, got.Percentile, tt.percentile)
		}
		if got.Status != tt.status {
			t.Errorf("%s: status got %q, want %q", tt.name, got.Status, tt.status)
		}
	}
}

func TestAnalyzeDistributionRangeAndConfidence(t *testing.T) {
	got := AnalyzeDistribution(models.CandidatePrice{Price: 55}, tens(), nil, false)

	if got.SuggestedRange.Min != 30 || got.SuggestedRange.Max != 80 {
		t.Errorf("SuggestedRange: got %+v, want {30 80}", got.SuggestedRange)
	}
	if got.AveragePrice != 55 {
		t.Errorf("AveragePrice: got %.2f, want 55", got.AveragePrice)
	}
	if got.Confidence != 0.75 {
		t.Errorf("Confidence: got %.3f, want 0.75", got.Confidence)
	}

	big := make([]float64, 100)
	for i := range big {
		big[i] = float64(i)
	}
	if c := AnalyzeDistribution(models.CandidatePrice{Price: 5}, big, nil, false).Confidence; c != 0.95 {
		t.Errorf("Confidence for large sample: got %.3f, want 0.95", c)
	}
}

func TestAnalyzeDistributionSingleSample(t *testing.T) {
	got := AnalyzeDistribution(models.CandidatePrice{Price: 500}, []float64{500}, nil, false)

	if got.SuggestedRange.Min != 500 || got.SuggestedRange.Max != 500 {
		t.Errorf("SuggestedRange: got %+v, want {500 500}", got.SuggestedRange)
	}
	want := []string{models.BadgeVerifyAuthenticity, models.BadgeLowSample, models.BadgeNarrowRange}
	if !reflect.DeepEqual(got.Badges, want) {
		t.Errorf("Badges: got %v, want %v", got.Badges, want)
	}
}

func TestAnalyzeDistributionDoesNotMutateInput(t *testing.T) {
	dist := []float64{90, 10, 50, 30, 70}
	before := append([]float64(nil), dist...)

	first := AnalyzeDistribution(models.CandidatePrice{Price: 42}, dist, nil, false)
	second := AnalyzeDistribution(models.CandidatePrice{Price: 42}, dist, nil, false)

	if !reflect.DeepEqual(dist, before) {
		t.Errorf("input modified: got %v, want %v", dist, before)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis differs: %+v vs %+v", first, second)
	}
}

func TestAnalyzePriceFallsBackOnEmptyCategory(t *testing.T) {
	ref := &stubReference{dists: map[string][]float64{}}
	e := NewPriceEstimator(ref, EstimatorConfig{}, newTestLogger())

	got := e.AnalyzePrice(context.Background(), "unknown", 800, "")
	if got.SampleSize != len(DefaultDistribution()) {
		t.Errorf("SampleSize: got %d, want %d", got.SampleSize, len(DefaultDistribution()))
	}
	if got.Confidence != 0.375 {
		t.Errorf("Confidence: got %.3f, want 0.375", got.Confidence)
	}
	if !hasBadge(got.Badges, models.BadgeDefaultReference) {
		t.Errorf("Badges: got %v, want %q present", got.Badges, models.BadgeDefaultReference)
	}
}

func TestAnalyzePriceFallsBackOnProviderError(t *testing.T) {
	ref := &stubReference{err: errors.New("connection refused")}
	e := NewPriceEstimator(ref, EstimatorConfig{}, newTestLogger())

	got := e.AnalyzePrice(context.Background(), "mobile-tablet", 800, "bangkok")
	if got.Status == models.PriceInsufficientData {
		t.Fatalf("expected a degraded result, got %q", got.Status)
	}
	if !hasBadge(got.Badges, models.BadgeDefaultReference) {
		t.Errorf("Badges: got %v, want %q present", got.Badges, models.BadgeDefaultReference)
	}
	if len(got.GeoPricing) != 0 {
		t.Errorf("GeoPricing: got %v, want empty", got.GeoPricing)
	}
}

func TestAnalyzePriceLookupTimeout(t *testing.T) {
	ref := &stubReference{block: true}
	e := NewPriceEstimator(ref, EstimatorConfig{LookupTimeout: 10 * time.Millisecond}, newTestLogger())

	start := time.Now()
	got := e.AnalyzePrice(context.Background(), "mobile-tablet", 800, "")
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("lookup took %v, want it bounded by the timeout", elapsed)
	}
	if !hasBadge(got.Badges, models.BadgeDefaultReference) {
		t.Errorf("Badges: got %v, want %q present", got.Badges, models.BadgeDefaultReference)
	}
}

func TestAnalyzePriceFailsClosed(t *testing.T) {
	e := NewPriceEstimator(nil, EstimatorConfig{DefaultDistribution: []float64{-1}}, newTestLogger())

	got := e.AnalyzePrice(context.Background(), "anything", 100, "")
	if got.Status != models.PriceInsufficientData {
		t.Errorf("Status: got %q, want %q", got.Status, models.PriceInsufficientData)
	}
	if got.Percentile != 0 || got.SampleSize != 0 {
		t.Errorf("expected zero percentile and sample size, got %.2f and %d", got.Percentile, got.SampleSize)
	}
	if math.IsNaN(got.AveragePrice) {
		t.Errorf("AveragePrice is NaN")
	}
}

func TestAnalyzePriceGeoPricing(t *testing.T) {
	ref := &stubReference{
		dists:       map[string][]float64{"kitchen": tens()},
		multipliers: map[string]float64{"khon-kaen": 0.9, "Bangkok": 1.15, "broken": -1},
	}
	e := NewPriceEstimator(ref, EstimatorConfig{}, newTestLogger())

	got := e.AnalyzePrice(context.Background(), "kitchen", 50, " BANGKOK ")
	want := []models.GeoPrice{
		{Region: "bangkok", AvgPrice: 63.25, DiffPercent: -21},
		{Region: "khon-kaen", AvgPrice: 49.5, DiffPercent: 1},
	}
	if !reflect.DeepEqual(got.GeoPricing, want) {
		t.Errorf("GeoPricing: got %+v, want %+v", got.GeoPricing, want)
	}
	if got.RegionalComparison == nil || got.RegionalComparison.Region != "bangkok" {
		t.Errorf("RegionalComparison: got %+v, want bangkok", got.RegionalComparison)
	}
}

func TestAnalyzeDistributionExtremePrices(t *testing.T) {
	regions := map[string]float64{"bangkok": 1.15}

	tests := []struct {
		name       string
		price      float64
		wantPrice  float64
		percentile float64
		diff       int
	}{
		{"huge finite", 1e30, 1e30, 100, int(maxDiffPercent)},
		{"positive infinity", math.Inf(1), 0, 0, -100},
		{"negative infinity", math.Inf(-1), 0, 0, -100},
		{"not a number", math.NaN(), 0, 0, -100},
	}

	for _, tt := range tests {
		got := AnalyzeDistribution(models.CandidatePrice{Price: tt.price, Region: "bangkok"}, tens(), regions, false)
		if got.Price != tt.wantPrice {
			t.Errorf("%s: price got %v, want %v", tt.name, got.Price, tt.wantPrice)
		}
		if got.Percentile != tt.percentile {
			t.Errorf("%s: percentile got %v, want %v", tt.name, got.Percentile, tt.percentile)
		}
		if len(got.GeoPricing) != 1 {
			t.Fatalf("%s: got %d geo rows, want 1", tt.name, len(got.GeoPricing))
		}
		if d := got.GeoPricing[0].DiffPercent; d != tt.diff {
			t.Errorf("%s: diff got %d, want %d", tt.name, d, tt.diff)
		}
	}
}

func TestGeoPricingDiffUsesUnroundedAverage(t *testing.T) {
	got := AnalyzeDistribution(models.CandidatePrice{Price: 0.25}, []float64{0.25, 0.25}, map[string]float64{"phuket": 0.5}, false)

	want := []models.GeoPrice{{Region: "phuket", AvgPrice: 0.13, DiffPercent: 100}}
	if !reflect.DeepEqual(got.GeoPricing, want) {
		t.Errorf("GeoPricing: got %+v, want %+v", got.GeoPricing, want)
	}
}
