package storage

import (
	"context"

	"jaikod-scoring/utils"
)

// LayeredReference reads from primary and falls back to secondary when
// primary fails or has nothing for the request.
type LayeredReference struct {
	primary   ReferenceSource
	secondary ReferenceSource
	logger    *utils.Logger
}

func NewLayeredReference(primary, secondary ReferenceSource, logger *utils.Logger) *LayeredReference {
	return &LayeredReference{primary: primary, secondary: secondary, logger: logger}
}

func (l *LayeredReference) Distribution(ctx context.Context, category string) ([]float64, error) {
	dist, err := l.primary.Distribution(ctx, category)
	if err != nil {
		l.logger.Warn("[reference] Primary lookup for %q failed: %v", category, err)
	}
	if err == nil && len(dist) > 0 {
		return dist, nil
	}
	return l.secondary.Distribution(ctx, category)
}

func (l *LayeredReference) RegionMultipliers(ctx context.Context) (map[string]float64, error) {
	m, err := l.primary.RegionMultipliers(ctx)
	if err != nil {
		l.logger.Warn("[reference] Primary region lookup failed: %v", err)
	}
	if err == nil && len(m) > 0 {
		return m, nil
	}
	return l.secondary.RegionMultipliers(ctx)
}
