package storage

import (
	"context"

	"jaikod-scoring/models"
)

// PricePointWriter is the interface any comparables backend must satisfy.
type PricePointWriter interface {
	Write(points []*models.PricePoint) error
	Close() error
}

// AssessmentWriter persists scored listings.
type AssessmentWriter interface {
	WriteAssessments(assessments []models.Assessment) error
	Close() error
}

// ReferenceSource is the read side of a reference price store.
type ReferenceSource interface {
	Distribution(ctx context.Context, category string) ([]float64, error)
	RegionMultipliers(ctx context.Context) (map[string]float64, error)
}
