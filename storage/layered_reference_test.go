package storage

import (
	"context"
	"errors"
	"testing"

	"jaikod-scoring/utils"
)

type failingSource struct{}

func (failingSource) Distribution(context.Context, string) ([]float64, error) {
	return nil, errors.New("db down")
}

func (failingSource) RegionMultipliers(context.Context) (map[string]float64, error) {
	return nil, errors.New("db down")
}

func TestLayeredReferencePrefersPrimary(t *testing.T) {
	primary := NewMemoryReferenceFrom(map[string][]float64{"laptop": {1, 2, 3}}, map[string]float64{"bangkok": 2})
	l := NewLayeredReference(primary, NewMemoryReference(), utils.NewNopLogger())
	ctx := context.Background()

	if d, _ := l.Distribution(ctx, "laptop"); len(d) != 3 {
		t.Errorf("laptop: got %v, want primary's 3 prices", d)
	}
	if d, _ := l.Distribution(ctx, "mobile-tablet"); len(d) != 11 {
		t.Errorf("mobile-tablet: got %d prices, want secondary's 11", len(d))
	}
	if m, _ := l.RegionMultipliers(ctx); m["bangkok"] != 2 {
		t.Errorf("bangkok: got %v, want 2", m["bangkok"])
	}
}

func TestLayeredReferencePrimaryDown(t *testing.T) {
	l := NewLayeredReference(failingSource{}, NewMemoryReference(), utils.NewNopLogger())
	ctx := context.Background()

	d, err := l.Distribution(ctx, "camera")
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	if len(d) == 0 {
		t.Errorf("expected the secondary distribution")
	}
	m, err := l.RegionMultipliers(ctx)
	if err != nil || len(m) == 0 {
		t.Errorf("RegionMultipliers: got %v, %v", m, err)
	}
}
