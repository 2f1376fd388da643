package main

import (
	"strings"
	"testing"

	"jaikod-scoring/config"
	"jaikod-scoring/models"
	"jaikod-scoring/services"
)

func TestDecodeRequests(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"array", `[{"itemId":"a","category":"laptop","price":9000},{"itemId":"b"}]`, 2},
		{"single object", `{"itemId":"a","boost":{"isEnabled":true,"dailyBudget":"100","maxBidPerBoost":12.5}}`, 1},
		{"empty", "  \n", 0},
	}

	for _, tt := range tests {
		got, err := decodeRequests(strings.NewReader(tt.input))
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if len(got) != tt.want {
			t.Errorf("%s: got %d requests, want %d", tt.name, len(got), tt.want)
		}
	}
}

func TestDecodeRequestsBoostSettings(t *testing.T) {
	got, err := decodeRequests(strings.NewReader(
		`{"itemId":"a","boost":{"isEnabled":true,"dailyBudget":"100","maxBidPerBoost":12.5}}`))
	if err != nil {
		t.Fatalf("decodeRequests: %v", err)
	}
	b := got[0].Boost
	if b == nil || !b.IsEnabled {
		t.Fatalf("boost settings not decoded: %+v", b)
	}
	if b.MaxBidPerBoost.String() != "12.5" {
		t.Errorf("MaxBidPerBoost: got %s, want 12.5", b.MaxBidPerBoost)
	}
}

func TestDecodeRequestsCamelCaseSchema(t *testing.T) {
	got, err := decodeRequests(strings.NewReader(`{
		"itemId": "a",
		"imageQuality": 80,
		"sellerStats": {"verifiedPhone": true, "positiveReviewCount": 9, "totalReviewCount": 10},
		"engagement": {"viewsLastHour": 150, "clicksLastHour": 12, "chatsLastHour": 3, "categoryTrendScore": 85.5}
	}`))
	if err != nil {
		t.Fatalf("decodeRequests: %v", err)
	}
	r := got[0]
	if r.ImageQuality != 80 {
		t.Errorf("ImageQuality: got %v, want 80", r.ImageQuality)
	}
	if r.SellerStats == nil || !r.SellerStats.VerifiedPhone || r.SellerStats.PositiveReviewCount != 9 {
		t.Errorf("SellerStats: got %+v", r.SellerStats)
	}
	want := models.EngagementSnapshot{ViewsLastHour: 150, ClicksLastHour: 12, ChatsLastHour: 3, CategoryTrendScore: 85.5}
	if r.Engagement == nil || *r.Engagement != want {
		t.Errorf("Engagement: got %+v, want %+v", r.Engagement, want)
	}
}

func TestDecodeRequestsRejectsGarbage(t *testing.T) {
	if _, err := decodeRequests(strings.NewReader(`[{"itemId":`)); err == nil {
		t.Errorf("expected an error for truncated input")
	}
}

func TestSplitCategories(t *testing.T) {
	got := splitCategories(" laptop, ,camera ,")
	if len(got) != 2 || got[0] != "laptop" || got[1] != "camera" {
		t.Errorf("splitCategories: got %v, want [laptop camera]", got)
	}
	if got := splitCategories(""); len(got) != 0 {
		t.Errorf("splitCategories(\"\"): got %v, want empty", got)
	}
}

func TestCostPolicyFromConfig(t *testing.T) {
	if _, ok := costPolicy(&config.Config{BoostCostPolicy: config.CostPolicyBudget}).(services.BudgetAwareCost); !ok {
		t.Errorf("budget policy not selected")
	}
	capped, ok := costPolicy(&config.Config{BoostCostPolicy: config.CostPolicyCapped, BoostCostCap: 7}).(services.CappedCost)
	if !ok {
		t.Fatalf("capped policy not selected")
	}
	if capped.Cap.String() != "7" {
		t.Errorf("Cap: got %s, want 7", capped.Cap)
	}
}

func TestListingQualityFromConfig(t *testing.T) {
	fixed, ok := listingQuality(&config.Config{ListingQualityMode: config.ListingQualityFixed, ListingQualityPoints: 12}).(services.FixedListingQuality)
	if !ok || fixed.Points != 12 {
		t.Errorf("fixed listing quality: got %+v", fixed)
	}
	if _, ok := listingQuality(&config.Config{ListingQualityMode: "content"}).(services.ContentListingQuality); !ok {
		t.Errorf("content listing quality not selected")
	}
}
