package models

// TrustInputs is the per-seller behavioural snapshot supplied by the caller.
type TrustInputs struct {
	VerifiedPhone       bool    `json:"verifiedPhone"`
	VerifiedEmail       bool    `json:"verifiedEmail"`
	VerifiedIdentity    bool    `json:"verifiedIdentity"`
	AccountAgeDays      int     `json:"accountAgeDays"`
	ResponseRatePercent float64 `json:"responseRatePercent"`
	TotalSales          int     `json:"totalSales"`
	ReportCount         int     `json:"reportCount"`
	PositiveReviewCount int     `json:"positiveReviewCount"`
	TotalReviewCount    int     `json:"totalReviewCount"`
}

// ListingStats summarises a seller's active listings for listing-quality scoring.
type ListingStats struct {
	ActiveListings       int     `json:"activeListings"`
	AvgImageCount        float64 `json:"avgImageCount"`
	AvgDescriptionLength float64 `json:"avgDescriptionLength"`
	CompleteAttributePct float64 `json:"completeAttributePct"`
}

// SellerProfile carries the seller attributes that are not behavioural counters.
type SellerProfile struct {
	UserID   string       `json:"userId,omitempty"`
	Listings ListingStats `json:"listings"`
}

// TrustLevel is the tier a seller is placed in.
type TrustLevel string

const (
	TrustBasic        TrustLevel = "basic"
	TrustTrusted      TrustLevel = "trusted"
	TrustSuperTrusted TrustLevel = "super_trusted"
)

// Sub-score caps.
const (
	MaxIdentityScore = 20
	MaxBehaviorScore = 25
	MaxListingScore  = 20
	MaxReviewScore   = 25
	MaxSafetyScore   = 10
)

// TrustBreakdown holds each independently capped sub-score.
type TrustBreakdown struct {
	Identity int `json:"identity"`
	Behavior int `json:"behavior"`
	Listing  int `json:"listing"`
	Review   int `json:"review"`
	Safety   int `json:"safety"`
}

// Sum adds the five sub-scores.
func (b TrustBreakdown) Sum() int {
	return b.Identity + b.Behavior + b.Listing + b.Review + b.Safety
}

// TrustScore is the aggregated trust verdict for a seller.
type TrustScore struct {
	TotalScore      int            `json:"totalScore"`
	Level           TrustLevel     `json:"level"`
	Breakdown       TrustBreakdown `json:"breakdown"`
	Badges          []string       `json:"badges"`
	ImprovementTips []string       `json:"improvement_tips"`
}
