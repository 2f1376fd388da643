package services

import (
	"math"

	"jaikod-scoring/models"
	"jaikod-scoring/utils"
)

// Tier thresholds.
const (
	superTrustedMinScore = 80
	trustedMinScore      = 50
)

// Improvement tips, emitted in this order.
const (
	TipVerifyPhone      = "Verify your phone number to earn 5 trust points"
	TipVerifyEmail      = "Verify your email address to earn 5 trust points"
	TipVerifyIdentity   = "Complete identity verification (eKYC) to earn 10 trust points and unlock Super Trusted"
	TipAccountAge       = "Keep your account active: accounts older than 30 days earn 5 points"
	TipAccountVeteran   = "Accounts older than 180 days earn another 5 points"
	TipResponseRate     = "Reply to more than 80% of chats to earn 10 points"
	TipFirstSale        = "Complete your first sale to earn 5 points"
	TipListingImages    = "Add at least 3 photos to each listing"
	TipListingDetail    = "Write descriptions of at least 100 characters"
	TipListingAttribute = "Fill in brand, model and condition for every listing"
	TipFiveReviews      = "Collect at least 5 reviews to earn 5 points"
	TipTwentyReviews    = "Reach 20 reviews to earn another 10 points"
	TipPositiveRatio    = "Keep 90% of your reviews positive to earn 10 points"
	TipResolveReports   = "Resolve buyer reports: each open report costs 5 safety points"
)

// Trust badges.
const (
	BadgeIdentityVerified = "identity_verified"
	BadgePhoneVerified    = "phone_verified"
	BadgeFastResponder    = "fast_responder"
	BadgeVeteranSeller    = "veteran_seller"
	BadgeHighlyRated      = "highly_rated"
	BadgeCleanRecord      = "clean_record"
)

// ListingQualityScorer scores a seller's listings out of MaxListingScore and
// returns improvement tips for anything missing.
type ListingQualityScorer interface {
	Score(stats models.ListingStats) (int, []string)
}

// FixedListingQuality awards the same points to every seller. It matches the
// legacy behaviour where listing content was never inspected.
type FixedListingQuality struct {
	Points int
}

func (f FixedListingQuality) Score(models.ListingStats) (int, []string) {
	return capInt(f.Points, 0, models.MaxListingScore), nil
}

// ContentListingQuality scores image count, description length and attribute
// completeness. Sellers with no active listings get NeutralPoints.
type ContentListingQuality struct {
	NeutralPoints int
}

func (c ContentListingQuality) Score(stats models.ListingStats) (int, []string) {
	if stats.ActiveListings <= 0 {
		return capInt(c.NeutralPoints, 0, models.MaxListingScore), nil
	}

	var score int
	var tips []string

	switch {
	case stats.AvgImageCount >= 3:
		score += 8
	case stats.AvgImageCount >= 1:
		score += 4
		tips = append(tips, TipListingImages)
	default:
		tips = append(tips, TipListingImages)
	}

	switch {
	case stats.AvgDescriptionLength >= 100:
		score += 6
	case stats.AvgDescriptionLength >= 30:
		score += 3
		tips = append(tips, TipListingDetail)
	default:
		tips = append(tips, TipListingDetail)
	}

	if stats.CompleteAttributePct >= 80 {
		score += 6
	} else {
		tips = append(tips, TipListingAttribute)
	}

	return capInt(score, 0, models.MaxListingScore), tips
}

// TrustScorer aggregates seller signals into a tiered trust score.
type TrustScorer struct {
	listing ListingQualityScorer
	logger  *utils.Logger
}

// NewTrustScorer creates a TrustScorer. A nil listing scorer falls back to
// ContentListingQuality with a neutral score of 10.
func NewTrustScorer(listing ListingQualityScorer, logger *utils.Logger) *TrustScorer {
	if listing == nil {
		listing = ContentListingQuality{NeutralPoints: 10}
	}
	return &TrustScorer{listing: listing, logger: logger}
}

// CalculateUserTrustScore sums five independently capped sub-scores and gates
// the tier on verification flags. Nil stats score as a brand-new account.
func (s *TrustScorer) CalculateUserTrustScore(profile models.SellerProfile, stats *models.TrustInputs) models.TrustScore {
	in := sanitizeTrustInputs(stats)

	var b models.TrustBreakdown
	var tips, badges []string

	// identity
	if in.VerifiedPhone {
		b.Identity += 5
		badges = append(badges, BadgePhoneVerified)
	} else {
		tips = append(tips, TipVerifyPhone)
	}
	if in.VerifiedEmail {
		b.Identity += 5
	} else {
		tips = append(tips, TipVerifyEmail)
	}
	if in.VerifiedIdentity {
		b.Identity += 10
		badges = append(badges, BadgeIdentityVerified)
	} else {
		tips = append(tips, TipVerifyIdentity)
	}
	b.Identity = capInt(b.Identity, 0, models.MaxIdentityScore)

	// behavior
	if in.AccountAgeDays > 30 {
		b.Behavior += 5
	} else {
		tips = append(tips, TipAccountAge)
	}
	if in.AccountAgeDays > 180 {
		b.Behavior += 5
		badges = append(badges, BadgeVeteranSeller)
	} else {
		tips = append(tips, TipAccountVeteran)
	}
	if in.ResponseRatePercent > 80 {
		b.Behavior += 10
		badges = append(badges, BadgeFastResponder)
	} else {
		tips = append(tips, TipResponseRate)
	}
	if in.TotalSales > 0 {
		b.Behavior += 5
	} else {
		tips = append(tips, TipFirstSale)
	}
	b.Behavior = capInt(b.Behavior, 0, models.MaxBehaviorScore)

	// listing
	listingScore, listingTips := s.listing.Score(profile.Listings)
	b.Listing = capInt(listingScore, 0, models.MaxListingScore)
	tips = append(tips, listingTips...)

	// review
	if in.TotalReviewCount >= 5 {
		b.Review += 5
	} else {
		tips = append(tips, TipFiveReviews)
	}
	if in.TotalReviewCount >= 20 {
		b.Review += 10
	} else {
		tips = append(tips, TipTwentyReviews)
	}
	if positiveRatio(in) >= 0.9 {
		b.Review += 10
		if in.TotalReviewCount >= 5 {
			badges = append(badges, BadgeHighlyRated)
		}
	} else {
		tips = append(tips, TipPositiveRatio)
	}
	b.Review = capInt(b.Review, 0, models.MaxReviewScore)

	// safety; two reports already floor it, so cap before multiplying
	b.Safety = capInt(models.MaxSafetyScore-5*capInt(in.ReportCount, 0, 2), 0, models.MaxSafetyScore)
	if in.ReportCount > 0 {
		tips = append(tips, TipResolveReports)
	} else {
		badges = append(badges, BadgeCleanRecord)
	}

	total := capInt(b.Sum(), 0, 100)
	result := models.TrustScore{
		TotalScore:      total,
		Level:           trustLevel(total, in),
		Breakdown:       b,
		Badges:          nonNil(badges),
		ImprovementTips: nonNil(tips),
	}

	s.logger.Debug("[trust] %s → %d (%s) %+v", profile.UserID, result.TotalScore, result.Level, b)
	return result
}

func trustLevel(score int, in models.TrustInputs) models.TrustLevel {
	switch {
	case score >= superTrustedMinScore && in.VerifiedIdentity:
		return models.TrustSuperTrusted
	case score >= trustedMinScore && (in.VerifiedPhone || in.VerifiedIdentity):
		return models.TrustTrusted
	default:
		return models.TrustBasic
	}
}

// positiveRatio is zero when there are no reviews.
func positiveRatio(in models.TrustInputs) float64 {
	if in.TotalReviewCount == 0 {
		return 0
	}
	return float64(in.PositiveReviewCount) / float64(in.TotalReviewCount)
}

// sanitizeTrustInputs clamps counters into range so no negative value leaks
// into a sub-score.
func sanitizeTrustInputs(stats *models.TrustInputs) models.TrustInputs {
	if stats == nil {
		return models.TrustInputs{}
	}
	in := *stats
	in.AccountAgeDays = maxInt(in.AccountAgeDays, 0)
	in.TotalSales = maxInt(in.TotalSales, 0)
	in.ReportCount = maxInt(in.ReportCount, 0)
	in.TotalReviewCount = maxInt(in.TotalReviewCount, 0)
	in.PositiveReviewCount = capInt(in.PositiveReviewCount, 0, in.TotalReviewCount)
	if math.IsNaN(in.ResponseRatePercent) {
		in.ResponseRatePercent = 0
	}
	in.ResponseRatePercent = clamp(in.ResponseRatePercent, 0, 100)
	return in
}

func capInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
