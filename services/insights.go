package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"jaikod-scoring/models"
	"jaikod-scoring/utils"
)

const topTrustedLimit = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(assessments []models.Assessment) *models.InsightReport {
	report := &models.InsightReport{
		TotalBoostCost:  "0",
		StatusCounts:    make(map[models.PriceStatus]int),
		LevelCounts:     make(map[models.TrustLevel]int),
		ConditionCounts: make(map[models.ConditionLabel]int),
	}

	if len(assessments) == 0 {
		return report
	}

	report.TotalAssessed = len(assessments)

	var trustTotal, percentileTotal float64
	var priced int
	boostCost := decimal.Zero
	ranked := make([]*models.Assessment, 0, len(assessments))

	for i := range assessments {
		a := &assessments[i]
		ranked = append(ranked, a)

		report.StatusCounts[a.Price.Status]++
		report.LevelCounts[a.Trust.Level]++
		report.ConditionCounts[a.Condition.Label]++
		trustTotal += float64(a.Trust.TotalScore)

		if a.Price.Status != models.PriceInsufficientData {
			priced++
			percentileTotal += a.Price.Percentile
		}
		if hasBadge(a.Price.Badges, models.BadgeDefaultReference) || a.Price.Status == models.PriceInsufficientData {
			report.DegradedPricing++
		}
		if a.Price.Status == models.PriceOverpriced {
			if report.MostOverpriced == nil || a.Price.Percentile > report.MostOverpriced.Price.Percentile {
				report.MostOverpriced = a
			}
		}
		if a.Boost != nil {
			report.BoostsTriggered++
			boostCost = boostCost.Add(a.Boost.Cost)
		}
	}

	report.AverageTrustScore = round2(trustTotal / float64(len(assessments)))
	if priced > 0 {
		report.AveragePercentile = round2(percentileTotal / float64(priced))
	}
	report.TotalBoostCost = boostCost.StringFixed(2)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Trust.TotalScore > ranked[j].Trust.TotalScore
	})
	if len(ranked) > topTrustedLimit {
		ranked = ranked[:topTrustedLimit]
	}
	report.TopTrusted = ranked

	s.logger.Debug("[insights] %d assessments, %d boosts, %d degraded price checks",
		report.TotalAssessed, report.BoostsTriggered, report.DegradedPricing)
	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 TRUST & PRICING INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Listings assessed     : \033[1m%d\033[0m\n", r.TotalAssessed)
	fmt.Printf("  Average trust score   : \033[1m%.2f\033[0m\n", r.AverageTrustScore)
	fmt.Printf("  Average percentile    : \033[1m%.2f\033[0m\n", r.AveragePercentile)
	fmt.Printf("  Degraded price checks : \033[1m%d\033[0m\n", r.DegradedPricing)
	fmt.Printf("  Boosts triggered      : \033[1m%d\033[0m (cost ฿%s)\n", r.BoostsTriggered, r.TotalBoostCost)
	fmt.Println()

	fmt.Printf("\033[1;33m  Price Status\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printCounts(stringCounts(r.StatusCounts))
	fmt.Println()

	fmt.Printf("\033[1;33m  Trust Levels\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printCounts(stringCounts(r.LevelCounts))
	fmt.Println()

	fmt.Printf("\033[1;33m  Condition\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printCounts(stringCounts(r.ConditionCounts))
	fmt.Println()

	if r.MostOverpriced != nil {
		fmt.Printf("\033[1;33m  Most Overpriced Listing\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s (%s)\n", truncate(r.MostOverpriced.ItemID, 40), r.MostOverpriced.Price.Category)
		fmt.Printf("  Price    : \033[1;31m฿%.2f\033[0m (p%.1f, avg ฿%.2f)\n",
			r.MostOverpriced.Price.Price, r.MostOverpriced.Price.Percentile, r.MostOverpriced.Price.AveragePrice)
		fmt.Println()
	}

	fmt.Printf("\033[1;33m  Top %d Most Trusted Sellers\033[0m\n", topTrustedLimit)
	fmt.Printf("  %s\n", thin)
	if len(r.TopTrusted) == 0 {
		fmt.Printf("  No assessments\n")
	} else {
		for i, a := range r.TopTrusted {
			fmt.Printf("  \033[1m%d.\033[0m %-32s \033[1;32m%3d\033[0m %s\n",
				i+1, truncate(a.ItemID, 30), a.Trust.TotalScore, a.Trust.Level)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

type keyCount struct {
	key   string
	count int
}

func stringCounts[K ~string](m map[K]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, v := range m {
		out = append(out, keyCount{string(k), v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

func printCounts(counts []keyCount) {
	if len(counts) == 0 {
		fmt.Printf("  No data\n")
		return
	}
	for _, kc := range counts {
		bar := strings.Repeat("█", kc.count)
		fmt.Printf("  %-20s %s (%d)\n", kc.key, bar, kc.count)
	}
}

func hasBadge(badges []string, want string) bool {
	for _, b := range badges {
		if b == want {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
