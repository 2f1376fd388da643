package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"jaikod-scoring/models"
	"jaikod-scoring/utils"
)

var (
	// priceRegexp captures numeric price values
	priceRegexp = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
	// thousandsRegexp captures shorthand like "8.9k"
	thousandsRegexp = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*k\b`)
)

// conditionAliases maps free-text seller conditions to labels.
var conditionAliases = map[string]models.ConditionLabel{
	"new":          models.ConditionNew,
	"brand new":    models.ConditionNew,
	"sealed":       models.ConditionNew,
	"like new":     models.ConditionLikeNew,
	"open box":     models.ConditionLikeNew,
	"mint":         models.ConditionLikeNew,
	"good":         models.ConditionGood,
	"used":         models.ConditionGood,
	"pre-owned":    models.ConditionGood,
	"fair":         models.ConditionFair,
	"well used":    models.ConditionFair,
	"poor":         models.ConditionPoor,
	"heavily used": models.ConditionPoor,
	"for parts":    models.ConditionForParts,
	"parts only":   models.ConditionForParts,
	"not working":  models.ConditionForParts,
	"as-is":        models.ConditionForParts,
}

// Cleaner transforms scraped comparables into reference price points.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean drops listings without a URL or a usable price, removes duplicate
// URLs, and returns the remaining comparables as price points.
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.PricePoint {
	seen := utils.NewKeySet()
	result := make([]*models.PricePoint, 0, len(raw))

	for _, r := range raw {
		url := strings.TrimSpace(r.URL)
		if url == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty URL: %s", r.Title)
			continue
		}

		if !seen.Add(url) {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
			continue
		}

		price := c.parsePrice(r.RawPrice)
		if price <= 0 {
			c.logger.Debug("[cleaner] Dropping listing without price: %s", url)
			continue
		}

		result = append(result, &models.PricePoint{
			Category:  normaliseKey(r.Category),
			Price:     price,
			Region:    normaliseKey(r.Location),
			Condition: parseCondition(r.Condition),
			URL:       url,
			CreatedAt: time.Now(),
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d comparables (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// parsePrice extracts the first price in a raw string.
// Examples:
//
//	"฿8,800"      → 8800
//	"THB 1,200.50" → 1200.50
//	"8.9k บาท"     → 8900
func (c *Cleaner) parsePrice(raw string) float64 {
	raw = strings.ToLower(raw)
	cleaned := strings.ReplaceAll(raw, ",", "")

	if m := thousandsRegexp.FindStringSubmatch(cleaned); len(m) >= 2 {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return v * 1000
		}
	}

	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return 0
	}

	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return price
}

// parseCondition maps a seller-entered condition to a label, defaulting to Good.
func parseCondition(raw string) models.ConditionLabel {
	key := strings.ToLower(normaliseText(raw))
	key = strings.ReplaceAll(key, "_", " ")
	if label, ok := conditionAliases[key]; ok {
		return label
	}
	return models.ConditionGood
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// normaliseKey turns "Chiang Mai" into "chiang-mai".
func normaliseKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(normaliseText(s)), " ", "-")
}
