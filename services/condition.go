package services

import (
	"math"

	"jaikod-scoring/models"
	"jaikod-scoring/utils"
)

const (
	// Image quality at or above this costs nothing.
	imageQualityTarget = 80.0
	// Points lost per unit of image quality below the target.
	imageQualityPenaltyRate = 0.25
)

var severityPoints = map[models.Severity]float64{
	models.SeverityMinor:    5,
	models.SeverityModerate: 15,
	models.SeveritySevere:   30,
}

// conditionCutpoints must stay in strictly descending order.
var conditionCutpoints = []struct {
	min   int
	label models.ConditionLabel
}{
	{95, models.ConditionNew},
	{90, models.ConditionLikeNew},
	{75, models.ConditionGood},
	{50, models.ConditionFair},
	{20, models.ConditionPoor},
}

// ConditionNormalizer turns defect observations into a bounded condition score.
type ConditionNormalizer struct {
	logger *utils.Logger
}

// NewConditionNormalizer creates a ConditionNormalizer with the given logger.
func NewConditionNormalizer(logger *utils.Logger) *ConditionNormalizer {
	return &ConditionNormalizer{logger: logger}
}

// NormalizeCondition scores an item from 100 downwards. Each defect costs its
// severity points scaled by confidence and poor imagery costs up to 20 points.
// The result is clamped to [0,100] however many defects are supplied.
func (n *ConditionNormalizer) NormalizeCondition(defects []models.Defect, imageQuality float64) models.ConditionReport {
	score := 100.0

	for _, d := range defects {
		score -= defectPenalty(d)
	}
	score -= imagePenalty(imageQuality)

	final := int(math.Round(clamp(score, 0, 100)))
	report := models.ConditionReport{Score: final, Label: ConditionLabelFor(final)}

	n.logger.Debug("[condition] %d defects, image quality %.1f → %d (%s)",
		len(defects), imageQuality, report.Score, report.Label)
	return report
}

// ConditionLabelFor maps a condition score to its label.
func ConditionLabelFor(score int) models.ConditionLabel {
	for _, c := range conditionCutpoints {
		if score >= c.min {
			return c.label
		}
	}
	return models.ConditionForParts
}

func defectPenalty(d models.Defect) float64 {
	points, ok := severityPoints[d.Severity]
	if !ok {
		points = severityPoints[models.SeverityMinor]
	}

	confidence := d.Confidence
	switch {
	case math.IsNaN(confidence) || confidence <= 0:
		// unspecified confidence counts as certain
		confidence = 1
	case confidence > 1:
		confidence = 1
	}
	return points * confidence
}

func imagePenalty(quality float64) float64 {
	if math.IsNaN(quality) {
		quality = 0
	}
	quality = clamp(quality, 0, 100)
	if quality >= imageQualityTarget {
		return 0
	}
	return (imageQualityTarget - quality) * imageQualityPenaltyRate
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
