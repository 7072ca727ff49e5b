// Package service contains the analysis pipeline: embedding cache and batcher,
// clustering engine, insight generation, scoring, and the orchestrator.
package service

import "github.com/creatorpulse/hub/internal/models"

// strategicWeights maps a classification to its strategic priority weight.
// Unknown classifications fall back to 1.
var strategicWeights = map[models.Classification]float64{
	models.ClassificationRequest:    5,
	models.ClassificationConfusion:  4,
	models.ClassificationSkepticism: 3,
	models.ClassificationPraise:     2,
	models.ClassificationNoise:      1,
}

// riskScores maps a classification to its audience-risk score.
// Unknown classifications fall back to 10.
var riskScores = map[models.Classification]float64{
	models.ClassificationConfusion:  80,
	models.ClassificationSkepticism: 70,
	models.ClassificationRequest:    50,
	models.ClassificationPraise:     20,
	models.ClassificationNoise:      10,
}

// ComputeImpact returns the cluster's impact score: its audience share
// percentage weighted by the classification's strategic weight.
func ComputeImpact(sharePct float64, classification models.Classification) float64 {
	weight, ok := strategicWeights[classification]
	if !ok {
		weight = 1
	}
	return sharePct * weight
}

// RiskScore returns the risk score for a classification.
func RiskScore(classification models.Classification) float64 {
	score, ok := riskScores[classification]
	if !ok {
		return 10
	}
	return score
}

// PriorityFromImpact buckets an impact score: High at 200 and above, Medium at
// 100 and above, Low otherwise.
func PriorityFromImpact(impact float64) models.Priority {
	switch {
	case impact >= 200:
		return models.PriorityHigh
	case impact >= 100:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// ScoreCluster combines the three scoring functions for one cluster.
func ScoreCluster(sharePct float64, classification models.Classification) (impact, risk float64, priority models.Priority) {
	impact = ComputeImpact(sharePct, classification)
	return impact, RiskScore(classification), PriorityFromImpact(impact)
}
