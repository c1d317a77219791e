// Package topic exposes upstream topic-strength weights in their received rank order.
package topic

import "github.com/hyperjump/semspace/internal/models"

// Ordered returns the topics as (id, strength) pairs in input order. The order already
// encodes importance, so nothing is sorted.
func Ordered(records []models.TopicRecord) []models.TopicPair {
	out := make([]models.TopicPair, len(records))
	for i, r := range records {
		out[i] = models.TopicPair{TopicID: r.TopicID, SingularValue: r.SingularValue}
	}
	return out
}

// Split returns parallel id and strength slices, ready for a bar chart.
func Split(pairs []models.TopicPair) ([]string, []float64) {
	ids := make([]string, len(pairs))
	values := make([]float64, len(pairs))
	for i, p := range pairs {
		ids[i] = p.TopicID
		values[i] = p.SingularValue
	}
	return ids, values
}

// Total sums the strengths.
func Total(pairs []models.TopicPair) float64 {
	var sum float64
	for _, p := range pairs {
		sum += p.SingularValue
	}
	return sum
}
