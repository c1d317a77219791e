package search

import "github.com/hyperjump/semspace/internal/models"

// ProcessQuery validates and applies defaults to a term query.
func ProcessQuery(query *models.SearchQuery, defaultLimit, maxLimit int) error {
	return query.Validate(defaultLimit, maxLimit)
}

// ProcessSimilar validates and applies defaults to a neighbour query.
func ProcessSimilar(query *models.SimilarQuery, defaultLimit, maxLimit int) error {
	return query.Validate(defaultLimit, maxLimit)
}
