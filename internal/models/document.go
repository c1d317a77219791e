// Package models defines the records, result bundles and error taxonomy shared by semspace.
package models

// RecordKind identifies which collection an ingested record belongs to.
type RecordKind string

const (
	KindTerm     RecordKind = "term"
	KindDocument RecordKind = "document"
	KindTopic    RecordKind = "topic"
)

// EmbeddingRecord is a keyed vector. Term records are keyed by the term, document records by title.
type EmbeddingRecord struct {
	Key    string    `json:"key"`
	Vector []float64 `json:"vector"`
}

// TopicRecord carries the strength of one latent topic. Order as received is rank order.
type TopicRecord struct {
	TopicID       string  `json:"topic_id"`
	SingularValue float64 `json:"singular_value"`
}

// Dataset is everything one load produced, before it is snapshotted into stores.
type Dataset struct {
	Terms     []EmbeddingRecord `json:"terms"`
	Documents []EmbeddingRecord `json:"documents"`
	Topics    []TopicRecord     `json:"topics"`
}
