package models

import "time"

// SearchResult is a single ranked hit.
type SearchResult struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// SearchResponse wraps ranked hits with the query context that produced them.
type SearchResponse struct {
	Query     string          `json:"query"`
	Matched   []string        `json:"matched,omitempty"`
	Exclude   string          `json:"exclude,omitempty"`
	Results   []*SearchResult `json:"results"`
	QueryTime int64           `json:"query_time_ms"`
}

// ResolutionKind tags the outcome of a title lookup.
type ResolutionKind string

const (
	ResolvedUnique    ResolutionKind = "unique"
	ResolvedAmbiguous ResolutionKind = "ambiguous"
	ResolvedNotFound  ResolutionKind = "not_found"
)

// Resolution is the tagged result of resolving a title fragment.
// Keys holds one key for Unique, every candidate for Ambiguous and nothing for NotFound.
type Resolution struct {
	Kind ResolutionKind `json:"kind"`
	Keys []string       `json:"keys,omitempty"`
}

// Key returns the resolved key when Kind is Unique.
func (r Resolution) Key() (string, bool) {
	if r.Kind != ResolvedUnique || len(r.Keys) != 1 {
		return "", false
	}
	return r.Keys[0], true
}

// ClusterCount is the population of one cluster id.
type ClusterCount struct {
	ClusterID int `json:"cluster_id"`
	Count     int `json:"count"`
}

// ClusterResult is a fitted clustering. Centers live in L2-normalised space.
type ClusterResult struct {
	K                int            `json:"k"`
	Labels           []int          `json:"labels"`
	Centers          [][]float64    `json:"centers"`
	Counts           []ClusterCount `json:"counts"`
	SilhouetteScores []float64      `json:"silhouette_scores"`
	Inertia          float64        `json:"inertia"`
}

// Projection2D places samples and cluster centers in one shared 2-D frame.
type Projection2D struct {
	Points    [][2]float64 `json:"points"`
	Centers2D [][2]float64 `json:"centers_2d"`
}

// TopicPair is one (topic, strength) entry in rank order.
type TopicPair struct {
	TopicID       string  `json:"topic_id"`
	SingularValue float64 `json:"singular_value"`
}

// DiagnosticsBundle is the single result delivered by a completed compute task.
type DiagnosticsBundle struct {
	TaskID           string         `json:"task_id"`
	Generation       uint64         `json:"generation"`
	Fingerprint      string         `json:"fingerprint"`
	Keys             []string       `json:"keys"`
	SilhouetteScores []float64      `json:"silhouette_scores"`
	KMin             int            `json:"k_min"`
	BestK            int            `json:"best_k"`
	Cluster          *ClusterResult `json:"cluster"`
	Projection       *Projection2D  `json:"projection"`
	TopicOrder       []TopicPair    `json:"topic_order"`
	StartedAt        time.Time      `json:"started_at"`
	FinishedAt       time.Time      `json:"finished_at"`
}

// Clone returns a deep copy of r.
func (r *SearchResponse) Clone() *SearchResponse {
	if r == nil {
		return nil
	}
	out := *r
	out.Matched = append([]string(nil), r.Matched...)
	if r.Results != nil {
		out.Results = make([]*SearchResult, len(r.Results))
		for i, res := range r.Results {
			if res != nil {
				c := *res
				out.Results[i] = &c
			}
		}
	}
	return &out
}

// Clone returns a deep copy of c.
func (c *ClusterResult) Clone() *ClusterResult {
	if c == nil {
		return nil
	}
	out := *c
	out.Labels = append([]int(nil), c.Labels...)
	out.Centers = cloneRows(c.Centers)
	out.Counts = append([]ClusterCount(nil), c.Counts...)
	out.SilhouetteScores = append([]float64(nil), c.SilhouetteScores...)
	return &out
}

// Clone returns a deep copy of p.
func (p *Projection2D) Clone() *Projection2D {
	if p == nil {
		return nil
	}
	return &Projection2D{
		Points:    append([][2]float64(nil), p.Points...),
		Centers2D: append([][2]float64(nil), p.Centers2D...),
	}
}

// Clone returns a deep copy of b.
func (b *DiagnosticsBundle) Clone() *DiagnosticsBundle {
	if b == nil {
		return nil
	}
	out := *b
	out.Keys = append([]string(nil), b.Keys...)
	out.SilhouetteScores = append([]float64(nil), b.SilhouetteScores...)
	out.Cluster = b.Cluster.Clone()
	out.Projection = b.Projection.Clone()
	out.TopicOrder = append([]TopicPair(nil), b.TopicOrder...)
	return &out
}

func cloneRows(rows [][]float64) [][]float64 {
	if rows == nil {
		return nil
	}
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = append([]float64(nil), r...)
	}
	return out
}
