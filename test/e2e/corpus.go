// Package e2e provides end-to-end tests over a synthetic embedding corpus with known structure.
package e2e

import (
	"math/rand/v2"
	"strconv"
)

// Theme is one well separated region of the embedding space.
type Theme struct {
	Name      string
	Terms     []string
	Documents []string
}

// QueryTestCase defines a term query and the theme its top results must come from.
type QueryTestCase struct {
	Query       string
	Theme       string
	Description string
}

// Corpus holds the generated records plus the ground truth needed to check results.
type Corpus struct {
	Dimensions int
	Themes     []Theme
	TermVecs   map[string][]float64
	DocVecs    map[string][]float64
	// TermOrder and DocOrder are the order records are written in.
	TermOrder []string
	DocOrder  []string
	Topics    []TopicRow
	TestCases []QueryTestCase
	ThemeOf   map[string]string
}

// TopicRow is one line of the topic file.
type TopicRow struct {
	ID            string
	SingularValue float64
}

var themes = []Theme{
	{
		Name:      "programming",
		Terms:     []string{"python", "golang", "compiler", "runtime", "goroutine", "interpreter", "bytecode", "linker"},
		Documents: []string{"Python Guide", "Go Language", "Compiler Design", "Runtime Internals"},
	},
	{
		Name:      "economy",
		Terms:     []string{"inflation", "interest", "monetary", "fiscal", "tariff", "recession", "bond", "currency"},
		Documents: []string{"Economy Today", "Central Banking", "Trade Policy", "Bond Markets"},
	},
	{
		Name:      "biology",
		Terms:     []string{"protein", "enzyme", "genome", "cell", "mitosis", "ribosome", "mutation", "membrane"},
		Documents: []string{"Cell Biology", "Genome Sequencing", "Enzyme Kinetics", "Protein Folding"},
	},
	{
		Name:      "astronomy",
		Terms:     []string{"galaxy", "nebula", "quasar", "pulsar", "telescope", "redshift", "supernova", "orbit"},
		Documents: []string{"Galaxy Formation", "Telescope Optics", "Pulsar Timing", "Supernova Remnants"},
	},
	{
		Name:      "music",
		Terms:     []string{"melody", "harmony", "rhythm", "chord", "tempo", "symphony", "sonata", "timbre"},
		Documents: []string{"Music Theory", "Symphony Orchestra", "Rhythm Section", "Chord Progressions"},
	},
}

// BuildCorpus returns a corpus of five themes in eight dimensions. Theme centres are ten
// units apart along separate axes and members are jittered by at most spread per axis, so
// the best silhouette is reached at k equal to the number of themes.
func BuildCorpus(seed uint64) *Corpus {
	const (
		dims   = 8
		spread = 0.6
	)
	rng := rand.New(rand.NewPCG(seed, 7))
	c := &Corpus{
		Dimensions: dims,
		Themes:     themes,
		TermVecs:   make(map[string][]float64),
		DocVecs:    make(map[string][]float64),
		ThemeOf:    make(map[string]string),
	}
	jitter := func(center []float64) []float64 {
		v := make([]float64, len(center))
		for i, x := range center {
			v[i] = x + (rng.Float64()*2-1)*spread
		}
		return v
	}
	for i, th := range themes {
		center := make([]float64, dims)
		center[i] = 10
		center[dims-1-i%3] += 2
		for _, term := range th.Terms {
			c.TermVecs[term] = jitter(center)
			c.TermOrder = append(c.TermOrder, term)
			c.ThemeOf[term] = th.Name
		}
		for _, doc := range th.Documents {
			c.DocVecs[doc] = jitter(center)
			c.DocOrder = append(c.DocOrder, doc)
			c.ThemeOf[doc] = th.Name
		}
		c.Topics = append(c.Topics, TopicRow{ID: strconv.Itoa(i), SingularValue: float64(len(themes)-i) * 1.5})
		c.TestCases = append(c.TestCases,
			QueryTestCase{Query: th.Terms[0], Theme: th.Name, Description: "single term"},
			QueryTestCase{Query: th.Terms[1] + " " + th.Terms[2], Theme: th.Name, Description: "two terms"},
			QueryTestCase{Query: th.Terms[3] + " unknownword", Theme: th.Name, Description: "unknown words ignored"},
		)
	}
	// Shuffle topic order so ordering by strength is observable.
	rng.Shuffle(len(c.Topics), func(i, j int) { c.Topics[i], c.Topics[j] = c.Topics[j], c.Topics[i] })
	return c
}

// TermCount is the number of term records in the corpus.
func (c *Corpus) TermCount() int { return len(c.TermOrder) }

// DocCount is the number of document records in the corpus.
func (c *Corpus) DocCount() int { return len(c.DocOrder) }
