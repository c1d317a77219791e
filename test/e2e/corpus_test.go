package e2e

import (
	"testing"

	"github.com/hyperjump/semspace/internal/vector"
)

func TestBuildCorpus_Shape(t *testing.T) {
	c := BuildCorpus(1)
	if c.TermCount() != 40 {
		t.Errorf("TermCount() = %d, want 40", c.TermCount())
	}
	if c.DocCount() != 20 {
		t.Errorf("DocCount() = %d, want 20", c.DocCount())
	}
	if len(c.Topics) != len(c.Themes) {
		t.Errorf("topics = %d, want %d", len(c.Topics), len(c.Themes))
	}
	if len(c.TestCases) == 0 {
		t.Fatal("corpus has no query test cases")
	}
	for key, v := range c.TermVecs {
		if len(v) != c.Dimensions {
			t.Fatalf("term %q has %d dimensions", key, len(v))
		}
	}
}

func TestBuildCorpus_ThemesSeparate(t *testing.T) {
	c := BuildCorpus(1)
	for _, a := range c.Themes {
		for _, b := range c.Themes {
			sim := vector.Cosine(c.TermVecs[a.Terms[0]], c.TermVecs[b.Terms[1]])
			if a.Name == b.Name && sim < 0.9 {
				t.Errorf("%s terms too far apart: %.3f", a.Name, sim)
			}
			if a.Name != b.Name && sim > 0.5 {
				t.Errorf("%s and %s too close: %.3f", a.Name, b.Name, sim)
			}
		}
	}
}

func TestBuildCorpus_Deterministic(t *testing.T) {
	a, b := BuildCorpus(3), BuildCorpus(3)
	for _, term := range a.TermOrder {
		va, vb := a.TermVecs[term], b.TermVecs[term]
		for i := range va {
			if va[i] != vb[i] {
				t.Fatalf("term %q differs at %d", term, i)
			}
		}
	}
}
