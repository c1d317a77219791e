package e2e

import (
	"path/filepath"
	"testing"

	"github.com/hyperjump/semspace/internal/config"
	"github.com/hyperjump/semspace/internal/ingest"
)

func TestWriteCorpus_Loadable(t *testing.T) {
	dir := t.TempDir()
	c := BuildCorpus(1)
	if err := WriteCorpus(dir, c, `{"term": "broken"`); err != nil {
		t.Fatalf("WriteCorpus: %v", err)
	}
	loader := ingest.NewLoader(false, nil)
	ds, reports, err := loader.LoadDataset(&config.DataConfig{
		Directory:    dir,
		TermFile:     TermFile,
		DocumentFile: DocumentFile,
		TopicFile:    TopicFile,
	})
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(ds.Terms) != c.TermCount() || len(ds.Documents) != c.DocCount() || len(ds.Topics) != len(c.Topics) {
		t.Errorf("loaded %d/%d/%d records", len(ds.Terms), len(ds.Documents), len(ds.Topics))
	}
	if len(reports[0].Issues) != 1 {
		t.Errorf("term issues = %d, want 1", len(reports[0].Issues))
	}
	if reports[0].Source != filepath.Join(dir, TermFile) {
		t.Errorf("source = %q", reports[0].Source)
	}
}
