package e2e

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/semspace/internal/config"
)

// File names used by WriteCorpus; they match the config defaults.
const (
	TermFile     = "term_embeddings.jsonl"
	DocumentFile = "doc_embeddings.jsonl"
	TopicFile    = "topics.jsonl"
)

// WriteCorpus writes the corpus as JSONL files into dir. Extra lines are appended to the
// term file verbatim, which lets tests inject malformed records.
func WriteCorpus(dir string, c *Corpus, extraTermLines ...string) error {
	termLines := make([]interface{}, 0, len(c.TermOrder))
	for _, t := range c.TermOrder {
		termLines = append(termLines, map[string]interface{}{"term": t, "embedding": c.TermVecs[t]})
	}
	if err := writeJSONL(filepath.Join(dir, TermFile), termLines, extraTermLines); err != nil {
		return err
	}
	docLines := make([]interface{}, 0, len(c.DocOrder))
	for _, d := range c.DocOrder {
		docLines = append(docLines, map[string]interface{}{"title": d, "embedding": c.DocVecs[d]})
	}
	if err := writeJSONL(filepath.Join(dir, DocumentFile), docLines, nil); err != nil {
		return err
	}
	topicLines := make([]interface{}, 0, len(c.Topics))
	for _, t := range c.Topics {
		topicLines = append(topicLines, map[string]interface{}{"topic": t.ID, "singular_value": t.SingularValue})
	}
	return writeJSONL(filepath.Join(dir, TopicFile), topicLines, nil)
}

func writeJSONL(path string, rows []interface{}, raw []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			return err
		}
	}
	for _, line := range raw {
		if _, err := fmt.Fprintln(w, line); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// CorpusConfig returns a config reading from dataDir with its cache database under stateDir.
// Clustering is kept small so the full sweep stays fast.
func CorpusConfig(dataDir, stateDir string) (*config.Config, error) {
	cfg, err := config.Default(stateDir)
	if err != nil {
		return nil, err
	}
	cfg.Data.Directory = dataDir
	cfg.Storage.DatabasePath = filepath.Join(stateDir, "cache.db")
	cfg.Export.Directory = filepath.Join(stateDir, "exports")
	cfg.Cluster.Restarts = 4
	cfg.Cluster.MaxIterations = 100
	return cfg, nil
}

// ReadSheet returns all rows of one sheet of the workbook at path.
func ReadSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(sheet)
}
