// Package ingest reads the newline-delimited JSON records produced by the upstream
// decomposition: term embeddings, document embeddings and topic strengths.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/semspace/internal/config"
	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/pkg/utils"
)

// MaxLineCapacity is the largest record line accepted (4MB covers a few thousand dimensions).
const MaxLineCapacity = 4 * 1024 * 1024

// Report summarises one file load.
type Report struct {
	Source  string                `json:"source"`
	Loaded  int                   `json:"loaded"`
	Missing bool                  `json:"missing,omitempty"`
	Issues  []*models.RecordError `json:"issues,omitempty"`
}

// Loader reads record files. In strict mode the first malformed record fails the load;
// otherwise malformed records are skipped and listed in the report.
type Loader struct {
	strict bool
	logger *zap.Logger
}

// NewLoader creates a loader.
func NewLoader(strict bool, logger *zap.Logger) *Loader {
	return &Loader{strict: strict, logger: utils.OrNop(logger)}
}

type embeddingLine struct {
	Term      *string    `json:"term"`
	Title     *string    `json:"title"`
	Embedding *[]float64 `json:"embedding"`
}

type topicLine struct {
	Topic         json.RawMessage `json:"topic"`
	SingularValue *float64        `json:"singular_value"`
}

// ReadEmbeddings parses term or document records from r. Later duplicates of a key are
// dropped and reported; the first occurrence wins.
func (l *Loader) ReadEmbeddings(r io.Reader, source string, kind models.RecordKind) ([]models.EmbeddingRecord, *Report, error) {
	if kind != models.KindTerm && kind != models.KindDocument {
		return nil, nil, fmt.Errorf("unsupported embedding kind %q", kind)
	}
	report := &Report{Source: source}
	var records []models.EmbeddingRecord
	seen := make(map[string]int)
	dims := 0

	err := l.scan(r, source, report, func(line []byte, lineNum int) string {
		var rec embeddingLine
		if err := json.Unmarshal(line, &rec); err != nil {
			return "invalid json: " + err.Error()
		}
		keyField, key := "term", rec.Term
		if kind == models.KindDocument {
			keyField, key = "title", rec.Title
		}
		if key == nil {
			return "missing " + keyField
		}
		k := strings.TrimSpace(*key)
		if k == "" {
			return "empty " + keyField
		}
		if rec.Embedding == nil {
			return "missing embedding"
		}
		vec := *rec.Embedding
		if len(vec) == 0 {
			return "empty embedding"
		}
		if dims == 0 {
			dims = len(vec)
		} else if len(vec) != dims {
			return fmt.Sprintf("embedding has %d dimensions, expected %d", len(vec), dims)
		}
		if first, ok := seen[k]; ok {
			return fmt.Sprintf("duplicate %s %q (first seen on line %d)", keyField, k, first)
		}
		seen[k] = lineNum
		records = append(records, models.EmbeddingRecord{Key: k, Vector: vec})
		return ""
	})
	if err != nil {
		return nil, report, err
	}
	report.Loaded = len(records)
	return records, report, nil
}

// ReadTopics parses topic records from r, preserving their order. Topic ids may be strings
// or numbers; numbers keep their JSON spelling.
func (l *Loader) ReadTopics(r io.Reader, source string) ([]models.TopicRecord, *Report, error) {
	report := &Report{Source: source}
	var records []models.TopicRecord

	err := l.scan(r, source, report, func(line []byte, _ int) string {
		var rec topicLine
		if err := json.Unmarshal(line, &rec); err != nil {
			return "invalid json: " + err.Error()
		}
		if len(rec.Topic) == 0 {
			return "missing topic"
		}
		id, err := topicID(rec.Topic)
		if err != nil {
			return err.Error()
		}
		if rec.SingularValue == nil {
			return "missing singular_value"
		}
		records = append(records, models.TopicRecord{TopicID: id, SingularValue: *rec.SingularValue})
		return ""
	})
	if err != nil {
		return nil, report, err
	}
	report.Loaded = len(records)
	return records, report, nil
}

func topicID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return "", errors.New("missing topic")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid topic: %v", err)
		}
		if strings.TrimSpace(s) == "" {
			return "", errors.New("empty topic")
		}
		return s, nil
	}
	if _, err := strconv.ParseFloat(string(raw), 64); err != nil {
		return "", fmt.Errorf("topic must be a string or number, got %s", raw)
	}
	return string(raw), nil
}

// scan feeds each non-blank line to parse, which returns a rejection reason or "".
func (l *Loader) scan(r io.Reader, source string, report *Report, parse func(line []byte, lineNum int) string) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, MaxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		reason := parse(line, lineNum)
		if reason == "" {
			continue
		}
		recErr := &models.RecordError{Source: source, Line: lineNum, Reason: reason}
		if l.strict {
			return recErr
		}
		l.logger.Warn("skipping malformed record",
			zap.String("source", source),
			zap.Int("line", lineNum),
			zap.String("reason", reason),
		)
		report.Issues = append(report.Issues, recErr)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}
	return nil
}

// LoadEmbeddings reads an embeddings file. A missing file yields no records and a warning.
func (l *Loader) LoadEmbeddings(path string, kind models.RecordKind) ([]models.EmbeddingRecord, *Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("embeddings file not found", zap.String("path", path), zap.String("kind", string(kind)))
			return nil, &Report{Source: path, Missing: true}, nil
		}
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return l.ReadEmbeddings(f, path, kind)
}

// LoadTopics reads a topics file. A missing file yields no records and a warning.
func (l *Loader) LoadTopics(path string) ([]models.TopicRecord, *Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("topics file not found", zap.String("path", path))
			return nil, &Report{Source: path, Missing: true}, nil
		}
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return l.ReadTopics(f, path)
}

// LoadDataset reads all three files named by cfg.
func (l *Loader) LoadDataset(cfg *config.DataConfig) (*models.Dataset, []*Report, error) {
	terms, termReport, err := l.LoadEmbeddings(cfg.TermPath(), models.KindTerm)
	if err != nil {
		return nil, nil, err
	}
	docs, docReport, err := l.LoadEmbeddings(cfg.DocumentPath(), models.KindDocument)
	if err != nil {
		return nil, nil, err
	}
	topics, topicReport, err := l.LoadTopics(cfg.TopicPath())
	if err != nil {
		return nil, nil, err
	}
	l.logger.Info("dataset loaded",
		zap.Int("terms", len(terms)),
		zap.Int("documents", len(docs)),
		zap.Int("topics", len(topics)),
		zap.Int("issues", len(termReport.Issues)+len(docReport.Issues)+len(topicReport.Issues)),
	)
	return &models.Dataset{Terms: terms, Documents: docs, Topics: topics},
		[]*Report{termReport, docReport, topicReport}, nil
}
