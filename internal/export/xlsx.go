// Package export writes diagnostics bundles as spreadsheet workbooks.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/topic"
)

// Sheet names, in workbook order.
const (
	SheetSummary    = "Summary"
	SheetSilhouette = "Silhouette"
	SheetClusters   = "Clusters"
	SheetPoints     = "Points"
	SheetCenters    = "Centers"
	SheetTopics     = "Topics"
)

// ContentType is the MIME type of the produced workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook builds a workbook with one sheet per part of the bundle. The caller closes it.
func Workbook(b *models.DiagnosticsBundle) (*excelize.File, error) {
	if b == nil || b.Cluster == nil || b.Projection == nil {
		return nil, errors.New("incomplete diagnostics bundle")
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		_ = f.Close()
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w := &sheetWriter{f: f, header: header}
	w.summary(b)
	w.silhouette(b)
	w.clusters(b)
	w.points(b)
	w.centers(b)
	w.topics(b)
	if w.err != nil {
		_ = f.Close()
		return nil, w.err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook for b to out.
func Write(out io.Writer, b *models.DiagnosticsBundle) error {
	f, err := Workbook(b)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile saves the workbook for b at path, creating parent directories.
func WriteFile(path string, b *models.DiagnosticsBundle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := Workbook(b)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// FileName returns the default export name for b.
func FileName(b *models.DiagnosticsBundle) string {
	ts := b.FinishedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return fmt.Sprintf("diagnostics-%s.xlsx", ts.UTC().Format("20060102-150405"))
}

// sheetWriter keeps the first error so the sheet builders read straight through.
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) sheet(name string, header ...interface{}) {
	if w.err != nil {
		return
	}
	if name != SheetSummary {
		if _, err := w.f.NewSheet(name); err != nil {
			w.err = err
			return
		}
	}
	w.row(name, 1, header...)
	if w.err == nil {
		w.err = w.f.SetRowStyle(name, 1, 1, w.header)
	}
}

func (w *sheetWriter) row(name string, n int, values ...interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(name, cell, &values)
}

func (w *sheetWriter) summary(b *models.DiagnosticsBundle) {
	w.sheet(SheetSummary, "Field", "Value")
	rows := [][]interface{}{
		{"Task", b.TaskID},
		{"Generation", b.Generation},
		{"Fingerprint", b.Fingerprint},
		{"Samples", len(b.Keys)},
		{"Best k", b.BestK},
		{"Inertia", b.Cluster.Inertia},
		{"Started", b.StartedAt.UTC().Format(time.RFC3339)},
		{"Finished", b.FinishedAt.UTC().Format(time.RFC3339)},
	}
	for i, r := range rows {
		w.row(SheetSummary, i+2, r...)
	}
}

func (w *sheetWriter) silhouette(b *models.DiagnosticsBundle) {
	w.sheet(SheetSilhouette, "k", "Silhouette", "Selected")
	for i, s := range b.SilhouetteScores {
		k := b.KMin + i
		selected := ""
		if k == b.BestK {
			selected = "yes"
		}
		w.row(SheetSilhouette, i+2, k, s, selected)
	}
}

func (w *sheetWriter) clusters(b *models.DiagnosticsBundle) {
	w.sheet(SheetClusters, "Cluster", "Count")
	for i, c := range b.Cluster.Counts {
		w.row(SheetClusters, i+2, c.ClusterID, c.Count)
	}
}

func (w *sheetWriter) points(b *models.DiagnosticsBundle) {
	w.sheet(SheetPoints, "Key", "Cluster", "X", "Y")
	for i, p := range b.Projection.Points {
		key := ""
		if i < len(b.Keys) {
			key = b.Keys[i]
		}
		label := -1
		if i < len(b.Cluster.Labels) {
			label = b.Cluster.Labels[i]
		}
		w.row(SheetPoints, i+2, key, label, p[0], p[1])
	}
}

func (w *sheetWriter) centers(b *models.DiagnosticsBundle) {
	w.sheet(SheetCenters, "Cluster", "X", "Y")
	for i, c := range b.Projection.Centers2D {
		w.row(SheetCenters, i+2, i, c[0], c[1])
	}
}

func (w *sheetWriter) topics(b *models.DiagnosticsBundle) {
	w.sheet(SheetTopics, "Rank", "Topic", "Singular value", "Share")
	total := topic.Total(b.TopicOrder)
	for i, t := range b.TopicOrder {
		share := 0.0
		if total != 0 {
			share = t.SingularValue / total
		}
		w.row(SheetTopics, i+2, i+1, t.TopicID, t.SingularValue, share)
	}
}
