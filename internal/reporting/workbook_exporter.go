package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"pair-performance-lab/internal/domain"
)

// WorkbookExporter writes xlsx workbooks, a CSV snapshot and a markdown report.
// Files are written into a staging directory inside Dir and moved into place only
// after every file has been written; a failed move restores the previous files.
type WorkbookExporter struct {
	logger *slog.Logger
}

// NewWorkbookExporter creates a WorkbookExporter.
func NewWorkbookExporter() *WorkbookExporter {
	return &WorkbookExporter{logger: slog.Default()}
}

// WithLogger sets the logger.
func (e *WorkbookExporter) WithLogger(l *slog.Logger) *WorkbookExporter {
	if l != nil {
		e.logger = l
	}
	return e
}

var _ Exporter = (*WorkbookExporter)(nil)

// Export writes b into b.Dir, creating it if absent.
func (e *WorkbookExporter) Export(ctx context.Context, b Bundle) error {
	if b.Dir == "" {
		return errors.New("export: empty output directory")
	}
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	staging := filepath.Join(b.Dir, ".staging-"+uuid.NewString())
	if err := os.Mkdir(staging, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	var names []string
	for _, wb := range b.Workbooks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeWorkbook(filepath.Join(staging, wb.Name), wb); err != nil {
			return fmt.Errorf("write workbook %s: %w", wb.Name, err)
		}
		names = append(names, wb.Name)
	}

	if b.Snapshot != nil {
		if err := writeSnapshotFile(filepath.Join(staging, b.Snapshot.Name), b.Snapshot); err != nil {
			return fmt.Errorf("write snapshot %s: %w", b.Snapshot.Name, err)
		}
		names = append(names, b.Snapshot.Name)
	}

	if b.Comparison != nil {
		md := RenderMarkdown(b.Comparison)
		if err := os.WriteFile(filepath.Join(staging, MarkdownFile), []byte(md), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", MarkdownFile, err)
		}
		names = append(names, MarkdownFile)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := commit(staging, b.Dir, names); err != nil {
		return err
	}

	e.logger.Info("export complete", "dir", b.Dir, "files", len(names))
	return nil
}

// commit moves the staged files into dir. Existing targets are parked in a
// backup directory first so a failed move can put them back.
func commit(staging, dir string, names []string) error {
	backup := filepath.Join(staging, ".previous")
	if err := os.Mkdir(backup, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	var parked, placed []string
	restore := func() {
		for _, name := range placed {
			_ = os.Remove(filepath.Join(dir, name))
		}
		for _, name := range parked {
			_ = os.Rename(filepath.Join(backup, name), filepath.Join(dir, name))
		}
	}

	for _, name := range names {
		target := filepath.Join(dir, name)
		if _, err := os.Stat(target); err == nil {
			if err := os.Rename(target, filepath.Join(backup, name)); err != nil {
				restore()
				return fmt.Errorf("park %s: %w", name, err)
			}
			parked = append(parked, name)
		}
		if err := os.Rename(filepath.Join(staging, name), target); err != nil {
			restore()
			return fmt.Errorf("move %s into place: %w", name, err)
		}
		placed = append(placed, name)
	}
	return nil
}

// writeWorkbook saves one sheet per aggregation key.
func writeWorkbook(path string, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	for i, s := range wb.Sheets {
		name := s.Name()
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}

		header := make([]any, 0, len(domain.SummaryColumns)+1)
		header = append(header, s.Key.Column())
		for _, c := range domain.SummaryColumns {
			header = append(header, c)
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("write header of %s: %w", name, err)
		}

		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			values := append([]any{row.Value}, row.Summary.Values()...)
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("write row %d of %s: %w", r, name, err)
			}
		}
	}

	return f.SaveAs(path)
}

func writeSnapshotFile(path string, s *Snapshot) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSnapshot(out, s); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
