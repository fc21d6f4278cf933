package complaints

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// ExportColumns is the header row of the retraining export.
var ExportColumns = []string{"complaint_text", "normalized_text", "category", "priority"}

// ExportCorrections writes every stored correction as CSV with the reviewer's
// labels. It returns the number of data rows written.
func (s *Service) ExportCorrections(ctx context.Context, w io.Writer) (int, error) {
	items, err := s.store.ListFeedback(ctx, 0)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return 0, fmt.Errorf("write export header: %w", err)
	}

	// ListFeedback returns newest first; training wants submission order.
	for i := len(items) - 1; i >= 0; i-- {
		f := items[i]
		row := []string{
			f.ComplaintText,
			s.classifier.Normalize(f.ComplaintText),
			string(f.CorrectCategory),
			string(f.CorrectPriority),
		}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("write export row %d: %w", f.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush export: %w", err)
	}

	s.logger.Info("Corrections exported", map[string]interface{}{"rows": len(items)})
	return len(items), nil
}
