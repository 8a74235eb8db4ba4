package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/torosent/loadrush/internal/result"
	"github.com/torosent/loadrush/internal/stats"
)

// Export is the JSON document written to --output-file, the shape
// spec.md §6 describes for machine consumption.
type Export struct {
	RunID     string                 `json:"run_id"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Stats     map[string]any         `json:"stats"`
	Results   []result.RequestResult `json:"results,omitempty"`
}

// WriteExport marshals an Export to path, holding an exclusive lock on
// path+".lock" for the duration of the write so two loadrush runs never
// write the same export file at once. The lock is advisory: processes
// that do not take it are not excluded. If the lock is already held,
// WriteExport returns an error instead of waiting.
func WriteExport(path string, export Export) error {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("output: acquiring export lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("output: export file %s is locked by another process", path)
	}
	defer lock.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: creating export file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("output: encoding export: %w", err)
	}
	return nil
}

// NewExport builds an Export from a completed run, omitting the raw
// per-request results unless includeResults is set — exporting every
// result from a high-volume run can dwarf the summary it accompanies.
func NewExport(runID string, start, end time.Time, s stats.Summary, results []result.RequestResult, includeResults bool) Export {
	export := Export{
		RunID:     runID,
		StartTime: start,
		EndTime:   end,
		Stats:     s.ToMap(),
	}
	if includeResults {
		export.Results = results
	}
	return export
}
