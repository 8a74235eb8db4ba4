package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/torosent/loadrush/internal/errkind"
	"github.com/torosent/loadrush/internal/result"
	"github.com/torosent/loadrush/internal/stats"
)

func TestWriteExportRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.json")

	start := time.Now().Add(-time.Second)
	end := time.Now()
	s := stats.Summary{Total: 2, Successful: 1, Failed: 1}
	results := []result.RequestResult{
		{URL: "http://example.com", StatusCode: 200},
		{URL: "http://example.com", ErrorKind: errkind.Timeout},
	}

	export := NewExport("run-1", start, end, s, results, true)
	if err := WriteExport(path, export); err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export file: %v", err)
	}
	var decoded Export
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if decoded.RunID != "run-1" || len(decoded.Results) != 2 {
		t.Fatalf("unexpected export contents: %+v", decoded)
	}
}

func TestNewExportOmitsResultsByDefault(t *testing.T) {
	export := NewExport("run-2", time.Now(), time.Now(), stats.Summary{}, []result.RequestResult{{URL: "x"}}, false)
	if export.Results != nil {
		t.Fatalf("expected results to be omitted, got %+v", export.Results)
	}
}
