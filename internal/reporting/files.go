package reporting

import (
	"fmt"
	"os"
	"path/filepath"
)

// Output file names inside a run's report directory.
const (
	FileMarkdown  = "REPORT.md"
	FileTradesCSV = "trades.csv"
	FileEquityCSV = "equity_curve.csv"
	FileJSON      = "report.json"
)

// WriteFiles renders r in every format into dir/<run_id>/ and returns the
// written paths.
func WriteFiles(dir string, r *Report) ([]string, error) {
	runDir := filepath.Join(dir, r.Run.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	jsonBytes, err := RenderJSON(r)
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}

	files := []struct {
		name    string
		content []byte
	}{
		{FileMarkdown, []byte(RenderMarkdown(r))},
		{FileTradesCSV, []byte(RenderTradesCSV(r.Trades))},
		{FileEquityCSV, []byte(RenderEquityCSV(r.EquityCurve))},
		{FileJSON, jsonBytes},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(runDir, f.name)
		if err := os.WriteFile(path, f.content, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
