package reporter

import (
	"encoding/json"
	"fmt"
	"os"

	"sql-compact/internal/model"
)

// JSONReporter writes the full compression result (and findings, when
// present) as indented JSON to a file, or stdout when no target is set.
type JSONReporter struct {
	Target string
}

func NewJSONReporter(target string) *JSONReporter {
	return &JSONReporter{Target: target}
}

type jsonReport struct {
	*model.CompressionResult
	Findings []model.Finding `json:"findings,omitempty"`
}

func (r *JSONReporter) Report(result *model.CompressionResult, findings []model.Finding) error {
	data, err := json.MarshalIndent(jsonReport{result, findings}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')

	if r.Target == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(r.Target, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
