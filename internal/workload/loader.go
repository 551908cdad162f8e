package workload

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"sql-compact/internal/model"
)

// Load reads statement-statistic records from a JSON file, or from
// every *.json file under a directory (lexical walk order, hidden
// directories skipped).
func Load(path string) ([]model.StatRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return loadFile(path)
	}

	var records []model.StatRecord
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != path {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.ToLower(filepath.Ext(p)) != ".json" {
			return nil
		}
		recs, err := loadFile(p)
		if err != nil {
			return err
		}
		records = append(records, recs...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.StatRecord{}
	}
	return records, nil
}

// loadFile accepts either a bare array of records or an object with a
// "records" field, which is how most activity-feed exports arrive.
func loadFile(path string) ([]model.StatRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []model.StatRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return nonNil(records), nil
	}

	var wrapped struct {
		Records []model.StatRecord `json:"records"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return nonNil(wrapped.Records), nil
}

// nonNil keeps loader output distinct from the nil sentinel that the
// compressor rejects as a contract violation.
func nonNil(records []model.StatRecord) []model.StatRecord {
	if records == nil {
		return []model.StatRecord{}
	}
	return records
}
