// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ThePyrotechnic/openscoreboard/internal/match"
	"github.com/ThePyrotechnic/openscoreboard/internal/model/convert"
	v1 "github.com/ThePyrotechnic/openscoreboard/internal/storage/memory/export/v1"
)

// exportFileName derives the file name from the demo name and start time
func (b *Backend) exportFileName(rec *match.Record) string {
	demoName := strings.TrimSuffix(filepath.Base(rec.Meta.DemoPath), filepath.Ext(rec.Meta.DemoPath))
	demoName = strings.ReplaceAll(demoName, " ", "_")
	demoName = strings.ReplaceAll(demoName, ":", "_")
	if demoName == "" || demoName == "." {
		demoName = "match"
	}
	timestamp := rec.Meta.StartedAt.UTC().Format("20060102_150405")

	if b.cfg.CompressOutput {
		return fmt.Sprintf("%s_%s.json.gz", demoName, timestamp)
	}
	return fmt.Sprintf("%s_%s.json", demoName, timestamp)
}

// exportJSON writes the match to a (optionally gzipped) JSON file
func (b *Backend) exportJSON(rec *match.Record) error {
	export := v1.Build(convert.RecordToMatch(rec))

	outputPath := filepath.Join(b.cfg.OutputDir, b.exportFileName(rec))

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func writeJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return f.Sync()
}

func writeGzipJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	encoder := json.NewEncoder(gzWriter)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush gzip stream: %w", err)
	}
	return f.Sync()
}
