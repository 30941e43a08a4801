package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		program string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "logs",
			program: "openscore",
			want:    filepath.Join("logs", "openscore.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./logs",
			program: "openscore",
			want:    filepath.Join(".", "logs", "openscore.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "openscore"),
			program: "openscore",
			want:    filepath.Join("/var", "log", "openscore", "openscore.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.program, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}
