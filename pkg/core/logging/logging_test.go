package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level     string
		dev       bool
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{"", false, zapcore.InfoLevel, false},
		{"debug", true, zapcore.DebugLevel, false},
		{"warn", false, zapcore.WarnLevel, false},
		{"loud", false, 0, true},
	}
	for _, tt := range tests {
		log, err := New(tt.level, tt.dev)
		if (err != nil) != tt.wantErr {
			t.Fatalf("New(%q) err = %v, wantErr %v", tt.level, err, tt.wantErr)
		}
		if err != nil {
			continue
		}
		if !log.Core().Enabled(tt.wantLevel) || log.Core().Enabled(tt.wantLevel-1) {
			t.Errorf("New(%q) level mismatch, want %v", tt.level, tt.wantLevel)
		}
	}
}
