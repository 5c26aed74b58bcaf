package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/weeklydigest/pkg/utils/logging"
)

func TestParseLogLevel(t *testing.T) {
	testCases := []struct {
		input string
		want  slog.Level
		isErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warning", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", want: slog.LevelInfo, isErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := logging.ParseLogLevel(tc.input)
			if tc.isErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err).Required()
			}
			gt.Equal(t, level, tc.want)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := logging.ParseFormat("json")
	gt.NoError(t, err).Required()
	gt.Equal(t, f, logging.FormatJSON)

	f, err = logging.ParseFormat("")
	gt.NoError(t, err).Required()
	gt.Equal(t, f, logging.FormatAuto)

	_, err = logging.ParseFormat("xml")
	gt.Error(t, err)
}

func TestNewLoggerAutoFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(slog.LevelInfo, &buf, logging.FormatAuto)

	logger.Debug("hidden")
	logger.Info("combined", "week_ending", "2025-01-10")

	var record map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &record)).Required()
	gt.Equal(t, record["msg"], any("combined"))
	gt.Equal(t, record["week_ending"], any("2025-01-10"))
}
