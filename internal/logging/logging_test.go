package logging

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"ERROR":   LevelError,
		"warn":    LevelWarn,
		"Warning": LevelWarn,
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"loud":    LevelInfo,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), input)
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})

	logger := New("Trainer", LevelInfo)
	logger.Debug("hidden %d", 1)
	logger.Info("fitted %s", "svm")
	logger.Error("failed")

	assert.Equal(t, "[Trainer] fitted svm\n[ERROR][Trainer] failed\n", buf.String())
	assert.True(t, logger.Enabled(LevelWarn))
	assert.False(t, logger.Enabled(LevelDebug))
}
