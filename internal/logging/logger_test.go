package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerWritesToConfiguredWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf)

	log.Info().Str("name", "Docs").Msg("folder created")

	if !strings.Contains(buf.String(), "folder created") {
		t.Errorf("log output missing message:\n%s", buf.String())
	}
}

func TestSetOutputRedirectsSubsequentEvents(t *testing.T) {
	var first, second bytes.Buffer
	log := NewLogger(&first)

	log.Info().Msg("before redirect")
	log.SetOutput(&second)
	log.Info().Msg("after redirect")

	if strings.Contains(first.String(), "after redirect") {
		t.Errorf("redirected event leaked to the old writer:\n%s", first.String())
	}
	if !strings.Contains(second.String(), "after redirect") {
		t.Errorf("event missing from the new writer:\n%s", second.String())
	}
	if log.Output() != &second {
		t.Error("Output() should return the writer passed to SetOutput")
	}
}
