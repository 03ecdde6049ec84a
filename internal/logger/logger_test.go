package logger

import (
	"bytes"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoggerWritesPlainTextWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Configure(false, true)
	defer SetOutput(os.Stdout)

	Error("could not reach %s", "store")
	Debug("hidden")

	assert.Contains(t, buf.String(), "✗ could not reach store")
	assert.NotContains(t, buf.String(), "hidden")
	assert.NotContains(t, buf.String(), "\033[")
}

func TestDebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Configure(true, true)
	defer func() {
		Configure(false, true)
		SetOutput(os.Stdout)
	}()

	Debug("user %s", "u1")

	assert.Contains(t, buf.String(), "DEBUG: user u1")
}

func TestRequest(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Configure(false, true)
	defer SetOutput(os.Stdout)

	Request(http.MethodPost, "/user/u1/points", http.StatusNotFound, 1500*time.Microsecond)

	line := buf.String()
	assert.Contains(t, line, "POST")
	assert.Contains(t, line, "/user/u1/points")
	assert.Contains(t, line, "[404]")
	assert.Contains(t, line, "(1ms)")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250µs", formatDuration(250*time.Microsecond))
	assert.Equal(t, "12ms", formatDuration(12*time.Millisecond))
	assert.Equal(t, "1.50s", formatDuration(1500*time.Millisecond))
}
