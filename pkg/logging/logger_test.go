package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerEchoesToOutput(t *testing.T) {
	logger := NewLogger("test")
	defer logger.Close()

	var buf bytes.Buffer
	logger.SetOutput(&buf)

	logger.Infof("filled %d fields", 4)
	logger.Warnf("no rating control found")

	out := buf.String()
	assert.Contains(t, out, "filled 4 fields")
	assert.Contains(t, out, "no rating control found")
}

func TestLoggersShareRunID(t *testing.T) {
	a := NewLogger("direct")
	b := NewLogger("browser")
	defer a.Close()
	defer b.Close()

	assert.Equal(t, a.RunID(), b.RunID())
	assert.NotEmpty(t, a.RunID())
}

func TestCloseIsIdempotent(t *testing.T) {
	logger := NewLogger("test")
	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}
