package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	require.NoError(t, CreateLogsDirectory(dir))
	require.NoError(t, CreateFileLoggers())
	CreateConsoleLoggers(&stdout, &stderr)
	t.Cleanup(func() { CreateConsoleLoggers(nil, nil) })

	For("captcha").Errorf("could not kick %s", "42")
	WriteInfo("hello")

	assert.Contains(t, stderr.String(), "[captcha] could not kick 42")
	assert.Contains(t, stdout.String(), "hello")

	summary, err := CheckErrorLogs(dir)
	require.NoError(t, err)
	assert.Contains(t, summary, "Found 1 error(s)")
	assert.Contains(t, summary, "[captcha] could not kick 42")

	require.NoError(t, CloseLogFiles())
}

func TestCheckErrorLogsMissingDirectory(t *testing.T) {
	_, err := CheckErrorLogs(t.TempDir() + "/missing")
	assert.Error(t, err)
}

func TestCreateNewLogFileWithoutDirectory(t *testing.T) {
	prev := logDir
	logDir = ""
	t.Cleanup(func() { logDir = prev })

	_, err := CreateNewLogFile("events")
	assert.Error(t, err)
}
