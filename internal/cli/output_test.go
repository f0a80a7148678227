package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatterJSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp Response
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatterJSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E101", "compile failed")
	require.NoError(t, err)

	var resp Response
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E101", resp.Error.Code)
	assert.Equal(t, "compile failed", resp.Error.Message)
}

func TestOutputFormatterTextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("all clocks valid")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "all clocks valid")
}

func TestOutputFormatterTextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Error("E003", "no CUE files found")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E003]: no CUE files found")
}

func TestVerboseLogGoesToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("found %d files", 3)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "found 3 files")
}

func TestVerboseLogSilentWhenDisabled(t *testing.T) {
	out := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  out,
		Verbose: false,
	}

	formatter.VerboseLog("should not appear")
	assert.Empty(t, out.String())
}

func TestExitErrorUnwrap(t *testing.T) {
	inner := assert.AnError
	wrapped := WrapExitError(ExitCommandError, "open failed", inner)
	assert.ErrorIs(t, wrapped, inner)
	assert.Contains(t, wrapped.Error(), "open failed")
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}
