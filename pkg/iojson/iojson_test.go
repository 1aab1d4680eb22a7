package iojson

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLine(&buf, map[string]any{"id": "t1", "completed": false}))
	require.NoError(t, WriteLine(&buf, map[string]any{"id": "t2"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"id":"t1","completed":false}`, lines[0])
}

func TestMarshalError(t *testing.T) {
	out := MarshalError("list not found", map[string]any{"id": "L9"})

	var e Error
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.Equal(t, "list not found", e.Message)
	assert.Equal(t, "L9", e.Data["id"])
}

func TestMarshalError_Unmarshalable(t *testing.T) {
	out := MarshalError("bad", map[string]any{"ch": make(chan int)})
	assert.Contains(t, out, "json_error")
	assert.True(t, json.Valid([]byte(out)))
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteError(&buf, "todo not found", nil))

	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.JSONEq(t, `{"message":"todo not found"}`, strings.TrimSpace(buf.String()))
}

func TestFileReader_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"a"}]`), 0o644))

	fr := &FileReader[[]map[string]string]{fileFlagValue: path}
	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, "a", got[0]["title"])
}

func TestFileReader_FromReader(t *testing.T) {
	fr := &FileReader[map[string]int]{stdin: strings.NewReader(`{"n": 3}`)}
	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, 3, got["n"])
}

func TestFileReader_BadJSON(t *testing.T) {
	fr := &FileReader[map[string]int]{stdin: strings.NewReader(`{`)}
	_, err := fr.Read()
	assert.ErrorContains(t, err, "decode JSON")
}
