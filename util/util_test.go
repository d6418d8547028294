package util

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndAppend(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.txt")
	require.NoError(t, WriteToFile(p, "a", "b"))
	require.NoError(t, AppendToFile(p, "c"))

	bs, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", string(bs))
}

func TestJSONLZstdRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "traces", "run.jsonl.zst")
	w := NewJSONLZstdWriter(p)
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Write(map[string]int{"episode": i}))
	}
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Write(1), ErrWriterClosed)

	got := make([]int, 0)
	err := ReadJSONLZstd(p, func(line []byte) error {
		m := map[string]int{}
		if err := json.Unmarshal(line, &m); err != nil {
			return err
		}
		got = append(got, m["episode"])
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestNewLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger, err := NewLogger(buf, "logfmt", "info")
	require.NoError(t, err)

	require.NoError(t, level.Debug(logger).Log("msg", "hidden"))
	require.NoError(t, level.Info(logger).Log("msg", "shown"))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")

	_, err = NewLogger(buf, "xml", "info")
	assert.Error(t, err)
	_, err = NewLogger(buf, "json", "loud")
	assert.Error(t, err)
}
