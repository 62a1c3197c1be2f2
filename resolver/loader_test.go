package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtsgen/dtsgen/dtserrors"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileLoader(t *testing.T) {
	t.Run("loads YAML and JSON files", func(t *testing.T) {
		dir := t.TempDir()
		writeTestFile(t, dir, "schema.yaml", "type: object\nproperties:\n  name:\n    type: string\n")
		writeTestFile(t, dir, "schema.json", `{"type": "string"}`)

		l := NewFileLoader(dir)

		yamlDoc, err := l.Load(context.Background(), "schema.yaml")
		require.NoError(t, err)
		assert.Equal(t, "object", yamlDoc.(map[string]any)["type"])

		jsonDoc, err := l.Load(context.Background(), "schema.json")
		require.NoError(t, err)
		assert.Equal(t, "string", jsonDoc.(map[string]any)["type"])
	})

	t.Run("caches loaded documents", func(t *testing.T) {
		dir := t.TempDir()
		path := writeTestFile(t, dir, "schema.yaml", "type: object\n")

		l := NewFileLoader(dir)
		first, err := l.Load(context.Background(), "schema.yaml")
		require.NoError(t, err)

		// A rewrite after caching must not be visible.
		require.NoError(t, os.WriteFile(path, []byte("type: string\n"), 0644))
		second, err := l.Load(context.Background(), "schema.yaml")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects paths escaping the base directory", func(t *testing.T) {
		dir := t.TempDir()
		l := NewFileLoader(dir)

		_, err := l.Load(context.Background(), "../../../etc/passwd")
		require.Error(t, err)
		assert.True(t, errors.Is(err, dtserrors.ErrResolution))
		assert.Contains(t, err.Error(), "escapes the base directory")
	})

	t.Run("enforces the file size limit", func(t *testing.T) {
		dir := t.TempDir()
		writeTestFile(t, dir, "big.yaml", "description: "+string(make([]byte, 64))+"\n")

		l := NewFileLoader(dir)
		l.MaxFileSize = 16
		_, err := l.Load(context.Background(), "big.yaml")
		require.Error(t, err)
		assert.True(t, errors.Is(err, dtserrors.ErrResourceLimit))
	})

	t.Run("missing file errors", func(t *testing.T) {
		l := NewFileLoader(t.TempDir())
		_, err := l.Load(context.Background(), "nope.yaml")
		assert.Error(t, err)
	})

	t.Run("malformed content is a parse error", func(t *testing.T) {
		dir := t.TempDir()
		writeTestFile(t, dir, "bad.yaml", "{unclosed: [\n")

		l := NewFileLoader(dir)
		_, err := l.Load(context.Background(), "bad.yaml")
		require.Error(t, err)
		assert.True(t, errors.Is(err, dtserrors.ErrParse))
	})
}

func TestHTTPLoader(t *testing.T) {
	stubFetcher := func(calls *int, body string) HTTPFetcher {
		return func(_ context.Context, _ string) ([]byte, string, error) {
			*calls++
			return []byte(body), "application/json", nil
		}
	}

	t.Run("fetches and parses", func(t *testing.T) {
		calls := 0
		l := &HTTPLoader{Fetch: stubFetcher(&calls, `{"type": "object"}`)}

		doc, err := l.Load(context.Background(), "https://example.com/s.json")
		require.NoError(t, err)
		assert.Equal(t, "object", doc.(map[string]any)["type"])
		assert.Equal(t, 1, calls)
	})

	t.Run("zero TTL caches forever", func(t *testing.T) {
		calls := 0
		l := &HTTPLoader{Fetch: stubFetcher(&calls, `{}`)}

		_, err := l.Load(context.Background(), "https://example.com/s.json")
		require.NoError(t, err)
		_, err = l.Load(context.Background(), "https://example.com/s.json")
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("expired entries refetch", func(t *testing.T) {
		calls := 0
		l := &HTTPLoader{Fetch: stubFetcher(&calls, `{}`), CacheTTL: time.Nanosecond}

		_, err := l.Load(context.Background(), "https://example.com/s.json")
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
		_, err = l.Load(context.Background(), "https://example.com/s.json")
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("negative TTL disables caching", func(t *testing.T) {
		calls := 0
		l := &HTTPLoader{Fetch: stubFetcher(&calls, `{}`), CacheTTL: -1}

		_, err := l.Load(context.Background(), "https://example.com/s.json")
		require.NoError(t, err)
		_, err = l.Load(context.Background(), "https://example.com/s.json")
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("nil fetcher is a config error", func(t *testing.T) {
		l := &HTTPLoader{}
		_, err := l.Load(context.Background(), "https://example.com/s.json")
		require.Error(t, err)
		assert.True(t, errors.Is(err, dtserrors.ErrConfig))
	})

	t.Run("oversized response is rejected", func(t *testing.T) {
		l := &HTTPLoader{Fetch: func(_ context.Context, _ string) ([]byte, string, error) {
			return make([]byte, MaxFileSize+1), "", nil
		}}
		_, err := l.Load(context.Background(), "https://example.com/big.json")
		require.Error(t, err)
		assert.True(t, errors.Is(err, dtserrors.ErrResourceLimit))
	})
}

func TestMultiLoader(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "local.yaml", "type: object\n")

	httpCalls := 0
	l := &MultiLoader{
		HTTP: &HTTPLoader{Fetch: func(_ context.Context, _ string) ([]byte, string, error) {
			httpCalls++
			return []byte(`{"type": "string"}`), "", nil
		}},
		File: NewFileLoader(dir),
	}

	t.Run("dispatches URLs to the HTTP loader", func(t *testing.T) {
		doc, err := l.Load(context.Background(), "https://example.com/s.json")
		require.NoError(t, err)
		assert.Equal(t, "string", doc.(map[string]any)["type"])
		assert.Equal(t, 1, httpCalls)
	})

	t.Run("dispatches paths to the file loader", func(t *testing.T) {
		doc, err := l.Load(context.Background(), "local.yaml")
		require.NoError(t, err)
		assert.Equal(t, "object", doc.(map[string]any)["type"])
	})

	t.Run("missing HTTP loader is a config error", func(t *testing.T) {
		bare := &MultiLoader{File: NewFileLoader(dir)}
		_, err := bare.Load(context.Background(), "https://example.com/s.json")
		require.Error(t, err)
		assert.True(t, errors.Is(err, dtserrors.ErrConfig))
	})
}
