package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dtsgen/dtsgen"
	"github.com/dtsgen/dtsgen/dtserrors"
	"go.yaml.in/yaml/v4"
)

const (
	// MaxCachedDocuments is the maximum number of external documents to cache.
	// This prevents memory exhaustion from documents with many external references.
	MaxCachedDocuments = 100

	// MaxFileSize is the maximum size (in bytes) allowed for external documents.
	// Set to 10MB which should be sufficient for most schema documents.
	MaxFileSize = 10 * 1024 * 1024 // 10MB
)

// Loader supplies the raw parsed tree of an external document. The resolver
// never performs I/O itself; every fetch goes through a Loader.
type Loader interface {
	// Load returns the parsed content of the document at location.
	Load(ctx context.Context, location string) (any, error)
}

// HTTPFetcher is a function type for fetching content from HTTP/HTTPS URLs.
// Returns the response body, content-type header, and any error.
type HTTPFetcher func(ctx context.Context, url string) ([]byte, string, error)

// cacheEntry stores a cached document with its fetch timestamp for TTL-based
// expiration.
type cacheEntry struct {
	doc       any
	fetchTime time.Time
}

// FileLoader loads schema documents from the local filesystem, rooted at a
// base directory. Loaded documents are cached permanently for the loader's
// lifetime.
type FileLoader struct {
	// BaseDir is the directory relative paths resolve against. Paths
	// escaping it are rejected.
	BaseDir string
	// MaxFileSize overrides the default file size limit when positive.
	MaxFileSize int64

	documents map[string]*cacheEntry
}

// NewFileLoader creates a FileLoader rooted at baseDir.
func NewFileLoader(baseDir string) *FileLoader {
	return &FileLoader{
		BaseDir:   baseDir,
		documents: make(map[string]*cacheEntry),
	}
}

// Load implements Loader.
func (l *FileLoader) Load(_ context.Context, location string) (any, error) {
	filePath := location
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Clean(filepath.Join(l.BaseDir, filePath))
	}

	// Reject paths escaping the base directory. filepath.Rel handles all
	// cases including different volumes on Windows.
	absBase, err := filepath.Abs(l.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file path: %w", err)
	}
	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return nil, &dtserrors.ResolutionError{
			Ref:     location,
			Message: "path escapes the base directory",
		}
	}

	if l.documents == nil {
		l.documents = make(map[string]*cacheEntry)
	}
	if entry, ok := l.documents[filePath]; ok {
		return entry.doc, nil
	}
	if len(l.documents) >= MaxCachedDocuments {
		return nil, &dtserrors.ResourceLimitError{
			ResourceType: "cached_documents",
			Limit:        MaxCachedDocuments,
			Actual:       int64(len(l.documents)),
			Message:      "too many external documents",
		}
	}

	maxSize := l.MaxFileSize
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read external file %s: %w", filePath, err)
	}
	if int64(len(data)) > maxSize {
		return nil, &dtserrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        maxSize,
			Actual:       int64(len(data)),
			Message:      filePath,
		}
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &dtserrors.ParseError{
			Source:  filePath,
			Message: "failed to parse external file",
			Cause:   err,
		}
	}

	// Files don't expire; zero time marks a permanent entry.
	l.documents[filePath] = &cacheEntry{doc: doc}
	return doc, nil
}

// HTTPLoader loads schema documents over HTTP/HTTPS with TTL-based caching.
type HTTPLoader struct {
	// Fetch retrieves URL content. If nil, a default fetcher with a
	// 30-second timeout and the dtsgen User-Agent is used.
	Fetch HTTPFetcher
	// CacheTTL is the time-to-live for cached documents.
	// Zero caches forever; a negative duration disables caching entirely.
	CacheTTL time.Duration

	documents map[string]*cacheEntry
}

// NewHTTPLoader creates an HTTPLoader with the default fetcher.
func NewHTTPLoader() *HTTPLoader {
	return &HTTPLoader{
		Fetch:     DefaultHTTPFetcher(nil),
		documents: make(map[string]*cacheEntry),
	}
}

// DefaultHTTPFetcher returns an HTTPFetcher backed by the given client,
// or one with a 30-second timeout when client is nil.
func DefaultHTTPFetcher(client *http.Client) HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return func(ctx context.Context, url string) ([]byte, string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, "", err
		}
		req.Header.Set("User-Agent", dtsgen.UserAgent())
		resp, err := client.Do(req)
		if err != nil {
			return nil, "", err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("unexpected status %s fetching %s", resp.Status, url)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, MaxFileSize+1))
		if err != nil {
			return nil, "", err
		}
		return body, resp.Header.Get("Content-Type"), nil
	}
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context, location string) (any, error) {
	if l.Fetch == nil {
		return nil, &dtserrors.ConfigError{
			Option:  "Fetch",
			Message: "HTTP references require an HTTP fetcher to be configured",
		}
	}
	if l.documents == nil {
		l.documents = make(map[string]*cacheEntry)
	}

	entry, ok := l.documents[location]
	cacheValid := ok && (l.CacheTTL == 0 || time.Since(entry.fetchTime) < l.CacheTTL)
	if l.CacheTTL < 0 {
		cacheValid = false
	}
	if cacheValid {
		return entry.doc, nil
	}

	if len(l.documents) >= MaxCachedDocuments {
		return nil, &dtserrors.ResourceLimitError{
			ResourceType: "cached_documents",
			Limit:        MaxCachedDocuments,
			Actual:       int64(len(l.documents)),
			Message:      "too many external documents",
		}
	}

	data, _, err := l.Fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", location, err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, &dtserrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        MaxFileSize,
			Actual:       int64(len(data)),
			Message:      location,
		}
	}

	// The YAML parser handles both YAML and JSON content.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &dtserrors.ParseError{
			Source:  location,
			Message: "failed to parse fetched document",
			Cause:   err,
		}
	}

	if l.CacheTTL >= 0 {
		l.documents[location] = &cacheEntry{doc: doc, fetchTime: time.Now()}
	}
	return doc, nil
}

// MultiLoader dispatches between an HTTP loader and a file loader based on
// the location scheme.
type MultiLoader struct {
	HTTP Loader
	File Loader
}

// NewMultiLoader creates the standard loader stack: HTTP for http/https
// locations, files rooted at baseDir for everything else.
func NewMultiLoader(baseDir string) *MultiLoader {
	return &MultiLoader{
		HTTP: NewHTTPLoader(),
		File: NewFileLoader(baseDir),
	}
}

// Load implements Loader.
func (l *MultiLoader) Load(ctx context.Context, location string) (any, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if l.HTTP == nil {
			return nil, &dtserrors.ConfigError{
				Option:  "HTTP",
				Message: "no HTTP loader configured",
			}
		}
		return l.HTTP.Load(ctx, location)
	}
	if l.File == nil {
		return nil, &dtserrors.ConfigError{
			Option:  "File",
			Message: "no file loader configured",
		}
	}
	return l.File.Load(ctx, location)
}
