package storage

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	appgrid "github.com/catalogsync/backend/internal/application/grid"
)

// ErrObjectNotFound is returned for a key the memory store never received
var ErrObjectNotFound = errors.New("export not found")

// Object is a stored export
type Object struct {
	Data        []byte
	ContentType string
	StoredAt    time.Time
}

// MemoryExportStorage keeps exports in process memory for development.
// Its download links point at the server's own export route.
type MemoryExportStorage struct {
	// BaseURL is prefixed to the key in download links
	BaseURL string

	mu      sync.RWMutex
	objects map[string]Object
	now     func() time.Time
}

// NewMemoryExportStorage creates an empty store serving links under baseURL
func NewMemoryExportStorage(baseURL string) *MemoryExportStorage {
	return &MemoryExportStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]Object),
		now:     time.Now,
	}
}

var _ appgrid.ExportStorage = (*MemoryExportStorage)(nil)

// Upload stores a copy of data
func (s *MemoryExportStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = Object{Data: slices.Clone(data), ContentType: contentType, StoredAt: s.now()}
	return nil
}

// GenerateDownloadURL returns an unsigned link; expiry is advisory only
func (s *MemoryExportStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errKeyRequired
	}
	s.mu.RLock()
	_, ok := s.objects[storageKey]
	s.mu.RUnlock()
	if !ok {
		return "", time.Time{}, ErrObjectNotFound
	}

	expiresAt := s.now().Add(expiresIn)
	link := s.BaseURL + "/" + storageKey + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
	return link, expiresAt, nil
}

// Get returns a stored export
func (s *MemoryExportStorage) Get(storageKey string) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	if !ok {
		return Object{}, ErrObjectNotFound
	}
	return obj, nil
}
