package storage

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// MemoryObject is a document held by MemoryObjectStorage
type MemoryObject struct {
	Data        []byte
	ContentType string
	UploadedAt  time.Time
}

// MemoryObjectStorage keeps objects in process. It is used when object
// storage is disabled and in tests; download URLs point at BaseURL.
type MemoryObjectStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]MemoryObject
}

// NewMemoryObjectStorage creates an empty in-memory store
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		BaseURL: "http://localhost:8080/files",
		objects: make(map[string]MemoryObject),
	}
}

var _ ObjectStorage = (*MemoryObjectStorage)(nil)

// Upload stores a copy of data under key
func (s *MemoryObjectStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = MemoryObject{
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
		UploadedAt:  time.Now(),
	}
	return nil
}

// GenerateDownloadURL builds a link under BaseURL carrying the expiry
func (s *MemoryObjectStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrKeyRequired
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}
	expiresAt := time.Now().Add(expiresIn)
	link := s.BaseURL + "/" + key + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
	return link, expiresAt, nil
}

// DeleteObject removes key; deleting a missing key succeeds
func (s *MemoryObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// ObjectExists reports whether key was uploaded
func (s *MemoryObjectStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrKeyRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Object returns the stored object for key
func (s *MemoryObjectStorage) Object(key string) (MemoryObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Len returns how many objects are stored
func (s *MemoryObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
