package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStore keeps logos in process memory. Used in development when no
// MinIO server is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (m *MemoryStore) Put(_ context.Context, userID uint, contentType string, r io.Reader, size int64) (string, error) {
	if err := CheckLogo(contentType, size); err != nil {
		return "", err
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxLogoSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxLogoSize {
		return "", ErrTooLarge
	}
	key := LogoKey(userID, contentType)
	m.mu.Lock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	m.mu.Unlock()
	return key, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, "", ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.contentType, nil
}
