package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

type memoryObject struct {
	data []byte
	info Info
}

// Memory keeps blobs in process memory.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memoryObject)}
}

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Info{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[k]; exists {
		return Info{}, fmt.Errorf("blob %s already exists", k)
	}
	info := Info{
		Key:          k,
		Size:         int64(len(data)),
		ContentType:  contentType,
		LastModified: time.Now().UTC(),
		URL:          "memory://" + k,
	}
	m.objects[k] = memoryObject{data: data, info: info}
	return info, nil
}

func (m *Memory) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return Info{}, nil, ErrNotFound
	}
	return obj.info, io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}
