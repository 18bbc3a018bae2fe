package objstore

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store for tests.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) UploadFile(ctx context.Context, key, localPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *Memory) UploadJSON(ctx context.Context, key string, records []map[string]string) error {
	body, err := EncodeRecords(records)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = body
	return nil
}

func (m *Memory) HasPrefix(ctx context.Context, prefix string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Move(ctx context.Context, srcKey, dstKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[srcKey]
	if !ok {
		return fmt.Errorf("no such object %s", srcKey)
	}
	m.objects[dstKey] = data
	delete(m.objects, srcKey)
	return nil
}

func (m *Memory) MovePrefix(ctx context.Context, srcPrefix, dstPrefix string) (int, error) {
	keys, err := m.List(ctx, srcPrefix)
	if err != nil {
		return 0, err
	}
	for i, key := range keys {
		if err := m.Move(ctx, key, dstPrefix+strings.TrimPrefix(key, srcPrefix)); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}

func (m *Memory) URI(key string) string {
	return "s3://test-bucket/" + key
}

// Object returns a stored object's bytes for assertions.
func (m *Memory) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}
