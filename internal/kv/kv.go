// Package kv is the key-value persistence used for visitor preferences and
// image overrides. Callers only see Get/Set; the medium is injected.
package kv

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrQuotaExceeded is returned by Set when the write would exceed the store quota.
// The previous value, if any, is kept.
var ErrQuotaExceeded = errors.New("kv: storage quota exceeded")

// Store is a string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys lists keys with the given prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Memory is an in-process Store with an optional byte quota.
type Memory struct {
	mu    sync.RWMutex
	data  map[string]string
	used  int64
	quota int64
}

// NewMemory returns an empty Memory store. quota <= 0 means unlimited.
func NewMemory(quota int64) *Memory {
	return &Memory{data: make(map[string]string), quota: quota}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.used + entrySize(key, value)
	if old, ok := m.data[key]; ok {
		next -= entrySize(key, old)
	}
	if m.quota > 0 && next > m.quota {
		return ErrQuotaExceeded
	}
	m.data[key] = value
	m.used = next
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.data[key]; ok {
		m.used -= entrySize(key, old)
		delete(m.data, key)
	}
	return nil
}

func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Used reports the bytes currently accounted against the quota.
func (m *Memory) Used() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used
}

func entrySize(key, value string) int64 { return int64(len(key) + len(value)) }

// Namespace scopes every key of s under prefix.
func Namespace(s Store, prefix string) Store {
	return &namespaced{next: s, prefix: prefix}
}

type namespaced struct {
	next   Store
	prefix string
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.next.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.next.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.next.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := n.next.Keys(ctx, n.prefix+prefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, n.prefix)
	}
	return keys, nil
}
