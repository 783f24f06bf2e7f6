// Package ratelimit bounds how many requests a source may make per window.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter decides whether a request from key may proceed.
type Limiter interface {
	Allow(key string) bool
}

type window struct {
	start time.Time
	count int
}

// Memory is a fixed-window limiter over a bounded in-process map.
// State is lost on restart.
type Memory struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	capacity int
	entries  map[string]*window
	now      func() time.Time
}

// NewMemory allows max requests per key per window, tracking at most capacity keys.
func NewMemory(max int, win time.Duration, capacity int) *Memory {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Memory{
		max:      max,
		window:   win,
		capacity: capacity,
		entries:  make(map[string]*window),
		now:      time.Now,
	}
}

// WithClock replaces the time source (tests).
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Allow(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.entries[key]
	if ok && now.Sub(w.start) >= m.window {
		delete(m.entries, key)
		ok = false
	}
	if !ok {
		if len(m.entries) >= m.capacity {
			m.evict(now)
		}
		m.entries[key] = &window{start: now, count: 1}
		return true
	}
	if w.count >= m.max {
		return false
	}
	w.count++
	return true
}

// Len returns the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// evict drops expired windows; if none expired, drops the oldest one.
func (m *Memory) evict(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for k, w := range m.entries {
		if now.Sub(w.start) >= m.window {
			delete(m.entries, k)
			continue
		}
		if oldestKey == "" || w.start.Before(oldest) {
			oldestKey, oldest = k, w.start
		}
	}
	if len(m.entries) >= m.capacity && oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}
