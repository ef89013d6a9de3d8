package tokens

import (
	"context"
	"sync"
	"time"
)

// Memory — хранилище в памяти процесса. Живёт, пока жив процесс.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[name]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if value == "" {
		delete(m.data, name)
		return nil
	}

	m.data[name] = value
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.data)
	return nil
}

// MemoryProvider раздаёт по одному Memory на сессию.
//
// Сессия заводится при первой записи: чтение из неизвестной сессии ничего
// не создаёт. Сессия, к которой не обращались дольше ttl, удаляется
// при очередном обращении к провайдеру. ttl <= 0 отключает истечение.
type MemoryProvider struct {
	mu        sync.Mutex
	sessions  map[string]*memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type memoryEntry struct {
	store    *Memory
	lastUsed time.Time
}

// sweepInterval — максимальный интервал между полными проходами по сессиям.
const sweepInterval = time.Minute

// MemoryOption настраивает MemoryProvider.
type MemoryOption func(*MemoryProvider)

// WithMemoryClock подменяет источник текущего времени (для тестов).
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(p *MemoryProvider) { p.now = now }
}

func NewMemoryProvider(ttl time.Duration, opts ...MemoryOption) *MemoryProvider {
	p := &MemoryProvider{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.lastSweep = p.now()
	return p
}

func (p *MemoryProvider) ForSession(id string) Store {
	p.mu.Lock()
	p.sweepLocked(p.now())
	p.mu.Unlock()

	return &memorySession{p: p, id: id}
}

// Len возвращает число живых сессий.
func (p *MemoryProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sweepLocked(p.now())
	return len(p.sessions)
}

// lookup возвращает хранилище сессии и продлевает её.
// При create=false отсутствующая или истёкшая сессия даёт nil.
func (p *MemoryProvider) lookup(id string, create bool) *Memory {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	e, ok := p.sessions[id]
	if ok && p.expired(e, now) {
		delete(p.sessions, id)
		ok = false
	}

	if !ok {
		if !create {
			return nil
		}
		e = &memoryEntry{store: NewMemory()}
		p.sessions[id] = e
	}

	e.lastUsed = now
	return e.store
}

func (p *MemoryProvider) drop(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.sessions, id)
}

func (p *MemoryProvider) expired(e *memoryEntry, now time.Time) bool {
	return p.ttl > 0 && now.Sub(e.lastUsed) > p.ttl
}

func (p *MemoryProvider) sweepLocked(now time.Time) {
	if p.ttl <= 0 || now.Sub(p.lastSweep) < min(p.ttl, sweepInterval) {
		return
	}

	for id, e := range p.sessions {
		if p.expired(e, now) {
			delete(p.sessions, id)
		}
	}

	p.lastSweep = now
}

// memorySession — Store одной сессии MemoryProvider.
type memorySession struct {
	p  *MemoryProvider
	id string
}

func (s *memorySession) Get(ctx context.Context, name string) (string, bool, error) {
	m := s.p.lookup(s.id, false)
	if m == nil {
		return "", false, nil
	}

	return m.Get(ctx, name)
}

func (s *memorySession) Set(ctx context.Context, name, value string) error {
	m := s.p.lookup(s.id, value != "")
	if m == nil {
		return nil
	}

	return m.Set(ctx, name, value)
}

func (s *memorySession) Clear(context.Context) error {
	s.p.drop(s.id)
	return nil
}
