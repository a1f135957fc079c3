// Package session — хранилище активных сессий подачи объявлений.
// Живёт в памяти процесса: после рестарта пользователь просто начинает
// заново. Каждая сессия под своим мьютексом, так что двойной тап по
// кнопке не даст гонку read-modify-write на одном черновике.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/carbazar/ads-bot/internal/flow"
)

// gone выставляется только под entry.mu: Do мог взять указатель на
// сессию до того, как её удалили из карты.
type entry struct {
	mu      sync.Mutex
	draft   *flow.Draft
	touched time.Time
	gone    bool
}

func (e *entry) kill() {
	e.mu.Lock()
	e.gone = true
	e.mu.Unlock()
}

type Store struct {
	mu    sync.Mutex
	items map[int64]*entry
	ttl   time.Duration
	now   func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		items: make(map[int64]*entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Start создаёт (или перезаписывает) сессию пользователя.
func (s *Store) Start(userID int64, d *flow.Draft) {
	s.mu.Lock()
	old := s.items[userID]
	s.items[userID] = &entry{draft: d, touched: s.now()}
	s.mu.Unlock()
	if old != nil {
		old.kill()
	}
}

// Do выполняет fn под замком сессии. fn возвращает false, если сессия
// закончена (сохранили или отменили) — тогда она удаляется. Возврат
// false у самого Do означает, что активной сессии нет.
func (s *Store) Do(userID int64, fn func(d *flow.Draft) bool) bool {
	s.mu.Lock()
	e, ok := s.items[userID]
	if ok {
		e.touched = s.now()
	}
	s.mu.Unlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		// успели удалить, пока ждали замок
		return false
	}
	if !fn(e.draft) {
		e.gone = true
		s.mu.Lock()
		if cur, ok := s.items[userID]; ok && cur == e {
			delete(s.items, userID)
		}
		s.mu.Unlock()
	}
	return true
}

// End снимает сессию; false — снимать было нечего.
func (s *Store) End(userID int64) bool {
	s.mu.Lock()
	e := s.items[userID]
	delete(s.items, userID)
	s.mu.Unlock()
	if e == nil {
		return false
	}
	e.kill()
	return true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep удаляет сессии, к которым не прикасались дольше TTL.
// Возвращает число выброшенных.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*entry
	for id, e := range s.items {
		if e.touched.Before(cutoff) {
			expired = append(expired, e)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		e.kill()
	}
	return len(expired)
}

// Run — фоновая чистка раз в interval до отмены контекста.
func (s *Store) Run(ctx context.Context, interval time.Duration, onSweep func(expired int)) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
