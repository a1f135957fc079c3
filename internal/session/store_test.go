package session

import (
	"sync"
	"testing"
	"time"

	"github.com/carbazar/ads-bot/internal/flow"
)

func TestDoWithoutSession(t *testing.T) {
	s := NewStore(time.Hour)
	if s.Do(1, func(d *flow.Draft) bool { return true }) {
		t.Fatal("Do must report missing session")
	}
}

func TestStartDoEnd(t *testing.T) {
	s := NewStore(time.Hour)
	s.Start(7, flow.NewDraft(7, false, ""))

	ok := s.Do(7, func(d *flow.Draft) bool {
		if d.UserID != 7 {
			t.Fatalf("draft user=%d", d.UserID)
		}
		return true
	})
	if !ok {
		t.Fatal("session must exist")
	}

	if !s.End(7) {
		t.Fatal("End must report removal")
	}
	if s.End(7) {
		t.Fatal("second End must be a no-op")
	}
	if s.Len() != 0 {
		t.Fatalf("len=%d", s.Len())
	}
}

// fn, вернувший false, завершает сессию.
func TestDoFinishRemoves(t *testing.T) {
	s := NewStore(time.Hour)
	s.Start(1, flow.NewDraft(1, false, ""))

	s.Do(1, func(d *flow.Draft) bool { return false })
	if s.Len() != 0 {
		t.Fatal("finished session must be removed")
	}
	if s.Do(1, func(d *flow.Draft) bool { return true }) {
		t.Fatal("removed session must not be reachable")
	}
}

// Конкурентные апдейты одного пользователя сериализуются замком сессии:
// итоговый счётчик без потерь.
func TestDoSerializesPerKey(t *testing.T) {
	s := NewStore(time.Hour)
	s.Start(1, flow.NewDraft(1, false, ""))

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(1, func(d *flow.Draft) bool {
				d.Price++ // read-modify-write
				return true
			})
		}()
	}
	wg.Wait()

	var got int64
	s.Do(1, func(d *flow.Draft) bool {
		got = d.Price
		return true
	})
	if got != n {
		t.Fatalf("price=%d, want %d", got, n)
	}
}

func TestSweepExpiresIdle(t *testing.T) {
	s := NewStore(time.Hour)
	now := time.Unix(1000000, 0)
	s.now = func() time.Time { return now }

	s.Start(1, flow.NewDraft(1, false, ""))
	s.Start(2, flow.NewDraft(2, false, ""))

	// пользователь 2 активен спустя 59 минут, пользователь 1 молчит
	now = now.Add(59 * time.Minute)
	s.Do(2, func(d *flow.Draft) bool { return true })

	now = now.Add(2 * time.Minute)
	if n := s.Sweep(); n != 1 {
		t.Fatalf("expired=%d, want 1", n)
	}
	if s.Do(1, func(d *flow.Draft) bool { return true }) {
		t.Fatal("idle session must be gone")
	}
	if !s.Do(2, func(d *flow.Draft) bool { return true }) {
		t.Fatal("touched session must survive")
	}
}

func TestStartReplacesOldSession(t *testing.T) {
	s := NewStore(time.Hour)
	s.Start(1, flow.NewDraft(1, false, ""))
	s.Do(1, func(d *flow.Draft) bool {
		d.Title = "старый черновик"
		return true
	})

	s.Start(1, flow.NewDraft(1, true, ""))
	s.Do(1, func(d *flow.Draft) bool {
		if d.Title != "" || !d.IsReferral {
			t.Fatalf("draft not replaced: %+v", d)
		}
		return true
	})
	if s.Len() != 1 {
		t.Fatalf("len=%d", s.Len())
	}
}
