package broadcast

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/carbazar/ads-bot/internal/domain/ads"
	"github.com/carbazar/ads-bot/internal/domain/users"
)

type sendCall struct {
	chatID int64
	photo  string
	text   string
}

// fakeSender отдаёт заранее назначенные ошибки по получателю;
// ошибка с hits > 0 возвращается только первые hits раз.
type fakeSender struct {
	calls []sendCall
	fail  map[int64]error
	hits  map[int64]int
}

func (f *fakeSender) failErr(chatID int64) error {
	err, ok := f.fail[chatID]
	if !ok {
		return nil
	}
	if n, limited := f.hits[chatID]; limited {
		if n <= 0 {
			return nil
		}
		f.hits[chatID] = n - 1
	}
	return err
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, text string) error {
	if err := f.failErr(chatID); err != nil {
		return err
	}
	f.calls = append(f.calls, sendCall{chatID: chatID, text: text})
	return nil
}

func (f *fakeSender) SendPhoto(_ context.Context, chatID int64, photoRef, caption string) error {
	if err := f.failErr(chatID); err != nil {
		return err
	}
	f.calls = append(f.calls, sendCall{chatID: chatID, photo: photoRef, text: caption})
	return nil
}

func (f *fakeSender) sentTo(chatID int64) int {
	var n int
	for _, c := range f.calls {
		if c.chatID == chatID {
			n++
		}
	}
	return n
}

type fakeUsers struct {
	list    []users.User
	blocked map[int64]bool
}

func (f *fakeUsers) ListRecipients(context.Context) ([]users.User, error) {
	return f.list, nil
}

func (f *fakeUsers) SetBlocked(_ context.Context, id int64, blocked bool) error {
	if f.blocked == nil {
		f.blocked = make(map[int64]bool)
	}
	f.blocked[id] = blocked
	return nil
}

const channelID = int64(-100500)

func testAd(photos ...string) *ads.Ad {
	return &ads.Ad{
		ID: 1, UserID: 42, Title: "Test Car", Description: "Good condition",
		Price: 500000000, Phone: "+989123456789",
		Status: ads.StatusApproved, Photos: photos,
	}
}

func format(a *ads.Ad) string { return a.Title + " / " + a.Description }

func newTestBroadcaster(s Sender, u UserRepo) *Broadcaster {
	b := New(s, u, channelID, format, slog.New(slog.NewTextHandler(io.Discard, nil)))
	b.sleep = func(context.Context, time.Duration) error { return nil }
	return b
}

func TestPublishChannelAndUsers(t *testing.T) {
	s := &fakeSender{}
	u := &fakeUsers{list: []users.User{{ID: 1}, {ID: 42}, {ID: 3}}}
	b := newTestBroadcaster(s, u)

	st := b.Publish(context.Background(), testAd("p1"))
	if !st.ChannelPosted || st.Delivered != 2 || st.Blocked != 0 || st.Skipped != 0 {
		t.Fatalf("stats=%+v", st)
	}
	// канал получает подпись на первом фото
	if s.calls[0].chatID != channelID || s.calls[0].photo != "p1" || s.calls[0].text == "" {
		t.Fatalf("channel call=%+v", s.calls[0])
	}
	// автор (42) исключён из рассылки
	if s.sentTo(42) != 0 {
		t.Fatal("submitter must not receive the fan-out")
	}
	if s.sentTo(1) != 1 || s.sentTo(3) != 1 {
		t.Fatalf("recipients: %+v", s.calls)
	}
}

func TestPublishExtraPhotosCapped(t *testing.T) {
	s := &fakeSender{}
	u := &fakeUsers{}
	b := newTestBroadcaster(s, u)

	b.Publish(context.Background(), testAd("p1", "p2", "p3", "p4", "p5"))
	// подпись + максимум два дополнительных фото
	if got := s.sentTo(channelID); got != 3 {
		t.Fatalf("channel sends=%d, want 3", got)
	}
	if s.calls[1].text != "" || s.calls[2].text != "" {
		t.Fatal("extra photos must be bare")
	}
}

func TestBlockedRecipientMarkedAndSkipped(t *testing.T) {
	s := &fakeSender{fail: map[int64]error{2: ErrBlocked}}
	u := &fakeUsers{list: []users.User{{ID: 1}, {ID: 2}, {ID: 3}}}
	b := newTestBroadcaster(s, u)

	st := b.Publish(context.Background(), testAd())
	if st.Delivered != 2 || st.Blocked != 1 {
		t.Fatalf("stats=%+v", st)
	}
	if !u.blocked[2] {
		t.Fatal("user 2 must be flagged blocked")
	}
	if s.sentTo(1) != 1 || s.sentTo(3) != 1 {
		t.Fatal("other recipients must still be delivered")
	}
}

func TestRateLimitRetriedThenDelivered(t *testing.T) {
	rl := &RateLimitError{RetryAfter: 2 * time.Second}
	s := &fakeSender{
		fail: map[int64]error{1: rl},
		hits: map[int64]int{1: 2}, // две ошибки, третья попытка проходит
	}
	u := &fakeUsers{list: []users.User{{ID: 1}}}
	b := newTestBroadcaster(s, u)

	var slept []time.Duration
	b.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	st := b.Publish(context.Background(), testAd())
	if st.Delivered != 1 || st.Skipped != 0 {
		t.Fatalf("stats=%+v", st)
	}
	// пауза ровно та, что назвал сервер, по разу на каждую ошибку
	if len(slept) != 2 || slept[0] != 2*time.Second {
		t.Fatalf("slept=%v", slept)
	}
}

func TestRateLimitExhaustedSkips(t *testing.T) {
	s := &fakeSender{fail: map[int64]error{1: &RateLimitError{RetryAfter: time.Second}}}
	u := &fakeUsers{list: []users.User{{ID: 1}, {ID: 2}}}
	b := newTestBroadcaster(s, u)

	st := b.Publish(context.Background(), testAd())
	if st.Skipped != 1 || st.Delivered != 1 {
		t.Fatalf("stats=%+v", st)
	}
	if u.blocked[1] {
		t.Fatal("rate-limited user must not be flagged blocked")
	}
}

// Пауза между попытками — только server-specified интервал через b.sleep;
// собственный бэкофф retry.Do не должен добавлять секунды сверху.
func TestRateLimitWaitsOnlyServerInterval(t *testing.T) {
	s := &fakeSender{fail: map[int64]error{1: &RateLimitError{RetryAfter: time.Second}}}
	u := &fakeUsers{list: []users.User{{ID: 1}}}
	b := newTestBroadcaster(s, u)

	start := time.Now()
	st := b.Publish(context.Background(), testAd())
	if st.Skipped != 1 {
		t.Fatalf("stats=%+v", st)
	}
	// sleep застаблен, так что любая заметная задержка — лишний бэкофф
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("publish took %s, retry backoff is waiting on its own", elapsed)
	}
}

func TestChannelFailureDoesNotAbortFanOut(t *testing.T) {
	s := &fakeSender{fail: map[int64]error{channelID: errors.New("chat not found")}}
	u := &fakeUsers{list: []users.User{{ID: 1}}}
	b := newTestBroadcaster(s, u)

	st := b.Publish(context.Background(), testAd())
	if st.ChannelPosted {
		t.Fatal("channel post failed")
	}
	if st.Delivered != 1 {
		t.Fatalf("stats=%+v", st)
	}
}
