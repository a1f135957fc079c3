package moderation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/carbazar/ads-bot/internal/broadcast"
	"github.com/carbazar/ads-bot/internal/domain/ads"
)

type fakeAdRepo struct {
	items map[int64]*ads.Ad
}

func newFakeAdRepo(items ...*ads.Ad) *fakeAdRepo {
	m := make(map[int64]*ads.Ad)
	for _, a := range items {
		m[a.ID] = a
	}
	return &fakeAdRepo{items: m}
}

func (f *fakeAdRepo) GetByID(_ context.Context, id int64) (*ads.Ad, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, ads.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAdRepo) sorted(st ads.Status) []ads.Ad {
	var out []ads.Ad
	for _, a := range f.items {
		if a.Status == st {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (f *fakeAdRepo) ListByStatus(_ context.Context, st ads.Status, limit, offset int) ([]ads.Ad, error) {
	all := f.sorted(st)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeAdRepo) CountByStatus(_ context.Context, st ads.Status) (int, error) {
	return len(f.sorted(st)), nil
}

func (f *fakeAdRepo) UpdateStatus(_ context.Context, id int64, to ads.Status) error {
	a, ok := f.items[id]
	if !ok {
		return ads.ErrNotFound
	}
	if a.Status != ads.StatusPending {
		return ads.ErrAlreadyDecided
	}
	a.Status = to
	return nil
}

type fakeAdmins struct{ set map[int64]bool }

func (f *fakeAdmins) IsAdmin(_ context.Context, id int64) (bool, error) {
	return f.set[id], nil
}

type fakeNotifier struct {
	approved []int64
	rejected []int64
}

func (f *fakeNotifier) NotifySubmitter(_ context.Context, ad *ads.Ad, approved bool) {
	if approved {
		f.approved = append(f.approved, ad.ID)
		return
	}
	f.rejected = append(f.rejected, ad.ID)
}

type fakeBroadcaster struct{ published []int64 }

func (f *fakeBroadcaster) Publish(_ context.Context, ad *ads.Ad) broadcast.Stats {
	f.published = append(f.published, ad.ID)
	return broadcast.Stats{ChannelPosted: true, Delivered: 2}
}

func pendingAd(id int64, createdAt time.Time) *ads.Ad {
	return &ads.Ad{
		ID: id, UserID: 100 + id, Title: "Test Car", Description: "Good condition",
		Price: 500000000, Phone: "+989123456789",
		Status: ads.StatusPending, CreatedAt: createdAt,
	}
}

func newService(repo *fakeAdRepo, adm *fakeAdmins, n *fakeNotifier, bc *fakeBroadcaster) *Service {
	return NewService(repo, adm, n, bc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const adminID = int64(10)

func TestDecideApprovePublishesOnce(t *testing.T) {
	repo := newFakeAdRepo(pendingAd(1, time.Now()))
	n := &fakeNotifier{}
	bc := &fakeBroadcaster{}
	svc := newService(repo, &fakeAdmins{set: map[int64]bool{adminID: true}}, n, bc)

	ad, st, err := svc.Decide(context.Background(), adminID, 1, Approve)
	if err != nil {
		t.Fatal(err)
	}
	if ad.Status != ads.StatusApproved {
		t.Fatalf("status=%s", ad.Status)
	}
	if !st.ChannelPosted || st.Delivered != 2 {
		t.Fatalf("stats=%+v", st)
	}
	if len(n.approved) != 1 || n.approved[0] != 1 {
		t.Fatalf("submitter notifications: %+v", n)
	}
	if len(bc.published) != 1 {
		t.Fatalf("published %d times", len(bc.published))
	}

	// повторное решение — явная ошибка и никакой второй рассылки
	_, _, err = svc.Decide(context.Background(), adminID, 1, Approve)
	if !errors.Is(err, ads.ErrAlreadyDecided) {
		t.Fatalf("err=%v, want ErrAlreadyDecided", err)
	}
	if len(bc.published) != 1 || len(n.approved) != 1 {
		t.Fatalf("second decide must be a no-op: published=%d notified=%d",
			len(bc.published), len(n.approved))
	}
}

func TestDecideRejectSkipsBroadcast(t *testing.T) {
	repo := newFakeAdRepo(pendingAd(1, time.Now()))
	n := &fakeNotifier{}
	bc := &fakeBroadcaster{}
	svc := newService(repo, &fakeAdmins{set: map[int64]bool{adminID: true}}, n, bc)

	ad, _, err := svc.Decide(context.Background(), adminID, 1, Reject)
	if err != nil {
		t.Fatal(err)
	}
	if ad.Status != ads.StatusRejected {
		t.Fatalf("status=%s", ad.Status)
	}
	if len(bc.published) != 0 {
		t.Fatal("reject must not broadcast")
	}
	if len(n.rejected) != 1 {
		t.Fatalf("submitter not notified: %+v", n)
	}
}

func TestDecideNonAdminDenied(t *testing.T) {
	repo := newFakeAdRepo(pendingAd(1, time.Now()))
	bc := &fakeBroadcaster{}
	svc := newService(repo, &fakeAdmins{set: map[int64]bool{}}, &fakeNotifier{}, bc)

	_, _, err := svc.Decide(context.Background(), 99, 1, Approve)
	if !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("err=%v, want ErrNotAdmin", err)
	}
	if repo.items[1].Status != ads.StatusPending {
		t.Fatal("store must be unchanged")
	}
	if len(bc.published) != 0 {
		t.Fatal("no broadcast for denied decision")
	}
}

func TestDecideNotFound(t *testing.T) {
	svc := newService(newFakeAdRepo(), &fakeAdmins{set: map[int64]bool{adminID: true}}, &fakeNotifier{}, &fakeBroadcaster{})
	_, _, err := svc.Decide(context.Background(), adminID, 404, Approve)
	if !errors.Is(err, ads.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestListPendingPagingAndOrder(t *testing.T) {
	base := time.Unix(1000, 0)
	var items []*ads.Ad
	for i := int64(1); i <= 7; i++ {
		items = append(items, pendingAd(i, base.Add(time.Duration(i)*time.Minute)))
	}
	svc := newService(newFakeAdRepo(items...), &fakeAdmins{set: map[int64]bool{adminID: true}}, &fakeNotifier{}, &fakeBroadcaster{})

	p, err := svc.ListPending(context.Background(), adminID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Total != 7 || p.Pages != 2 || len(p.Ads) != PageSize {
		t.Fatalf("page=%+v", p)
	}
	// старые первыми
	if p.Ads[0].ID != 1 || p.Ads[4].ID != 5 {
		t.Fatalf("order: %d..%d", p.Ads[0].ID, p.Ads[4].ID)
	}

	// номер страницы зажимается в диапазон
	p, err = svc.ListPending(context.Background(), adminID, 99)
	if err != nil {
		t.Fatal(err)
	}
	if p.Page != 2 || len(p.Ads) != 2 {
		t.Fatalf("clamped page=%d len=%d", p.Page, len(p.Ads))
	}

	p, err = svc.ListPending(context.Background(), adminID, -3)
	if err != nil {
		t.Fatal(err)
	}
	if p.Page != 1 {
		t.Fatalf("page=%d, want 1", p.Page)
	}
}

func TestListPendingNonAdmin(t *testing.T) {
	svc := newService(newFakeAdRepo(pendingAd(1, time.Now())), &fakeAdmins{set: map[int64]bool{}}, &fakeNotifier{}, &fakeBroadcaster{})
	_, err := svc.ListPending(context.Background(), 99, 1)
	if !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("err=%v, want ErrNotAdmin", err)
	}
}
