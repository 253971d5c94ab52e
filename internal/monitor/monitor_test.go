package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"textflix/internal/requests"
	"textflix/internal/services/radarr"
)

type fakeLibrary struct {
	movie *radarr.Movie
	queue []radarr.QueueItem
	err   error
}

func (f *fakeLibrary) MovieByTMDBID(ctx context.Context, tmdbID int64) (*radarr.Movie, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.movie, nil
}

func (f *fakeLibrary) QueueForMovie(ctx context.Context, movieID int64) ([]radarr.QueueItem, error) {
	return f.queue, nil
}

type fakeNotifier struct {
	started   []string
	completed []string
	failNext  bool
}

func (f *fakeNotifier) SendReply(ctx context.Context, to, body string) error { return nil }

func (f *fakeNotifier) NotifyDownloadStarted(ctx context.Context, to, title string) error {
	if f.failNext {
		f.failNext = false
		return errors.New("twilio unavailable")
	}
	f.started = append(f.started, title)
	return nil
}

func (f *fakeNotifier) NotifyDownloadCompleted(ctx context.Context, to, title string) error {
	if f.failNext {
		f.failNext = false
		return errors.New("twilio unavailable")
	}
	f.completed = append(f.completed, title)
	return nil
}

func (f *fakeNotifier) TestNotification(ctx context.Context, to string) error { return nil }

func newMonitorFixture(t *testing.T, lib *fakeLibrary, notifier *fakeNotifier) (*Monitor, *requests.Store, *requests.Request) {
	t.Helper()
	store, err := requests.OpenPath(filepath.Join(t.TempDir(), "requests.db"))
	if err != nil {
		t.Fatalf("OpenPath returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	req, err := store.Create(context.Background(), requests.Request{
		Phone:    "+15555550100",
		Title:    "Titane",
		Year:     2021,
		TMDBID:   630240,
		RadarrID: 77,
		Status:   requests.StatusRequested,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	m, err := New(store, lib, notifier, time.Minute, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return m, store, req
}

func TestPollNotifiesDownloadStartOnce(t *testing.T) {
	lib := &fakeLibrary{
		movie: &radarr.Movie{ID: 77, TMDBID: 630240, Monitored: true},
		queue: []radarr.QueueItem{{MovieID: 77, Status: "downloading"}},
	}
	notifier := &fakeNotifier{}
	m, store, req := newMonitorFixture(t, lib, notifier)

	m.poll(context.Background())
	m.poll(context.Background())

	got, err := store.ByID(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("ByID returned error: %v", err)
	}
	if got.Status != requests.StatusDownloading {
		t.Fatalf("expected downloading status, got %q", got.Status)
	}
	if !got.NotifiedStarted {
		t.Fatal("expected start notification to be recorded")
	}
	if len(notifier.started) != 1 {
		t.Fatalf("expected exactly one start notice, got %d", len(notifier.started))
	}
}

func TestPollNotifiesCompletionAndRetiresRequest(t *testing.T) {
	lib := &fakeLibrary{
		movie: &radarr.Movie{ID: 77, TMDBID: 630240, HasFile: true},
	}
	notifier := &fakeNotifier{}
	m, store, req := newMonitorFixture(t, lib, notifier)

	m.poll(context.Background())

	got, err := store.ByID(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("ByID returned error: %v", err)
	}
	if got.Status != requests.StatusAvailable {
		t.Fatalf("expected available status, got %q", got.Status)
	}
	if len(notifier.completed) != 1 || notifier.completed[0] != "Titane (2021)" {
		t.Fatalf("unexpected completion notices %v", notifier.completed)
	}

	active, err := store.Active(context.Background())
	if err != nil {
		t.Fatalf("Active returned error: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("completed request must leave the active set, got %d", len(active))
	}

	m.poll(context.Background())
	if len(notifier.completed) != 1 {
		t.Fatalf("completed request must not be re-notified, got %d notices", len(notifier.completed))
	}
}

func TestPollRetriesFailedNotification(t *testing.T) {
	lib := &fakeLibrary{
		movie: &radarr.Movie{ID: 77, TMDBID: 630240, HasFile: true},
	}
	notifier := &fakeNotifier{failNext: true}
	m, store, req := newMonitorFixture(t, lib, notifier)

	m.poll(context.Background())
	got, err := store.ByID(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("ByID returned error: %v", err)
	}
	if got.NotifiedCompleted {
		t.Fatal("failed send must not be recorded as delivered")
	}

	m.poll(context.Background())
	got, err = store.ByID(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("ByID returned error: %v", err)
	}
	if !got.NotifiedCompleted || len(notifier.completed) != 1 {
		t.Fatalf("expected retry to deliver once, got %+v / %v", got, notifier.completed)
	}
}

func TestPollLeavesIdleRequestAlone(t *testing.T) {
	lib := &fakeLibrary{movie: &radarr.Movie{ID: 77, TMDBID: 630240}}
	notifier := &fakeNotifier{}
	m, store, req := newMonitorFixture(t, lib, notifier)

	m.poll(context.Background())

	got, err := store.ByID(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("ByID returned error: %v", err)
	}
	if got.Status != requests.StatusRequested {
		t.Fatalf("no queue activity must not change status, got %q", got.Status)
	}
	if len(notifier.started)+len(notifier.completed) != 0 {
		t.Fatal("idle request must not notify")
	}
}

func TestPollSkipsUntrackedMovie(t *testing.T) {
	lib := &fakeLibrary{}
	notifier := &fakeNotifier{}
	m, store, req := newMonitorFixture(t, lib, notifier)

	m.poll(context.Background())

	got, err := store.ByID(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("ByID returned error: %v", err)
	}
	if got.Status != requests.StatusRequested {
		t.Fatalf("untracked movie must not change status, got %q", got.Status)
	}
}

func TestStartTwiceFails(t *testing.T) {
	lib := &fakeLibrary{}
	m, _, _ := newMonitorFixture(t, lib, &fakeNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := m.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail")
	}
	m.Stop()
	m.Stop()
}
