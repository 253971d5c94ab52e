package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"log/slog"

	"textflix/internal/logging"
	"textflix/internal/notifications"
	"textflix/internal/requests"
	"textflix/internal/services/radarr"
)

// library narrows the Radarr surface the monitor needs.
type library interface {
	MovieByTMDBID(ctx context.Context, tmdbID int64) (*radarr.Movie, error)
	QueueForMovie(ctx context.Context, movieID int64) ([]radarr.QueueItem, error)
}

// Monitor polls Radarr for the progress of journaled requests and texts the
// requester when a download starts and when it finishes. Each notification is
// sent at most once per request; a failed send is retried on the next poll.
type Monitor struct {
	store        *requests.Store
	library      library
	notifier     notifications.Service
	logger       *slog.Logger
	pollInterval time.Duration

	mu      sync.Mutex
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a monitor. pollInterval is clamped to a sane floor so a zero
// config value cannot spin the loop.
func New(store *requests.Store, lib library, notifier notifications.Service, pollInterval time.Duration, logger *slog.Logger) (*Monitor, error) {
	if store == nil || lib == nil || notifier == nil {
		return nil, errors.New("monitor: store, library, and notifier required")
	}
	if pollInterval < 10*time.Second {
		pollInterval = 10 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Monitor{
		store:        store,
		library:      lib,
		notifier:     notifier,
		logger:       logger.With(logging.String("component", "download-monitor")),
		pollInterval: pollInterval,
	}, nil
}

// Start launches the poll loop. It returns an error if the monitor is
// already running.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return errors.New("monitor already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.ctx = runCtx
	m.cancel = cancel
	m.running = true

	m.wg.Add(1)
	go m.loop()
	return nil
}

// Stop cancels the loop and waits for the in-flight poll to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	m.poll(m.ctx)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.poll(m.ctx)
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	active, err := m.store.Active(ctx)
	if err != nil {
		m.logger.Error("failed to load active requests", logging.Error(err))
		return
	}
	for _, req := range active {
		if ctx.Err() != nil {
			return
		}
		m.check(ctx, req)
	}
}

func (m *Monitor) check(ctx context.Context, req requests.Request) {
	logger := m.logger.With(
		logging.Int64("request_id", req.ID),
		logging.String("title", req.DisplayTitle()),
	)

	movie, err := m.library.MovieByTMDBID(ctx, req.TMDBID)
	if err != nil {
		logger.Warn("radarr lookup failed; will retry", logging.Error(err))
		return
	}
	if movie == nil {
		logger.Debug("movie no longer tracked by radarr")
		return
	}

	if movie.HasFile {
		m.markAvailable(ctx, req, logger)
		return
	}

	items, err := m.library.QueueForMovie(ctx, movie.ID)
	if err != nil {
		logger.Warn("radarr queue lookup failed; will retry", logging.Error(err))
		return
	}
	if len(items) > 0 {
		m.markDownloading(ctx, req, logger)
	}
}

func (m *Monitor) markDownloading(ctx context.Context, req requests.Request, logger *slog.Logger) {
	if req.Status == requests.StatusRequested {
		if err := m.store.SetStatus(ctx, req.ID, requests.StatusDownloading); err != nil {
			logger.Error("failed to record downloading status", logging.Error(err))
			return
		}
		logger.Info("download started")
	}
	if req.NotifiedStarted {
		return
	}
	if err := m.notifier.NotifyDownloadStarted(ctx, req.Phone, req.DisplayTitle()); err != nil {
		logger.Warn("start notification failed; will retry", logging.Error(err))
		return
	}
	if err := m.store.MarkNotifiedStarted(ctx, req.ID); err != nil {
		logger.Error("failed to record start notification", logging.Error(err))
	}
}

func (m *Monitor) markAvailable(ctx context.Context, req requests.Request, logger *slog.Logger) {
	if req.Status != requests.StatusAvailable {
		if err := m.store.SetStatus(ctx, req.ID, requests.StatusAvailable); err != nil {
			logger.Error("failed to record available status", logging.Error(err))
			return
		}
		logger.Info("download completed")
	}
	if req.NotifiedCompleted {
		return
	}
	if err := m.notifier.NotifyDownloadCompleted(ctx, req.Phone, req.DisplayTitle()); err != nil {
		logger.Warn("completion notification failed; will retry", logging.Error(err))
		return
	}
	if err := m.store.MarkNotifiedCompleted(ctx, req.ID); err != nil {
		logger.Error("failed to record completion notification", logging.Error(err))
	}
}
