package agent

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"textflix/internal/conversation"
	"textflix/internal/convstore"
	"textflix/internal/engine"
	"textflix/internal/logging"
	"textflix/internal/requests"
	"textflix/internal/services/radarr"
	"textflix/internal/services/tmdb"
)

type stubExtractor struct {
	mentions []engine.MovieMention
	err      error
}

func (s *stubExtractor) Extract(ctx context.Context, conv conversation.Conversation) ([]engine.MovieMention, error) {
	return s.mentions, s.err
}

type stubSearcher struct {
	byQuery  map[string]*tmdb.Response
	err      error
	queries  []string
	optYears []int
}

func (s *stubSearcher) SearchMovie(ctx context.Context, query string) (*tmdb.Response, error) {
	return s.SearchMovieWithOptions(ctx, query, tmdb.SearchOptions{})
}

func (s *stubSearcher) SearchMovieWithOptions(ctx context.Context, query string, opts tmdb.SearchOptions) (*tmdb.Response, error) {
	s.queries = append(s.queries, query)
	s.optYears = append(s.optYears, opts.Year)
	if s.err != nil {
		return nil, s.err
	}
	if resp, ok := s.byQuery[query]; ok {
		return resp, nil
	}
	return &tmdb.Response{}, nil
}

func (s *stubSearcher) GetMovieDetails(ctx context.Context, movieID int64) (*tmdb.Result, error) {
	return nil, errors.New("not implemented")
}

type stubLibrary struct {
	movie     *radarr.Movie
	lookupErr error
	added     []int64
	addErr    error
}

func (s *stubLibrary) MovieByTMDBID(ctx context.Context, tmdbID int64) (*radarr.Movie, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.movie, nil
}

func (s *stubLibrary) AddMovie(ctx context.Context, tmdbID int64, opts radarr.AddOptions) (*radarr.Movie, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	s.added = append(s.added, tmdbID)
	return &radarr.Movie{ID: 77, TMDBID: tmdbID, Monitored: true}, nil
}

func (s *stubLibrary) QueueForMovie(ctx context.Context, movieID int64) ([]radarr.QueueItem, error) {
	return nil, nil
}

func (s *stubLibrary) Movies(ctx context.Context) ([]radarr.Movie, error) {
	return nil, nil
}

func (s *stubLibrary) HealthCheck(ctx context.Context) error {
	return nil
}

type stubComposer struct {
	reply string
	err   error
	calls []engine.Outcome
}

func (s *stubComposer) Compose(ctx context.Context, conv conversation.Conversation, outcome engine.Outcome) (string, error) {
	s.calls = append(s.calls, outcome)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubNotifier struct {
	sent []string
	to   []string
	err  error
}

func (s *stubNotifier) SendReply(ctx context.Context, to, body string) error {
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.sent = append(s.sent, body)
	return nil
}

func (s *stubNotifier) NotifyDownloadStarted(ctx context.Context, to, title string) error {
	return nil
}

func (s *stubNotifier) NotifyDownloadCompleted(ctx context.Context, to, title string) error {
	return nil
}

func (s *stubNotifier) TestNotification(ctx context.Context, to string) error {
	return nil
}

func titaneConv() conversation.Conversation {
	return conversation.New(conversation.Utterance{Role: conversation.RoleUser, Text: "add titane 2021"})
}

func titaneResponse() *tmdb.Response {
	return &tmdb.Response{Results: []tmdb.Result{
		{ID: 630240, Title: "Titane", ReleaseDate: "2021-07-14"},
	}}
}

func newTestAgent(t *testing.T, deps Deps) *Agent {
	t.Helper()
	a, err := New(deps, 4, logging.NewNop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return a
}

func TestRunTurnFullChainRequestsDownload(t *testing.T) {
	store, err := requests.OpenPath(filepath.Join(t.TempDir(), "requests.db"))
	if err != nil {
		t.Fatalf("OpenPath returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	library := &stubLibrary{}
	composer := &stubComposer{reply: "Titane (2021) is on the way!"}
	notifier := &stubNotifier{}
	a := newTestAgent(t, Deps{
		Extractor: &stubExtractor{mentions: []engine.MovieMention{{Title: "Titane", Year: 2021, UtteranceIndex: 0}}},
		Search:    &stubSearcher{byQuery: map[string]*tmdb.Response{"Titane": titaneResponse()}},
		Library:   library,
		Requests:  store,
		Composer:  composer,
		Notifier:  notifier,
	})

	result, err := a.RunTurn(context.Background(), "+15555550100", titaneConv())
	if err != nil {
		t.Fatalf("RunTurn returned error: %v", err)
	}
	if result.Steps != 4 {
		t.Fatalf("expected 4 dispatch steps, got %d", result.Steps)
	}
	if result.Reply != "Titane (2021) is on the way!" {
		t.Fatalf("unexpected reply %q", result.Reply)
	}
	if len(library.added) != 1 || library.added[0] != 630240 {
		t.Fatalf("expected AddMovie for tmdb 630240, got %v", library.added)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected a single SMS, got %d", len(notifier.sent))
	}

	journaled, err := store.ByPhoneAndTMDBID(context.Background(), "+15555550100", 630240)
	if err != nil {
		t.Fatalf("ByPhoneAndTMDBID returned error: %v", err)
	}
	if journaled == nil || journaled.RadarrID != 77 {
		t.Fatalf("expected journaled request, got %+v", journaled)
	}
}

func TestRunTurnGreetingSkipsSearch(t *testing.T) {
	search := &stubSearcher{}
	composer := &stubComposer{reply: "Hi! Text me a movie title."}
	notifier := &stubNotifier{}
	a := newTestAgent(t, Deps{
		Extractor: &stubExtractor{},
		Search:    search,
		Composer:  composer,
		Notifier:  notifier,
	})

	conv := conversation.New(conversation.Utterance{Role: conversation.RoleUser, Text: "yoo"})
	result, err := a.RunTurn(context.Background(), "+15555550100", conv)
	if err != nil {
		t.Fatalf("RunTurn returned error: %v", err)
	}
	if len(search.queries) != 0 {
		t.Fatalf("greeting must not search, got queries %v", search.queries)
	}
	if result.Steps != 2 {
		t.Fatalf("expected identify+notify, got %d steps", result.Steps)
	}
	if len(composer.calls) != 1 || composer.calls[0].Reason != engine.ReasonNoMovie {
		t.Fatalf("unexpected outcome: %+v", composer.calls)
	}
}

func TestRunTurnExtractionFailureIsNotNoMovie(t *testing.T) {
	composer := &stubComposer{reply: "Sorry, something went wrong."}
	a := newTestAgent(t, Deps{
		Extractor: &stubExtractor{err: engine.ErrExtractionFailed},
		Search:    &stubSearcher{},
		Composer:  composer,
		Notifier:  &stubNotifier{},
	})

	if _, err := a.RunTurn(context.Background(), "+15555550100", titaneConv()); err != nil {
		t.Fatalf("RunTurn returned error: %v", err)
	}
	if len(composer.calls) != 1 || composer.calls[0].Reason != engine.ReasonIdentifyError {
		t.Fatalf("expected could_not_determine outcome, got %+v", composer.calls)
	}
}

func TestRunTurnNoCatalogMatch(t *testing.T) {
	composer := &stubComposer{reply: "Couldn't find that one."}
	library := &stubLibrary{}
	a := newTestAgent(t, Deps{
		Extractor: &stubExtractor{mentions: []engine.MovieMention{{Title: "Zorblax 9", UtteranceIndex: 0}}},
		Search:    &stubSearcher{},
		Library:   library,
		Composer:  composer,
		Notifier:  &stubNotifier{},
	})

	result, err := a.RunTurn(context.Background(), "+15555550100", titaneConv())
	if err != nil {
		t.Fatalf("RunTurn returned error: %v", err)
	}
	if result.Steps != 3 {
		t.Fatalf("expected identify+search+notify, got %d", result.Steps)
	}
	if len(composer.calls) != 1 || composer.calls[0].Reason != engine.ReasonNoMatch {
		t.Fatalf("unexpected outcome: %+v", composer.calls)
	}
	if len(library.added) != 0 {
		t.Fatal("no-match must not request a download")
	}
}

func TestRunTurnComposerFallback(t *testing.T) {
	notifier := &stubNotifier{}
	a := newTestAgent(t, Deps{
		Extractor: &stubExtractor{},
		Search:    &stubSearcher{},
		Composer:  &stubComposer{err: errors.New("llm down")},
		Notifier:  notifier,
	})

	result, err := a.RunTurn(context.Background(), "+15555550100", titaneConv())
	if err != nil {
		t.Fatalf("RunTurn returned error: %v", err)
	}
	if result.Reply == "" {
		t.Fatal("expected fallback reply when composer fails")
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != result.Reply {
		t.Fatalf("fallback reply not sent: %v", notifier.sent)
	}
}

func TestRunTurnMovieAlreadyDownloaded(t *testing.T) {
	library := &stubLibrary{movie: &radarr.Movie{ID: 12, TMDBID: 630240, HasFile: true, Status: "released"}}
	composer := &stubComposer{reply: "Titane is ready to watch!"}
	a := newTestAgent(t, Deps{
		Extractor: &stubExtractor{mentions: []engine.MovieMention{{Title: "Titane", Year: 2021, UtteranceIndex: 0}}},
		Search:    &stubSearcher{byQuery: map[string]*tmdb.Response{"Titane": titaneResponse()}},
		Library:   library,
		Composer:  composer,
		Notifier:  &stubNotifier{},
	})

	if _, err := a.RunTurn(context.Background(), "+15555550100", titaneConv()); err != nil {
		t.Fatalf("RunTurn returned error: %v", err)
	}
	if len(library.added) != 0 {
		t.Fatal("present movie must not be re-added")
	}
	outcome := composer.calls[0]
	if outcome.Library == nil || !outcome.Library.HasFile {
		t.Fatalf("expected has-file library status, got %+v", outcome.Library)
	}
}

func TestRunTurnWidensOverFilteredYearSearch(t *testing.T) {
	// Year-filtered search finds nothing; the retry without the filter does.
	calls := 0
	search := &yearWideningSearcher{onCall: func(year int) *tmdb.Response {
		calls++
		if year > 0 {
			return &tmdb.Response{}
		}
		return &tmdb.Response{Results: []tmdb.Result{{ID: 335984, Title: "Blade Runner 2049", ReleaseDate: "2017-10-04"}}}
	}}
	composer := &stubComposer{reply: "Blade Runner 2049 coming up."}
	a := newTestAgent(t, Deps{
		Extractor: &stubExtractor{mentions: []engine.MovieMention{{Title: "Blade Runner", Year: 2017, UtteranceIndex: 0}}},
		Search:    search,
		Composer:  composer,
		Notifier:  &stubNotifier{},
	})

	result, err := a.RunTurn(context.Background(), "+15555550100", titaneConv())
	if err != nil {
		t.Fatalf("RunTurn returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected widened retry, got %d search calls", calls)
	}
	if result.Match == nil || result.Match.TMDBID != 335984 {
		t.Fatalf("expected year-unique match, got %+v", result.Match)
	}
}

type yearWideningSearcher struct {
	onCall func(year int) *tmdb.Response
}

func (s *yearWideningSearcher) SearchMovie(ctx context.Context, query string) (*tmdb.Response, error) {
	return s.onCall(0), nil
}

func (s *yearWideningSearcher) SearchMovieWithOptions(ctx context.Context, query string, opts tmdb.SearchOptions) (*tmdb.Response, error) {
	return s.onCall(opts.Year), nil
}

func (s *yearWideningSearcher) GetMovieDetails(ctx context.Context, movieID int64) (*tmdb.Result, error) {
	return nil, errors.New("not implemented")
}

func TestHandleMessageRecordsTranscript(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store, err := convstore.New(client, 10, time.Hour)
	if err != nil {
		t.Fatalf("convstore.New returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	composer := &stubComposer{reply: "Hi! Text me a movie title."}
	a := newTestAgent(t, Deps{
		Extractor: &stubExtractor{},
		Search:    &stubSearcher{},
		Composer:  composer,
		Notifier:  &stubNotifier{},
		Store:     store,
	})

	result, err := a.HandleMessage(context.Background(), "+15555550100", "yoo")
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	if result.Reply == "" {
		t.Fatal("expected a reply")
	}

	conv, err := store.History(context.Background(), "+15555550100")
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if conv.Len() != 2 {
		t.Fatalf("expected user+system transcript entries, got %d", conv.Len())
	}
	last, _ := conv.At(1)
	if last.Role != conversation.RoleSystem || last.Text != result.Reply {
		t.Fatalf("unexpected recorded reply: %+v", last)
	}
}
