package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"textflix/internal/conversation"
	"textflix/internal/convstore"
	"textflix/internal/engine"
	"textflix/internal/logging"
	"textflix/internal/notifications"
	"textflix/internal/requests"
	"textflix/internal/services"
	"textflix/internal/services/radarr"
	"textflix/internal/services/tmdb"
)

const defaultMaxDispatches = 4

// Deps bundles the collaborators a turn needs. Library and Requests may be
// nil when Radarr is not configured; the agent then reports movies as
// untracked instead of requesting downloads.
type Deps struct {
	Extractor engine.Extractor
	Search    tmdb.Searcher
	Library   radarr.Service
	Requests  *requests.Store
	Composer  ReplyComposer
	Notifier  notifications.Service
	Store     *convstore.Store

	RadarrQualityProfileID int64
	RadarrRootFolder       string
}

// Agent executes conversation turns.
type Agent struct {
	deps          Deps
	maxDispatches int
	logger        *slog.Logger
}

// New builds an agent. maxDispatches bounds engine invocations per turn so a
// contract violation by a collaborator cannot loop forever.
func New(deps Deps, maxDispatches int, logger *slog.Logger) (*Agent, error) {
	if deps.Extractor == nil || deps.Search == nil || deps.Composer == nil || deps.Notifier == nil {
		return nil, errors.New("agent: extractor, search, composer, and notifier required")
	}
	if maxDispatches <= 0 {
		maxDispatches = defaultMaxDispatches
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{deps: deps, maxDispatches: maxDispatches, logger: logger}, nil
}

// log derives a logger carrying the conversation and correlation identifiers
// stored in ctx so every turn log line can be traced back to its SMS.
func (a *Agent) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, a.logger)
}

// TurnResult summarizes a processed turn.
type TurnResult struct {
	Reply    string
	Identity engine.MovieIdentity
	Match    *engine.SearchCandidate
	Steps    int
}

// HandleMessage records an inbound SMS, runs the dispatch loop over the
// stored transcript, sends the reply, and records it. The conversation store
// is required for this entry point.
func (a *Agent) HandleMessage(ctx context.Context, from, body string) (*TurnResult, error) {
	if a.deps.Store == nil {
		return nil, errors.New("agent: conversation store required")
	}
	ctx = services.WithConversationID(ctx, from)
	if err := a.deps.Store.AppendUser(ctx, from, body); err != nil {
		return nil, err
	}
	conv, err := a.deps.Store.History(ctx, from)
	if err != nil {
		return nil, err
	}
	result, err := a.RunTurn(ctx, from, conv)
	if err != nil {
		return nil, err
	}
	if result.Reply != "" {
		if err := a.deps.Store.AppendSystem(ctx, from, result.Reply); err != nil {
			a.log(ctx).Error("failed to record outbound reply", logging.Error(err))
		}
	}
	return result, nil
}

// RunTurn executes the dispatch loop for a conversation snapshot. The engine
// is re-invoked after each executed action with the accumulated results, and
// the loop stops at ActionNone or the dispatch cap.
func (a *Agent) RunTurn(ctx context.Context, phone string, conv conversation.Conversation) (*TurnResult, error) {
	var (
		result  TurnResult
		results []engine.FunctionResult
	)

	for step := 0; step < a.maxDispatches+1; step++ {
		decision, err := engine.NextDispatch(results)
		if err != nil {
			return nil, fmt.Errorf("agent: dispatch: %w", err)
		}
		if decision.Action == engine.ActionNone {
			result.Steps = len(results)
			return &result, nil
		}
		if len(results) >= a.maxDispatches {
			a.log(ctx).Warn("dispatch cap reached before terminal action",
				logging.Int("cap", a.maxDispatches),
				logging.String("next_action", string(decision.Action)))
			result.Steps = len(results)
			return &result, nil
		}

		a.log(ctx).Debug("executing dispatch action",
			logging.String("action", string(decision.Action)),
			logging.Int("step", len(results)))

		switch decision.Action {
		case engine.ActionIdentify:
			results = append(results, a.identify(ctx, conv, &result))
		case engine.ActionSearch:
			results = append(results, a.search(ctx, decision.Identity, &result))
		case engine.ActionCheckStatus:
			results = append(results, a.checkStatus(ctx, phone, decision))
		case engine.ActionNotify:
			results = append(results, a.notify(ctx, phone, conv, decision, &result))
		default:
			return nil, fmt.Errorf("agent: dispatch: %w: unknown action %q", engine.ErrInvariantViolation, decision.Action)
		}
	}

	result.Steps = len(results)
	return &result, nil
}

func (a *Agent) identify(ctx context.Context, conv conversation.Conversation, result *TurnResult) engine.FunctionResult {
	identity, err := engine.ResolveIdentity(ctx, a.deps.Extractor, conv)
	if err != nil {
		a.log(ctx).Error("movie identification failed", logging.Error(err))
		return engine.FunctionResult{Name: engine.FunctionIdentify}
	}
	result.Identity = identity
	a.log(ctx).Info("resolved movie identity",
		logging.String("title", identity.Title),
		logging.Int("year", identity.Year),
		logging.String("confidence", string(identity.Confidence)))
	return engine.FunctionResult{Name: engine.FunctionIdentify, Succeeded: true, Identity: identity}
}

func (a *Agent) search(ctx context.Context, identity engine.MovieIdentity, result *TurnResult) engine.FunctionResult {
	opts := tmdb.SearchOptions{}
	if identity.Year > 0 {
		opts.Year = identity.Year
	}
	resp, err := a.deps.Search.SearchMovieWithOptions(ctx, identity.Title, opts)
	if err == nil && identity.Year > 0 && len(resp.Results) == 0 {
		// A stated year can over-filter when the user misremembers release
		// timing, so widen to a title-only search before giving up.
		resp, err = a.deps.Search.SearchMovie(ctx, identity.Title)
	}
	if err != nil {
		a.log(ctx).Error("tmdb search failed", logging.Error(err), logging.String("query", identity.Query()))
		return engine.FunctionResult{Name: engine.FunctionSearch}
	}

	candidates := make([]engine.SearchCandidate, 0, len(resp.Results))
	for rank, res := range resp.Results {
		candidates = append(candidates, engine.SearchCandidate{
			Title:  res.Title,
			Year:   res.Year(),
			TMDBID: res.ID,
			Rank:   rank,
		})
	}

	match, ok := engine.Disambiguate(identity, candidates)
	if !ok {
		a.log(ctx).Info("no catalog match",
			logging.String("query", identity.Query()),
			logging.Int("candidates", len(candidates)))
		return engine.FunctionResult{Name: engine.FunctionSearch, Succeeded: true}
	}
	result.Match = &match
	a.log(ctx).Info("disambiguated catalog match",
		logging.String("title", match.Title),
		logging.Int("year", match.Year),
		logging.Int64("tmdb_id", match.TMDBID))
	return engine.FunctionResult{Name: engine.FunctionSearch, Succeeded: true, Match: &match}
}

// checkStatus resolves library state for the matched movie. A movie absent
// from the library is requested for download as part of the same step, so
// the user's next status question reflects an in-flight acquisition.
func (a *Agent) checkStatus(ctx context.Context, phone string, decision engine.DispatchDecision) engine.FunctionResult {
	match := decision.Match
	if a.deps.Library == nil {
		return engine.FunctionResult{
			Name:      engine.FunctionCheckStatus,
			Succeeded: true,
			Library:   &engine.LibraryStatus{Found: false, Status: "untracked"},
		}
	}

	movie, err := a.deps.Library.MovieByTMDBID(ctx, match.TMDBID)
	if err != nil {
		a.log(ctx).Error("radarr lookup failed", logging.Error(err), logging.Int64("tmdb_id", match.TMDBID))
		return engine.FunctionResult{Name: engine.FunctionCheckStatus}
	}

	if movie != nil {
		status := &engine.LibraryStatus{
			Found:     true,
			Status:    movie.Status,
			HasFile:   movie.HasFile,
			Monitored: movie.Monitored,
		}
		if !movie.HasFile {
			status.Status = "downloading"
		}
		a.recordRequest(ctx, phone, decision, movie.ID)
		return engine.FunctionResult{Name: engine.FunctionCheckStatus, Succeeded: true, Library: status}
	}

	added, err := a.deps.Library.AddMovie(ctx, match.TMDBID, radarr.AddOptions{
		QualityProfileID: a.deps.RadarrQualityProfileID,
		RootFolder:       a.deps.RadarrRootFolder,
		Monitored:        true,
		SearchNow:        true,
	})
	if err != nil {
		a.log(ctx).Error("radarr add failed", logging.Error(err), logging.Int64("tmdb_id", match.TMDBID))
		return engine.FunctionResult{Name: engine.FunctionCheckStatus}
	}
	a.log(ctx).Info("requested movie download",
		logging.String("title", match.Title),
		logging.Int64("radarr_id", added.ID))
	a.recordRequest(ctx, phone, decision, added.ID)
	return engine.FunctionResult{
		Name:      engine.FunctionCheckStatus,
		Succeeded: true,
		Library:   &engine.LibraryStatus{Found: true, Status: "requested", Monitored: true},
	}
}

// recordRequest journals the acquisition so the monitor can send progress
// notifications. Duplicates from repeat requests are expected and ignored.
func (a *Agent) recordRequest(ctx context.Context, phone string, decision engine.DispatchDecision, radarrID int64) {
	if a.deps.Requests == nil || phone == "" {
		return
	}
	match := decision.Match
	_, err := a.deps.Requests.Create(ctx, requests.Request{
		Phone:    phone,
		Title:    match.Title,
		Year:     match.Year,
		TMDBID:   match.TMDBID,
		RadarrID: radarrID,
		Status:   requests.StatusRequested,
	})
	if err != nil && !errors.Is(err, requests.ErrDuplicate) {
		a.log(ctx).Error("failed to journal request", logging.Error(err))
	}
}

func (a *Agent) notify(ctx context.Context, phone string, conv conversation.Conversation, decision engine.DispatchDecision, result *TurnResult) engine.FunctionResult {
	outcome := *decision.Outcome
	reply, err := a.deps.Composer.Compose(ctx, conv, outcome)
	if err != nil {
		a.log(ctx).Warn("reply composition failed, using fallback", logging.Error(err))
		reply = fallbackReply(outcome)
	}
	result.Reply = reply

	if phone != "" {
		if err := a.deps.Notifier.SendReply(ctx, phone, reply); err != nil {
			a.log(ctx).Error("sms delivery failed", logging.Error(err))
			return engine.FunctionResult{Name: engine.FunctionNotify}
		}
	}
	return engine.FunctionResult{Name: engine.FunctionNotify, Succeeded: true}
}
