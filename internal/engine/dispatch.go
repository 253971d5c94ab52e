package engine

import "fmt"

// Action is the dispatch state machine's output vocabulary.
type Action string

const (
	ActionIdentify    Action = "identify"
	ActionSearch      Action = "search"
	ActionCheckStatus Action = "check_status"
	ActionNotify      Action = "notify"
	ActionNone        Action = "none"
)

// FunctionName identifies an executed collaborator call.
type FunctionName string

const (
	FunctionIdentify    FunctionName = "identify_movie_request"
	FunctionSearch      FunctionName = "search_movie"
	FunctionCheckStatus FunctionName = "check_status"
	FunctionNotify      FunctionName = "send_notification"
)

// FunctionResult records one collaborator call already executed this turn.
// Which payload field is set depends on Name: Identity for identify, Match
// for search (nil means no match), Library for check_status.
type FunctionResult struct {
	Name      FunctionName
	Succeeded bool
	Identity  MovieIdentity
	Match     *SearchCandidate
	Library   *LibraryStatus
}

// Outcome is the structured result handed to the reply collaborator for a
// notify action. It carries everything the text layer needs so it never has
// to guess, including "could not determine" states.
type Outcome struct {
	Identity MovieIdentity
	Match    *SearchCandidate
	Library  *LibraryStatus
	Reason   string
}

// Notify outcome reasons.
const (
	ReasonNoMovie       = "no_movie_identified"
	ReasonIdentifyError = "could_not_determine"
	ReasonNoMatch       = "no_catalog_match"
	ReasonSearchError   = "search_failed"
	ReasonStatusError   = "status_check_failed"
	ReasonStatusKnown   = "status_resolved"
)

// DispatchDecision is the single next step for the turn. Identity and Match
// carry the arguments the action needs; Outcome is set only for ActionNotify.
type DispatchDecision struct {
	Action   Action
	Identity MovieIdentity
	Match    *SearchCandidate
	Outcome  *Outcome
}

// NextDispatch decides the one next action from the evidence gathered so far
// this turn. The results list is the machine's only memory; the caller
// re-invokes after executing each action with the new result appended.
//
// A succeeded action is never re-issued. A failed identify routes to notify
// the same as an empty identification rather than retrying; failed search or
// status checks likewise terminate in a notify carrying the failure reason.
// Once a notify result is present the turn is over. Evidence that skips a
// step, such as a search result with no successful identify before it, is an
// ErrInvariantViolation.
func NextDispatch(results []FunctionResult) (DispatchDecision, error) {
	evidence := latestByName(results)

	if _, ok := evidence[FunctionNotify]; ok {
		return DispatchDecision{Action: ActionNone}, nil
	}

	identify, ok := evidence[FunctionIdentify]
	if !ok {
		if _, present := evidence[FunctionSearch]; present {
			return DispatchDecision{}, fmt.Errorf("%w: search result without identify", ErrInvariantViolation)
		}
		if _, present := evidence[FunctionCheckStatus]; present {
			return DispatchDecision{}, fmt.Errorf("%w: status result without identify", ErrInvariantViolation)
		}
		return DispatchDecision{Action: ActionIdentify}, nil
	}

	if !identify.Succeeded {
		if _, present := evidence[FunctionSearch]; present {
			return DispatchDecision{}, fmt.Errorf("%w: search result after failed identify", ErrInvariantViolation)
		}
		if _, present := evidence[FunctionCheckStatus]; present {
			return DispatchDecision{}, fmt.Errorf("%w: status result after failed identify", ErrInvariantViolation)
		}
		return notifyDecision(NoIdentity(), nil, nil, ReasonIdentifyError), nil
	}
	identity := identify.Identity
	if !identity.Identified() {
		if identity.Confidence != ConfidenceNone {
			return DispatchDecision{}, fmt.Errorf("%w: empty identity with confidence %q", ErrInvariantViolation, identity.Confidence)
		}
		return notifyDecision(identity, nil, nil, ReasonNoMovie), nil
	}

	search, ok := evidence[FunctionSearch]
	if !ok {
		if _, present := evidence[FunctionCheckStatus]; present {
			return DispatchDecision{}, fmt.Errorf("%w: status result without search", ErrInvariantViolation)
		}
		return DispatchDecision{Action: ActionSearch, Identity: identity}, nil
	}
	if !search.Succeeded {
		return notifyDecision(identity, nil, nil, ReasonSearchError), nil
	}
	if search.Match == nil {
		return notifyDecision(identity, nil, nil, ReasonNoMatch), nil
	}

	status, ok := evidence[FunctionCheckStatus]
	if !ok {
		return DispatchDecision{Action: ActionCheckStatus, Identity: identity, Match: search.Match}, nil
	}
	if !status.Succeeded {
		return notifyDecision(identity, search.Match, nil, ReasonStatusError), nil
	}
	return notifyDecision(identity, search.Match, status.Library, ReasonStatusKnown), nil
}

func notifyDecision(identity MovieIdentity, match *SearchCandidate, library *LibraryStatus, reason string) DispatchDecision {
	return DispatchDecision{
		Action:   ActionNotify,
		Identity: identity,
		Match:    match,
		Outcome: &Outcome{
			Identity: identity,
			Match:    match,
			Library:  library,
			Reason:   reason,
		},
	}
}

// latestByName keeps the last result per function name so a retried call's
// newest evidence wins.
func latestByName(results []FunctionResult) map[FunctionName]FunctionResult {
	evidence := make(map[FunctionName]FunctionResult, len(results))
	for _, r := range results {
		evidence[r.Name] = r
	}
	return evidence
}
