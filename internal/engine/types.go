package engine

import "fmt"

// Confidence grades how certain the resolver is about a movie identity.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// MovieMention is a candidate title pulled from one utterance. Year is zero
// when the utterance carried no year. Inferred marks mentions recovered from
// conversational phrasing rather than an explicit request.
type MovieMention struct {
	Title          string
	Year           int
	UtteranceIndex int
	Inferred       bool
}

// MovieIdentity is the resolver's canonical output. An empty Title together
// with ConfidenceNone is the "no movie identified" value.
type MovieIdentity struct {
	Title      string
	Year       int
	Confidence Confidence
}

// NoIdentity returns the canonical empty identity.
func NoIdentity() MovieIdentity {
	return MovieIdentity{Confidence: ConfidenceNone}
}

// Identified reports whether the identity names a movie.
func (m MovieIdentity) Identified() bool {
	return m.Title != ""
}

// Query renders the identity as a search query string.
func (m MovieIdentity) Query() string {
	if m.Year > 0 {
		return fmt.Sprintf("%s (%d)", m.Title, m.Year)
	}
	return m.Title
}

// SearchCandidate is one catalog result, read-only input to Disambiguate.
// Rank is the provider's relevance order with zero best.
type SearchCandidate struct {
	Title  string
	Year   int
	TMDBID int64
	Rank   int
}

// LibraryStatus is the outcome of a library status check. Found false is a
// valid result, not an error.
type LibraryStatus struct {
	Found     bool
	Status    string
	HasFile   bool
	Monitored bool
}
