package engine

import "testing"

func TestDisambiguateExactTitleAndYear(t *testing.T) {
	candidates := []SearchCandidate{
		{Title: "Dune", Year: 1984, TMDBID: 841, Rank: 0},
		{Title: "Dune", Year: 2021, TMDBID: 438631, Rank: 1},
	}
	match, ok := Disambiguate(MovieIdentity{Title: "dune", Year: 2021, Confidence: ConfidenceHigh}, candidates)
	if !ok || match.TMDBID != 438631 {
		t.Fatalf("match = %+v, ok = %v", match, ok)
	}
}

func TestDisambiguateYearUniquelyResolvesFranchise(t *testing.T) {
	// "Blade Runner (2017)" never appears literally in the catalog; the year
	// uniquely picks Blade Runner 2049 because the titles share tokens.
	candidates := []SearchCandidate{
		{Title: "Blade Runner 2049", Year: 2017, TMDBID: 335984, Rank: 0},
	}
	match, ok := Disambiguate(MovieIdentity{Title: "Blade Runner", Year: 2017, Confidence: ConfidenceHigh}, candidates)
	if !ok || match.TMDBID != 335984 {
		t.Fatalf("match = %+v, ok = %v", match, ok)
	}
}

func TestDisambiguateYearNeverForcesDifferentFranchise(t *testing.T) {
	// Exactly one candidate shares the year, but the titles have no tokens in
	// common, so a year-only selection would be a guess.
	candidates := []SearchCandidate{
		{Title: "Titane", Year: 2017, TMDBID: 999, Rank: 0},
	}
	if match, ok := Disambiguate(MovieIdentity{Title: "Blade Runner", Year: 2017, Confidence: ConfidenceHigh}, candidates); ok {
		t.Fatalf("unexpected match %+v", match)
	}
}

func TestDisambiguateYearAmbiguousIsNoMatch(t *testing.T) {
	candidates := []SearchCandidate{
		{Title: "Blade Runner 2049", Year: 2017, TMDBID: 335984, Rank: 0},
		{Title: "Blade Runner Black Out 2022", Year: 2017, TMDBID: 478775, Rank: 1},
	}
	if match, ok := Disambiguate(MovieIdentity{Title: "Blade Runner", Year: 2017, Confidence: ConfidenceHigh}, candidates); ok {
		t.Fatalf("two same-year candidates must not resolve, got %+v", match)
	}
}

func TestDisambiguateYearConflictRejectsTitleOnlyMatch(t *testing.T) {
	// The user asked for the 2017 film; the 1982 entry shares the exact title
	// but is a different franchise installment.
	candidates := []SearchCandidate{
		{Title: "Blade Runner", Year: 1982, TMDBID: 78, Rank: 0},
	}
	if match, ok := Disambiguate(MovieIdentity{Title: "Blade Runner", Year: 2017, Confidence: ConfidenceHigh}, candidates); ok {
		t.Fatalf("year conflict must not match, got %+v", match)
	}
}

func TestDisambiguateTitleOnlyLowestRankWins(t *testing.T) {
	candidates := []SearchCandidate{
		{Title: "King Kong", Year: 2005, TMDBID: 254, Rank: 1},
		{Title: "King Kong", Year: 1933, TMDBID: 244, Rank: 0},
		{Title: "Kong: Skull Island", Year: 2017, TMDBID: 293167, Rank: 2},
	}
	match, ok := Disambiguate(MovieIdentity{Title: "king kong", Confidence: ConfidenceMedium}, candidates)
	if !ok || match.TMDBID != 244 {
		t.Fatalf("match = %+v, ok = %v", match, ok)
	}
}

func TestDisambiguateNoCandidates(t *testing.T) {
	if match, ok := Disambiguate(MovieIdentity{Title: "Titane", Confidence: ConfidenceMedium}, nil); ok {
		t.Fatalf("empty candidate list must be no match, got %+v", match)
	}
}

func TestDisambiguateUnidentifiedIdentity(t *testing.T) {
	candidates := []SearchCandidate{{Title: "Titane", Year: 2021, TMDBID: 999, Rank: 0}}
	if match, ok := Disambiguate(NoIdentity(), candidates); ok {
		t.Fatalf("empty identity must be no match, got %+v", match)
	}
}

func TestDisambiguateNormalizesPunctuation(t *testing.T) {
	candidates := []SearchCandidate{
		{Title: "Birds of Prey (and the Fantabulous Emancipation of One Harley Quinn)", Year: 2020, TMDBID: 495764, Rank: 0},
	}
	identity := MovieIdentity{Title: "birds of prey and the fantabulous emancipation of one harley quinn", Confidence: ConfidenceMedium}
	match, ok := Disambiguate(identity, candidates)
	if !ok || match.TMDBID != 495764 {
		t.Fatalf("match = %+v, ok = %v", match, ok)
	}
}
