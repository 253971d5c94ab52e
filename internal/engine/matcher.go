package engine

import "textflix/internal/textutil"

// Disambiguate selects the single best catalog candidate for a resolved
// identity, or reports no match. Rules are evaluated top-down and the first
// that yields a candidate wins:
//
//  1. Exact title and exact year.
//  2. Identity carries a year and exactly one candidate shares it, provided
//     the titles share at least one token. This resolves franchise collisions
//     where the literal title never appears, such as "Blade Runner (2017)"
//     against "Blade Runner 2049".
//  3. Identity carries no year: exact title ignoring year, lowest rank wins.
//
// An identity with a year never falls through to a title-only match with a
// conflicting year; "Blade Runner (2017)" must not select the 1982 film. An
// empty candidate list is no match, never an error.
func Disambiguate(identity MovieIdentity, candidates []SearchCandidate) (SearchCandidate, bool) {
	if !identity.Identified() || len(candidates) == 0 {
		return SearchCandidate{}, false
	}

	if identity.Year > 0 {
		for _, c := range candidates {
			if c.Year == identity.Year && textutil.EqualFold(c.Title, identity.Title) {
				return c, true
			}
		}
		return yearUniqueMatch(identity, candidates)
	}

	return exactTitleMatch(identity, candidates)
}

// yearUniqueMatch applies rule 2. A bare year with zero title overlap across
// all candidates is no match, not a forced guess.
func yearUniqueMatch(identity MovieIdentity, candidates []SearchCandidate) (SearchCandidate, bool) {
	var match SearchCandidate
	found := false
	for _, c := range candidates {
		if c.Year != identity.Year {
			continue
		}
		if textutil.Overlap(c.Title, identity.Title) == 0 {
			continue
		}
		if found {
			return SearchCandidate{}, false
		}
		match, found = c, true
	}
	return match, found
}

func exactTitleMatch(identity MovieIdentity, candidates []SearchCandidate) (SearchCandidate, bool) {
	var match SearchCandidate
	found := false
	for _, c := range candidates {
		if !textutil.EqualFold(c.Title, identity.Title) {
			continue
		}
		if !found || c.Rank < match.Rank {
			match, found = c, true
		}
	}
	return match, found
}
