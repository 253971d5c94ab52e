// Package tmdb provides the TMDB movie search client used to turn a resolved
// movie identity into catalog candidates.
package tmdb
