// Package textutil provides title normalization and token-overlap helpers
// used when comparing user-supplied movie titles against catalog results.
//
// Normalization lowercases text, maps common symbols to word equivalents, and
// strips everything that is not a letter or digit so that "Breakfast at
// Tiffany's" and "breakfast at tiffany" compare equal.
package textutil
