// Package radarr wraps the Radarr v3 API for library status checks and
// acquisition requests. A movie absent from Radarr is a valid lookup result,
// not an error.
package radarr
