// Package monitor watches journaled movie requests and reports download
// progress back to the requester over SMS.
//
// The monitor polls Radarr on an interval. A request moves from requested to
// downloading when Radarr's queue shows activity for the movie, and to
// available once the movie has a file on disk. The requester is notified at
// each transition exactly once; once the completion notice is delivered the
// request leaves the active set and is never polled again.
package monitor
