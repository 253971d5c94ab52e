// Package requests persists movie acquisition requests in SQLite so the
// download monitor can notify each requester exactly once when a download
// starts and once when it completes, across daemon restarts.
package requests
