// Package state keeps per-user conversation state in process memory.
//
// Entries expire after a period of inactivity. Expired entries are removed by
// a sweeper that runs on a cron schedule owned by the store and is started and
// stopped explicitly by the application lifecycle.
package state
