// Package logs backs `reelmux logs`. It pages through the daemon's
// /api/logs endpoint and, when no daemon answers, tails reelmuxd.log
// directly so the command still works after a crash.
package logs
