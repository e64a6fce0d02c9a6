// Package logs reads the daemon log file for the `podsweep logs` command.
// The CLI never touches the file directly; the daemon tails it over IPC so
// remote sockets work the same as local ones. Negative offsets mean "last N
// lines", non-negative offsets resume an earlier read, and follow mode polls
// for new lines under a context deadline so `podsweep logs -f` exits cleanly.
package logs
