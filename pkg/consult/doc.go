// Package consult is the client core of a guardian consultation.
//
// A Consult owns one live session: it mirrors the backend's state
// machine, keeps the transcript and safety-alert history, routes
// microphone audio out and synthesized warning audio in, and reduces
// everything to a stream of UI-ready snapshots. All session state is
// mutated by a single dispatch goroutine; the rest of the program talks
// to it through commands and the Updates stream.
package consult
