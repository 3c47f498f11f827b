// Package session holds the client side of an identification: which image
// the user picked and the lifecycle of the request made for it.
//
// A Session enforces that exactly one of a file or a URL is selected at a
// time. Submit turns the selection into one request, moves the session to
// Loading before it returns, and later to Succeeded or Failed. A submit made
// while another is in flight supersedes it: the older call is cancelled and
// its outcome is never written to the session.
package session
