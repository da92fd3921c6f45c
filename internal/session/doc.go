// Package session holds the connection and key state machines behind the
// dashboard.
//
// A Machine is driven from a single goroutine. Operations that need the
// store return a Cmd; the caller runs it anywhere and hands the Result back
// to Apply. Every pending state is stamped with a generation number taken
// from a counter that only grows, and Apply drops any Result whose
// generation no longer matches the live one. Late answers to a request the
// user has moved away from are therefore computed but never shown.
package session
