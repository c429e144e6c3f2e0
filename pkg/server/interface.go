/*
Package server implements msgpack IPC for the UniNav client core.

The server speaks a request/response protocol over stdin/stdout. Each
request carries an ID, a command, and the fields that command needs; the
reply echoes the ID so callers can pipeline. Encoding is binary msgpack
on both directions, a stream of values rather than delimited lines.

Suggestion requests look like:

	{"id": "req_001", "cmd": "suggest", "q": "csc"}

and come back ranked:

	{"id": "req_001", "s": [{"t": "CSC201", "src": "history", "c": 0.9}], "n": 1, "ms": 0}

Mutation requests name a target, an operation, and the IDs involved:

	{"id": "mut_001", "cmd": "mutate", "target": "bookmark", "op": "delete", "tid": "bm-42"}

The reply is sent after the mutation settles, so a "done" status means
the backend confirmed and an "error" status means the cache was rolled
back already.
*/
package server

// Request is an incoming IPC request. Only the fields relevant to the
// command need to be set.
type Request struct {
	ID      string `msgpack:"id"`
	Command string `msgpack:"cmd"`

	// suggest / complete / history_save
	Query string `msgpack:"q,omitempty"`
	Limit int    `msgpack:"l,omitempty"`

	// mutate
	Target       string `msgpack:"target,omitempty"`
	Op           string `msgpack:"op,omitempty"`
	TargetID     string `msgpack:"tid,omitempty"`
	DepartmentID string `msgpack:"dept,omitempty"`
	MaterialID   string `msgpack:"mid,omitempty"`
	Label        string `msgpack:"label,omitempty"`
}

// SuggestionItem is one ranked completion on the wire.
type SuggestionItem struct {
	Text       string  `msgpack:"t"`
	Source     string  `msgpack:"src"`
	Confidence float64 `msgpack:"c"`
}

// SuggestResponse answers a "suggest" request.
type SuggestResponse struct {
	ID          string           `msgpack:"id"`
	Suggestions []SuggestionItem `msgpack:"s"`
	Count       int              `msgpack:"n"`
	TimeTaken   int64            `msgpack:"ms"`
}

// CompleteResponse answers a "complete" (tab completion) request.
// Accepted is false when no candidate forward-completes the query.
type CompleteResponse struct {
	ID       string `msgpack:"id"`
	Text     string `msgpack:"t,omitempty"`
	Accepted bool   `msgpack:"ok"`
}

// MutateResponse answers a "mutate" request after it settles.
type MutateResponse struct {
	ID          string `msgpack:"id"`
	Status      string `msgpack:"status"`
	Error       string `msgpack:"error,omitempty"`
	TempID      string `msgpack:"temp_id,omitempty"`
	ConfirmedID string `msgpack:"confirmed_id,omitempty"`
}

// StatusResponse answers commands that only succeed or fail.
type StatusResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Error  string `msgpack:"error,omitempty"`
	Code   int    `msgpack:"code,omitempty"`
}
