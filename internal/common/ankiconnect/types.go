package ankiconnect

import (
	"encoding/json"
	"strconv"
)

// ProtocolVersion is the AnkiConnect API version every request is sent with.
// Version 5 and later answer with a {"result", "error"} object.
const ProtocolVersion = 5

const (
	ActionChangeDeck = "changeDeck"
	ActionAddNote    = "addNote"
)

// Request is the envelope every call is wrapped in.
type Request struct {
	Action  string      `json:"action"`
	Version int         `json:"version"`
	Params  interface{} `json:"params"`
	Key     string      `json:"key,omitempty"`
}

// ChangeDeckParams moves cards into a deck, creating the deck if it is missing.
type ChangeDeckParams struct {
	Cards []int64 `json:"cards"`
	Deck  string  `json:"deck"`
}

// Note is the payload of an addNote call.
type Note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
}

type AddNoteParams struct {
	Note Note `json:"note"`
}

// Response is a decoded reply. Result is nil when the reply carried a null or
// absent result.
type Response struct {
	Result json.RawMessage
	Error  string
	Raw    []byte
}

// HasResult reports whether the reply carried a non-null result.
func (r *Response) HasResult() bool {
	return r != nil && r.Result != nil
}

// NoteID returns the result as an integer id, as addNote reports it.
func (r *Response) NoteID() (int64, bool) {
	if !r.HasResult() {
		return 0, false
	}
	id, err := strconv.ParseInt(string(r.Result), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	KindResponse OutcomeKind = iota
	KindConnectionUnavailable
)

func (k OutcomeKind) String() string {
	switch k {
	case KindResponse:
		return "response"
	case KindConnectionUnavailable:
		return "connection_unavailable"
	}
	return "unknown"
}

// Outcome is the result of one call: either the endpoint could not be reached,
// or it answered with a Response.
type Outcome struct {
	Kind     OutcomeKind
	Response *Response
	// Cause is the transport error behind a KindConnectionUnavailable outcome.
	Cause error
}

func Responded(resp *Response) Outcome {
	return Outcome{Kind: KindResponse, Response: resp}
}

func ConnectionUnavailable(cause error) Outcome {
	return Outcome{Kind: KindConnectionUnavailable, Cause: cause}
}

// Reachable reports whether the endpoint answered.
func (o Outcome) Reachable() bool {
	return o.Kind == KindResponse
}

// Succeeded reports whether the endpoint answered with a non-null result.
// The error field is not consulted.
func (o Outcome) Succeeded() bool {
	return o.Reachable() && o.Response.HasResult()
}
