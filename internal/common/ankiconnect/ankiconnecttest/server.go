// Package ankiconnecttest provides an in-process AnkiConnect stand-in for tests.
package ankiconnecttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is a request as the server received it.
type RecordedRequest struct {
	Action  string          `json:"action"`
	Version int             `json:"version"`
	Key     string          `json:"key,omitempty"`
	Params  json.RawMessage `json:"params"`
}

// Note is a stored addNote payload.
type Note struct {
	ID        int64             `json:"-"`
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
}

// Server mimics the two AnkiConnect actions the submitter uses. changeDeck
// creates the deck and answers with a null result, as the real service does;
// addNote stores the note and answers with its id.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	decks    map[string]bool
	notes    []Note
	nextID   int64
	failures map[string]string
	raw      map[string]string
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	s := &Server{
		decks:    map[string]bool{"Default": true},
		nextID:   1496198395707,
		failures: map[string]string{},
		raw:      map[string]string{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// FailAction makes action answer {"result": null, "error": message}.
func (s *Server) FailAction(action, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[action] = message
}

// RespondRaw makes action answer with body verbatim.
func (s *Server) RespondRaw(action, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[action] = body
}

func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Actions returns the action names in the order they were received.
func (s *Server) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	for i, r := range s.requests {
		out[i] = r.Action
	}
	return out
}

func (s *Server) Notes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Note(nil), s.notes...)
}

func (s *Server) HasDeck(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decks[name]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var req RecordedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, nil, "failed to parse request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	if body, ok := s.raw[req.Action]; ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
		return
	}
	if msg, ok := s.failures[req.Action]; ok {
		writeJSON(w, nil, msg)
		return
	}
	if req.Version != 5 {
		writeJSON(w, nil, "unsupported version")
		return
	}

	switch req.Action {
	case "changeDeck":
		var params struct {
			Cards []int64 `json:"cards"`
			Deck  string  `json:"deck"`
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			writeJSON(w, nil, err.Error())
			return
		}
		s.decks[params.Deck] = true
		writeJSON(w, nil, "")
	case "addNote":
		var params struct {
			Note Note `json:"note"`
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			writeJSON(w, nil, err.Error())
			return
		}
		if !s.decks[params.Note.DeckName] {
			writeJSON(w, nil, "deck was not found: "+params.Note.DeckName)
			return
		}
		params.Note.ID = s.nextID
		s.nextID++
		s.notes = append(s.notes, params.Note)
		writeJSON(w, params.Note.ID, "")
	default:
		writeJSON(w, nil, "unsupported action")
	}
}

// UnreachableURL returns the URL of a server that has already been shut down,
// so connecting to it is refused.
func UnreachableURL(t testing.TB) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func writeJSON(w http.ResponseWriter, result interface{}, errMsg string) {
	var errField interface{}
	if errMsg != "" {
		errField = errMsg
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"result": result,
		"error":  errField,
	})
}
