package submitter

import (
	"context"

	"card-submitter/internal/common/ankiconnect"
	"card-submitter/internal/common/logger"
	"card-submitter/internal/common/observability"
)

// Input is the card as given on the command line. Fields is still JSON text.
type Input struct {
	Deck   string `json:"deck"`
	Model  string `json:"model"`
	Fields string `json:"fields"`
}

type Output struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	NoteID      int64  `json:"noteId,omitempty"`
	Deck        string `json:"deck"`
	Model       string `json:"model"`
	RemoteError string `json:"remoteError,omitempty"`
}

// Remote is the part of the AnkiConnect client the submitter needs.
type Remote interface {
	ChangeDeck(ctx context.Context, cards []int64, deck string) (ankiconnect.Outcome, error)
	AddNote(ctx context.Context, note ankiconnect.Note) (ankiconnect.Outcome, error)
}

type ServiceDependencies struct {
	Logger        logger.Logger
	Remote        Remote
	Observability *observability.Observability
}
