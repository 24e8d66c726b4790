package submitter

import (
	"context"
	"time"

	"card-submitter/internal/common/ankiconnect"
	"card-submitter/internal/common/errors"
	"card-submitter/internal/common/logger"
	"card-submitter/internal/common/metrics"
	"card-submitter/internal/common/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Service struct {
	config *Config
	logger logger.Logger
	remote Remote
	obs    *observability.Observability
}

// NewService builds a submitter. When deps.Remote is nil an AnkiConnect client
// is created from config.
func NewService(deps ServiceDependencies, config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	remote := deps.Remote
	if remote == nil {
		remote = ankiconnect.NewClient(ankiconnect.Options{
			URL:     config.URL,
			APIKey:  config.APIKey,
			Timeout: config.Timeout,
			Tracer:  deps.Observability.Tracer(),
			Logger:  log,
		})
	}

	return &Service{
		config: config,
		logger: log,
		remote: remote,
		obs:    deps.Observability,
	}
}

// EnsureDeck asks the endpoint to create deck if it does not exist yet.
func (s *Service) EnsureDeck(ctx context.Context, deck string) (ankiconnect.Outcome, error) {
	return s.remote.ChangeDeck(ctx, nil, deck)
}

// AddNote parses fieldsJSON and adds one note to deck.
func (s *Service) AddNote(ctx context.Context, deck, model, fieldsJSON string) (ankiconnect.Outcome, error) {
	fields, err := ParseFields(fieldsJSON)
	if err != nil {
		return ankiconnect.Outcome{}, err
	}
	return s.addNote(ctx, deck, model, fields)
}

func (s *Service) addNote(ctx context.Context, deck, model string, fields map[string]string) (ankiconnect.Outcome, error) {
	return s.remote.AddNote(ctx, ankiconnect.Note{
		DeckName:  deck,
		ModelName: model,
		Fields:    fields,
	})
}

// Submit ensures the deck exists and adds the note. The add-note call is only
// skipped when the endpoint is unreachable; a reachable endpoint answering the
// deck call with a null result does not stop the run. Success is decided by
// the add-note result alone.
func (s *Service) Submit(ctx context.Context, input *Input) (*Output, error) {
	startTime := time.Now()
	ctx, span := s.obs.StartSpan(ctx, "submitter.submit",
		attribute.String("deck", input.Deck),
		attribute.String("model", input.Model),
	)
	defer span.End()

	output, err := s.submit(ctx, input)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailure
		if errors.IsAbnormal(errors.CodeOf(err)) {
			result = metrics.ResultAborted
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, string(errors.CodeOf(err)))
	}
	metrics.SubmissionsTotal.WithLabelValues(result).Inc()
	s.obs.RecordSubmission(ctx, result, time.Since(startTime))

	return output, err
}

func (s *Service) submit(ctx context.Context, input *Input) (*Output, error) {
	// Fields are checked before the deck call, so bad input never creates a deck.
	fields, err := ParseFields(input.Fields)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Submitting card", map[string]interface{}{
		"deck":   input.Deck,
		"model":  input.Model,
		"fields": len(fields),
	})

	outcome, err := s.EnsureDeck(ctx, input.Deck)
	if err != nil {
		return nil, err
	}
	if !outcome.Reachable() {
		return nil, errors.NewConnectionUnavailableError(ankiconnect.ActionChangeDeck, outcome.Cause)
	}
	if !outcome.Succeeded() && outcome.Response.Error != "" {
		s.logger.Debug("Deck step reported an error, adding note anyway", map[string]interface{}{
			"deck":        input.Deck,
			"remoteError": outcome.Response.Error,
		})
	}

	outcome, err = s.addNote(ctx, input.Deck, input.Model, fields)
	if err != nil {
		return nil, err
	}
	if !outcome.Reachable() {
		return nil, errors.NewConnectionUnavailableError(ankiconnect.ActionAddNote, outcome.Cause)
	}
	if !outcome.Succeeded() {
		return nil, errors.NewRemoteOperationFailedError(ankiconnect.ActionAddNote, outcome.Response.Error)
	}

	output := &Output{
		Success:     true,
		Message:     "Note added",
		Deck:        input.Deck,
		Model:       input.Model,
		RemoteError: outcome.Response.Error,
	}
	if id, ok := outcome.Response.NoteID(); ok {
		output.NoteID = id
	}

	s.logger.Info("Note added", map[string]interface{}{
		"deck":   input.Deck,
		"model":  input.Model,
		"noteId": output.NoteID,
	})

	return output, nil
}
