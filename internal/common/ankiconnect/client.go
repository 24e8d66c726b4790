package ankiconnect

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	commonerrors "card-submitter/internal/common/errors"
	commonhttp "card-submitter/internal/common/http"
	"card-submitter/internal/common/logger"
	"card-submitter/internal/common/metrics"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultURL = "http://127.0.0.1:8765"

// Client talks to an AnkiConnect endpoint.
type Client struct {
	url        string
	apiKey     string
	httpClient *commonhttp.Client
	tracer     trace.Tracer
	logger     logger.Logger
}

type Options struct {
	URL    string
	APIKey string
	// Timeout applies when HTTPClient is nil; zero waits indefinitely.
	Timeout    time.Duration
	HTTPClient *commonhttp.Client
	Tracer     trace.Tracer
	Logger     logger.Logger
}

func NewClient(opts Options) *Client {
	c := &Client{
		url:        opts.URL,
		apiKey:     opts.APIKey,
		httpClient: opts.HTTPClient,
		tracer:     opts.Tracer,
		logger:     opts.Logger,
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	if c.httpClient == nil {
		c.httpClient = commonhttp.NewClient(opts.Timeout)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("card-submitter/ankiconnect")
	}
	if c.logger == nil {
		c.logger = logger.NewNoOpLogger()
	}
	return c
}

// URL returns the endpoint the client posts to.
func (c *Client) URL() string {
	return c.url
}

// ChangeDeck moves cards into deck. With no cards it only makes sure the deck exists.
func (c *Client) ChangeDeck(ctx context.Context, cards []int64, deck string) (Outcome, error) {
	if cards == nil {
		cards = []int64{}
	}
	return c.Invoke(ctx, ActionChangeDeck, ChangeDeckParams{Cards: cards, Deck: deck})
}

func (c *Client) AddNote(ctx context.Context, note Note) (Outcome, error) {
	return c.Invoke(ctx, ActionAddNote, AddNoteParams{Note: note})
}

// Invoke sends one request. Connection failures come back as a
// KindConnectionUnavailable outcome with a nil error; any other transport
// failure and any undecodable body come back as a StandardError.
func (c *Client) Invoke(ctx context.Context, action string, params interface{}) (Outcome, error) {
	ctx, span := c.tracer.Start(ctx, "ankiconnect."+action,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("ankiconnect.action", action),
			attribute.String("ankiconnect.url", c.url),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(Request{
		Action:  action,
		Version: ProtocolVersion,
		Params:  params,
		Key:     c.apiKey,
	})
	if err != nil {
		c.record(span, action, metrics.OutcomeTransportFailed, err)
		return Outcome{}, commonerrors.NewTransportFailedError(action, err)
	}

	c.logger.Debug("Sending request", map[string]interface{}{
		"action": action,
		"url":    c.url,
	})

	status, respBody, err := c.httpClient.PostJSON(ctx, c.url, body)
	if err != nil {
		if IsConnectionError(err) {
			c.record(span, action, metrics.OutcomeConnectionUnavailable, err)
			c.logger.Info("Endpoint unreachable", map[string]interface{}{
				"action": action,
				"url":    c.url,
				"error":  err.Error(),
			})
			return ConnectionUnavailable(err), nil
		}
		c.record(span, action, metrics.OutcomeTransportFailed, err)
		return Outcome{}, commonerrors.NewTransportFailedError(action, err)
	}

	resp, decodeErr := decodeResponse(action, respBody)
	if decodeErr != nil {
		c.record(span, action, metrics.OutcomeMalformedResponse, decodeErr)
		return Outcome{}, decodeErr
	}

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if resp.HasResult() {
		c.record(span, action, metrics.OutcomeOK, nil)
	} else {
		c.record(span, action, metrics.OutcomeNullResult, nil)
	}

	c.logger.Debug("Received response", map[string]interface{}{
		"action":    action,
		"status":    status,
		"hasResult": resp.HasResult(),
		"error":     resp.Error,
	})

	return Responded(resp), nil
}

func (c *Client) record(span trace.Span, action, outcome string, err error) {
	metrics.RequestsTotal.WithLabelValues(action, outcome).Inc()
	span.SetAttributes(attribute.String("ankiconnect.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
}

// decodeResponse reads result and error from a reply body. The HTTP status is
// not inspected; the body alone decides.
func decodeResponse(action string, body []byte) (*Response, error) {
	if !gjson.ValidBytes(body) {
		return nil, commonerrors.NewMalformedResponseError(action, "body is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, commonerrors.NewMalformedResponseError(action, "body is not a JSON object")
	}

	resp := &Response{Raw: body}
	if result := root.Get("result"); result.Exists() && result.Type != gjson.Null {
		resp.Result = json.RawMessage(result.Raw)
	}
	if remoteErr := root.Get("error"); remoteErr.Exists() && remoteErr.Type != gjson.Null {
		resp.Error = remoteErr.String()
	}
	return resp, nil
}

// IsConnectionError reports whether err means the endpoint could not be
// reached: dial and DNS failures, refused or reset connections, and a peer
// that hung up before answering. Cancellation and deadlines are not
// connection errors.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	return false
}
