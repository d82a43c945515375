package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Dispatcher delivers one subject to a recipient list over a single transport
// session. Recipients are processed sequentially and in order; a failure for
// one recipient is recorded and the batch continues.
//
// A Dispatcher holds no per-batch state, so independent batches may run
// concurrently on the same Dispatcher.
type Dispatcher struct {
	config    DispatchConfig
	transport Transport
	logger    *slog.Logger
	metrics   *Metrics
}

// Option configures optional Dispatcher collaborators.
type Option func(*Dispatcher)

// WithLogger attaches a logger. Without one, log signals are dropped.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher creates a Dispatcher that sends through transport.
func NewDispatcher(config DispatchConfig, transport Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		config:    config,
		transport: transport,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// bodyFunc produces the message body for one recipient.
type bodyFunc func(Recipient) (string, error)

// SendPlain sends the same body to every recipient. The body is sent as given,
// even when empty.
//
// A nil recipients slice or a blank subject yields an *ArgumentError before
// any session is opened. An empty, non-nil slice returns an empty result.
// Cancelling ctx stops the batch before the next send, or before the session
// is opened, and the partial result is returned without error. A
// *SessionError is returned when the session cannot be opened or breaks
// mid-batch.
func (d *Dispatcher) SendPlain(ctx context.Context, recipients []Recipient, subject, body string) (*BatchResult, error) {
	if err := d.validate(recipients, subject); err != nil {
		d.metrics.batchFinished(OutcomeRejected, 0)
		return nil, err
	}
	return d.send(ctx, recipients, subject, func(Recipient) (string, error) {
		return body, nil
	})
}

// SendTemplated renders tmpl for each recipient with p and sends the result.
// It follows the same rules as SendPlain; p must not be nil. A personalizer
// error or panic is recorded as a failure for that recipient only.
func (d *Dispatcher) SendTemplated(ctx context.Context, recipients []Recipient, subject, tmpl string, p Personalizer) (*BatchResult, error) {
	if err := d.validate(recipients, subject); err != nil {
		d.metrics.batchFinished(OutcomeRejected, 0)
		return nil, err
	}
	if p == nil {
		d.metrics.batchFinished(OutcomeRejected, 0)
		return nil, &ArgumentError{
			Field:   "personalizer",
			Message: "a personalizer is required for templated sends; use SendPlain otherwise",
		}
	}
	return d.send(ctx, recipients, subject, func(r Recipient) (string, error) {
		return p.Personalize(tmpl, r)
	})
}

func (d *Dispatcher) validate(recipients []Recipient, subject string) error {
	if d.transport == nil {
		return &ArgumentError{Field: "transport", Message: "no transport configured"}
	}
	if err := d.config.Validate(); err != nil {
		return &ArgumentError{Field: "config", Message: err.Error()}
	}
	if recipients == nil {
		return &ArgumentError{Field: "recipients", Message: "recipient list is required"}
	}
	if strings.TrimSpace(subject) == "" {
		return &ArgumentError{Field: "subject", Message: "subject must not be blank"}
	}
	return nil
}

// send owns the session for the whole batch and guarantees it is closed on
// every return path.
func (d *Dispatcher) send(ctx context.Context, recipients []Recipient, subject string, body bodyFunc) (*BatchResult, error) {
	start := time.Now()
	result := newBatchResult(uuid.NewString(), len(recipients))
	log := d.logger.With("batch_id", result.id)

	if len(recipients) == 0 {
		d.metrics.batchFinished(OutcomeCompleted, 0)
		return result, nil
	}

	if ctx.Err() != nil {
		return d.cancelledBeforeOpen(log, result, start), nil
	}

	session, err := d.transport.Open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			log.Debug("transport open interrupted by cancellation", "error", err)
			return d.cancelledBeforeOpen(log, result, start), nil
		}
		var sessErr *SessionError
		if !errors.As(err, &sessErr) {
			err = &SessionError{Op: "open", Err: err}
		}
		log.Error("opening transport session failed", "transport", d.transport.Name(), "error", err)
		d.metrics.batchFinished(OutcomeAborted, time.Since(start))
		return nil, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warn("closing transport session failed", "error", cerr)
		}
	}()

	log.Info("batch started", "transport", d.transport.Name(), "total", result.total)
	if err := d.deliverAll(ctx, log, session, result, recipients, subject, body); err != nil {
		log.Error("batch aborted", "error", err, "sent", result.SuccessCount(), "total", result.total)
		d.metrics.batchFinished(OutcomeAborted, time.Since(start))
		return nil, err
	}

	result.duration = time.Since(start)
	outcome := OutcomeCompleted
	if result.cancelled {
		outcome = OutcomeCancelled
	}
	d.metrics.batchFinished(outcome, result.duration)
	log.Info("batch finished",
		"outcome", outcome,
		"sent", result.SuccessCount(),
		"failed", result.FailureCount(),
		"skipped", result.skipped,
		"total", result.total,
	)
	return result, nil
}

// cancelledBeforeOpen finishes a batch that was cancelled before any session
// existed: nothing was sent and nothing failed.
func (d *Dispatcher) cancelledBeforeOpen(log *slog.Logger, result *BatchResult, start time.Time) *BatchResult {
	result.cancelled = true
	result.duration = time.Since(start)
	d.metrics.batchFinished(OutcomeCancelled, result.duration)
	log.Warn("batch cancelled", "sent", 0, "total", result.total)
	return result
}

// deliverAll runs the per-recipient loop. It returns an error only for
// session-level failures.
func (d *Dispatcher) deliverAll(
	ctx context.Context,
	log *slog.Logger,
	session Session,
	result *BatchResult,
	recipients []Recipient,
	subject string,
	body bodyFunc,
) error {
	total := len(recipients)
	last := lastRecipientIndex(recipients)

	for i, r := range recipients {
		if isNilRecipient(r) {
			result.skipped++
			d.metrics.recipientSkipped()
			log.Warn("recipient is nil, skipping", "position", i+1, "total", total)
			continue
		}
		if ctx.Err() != nil {
			result.cancelled = true
			log.Warn("batch cancelled", "sent", result.SuccessCount(), "total", total)
			return nil
		}

		address, ok := recipientAddress(r)
		if !ok {
			result.skipped++
			d.metrics.recipientSkipped()
			log.Warn("recipient has no usable address, skipping", "position", i+1, "total", total)
			continue
		}
		err := d.deliver(ctx, session, r, address, subject, body)
		var delivErr *DeliveryError
		switch {
		case err == nil:
			result.recordSuccess(address)
			d.metrics.messageSent()
			log.Info("message sent", "email", address, "position", i+1, "total", total)
		case errors.As(err, &delivErr):
			result.recordFailure(address, delivErr.Err.Error())
			d.metrics.messageFailed()
			log.Error("message delivery failed",
				"email", address, "position", i+1, "total", total, "error", delivErr.Err)
		default:
			return err
		}

		if i < last && d.config.Delay > 0 {
			sleep(ctx, d.config.Delay)
		}
	}
	return nil
}

// deliver composes and sends one message. The send itself is detached from
// ctx cancellation so an in-flight message is never cut off.
func (d *Dispatcher) deliver(ctx context.Context, session Session, r Recipient, address, subject string, body bodyFunc) error {
	content, err := compose(body, r)
	if err != nil {
		return &DeliveryError{Address: address, Err: err}
	}

	msg := &Message{
		FromAddress: d.config.FromAddress,
		FromName:    d.config.FromName,
		To:          address,
		Subject:     subject,
		Body:        content,
	}
	if err := session.Send(context.WithoutCancel(ctx), msg); err != nil {
		var sessErr *SessionError
		if errors.As(err, &sessErr) {
			return err
		}
		return &DeliveryError{Address: address, Err: err}
	}
	return nil
}

// compose calls body with panic recovery so a faulty personalizer only fails
// its own recipient.
func compose(body bodyFunc, r Recipient) (content string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("personalizer panicked: %v", p)
		}
	}()
	return body(r)
}

// recipientAddress reads r's address. ok is false when EmailAddress panics,
// which is how a nil receiver of a caller-defined type usually shows up.
func recipientAddress(r Recipient) (address string, ok bool) {
	defer func() {
		if recover() != nil {
			address, ok = "", false
		}
	}()
	return r.EmailAddress(), true
}

// lastRecipientIndex returns the index of the last non-nil recipient, or -1.
func lastRecipientIndex(recipients []Recipient) int {
	for i := len(recipients) - 1; i >= 0; i-- {
		if !isNilRecipient(recipients[i]) {
			return i
		}
	}
	return -1
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
