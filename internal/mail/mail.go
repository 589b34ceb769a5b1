// Package mail delivers transactional HTML email.
package mail

import (
	"context"
	"sync"
	"time"

	"github.com/hongminglow/itarix-api/internal/logging"
)

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender logs messages instead of delivering them. It is used when no
// SMTP host is configured.
type LogSender struct {
	Logger logging.Logger
}

func (l LogSender) Send(ctx context.Context, msg Message) error {
	l.Logger.Info(ctx, "email not delivered, smtp disabled", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Async sends through next on background goroutines so callers never wait
// on delivery. Failures are logged.
type Async struct {
	next    Sender
	log     logging.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAsync wraps next. Each send gets its own timeout, detached from the
// caller's context.
func NewAsync(next Sender, log logging.Logger, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Async{next: next, log: log, timeout: timeout}
}

// Send schedules delivery and returns immediately.
func (a *Async) Send(ctx context.Context, msg Message) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()

		if err := a.next.Send(sendCtx, msg); err != nil {
			a.log.Error(sendCtx, "send email", "to", msg.To, "subject", msg.Subject, "error", err)
		}
	}()
	return nil
}

// Wait blocks until every scheduled send has finished or ctx is done.
func (a *Async) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
