// Package notify fans submission events out to the couple's chat and inbox.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Message is one notification. Body is Telegram-flavoured HTML (b, i tags and newlines).
type Message struct {
	Subject string
	Body    string
}

// Notifier delivers a message to one channel.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// configurable is implemented by notifiers that may be missing credentials.
type configurable interface {
	Configured() bool
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

const DefaultTimeout = 10 * time.Second

// Dispatcher sends messages to every notifier in the background.
// Delivery errors are logged and never reach the caller.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewDispatcher keeps only the notifiers that are non-nil and configured.
func NewDispatcher(timeout time.Duration, notifiers ...Notifier) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &Dispatcher{timeout: timeout}
	for _, n := range notifiers {
		if n == nil {
			continue
		}
		if c, ok := n.(configurable); ok && !c.Configured() {
			continue
		}
		d.notifiers = append(d.notifiers, n)
	}
	return d
}

// Len returns the number of active notifiers.
func (d *Dispatcher) Len() int {
	if d == nil {
		return 0
	}
	return len(d.notifiers)
}

// Dispatch returns immediately; each notifier runs on its own goroutine with a timeout.
func (d *Dispatcher) Dispatch(msg Message) {
	if d == nil {
		return
	}
	for _, n := range d.notifiers {
		d.wg.Add(1)
		go func(n Notifier) {
			defer d.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Warn().Interface("panic", r).Str("subject", msg.Subject).Msg("notifier panicked")
				}
			}()
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			if err := n.Notify(ctx, msg); err != nil {
				log.Warn().Err(err).Str("subject", msg.Subject).Msg("notification failed")
			}
		}(n)
	}
}

// Wait blocks until in-flight notifications finish (shutdown, tests).
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
