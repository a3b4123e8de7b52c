package services

import (
	"context"
	"log"
	"time"

	"github.com/mtconnors79/mindwell-app-sub000/internal/metrics"
	"github.com/mtconnors79/mindwell-app-sub000/internal/notify"
)

// notifier wraps a notify.Dispatcher with the fire-and-forget semantics the
// lifecycle operations need: dispatch happens on its own goroutine with a
// bounded timeout, outside the primary transaction boundary, and a failure
// is logged and counted but never reaches the caller.
type notifier struct {
	dispatcher notify.Dispatcher
	timeout    time.Duration
	recorder   metrics.Recorder
}

func newNotifier(d notify.Dispatcher, timeout time.Duration, recorder metrics.Recorder) *notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &notifier{dispatcher: d, timeout: timeout, recorder: recorder}
}

func (n *notifier) dispatchAsync(ev notify.Event) {
	if n == nil || n.dispatcher == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		err := n.dispatcher.Dispatch(ctx, ev)
		n.recorder.RecordNotification(string(ev.Kind), err == nil)
		if err != nil {
			log.Printf("notification dispatch failed: %v", err)
		}
	}()
}
