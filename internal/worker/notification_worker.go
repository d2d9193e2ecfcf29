package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/resolvease/complaint-service/internal/events"
	"github.com/resolvease/complaint-service/internal/service"
)

const defaultQueueSize = 256

// NotificationWorker moves notification delivery off the request path.
type NotificationWorker struct {
	queue   chan events.Event
	handler func(context.Context, events.Event) error
	logger  *zap.Logger
	done    chan struct{}
	stop    sync.Once
	wg      sync.WaitGroup
}

// StartNotificationWorker subscribes to every complaint event and delivers them on a background goroutine.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, logger *zap.Logger, queueSize int) *NotificationWorker {
	if dispatcher == nil || notificationService == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	w := &NotificationWorker{
		queue:   make(chan events.Event, queueSize),
		handler: notificationService.Handle,
		logger:  logger,
		done:    make(chan struct{}),
	}
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case <-w.done:
		w.logger.Warn("notification worker stopped; dropping event", zap.String("event_id", event.ID))
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (w *NotificationWorker) run() {
	defer w.wg.Done()
	for {
		select {
		case event := <-w.queue:
			w.deliver(event)
		case <-w.done:
			for {
				select {
				case event := <-w.queue:
					w.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (w *NotificationWorker) deliver(event events.Event) {
	if err := w.handler(context.Background(), event); err != nil {
		w.logger.Warn("notification delivery failed",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

// Stop drains queued events and waits for the worker to exit.
func (w *NotificationWorker) Stop() {
	if w == nil {
		return
	}
	w.stop.Do(func() { close(w.done) })
	w.wg.Wait()
}
