package buzzer

import (
	"context"

	"code.sztanpet.net/zvpsz/buzzer/internal/pattern"
)

const DefaultQueueSize = 8

// Queue hands beep requests from any number of senders to a single player.
// Senders never block, a full queue drops the request.
type Queue struct {
	ctrl *Controller
	reqs chan pattern.Pattern
}

func NewQueue(ctrl *Controller, size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		ctrl: ctrl,
		reqs: make(chan pattern.Pattern, size),
	}
}

// Request queues p and reports whether there was room for it.
func (q *Queue) Request(p pattern.Pattern) bool {
	select {
	case q.reqs <- p:
		return true
	default:
		requestsDropped.Inc()
		logger.Debugf("beep queue full, dropping %v", p)
		return false
	}
}

// Run plays queued patterns until ctx is cancelled, it always returns ctx.Err().
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p := <-q.reqs:
			if err := q.ctrl.Buzz(p); err != nil {
				logger.Debugf("queued beep %v: %v", p, err)
			}
		}
	}
}
