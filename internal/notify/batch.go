package notify

import (
	"context"
	"sync"
	"time"
)

// DefaultSendTimeout bounds one delivery attempt.
const DefaultSendTimeout = 15 * time.Second

// SendResult pairs a message with its delivery outcome.
type SendResult struct {
	Message Message
	Err     error
}

// BatchOutcome reports per-message results so partial failure is
// distinguishable from total failure.
type BatchOutcome struct {
	Results []SendResult
}

func (o BatchOutcome) failures() int {
	n := 0
	for _, r := range o.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// AllSent reports every message delivered.
func (o BatchOutcome) AllSent() bool {
	return len(o.Results) > 0 && o.failures() == 0
}

// Partial reports a mix of delivered and failed messages.
func (o BatchOutcome) Partial() bool {
	f := o.failures()
	return f > 0 && f < len(o.Results)
}

// AllFailed reports that nothing was delivered.
func (o BatchOutcome) AllFailed() bool {
	return len(o.Results) > 0 && o.failures() == len(o.Results)
}

// SendBatch dispatches the messages concurrently, one goroutine each, with a
// per-message timeout. The messages of one batch are independent; a failure
// never cancels the others. Results keep the input order.
func SendBatch(ctx context.Context, sender EmailSender, timeout time.Duration, messages []Message) BatchOutcome {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	results := make([]SendResult, len(messages))

	var wg sync.WaitGroup
	for i, msg := range messages {
		wg.Add(1)
		go func(i int, msg Message) {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			results[i] = SendResult{Message: msg, Err: sender.Send(sendCtx, msg)}
		}(i, msg)
	}
	wg.Wait()

	return BatchOutcome{Results: results}
}
