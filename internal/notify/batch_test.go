package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingSender fails for the recipients in failFor.
type failingSender struct {
	mu      sync.Mutex
	failFor map[string]bool
	sent    []string
}

func (s *failingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[msg.To] {
		return errors.New("delivery refused")
	}
	s.sent = append(s.sent, msg.To)
	return nil
}

func TestSendBatchAllSent(t *testing.T) {
	sender := &failingSender{}
	out := SendBatch(context.Background(), sender, time.Second, []Message{
		{To: "patient@example.com", Subject: "Your visit is confirmed"},
		{To: "doctor@medikah.example", Subject: "New appointment"},
	})

	assert.True(t, out.AllSent())
	assert.False(t, out.Partial())
	assert.False(t, out.AllFailed())
	require.Len(t, out.Results, 2)
	assert.NoError(t, out.Results[0].Err)
	assert.NoError(t, out.Results[1].Err)
}

func TestSendBatchPartialFailure(t *testing.T) {
	sender := &failingSender{failFor: map[string]bool{"doctor@medikah.example": true}}
	out := SendBatch(context.Background(), sender, time.Second, []Message{
		{To: "patient@example.com"},
		{To: "doctor@medikah.example"},
	})

	assert.True(t, out.Partial())
	assert.False(t, out.AllSent())
	assert.False(t, out.AllFailed())

	// Results keep input order, so the caller can tell who was missed.
	assert.NoError(t, out.Results[0].Err)
	assert.Error(t, out.Results[1].Err)
}

func TestSendBatchTotalFailure(t *testing.T) {
	sender := &failingSender{failFor: map[string]bool{
		"patient@example.com":   true,
		"doctor@medikah.example": true,
	}}
	out := SendBatch(context.Background(), sender, time.Second, []Message{
		{To: "patient@example.com"},
		{To: "doctor@medikah.example"},
	})

	assert.True(t, out.AllFailed())
	assert.False(t, out.Partial())
}

func TestSendBatchTimeout(t *testing.T) {
	slow := senderFunc(func(ctx context.Context, _ Message) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	})

	start := time.Now()
	out := SendBatch(context.Background(), slow, 50*time.Millisecond, []Message{{To: "patient@example.com"}})
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, out.AllFailed())
	assert.ErrorIs(t, out.Results[0].Err, context.DeadlineExceeded)
}

type senderFunc func(ctx context.Context, msg Message) error

func (f senderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

func TestStubEmailSenderRecords(t *testing.T) {
	stub := NewStubEmailSender(nil)
	require.NoError(t, stub.Send(context.Background(), Message{To: "patient@example.com", Subject: "hi"}))

	sent := stub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "patient@example.com", sent[0].To)
}
