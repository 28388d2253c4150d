package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMessageBuilder_Build(t *testing.T) {
	ts := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	msg, err := NewMessage().
		WithKey("m1").
		WithValue(map[string]string{"status": "confirmed"}).
		WithEventType("meeting.status_changed").
		WithSource("meetings").
		WithTimestamp(ts).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if msg.Key != "m1" {
		t.Errorf("Key = %q, want m1", msg.Key)
	}
	if string(msg.Value) != `{"status":"confirmed"}` {
		t.Errorf("Value = %s", msg.Value)
	}
	if msg.GetEventID() == "" {
		t.Error("event id header not generated")
	}
	if msg.GetEventType() != "meeting.status_changed" {
		t.Errorf("event type = %q", msg.GetEventType())
	}
	if msg.Headers[HeaderTimestamp] != "2025-03-10T09:00:00Z" {
		t.Errorf("timestamp header = %q", msg.Headers[HeaderTimestamp])
	}
}

func TestMessageBuilder_BuildReportsEncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("Build() error = %v, want ErrInvalidMessage", err)
	}
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	if got := msg.GetRetryCount(); got != 0 {
		t.Fatalf("GetRetryCount() = %d, want 0", got)
	}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("GetRetryCount() = %d, want 12", got)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{name: "nil", err: nil, want: ErrorTypeUnknown},
		{name: "explicit transient", err: NewTransientError("redis down", errors.New("x")), want: ErrorTypeTransient},
		{name: "wrapped permanent", err: fmt.Errorf("handler: %w", NewPermanentError("bad payload", nil)), want: ErrorTypePermanent},
		{name: "timeout text", err: errors.New("dial tcp: i/o Timeout"), want: ErrorTypeTransient},
		{name: "connection refused", err: errors.New("connection refused"), want: ErrorTypeTransient},
		{name: "unknown", err: errors.New("something odd"), want: ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryHandler(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{name: "succeeds first time", failures: 0, wantCalls: 1},
		{name: "transient then success", failures: 2, err: NewTransientError("t", nil), wantCalls: 3},
		{name: "transient exhausts retries", failures: 10, err: NewTransientError("t", nil), wantCalls: 3, wantErr: true},
		{name: "permanent is not retried", failures: 10, err: NewPermanentError("p", nil), wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			handler := func(ctx context.Context, msg Message) error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			}

			err := retryHandler(context.Background(), handler, Message{Headers: map[string]string{}}, 2)
			if (err != nil) != tt.wantErr {
				t.Errorf("retryHandler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestChain_RunsMiddlewareInOrder(t *testing.T) {
	var order []string
	mw := func(name string) ConsumerMiddleware {
		return func(ctx context.Context, msg Message, next MessageHandler) error {
			order = append(order, name)
			return next(ctx, msg)
		}
	}

	h := chain([]ConsumerMiddleware{mw("a"), mw("b")}, func(ctx context.Context, msg Message) error {
		order = append(order, "handler")
		return nil
	})
	if err := h(context.Background(), Message{}); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	want := []string{"a", "b", "handler"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}
