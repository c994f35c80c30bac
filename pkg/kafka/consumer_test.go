package kafka

import (
	"context"
	"testing"
)

func TestConsumerMiddlewareChainOrder(t *testing.T) {
	var order []string

	c := &Consumer{
		handler: func(_ context.Context, _ Message) error {
			order = append(order, "handler")
			return nil
		},
	}
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		order = append(order, "first")
		return next(ctx, msg)
	})
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		order = append(order, "second")
		return next(ctx, msg)
	})

	if err := c.chainedHandler()(context.Background(), Message{}); err != nil {
		t.Fatalf("chain: %v", err)
	}

	want := []string{"first", "second", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}
