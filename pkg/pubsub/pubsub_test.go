package pubsub

import "testing"

func TestMatchTopic(t *testing.T) {
	cases := []struct {
		name    string
		pattern string
		key     string
		match   bool
	}{
		{name: "exact", pattern: "order.created", key: "order.created", match: true},
		{name: "exact mismatch", pattern: "order.created", key: "order.paid", match: false},
		{name: "star one segment", pattern: "order.*", key: "order.paid", match: true},
		{name: "star not two segments", pattern: "order.*", key: "order.status.updated", match: false},
		{name: "hash multi segment", pattern: "order.#", key: "order.status.updated", match: true},
		{name: "hash zero segments", pattern: "order.#", key: "order", match: true},
		{name: "hash wrong prefix", pattern: "order.#", key: "storage.orders", match: false},
		{name: "embedded star", pattern: "storage.*", key: "storage.orders", match: true},
		{name: "catch all", pattern: "#", key: "poll.tick", match: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bus := New()
			got := 0
			bus.Subscribe(tc.pattern, func(Event) { got++ })
			bus.Publish(tc.key, nil)
			if (got == 1) != tc.match {
				t.Fatalf("pattern %q key %q: expected match=%v, got %d deliveries", tc.pattern, tc.key, tc.match, got)
			}
		})
	}
}

func TestPublishFanOut(t *testing.T) {
	bus := New()

	var ready, all int
	bus.Subscribe("order.status.updated", func(Event) { ready++ })
	bus.Subscribe("order.#", func(Event) { all++ })
	bus.Subscribe("storage.orders", func(Event) { t.Fatal("storage subscriber must not fire") })

	bus.Publish("order.status.updated", "o-1")
	bus.Publish("order.created", "o-2")

	if ready != 1 {
		t.Fatalf("expected 1 status delivery, got %d", ready)
	}
	if all != 2 {
		t.Fatalf("expected 2 order.# deliveries, got %d", all)
	}
}

func TestPayloadAndKeyDelivered(t *testing.T) {
	bus := New()

	var got Event
	bus.Subscribe("order.paid", func(e Event) { got = e })
	bus.Publish("order.paid", "order-42")

	if got.Key != "order.paid" {
		t.Fatalf("expected key order.paid, got %q", got.Key)
	}
	if got.Payload != "order-42" {
		t.Fatalf("expected payload order-42, got %v", got.Payload)
	}
}
