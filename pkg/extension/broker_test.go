package extension_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veildesk/veildesk/pkg/extension"
	"github.com/veildesk/veildesk/pkg/overlay/event"
)

func TestBrokerEmitCallsOneListener(t *testing.T) {
	broker := &extension.EventBroker[event.DismissedEvent, bool]{}

	// Setup listener.
	var got string
	broker.AddListener("x", func(ev event.DismissedEvent) *bool {
		got = ev.ID
		return nil
	})

	broker.Emit(&event.DismissedEvent{ID: "c1"})
	assert.Equal(t, "c1", got)
}

func TestBrokerEmitCallsListenersInOrder(t *testing.T) {
	broker := &extension.EventBroker[string, bool]{}

	// Setup listeners.
	var order []string
	mark := func(name string) func(string) *bool {
		return func(string) *bool {
			order = append(order, name)
			return nil
		}
	}
	broker.AddListener("1", mark("1"))
	broker.AddListener("2", mark("2"))

	want := "hi"
	broker.Emit(&want)
	assert.Equal(t, []string{"1", "2"}, order)
}

func TestBrokerEmitCapturesFirstResult(t *testing.T) {
	broker := &extension.EventBroker[struct{}, string]{}

	// Setup listeners; first non-nil result wins.
	makeListener := func(result *string) func(struct{}) *string {
		return func(struct{}) *string { return result }
	}
	first := "first"
	second := "second"
	broker.AddListener("0", makeListener(nil))
	broker.AddListener("1", makeListener(&first))
	broker.AddListener("2", makeListener(&second))

	got := broker.Emit(&struct{}{})
	require.NotNil(t, got)
	assert.Equal(t, first, *got)
}

func TestBrokerAddingDuplicateNameReplacesPrevious(t *testing.T) {
	broker := &extension.EventBroker[string, bool]{}

	// Setup listeners.
	var firstGot, secondGot string
	broker.AddListener("dup", func(s string) *bool {
		firstGot = s
		return nil
	})
	broker.AddListener("dup", func(s string) *bool {
		secondGot = s
		return nil
	})

	want := "hi"
	broker.Emit(&want)
	assert.Empty(t, firstGot, "replaced listener must not be called")
	assert.Equal(t, want, secondGot)
}

func TestBrokerRemovingListenerSuccessful(t *testing.T) {
	broker := &extension.EventBroker[string, bool]{}

	// Setup listeners.
	var firstGot, secondGot string
	broker.AddListener("1", func(s string) *bool {
		firstGot = s
		return nil
	})
	broker.AddListener("2", func(s string) *bool {
		secondGot = s
		return nil
	})
	broker.RemoveListener("1")

	want := "hi"
	broker.Emit(&want)
	assert.Empty(t, firstGot)
	assert.Equal(t, want, secondGot)
}

func TestBrokerRemovingMissingListener(t *testing.T) {
	broker := &extension.EventBroker[string, bool]{}
	broker.RemoveListener("doesn't crash")
}

// Simple smoke test without using AsyncTestListener.
func TestAsyncBrokerEmitCallsOneListener(t *testing.T) {
	broker := &extension.AsyncEventBroker[event.SentEvent]{}

	// Setup listener.
	events := make(chan event.SentEvent, 1)
	broker.AddListener("x", func(ev event.SentEvent) {
		events <- ev
	})

	broker.Emit(&event.SentEvent{To: "bob@example.com"})

	select {
	case ev := <-events:
		assert.Equal(t, "bob@example.com", ev.To)
	case <-time.After(time.Second * 2):
		t.Fatal("Timeout waiting for event")
	}
}

func TestAsyncBrokerEmitCallsMultipleListeners(t *testing.T) {
	broker := &extension.AsyncEventBroker[string]{}

	// Setup listeners.
	first := broker.AsyncTestListener("first", 1)
	second := broker.AsyncTestListener("second", 1)

	want := "hi"
	broker.Emit(&want)

	firstGot, err := first()
	require.NoError(t, err)
	assert.Equal(t, want, *firstGot)

	secondGot, err := second()
	require.NoError(t, err)
	assert.Equal(t, want, *secondGot)
}

func TestAsyncBrokerAddingDuplicateNameReplacesPrevious(t *testing.T) {
	broker := &extension.AsyncEventBroker[string]{}

	// Setup listeners.
	first := broker.AsyncTestListener("dup", 1)
	second := broker.AsyncTestListener("dup", 1)

	want := "hi"
	broker.Emit(&want)

	firstGot, err := first()
	require.Error(t, err)
	assert.Nil(t, firstGot)

	secondGot, err := second()
	require.NoError(t, err)
	assert.Equal(t, want, *secondGot)
}

func TestAsyncBrokerRemovingListenerSuccessful(t *testing.T) {
	broker := &extension.AsyncEventBroker[string]{}

	// Setup listeners.
	first := broker.AsyncTestListener("1", 1)
	second := broker.AsyncTestListener("2", 1)
	broker.RemoveListener("1")

	want := "hi"
	broker.Emit(&want)

	firstGot, err := first()
	require.Error(t, err)
	assert.Nil(t, firstGot)

	secondGot, err := second()
	require.NoError(t, err)
	assert.Equal(t, want, *secondGot)
}

func TestAsyncBrokerRemovingMissingListener(t *testing.T) {
	broker := &extension.AsyncEventBroker[string]{}
	broker.RemoveListener("doesn't crash")
}
