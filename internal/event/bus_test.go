package event

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribePublishSync(t *testing.T) {
	Reset()
	defer Reset()

	var got []Event
	unsub := Subscribe(GenerationThought, func(e Event) {
		got = append(got, e)
	})
	defer unsub()

	PublishSync(Event{Type: GenerationThought, Data: GenerationThoughtData{Thought: "planning"}})
	PublishSync(Event{Type: GenerationChunk, Data: GenerationChunkData{Text: "x"}})

	require.Len(t, got, 1)
	data, ok := got[0].Data.(GenerationThoughtData)
	require.True(t, ok)
	assert.Equal(t, "planning", data.Thought)
}

func TestPublishSyncOrdering(t *testing.T) {
	Reset()
	defer Reset()

	var order []string
	unsub := SubscribeAll(func(e Event) {
		order = append(order, string(e.Type))
	})
	defer unsub()

	PublishSync(Event{Type: GenerationThought})
	PublishSync(Event{Type: GenerationFile})
	PublishSync(Event{Type: GenerationCompleted})

	assert.Equal(t, []string{
		string(GenerationThought),
		string(GenerationFile),
		string(GenerationCompleted),
	}, order)
}

func TestUnsubscribe(t *testing.T) {
	Reset()
	defer Reset()

	count := 0
	unsub := Subscribe(GenerationChunk, func(e Event) { count++ })

	PublishSync(Event{Type: GenerationChunk})
	unsub()
	PublishSync(Event{Type: GenerationChunk})

	assert.Equal(t, 1, count)
}

func TestPublishAsync(t *testing.T) {
	Reset()
	defer Reset()

	var mu sync.Mutex
	var got int
	done := make(chan struct{})

	unsub := Subscribe(ProjectUpdated, func(e Event) {
		mu.Lock()
		got++
		mu.Unlock()
		done <- struct{}{}
	})
	defer unsub()

	Publish(Event{Type: ProjectUpdated})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async subscriber never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, got)
}

func TestClosedBusDropsEvents(t *testing.T) {
	b := NewBus()

	count := 0
	b.Subscribe(GenerationChunk, func(e Event) { count++ })

	require.NoError(t, b.Close())
	b.PublishSync(Event{Type: GenerationChunk})

	assert.Equal(t, 0, count)
}
