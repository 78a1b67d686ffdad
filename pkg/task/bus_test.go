package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusFanOut(t *testing.T) {
	b := NewBus()
	c1 := b.Subscribe()
	c2 := b.Subscribe()
	require.Equal(t, 2, b.Subscribers())

	change := Change{Kind: Created, TaskID: 7, At: time.Unix(0, 0).UTC()}
	b.Publish(change)
	assert.Equal(t, change, <-c1)
	assert.Equal(t, change, <-c2)

	b.Unsubscribe(c1)
	b.Unsubscribe(c1)
	assert.Equal(t, 1, b.Subscribers())
	_, open := <-c1
	assert.False(t, open)
}

func TestBusPublishDoesNotBlock(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe()
	for i := 0; i < cap(ch)+10; i++ {
		b.Publish(Change{Kind: Updated, TaskID: int64(i)})
	}
	assert.Len(t, ch, cap(ch))
	assert.Equal(t, int64(0), (<-ch).TaskID)
}
