package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScroller replays a fixed sequence of content heights, repeating
// the last one forever.
type fakeScroller struct {
	heights []int
	reads   int
	scrolls int
}

func (f *fakeScroller) ContentHeight() (int, error) {
	i := f.reads
	if i >= len(f.heights) {
		i = len(f.heights) - 1
	}
	f.reads++
	return f.heights[i], nil
}

func (f *fakeScroller) ScrollToBottom() error {
	f.scrolls++
	return nil
}

func TestExhaustStopsWhenHeightSettles(t *testing.T) {
	d := NewPaginationDriver(time.Millisecond, 100, time.Minute)
	f := &fakeScroller{heights: []int{100, 250, 250}}

	err := d.Exhaust(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 3, f.reads)
	assert.Equal(t, 2, f.scrolls)
}

func TestExhaustBoundedAgainstEndlessGrowth(t *testing.T) {
	d := NewPaginationDriver(time.Millisecond, 5, time.Minute)

	// Strictly increasing heights never settle; the scroll cap must
	// terminate the loop.
	heights := make([]int, 100)
	for i := range heights {
		heights[i] = (i + 1) * 100
	}
	f := &fakeScroller{heights: heights}

	err := d.Exhaust(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 5, f.scrolls)
}

func TestExhaustHonorsCancellation(t *testing.T) {
	d := NewPaginationDriver(time.Second, 100, time.Minute)
	f := &fakeScroller{heights: []int{100, 200, 300}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Exhaust(ctx, f)
	assert.ErrorIs(t, err, context.Canceled)
}
