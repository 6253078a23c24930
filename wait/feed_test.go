package wait

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFeedDeliversInOrder(t *testing.T) {
	t.Parallel()

	feed := NewFeed[string]()
	defer feed.Disconnect()

	feed.Push(Mutation[string]{Target: "a"})
	feed.Push(Mutation[string]{Target: "b"}, Mutation[string]{Target: "c"})

	var (
		got     []string
		batches int
		timeout = time.After(time.Second)
	)
	for len(got) < 3 {
		select {
		case batch := <-feed.Records():
			batches++
			for _, rec := range batch {
				got = append(got, rec.Target)
			}
		case <-timeout:
			t.Fatalf("test failed - got %d of 3 records before timeout", len(got))
		}
	}

	require.Equal(t, []string{"a", "b", "c"}, got)
	require.LessOrEqual(t, batches, 2)
}

func TestFeedCoalescesWhileBusy(t *testing.T) {
	t.Parallel()

	feed := NewFeed[string]()
	defer feed.Disconnect()

	feed.Push(Mutation[string]{Target: "first"})
	first := <-feed.Records()
	require.Len(t, first, 1)

	// Nobody reads while these are pushed, so they pile up into at most two batches.
	feed.Push(Mutation[string]{Target: "a"})
	feed.Push(Mutation[string]{Target: "b"})
	feed.Push(Mutation[string]{Target: "c"})
	time.Sleep(20 * time.Millisecond)

	var (
		got     []string
		batches int
	)
	for len(got) < 3 {
		batches++
		for _, rec := range <-feed.Records() {
			got = append(got, rec.Target)
		}
	}
	require.Equal(t, []string{"a", "b", "c"}, got)
	require.LessOrEqual(t, batches, 2)
}

func TestFeedDisconnect(t *testing.T) {
	t.Parallel()

	feed := NewFeed[string]()
	feed.Push(Mutation[string]{Target: "dropped"})
	feed.Disconnect()
	feed.Disconnect()
	feed.Push(Mutation[string]{Target: "ignored"})

	// The channel closes; at most the batch already in flight may be observed first.
	for range feed.Records() {
	}
}
