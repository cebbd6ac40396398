package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-engine/search"
)

func TestIndexerWorker_Drains_The_Queue_Into_The_Index(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)

	index, err := search.NewIndex(log)
	req.NoError(err)
	defer index.Close()

	queue := make(chan search.Document, 4)
	worker := NewIndexerWorker(index, queue, log)

	done := make(chan error, 1)
	go func() {
		done <- worker.Run(context.Background())
	}()

	// When a posted message is queued
	queue <- search.Document{
		Room:   "Open Mic",
		Index:  0,
		Author: "alice",
		Body:   "the deployment finished without incident",
		SentAt: time.Now().UTC(),
	}

	// Then it becomes findable once drained
	req.Eventually(func() bool {
		hits, err := index.Search(context.Background(), "Open Mic", "deployment", 10)
		return err == nil && len(hits) == 1
	}, 2*time.Second, 20*time.Millisecond)

	hits, err := index.Search(context.Background(), "Open Mic", "deployment", 10)
	req.NoError(err)
	req.Equal("alice", hits[0].Author)
	req.NotEmpty(hits[0].Lang)

	// And a closed queue ends the worker cleanly
	close(queue)
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("Indexer should stop when its queue closes")
	}
}

func TestIndexerWorker_Stops_On_Context_Cancel(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)

	index, err := search.NewIndex(log)
	req.NoError(err)
	defer index.Close()

	queue := make(chan search.Document)
	worker := NewIndexerWorker(index, queue, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		req.Fail("Indexer should stop when its context is canceled")
	}
}
