package workers

import (
	"context"
	"log/slog"

	"github.com/abadojack/whatlanggo"

	"chat-engine/search"
)

// IndexerWorker drains posted room messages from the router's queue
// into the search index, tagging each with its detected language. The
// index is eventually consistent with the room history: a message is
// findable once it has been drained here.
type IndexerWorker struct {
	index *search.Index
	queue <-chan search.Document
	log   *slog.Logger
}

func NewIndexerWorker(index *search.Index, queue <-chan search.Document, log *slog.Logger) *IndexerWorker {
	return &IndexerWorker{index: index, queue: queue, log: log}
}

func (w *IndexerWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping indexer worker")
			return ctx.Err()
		case doc, ok := <-w.queue:
			if !ok {
				w.log.Debug("Index queue closed")
				return nil
			}

			info := whatlanggo.Detect(doc.Body)
			doc.Lang = info.Lang.Iso6391()

			if err := w.index.Add(doc); err != nil {
				w.log.Error("Failed to index message", "room", doc.Room, "index", doc.Index, "err", err)
				continue
			}
			w.log.Debug("Message indexed", "room", doc.Room, "index", doc.Index, "lang", doc.Lang)
		}
	}
}
