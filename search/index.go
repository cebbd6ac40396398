// Package search maintains a full-text index over posted room
// messages. The index lives entirely in memory: history does not
// survive a restart, so neither should its index.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/blugelabs/bluge"
)

// docSeparator joins room and index into a document id. NUL cannot
// appear in a room name, so the split back is unambiguous.
const docSeparator = "\x00"

// Document is one posted message as the indexer worker hands it over.
type Document struct {
	Room   string
	Index  int
	Author string
	Body   string
	Lang   string
	SentAt time.Time
}

// Hit is one scored search match.
type Hit struct {
	Room   string
	Index  int
	Author string
	Body   string
	SentAt string
	Score  float64
}

// Index wraps a bluge writer opened over an in-memory segment store.
type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewIndex(log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("opening bluge writer: %w", err)
	}
	return &Index{writer: writer, log: log}, nil
}

// Add indexes one message. Messages are append-only and indices are
// stable, so Update with the composite id is effectively an insert.
func (i *Index) Add(doc Document) error {
	id := doc.Room + docSeparator + strconv.Itoa(doc.Index)

	blugeDoc := bluge.NewDocument(id).
		AddField(bluge.NewKeywordField("room", doc.Room)).
		AddField(bluge.NewNumericField("index", float64(doc.Index))).
		AddField(bluge.NewKeywordField("author", doc.Author).StoreValue()).
		AddField(bluge.NewTextField("body", doc.Body).StoreValue()).
		AddField(bluge.NewKeywordField("lang", doc.Lang)).
		AddField(bluge.NewStoredOnlyField("sent_at", []byte(doc.SentAt.UTC().Format(time.RFC3339Nano))))

	return i.writer.Update(blugeDoc.ID(), blugeDoc)
}

// Search runs a room-scoped full-text query over message bodies and
// returns the top matches by score. Each whitespace-separated term is
// a disjunct; at least one must match.
func (i *Index) Search(ctx context.Context, room, query string, limit int) ([]Hit, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, nil
	}

	bodyQuery := bluge.NewBooleanQuery().SetMinShould(1)
	for _, term := range terms {
		bodyQuery.AddShould(bluge.NewMatchQuery(term).SetField("body"))
	}

	fullQuery := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(room).SetField("room")).
		AddMust(bodyQuery)

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("opening bluge reader: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, fullQuery))
	if err != nil {
		return nil, fmt.Errorf("bluge search: %w", err)
	}

	var hits []Hit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, fmt.Errorf("bluge iteration: %w", err)
		}
		if match == nil {
			break
		}

		hit := Hit{Score: match.Score}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.Room, hit.Index = splitDocID(string(value))
			case "author":
				hit.Author = string(value)
			case "body":
				hit.Body = string(value)
			case "sent_at":
				hit.SentAt = string(value)
			}
			return true
		})
		if err != nil {
			return nil, fmt.Errorf("visiting stored fields: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases the writer. Call once, on shutdown.
func (i *Index) Close() error {
	return i.writer.Close()
}

func splitDocID(id string) (string, int) {
	room, rawIndex, ok := strings.Cut(id, docSeparator)
	if !ok {
		return id, 0
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		return room, 0
	}
	return room, index
}
