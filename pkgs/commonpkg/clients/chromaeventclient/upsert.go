package chromaeventclient

import (
	"context"
	"fmt"
	"sort"

	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"
)

// documentNamespace scopes the name-based document ids. Changing it orphans
// every document already mirrored.
var documentNamespace = uuid.MustParse("5b0f3c9e-8d2a-4f61-9c47-1e6a2d8b7f30")

// DocumentID is the Chroma id of the event with the given tx hash. It is
// stable, so a batch written twice lands on the same documents.
func DocumentID(txHash string) string {
	return uuid.NewSHA1(documentNamespace, []byte(txHash)).String()
}

// BatchUpsertEvents writes the events with their stored embeddings, so Chroma
// never embeds anything itself. It returns the document id of each event, in
// order.
func (c *ChromaEventClient) BatchUpsertEvents(ctx context.Context, events []model.OnChainEvent) ([]string, error) {
	if len(events) == 0 {
		return nil, nil
	}

	ids := make([]chroma.DocumentID, 0, len(events))
	docIDs := make([]string, 0, len(events))
	texts := make([]string, 0, len(events))
	metadatas := make([]chroma.DocumentMetadata, 0, len(events))
	vectors := make([]embeddings.Embedding, 0, len(events))

	for i := range events {
		event := &events[i]
		docID := DocumentID(event.TxHash)

		ids = append(ids, chroma.DocumentID(docID))
		docIDs = append(docIDs, docID)
		texts = append(texts, event.Payload)
		metadatas = append(metadatas, toDocumentMetadata(eventMetadata(event)))
		vectors = append(vectors, embeddings.NewEmbeddingFromFloat32(event.Embedding.Slice()))
	}

	err := c.collection.Upsert(ctx,
		chroma.WithIDs(ids...),
		chroma.WithTexts(texts...),
		chroma.WithMetadatas(metadatas...),
		chroma.WithEmbeddings(vectors...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert events to chroma: %w", err)
	}

	return docIDs, nil
}

////////////////////////////////////////////////////////////////////////////////

// eventMetadata holds the filterable fields of an event. Unset optional
// columns are left out rather than stored as zero.
func eventMetadata(event *model.OnChainEvent) map[string]interface{} {
	fields := map[string]interface{}{
		"tx_hash": event.TxHash,
		"chain":   event.Chain,
		"tags":    event.Tags,
	}
	if event.Value != nil {
		fields["value"] = *event.Value
	}
	if event.BlockNumber != nil {
		fields["block_number"] = *event.BlockNumber
	}
	return fields
}

func toDocumentMetadata(fields map[string]interface{}) chroma.DocumentMetadata {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	attrs := make([]*chroma.MetaAttribute, 0, len(keys))
	for _, key := range keys {
		switch v := fields[key].(type) {
		case string:
			attrs = append(attrs, chroma.NewStringAttribute(key, v))
		case float64:
			attrs = append(attrs, chroma.NewFloatAttribute(key, v))
		case int64:
			attrs = append(attrs, chroma.NewIntAttribute(key, v))
		}
	}
	return chroma.NewDocumentMetadata(attrs...)
}
