package chromaeventclient

import (
	"context"
	"fmt"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
)

const (
	DEFAULT_COLLECTION_NAME = "onchain-events"
)

type ChromaEventClient struct {
	client     chroma.Client
	collection chroma.Collection
}

// New connects to Chroma and opens (or creates) the mirror collection.
func New(ctx context.Context, chromaURL, collectionName string) (*ChromaEventClient, error) {
	if collectionName == "" {
		collectionName = DEFAULT_COLLECTION_NAME
	}

	client, err := chroma.NewHTTPClient(
		chroma.WithBaseURL(chromaURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chroma.WithCollectionMetadataCreate(
			chroma.NewMetadata(
				chroma.NewStringAttribute("description", "Mirrored on-chain events"),
				chroma.NewStringAttribute("type", "events"),
			),
		),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get or create collection: %w", err)
	}

	return &ChromaEventClient{
		client:     client,
		collection: collection,
	}, nil
}

func (c *ChromaEventClient) Close() error {
	return c.client.Close()
}

////////////////////////////////////////////////////////////////////////////////

func (c *ChromaEventClient) GetCollectionCount(ctx context.Context) (int, error) {
	count, err := c.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection count: %w", err)
	}

	return count, nil
}
