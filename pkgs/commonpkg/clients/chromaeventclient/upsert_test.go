package chromaeventclient

import (
	"testing"

	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentID(t *testing.T) {
	first := DocumentID("0xabc")
	assert.Equal(t, first, DocumentID("0xabc"), "same tx hash must map to the same document")
	assert.NotEqual(t, first, DocumentID("0xabd"))

	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

func TestEventMetadata(t *testing.T) {
	t.Run("all columns set", func(t *testing.T) {
		value := 12.5
		block := int64(4200)
		event := &model.OnChainEvent{
			TxHash:      "0x1",
			Chain:       "bnb",
			Tags:        "nft,mint",
			Value:       &value,
			BlockNumber: &block,
		}

		assert.Equal(t, map[string]interface{}{
			"tx_hash":      "0x1",
			"chain":        "bnb",
			"tags":         "nft,mint",
			"value":        12.5,
			"block_number": int64(4200),
		}, eventMetadata(event))
	})

	t.Run("unset optional columns are left out", func(t *testing.T) {
		fields := eventMetadata(&model.OnChainEvent{TxHash: "0x2", Chain: "eth"})
		assert.NotContains(t, fields, "value")
		assert.NotContains(t, fields, "block_number")
		assert.Equal(t, "", fields["tags"])
	})
}

func TestToDocumentMetadata(t *testing.T) {
	value := 3.0
	block := int64(7)
	meta := toDocumentMetadata(eventMetadata(&model.OnChainEvent{
		TxHash:      "0x1",
		Chain:       "bnb",
		Value:       &value,
		BlockNumber: &block,
	}))
	assert.NotNil(t, meta)

	// values of other types are skipped rather than failing the batch
	assert.NotNil(t, toDocumentMetadata(map[string]interface{}{"nested": []string{"x"}}))
}
