package workers

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/WangWilly/xChain/pkgs/serverpkg/serverdto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngester struct {
	mu   sync.Mutex
	seen []string
}

func (f *fakeIngester) Ingest(ctx context.Context, req serverdto.IngestRequest) (*serverdto.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.TxHash == "0xbad" {
		return nil, errors.New("rejected")
	}
	f.seen = append(f.seen, req.TxHash)
	return &serverdto.Event{TxHash: req.TxHash}, nil
}

func TestBulkIngest(t *testing.T) {
	input := strings.Join([]string{
		`{"tx_hash":"0x1","payload":"nft mint"}`,
		``,
		`{"tx_hash":"0x2","payload":"swap","chain":"eth"}`,
		`not json`,
		`{"tx_hash":"0xbad","payload":"x"}`,
		`{"tx_hash":"0x3","payload":"bridge"}`,
	}, "\n")

	ingester := &fakeIngester{}
	var progress bytes.Buffer
	result, err := BulkIngest(context.Background(), strings.NewReader(input), ingester, BulkIngestConfig{
		Concurrency: 2,
		Progress:    &progress,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 3, result.Ingested)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 4, result.Errors[0].Line)
	assert.Equal(t, 5, result.Errors[1].Line)
	assert.ElementsMatch(t, []string{"0x1", "0x2", "0x3"}, ingester.seen)
	assert.NotEmpty(t, progress.String())
}

func TestBulkIngest_Empty(t *testing.T) {
	result, err := BulkIngest(context.Background(), strings.NewReader("\n\n"), &fakeIngester{}, BulkIngestConfig{})
	require.NoError(t, err)
	assert.Zero(t, result.Total)
	assert.Empty(t, result.Errors)
}

func TestBulkIngest_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ingester := &fakeIngester{}
	_, err := BulkIngest(ctx, strings.NewReader(`{"tx_hash":"0x1","payload":"p"}`), ingester, BulkIngestConfig{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ingester.seen)
}
