package workers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/WangWilly/xChain/pkgs/serverpkg/serverdto"
	"github.com/panjf2000/ants/v2"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
)

const (
	DEFAULT_CONCURRENCY = 4
	MAX_LINE_BYTES      = 1 << 20
)

type Ingester interface {
	Ingest(ctx context.Context, req serverdto.IngestRequest) (*serverdto.Event, error)
}

type BulkIngestConfig struct {
	Concurrency int       // <= 0 selects DEFAULT_CONCURRENCY
	Progress    io.Writer // nil disables the progress bar
}

type LineError struct {
	Line int
	Err  error
}

type BulkIngestResult struct {
	Total    int
	Ingested int
	Errors   []LineError // sorted by line
}

////////////////////////////////////////////////////////////////////////////////

// BulkIngest reads one JSON ingest request per line and submits them through
// a bounded worker pool. Blank lines are skipped. A bad line is recorded and
// does not stop the run.
func BulkIngest(ctx context.Context, r io.Reader, ingester Ingester, cfg BulkIngestConfig) (*BulkIngestResult, error) {
	logger := log.WithField("caller", "workers.BulkIngest")

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DEFAULT_CONCURRENCY
	}

	requests, lines, result, err := readRequests(r)
	if err != nil {
		return nil, err
	}
	result.Total += len(requests)
	if len(requests) == 0 {
		return result, nil
	}

	bar := newBar(len(requests), cfg.Progress)

	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(line int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Errors = append(result.Errors, LineError{Line: line, Err: err})
		} else {
			result.Ingested++
		}
		if bar != nil {
			bar.Add(1)
		}
	}

	for i, req := range requests {
		if ctx.Err() != nil {
			break
		}

		line := lines[i]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			_, err := ingester.Ingest(ctx, req)
			record(line, err)
		})
		if submitErr != nil {
			wg.Done()
			record(line, submitErr)
		}
	}
	wg.Wait()

	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].Line < result.Errors[j].Line
	})
	logger.WithFields(log.Fields{
		"total":    result.Total,
		"ingested": result.Ingested,
		"failed":   len(result.Errors),
	}).Info("Bulk ingest finished")

	return result, ctx.Err()
}

func readRequests(r io.Reader) ([]serverdto.IngestRequest, []int, *BulkIngestResult, error) {
	result := &BulkIngestResult{}
	var (
		requests []serverdto.IngestRequest
		lines    []int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MAX_LINE_BYTES)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var req serverdto.IngestRequest
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			result.Total++
			result.Errors = append(result.Errors, LineError{Line: lineNo, Err: fmt.Errorf("invalid json: %w", err)})
			continue
		}
		requests = append(requests, req)
		lines = append(lines, lineNo)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read input: %w", err)
	}

	return requests, lines, result, nil
}

func newBar(total int, out io.Writer) *progressbar.ProgressBar {
	if out == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(out)
		}),
	)
}
