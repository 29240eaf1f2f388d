package commandline

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/WangWilly/xChain/pkgs/clipkg/workers"
	"github.com/WangWilly/xChain/pkgs/serverpkg/serverdto"
	"github.com/spf13/cobra"
)

const (
	DEFAULT_CHAIN = "bnb"
	DEFAULT_TOP_K = 5
)

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server status and event counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.api.Health(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp, opts.noColor)
		},
	}
}

////////////////////////////////////////////////////////////////////////////////

type ingestFlags struct {
	txHash      string
	payload     string
	chain       string
	fromAddress string
	toAddress   string
	value       string
	blockNumber string
	tags        []string
}

func (f *ingestFlags) request() (serverdto.IngestRequest, error) {
	req := serverdto.IngestRequest{
		TxHash:  f.txHash,
		Payload: f.payload,
		Chain:   f.chain,
		Tags:    f.tags,
	}
	if f.fromAddress != "" {
		req.FromAddress = &f.fromAddress
	}
	if f.toAddress != "" {
		req.ToAddress = &f.toAddress
	}
	if f.value != "" {
		v, err := strconv.ParseFloat(f.value, 64)
		if err != nil {
			return req, fmt.Errorf("invalid --value %q: %w", f.value, err)
		}
		req.Value = &v
	}
	if f.blockNumber != "" {
		b, err := strconv.ParseInt(f.blockNumber, 10, 64)
		if err != nil {
			return req, fmt.Errorf("invalid --block-number %q: %w", f.blockNumber, err)
		}
		req.BlockNumber = &b
	}
	return req, nil
}

func newIngestCmd(opts *rootOptions) *cobra.Command {
	flags := &ingestFlags{}
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest one event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			event, err := opts.api.Ingest(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), event, opts.noColor)
		},
	}

	cmd.Flags().StringVar(&flags.txHash, "tx-hash", "", "transaction hash")
	cmd.Flags().StringVarP(&flags.payload, "payload", "p", "", "free-form event text")
	cmd.Flags().StringVar(&flags.chain, "chain", DEFAULT_CHAIN, "chain name")
	cmd.Flags().StringVar(&flags.fromAddress, "from", "", "override sender address")
	cmd.Flags().StringVar(&flags.toAddress, "to", "", "override recipient address")
	cmd.Flags().StringVar(&flags.value, "value", "", "override value")
	cmd.Flags().StringVar(&flags.blockNumber, "block-number", "", "override block number")
	cmd.Flags().StringSliceVar(&flags.tags, "tags", nil, "override tags (comma separated)")
	_ = cmd.MarkFlagRequired("tx-hash")
	_ = cmd.MarkFlagRequired("payload")
	return cmd
}

func newIngestFileCmd(opts *rootOptions) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "ingest-file <file.jsonl>",
		Short: "Ingest events from a JSON-lines file (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}

			result, err := workers.BulkIngest(cmd.Context(), in, opts.api, workers.BulkIngestConfig{
				Concurrency: concurrency,
				Progress:    cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ingested %d/%d\n", result.Ingested, result.Total)
			for _, lineErr := range result.Errors {
				fmt.Fprintf(out, "line %d: %v\n", lineErr.Line, lineErr.Err)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d lines failed", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", workers.DEFAULT_CONCURRENCY, "parallel requests")
	return cmd
}

////////////////////////////////////////////////////////////////////////////////

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		req    serverdto.SearchRequest
		vector string
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Semantic search by text or raw vector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if vector != "" {
				v, err := parseVector(vector)
				if err != nil {
					return err
				}
				req.Vector = v
			} else if strings.TrimSpace(req.Query) == "" {
				return fmt.Errorf("one of --query or --vector is required")
			}

			resp, err := opts.api.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp, opts.noColor)
		},
	}

	cmd.Flags().StringVarP(&req.Query, "query", "q", "", "search text")
	cmd.Flags().StringVar(&vector, "vector", "", "comma separated query vector")
	cmd.Flags().IntVarP(&req.TopK, "top-k", "k", DEFAULT_TOP_K, "number of results")
	cmd.Flags().StringVar(&req.Chain, "chain", "", "restrict to one chain")
	cmd.Flags().IntVar(&req.Probes, "probes", 0, "ivfflat probes (postgres only)")
	return cmd
}

func parseVector(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	v := make([]float32, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		v = append(v, float32(f))
	}
	return v, nil
}

func newInsightsCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Summarize the most recent events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.api.Insights(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp, opts.noColor)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "window of most recent events (0 uses the server default)")
	return cmd
}

////////////////////////////////////////////////////////////////////////////////

const (
	DEMO_TX_HASH = "0xdemo001"
	DEMO_PAYLOAD = "nft mint volume rising on bnb"
	DEMO_QUERY   = "nft volume trend"
)

func newDemoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Ingest a sample event, then show insights and a search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			event, err := opts.api.Ingest(ctx, serverdto.IngestRequest{
				TxHash:  DEMO_TX_HASH,
				Payload: DEMO_PAYLOAD,
				Chain:   DEFAULT_CHAIN,
			})
			if err != nil {
				return err
			}
			printTitle(out, "ingested", opts.noColor)
			if err := printJSON(out, event, opts.noColor); err != nil {
				return err
			}

			insights, err := opts.api.Insights(ctx, 0)
			if err != nil {
				return err
			}
			printTitle(out, "insights", opts.noColor)
			if err := printJSON(out, insights, opts.noColor); err != nil {
				return err
			}

			hits, err := opts.api.Search(ctx, serverdto.SearchRequest{Query: DEMO_QUERY, TopK: 3})
			if err != nil {
				return err
			}
			printTitle(out, "search: "+DEMO_QUERY, opts.noColor)
			return printJSON(out, hits, opts.noColor)
		},
	}
}
