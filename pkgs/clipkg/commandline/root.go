package commandline

import (
	"context"
	"os"

	"github.com/WangWilly/xChain/pkgs/commonpkg/clients/xchainclient"
	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/WangWilly/xChain/pkgs/serverpkg/serverdto"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const ENV_BASE_URL = "XCHAIN_BASE_URL"

// API is the subset of the server API the commands call.
type API interface {
	Health(ctx context.Context) (*serverdto.HealthResponse, error)
	Ingest(ctx context.Context, req serverdto.IngestRequest) (*serverdto.Event, error)
	Search(ctx context.Context, req serverdto.SearchRequest) (*serverdto.SearchResponse, error)
	Insights(ctx context.Context, limit int) (*model.Insights, error)
}

type rootOptions struct {
	baseURL string
	debug   bool
	noColor bool

	// overridable in tests
	newAPI func(baseURL string) API
	api    API
}

// NewRootCmd builds the xchain command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(func(baseURL string) API { return xchainclient.New(baseURL) })
}

func newRootCmd(newAPI func(baseURL string) API) *cobra.Command {
	opts := &rootOptions{newAPI: newAPI}

	root := &cobra.Command{
		Use:   "xchain",
		Short: "Ingest, search and summarize on-chain events",
		Long: `xchain talks to a running xChain server.

Example usage:
  xchain ingest --tx-hash 0xabc --payload "nft mint on bnb"
  xchain search -q "nft volume trend" -k 3
  xchain insights --limit 20
  xchain demo`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.debug {
				log.SetLevel(log.DebugLevel)
			}
			baseURL := opts.baseURL
			if baseURL == "" {
				baseURL = os.Getenv(ENV_BASE_URL)
			}
			opts.api = opts.newAPI(baseURL)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "server base URL (default $"+ENV_BASE_URL+" or "+xchainclient.DEFAULT_BASE_URL+")")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "display debug message")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newHealthCmd(opts),
		newIngestCmd(opts),
		newIngestFileCmd(opts),
		newSearchCmd(opts),
		newInsightsCmd(opts),
		newDemoCmd(opts),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
