package xchainclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/WangWilly/xChain/pkgs/commonpkg/errs"
	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/WangWilly/xChain/pkgs/serverpkg/serverdto"
	"github.com/go-resty/resty/v2"
)

////////////////////////////////////////////////////////////////////////////////

const (
	DEFAULT_BASE_URL = "http://127.0.0.1:8000"

	HEALTH_ENDPOINT   = "/health"
	INGEST_ENDPOINT   = "/data/ingest"
	SEARCH_ENDPOINT   = "/data/search"
	INSIGHTS_ENDPOINT = "/data/insights"
)

////////////////////////////////////////////////////////////////////////////////

// Client calls the xChain HTTP API.
type Client struct {
	restyClient *resty.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DEFAULT_BASE_URL
	}

	restyClient := resty.New()
	restyClient.SetBaseURL(strings.TrimRight(baseURL, "/"))
	restyClient.SetHeader("User-Agent", "xChain-cli/1.0")
	restyClient.SetTimeout(20 * time.Second)

	return &Client{
		restyClient: restyClient,
	}
}

////////////////////////////////////////////////////////////////////////////////

func (c *Client) Health(ctx context.Context) (*serverdto.HealthResponse, error) {
	var result serverdto.HealthResponse
	if err := c.do(ctx, resty.MethodGet, HEALTH_ENDPOINT, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Ingest(ctx context.Context, req serverdto.IngestRequest) (*serverdto.Event, error) {
	var result serverdto.Event
	if err := c.do(ctx, resty.MethodPost, INGEST_ENDPOINT, nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Search(ctx context.Context, req serverdto.SearchRequest) (*serverdto.SearchResponse, error) {
	var result serverdto.SearchResponse
	if err := c.do(ctx, resty.MethodPost, SEARCH_ENDPOINT, nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Insights asks for the window of the limit most recent events; limit <= 0
// leaves the server default.
func (c *Client) Insights(ctx context.Context, limit int) (*model.Insights, error) {
	params := map[string]string{}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	var result model.Insights
	if err := c.do(ctx, resty.MethodGet, INSIGHTS_ENDPOINT, params, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

////////////////////////////////////////////////////////////////////////////////

func (c *Client) do(ctx context.Context, method, endpoint string, params map[string]string, body, result interface{}) error {
	req := c.restyClient.R().SetContext(ctx).SetResult(result)
	if params != nil {
		req.SetQueryParams(params)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		return fmt.Errorf("%w: failed to call %s: %v", errs.ErrTransport, endpoint, err)
	}

	if resp.IsError() {
		var apiErr serverdto.ErrorResponse
		if jsonErr := json.Unmarshal(resp.Body(), &apiErr); jsonErr == nil && apiErr.Error != "" {
			return fmt.Errorf("API returned status %d for %s: %s", resp.StatusCode(), endpoint, apiErr.Error)
		}
		return fmt.Errorf("API returned status %d for %s", resp.StatusCode(), endpoint)
	}
	return nil
}
