// Package provider talks to the remote futures-data API (tushare-pro wire
// protocol) to fetch the exchange's own main-contract mapping, and compares
// it against locally built mappings.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mainline/internal/config"
	"mainline/internal/util"
)

// Client calls the provider's JSON API. Credentials and limits come from
// explicit configuration, never from a hidden key file. Every call is
// rate-limited and retried with exponential backoff; the retry wrapper lives
// here, around the I/O, not inside the selection engine.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryBase  time.Duration
	log        *slog.Logger
}

// NewClient creates a Client from provider configuration.
func NewClient(cfg config.Provider, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(float64(cfg.RateLimitPerMin)/60.0), 1),
		maxRetries: cfg.MaxRetries,
		retryBase:  time.Duration(cfg.RetryBaseMS) * time.Millisecond,
		log:        log.With("component", "provider"),
	}
}

// apiRequest is the provider's request envelope.
type apiRequest struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params,omitempty"`
	Fields  string            `json:"fields,omitempty"`
}

// apiResponse is the provider's tabular response envelope.
type apiResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Fields []string `json:"fields"`
		Items  [][]any  `json:"items"`
	} `json:"data"`
}

// call posts one API request and returns the decoded tabular payload.
// Transport failures and 5xx responses are retried; API-level errors (bad
// token, bad params) are permanent.
func (c *Client) call(ctx context.Context, apiName string, params map[string]string, fields string) (*apiResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(apiRequest{
		APIName: apiName,
		Token:   c.token,
		Params:  params,
		Fields:  fields,
	})
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	err = util.Retry(ctx, c.maxRetries, c.retryBase, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return util.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			c.log.Warn("provider request failed, will retry", "api", apiName, "error", err)
			return err
		}
		defer httpResp.Body.Close()

		if httpResp.StatusCode >= 500 {
			c.log.Warn("provider returned server error, will retry", "api", apiName, "status", httpResp.StatusCode)
			return fmt.Errorf("%s: status %d", apiName, httpResp.StatusCode)
		}
		if httpResp.StatusCode != http.StatusOK {
			return util.Permanent(fmt.Errorf("%s: status %d", apiName, httpResp.StatusCode))
		}

		payload, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return err
		}
		resp = apiResponse{}
		if err := json.Unmarshal(payload, &resp); err != nil {
			return util.Permanent(fmt.Errorf("%s: decoding response: %w", apiName, err))
		}
		if resp.Code != 0 {
			return util.Permanent(fmt.Errorf("%s: api error %d: %s", apiName, resp.Code, resp.Msg))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// MappingEntry is one row of the provider's main-contract mapping.
type MappingEntry struct {
	TradeDate time.Time
	Contract  string
}

// FutMapping fetches the provider's daily main-contract mapping for a
// product code like "RB.SHF". The exchange suffix is stripped from contract
// codes and rows are returned oldest-first regardless of the provider's
// ordering.
func (c *Client) FutMapping(ctx context.Context, tsCode string) ([]MappingEntry, error) {
	resp, err := c.call(ctx, "fut_mapping", map[string]string{"ts_code": tsCode}, "trade_date,mapping_ts_code")
	if err != nil {
		return nil, err
	}

	dateIdx, codeIdx := -1, -1
	for i, f := range resp.Data.Fields {
		switch f {
		case "trade_date":
			dateIdx = i
		case "mapping_ts_code":
			codeIdx = i
		}
	}
	if dateIdx == -1 || codeIdx == -1 {
		return nil, fmt.Errorf("fut_mapping: response missing trade_date/mapping_ts_code fields: %v", resp.Data.Fields)
	}

	entries := make([]MappingEntry, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		if len(item) <= dateIdx || len(item) <= codeIdx {
			continue
		}
		dateStr, ok1 := item[dateIdx].(string)
		code, ok2 := item[codeIdx].(string)
		if !ok1 || !ok2 {
			continue
		}
		date, err := time.ParseInLocation("20060102", dateStr, time.UTC)
		if err != nil {
			c.log.Warn("skipping mapping row with bad trade date", "trade_date", dateStr)
			continue
		}
		entries = append(entries, MappingEntry{
			TradeDate: date,
			Contract:  stripExchangeSuffix(code),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].TradeDate.Before(entries[j].TradeDate) })

	c.log.Info("fetched provider mapping", "ts_code", tsCode, "rows", len(entries))
	return entries, nil
}

// stripExchangeSuffix removes a trailing ".SHF"-style exchange qualifier.
func stripExchangeSuffix(code string) string {
	if i := strings.IndexByte(code, '.'); i >= 0 {
		return code[:i]
	}
	return code
}
