package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meghashyamc/localsearch/logger"
)

const searchPath = "/search"

type Client struct {
	logger     logger.Logger
	endpoint   *url.URL
	httpClient *http.Client
	metrics    *Metrics
}

// New builds a client for <baseURL>/search. A zero timeout leaves requests unbounded.
func New(logger logger.Logger, baseURL string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid search base url: %w", err)
	}
	if len(base.Scheme) == 0 || len(base.Host) == 0 {
		return nil, fmt.Errorf("search base url must be absolute: %q", baseURL)
	}

	endpoint := *base
	endpoint.Path = strings.TrimSuffix(base.Path, "/") + searchPath

	return &Client{
		logger:     logger,
		endpoint:   &endpoint,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    NewMetrics(),
	}, nil
}

// Search sends exactly one GET request. Every failure is returned as *FetchError.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	start := time.Now()

	results, err := c.doSearch(ctx, query)
	c.metrics.RequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			c.metrics.RequestsTotal.WithLabelValues(fetchErr.Kind).Inc()
		}
		return nil, err
	}

	c.metrics.RequestsTotal.WithLabelValues(outcomeSuccess).Inc()
	c.metrics.ResultsReturned.Observe(float64(len(results)))

	return results, nil
}

func (c *Client) doSearch(ctx context.Context, query string) ([]Result, error) {
	requestURL := c.requestURL(query)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: FailureNetwork, Err: err}
	}
	request.Header.Set("Accept", "application/json")

	c.logger.Debug("sending search request", "url", requestURL)
	resp, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Warn("search request could not be sent", "url", requestURL, "err", err.Error())
		return nil, &FetchError{Kind: FailureNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("search backend returned an error status", "url", requestURL, "status", resp.StatusCode)
		return nil, &FetchError{Kind: FailureStatus, StatusCode: resp.StatusCode}
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("search response could not be decoded", "url", requestURL, "err", err.Error())
		return nil, &FetchError{Kind: FailureDecode, StatusCode: resp.StatusCode, Err: err}
	}

	if body.Results == nil {
		return nil, &FetchError{Kind: FailureDecode, StatusCode: resp.StatusCode, Err: errors.New("response has no results array")}
	}

	return *body.Results, nil
}

func (c *Client) requestURL(query string) string {
	endpoint := *c.endpoint
	params := url.Values{}
	params.Set("query", query)
	endpoint.RawQuery = params.Encode()

	return endpoint.String()
}
