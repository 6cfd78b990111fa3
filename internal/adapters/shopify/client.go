package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"jewelry-repricer/internal/adapters/shopify/dto"
	"jewelry-repricer/internal/config"
	"jewelry-repricer/internal/logging"
)

// RequestObserver receives the outcome of every Admin API call.
type RequestObserver interface {
	ObserveRequest(operation string, statusCode int, duration time.Duration)
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type Client struct {
	config     config.ShopifyConfig
	httpClient *resty.Client
	logger     logging.LoggerService
	limiter    *rate.Limiter
	observer   RequestObserver
	retryMax   int
}

func NewClient(cfg config.ShopifyConfig, httpClient *resty.Client, logger logging.LoggerService, observer RequestObserver) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = resty.New().SetTimeout(timeout)
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		observer:   observer,
		retryMax:   cfg.RetryMax,
	}
}

func (c *Client) endpoint() (string, error) {
	domain := strings.TrimSpace(c.config.ShopDomain)
	if domain == "" {
		return "", errors.New("shopify shop domain is empty")
	}
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	domain = strings.TrimRight(domain, "/")
	if c.config.APIVer == "" {
		return "", errors.New("shopify api version is empty")
	}
	return domain + "/admin/api/" + c.config.APIVer + "/graphql.json", nil
}

// graphqlRequest sends one GraphQL document, retrying throttled and 5xx responses with
// exponential backoff. User errors inside a 200 response are never retried.
func (c *Client) graphqlRequest(ctx context.Context, query string, variables map[string]any, out any) error {
	for attempt := 0; ; attempt++ {
		err := c.graphqlAttempt(ctx, query, variables, out)
		if err == nil {
			return nil
		}
		if attempt >= c.retryMax || !isRetryable(err) {
			return err
		}
		delay := retryDelay(attempt)
		if wait := retryAfter(err); wait > delay {
			delay = wait
		}
		c.logWarning(fmt.Sprintf("shopify %s retry attempt=%d delay=%s: %v", operationName(query), attempt+1, delay, err))
		if err := sleepWithContext(ctx, delay); err != nil {
			return err
		}
	}
}

func (c *Client) graphqlAttempt(ctx context.Context, query string, variables map[string]any, out any) error {
	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	operation := operationName(query)
	started := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Shopify-Access-Token", c.config.Token).
		SetBody(graphQLRequest{
			Query:     strings.TrimSpace(query),
			Variables: variables,
		}).
		Post(endpoint)
	if err != nil {
		c.observe(operation, 0, time.Since(started))
		return fmt.Errorf("shopify %s request: %w", operation, err)
	}
	c.observe(operation, resp.StatusCode(), time.Since(started))

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return newHTTPStatusError(resp.StatusCode(), resp.Status(), resp.Body(), resp.Header().Get("Retry-After"))
	}

	var gqlResp dto.GraphQLResponse[json.RawMessage]
	if err := json.Unmarshal(resp.Body(), &gqlResp); err != nil {
		return fmt.Errorf("shopify %s decode: %w", operation, err)
	}
	if len(gqlResp.Errors) > 0 {
		return &graphQLErrorsError{Errors: gqlResp.Errors}
	}
	if out == nil {
		return nil
	}
	if len(gqlResp.Data) == 0 || string(gqlResp.Data) == "null" {
		return errors.New("shopify graphql response missing data")
	}
	return json.Unmarshal(gqlResp.Data, out)
}

func (c *Client) observe(operation string, statusCode int, duration time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveRequest(operation, statusCode, duration)
}

var operationPattern = regexp.MustCompile(`^\s*(?:query|mutation)\s+([A-Za-z_][A-Za-z0-9_]*)`)

func operationName(query string) string {
	match := operationPattern.FindStringSubmatch(query)
	if len(match) < 2 {
		return "graphql"
	}
	return match[1]
}

type graphQLErrorsError struct {
	Errors []dto.GraphQLError
}

func (e *graphQLErrorsError) Error() string {
	return fmt.Sprintf("shopify graphql errors: %s", formatGraphQLErrors(e.Errors))
}

func formatGraphQLErrors(errs []dto.GraphQLError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			continue
		}
		if len(e.Path) > 0 {
			msg = fmt.Sprintf("%s (path: %v)", msg, e.Path)
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return "unknown graphql error"
	}
	return strings.Join(parts, "; ")
}

func (c *Client) logInfo(message string) {
	if c == nil || c.logger == nil || strings.TrimSpace(message) == "" {
		return
	}
	c.logger.Log(message)
}

func (c *Client) logWarning(message string) {
	if c == nil || c.logger == nil || strings.TrimSpace(message) == "" {
		return
	}
	c.logger.LogWarning(message)
}

