package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNoData is returned when the tracker answers code 0 with a null data field.
var ErrNoData = errors.New("tracker returned no data")

// TrackerError is an application-level failure reported in the tracker envelope.
type TrackerError struct {
	Code int
	Msg  string
}

func (e *TrackerError) Error() string {
	return fmt.Sprintf("tracker error %d: %s", e.Code, e.Msg)
}

// envelope is the common tracker response shape.
type envelope struct {
	Code int                 `json:"code"`
	Msg  string              `json:"msg"`
	Data jsoniter.RawMessage `json:"data"`
}

// TrackerClientConfig holds the tracker client settings.
type TrackerClientConfig struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
}

// trackerClientImpl is the fasthttp implementation of port.TrackerClient.
type trackerClientImpl struct {
	client  *fasthttp.Client
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewTrackerClient creates a tracker client.
func NewTrackerClient(cfg TrackerClientConfig, logger *zap.Logger) port.TrackerClient {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &trackerClientImpl{
		client: &fasthttp.Client{
			Name:                "cat20-wallet",
			MaxIdleConnDuration: 30 * time.Second,
		},
		timeout: timeout,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.Named("TrackerClient"),
	}
}

// Get implements port.TrackerClient.
func (c *trackerClientImpl) Get(ctx context.Context, baseURL, path string, query map[string]string, out any) (err error) {
	endpoint := endpointLabel(path)
	started := time.Now()
	defer func() { metrics.ObserveTracker(endpoint, started, err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	requestURL := buildURL(baseURL, path, query)
	c.logger.Debug("Requesting tracker", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Warn("Tracker request failed", zap.String("url", requestURL), zap.Error(err))
		return fmt.Errorf("request to %s: %w", requestURL, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("Tracker returned non-200 status",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return fmt.Errorf("request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	var env envelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return fmt.Errorf("decode envelope from %s: %w", requestURL, err)
	}
	if env.Code != 0 {
		return &TrackerError{Code: env.Code, Msg: env.Msg}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrNoData
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data from %s: %w", requestURL, err)
	}
	return nil
}

func buildURL(baseURL, path string, query map[string]string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	if !strings.HasPrefix(path, "/") {
		b.WriteByte('/')
	}
	b.WriteString(path)
	if len(query) == 0 {
		return b.String()
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := url.Values{}
	for _, k := range keys {
		values.Set(k, query[k])
	}
	b.WriteByte('?')
	b.WriteString(values.Encode())
	return b.String()
}

// endpointLabel keeps metric cardinality bounded: token ids and addresses are dropped.
func endpointLabel(path string) string {
	switch {
	case strings.HasSuffix(path, "/utxos"):
		return "utxos"
	case strings.HasSuffix(path, "/balance"):
		return "balance"
	case strings.HasPrefix(path, "/api/tokens/"):
		return "token"
	default:
		return "other"
	}
}

// TokenPath returns the tracker path of a token.
func TokenPath(tokenID string) string {
	return "/api/tokens/" + url.PathEscape(tokenID)
}

// TokenUtxosPath returns the tracker path of the token utxos owned by an address.
func TokenUtxosPath(tokenID, address string) string {
	return TokenPath(tokenID) + "/addresses/" + url.PathEscape(address) + "/utxos"
}

// TokenBalancePath returns the tracker path of the token balance of an address.
func TokenBalancePath(tokenID, address string) string {
	return TokenPath(tokenID) + "/addresses/" + url.PathEscape(address) + "/balance"
}
