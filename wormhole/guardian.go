package wormhole

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/cockroachdb/errors"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/spyro-labs/spyro-relayer/core"
)

// ErrNotSigned is returned by a guardian that has not observed the message with enough signatures yet.
var ErrNotSigned = errors.New("VAA is not signed yet")

const defaultRequestTimeout = 10 * time.Second

type GuardianClientConfig struct {
	// Hosts are guardian public RPC base URLs. Requests rotate over them.
	Hosts []string
	// Attempts is the total number of requests made for one VAA.
	Attempts uint
	// Interval is the pause between two requests for the same VAA.
	Interval time.Duration
	// RateLimit caps outgoing requests per second. Zero disables the limit.
	RateLimit float64
	// Timeout bounds a single request.
	Timeout time.Duration
}

func (cfg GuardianClientConfig) Validate() error {
	if len(cfg.Hosts) == 0 {
		return errors.New("at least one guardian RPC host is required")
	}
	for _, h := range cfg.Hosts {
		if !strings.HasPrefix(h, "http://") && !strings.HasPrefix(h, "https://") {
			return errors.Newf("guardian RPC host must be an http(s) URL: %q", h)
		}
	}
	if cfg.Attempts == 0 {
		return errors.New("fetch attempts must be positive")
	}
	if cfg.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}
	return nil
}

// GuardianClient fetches signed VAAs from the guardians' public REST API.
type GuardianClient struct {
	hosts      []string
	next       atomic.Uint64
	httpClient *http.Client
	limiter    *rate.Limiter
	attempts   uint
	interval   time.Duration
}

var _ core.AttestationFetcher = (*GuardianClient)(nil)

func NewGuardianClient(cfg GuardianClientConfig) (*GuardianClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, core.ConfigurationError(err)
	}
	hosts := make([]string, len(cfg.Hosts))
	for i, h := range cfg.Hosts {
		hosts[i] = strings.TrimRight(h, "/")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	c := &GuardianClient{
		hosts: hosts,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		attempts: cfg.Attempts,
		interval: cfg.Interval,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return c, nil
}

type signedVAAResponse struct {
	VAABytes string `json:"vaaBytes"`
}

// FetchSignedVAA polls the guardians until the VAA of the message is available
// or the attempts are used up.
func (c *GuardianClient) FetchSignedVAA(ctx context.Context, chain vaa.ChainID, emitter vaa.Address, sequence uint64) ([]byte, error) {
	id := core.MessageID{EmitterChain: chain, EmitterAddress: emitter, Sequence: sequence}
	logger := core.GetMessageLogger(id, "wormhole.guardian")

	var raw []byte
	err := retry.Do(func() error {
		bz, err := c.fetchFrom(ctx, c.pickHost(), id)
		if err != nil {
			return err
		}
		raw = bz
		return nil
	},
		retry.Attempts(c.attempts),
		retry.Delay(c.interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.DebugContext(ctx, "signed VAA not available yet", "try", n+1, "try_limit", c.attempts, "error", err.Error())
		}),
	)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "fetched signed VAA", "size", len(raw))
	return raw, nil
}

func (c *GuardianClient) pickHost() string {
	n := c.next.Add(1) - 1
	return c.hosts[n%uint64(len(c.hosts))]
}

func (c *GuardianClient) fetchFrom(ctx context.Context, host string, id core.MessageID) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	url := fmt.Sprintf("%s/v1/signed_vaa/%d/%s/%d", host, uint16(id.EmitterChain), id.EmitterAddress.String(), id.Sequence)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query guardian %s", host)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, errors.Wrapf(ErrNotSigned, "guardian %s has no VAA for %s", host, id)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Newf("guardian %s responded %s: %s", host, resp.Status, strings.TrimSpace(string(body)))
	}

	var body signedVAAResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrapf(err, "failed to decode response of guardian %s", host)
	}
	raw, err := base64.StdEncoding.DecodeString(body.VAABytes)
	if err != nil {
		return nil, errors.Wrapf(err, "guardian %s returned invalid vaaBytes", host)
	}
	if len(raw) == 0 {
		return nil, errors.Wrapf(ErrNotSigned, "guardian %s returned an empty VAA for %s", host, id)
	}
	return raw, nil
}
