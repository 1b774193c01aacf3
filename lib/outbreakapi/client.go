package outbreakapi

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"outbreakinfo/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("outbreakapi")

// DefaultBaseURL is the production API, dev.outbreak.info carries the
// same endpoints.
const DefaultBaseURL = "https://api.outbreak.info"

var (
	ErrMissingEndpoint  = fmt.Errorf("data not being returned by server, the endpoint may be missing")
	ErrClientRequest    = fmt.Errorf("request error (client-side)")
	ErrServerRequest    = fmt.Errorf("request error (server-side)")
	ErrNotAuthenticated = fmt.Errorf("no authorization token available, please reauthenticate")
)

// TokenSource resolves the bearer token for a given API host.
type TokenSource interface {
	Token(ctx context.Context, host string) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (s StaticToken) Token(ctx context.Context, host string) (string, error) {
	return string(s), nil
}

type Client struct {
	http    *resty.Client
	baseURL *url.URL
	tokens  TokenSource
}

type ClientOptions struct {
	// defaults to DefaultBaseURL
	BaseURL string
	// optional, anonymous requests are made without one
	Tokens TokenSource
}

func NewClient(opts ClientOptions) (*Client, error) {
	rawURL := opts.BaseURL
	if rawURL == "" {
		rawURL = DefaultBaseURL
	}
	baseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(rawURL)
	client.SetTimeout(time.Minute)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	// the API sits behind cloudflare
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "outbreakinfo-go")

	// 2 requests max per second
	// max burst >= 2 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(2, 2)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, "outbreakapi/http")

	return &Client{
		http:    client,
		baseURL: baseURL,
		tokens:  opts.Tokens,
	}, nil
}

func (c *Client) Host() string {
	return c.baseURL.Hostname()
}

// authorization resolves the Authorization header value. When the endpoint
// tolerates anonymous access a missing token is not an error.
func (c *Client) authorization(ctx context.Context, required bool) (string, error) {
	if c.tokens == nil {
		if required {
			return "", ErrNotAuthenticated
		}
		return "", nil
	}
	token, err := c.tokens.Token(ctx, c.Host())
	if err != nil {
		if required {
			return "", err
		}
		return "", nil
	}
	if token == "" {
		if required {
			return "", ErrNotAuthenticated
		}
		return "", nil
	}
	return "Bearer " + token, nil
}

func checkResponse(res *resty.Response) error {
	contentType := res.Header().Get("content-type")
	if !strings.Contains(contentType, "application/json") {
		return ErrMissingEndpoint
	}
	code := res.StatusCode()
	switch {
	case code >= 400 && code <= 499:
		return fmt.Errorf("%w: status %d", ErrClientRequest, code)
	case code >= 500 && code <= 599:
		return fmt.Errorf("%w: status %d", ErrServerRequest, code)
	}
	return nil
}
