// Package client is the dashboard's typed wrapper around the gymadmin REST API.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/fitdesk/gymadmin/internal/app/models/dto"
)

// RequestIDHeader is sent with every request and echoed back by the API
const RequestIDHeader = "X-Request-ID"

// TokenSource supplies and persists the session tokens
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(auth *dto.AuthResponse) error
}

// Config configures a Client
type Config struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource
	Logger  zerolog.Logger
	// BreakerFailures is the number of consecutive 5xx or network failures
	// that opens the circuit. Zero means 5.
	BreakerFailures uint32
	// BreakerTimeout is how long the circuit stays open. Zero means 30s.
	BreakerTimeout time.Duration
}

// Client talks to the API and exposes one module per resource
type Client struct {
	http    *resty.Client
	tokens  TokenSource
	breaker *gobreaker.CircuitBreaker[*resty.Response]
	logger  zerolog.Logger

	refreshMu sync.Mutex

	Auth        *AuthAPI
	Classes     *ClassesAPI
	Staff       *StaffAPI
	Users       *UsersAPI
	Enrollments *EnrollmentsAPI
	Videos      *VideosAPI
}

// New creates a Client for the API rooted at cfg.BaseURL (e.g. http://localhost:8080/api)
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	openFor := cfg.BreakerTimeout
	if openFor <= 0 {
		openFor = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	c := &Client{
		http:   httpClient,
		tokens: cfg.Tokens,
		logger: cfg.Logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        "gymadmin-api",
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("API circuit breaker state changed")
		},
	})

	c.Auth = &AuthAPI{c: c}
	c.Classes = &ClassesAPI{c: c}
	c.Staff = &StaffAPI{c: c}
	c.Users = &UsersAPI{c: c}
	c.Enrollments = &EnrollmentsAPI{c: c}
	c.Videos = &VideosAPI{c: c}
	return c
}

type fileUpload struct {
	name   string
	reader io.Reader
}

// call describes one API request
type call struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	file   *fileUpload
	noAuth bool
}

// execute sends a single attempt through the circuit breaker. Responses with a
// 5xx status come back together with an error so they count as failures.
func (c *Client) execute(ctx context.Context, cl call, token string) (*resty.Response, error) {
	resp, err := c.breaker.Execute(func() (*resty.Response, error) {
		req := c.http.R().
			SetContext(ctx).
			SetHeader(RequestIDHeader, uuid.NewString())
		if token != "" {
			req.SetAuthToken(token)
		}
		if len(cl.query) > 0 {
			req.SetQueryParamsFromValues(cl.query)
		}
		if cl.body != nil {
			req.SetBody(cl.body)
		}
		if cl.file != nil {
			req.SetFileReader("file", cl.file.name, cl.file.reader)
		}

		resp, err := req.Execute(cl.method, cl.path)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, toAPIError(resp)
		}
		return resp, nil
	})

	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open after repeated failures", ErrNetwork)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, cl.method, cl.path, err)
	}
	return resp, nil
}

func (c *Client) accessToken(cl call) string {
	if cl.noAuth || c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken()
}

// send performs cl, refreshing the session once on 401, and decodes the
// envelope's data into out (which may be nil).
func (c *Client) send(ctx context.Context, cl call, out interface{}) error {
	token := c.accessToken(cl)
	resp, err := c.execute(ctx, cl, token)
	if err != nil {
		return err
	}

	if resp.StatusCode() == http.StatusUnauthorized && !cl.noAuth && cl.file == nil {
		if c.refresh(ctx, token) == nil {
			resp, err = c.execute(ctx, cl, c.accessToken(cl))
			if err != nil {
				return err
			}
		}
	}

	if resp.IsError() {
		return toAPIError(resp)
	}
	return decodeData(resp.Body(), out)
}

// refresh swaps the refresh token for a new pair. When another request already
// refreshed since failed was issued, it does nothing.
func (c *Client) refresh(ctx context.Context, failed string) error {
	if c.tokens == nil {
		return ErrUnauthorized
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if current := c.tokens.AccessToken(); current != "" && current != failed {
		return nil
	}
	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		return ErrUnauthorized
	}

	resp, err := c.execute(ctx, call{
		method: http.MethodPost,
		path:   "/auth/refresh",
		body:   dto.RefreshTokenRequest{RefreshToken: refreshToken},
		noAuth: true,
	}, "")
	if err != nil {
		return err
	}
	if resp.IsError() {
		c.logger.Debug().Int("status", resp.StatusCode()).Msg("Session refresh rejected")
		return toAPIError(resp)
	}

	var auth dto.AuthResponse
	if err := decodeData(resp.Body(), &auth); err != nil {
		return err
	}
	if err := c.tokens.SetTokens(&auth); err != nil {
		return fmt.Errorf("storing refreshed session: %w", err)
	}
	c.logger.Debug().Msg("Session refreshed")
	return nil
}

type successEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeData(body []byte, out interface{}) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	var env successEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decoding response envelope: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

func idPath(base string, id int64) string {
	return fmt.Sprintf("%s/%d", base, id)
}
