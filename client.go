package adminauth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	errors "github.com/goliatone/go-errors"
)

// Client is the authorized HTTP transport for the admin API. Every request
// is decorated with the stored bearer token on the way out; on the way back
// authorization failures are mapped to typed errors, and a rejected
// credential clears the session before the error reaches the caller.
//
// The client never retries. A blanket retry on a non-idempotent call like
// signup could create duplicate accounts, so retry policy stays with the
// caller.
type Client struct {
	baseURL    string
	signupPath string
	hc         *http.Client
	sessions   *Store
	logger     Logger
}

// ClientOption customizes client construction.
type ClientOption func(*Client)

// WithClientLogger overrides the default logger.
func WithClientLogger(logger Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient swaps the underlying http.Client, keeping its timeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// NewClient builds an authorized client over the given session store.
func NewClient(cfg Config, sessions *Store, opts ...ClientOption) *Client {
	if sessions == nil {
		panic("Missing session Store in API client...")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	signupPath := cfg.SignupPath
	if signupPath == "" {
		signupPath = "/auth/signup"
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		signupPath: signupPath,
		hc:         &http.Client{Timeout: timeout},
		sessions:   sessions,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// envelope is the response shape the admin API wraps every payload in.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

// Get issues an authorized GET and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authorized POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues an authorized PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues an authorized DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends one request through the authorization pipeline.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "failed to encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// Outbound hook: a synchronous store read, never a network call.
	if token := c.sessions.Get().Token; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "upstream request failed").
			WithTextCode(textCodeTransport).
			WithCode(errors.CodeInternal).
			WithMetadata(map[string]any{"path": path})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to read response").
			WithTextCode(textCodeTransport).
			WithCode(errors.CodeInternal).
			WithMetadata(map[string]any{"path": path})
	}

	var env envelope
	decoded := len(raw) > 0 && json.Unmarshal(raw, &env) == nil

	return c.observe(ctx, resp.StatusCode, path, env, decoded, raw, out)
}

// observe is the inbound hook. The 401 branch clears the session before
// the error is returned, so a guard evaluated synchronously in the error
// path already sees the anonymous state.
func (c *Client) observe(ctx context.Context, status int, path string, env envelope, decoded bool, raw []byte, out any) error {
	meta := map[string]any{"path": path, "status": status}
	if decoded && env.Message != "" {
		meta["server_message"] = env.Message
	}

	switch {
	case status == http.StatusUnauthorized:
		c.logger.Info("credential rejected, clearing session: %s", path)
		c.sessions.Revoke(ctx)
		return ErrUnauthorized.Clone().WithMetadata(meta)

	case status == http.StatusForbidden:
		// Authenticated but not allowed: the session stays.
		return ErrForbidden.Clone().WithMetadata(meta)

	case status >= http.StatusInternalServerError:
		return ErrTransport.Clone().WithMetadata(meta)

	case status >= http.StatusBadRequest:
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return errors.New(msg, errors.CategoryBadInput).
			WithTextCode(textCodeRequestFailed).
			WithCode(status).
			WithMetadata(meta)
	}

	if !decoded {
		if out == nil && len(raw) == 0 {
			return nil
		}
		return errors.New("malformed response envelope", errors.CategoryInternal).
			WithTextCode(textCodeTransport).
			WithCode(errors.CodeInternal).
			WithMetadata(meta)
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request rejected"
		}
		return errors.New(msg, errors.CategoryBadInput).
			WithTextCode(textCodeRequestFailed).
			WithCode(errors.CodeBadRequest).
			WithMetadata(meta)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to decode response data").
				WithMetadata(meta)
		}
	}

	return nil
}

// SignupPayload is the body posted to the signup endpoint.
type SignupPayload struct {
	DisplayName      string `json:"displayName"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	PasswordConfirm  string `json:"passwordConfirm"`
	Phone            string `json:"phone,omitempty"`
	OrganizationName string `json:"organizationName"`
	OrganizationType string `json:"organizationType,omitempty"`
}

func (p SignupPayload) redacted() SignupPayload {
	p.Password = "[redacted]"
	p.PasswordConfirm = "[redacted]"
	return p
}

// SignupResult carries the credentials the server issues for a new account.
type SignupResult struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         *UserSummary `json:"user"`
}

// Signup posts the signup payload. The returned credentials are handed
// back to the caller; committing them into the session store is the
// wizard's decision, not the transport's.
func (c *Client) Signup(ctx context.Context, payload SignupPayload) (SignupResult, error) {
	var result SignupResult
	if err := c.Post(ctx, c.signupPath, payload, &result); err != nil {
		return SignupResult{}, err
	}
	return result, nil
}
