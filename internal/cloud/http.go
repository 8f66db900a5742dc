package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quocvuong92/monaca-cli/internal/auth"
	"github.com/quocvuong92/monaca-cli/internal/constants"
	"github.com/quocvuong92/monaca-cli/internal/logging"
)

// SessionHeader carries the session token on every authenticated request.
const SessionHeader = "X-Monaca-Session"

// Options configure an HTTPClient.
type Options struct {
	Endpoint      string
	Proxy         string
	ClientType    string
	ClientVersion string
	Timeout       time.Duration
	Logger        *logging.Logger
}

// HTTPClient talks to the Monaca Cloud REST API.
type HTTPClient struct {
	httpClient *http.Client
	// transfer moves file contents; stream follows build events and is
	// bounded by its context instead of a client timeout.
	transfer   *http.Client
	stream     *http.Client
	endpoint   string
	clientType string
	version    string
	session    *auth.Session
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client. Requests go through the proxy when one is
// set and are logged at debug level.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Proxy != "" {
		u, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", opts.Proxy, err)
		}
		base.Proxy = http.ProxyURL(u)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.DefaultLogger
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = constants.DefaultAPITimeout
	}

	transport := logging.NewLoggingRoundTripper(base, logging.NewHTTPLogger(logger))

	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		transfer:   &http.Client{Timeout: constants.DefaultUploadTimeout, Transport: transport},
		stream:     &http.Client{Transport: transport},
		endpoint:   strings.TrimSuffix(opts.Endpoint, "/"),
		clientType: opts.ClientType,
		version:    opts.ClientVersion,
	}, nil
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	ClientType string `json:"clientType"`
	Version    string `json:"version"`
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Relogin loads the saved session and checks it with the cloud.
func (c *HTTPClient) Relogin(ctx context.Context) error {
	s, err := auth.LoadSession()
	if err != nil {
		logging.Debug("no usable session", logging.Fields{"error": err.Error()})
		return ErrNotLoggedIn
	}
	c.session = s

	_, err = WithRetry(ctx, func() (struct{}, error) {
		return struct{}{}, c.doJSON(ctx, http.MethodGet, "/api/user/info", nil, nil)
	})
	if isUnauthorized(err) {
		c.session = nil
		return ErrNotLoggedIn
	}
	return err
}

// Login signs in and stores the session.
func (c *HTTPClient) Login(ctx context.Context, email, password string) error {
	req := loginRequest{Email: email, Password: password, ClientType: c.clientType, Version: c.version}

	resp, err := WithRetry(ctx, func() (*loginResponse, error) {
		var out loginResponse
		if err := c.doJSON(ctx, http.MethodPost, "/api/user/login", req, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return err
	}
	if resp.Token == "" {
		return fmt.Errorf("login response did not contain a session token")
	}

	c.session = &auth.Session{Token: resp.Token, Email: email, Endpoint: c.endpoint}
	return auth.SaveSession(*c.session)
}

// Logout ends the session on the cloud, when there is one, and deletes it locally.
func (c *HTTPClient) Logout(ctx context.Context) error {
	if s, err := auth.LoadSession(); err == nil {
		c.session = s
		if err := c.doJSON(ctx, http.MethodPost, "/api/user/logout", nil, nil); err != nil && !isUnauthorized(err) {
			logging.Warn("cloud logout failed, removing local session anyway", logging.Fields{"error": err.Error()})
		}
	}
	c.session = nil
	return auth.DeleteSession()
}

// BuildPageURL is the cloud page for building a project in the browser.
func (c *HTTPClient) BuildPageURL(projectID string) string {
	return fmt.Sprintf("%s/project/%s/build", c.endpoint, url.PathEscape(projectID))
}

// newRequest builds a request with the client, request-id and session headers.
func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", fmt.Sprintf("%s-%s/%s", constants.AppName, c.clientType, c.version))
	req.Header.Set("X-Request-Id", uuid.New().String())
	if c.session != nil {
		req.Header.Set(SessionHeader, c.session.Token)
	}
	return req, nil
}

// send performs req and turns non-2xx answers into *APIError.
func (c *HTTPClient) send(req *http.Request) (*http.Response, error) {
	return c.sendWith(c.httpClient, req)
}

func (c *HTTPClient) sendWith(hc *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	msg := fmt.Sprintf("status code %d", resp.StatusCode)
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}
	return nil, &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("Monaca Cloud error: %s", msg),
	}
}

// doJSON sends in as JSON (when non-nil) and decodes the answer into out
// (when non-nil).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}
