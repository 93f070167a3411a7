// Package client is a typed Go client for the DoorSets admin API. It logs
// in, keeps the token pair fresh, unwraps the response envelope and caches
// list queries for a short time.
package client

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

	"github.com/doorsets/backend/internal/infrastructure/cache"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultCacheTTL  = 30 * time.Second
	defaultUserAgent = "doorsets-client/1.0"

	codeTokenExpired = "TOKEN_EXPIRED"
)

// Client talks to one DoorSets API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	tokens     TokenStore
	cache      cache.QueryCache
	cacheTTL   time.Duration
	refreshes  singleflight.Group

	Items          *ItemResource
	Categories     *CategoryResource
	Assemblies     *AssemblyResource
	Customers      *CustomerResource
	Suppliers      *SupplierResource
	PickLists      *PickListResource
	PurchaseOrders *PurchaseOrderResource
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenStore keeps the token pair somewhere other than memory
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) {
		if s != nil {
			c.tokens = s
		}
	}
}

// WithCacheTTL sets how long list results are served from the cache. Zero
// disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:8080/api
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme %q", u.Scheme)
	}

	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  defaultUserAgent,
		tokens:     NewMemoryTokenStore(),
		cacheTTL:   defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.cache = cache.NoopQueryCache{}
	if c.cacheTTL > 0 {
		c.cache = cache.NewInMemoryQueryCache(c.cacheTTL)
	}

	c.Items = &ItemResource{newResource[ItemRequest, Item](c, entityItem)}
	c.Categories = &CategoryResource{newResource[CategoryRequest, Category](c, "Category")}
	c.Assemblies = &AssemblyResource{newResource[AssemblyRequest, Assembly](c, entityAssembly)}
	c.Customers = &CustomerResource{newResource[ContactRequest, Customer](c, entityCustomer)}
	c.Suppliers = &SupplierResource{newResource[SupplierRequest, Supplier](c, entitySupplier)}
	c.PickLists = &PickListResource{newResource[PickListRequest, PickList](c, entityPickList)}
	c.PurchaseOrders = &PurchaseOrderResource{newResource[PurchaseOrderRequest, PurchaseOrder](c, entityPurchaseOrder)}
	return c, nil
}

// Close releases the list cache
func (c *Client) Close() error {
	return c.cache.Close()
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ApiError is a failed API call. Code is the machine readable error code of
// the envelope, or empty when the server did not answer with one.
type ApiError struct {
	StatusCode int
	Code       string
	Messages   []string
	RequestID  string
}

func (e *ApiError) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%s, status %d)", msg, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
}

// IsCode reports whether err is an ApiError with the given code
func IsCode(err error, code string) bool {
	var apiErr *ApiError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type envelope struct {
	Succeeded bool            `json:"succeeded"`
	Messages  []string        `json:"messages"`
	Data      json.RawMessage `json:"data"`
	Code      string          `json:"code"`
	RequestID string          `json:"requestId"`
}

// request describes one API call
type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	public  bool
	payload []byte
	// contentType overrides JSON for pre-encoded payloads such as multipart
	contentType string
}

// call runs req, decoding the envelope data into out when out is not nil
func (c *Client) call(ctx context.Context, req request, out any) error {
	data, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	return decodeData(data, out)
}

// send runs req and returns the raw envelope data. A 401 TOKEN_EXPIRED
// answer is retried once after refreshing the token pair.
func (c *Client) send(ctx context.Context, req request) (json.RawMessage, error) {
	if req.body != nil && req.payload == nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		req.payload = b
	}

	data, err := c.roundTrip(ctx, req)
	if req.public || !IsCode(err, codeTokenExpired) {
		return data, err
	}
	if rerr := c.refresh(ctx); rerr != nil {
		return nil, rerr
	}
	return c.roundTrip(ctx, req)
}

func (c *Client) roundTrip(ctx context.Context, req request) (json.RawMessage, error) {
	resp, err := c.raw(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &ApiError{StatusCode: resp.StatusCode, Messages: []string{strings.TrimSpace(string(body))}}
		}
		return nil, fmt.Errorf("decoding response envelope: %w", err)
	}
	if !env.Succeeded || resp.StatusCode >= 300 {
		return nil, &ApiError{
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Messages:   env.Messages,
			RequestID:  env.RequestID,
		}
	}
	return env.Data, nil
}

// raw executes req and hands back the undecoded response
func (c *Client) raw(ctx context.Context, req request) (*http.Response, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.payload != nil {
		body = bytes.NewReader(req.payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.payload != nil {
		ct := req.contentType
		if ct == "" {
			ct = "application/json"
		}
		httpReq.Header.Set("Content-Type", ct)
	}
	if !req.public {
		if t, ok := c.tokens.Get(); ok && t.AccessToken != "" {
			httpReq.Header.Set("Authorization", "Bearer "+t.AccessToken)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	return resp, nil
}

// download runs a GET that answers with a file instead of an envelope.
// Failures still come back as an envelope.
func (c *Client) download(ctx context.Context, path string, query url.Values) (*File, error) {
	f, err := c.fetchFile(ctx, path, query)
	if !IsCode(err, codeTokenExpired) {
		return f, err
	}
	if rerr := c.refresh(ctx); rerr != nil {
		return nil, rerr
	}
	return c.fetchFile(ctx, path, query)
}

func (c *Client) fetchFile(ctx context.Context, path string, query url.Values) (*File, error) {
	resp, err := c.raw(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode >= 300 || strings.HasPrefix(ct, "application/json") {
		var env envelope
		if jerr := json.Unmarshal(body, &env); jerr == nil && !env.Succeeded {
			return nil, &ApiError{StatusCode: resp.StatusCode, Code: env.Code, Messages: env.Messages, RequestID: env.RequestID}
		}
		if resp.StatusCode >= 300 {
			return nil, &ApiError{StatusCode: resp.StatusCode, Messages: []string{strings.TrimSpace(string(body))}}
		}
	}
	return &File{
		ContentType:        ct,
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		Content:            body,
	}, nil
}

func decodeData(data json.RawMessage, out any) error {
	if out == nil || len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}
