package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"memberlink/internal/identity/models"
	"memberlink/pkg/platform/sentinel"
)

const (
	usersPath        = "/auth/v1/admin/users"
	generateLinkPath = "/auth/v1/admin/generate_link"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the directory admin REST API with a service-role key.
type Client struct {
	baseURL    string
	serviceKey string
	http       HTTPDoer
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.http = doer
	}
}

func NewClient(baseURL, serviceKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListAccounts(ctx context.Context, page, perPage int) ([]models.AuthAccount, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var resp ListResponse
	if err := c.do(ctx, http.MethodGet, usersPath+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("list accounts page %d: %w", page, err)
	}
	accounts := make([]models.AuthAccount, 0, len(resp.Users))
	for _, u := range resp.Users {
		accounts = append(accounts, u.ToAccount())
	}
	return accounts, nil
}

func (c *Client) CreateAccount(ctx context.Context, params CreateAccountParams) (*models.AuthAccount, error) {
	body := CreateAccountRequest{
		Email:        params.Email,
		EmailConfirm: params.EmailConfirm,
		UserMetadata: params.UserMetadata,
		AppMetadata:  params.AppMetadata,
	}
	var resp WireAccount
	if err := c.do(ctx, http.MethodPost, usersPath, body, &resp); err != nil {
		return nil, fmt.Errorf("create account %s: %w", params.Email, err)
	}
	account := resp.ToAccount()
	return &account, nil
}

func (c *Client) UpdateUserMetadata(ctx context.Context, accountID string, meta map[string]any) (*models.AuthAccount, error) {
	var resp WireAccount
	path := usersPath + "/" + url.PathEscape(accountID)
	if err := c.do(ctx, http.MethodPut, path, UpdateAccountRequest{UserMetadata: meta}, &resp); err != nil {
		return nil, fmt.Errorf("update account %s: %w", accountID, err)
	}
	account := resp.ToAccount()
	return &account, nil
}

func (c *Client) GenerateLink(ctx context.Context, params GenerateLinkParams) (*ActionLink, error) {
	body := GenerateLinkRequest{
		Type:       string(params.Kind),
		Email:      params.Email,
		Data:       params.Data,
		RedirectTo: params.RedirectTo,
	}
	var resp GenerateLinkResponse
	if err := c.do(ctx, http.MethodPost, generateLinkPath, body, &resp); err != nil {
		return nil, fmt.Errorf("generate %s link for %s: %w", params.Kind, params.Email, err)
	}
	if resp.ActionLink == "" {
		return nil, fmt.Errorf("generate %s link for %s: empty action link", params.Kind, params.Email)
	}
	return &ActionLink{URL: resp.ActionLink, Account: resp.ToAccount()}, nil
}

// Ping verifies the directory is reachable and the service key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListAccounts(ctx, 1, 1)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("request timeout: %w", err)
		}
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var wire WireError
	msg := ""
	if json.Unmarshal(raw, &wire) == nil {
		msg = wire.Text()
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = sentinel.ErrUnauthorized
	case http.StatusNotFound:
		kind = sentinel.ErrNotFound
	case http.StatusConflict:
		kind = sentinel.ErrAlreadyUsed
	case http.StatusUnprocessableEntity:
		kind = sentinel.ErrInvalidInput
		if wire.ErrorCode == "email_exists" || strings.Contains(msg, "already been registered") {
			kind = sentinel.ErrAlreadyUsed
		}
	case http.StatusTooManyRequests:
		kind = sentinel.ErrRateLimited
	case http.StatusBadRequest:
		kind = sentinel.ErrInvalidInput
	default:
		kind = sentinel.ErrUnavailable
	}
	return fmt.Errorf("%w: status %d: %s", kind, resp.StatusCode, msg)
}

var _ Directory = (*Client)(nil)
