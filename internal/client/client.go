// Package client is the screen-facing data layer: a REST client for the
// order service with per-screen cancellation, plus the fetch → normalize →
// filter composition the screens consume. A failed request is reported once
// and never retried automatically.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sisteminha/internal/model"
	"sisteminha/internal/normalize"
)

// APIError is a non-2xx response. Message carries the JSON error body when
// the service sent one, otherwise the HTTP status text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SetToken installs the session token sent on every subsequent request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login authenticates and installs the returned session token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

type LoginResult struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// ListKits fetches the canonical order list. The raw payload goes through
// normalization, so envelope variants and sloppy field types are absorbed
// here, not in the screens.
func (c *Client) ListKits(ctx context.Context) ([]model.Kit, error) {
	var raw any
	if err := c.do(ctx, http.MethodGet, "/kits", nil, &raw); err != nil {
		return nil, err
	}
	return normalize.Kits(raw), nil
}

// GetKit fetches one order; (nil, nil) when it does not exist.
func (c *Client) GetKit(ctx context.Context, id int64) (*model.Kit, error) {
	var raw any
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/kits/%d", id), nil, &raw)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	k := normalize.Kit(raw)
	return &k, nil
}

// CreateKit submits an order in the canonical shape.
func (c *Client) CreateKit(ctx context.Context, k model.Kit) (*model.Kit, error) {
	var raw any
	if err := c.do(ctx, http.MethodPost, "/kits", k, &raw); err != nil {
		return nil, err
	}
	created := normalize.Kit(raw)
	return &created, nil
}

// DeleteKit removes an order.
func (c *Client) DeleteKit(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/kits/%d", id), nil, nil)
}

// SetStatus flips one per-category done flag (kind doces, salgados, bolos).
func (c *Client) SetStatus(ctx context.Context, id int64, kind string, value bool) error {
	body := map[string]bool{"value": value}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/kits/%d/status/%s", id, kind), body, nil)
}

// SetEntregue flips the delivered flag.
func (c *Client) SetEntregue(ctx context.Context, id int64, value bool) error {
	body := map[string]bool{"value": value}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/kits/%d/status/entregue", id), body, nil)
}

// ListPedidos fetches the legacy document list and normalizes it.
func (c *Client) ListPedidos(ctx context.Context) ([]model.Kit, error) {
	var raw any
	if err := c.do(ctx, http.MethodGet, "/pedidos", nil, &raw); err != nil {
		return nil, err
	}
	return normalize.Pedidos(raw), nil
}

// GetPedido fetches one legacy document; (nil, nil) on 404.
func (c *Client) GetPedido(ctx context.Context, id int64) (*model.Kit, error) {
	var raw any
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/pedidos/%d", id), nil, &raw)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	k := normalize.Pedido(raw)
	return &k, nil
}

// UltimoID asks the service for the highest order number ever assigned.
func (c *Client) UltimoID(ctx context.Context) (int64, error) {
	var out struct {
		UltimoID int64 `json:"ultimoId"`
	}
	if err := c.do(ctx, http.MethodGet, "/pedidos?ultimo_id=true", nil, &out); err != nil {
		return 0, err
	}
	return out.UltimoID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error   string   `json:"error"`
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	if json.Unmarshal(data, &body) == nil {
		switch {
		case body.Error != "":
			return body.Error
		case body.Message != "":
			return body.Message
		case len(body.Errors) > 0:
			return strings.Join(body.Errors, "; ")
		}
	}
	return http.StatusText(resp.StatusCode)
}

func isNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusNotFound
}
