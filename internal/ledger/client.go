package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/shenikar/tourist_safety/internal/apperr"
)

// ErrNotConfigured - адрес шлюза реестра не задан
var ErrNotConfigured = errors.New("ledger gateway is not configured")

// Client - HTTP клиент шлюза распределенного реестра.
// Реестр хранит пары (event_id, payload_hash) и отвечает, совпадает ли хэш.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создает клиент с повторными попытками на сетевые ошибки и 5xx
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	rC := retryablehttp.NewClient()
	rC.Logger = nil
	rC.RetryMax = 3
	client := rC.StandardClient()
	client.Timeout = timeout

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: client,
	}
}

type submitRequest struct {
	EventID     string `json:"event_id"`
	PayloadHash string `json:"payload_hash"`
}

type submitResponse struct {
	TxHash string `json:"tx_hash"`
}

type verifyResponse struct {
	Verified bool `json:"verified"`
}

// Submit записывает хэш события и возвращает ссылку на транзакцию
func (c *Client) Submit(ctx context.Context, eventID, payloadHash string) (string, error) {
	if c.baseURL == "" {
		return "", apperr.Dependency("ledger", ErrNotConfigured)
	}

	body, err := json.Marshal(submitRequest{EventID: eventID, PayloadHash: payloadHash})
	if err != nil {
		return "", fmt.Errorf("ledger: failed to marshal submit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events", bytes.NewReader(body))
	if err != nil {
		return "", apperr.Dependency("ledger", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out submitResponse
	if err := c.do(req, &out); err != nil {
		if errors.Is(err, errUnknownEvent) {
			return "", apperr.Dependency("ledger", errors.New("gateway has no events endpoint"))
		}
		return "", err
	}
	if out.TxHash == "" {
		return "", apperr.Dependency("ledger", errors.New("gateway returned an empty tx hash"))
	}
	return out.TxHash, nil
}

// Verify проверяет, что реестр хранит именно этот хэш для события.
// Неизвестное реестру событие считается непроверенным, а не ошибкой.
func (c *Client) Verify(ctx context.Context, eventID, payloadHash string) (bool, error) {
	if c.baseURL == "" {
		return false, apperr.Dependency("ledger", ErrNotConfigured)
	}

	endpoint := fmt.Sprintf("%s/events/%s/verify?payload_hash=%s",
		c.baseURL, url.PathEscape(eventID), url.QueryEscape(payloadHash))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, apperr.Dependency("ledger", err)
	}

	var out verifyResponse
	if err := c.do(req, &out); err != nil {
		if errors.Is(err, errUnknownEvent) {
			return false, nil
		}
		return false, err
	}
	return out.Verified, nil
}

var errUnknownEvent = errors.New("event is unknown to the ledger")

func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Dependency("ledger", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errUnknownEvent
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return apperr.Dependency("ledger", fmt.Errorf("gateway responded with status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Dependency("ledger", fmt.Errorf("failed to decode gateway response: %w", err))
	}
	return nil
}
