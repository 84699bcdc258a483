// Package client talks to the pot API. Client implements potsync.RemoteStore
// so a local Session can write through it.
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

	"gatta/internal/models"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	Tokens  *TokenStore
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenStore
}

// APIError carries the server's error text and status
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is matches the sentinel whose text the server reported, so callers can use
// errors.Is(err, apperrors.ErrPotFull) on client errors.
func (e *APIError) Is(target error) bool {
	return target != nil && strings.HasPrefix(e.Message, target.Error())
}

func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		tokens: cfg.Tokens,
	}
}

// CreatePot creates a pot and keeps its organizer token in the token store
func (c *Client) CreatePot(ctx context.Context, req models.CreatePotRequest) (*models.CreatePotResponse, error) {
	var resp models.CreatePotResponse
	if err := c.do(ctx, http.MethodPost, "/api/pots", "", req, &resp); err != nil {
		return nil, err
	}
	if c.tokens != nil {
		if err := c.tokens.Put(resp.ID, resp.OrganizerToken); err != nil {
			return &resp, err
		}
	}
	return &resp, nil
}

func (c *Client) GetPot(ctx context.Context, potID string) (*models.PotView, error) {
	var view models.PotView
	if err := c.do(ctx, http.MethodGet, potPath(potID, ""), potID, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// UpdateSeat writes a seat's name and paid fields
func (c *Client) UpdateSeat(ctx context.Context, potID string, seat models.Seat) error {
	body := map[string]any{"name": seat.Name, "paid": seat.Paid}
	return c.do(ctx, http.MethodPatch, potPath(potID, "/seats/"+url.PathEscape(seat.ID)), potID, body, nil)
}

func (c *Client) ConfirmPayment(ctx context.Context, potID, name string) (*models.SeatResponse, error) {
	var resp models.SeatResponse
	if err := c.do(ctx, http.MethodPost, potPath(potID, "/confirm"), potID, models.NameRequest{Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) TogglePaid(ctx context.Context, potID, seatID string) (*models.SeatResponse, error) {
	var resp models.SeatResponse
	if err := c.do(ctx, http.MethodPost, potPath(potID, "/seats/"+url.PathEscape(seatID)+"/toggle"), potID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AddMember(ctx context.Context, potID, name string) (*models.SeatResponse, error) {
	var resp models.SeatResponse
	if err := c.do(ctx, http.MethodPost, potPath(potID, "/members"), potID, models.NameRequest{Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateBank(ctx context.Context, potID, bankName, iban string) (*models.PotView, error) {
	var view models.PotView
	req := models.UpdateBankRequest{BankName: bankName, IBAN: iban}
	if err := c.do(ctx, http.MethodPatch, potPath(potID, "/bank"), potID, req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) ShareMessage(ctx context.Context, potID string) (*models.ShareMessageResponse, error) {
	var msg models.ShareMessageResponse
	if err := c.do(ctx, http.MethodGet, potPath(potID, "/share"), potID, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// IsOrganizer reports whether a token for potID is held locally
func (c *Client) IsOrganizer(potID string) bool {
	return c.tokens.Token(potID) != ""
}

func potPath(potID, suffix string) string {
	return "/api/pots/" + url.PathEscape(potID) + suffix
}

// do sends body as JSON and decodes a 2xx response into out. potID selects
// the organizer token to attach, if one is held.
func (c *Client) do(ctx context.Context, method, path, potID string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(potID); potID != "" && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error}
}

// StatusOf returns the HTTP status of an APIError, or 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
