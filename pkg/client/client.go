// Package client is a typed Go client for the daisyworld server API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// State mirrors the server's JSON snapshot. Temperature fields are nil when
// the server reports a non-physical (NaN) value.
type State struct {
	Time        float64                  `json:"time"`
	Steps       int                      `json:"steps"`
	Luminosity  float64                  `json:"luminosity"`
	Albedo      float64                  `json:"albedo"`
	Temperature *float64                 `json:"temperature"`
	Ground      float64                  `json:"ground"`
	Growing     bool                     `json:"growing"`
	Round       bool                     `json:"round"`
	Running     bool                     `json:"running"`
	Species     map[string]SpeciesState  `json:"species"`
	Bands       []BandState              `json:"bands,omitempty"`
	Latitudes   map[string]LatitudeState `json:"latitudes,omitempty"`
}

// SpeciesState describes one daisy variety.
type SpeciesState struct {
	Proportion  float64  `json:"proportion"`
	Enabled     bool     `json:"enabled"`
	Temperature *float64 `json:"temperature"`
	GrowthRate  *float64 `json:"growth_rate"`
}

// BandState is one display band's cover composition, pole first.
type BandState struct {
	White  float64 `json:"white"`
	Black  float64 `json:"black"`
	Gray   float64 `json:"gray"`
	Ground float64 `json:"ground"`
}

// LatitudeState is the per-species survival range across latitude bands.
type LatitudeState struct {
	Min  int      `json:"min"`
	Max  int      `json:"max"`
	Mean *float64 `json:"mean"`
}

// StatusError carries a non-2xx response with its body.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Client talks to a daisyworld server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the server at baseURL. A nil httpClient uses
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Health checks the server liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("building health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: %w", statusError(resp))
	}
	return nil
}

// State fetches the current world snapshot.
func (c *Client) State(ctx context.Context) (State, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/state", nil)
	if err != nil {
		return State{}, fmt.Errorf("building state request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return State{}, fmt.Errorf("fetching state: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return State{}, fmt.Errorf("fetching state: %w", statusError(resp))
	}
	var state State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return State{}, fmt.Errorf("decoding state: %w", err)
	}
	return state, nil
}

// SetLuminosity sets the solar luminosity.
func (c *Client) SetLuminosity(ctx context.Context, value float64) (State, error) {
	return c.post(ctx, "/luminosity", map[string]any{"value": value})
}

// SetGrowth freezes or resumes daisy growth.
func (c *Client) SetGrowth(ctx context.Context, enabled bool) (State, error) {
	return c.post(ctx, "/growth", map[string]any{"enabled": enabled})
}

// SetMode switches between the flat and latitude-resolved surface.
func (c *Client) SetMode(ctx context.Context, round bool) (State, error) {
	return c.post(ctx, "/mode", map[string]any{"round": round})
}

// SetSpeciesEnabled toggles one species by name (white, black or gray).
func (c *Client) SetSpeciesEnabled(ctx context.Context, species string, enabled bool) (State, error) {
	return c.post(ctx, "/species/"+species+"/enabled", map[string]any{"enabled": enabled})
}

// Step advances the world by count updates.
func (c *Client) Step(ctx context.Context, count int) (State, error) {
	return c.post(ctx, "/step", map[string]any{"count": count})
}

// Boost reseeds extinct populations. A positive threshold overrides the
// configured boost level first; zero keeps it.
func (c *Client) Boost(ctx context.Context, threshold float64) (State, error) {
	if threshold == 0 {
		return c.post(ctx, "/boost", nil)
	}
	return c.post(ctx, "/boost", map[string]any{"threshold": threshold})
}

// Reset rebuilds the world. A zero seed reuses the configured one.
func (c *Client) Reset(ctx context.Context, seed int64) (State, error) {
	return c.post(ctx, "/reset", map[string]any{"seed": seed})
}

// Run starts or stops the server's background stepping loop.
func (c *Client) Run(ctx context.Context, running bool, tps int) (State, error) {
	return c.post(ctx, "/run", map[string]any{"running": running, "tps": tps})
}

// Stream connects to the websocket feed and calls handle for every state
// broadcast until the context is canceled or the connection drops.
func (c *Client) Stream(ctx context.Context, handle func(State)) error {
	wsURL := c.baseURL + "/ws"
	switch {
	case strings.HasPrefix(wsURL, "https"):
		wsURL = "wss" + strings.TrimPrefix(wsURL, "https")
	case strings.HasPrefix(wsURL, "http"):
		wsURL = "ws" + strings.TrimPrefix(wsURL, "http")
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", wsURL, err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Unblock reads when the context goes away.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading stream: %w", err)
		}
		var state State
		if err := json.Unmarshal(payload, &state); err != nil {
			return fmt.Errorf("decoding stream state: %w", err)
		}
		handle(state)
	}
}

func (c *Client) post(ctx context.Context, path string, payload any) (State, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return State{}, fmt.Errorf("encoding %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return State{}, fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return State{}, fmt.Errorf("posting %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return State{}, fmt.Errorf("posting %s: %w", path, statusError(resp))
	}
	var state State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return State{}, fmt.Errorf("decoding %s response: %w", path, err)
	}
	return state, nil
}

func statusError(resp *http.Response) *StatusError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
}
