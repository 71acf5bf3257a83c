package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"daisyworld/internal/sims/daisyworld"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(daisyworld.New(), nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func postJSON(t *testing.T, url, body string) (*http.Response, State) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	var state State
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
			t.Fatalf("decoding state from %s failed: %v", url, err)
		}
	}
	return resp, state
}

func getState(t *testing.T, base string) State {
	t.Helper()
	resp, err := http.Get(base + "/state")
	if err != nil {
		t.Fatalf("GET /state failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /state returned %d", resp.StatusCode)
	}
	var state State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decoding state failed: %v", err)
	}
	return state
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestStateSnapshot(t *testing.T) {
	_, ts := newTestServer(t)
	state := getState(t, ts.URL)

	if state.Steps != 0 || state.Time != 0 {
		t.Fatalf("fresh world should be at step 0, got steps %d time %f", state.Steps, state.Time)
	}
	if state.Luminosity != 1 {
		t.Fatalf("expected luminosity 1, got %f", state.Luminosity)
	}
	if state.Temperature == nil || *state.Temperature < 26.8 || *state.Temperature > 27 {
		t.Fatalf("half-and-half start should sit near 26.87 C, got %v", state.Temperature)
	}
	white, ok := state.Species["white"]
	if !ok || white.Proportion != 0.5 || !white.Enabled {
		t.Fatalf("unexpected white species state: %+v", white)
	}
	if gray := state.Species["gray"]; gray.Enabled {
		t.Fatal("gray daisies should default to disabled")
	}
	if len(state.Bands) != 0 || state.Latitudes != nil {
		t.Fatal("flat worlds must not report latitude data")
	}
	if !state.Growing || state.Round || state.Running {
		t.Fatalf("unexpected flags: %+v", state)
	}
}

func TestLuminosityEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, state := postJSON(t, ts.URL+"/luminosity", `{"value":1.3}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if state.Luminosity != 1.3 {
		t.Fatalf("expected luminosity 1.3, got %f", state.Luminosity)
	}

	resp, _ = postJSON(t, ts.URL+"/luminosity", `{nope}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed json should 400, got %d", resp.StatusCode)
	}
}

func TestTemperatureNullForNonPhysicalLuminosity(t *testing.T) {
	_, ts := newTestServer(t)

	resp, state := postJSON(t, ts.URL+"/luminosity", `{"value":-1}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("negative luminosity is unguarded, expected 200, got %d", resp.StatusCode)
	}
	if state.Temperature != nil {
		t.Fatalf("non-physical temperature should serialize as null, got %v", *state.Temperature)
	}
}

func TestStepEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, state := postJSON(t, ts.URL+"/step", `{"count":100}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if state.Steps != 100 {
		t.Fatalf("expected 100 steps, got %d", state.Steps)
	}
	if state.Time != 1.0 {
		t.Fatalf("100 steps should be 1 time unit, got %f", state.Time)
	}

	resp, state = postJSON(t, ts.URL+"/step", ``)
	if resp.StatusCode != http.StatusOK || state.Steps != 101 {
		t.Fatalf("empty body should step once, got %d steps (status %d)", state.Steps, resp.StatusCode)
	}

	resp, _ = postJSON(t, ts.URL+"/step", `{"count":0}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero count should 400, got %d", resp.StatusCode)
	}
}

func TestSpeciesEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, state := postJSON(t, ts.URL+"/species/black/enabled", `{"enabled":false}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	black := state.Species["black"]
	if black.Enabled || black.Proportion != 0 {
		t.Fatalf("disabling should zero the population, got %+v", black)
	}

	resp, _ = postJSON(t, ts.URL+"/species/plaid/enabled", `{"enabled":true}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown species should 404, got %d", resp.StatusCode)
	}
}

func TestModeEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, state := postJSON(t, ts.URL+"/mode", `{"round":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !state.Round {
		t.Fatal("round mode should be active")
	}
	if len(state.Bands) != daisyworld.DisplayBandCount {
		t.Fatalf("expected %d display bands, got %d", daisyworld.DisplayBandCount, len(state.Bands))
	}
	white, ok := state.Latitudes["white"]
	if !ok {
		t.Fatal("round state should report latitude stats")
	}
	if white.Mean == nil {
		t.Fatal("populated species should have a latitude mean")
	}

	_, state = postJSON(t, ts.URL+"/mode", `{"round":false}`)
	if state.Round || len(state.Bands) != 0 {
		t.Fatal("flat state should drop latitude data")
	}
}

func TestBoostEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	// Cook the planet until everything is dead, then boost.
	postJSON(t, ts.URL+"/luminosity", `{"value":2}`)
	_, state := postJSON(t, ts.URL+"/step", `{"count":200}`)
	if state.Species["white"].Proportion != 0 {
		t.Fatalf("expected extinction first, got %+v", state.Species["white"])
	}

	resp, state := postJSON(t, ts.URL+"/boost", ``)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := state.Species["white"].Proportion; got != 0.01 {
		t.Fatalf("boost should reseed at the default threshold, got %g", got)
	}

	postJSON(t, ts.URL+"/step", `{"count":200}`)
	_, state = postJSON(t, ts.URL+"/boost", `{"threshold":0.05}`)
	if got := state.Species["white"].Proportion; got != 0.05 {
		t.Fatalf("custom threshold should apply, got %g", got)
	}

	resp, _ = postJSON(t, ts.URL+"/boost", `{"threshold":-0.1}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative threshold should 400, got %d", resp.StatusCode)
	}
}

func TestResetEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	postJSON(t, ts.URL+"/step", `{"count":50}`)
	resp, state := postJSON(t, ts.URL+"/reset", ``)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if state.Steps != 0 {
		t.Fatalf("reset should zero the step counter, got %d", state.Steps)
	}
	if got := state.Species["white"].Proportion; got != 0.5 {
		t.Fatalf("reset should restore starting cover, got %g", got)
	}
}

func TestGrowthEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, state := postJSON(t, ts.URL+"/growth", `{"enabled":false}`)
	if resp.StatusCode != http.StatusOK || state.Growing {
		t.Fatalf("growth should be frozen, got %+v (status %d)", state, resp.StatusCode)
	}

	_, state = postJSON(t, ts.URL+"/step", `{"count":10}`)
	if state.Steps != 10 {
		t.Fatalf("frozen world should still count steps, got %d", state.Steps)
	}
	if got := state.Species["white"].Proportion; got != 0.5 {
		t.Fatalf("frozen world must keep populations fixed, got %g", got)
	}
}

func TestRunEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, state := postJSON(t, ts.URL+"/run", `{"running":true,"tps":200}`)
	if resp.StatusCode != http.StatusOK || !state.Running {
		t.Fatalf("runner should be active, got %+v (status %d)", state, resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if getState(t, ts.URL).Steps > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("runner never advanced the world")
		}
		time.Sleep(10 * time.Millisecond)
	}

	_, state = postJSON(t, ts.URL+"/run", `{"running":false}`)
	if state.Running {
		t.Fatal("runner should have stopped")
	}
	// StopRun is synchronous, so the step counter must be frozen now.
	steps := getState(t, ts.URL).Steps
	time.Sleep(50 * time.Millisecond)
	if got := getState(t, ts.URL).Steps; got != steps {
		t.Fatalf("stopped runner kept stepping: %d then %d", steps, got)
	}
}

func TestWebSocketStreamsState(t *testing.T) {
	srv, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	readState := func() State {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("websocket read failed: %v", err)
		}
		var state State
		if err := json.Unmarshal(payload, &state); err != nil {
			t.Fatalf("websocket state decode failed: %v", err)
		}
		return state
	}

	if state := readState(); state.Steps != 0 {
		t.Fatalf("initial websocket state should be fresh, got step %d", state.Steps)
	}

	// Broadcasts only reach registered clients, so wait for the hub to pick
	// the connection up before mutating.
	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	postJSON(t, ts.URL+"/step", `{"count":3}`)
	if state := readState(); state.Steps != 3 {
		t.Fatalf("expected broadcast after stepping, got step %d", state.Steps)
	}

	postJSON(t, ts.URL+"/luminosity", `{"value":0.9}`)
	if state := readState(); state.Luminosity != 0.9 {
		t.Fatalf("expected broadcast after luminosity change, got %f", state.Luminosity)
	}
}

func TestHubDropsDeadClients(t *testing.T) {
	srv, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for srv.hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("dead client still registered: %d", srv.hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStateEndpointDoesNotMutate(t *testing.T) {
	_, ts := newTestServer(t)
	for i := 0; i < 5; i++ {
		if got := getState(t, ts.URL).Steps; got != 0 {
			t.Fatalf("state reads must not step the world, got %d", got)
		}
	}
}
