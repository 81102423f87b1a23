package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"integral-solver/api"
	"integral-solver/config"
	"integral-solver/service/stors/cachestor"
	"integral-solver/service/stors/historystor"
	"integral-solver/solver"

	"github.com/bytedance/sonic"
	fws "github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		APIHost:   "127.0.0.1",
		APIRPM:    1000,
		BodyLimit: config.DefaultBodyLimit,
		Solver:    config.SolverConfig{MaxDepth: 6},
	}
}

func postSolve(t *testing.T, s *Server, body string) (int, api.SolveResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/solve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out api.SolveResponse
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, sonic.Unmarshal(data, &out), string(data))
	return resp.StatusCode, out
}

func get(t *testing.T, s *Server, path string, header ...string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := s.App().Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestSolve(t *testing.T) {
	s := New(Options{Config: testConfig()})

	status, out := postSolve(t, s, `{"expression":"x*sin(x)"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, out.Success)
	assert.Equal(t, "∫ x*sin(x) dx", out.Input)
	assert.Equal(t, "-x*cos(x) + sin(x) + C", out.Result)
	assert.Equal(t, "Integration by Parts", out.Method)
	assert.NotEmpty(t, out.Steps)
	assert.NotEmpty(t, out.InputLaTeX)
	assert.NotEmpty(t, out.ResultLaTeX)
	assert.Empty(t, out.Error)
}

func TestSolveVariable(t *testing.T) {
	s := New(Options{Config: testConfig()})
	status, out := postSolve(t, s, `{"expression":"t^2","variable":"t"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "t^3/3 + C", out.Result)
}

func TestSolveFailures(t *testing.T) {
	s := New(Options{Config: testConfig()})

	tests := []struct {
		name   string
		body   string
		status int
		prefix string
	}{
		{"empty", `{"expression":"   "}`, http.StatusBadRequest, "Error: empty expression"},
		{"missing field", `{}`, http.StatusBadRequest, "Error: empty expression"},
		{"bad json", `{"expression":`, http.StatusBadRequest, "Error: invalid request body"},
		{"too long", `{"expression":"` + strings.Repeat("x+", config.MaxExpressionLen) + `x"}`, http.StatusBadRequest, "Error: expression too long"},
		{"syntax", `{"expression":"x +"}`, http.StatusOK, "Error: unexpected end of expression"},
		{"unsupported", `{"expression":"sin(x^2)"}`, http.StatusOK, "Error: no integration rule applies"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := postSolve(t, s, tt.body)
			assert.Equal(t, tt.status, status)
			assert.False(t, out.Success)
			assert.True(t, strings.HasPrefix(out.Error, tt.prefix), out.Error)
			assert.Empty(t, out.Result)
		})
	}
}

func TestSolveUsesCache(t *testing.T) {
	cache := cachestor.NewMemory(time.Minute)
	s := New(Options{Config: testConfig(), Cache: cache})

	_, first := postSolve(t, s, `{"expression":"x^2"}`)
	_, second := postSolve(t, s, `{"expression":" x ^ 2 "}`)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())

	resp, body := get(t, s, "/api/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats api.StatsResponse
	require.NoError(t, sonic.Unmarshal(body, &stats))
	assert.Equal(t, int64(2), stats.Solves)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
}

func TestSolveCacheKeepsSpacing(t *testing.T) {
	s := New(Options{Config: testConfig(), Cache: cachestor.NewMemory(0)})

	_, symbol := postSolve(t, s, `{"expression":"xx"}`)
	require.True(t, symbol.Success)
	assert.Equal(t, "xx*x + C", symbol.Result)

	_, product := postSolve(t, s, `{"expression":"x x"}`)
	require.True(t, product.Success)
	assert.Equal(t, "∫ x^2 dx", product.Input)
	assert.Equal(t, "x^3/3 + C", product.Result)

	_, name := postSolve(t, s, `{"expression":"x2"}`)
	require.True(t, name.Success)
	status, spaced := postSolve(t, s, `{"expression":"x 2"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, spaced.Success)
	assert.True(t, strings.HasPrefix(spaced.Error, "Error: unexpected number"), spaced.Error)
}

func TestComputeStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := Compute(ctx, solver.New(), api.SolveRequest{Expression: "x*sin(x)"})
	assert.False(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Error, "Error: integration stopped"), resp.Error)
}

func TestPurgeCache(t *testing.T) {
	cache := cachestor.NewMemory(0)
	s := New(Options{Config: testConfig(), Cache: cache})
	postSolve(t, s, `{"expression":"x^2"}`)
	require.Equal(t, 1, cache.Len())

	req := httptest.NewRequest(http.MethodDelete, "/api/cache", nil)
	resp, err := s.App().Test(req, 5000)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, cache.Len())
}

func TestHealth(t *testing.T) {
	s := New(Options{Config: testConfig(), Cache: cachestor.NewMemory(0)})
	resp, body := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy","cache":"memory"}`, string(body))
}

func TestExamples(t *testing.T) {
	s := New(Options{Config: testConfig()})
	resp, body := get(t, s, "/api/examples")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out api.ExamplesResponse
	require.NoError(t, sonic.Unmarshal(body, &out))
	require.Len(t, out.Groups, 5)
	assert.Equal(t, "Basic", out.Groups[0].Category)
	assert.Equal(t, "Use ^ for powers, * for multiplication", out.Note)
}

func TestHistory(t *testing.T) {
	repo, err := historystor.Open(":memory:")
	require.NoError(t, err)
	defer repo.Close()
	s := New(Options{Config: testConfig(), History: repo})

	postSolve(t, s, `{"expression":"cos(x)"}`)
	assert.Eventually(t, func() bool {
		entries, err := repo.Recent(10)
		return err == nil && len(entries) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp, body := get(t, s, "/api/history?limit=5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out []api.HistoryEntry
	require.NoError(t, sonic.Unmarshal(body, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "cos(x)", out[0].Expression)
	assert.Equal(t, "Trigonometric Integration", out[0].Method)

	resp, _ = get(t, s, "/api/history?limit=0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHistoryEntry(t *testing.T) {
	repo, err := historystor.Open(":memory:")
	require.NoError(t, err)
	defer repo.Close()
	s := New(Options{Config: testConfig(), History: repo})

	postSolve(t, s, `{"expression":"x*exp(x)"}`)
	var entries []*historystor.Entry
	require.Eventually(t, func() bool {
		entries, err = repo.Recent(1)
		return err == nil && len(entries) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp, body := get(t, s, "/api/history/"+entries[0].ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out api.HistoryEntry
	require.NoError(t, sonic.Unmarshal(body, &out))
	assert.Equal(t, "x*exp(x)", out.Expression)
	assert.Equal(t, "Integration by Parts", out.Method)

	resp, _ = get(t, s, "/api/history/"+uuid.New().String())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHistoryDisabled(t *testing.T) {
	s := New(Options{Config: testConfig()})
	resp, _ := get(t, s, "/api/history")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = get(t, s, "/api/history/"+uuid.New().String())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := testConfig()
	cfg.APIKeyAuth = true
	cfg.APIKeys = []string{"secret"}
	s := New(Options{Config: cfg})

	resp, _ := get(t, s, "/api/stats")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = get(t, s, "/api/stats", "X-API-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = get(t, s, "/api/stats", "X-API-Key", "secret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	status, _ := postSolve(t, s, `{"expression":"x"}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestStaticPage(t *testing.T) {
	s := New(Options{Config: testConfig()})
	resp, body := get(t, s, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `id="expression"`)

	resp, body = get(t, s, "/js/main.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "throwOnError: false")
}

func TestFeedRequiresUpgrade(t *testing.T) {
	s := New(Options{Config: testConfig()})
	resp, _ := get(t, s, "/api/feed/all")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestMethodSlug(t *testing.T) {
	assert.Equal(t, "integration-by-parts", MethodSlug("Integration by Parts"))
	assert.True(t, validTopic("power-rule"))
	assert.True(t, validTopic(TopicAll))
	assert.False(t, validTopic("division-rule"))
}

// listen serves s on a loopback port until the test ends and returns its
// host:port.
func listen(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ln.Addr().String()
}

func readEvent(t *testing.T, c *fws.Conn) api.SolveEvent {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	var ev api.SolveEvent
	require.NoError(t, sonic.Unmarshal(data, &ev))
	return ev
}

func TestFeed(t *testing.T) {
	s := New(Options{Config: testConfig()})
	addr := listen(t, s)

	base := "ws://" + addr + "/api/feed/"
	all, _, err := fws.DefaultDialer.Dial(base+"all", nil)
	require.NoError(t, err)
	defer all.Close()
	power, _, err := fws.DefaultDialer.Dial(base+"power-rule", nil)
	require.NoError(t, err)
	defer power.Close()
	require.Eventually(t, func() bool { return s.feeds.Subscribers() == 2 }, 2*time.Second, 10*time.Millisecond)

	httpURL := "http://" + addr + "/solve"
	for _, expr := range []string{"sin(x)", "x^2"} {
		resp, err := http.Post(httpURL, "application/json", strings.NewReader(`{"expression":"`+expr+`"}`))
		require.NoError(t, err)
		resp.Body.Close()
	}

	methods := []string{readEvent(t, all).Response.Method, readEvent(t, all).Response.Method}
	assert.ElementsMatch(t, []string{"Trigonometric Integration", "Power Rule"}, methods)

	ev := readEvent(t, power)
	assert.Equal(t, "x^2", ev.Request.Expression)
	assert.Equal(t, "Power Rule", ev.Response.Method)
}

func TestFeedSurvivesSubscriberChurn(t *testing.T) {
	s := New(Options{Config: testConfig()})
	addr := listen(t, s)
	url := "ws://" + addr + "/api/feed/power-rule"

	for i := 0; i < 20; i++ {
		c, _, err := fws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		c.Close()
	}
	last, _, err := fws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer last.Close()

	require.Eventually(t, func() bool {
		hub := s.feeds.GetHub("power-rule")
		return s.feeds.Subscribers() == 1 && hub != nil && hub.Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Post("http://"+addr+"/solve", "application/json", strings.NewReader(`{"expression":"x^3"}`))
	require.NoError(t, err)
	resp.Body.Close()

	ev := readEvent(t, last)
	assert.Equal(t, "x^3", ev.Request.Expression)
	assert.Equal(t, "Power Rule", ev.Response.Method)
}
