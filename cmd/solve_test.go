package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"integral-solver/api"
	"integral-solver/config"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, local bool, output, format string) {
	t.Helper()
	prev, prevFlags := config.C, solveFlags
	config.C = &config.Config{ServerURL: "http://127.0.0.1:1", Formatter: "plain", Solver: config.SolverConfig{MaxDepth: 6}}
	solveFlags.local = local
	solveFlags.output = output
	solveFlags.format = format
	t.Cleanup(func() {
		config.C = prev
		solveFlags = prevFlags
	})
}

func TestSolveLocalJSON(t *testing.T) {
	setup(t, true, "json", "")
	var buf bytes.Buffer
	require.NoError(t, runSolve(context.Background(), &buf, "x^2"))
	assert.Contains(t, buf.String(), `"result": "x^3/3 + C"`)
	assert.Contains(t, buf.String(), `"method": "Power Rule"`)
}

func TestSolveLocalYAMLFailure(t *testing.T) {
	setup(t, true, "yaml", "")
	var buf bytes.Buffer
	err := runSolve(context.Background(), &buf, "sin(x^2)")
	assert.ErrorIs(t, err, errSolveFailed)
	assert.Contains(t, buf.String(), "success: false")
	assert.Contains(t, buf.String(), "no integration rule applies")
}

func TestSolveLocalText(t *testing.T) {
	setup(t, true, "text", "")
	var buf bytes.Buffer
	require.NoError(t, runSolve(context.Background(), &buf, "cos(x)"))
	assert.Contains(t, buf.String(), "sin(x) + C")
	assert.Contains(t, buf.String(), "Trigonometric Integration")
}

func TestSolveEmpty(t *testing.T) {
	setup(t, true, "text", "terminal")
	var buf bytes.Buffer
	err := runSolve(context.Background(), &buf, "  ")
	assert.ErrorIs(t, err, errSolveFailed)
	assert.Contains(t, buf.String(), "Please enter an expression")
}

func TestSolveRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"expression":"t","variable":"t"}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"input":"∫ t dt","result":"t^2/2 + C","method":"Power Rule"}`)
	}))
	defer srv.Close()

	setup(t, false, "text", "plain")
	solveFlags.server = srv.URL
	solveFlags.variable = "t"
	var buf bytes.Buffer
	require.NoError(t, runSolve(context.Background(), &buf, "t"))
	assert.Contains(t, buf.String(), "t^2/2 + C")
}

func TestSolveRemoteUnreachable(t *testing.T) {
	setup(t, false, "text", "plain")
	var buf bytes.Buffer
	err := runSolve(context.Background(), &buf, "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errSolveFailed)
	assert.Contains(t, buf.String(), "An error occurred while processing your request")
}

func TestSolveUnknownOutput(t *testing.T) {
	setup(t, true, "xml", "")
	assert.Error(t, runSolve(context.Background(), io.Discard, "x"))
}

func TestSolveCommandKeepsStdoutClean(t *testing.T) {
	prevCfg, prevFlags, prevPath, prevLogger := config.C, solveFlags, configPath, slog.Default()
	config.C = nil
	t.Cleanup(func() {
		config.C, solveFlags, configPath = prevCfg, prevFlags, prevPath
		slog.SetDefault(prevLogger)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs([]string{"solve", "--config", filepath.Join(t.TempDir(), "missing.toml"), "--local", "-o", "json", "sin(x^2)"})
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, errSolveFailed)

	var resp api.SolveResponse
	require.NoError(t, sonic.Unmarshal(stdout.Bytes(), &resp), stdout.String())
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "no integration rule applies")
	assert.Contains(t, stderr.String(), "config loaded")
	assert.NotContains(t, stderr.String(), "Error: integration failed")
}

func TestLogOutput(t *testing.T) {
	assert.Equal(t, os.Stdout, logOutput(serveCmd))
	assert.Equal(t, os.Stdout, logOutput(rootCmd))
	assert.NotEqual(t, os.Stdout, logOutput(solveCmd))
	assert.NotEqual(t, os.Stdout, logOutput(tuiCmd))
	assert.True(t, rootCmd.SilenceErrors)
}
