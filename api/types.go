// Package api holds the JSON shapes exchanged between the solve server and
// its clients.
package api

import "time"

type SolveRequest struct {
	Expression string `json:"expression"`
	Variable   string `json:"variable,omitempty"`
}

// SolveResponse is discriminated solely by Success. A successful response
// carries Input, Result and Method, a failed one carries Error.
type SolveResponse struct {
	Success     bool     `json:"success" yaml:"success"`
	Input       string   `json:"input,omitempty" yaml:"input,omitempty"`
	Result      string   `json:"result,omitempty" yaml:"result,omitempty"`
	Method      string   `json:"method,omitempty" yaml:"method,omitempty"`
	Steps       []string `json:"steps,omitempty" yaml:"steps,omitempty"`
	InputLaTeX  string   `json:"input_latex,omitempty" yaml:"input_latex,omitempty"`
	ResultLaTeX string   `json:"result_latex,omitempty" yaml:"result_latex,omitempty"`
	Error       string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func Failure(msg string) *SolveResponse {
	return &SolveResponse{Success: false, Error: msg}
}

type HealthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache,omitempty"`
}

type StatsResponse struct {
	Solves      int64   `json:"solves"`
	Failures    int64   `json:"failures"`
	CacheHits   int64   `json:"cache_hits"`
	CacheMisses int64   `json:"cache_misses"`
	HitRate     float64 `json:"hit_rate"`
	Subscribers int     `json:"subscribers"`
}

type HistoryEntry struct {
	ID         string    `json:"id"`
	Expression string    `json:"expression"`
	Variable   string    `json:"variable"`
	Success    bool      `json:"success"`
	Result     string    `json:"result,omitempty"`
	Method     string    `json:"method,omitempty"`
	Error      string    `json:"error,omitempty"`
	Cached     bool      `json:"cached"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// SolveEvent is published after every solve and streamed on the feed.
type SolveEvent struct {
	ID         string         `json:"id"`
	Request    SolveRequest   `json:"request"`
	Response   *SolveResponse `json:"response"`
	Cached     bool           `json:"cached"`
	DurationMS int64          `json:"duration_ms"`
	At         time.Time      `json:"at"`
}

type ExamplesResponse struct {
	Groups []ExampleGroup `json:"groups"`
	Note   string         `json:"note"`
}

type ExampleGroup struct {
	Category    string   `json:"category"`
	Expressions []string `json:"expressions"`
}
