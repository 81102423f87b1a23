package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"integral-solver/api"
	"integral-solver/client"
	"integral-solver/config"
	"integral-solver/render"
	"integral-solver/server"
	"integral-solver/solver"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var solveFlags struct {
	format   string
	output   string
	variable string
	server   string
	local    bool
}

var errSolveFailed = errors.New("integration failed")

var solveCmd = &cobra.Command{
	Use:   "solve [expression]",
	Short: "Integrate one expression and print the result",
	Example: `  integral-solver solve "x*sin(x)"
  integral-solver solve --local --output yaml "exp(x)"`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{logOutputAnnotation: "stderr"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSolve(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

func init() {
	f := solveCmd.Flags()
	f.StringVarP(&solveFlags.format, "format", "f", "", "formatter for text output: "+strings.Join(render.Names(), ", "))
	f.StringVarP(&solveFlags.output, "output", "o", "text", "output encoding: text, json or yaml")
	f.StringVar(&solveFlags.variable, "variable", "", "variable of integration (default x)")
	f.StringVarP(&solveFlags.server, "server", "s", "", "solve service URL (overrides server_url)")
	f.BoolVar(&solveFlags.local, "local", false, "integrate in-process instead of calling the service")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(ctx context.Context, w io.Writer, expression string) error {
	cfg := config.C
	var (
		resp *api.SolveResponse
		err  error
	)
	req := api.SolveRequest{Expression: expression, Variable: solveFlags.variable}
	if solveFlags.local {
		resp, err = solveLocal(ctx, cfg, req)
	} else {
		url := solveFlags.server
		if url == "" {
			url = cfg.ServerURL
		}
		resp, err = client.New(url, client.WithTimeout(cfg.ClientTimeout)).Do(ctx, req)
	}

	vm := render.FromOutcome(resp, err)
	switch solveFlags.output {
	case "json":
		data, merr := sonic.ConfigStd.MarshalIndent(outcome(resp, vm), "", "  ")
		if merr != nil {
			return merr
		}
		fmt.Fprintln(w, string(data))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if merr := enc.Encode(outcome(resp, vm)); merr != nil {
			return merr
		}
		if merr := enc.Close(); merr != nil {
			return merr
		}
	case "text":
		name := solveFlags.format
		if name == "" {
			name = cfg.Formatter
		}
		f, lerr := render.Lookup(name)
		if lerr != nil {
			return lerr
		}
		fmt.Fprintln(w, f.Render(vm))
	default:
		return fmt.Errorf("unknown output %q", solveFlags.output)
	}

	if err != nil && client.Kind(err) != client.KindSolve && client.Kind(err) != client.KindEmpty {
		return err
	}
	if vm.Kind != render.KindSuccess {
		return errSolveFailed
	}
	return nil
}

// outcome is what json and yaml output encode: the response itself, or a
// failure carrying the display message when no response arrived.
func outcome(resp *api.SolveResponse, vm render.ViewModel) *api.SolveResponse {
	if resp != nil {
		return resp
	}
	return api.Failure(vm.Message)
}

func solveLocal(ctx context.Context, cfg *config.Config, req api.SolveRequest) (*api.SolveResponse, error) {
	if strings.TrimSpace(req.Expression) == "" {
		return nil, client.ErrEmptyExpression
	}
	if cfg.Solver.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Solver.Timeout)
		defer cancel()
	}
	resp := server.Compute(ctx, solver.New(solver.WithMaxDepth(cfg.Solver.MaxDepth)), req)
	if !resp.Success {
		return resp, &client.SolveError{StatusCode: http.StatusOK, Message: resp.Error}
	}
	return resp, nil
}
