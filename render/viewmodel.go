// Package render turns solve outcomes into display fragments.
package render

import (
	"errors"

	"integral-solver/api"
	"integral-solver/client"
)

const (
	MsgEmptyExpression = "Please enter an expression"
	MsgGenericError    = "An error occurred while processing your request"
)

type Kind int

const (
	KindWarning Kind = iota
	KindSuccess
	KindFailure
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindWarning:
		return "warning"
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	}
	return "error"
}

// ViewModel is everything a formatter needs to draw one outcome.
type ViewModel struct {
	Kind        Kind
	Input       string
	Result      string
	Method      string
	Steps       []string
	InputLaTeX  string
	ResultLaTeX string
	Message     string
}

// FromOutcome projects the return values of client.Solve.
func FromOutcome(resp *api.SolveResponse, err error) ViewModel {
	switch client.Kind(err) {
	case client.KindNone:
		if resp == nil || !resp.Success {
			return ViewModel{Kind: KindError, Message: MsgGenericError}
		}
		return ViewModel{
			Kind:        KindSuccess,
			Input:       resp.Input,
			Result:      resp.Result,
			Method:      resp.Method,
			Steps:       resp.Steps,
			InputLaTeX:  resp.InputLaTeX,
			ResultLaTeX: resp.ResultLaTeX,
		}
	case client.KindEmpty:
		return ViewModel{Kind: KindWarning, Message: MsgEmptyExpression}
	case client.KindSolve:
		var solveErr *client.SolveError
		errors.As(err, &solveErr)
		return ViewModel{Kind: KindFailure, Message: solveErr.Message}
	}
	return ViewModel{Kind: KindError, Message: MsgGenericError}
}
