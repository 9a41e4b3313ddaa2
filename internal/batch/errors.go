package batch

import (
	"fmt"
	"strings"
)

// CommandError is the failure of one command inside a pipeline.
type CommandError struct {
	Index   int
	Command string
	Keys    []string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("#%d %s %s: %v", e.Index, e.Command, strings.Join(e.Keys, " "), e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// BatchError aggregates every failed command of one pipelined submission.
// Commands not listed in Errors were applied.
type BatchError struct {
	Failed int
	Total  int
	Errors []*CommandError
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("pipeline: %d/%d commands failed", e.Failed, e.Total)
}

// Unwrap exposes the per-command errors to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, ce := range e.Errors {
		out[i] = ce
	}
	return out
}
