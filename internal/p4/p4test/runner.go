// Package p4test provides a scripted p4.Runner for tests.
package p4test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/chmouel/p4status/internal/p4"
)

// Response is the scripted result of one command.
type Response struct {
	Stdout     string
	Stderr     string
	ExitStatus int
	Err        error
	Delay      time.Duration // Wait before answering; honours cancellation
	Panic      any           // Panic with this value instead of answering
}

// Runner answers commands from a table keyed by the space-joined arguments.
// Unknown commands exit 1.
type Runner struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     [][]string
}

var _ p4.Runner = (*Runner)(nil)

// NewRunner returns an empty scripted runner.
func NewRunner() *Runner {
	return &Runner{responses: map[string]Response{}}
}

// On registers resp for the command line formed by args.
func (r *Runner) On(resp Response, args ...string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[strings.Join(args, " ")] = resp
	return r
}

// Calls returns every command line received so far.
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, strings.Join(c, " "))
	}
	return out
}

// Run implements p4.Runner.
func (r *Runner) Run(ctx context.Context, args []string) (p4.Output, error) {
	key := strings.Join(args, " ")
	r.mu.Lock()
	r.calls = append(r.calls, append([]string(nil), args...))
	resp, ok := r.responses[key]
	r.mu.Unlock()

	out := p4.Output{Command: "p4 " + key}
	if !ok {
		out.ExitStatus = 1
		out.Stderr = "unexpected command: " + key
		return out, nil
	}

	if resp.Delay > 0 {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-time.After(resp.Delay):
		}
	}
	if resp.Panic != nil {
		panic(resp.Panic)
	}
	if resp.Err != nil {
		return out, resp.Err
	}

	out.Stdout = resp.Stdout
	out.Stderr = resp.Stderr
	out.ExitStatus = resp.ExitStatus
	return out, nil
}
