package exec

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records a single command invocation made against a FakeExecutor.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// String renders the call the way it would appear on a shell command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Response is a scripted result for a command matched by prefix.
type Response struct {
	Stdout string
	Stderr string
	Err    error
}

// FakeExecutor is a scripted CommandExecutor for tests. Commands are matched
// against scripted responses by the prefix of their command line; unmatched
// commands succeed with empty output.
type FakeExecutor struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]Response
	paths     map[string]string
	// LookPathErr, when set, makes every LookPath call fail.
	LookPathErr error
}

// NewFakeExecutor returns an empty scripted executor.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{
		responses: make(map[string]Response),
		paths:     make(map[string]string),
	}
}

// Respond scripts a response for any command line starting with prefix.
func (f *FakeExecutor) Respond(prefix string, r Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = r
}

// SetPath scripts a LookPath result for name.
func (f *FakeExecutor) SetPath(name, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[name] = path
}

// Calls returns a copy of all recorded invocations.
func (f *FakeExecutor) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CommandLines returns the recorded invocations as rendered command lines.
func (f *FakeExecutor) CommandLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

func (f *FakeExecutor) record(dir, name string, args []string) Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := Call{Dir: dir, Name: name, Args: args}
	f.calls = append(f.calls, call)

	line := call.String()
	var best string
	for prefix := range f.responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		return f.responses[best]
	}
	return Response{}
}

func (f *FakeExecutor) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	r := f.record(dir, name, args)
	return r.Stdout, r.Stderr, r.Err
}

func (f *FakeExecutor) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	r := f.record(dir, name, args)
	return []byte(r.Stdout), r.Err
}

func (f *FakeExecutor) CombinedOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	r := f.record(dir, name, args)
	return []byte(r.Stdout + r.Stderr), r.Err
}

func (f *FakeExecutor) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LookPathErr != nil {
		return "", f.LookPathErr
	}
	if p, ok := f.paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}
