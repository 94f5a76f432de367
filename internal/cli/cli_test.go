package cli

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/stackpin/pkg/httputil"
	"github.com/matzehuels/stackpin/pkg/observability"
	"github.com/matzehuels/stackpin/pkg/pipeline"
	"github.com/matzehuels/stackpin/pkg/versions"
)

type stubResolver struct {
	version string
	err     error
}

func (s stubResolver) Resolve(context.Context) (string, error) { return s.version, s.err }

type stubInterpreter struct {
	version string
	err     error
}

func (s stubInterpreter) Resolve(context.Context, string) (string, error) { return s.version, s.err }

// stubFactory returns fixed resolvers and remembers the options of each run.
type stubFactory struct {
	mu        sync.Mutex
	resolvers pipeline.Resolvers
	opts      []pipeline.Options
	timeouts  []time.Duration
}

func (f *stubFactory) Build(_ *httputil.Client, timeout time.Duration, opts pipeline.Options) (pipeline.Resolvers, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = append(f.opts, opts)
	f.timeouts = append(f.timeouts, timeout)
	return f.resolvers, nil
}

func (f *stubFactory) last() pipeline.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opts[len(f.opts)-1]
}

func (f *stubFactory) lastTimeout() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timeouts[len(f.timeouts)-1]
}

func (f *stubFactory) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.opts)
}

func okFactory() *stubFactory {
	return &stubFactory{resolvers: pipeline.Resolvers{
		Package:     stubResolver{version: "4.5.6"},
		Tool:        stubResolver{version: "0.5.11"},
		Interpreter: stubInterpreter{version: "3.11.9"},
	}}
}

func failingFactory(msg string) *stubFactory {
	return &stubFactory{resolvers: pipeline.Resolvers{
		Package:     stubResolver{version: "4.5.6"},
		Tool:        stubResolver{err: &versions.ResolutionError{Source: versions.SourceTool, Message: msg}},
		Interpreter: stubInterpreter{version: "3.11.9"},
	}}
}

// isolateEnv keeps the developer's config and STACKPIN_* variables out of
// the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"STACKPIN_CONFIG", "STACKPIN_TIMEOUT", "STACKPIN_PACKAGE_VERSION",
		"STACKPIN_TOOL_VERSION", "STACKPIN_INTERPRETER_VERSION", "STACKPIN_PUBLISH", "STACKPIN_FORMAT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Cleanup(observability.Reset)
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, factory pipeline.ResolverFactory, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := New(&stderr, LogInfo)
	c.Factory = factory

	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
