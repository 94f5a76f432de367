package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stackpin/pkg/httputil"
)

// Runner executes resolution runs.
//
// The Runner holds no per-run state; multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Factory ResolverFactory
	HTTP    *httputil.Client
	Logger  *log.Logger

	now func() time.Time
}

// NewRunner creates a runner. A nil factory means [DefaultFactory], a nil
// client a fresh [httputil.Client] with default retry settings, and a nil
// logger log.Default().
func NewRunner(factory ResolverFactory, client *httputil.Client, logger *log.Logger) *Runner {
	if factory == nil {
		factory = DefaultFactory{}
	}
	if client == nil {
		client = httputil.NewClient()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Factory: factory,
		HTTP:    client,
		Logger:  logger,
		now:     time.Now,
	}
}

// Execute resolves package, tool and interpreter versions, in that order.
// The interpreter stage receives the package version from the first stage.
// The first resolver error is returned unchanged.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	timeout := NormalizeTimeout(opts.Timeout)
	resolvers, err := r.Factory.Build(r.HTTP, timeout, opts)
	if err != nil {
		return nil, fmt.Errorf("build resolvers: %w", err)
	}

	result := &Result{
		RunID:  uuid.New(),
		Target: opts.Target,
	}
	result.Stats.Timeout = timeout

	logger := r.logger(opts).With("run", result.RunID.String())
	logger.Debug("starting resolution",
		"package", opts.Target.Package,
		"tool", opts.Target.ToolRepo,
		"timeout", timeout)

	// Stage 1: Package
	start := time.Now()
	pkg, err := resolvers.Package.Resolve(ctx)
	result.Stats.PackageTime = time.Since(start)
	if err != nil {
		logger.Error("package resolution failed", "err", err)
		return nil, err
	}
	result.Facts.Package = pkg
	logger.Info("resolved package",
		"name", opts.Target.DisplayName,
		"version", pkg,
		"duration", result.Stats.PackageTime)

	// Stage 2: Tool
	start = time.Now()
	tool, err := resolvers.Tool.Resolve(ctx)
	result.Stats.ToolTime = time.Since(start)
	if err != nil {
		logger.Error("tool resolution failed", "err", err)
		return nil, err
	}
	result.Facts.Tool = tool
	logger.Info("resolved tool",
		"name", opts.Target.ToolName,
		"version", tool,
		"duration", result.Stats.ToolTime)

	// Stage 3: Interpreter, pinned by the package release
	start = time.Now()
	interp, err := resolvers.Interpreter.Resolve(ctx, pkg)
	result.Stats.InterpreterTime = time.Since(start)
	if err != nil {
		logger.Error("interpreter resolution failed", "err", err)
		return nil, err
	}
	result.Facts.Interpreter = interp
	logger.Info("resolved interpreter",
		"version", interp,
		"duration", result.Stats.InterpreterTime)

	result.ResolvedAt = r.clock()().UTC()
	return result, nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

func (r *Runner) clock() func() time.Time {
	if r.now != nil {
		return r.now
	}
	return time.Now
}
