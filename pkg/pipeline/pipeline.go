// Package pipeline resolves the deployment versions of one target.
//
// A run resolves three versions in a fixed order:
//
//  1. Package: latest release on PyPI (or override)
//  2. Tool: latest GitHub release of the build tool (or override)
//  3. Interpreter: the version pinned by the package release from step 1
//     (or override)
//
// The first failure aborts the run; later stages are not attempted.
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Timeout: 10})
//	out := pipeline.NewOutcome(result, err)
//
// [Outcome] is the host-facing result: facts on success, a verbatim
// message on failure.
package pipeline

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stackpin/pkg/errors"
	"github.com/matzehuels/stackpin/pkg/facts"
	"github.com/matzehuels/stackpin/pkg/integrations/github"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultTimeout is the per-request timeout when none (or an unusable one)
// is given.
const DefaultTimeout = 15 * time.Second

const (
	DefaultPackage     = "aipscan"
	DefaultDisplayName = "AIPscan"
	DefaultToolRepo    = "astral-sh/uv"
	DefaultToolName    = "uv"
	DefaultFactPrefix  = "aipscan"
)

// =============================================================================
// Target
// =============================================================================

// Target describes what is resolved and how the facts are named.
type Target struct {
	Package        string `json:"package,omitempty" toml:"package" yaml:"package"`
	DisplayName    string `json:"display_name,omitempty" toml:"display_name" yaml:"display_name"`
	ToolRepo       string `json:"tool_repo,omitempty" toml:"tool_repo" yaml:"tool_repo"`
	ToolName       string `json:"tool_name,omitempty" toml:"tool_name" yaml:"tool_name"`
	PinURLTemplate string `json:"pin_url,omitempty" toml:"pin_url" yaml:"pin_url"`
	FactPrefix     string `json:"fact_prefix,omitempty" toml:"fact_prefix" yaml:"fact_prefix"`
}

// DefaultTarget returns the AIPscan target.
func DefaultTarget() Target {
	t := Target{}
	t.SetDefaults()
	return t
}

// SetDefaults fills blank fields. DisplayName falls back to the package
// name when only the package was changed, and ToolName to the repository
// name when only the repository was changed.
func (t *Target) SetDefaults() {
	if t.Package == "" {
		t.Package = DefaultPackage
		if t.DisplayName == "" {
			t.DisplayName = DefaultDisplayName
		}
	}
	if t.DisplayName == "" {
		t.DisplayName = t.Package
	}
	if t.ToolRepo == "" {
		t.ToolRepo = DefaultToolRepo
		if t.ToolName == "" {
			t.ToolName = DefaultToolName
		}
	}
	if t.ToolName == "" {
		if _, repo, err := github.ParseRepoRef(t.ToolRepo); err == nil {
			t.ToolName = repo
		}
	}
	if t.PinURLTemplate == "" {
		t.PinURLTemplate = github.DefaultPinURLTemplate
	}
	if t.FactPrefix == "" {
		t.FactPrefix = facts.Ident(t.Package)
	}
}

// Validate checks the package name, the tool repository, the tool name and
// the pin URL template. Failures are coded errors from [errors].
//
// The tool name must yield a fact name distinct from the interpreter fact,
// so "python" is rejected.
func (t Target) Validate() error {
	if err := errors.ValidatePythonPackageName(t.Package); err != nil {
		return err
	}
	if _, _, err := github.ParseRepoRef(t.ToolRepo); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRepo, err, "tool_repo")
	}
	switch facts.Ident(t.ToolName) {
	case "":
		return errors.New(errors.ErrCodeInvalidInput, "tool_name: cannot be empty")
	case facts.InterpreterKey:
		return errors.New(errors.ErrCodeInvalidInput, "tool_name: %q collides with the interpreter fact", t.ToolName)
	}
	if err := github.ValidateTemplate(t.PinURLTemplate); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTemplate, err, "pin_url")
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options holds the task arguments of one run.
type Options struct {
	// Timeout is the raw per-request timeout in seconds, as supplied by the
	// caller (int, float, numeric string). See [NormalizeTimeout].
	Timeout any `json:"timeout,omitempty"`

	// Overrides. Blank means "discover".
	PackageVersion     string `json:"package_version,omitempty"`
	ToolVersion        string `json:"tool_version,omitempty"`
	InterpreterVersion string `json:"interpreter_version,omitempty"`

	Target Target `json:"target"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults applies target defaults and validates the target.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.Target.SetDefaults()
	if err := o.Target.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// NormalizeTimeout converts a raw timeout in seconds to a duration.
// Integers and integer strings (surrounding whitespace allowed) are used
// as is; floats are truncated. Anything else, and any result that is not
// positive, yields [DefaultTimeout].
func NormalizeTimeout(v any) time.Duration {
	var secs int64
	switch t := v.(type) {
	case int:
		secs = int64(t)
	case int8:
		secs = int64(t)
	case int16:
		secs = int64(t)
	case int32:
		secs = int64(t)
	case int64:
		secs = t
	case uint:
		secs = clampUint(uint64(t))
	case uint8:
		secs = int64(t)
	case uint16:
		secs = int64(t)
	case uint32:
		secs = int64(t)
	case uint64:
		secs = clampUint(t)
	case float32:
		secs = truncate(float64(t))
	case float64:
		secs = truncate(t)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return DefaultTimeout
		}
		secs = n
	case time.Duration:
		if t <= 0 {
			return DefaultTimeout
		}
		return t
	default:
		return DefaultTimeout
	}
	if secs <= 0 || secs > maxTimeoutSeconds {
		return DefaultTimeout
	}
	return time.Duration(secs) * time.Second
}

// maxTimeoutSeconds keeps the duration from overflowing.
const maxTimeoutSeconds = int64(math.MaxInt64 / int64(time.Second))

func truncate(f float64) int64 {
	if math.IsNaN(f) || f >= float64(maxTimeoutSeconds) || f <= 0 {
		return 0
	}
	return int64(f)
}

func clampUint(u uint64) int64 {
	if u > uint64(maxTimeoutSeconds) {
		return 0
	}
	return int64(u)
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a successful run.
type Result struct {
	RunID      uuid.UUID
	ResolvedAt time.Time
	Target     Target
	Facts      facts.Facts
	Stats      Stats
}

// Stats contains per-stage durations.
type Stats struct {
	Timeout         time.Duration
	PackageTime     time.Duration
	ToolTime        time.Duration
	InterpreterTime time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	return s.PackageTime + s.ToolTime + s.InterpreterTime
}

// Named returns the facts under their published names.
func (r *Result) Named() map[string]string {
	return r.Facts.Named(r.Target.FactPrefix, r.Target.ToolName)
}

// Record returns the publishable form of the result.
func (r *Result) Record() facts.Record {
	return facts.Record{
		RunID:      r.RunID.String(),
		ResolvedAt: r.ResolvedAt,
		Facts:      r.Named(),
	}
}
