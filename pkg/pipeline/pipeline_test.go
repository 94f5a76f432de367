package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/matzehuels/stackpin/pkg/errors"
	"github.com/matzehuels/stackpin/pkg/httputil"
)

func TestNormalizeTimeout(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want time.Duration
	}{
		{"nil", nil, DefaultTimeout},
		{"int", 10, 10 * time.Second},
		{"int64", int64(3), 3 * time.Second},
		{"uint8", uint8(7), 7 * time.Second},
		{"string", "20", 20 * time.Second},
		{"padded string", "  5 \n", 5 * time.Second},
		{"float truncated", 2.9, 2 * time.Second},
		{"float32", float32(4.5), 4 * time.Second},
		{"float below one", 0.5, DefaultTimeout},
		{"zero", 0, DefaultTimeout},
		{"negative", -3, DefaultTimeout},
		{"negative string", "-1", DefaultTimeout},
		{"float string", "2.5", DefaultTimeout},
		{"word", "soon", DefaultTimeout},
		{"empty string", "", DefaultTimeout},
		{"bool", true, DefaultTimeout},
		{"nan", math.NaN(), DefaultTimeout},
		{"huge", math.MaxInt64, DefaultTimeout},
		{"duration", 90 * time.Second, 90 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTimeout(tt.in); got != tt.want {
				t.Errorf("NormalizeTimeout(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDefaultTarget(t *testing.T) {
	got := DefaultTarget()
	want := Target{
		Package:        "aipscan",
		DisplayName:    "AIPscan",
		ToolRepo:       "astral-sh/uv",
		ToolName:       "uv",
		PinURLTemplate: "https://raw.githubusercontent.com/artefactual-labs/AIPscan/refs/tags/{tag}/.python-version",
		FactPrefix:     "aipscan",
	}
	if got != want {
		t.Errorf("DefaultTarget() = %+v, want %+v", got, want)
	}
}

func TestTargetSetDefaultsDerivesNames(t *testing.T) {
	tg := Target{Package: "Archivematica-Storage", ToolRepo: "pypa/hatch"}
	tg.SetDefaults()

	if tg.DisplayName != "Archivematica-Storage" {
		t.Errorf("DisplayName = %q", tg.DisplayName)
	}
	if tg.ToolName != "hatch" {
		t.Errorf("ToolName = %q", tg.ToolName)
	}
	if tg.FactPrefix != "archivematica_storage" {
		t.Errorf("FactPrefix = %q", tg.FactPrefix)
	}
}

func TestTargetValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Target)
		wantErr bool
	}{
		{"default", func(*Target) {}, false},
		{"bad repo", func(t *Target) { t.ToolRepo = "uv" }, true},
		{"template without tag", func(t *Target) { t.PinURLTemplate = "https://example.com/.python-version" }, true},
		{"template not http", func(t *Target) { t.PinURLTemplate = "ftp://example.com/{tag}/.python-version" }, true},
		{"blank package", func(t *Target) { t.Package = " " }, true},
		{"package with path", func(t *Target) { t.Package = "../aipscan" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := DefaultTarget()
			tt.mutate(&tg)
			if err := tg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTargetValidateCodes(t *testing.T) {
	tg := DefaultTarget()
	tg.ToolRepo = "uv"
	if err := tg.Validate(); !errors.Is(err, errors.ErrCodeInvalidRepo) {
		t.Errorf("bad repo: got %v, want %s", err, errors.ErrCodeInvalidRepo)
	}

	tg = DefaultTarget()
	tg.PinURLTemplate = "https://example.com/.python-version"
	if err := tg.Validate(); !errors.Is(err, errors.ErrCodeInvalidTemplate) {
		t.Errorf("bad template: got %v, want %s", err, errors.ErrCodeInvalidTemplate)
	}

	for _, name := range []string{"python", "Python", " PYTHON "} {
		tg = DefaultTarget()
		tg.ToolName = name
		if err := tg.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("tool name %q: got %v, want %s", name, err, errors.ErrCodeInvalidInput)
		}
	}

	tg = DefaultTarget()
	tg.ToolName = "  "
	if err := tg.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("blank tool name: got %v, want %s", err, errors.ErrCodeInvalidInput)
	}

	tg = DefaultTarget()
	tg.Package = "my package"
	if err := tg.Validate(); !errors.Is(err, errors.ErrCodeInvalidPackage) {
		t.Errorf("bad package: got %v, want %s", err, errors.ErrCodeInvalidPackage)
	}
}

func TestResultNamedHasThreeFacts(t *testing.T) {
	for _, tool := range []string{"uv", "hatch", "Python-Build"} {
		tg := Target{ToolRepo: "astral-sh/uv", ToolName: tool}
		tg.SetDefaults()
		if err := tg.Validate(); err != nil {
			t.Fatalf("tool %q: Validate() = %v", tool, err)
		}
		res := Result{Target: tg}
		res.Facts.Package, res.Facts.Tool, res.Facts.Interpreter = "4.5.6", "0.5.11", "3.11.9"
		if got := res.Named(); len(got) != 3 {
			t.Errorf("tool %q: Named() = %v, want 3 facts", tool, got)
		}
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := o.Target
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Target != first {
		t.Errorf("second call changed target: %+v", o.Target)
	}
}

func TestDefaultFactoryRejectsBaseURLs(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	for _, f := range []DefaultFactory{
		{PyPIBaseURL: "pypi.org/pypi"},
		{GitHubWebURL: "ftp://github.com"},
	} {
		if _, err := f.Build(httputil.NewClient(), DefaultTimeout, opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Build(%+v) = %v, want %s", f, err, errors.ErrCodeInvalidInput)
		}
	}
	if _, err := (DefaultFactory{}).Build(httputil.NewClient(), DefaultTimeout, opts); err != nil {
		t.Errorf("default URLs: %v", err)
	}
}
