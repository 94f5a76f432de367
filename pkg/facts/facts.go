// Package facts names the resolved versions the way downstream provisioning
// consumes them.
//
// A run produces three facts. With the default prefix "aipscan" and tool
// "uv" they are:
//
//	aipscan_version         latest package release (or override)
//	aipscan_uv_version      latest tool release (or override)
//	aipscan_python_version  interpreter pinned by the package release
package facts

import (
	"strings"
	"time"
)

// InterpreterKey is the fragment naming the interpreter fact. A tool whose
// [Ident] equals it would share that fact's name.
const InterpreterKey = "python"

// Facts holds the three resolved versions of one run.
type Facts struct {
	Package     string `json:"package" yaml:"package"`
	Tool        string `json:"tool" yaml:"tool"`
	Interpreter string `json:"interpreter" yaml:"interpreter"`
}

// Named returns the facts keyed by their published names:
// <prefix>_version, <prefix>_<tool>_version and <prefix>_python_version.
// prefix and tool are lowercased and any character outside [a-z0-9_] is
// replaced by an underscore.
func (f Facts) Named(prefix, tool string) map[string]string {
	p := Ident(prefix)
	named := make(map[string]string, 3)
	named[p+"_version"] = f.Package
	named[p+"_"+Ident(tool)+"_version"] = f.Tool
	named[p+"_"+InterpreterKey+"_version"] = f.Interpreter
	return named
}

// Ident turns s into a fact-name fragment.
func Ident(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return '_'
	}, s)
}

// Record is what publication sinks persist for one successful run.
type Record struct {
	RunID      string            `json:"run_id" yaml:"run_id" bson:"run_id"`
	ResolvedAt time.Time         `json:"resolved_at" yaml:"resolved_at" bson:"resolved_at"`
	Facts      map[string]string `json:"facts" yaml:"facts" bson:"facts"`
}
