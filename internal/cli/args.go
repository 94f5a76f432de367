package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpin/pkg/config"
)

// Task arguments are the per-invocation parameters (command-line flags,
// query parameters). They override the ambient configuration key by key.
// A present argument wins even when blank.
const (
	argTimeout            = "timeout"
	argPackageVersion     = "package_version"
	argToolVersion        = "tool_version"
	argInterpreterVersion = "interpreter_version"
	argPackage            = "package"
	argDisplayName        = "display_name"
	argToolRepo           = "tool_repo"
	argToolName           = "tool_name"
	argPinURL             = "pin_url"
	argFactPrefix         = "fact_prefix"
	argFormat             = "format"
)

// taskArgs maps argument names to their values.
type taskArgs map[string]string

// apply overlays args onto cfg.
func (a taskArgs) apply(cfg *config.Config) {
	set := func(key string, dst *string) {
		if v, ok := a[key]; ok {
			*dst = v
		}
	}
	if v, ok := a[argTimeout]; ok {
		cfg.Timeout = v
	}
	set(argPackageVersion, &cfg.PackageVersion)
	set(argToolVersion, &cfg.ToolVersion)
	set(argInterpreterVersion, &cfg.InterpreterVersion)
	set(argPackage, &cfg.Target.Package)
	set(argDisplayName, &cfg.Target.DisplayName)
	set(argToolRepo, &cfg.Target.ToolRepo)
	set(argToolName, &cfg.Target.ToolName)
	set(argPinURL, &cfg.Target.PinURLTemplate)
	set(argFactPrefix, &cfg.Target.FactPrefix)
	set(argFormat, &cfg.Format)
}

// flagArgs maps each flag name to its argument name.
var flagArgs = map[string]string{
	"timeout":             argTimeout,
	"package-version":     argPackageVersion,
	"tool-version":        argToolVersion,
	"interpreter-version": argInterpreterVersion,
	"package":             argPackage,
	"display-name":        argDisplayName,
	"tool-repo":           argToolRepo,
	"tool-name":           argToolName,
	"pin-url":             argPinURL,
	"fact-prefix":         argFactPrefix,
	"format":              argFormat,
}

// addTaskFlags registers the task argument flags on cmd.
func addTaskFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.String("timeout", "", "per-request timeout in seconds (default 15)")
	fs.String("package-version", "", "use this package version instead of querying PyPI")
	fs.String("tool-version", "", "use this tool version instead of querying GitHub")
	fs.String("interpreter-version", "", "use this interpreter version instead of reading the pin file")
	fs.String("package", "", "PyPI package to resolve (default aipscan)")
	fs.String("display-name", "", "package name used in messages")
	fs.String("tool-repo", "", "GitHub owner/repo of the build tool (default astral-sh/uv)")
	fs.String("tool-name", "", "tool name used in fact names and messages")
	fs.String("pin-url", "", "URL template of the interpreter pin file; {tag} is the package version")
	fs.String("fact-prefix", "", "prefix of the fact names (default: package name)")
	fs.StringP("format", "o", "", "output format: json, yaml, env, text (default json)")
}

// flagTaskArgs collects the flags the user set explicitly.
func flagTaskArgs(cmd *cobra.Command) taskArgs {
	args := taskArgs{}
	fs := cmd.Flags()
	for flag, arg := range flagArgs {
		if !fs.Changed(flag) {
			continue
		}
		if v, err := fs.GetString(flag); err == nil {
			args[arg] = v
		}
	}
	return args
}

// queryTaskArgs collects the task arguments present in q. Unknown
// parameters are ignored.
func queryTaskArgs(q url.Values) taskArgs {
	args := taskArgs{}
	for _, arg := range flagArgs {
		if vs, ok := q[arg]; ok && len(vs) > 0 {
			args[arg] = vs[len(vs)-1]
		}
	}
	return args
}
