package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackpin/pkg/facts"
	"github.com/matzehuels/stackpin/pkg/pipeline"
	"github.com/matzehuels/stackpin/pkg/publish"
)

// renderOutcome writes out to w in format.
//
// json and yaml print the outcome document itself. env prints the facts as
// shell assignments and nothing on failure. text is the styled human form.
func renderOutcome(w io.Writer, format publish.Format, out pipeline.Outcome) error {
	switch format {
	case publish.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case publish.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case publish.FormatEnv:
		if out.Failed {
			return nil
		}
		return publish.Encode(w, publish.FormatEnv, facts.Record{Facts: out.Facts})
	case publish.FormatText:
		renderText(w, out)
		return nil
	default:
		return fmt.Errorf("invalid format: %q", format)
	}
}

func renderText(w io.Writer, out pipeline.Outcome) {
	if out.Failed {
		printError(w, "%s", out.Msg)
		return
	}

	res := out.Result
	if res != nil {
		printSuccess(w, "Resolved %s %s", StyleTitle.Render(res.Target.DisplayName),
			StyleDim.Render("("+res.Stats.Total().Round(time.Millisecond).String()+")"))
	}

	keys := make([]string, 0, len(out.Facts))
	width := 0
	for k := range out.Facts {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	slices.Sort(keys)
	for _, k := range keys {
		printKeyValue(w, k, out.Facts[k], width)
	}

	if res != nil {
		printDetail(w, "run %s", res.RunID)
	}
}

// overrideNote lists which versions were supplied rather than discovered.
func overrideNote(opts pipeline.Options) string {
	var names []string
	if strings.TrimSpace(opts.PackageVersion) != "" {
		names = append(names, "package")
	}
	if strings.TrimSpace(opts.ToolVersion) != "" {
		names = append(names, "tool")
	}
	if strings.TrimSpace(opts.InterpreterVersion) != "" {
		names = append(names, "interpreter")
	}
	if len(names) == 0 {
		return ""
	}
	return styleOverride.Render("pinned: " + strings.Join(names, ", "))
}
