package pipeline

import (
	"encoding/json"
)

// Outcome is the result reported to the host: either the facts of a
// successful run or a failure with the resolver's message verbatim.
//
// JSON and YAML forms:
//
//	{"changed": false, "ansible_facts": {"aipscan_version": "4.5.6", ...}}
//	{"failed": true, "msg": "HTTP 404 retrieving https://..."}
type Outcome struct {
	Failed bool
	Msg    string
	Facts  map[string]string

	// Result is the successful run, nil on failure. Not serialized.
	Result *Result
}

// NewOutcome builds the outcome of a run. A non-nil err always yields a
// failure whose message is err.Error().
func NewOutcome(result *Result, err error) Outcome {
	if err != nil {
		return Outcome{Failed: true, Msg: err.Error()}
	}
	if result == nil {
		return Outcome{Failed: true, Msg: "no result"}
	}
	return Outcome{Facts: result.Named(), Result: result}
}

type successBody struct {
	Changed bool              `json:"changed" yaml:"changed"`
	Facts   map[string]string `json:"ansible_facts" yaml:"ansible_facts"`
}

type failureBody struct {
	Failed bool   `json:"failed" yaml:"failed"`
	Msg    string `json:"msg" yaml:"msg"`
}

func (o Outcome) body() any {
	if o.Failed {
		return failureBody{Failed: true, Msg: o.Msg}
	}
	f := o.Facts
	if f == nil {
		f = map[string]string{}
	}
	return successBody{Facts: f}
}

func (o Outcome) MarshalJSON() ([]byte, error) { return json.Marshal(o.body()) }

// MarshalYAML implements yaml.Marshaler.
func (o Outcome) MarshalYAML() (any, error) { return o.body(), nil }
