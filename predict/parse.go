package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/spetersoncode/reactor/signature"
)

// ParseWarning records a recovered problem while parsing a response.
type ParseWarning struct {
	Field   string
	Message string
}

func (w ParseWarning) String() string {
	return w.Field + ": " + w.Message
}

var (
	braceSpan  = regexp.MustCompile(`(?s)\{.*\}`)
	identifier = regexp.MustCompile(`\b([a-zA-Z_](?:[\w.-]*\w)?)`)
)

// IsToolArgsField reports whether values of the field are parsed as JSON
// tool arguments.
func IsToolArgsField(name string) bool {
	return name == FieldNextToolArgs || name == "tool_args"
}

// IsToolNameField reports whether values of the field are reduced to a
// single tool identifier.
func IsToolNameField(name string) bool {
	return name == FieldNextToolName || name == "tool_name"
}

// Parse extracts the signature's output fields from raw response text.
//
// For each output field the first occurrence of "<name>:" is located and the
// value runs from there to the end of that line, trimmed. A field without a
// marker receives the whole response text. Tool-argument fields are decoded
// with ParseToolArgs and always hold a map; tool-name fields found by marker
// are cleaned with ParseToolName. Parse never fails; recovered problems are
// returned as warnings.
func Parse(sig *signature.Signature, content string) (*Prediction, []ParseWarning) {
	pred := NewPrediction()
	var warnings []ParseWarning

	for _, name := range sig.OutputNames() {
		raw, found := extractField(content, name)
		if !found {
			warnings = append(warnings, ParseWarning{Field: name, Message: "marker not found, using the whole response"})
		}

		switch {
		case IsToolArgsField(name):
			args, err := ParseToolArgs(raw)
			if err != nil {
				warnings = append(warnings, ParseWarning{Field: name, Message: err.Error()})
			}
			pred.Set(name, args)
		case IsToolNameField(name) && found:
			pred.Set(name, ParseToolName(raw))
		default:
			pred.Set(name, raw)
		}
	}

	return pred, warnings
}

func extractField(content, name string) (string, bool) {
	marker := name + ":"
	start := strings.Index(content, marker)
	if start < 0 {
		return content, false
	}
	rest := content[start+len(marker):]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest), true
}

// ErrUnparseableArgs is returned by ParseToolArgs when no JSON object could
// be recovered.
var ErrUnparseableArgs = errors.New("could not parse tool arguments as a JSON object")

// ParseToolArgs decodes model-produced tool arguments. It tries, in order:
// the whole text as a JSON object, the first "{...}" span, and a repaired
// version of the text from the first "{". When everything fails it returns
// an empty map together with an error wrapping ErrUnparseableArgs. The
// returned map is never nil.
func ParseToolArgs(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)

	if m, ok := decodeObject(text); ok {
		return m, nil
	}
	if span := braceSpan.FindString(text); span != "" {
		if m, ok := decodeObject(span); ok {
			return m, nil
		}
	}
	if i := strings.IndexByte(text, '{'); i >= 0 {
		if repaired, err := jsonrepair.JSONRepair(text[i:]); err == nil {
			if m, ok := decodeObject(repaired); ok {
				return m, nil
			}
		}
	}

	return map[string]any{}, fmt.Errorf("%w: %q", ErrUnparseableArgs, text)
}

func decodeObject(s string) (map[string]any, bool) {
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// ParseToolName strips one layer of surrounding quotes, backticks or
// brackets and keeps the first identifier-like token. Hyphens and dots may
// appear inside the token, so names such as get-weather or fs.read survive.
// Text without such a token is returned trimmed.
func ParseToolName(text string) string {
	value := strings.TrimSpace(text)
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') ||
			(first == '`' && last == '`') || (first == '[' && last == ']') {
			value = strings.TrimSpace(value[1 : len(value)-1])
		}
	}
	if m := identifier.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	return value
}
