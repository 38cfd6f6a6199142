package predict

import (
	"bytes"
	"encoding/json"
	"fmt"

	ai "github.com/spetersoncode/reactor"
	"github.com/spetersoncode/reactor/trajectory"
)

// TrajectoryKey is the key under which a run's trajectory is stored.
const TrajectoryKey = "trajectory"

// Prediction is the ordered field-name to value result of a predictor call.
// Looking up a missing field never fails; accessors return zero values.
type Prediction struct {
	keys   []string
	values map[string]any
	usage  ai.Usage
}

// NewPrediction returns an empty prediction.
func NewPrediction() *Prediction {
	return &Prediction{values: make(map[string]any)}
}

// Set stores a value, keeping the original position of existing keys.
func (p *Prediction) Set(key string, value any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value for key and whether it was present.
func (p *Prediction) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Has reports whether key is present.
func (p *Prediction) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// String returns the value for key as text: strings as-is, maps and slices
// as JSON, anything else formatted with fmt. Missing keys yield "".
func (p *Prediction) String(key string) string {
	v, ok := p.Get(key)
	if !ok || v == nil {
		return ""
	}
	return FormatValue(v)
}

// Map returns the value for key when it is a JSON object, otherwise nil.
func (p *Prediction) Map(key string) map[string]any {
	v, _ := p.Get(key)
	m, _ := v.(map[string]any)
	return m
}

// Trajectory returns the attached trajectory, or nil.
func (p *Prediction) Trajectory() *trajectory.Trajectory {
	v, _ := p.Get(TrajectoryKey)
	t, _ := v.(*trajectory.Trajectory)
	return t
}

// Keys returns the field names in insertion order.
func (p *Prediction) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Len returns the number of fields.
func (p *Prediction) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// IsEmpty reports whether the prediction holds no fields.
func (p *Prediction) IsEmpty() bool {
	return p.Len() == 0
}

// Usage returns the token usage of the model call that produced the
// prediction.
func (p *Prediction) Usage() ai.Usage {
	if p == nil {
		return ai.Usage{}
	}
	return p.usage
}

// MarshalJSON encodes the prediction as a JSON object in field order.
func (p *Prediction) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, fmt.Errorf("predict: encode %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FormatValue renders an input or output value as prompt text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case map[string]any, []any, []string:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	default:
		return fmt.Sprint(x)
	}
}
