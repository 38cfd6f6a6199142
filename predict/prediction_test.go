package predict

import (
	"encoding/json"
	"testing"

	"github.com/spetersoncode/reactor/trajectory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrediction(t *testing.T) {
	t.Run("missing fields are benign", func(t *testing.T) {
		p := NewPrediction()

		v, ok := p.Get("nope")
		assert.False(t, ok)
		assert.Nil(t, v)
		assert.Equal(t, "", p.String("nope"))
		assert.Nil(t, p.Map("nope"))
		assert.Nil(t, p.Trajectory())
		assert.True(t, p.IsEmpty())
	})

	t.Run("nil prediction is safe to probe", func(t *testing.T) {
		var p *Prediction
		assert.False(t, p.Has("x"))
		assert.Equal(t, 0, p.Len())
		assert.Nil(t, p.Keys())
	})

	t.Run("keeps insertion order on overwrite", func(t *testing.T) {
		p := NewPrediction()
		p.Set("b", 1)
		p.Set("a", 2)
		p.Set("b", 3)

		assert.Equal(t, []string{"b", "a"}, p.Keys())
		assert.Equal(t, "3", p.String("b"))
	})

	t.Run("renders maps as JSON", func(t *testing.T) {
		p := NewPrediction()
		p.Set("args", map[string]any{"x": 1})
		assert.Equal(t, `{"x":1}`, p.String("args"))
		assert.Equal(t, map[string]any{"x": 1}, p.Map("args"))
	})

	t.Run("carries a trajectory", func(t *testing.T) {
		tr := trajectory.New()
		tr.Append("t", "finish", nil, "Done")

		p := NewPrediction()
		p.Set("answer", "42")
		p.Set(TrajectoryKey, tr)

		assert.Same(t, tr, p.Trajectory())
		assert.Contains(t, p.String(TrajectoryKey), "observation_0: Done")

		data, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"answer":"42","trajectory":[{"index":0,"thought":"t","tool_name":"finish","tool_args":{},"observation":"Done"}]}`,
			string(data))
		assert.Equal(t, `{"answer":"42","trajectory":`, string(data[:28]))
	})
}
