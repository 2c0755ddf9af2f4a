package normalizer

import (
	"strings"

	"scrubber/internal/models"
)

// Transform is a caller-supplied cleaning strategy for one field. It has full
// control over the result and may change the value's kind.
type Transform interface {
	Apply(v models.Value) (models.Value, error)
}

// TransformFunc adapts an ordinary function to Transform.
type TransformFunc func(v models.Value) (models.Value, error)

// Apply calls f(v).
func (f TransformFunc) Apply(v models.Value) (models.Value, error) {
	return f(v)
}

// TransformSet maps an exact field key to its Transform.
type TransformSet map[string]Transform

// Lowercase returns a Transform that lower-cases string values after running
// the default text pipeline. Other kinds pass through.
func Lowercase() Transform {
	return TransformFunc(func(v models.Value) (models.Value, error) {
		s, ok := v.Text()
		if !ok {
			return v, nil
		}

		return models.StringValue(strings.ToLower(CleanText(s, DefaultTextOptions()))), nil
	})
}
