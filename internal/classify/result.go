// Package classify holds the deterministic rule engines of the attribute
// pipeline: the noise filter, main-item identifier, category matcher and the
// style, material, gender and brand classifiers.
//
// Every function here is pure. It reads vision.Signals and static tables and
// never performs I/O, so results are identical across repeated calls and safe
// to compute concurrently.
package classify

// Classification is the outcome of a rule engine. Value is nil exactly when
// Confidence is zero.
type Classification[T any] struct {
	Value        *T      `json:"value"`
	Confidence   float64 `json:"confidence"`
	Alternatives []T     `json:"alternatives,omitempty"`
}

// minConfidence keeps a matched value distinguishable from no match.
const minConfidence = 0.01

// NoMatch returns an empty classification, optionally carrying alternatives.
func NoMatch[T any](alternatives ...T) Classification[T] {
	return Classification[T]{Alternatives: alternatives}
}

// Matched returns a classification for v. Confidence is clamped to
// [0.01, 1].
func Matched[T any](v T, confidence float64, alternatives ...T) Classification[T] {
	if confidence < minConfidence {
		confidence = minConfidence
	}
	if confidence > 1 {
		confidence = 1
	}
	return Classification[T]{Value: &v, Confidence: confidence, Alternatives: alternatives}
}

// Found reports whether a value was classified.
func (c Classification[T]) Found() bool {
	return c.Value != nil
}

// Or returns the classified value or def.
func (c Classification[T]) Or(def T) T {
	if c.Value == nil {
		return def
	}
	return *c.Value
}
