package pipeline

import "github.com/raine/product-attributes/internal/classify"

// Field sources recorded in logs.
const (
	SourceGenerative = "generative"
	SourceRules      = "rules"
	SourceName       = "name"
	SourceVision     = "vision"
	SourceOCR        = "ocr"
)

// Field is a merged attribute value with its confidence and origin.
type Field[T any] struct {
	Value      T
	Confidence float64
	Source     string
}

// Stage yields a field or reports that it has none.
type Stage[T any] func() (Field[T], bool)

// FirstOf returns the field of the first stage that yields one.
func FirstOf[T any](stages ...Stage[T]) (Field[T], bool) {
	for _, stage := range stages {
		if f, ok := stage(); ok {
			return f, true
		}
	}
	return Field[T]{}, false
}

// FirstOrDefault is FirstOf falling back to def.
func FirstOrDefault[T any](def Field[T], stages ...Stage[T]) Field[T] {
	if f, ok := FirstOf(stages...); ok {
		return f
	}
	return def
}

// fromPtr yields *p when p is non-nil.
func fromPtr[T any](p *T, confidence float64, source string) Stage[T] {
	return func() (Field[T], bool) {
		if p == nil {
			return Field[T]{}, false
		}
		return Field[T]{Value: *p, Confidence: confidence, Source: source}, true
	}
}

// fromLookup yields the result of a (value, ok) lookup, evaluated lazily.
func fromLookup[T any](lookup func() (T, bool), confidence float64, source string) Stage[T] {
	return func() (Field[T], bool) {
		v, ok := lookup()
		if !ok {
			return Field[T]{}, false
		}
		return Field[T]{Value: v, Confidence: confidence, Source: source}, true
	}
}

// fromClassification yields a classified value with its confidence.
func fromClassification[T any](c classify.Classification[T], source string) Stage[T] {
	return fromPtr(c.Value, c.Confidence, source)
}

// optional converts a field lookup result into a JSON-friendly pointer.
func optional[T any](f Field[T], ok bool) *T {
	if !ok {
		return nil
	}
	v := f.Value
	return &v
}
