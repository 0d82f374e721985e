package annot

// Parser extracts a flat key→value mapping from a span of raw text.
//
// Parse is total: malformed input yields a smaller (possibly empty) map,
// never an error. Implementations must be stateless.
type Parser interface {
	// Name identifies the parser within a Registry.
	Name() string

	// Parse returns every annotation found in text. Never nil.
	Parse(text string) map[string]any
}
