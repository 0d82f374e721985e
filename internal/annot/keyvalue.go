package annot

import "regexp"

// keyValuePattern matches line comments of the form: -- key: value
// The value is a single contiguous token; multi-word literals need the
// block-comment form.
var keyValuePattern = regexp.MustCompile(`--\s*([^\s:]+):\s*(\S+)`)

// KeyValueParser extracts annotations from `-- key: value` comment lines.
type KeyValueParser struct{}

// NewKeyValueParser returns the line-comment annotation parser.
func NewKeyValueParser() *KeyValueParser {
	return &KeyValueParser{}
}

// Name implements Parser.
func (p *KeyValueParser) Name() string {
	return "key_value"
}

// Parse implements Parser. Later occurrences of a key win.
func (p *KeyValueParser) Parse(text string) map[string]any {
	result := make(map[string]any)
	for _, m := range keyValuePattern.FindAllStringSubmatch(text, -1) {
		result[m[1]] = m[2]
	}
	return result
}
