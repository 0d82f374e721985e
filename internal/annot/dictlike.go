package annot

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// blockPattern matches /* ... */ spans, shortest-first, across lines.
var blockPattern = regexp.MustCompile(`(?s)/\*(.*?)\*/`)

// DictLikeParser extracts annotations from /* ... */ block comments whose
// interior is a YAML mapping.
type DictLikeParser struct{}

// NewDictLikeParser returns the block-comment annotation parser.
func NewDictLikeParser() *DictLikeParser {
	return &DictLikeParser{}
}

// Name implements Parser.
func (p *DictLikeParser) Name() string {
	return "dict_like"
}

// Parse implements Parser.
//
// Each block is parsed independently; a block that is not valid YAML, or
// whose value is not a mapping, is skipped rather than aborting the parse.
// Later blocks win on key collision.
func (p *DictLikeParser) Parse(text string) map[string]any {
	result := make(map[string]any)
	for _, m := range blockPattern.FindAllStringSubmatch(text, -1) {
		var parsed map[string]any
		if err := yaml.Unmarshal([]byte(strings.TrimSpace(m[1])), &parsed); err != nil {
			continue
		}
		for k, v := range parsed {
			result[k] = v
		}
	}
	return result
}
