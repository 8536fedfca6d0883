package intents

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keyword class names referenced by the classification rules.
const (
	ClassTop      = "top"
	ClassProduct  = "product"
	ClassMonthly  = "monthly"
	ClassSales    = "sales"
	ClassCustomer = "customer"
	ClassReturn   = "return"
	ClassShip     = "ship"
)

var requiredClasses = []string{
	ClassTop, ClassProduct, ClassMonthly, ClassSales, ClassCustomer, ClassReturn, ClassShip,
}

//go:embed keywords.yaml
var defaultKeywordsYAML []byte

// Keywords maps a class name to the substrings that signal it.
type Keywords struct {
	Classes map[string][]string `yaml:"classes"`
}

// ParseKeywords decodes a keyword table and checks every class the rules need is present.
func ParseKeywords(data []byte) (*Keywords, error) {
	var kw Keywords
	if err := yaml.Unmarshal(data, &kw); err != nil {
		return nil, fmt.Errorf("failed to parse keyword table: %w", err)
	}

	for _, class := range requiredClasses {
		tokens := kw.Classes[class]
		if len(tokens) == 0 {
			return nil, fmt.Errorf("keyword class %q has no tokens", class)
		}
		for i, tok := range tokens {
			if strings.TrimSpace(tok) == "" {
				return nil, fmt.Errorf("keyword class %q has an empty token", class)
			}
			tokens[i] = strings.ToLower(tok)
		}
	}
	return &kw, nil
}

// DefaultKeywords returns the embedded keyword table.
func DefaultKeywords() *Keywords {
	kw, err := ParseKeywords(defaultKeywordsYAML)
	if err != nil {
		panic(err)
	}
	return kw
}

// Has reports whether the lowercased question contains any token of class.
func (k *Keywords) Has(question, class string) bool {
	for _, tok := range k.Classes[class] {
		if strings.Contains(question, tok) {
			return true
		}
	}
	return false
}
