// Package translate holds the machine translators used for corpus
// enrichment and user translation requests.
package translate

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

//go:embed glossary.yaml
var glossaryYAML []byte

// Static translates from an embedded glossary. Phrases outside the
// glossary are reported as not found.
type Static struct {
	glossary map[string]map[string]string
}

// NewStatic parses the embedded glossary.
func NewStatic() (*Static, error) {
	var g map[string]map[string]string
	if err := yaml.Unmarshal(glossaryYAML, &g); err != nil {
		return nil, fmt.Errorf("translate: parse glossary: %w", err)
	}
	return &Static{glossary: g}, nil
}

func (s *Static) Translate(_ context.Context, text, lang string) (string, bool, error) {
	tr, ok := s.glossary[strings.ToLower(lang)][domain.NormalizeWord(text)]
	return tr, ok, nil
}
