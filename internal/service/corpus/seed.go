package corpus

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Words []string `yaml:"words"`
}

// SeedPool returns the embedded candidate words, normalized and deduplicated.
func SeedPool() ([]string, error) {
	var f seedFile
	if err := yaml.Unmarshal(seedYAML, &f); err != nil {
		return nil, fmt.Errorf("corpus: parse seed: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Words))
	pool := make([]string, 0, len(f.Words))
	for _, w := range f.Words {
		w = domain.NormalizeWord(w)
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		pool = append(pool, w)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("corpus: seed pool is empty")
	}
	return pool, nil
}
