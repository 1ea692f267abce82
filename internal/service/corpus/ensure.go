package corpus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

// EnsureCorpus grows the corpus towards minimumSize with enriched seed
// words. It is a no-op when the corpus is already large enough. Enrichment
// runs without holding the store lock; the final append re-checks
// uniqueness against the corpus as stored at that moment.
func (s *Service) EnsureCorpus(ctx context.Context, minimumSize int) (int, error) {
	current := s.words.Words(ctx)
	if len(current) >= minimumSize {
		return 0, nil
	}
	if len(s.pool) == 0 {
		s.log.WarnContext(ctx, "corpus below minimum with empty seed pool",
			slog.Int("size", len(current)),
			slog.Int("minimum", minimumSize),
		)
		return 0, nil
	}

	needed := max(minimumSize-len(current), s.cfg.LowerBound)

	known := make(map[string]struct{}, len(current)+needed)
	for _, item := range current {
		known[item.Word] = struct{}{}
	}

	candidates := s.candidates(needed)
	batch := make([]domain.VocabularyItem, 0, needed)
	skipped := 0

	for _, word := range candidates {
		if len(batch) >= needed {
			break
		}
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("corpus.EnsureCorpus: %w", err)
		}
		if _, ok := known[word]; ok {
			continue
		}

		// A word that fails enrichment is not retried within this call.
		known[word] = struct{}{}

		item, ok := s.enrich(ctx, word)
		if !ok {
			skipped++
			continue
		}
		batch = append(batch, item)
	}

	if len(batch) == 0 {
		s.log.WarnContext(ctx, "corpus refill produced no items", slog.Int("skipped", skipped))
		return 0, nil
	}

	added := 0
	err := s.words.UpdateWords(ctx, func(words []domain.VocabularyItem) ([]domain.VocabularyItem, error) {
		stored := make(map[string]struct{}, len(words))
		for _, w := range words {
			stored[w.Word] = struct{}{}
		}
		for _, item := range batch {
			if _, dup := stored[item.Word]; dup {
				continue
			}
			stored[item.Word] = struct{}{}
			words = append(words, item)
			added++
		}
		return words, nil
	})
	if err != nil {
		return 0, fmt.Errorf("corpus.EnsureCorpus: %w", err)
	}

	s.log.InfoContext(ctx, "corpus refilled",
		slog.Int("added", added),
		slog.Int("skipped", skipped),
		slog.Int("size", len(current)+added),
	)
	return added, nil
}

// candidates repeats the seed pool enough times to cover needed and shuffles it.
func (s *Service) candidates(needed int) []string {
	if len(s.pool) == 0 {
		return nil
	}
	repeats := needed/len(s.pool) + 2
	out := make([]string, 0, repeats*len(s.pool))
	for range repeats {
		out = append(out, s.pool...)
	}
	s.shuffle(out)
	return out
}

// enrich looks up the definition and translation of word. ok is false when
// the word should be skipped.
func (s *Service) enrich(ctx context.Context, word string) (domain.VocabularyItem, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EnrichTimeout)
	defer cancel()

	def, found, err := s.definer.LookupDefinition(ctx, word)
	if err != nil {
		s.log.WarnContext(ctx, "definition lookup failed", slog.String("word", word), slog.String("error", err.Error()))
		return domain.VocabularyItem{}, false
	}
	if !found {
		s.log.DebugContext(ctx, "unknown word", slog.String("word", word))
		return domain.VocabularyItem{}, false
	}

	tr, ok, err := s.translator.Translate(ctx, word, s.cfg.SeedLang)
	if err != nil {
		s.log.WarnContext(ctx, "translation failed, storing empty", slog.String("word", word), slog.String("error", err.Error()))
		tr = ""
	} else if !ok {
		tr = ""
	}

	return domain.NewVocabularyItem(word, tr, def), true
}
