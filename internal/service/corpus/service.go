package corpus

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

// wordStore is the persistence the corpus needs.
type wordStore interface {
	Words(ctx context.Context) []domain.VocabularyItem
	UpdateWords(ctx context.Context, fn func(words []domain.VocabularyItem) ([]domain.VocabularyItem, error)) error
}

// definer looks up an English definition. found is false for unknown words.
type definer interface {
	LookupDefinition(ctx context.Context, word string) (def string, found bool, err error)
}

type translator interface {
	Translate(ctx context.Context, text, lang string) (string, bool, error)
}

// Shuffler reorders candidates in place.
type Shuffler func(words []string)

// Config holds corpus replenishment settings.
type Config struct {
	LowerBound    int
	EnrichTimeout time.Duration
	SeedLang      string
}

// Service grows and serves the shared vocabulary corpus.
type Service struct {
	log        *slog.Logger
	words      wordStore
	definer    definer
	translator translator
	pool       []string
	shuffle    Shuffler
	cfg        Config
}

// NewService creates a corpus service. A nil shuffle uses math/rand/v2.
func NewService(
	logger *slog.Logger,
	words wordStore,
	definer definer,
	translator translator,
	pool []string,
	shuffle Shuffler,
	cfg Config,
) *Service {
	if shuffle == nil {
		shuffle = func(w []string) {
			rand.Shuffle(len(w), func(i, j int) { w[i], w[j] = w[j], w[i] })
		}
	}
	return &Service{
		log:        logger.With("service", "corpus"),
		words:      words,
		definer:    definer,
		translator: translator,
		pool:       pool,
		shuffle:    shuffle,
		cfg:        cfg,
	}
}

// List returns the corpus in insertion order.
func (s *Service) List(ctx context.Context) []domain.VocabularyItem {
	return s.words.Words(ctx)
}

func (s *Service) Size(ctx context.Context) int {
	return len(s.words.Words(ctx))
}
