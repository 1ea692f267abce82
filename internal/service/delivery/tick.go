package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

// errNotDue aborts a per-user update when the fresh profile no longer
// qualifies for this slot.
var errNotDue = errors.New("not due")

// TickResult summarizes one tick.
type TickResult struct {
	Checked   int
	Delivered int
	Words     int
	Failed    int
}

// Tick delivers words to every user whose delivery time matches now and
// who has not been served in the current slot. A failure for one user is
// logged and counted; it never stops the others.
func (s *Service) Tick(ctx context.Context, now time.Time) TickResult {
	users := s.registry.List(ctx)
	items := s.corpus.List(ctx)
	slot := domain.SlotKey(now)

	var (
		delivered atomic.Int64
		words     atomic.Int64
		failed    atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, u := range users {
		if !u.Profile.DeliveryTime.Matches(now) || u.Profile.LastDelivery == slot {
			continue
		}

		id := u.ID
		g.Go(func() error {
			n, err := s.deliver(gctx, id, now, slot, items)
			switch {
			case errors.Is(err, errNotDue):
			case err != nil:
				failed.Add(1)
				s.log.ErrorContext(gctx, "delivery failed", slog.Int64("user_id", id), slog.String("error", err.Error()))
			default:
				delivered.Add(1)
				words.Add(int64(n))
			}
			return nil
		})
	}
	_ = g.Wait()

	res := TickResult{
		Checked:   len(users),
		Delivered: int(delivered.Load()),
		Words:     int(words.Load()),
		Failed:    int(failed.Load()),
	}
	if res.Delivered > 0 || res.Failed > 0 {
		s.log.InfoContext(ctx, "delivery tick",
			slog.String("slot", slot),
			slog.Int("checked", res.Checked),
			slog.Int("delivered", res.Delivered),
			slog.Int("words", res.Words),
			slog.Int("failed", res.Failed),
		)
	}
	return res
}

// deliver selects and records the user's words against the fresh profile,
// then sends them. Words are marked learned before sending, so a transport
// failure never causes a repeat.
func (s *Service) deliver(ctx context.Context, id int64, now time.Time, slot string, corpus []domain.VocabularyItem) (int, error) {
	var (
		batch     []domain.VocabularyItem
		exhausted bool
	)

	_, err := s.registry.UpdateUser(ctx, id, func(p *domain.UserProfile) error {
		if !p.DeliveryTime.Matches(now) || p.LastDelivery == slot {
			return errNotDue
		}
		batch = SelectUnseen(corpus, p.LearnedSet(), p.WordsPerDay)

		// Repeat the notice only after new words were delivered.
		if len(batch) < p.WordsPerDay {
			exhausted = len(batch) > 0 || !p.Exhausted
			p.Exhausted = true
		} else {
			p.Exhausted = false
		}

		for _, item := range batch {
			p.MarkLearned(item.Word)
		}
		p.LastDelivery = slot
		return nil
	})
	if err != nil {
		if errors.Is(err, errNotDue) {
			return 0, errNotDue
		}
		return 0, fmt.Errorf("delivery.deliver: %w", err)
	}

	if len(batch) > 0 {
		if err := s.notifier.SendWords(ctx, id, batch); err != nil {
			return 0, fmt.Errorf("delivery.deliver: send words: %w", err)
		}
	}
	if exhausted {
		if err := s.notifier.SendExhausted(ctx, id); err != nil {
			return len(batch), fmt.Errorf("delivery.deliver: send exhausted: %w", err)
		}
	}
	return len(batch), nil
}

// SelectUnseen returns up to limit items not in learned, in corpus order.
func SelectUnseen(corpus []domain.VocabularyItem, learned map[string]struct{}, limit int) []domain.VocabularyItem {
	out := make([]domain.VocabularyItem, 0, min(limit, len(corpus)))
	for _, item := range corpus {
		if len(out) >= limit {
			break
		}
		if _, seen := learned[item.Word]; seen {
			continue
		}
		out = append(out, item)
	}
	return out
}
