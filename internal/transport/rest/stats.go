package rest

import (
	"context"
	"net/http"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

type statsSource interface {
	Stats(ctx context.Context) domain.UserStats
}

type corpusSizer interface {
	Size(ctx context.Context) int
}

// StatsHandler reports user and corpus counts.
type StatsHandler struct {
	users  statsSource
	corpus corpusSizer
}

func NewStatsHandler(users statsSource, corpus corpusSizer) *StatsHandler {
	return &StatsHandler{users: users, corpus: corpus}
}

type StatsResponse struct {
	Users      int `json:"users"`
	Premium    int `json:"premium"`
	Pending    int `json:"pending"`
	CorpusSize int `json:"corpus_size"`
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st := h.users.Stats(r.Context())
	writeJSON(w, http.StatusOK, StatsResponse{
		Users:      st.Total,
		Premium:    st.Premium,
		Pending:    st.Pending,
		CorpusSize: h.corpus.Size(r.Context()),
	})
}
