// Package file stores the bot collections as two JSON documents,
// users.json and words.json, in a single directory.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/heartmarshall/wordstream-bot/internal/adapter/storage"
	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

const (
	UsersFile = "users.json"
	WordsFile = "words.json"
)

// Backend implements storage.Backend on the local filesystem.
type Backend struct {
	dir string
	log *slog.Logger
	now func() time.Time
}

// New creates the directory if needed and returns a Backend rooted at it.
func New(dir string, logger *slog.Logger) (*Backend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file.New: %w", err)
	}
	return &Backend{
		dir: dir,
		log: logger.With("adapter", "file"),
		now: time.Now,
	}, nil
}

// Ping reports whether the directory is still reachable.
func (b *Backend) Ping(_ context.Context) error {
	info, err := os.Stat(b.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", b.dir)
	}
	return nil
}

// ReadUsers decodes users.json. Missing fields of each record take the
// profile defaults.
func (b *Backend) ReadUsers(ctx context.Context) (map[int64]domain.UserProfile, error) {
	users := map[int64]domain.UserProfile{}

	data, err := b.read(UsersFile)
	if err != nil || data == nil {
		return users, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return users, b.corrupt(ctx, UsersFile, err)
	}

	for key, msg := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return map[int64]domain.UserProfile{}, b.corrupt(ctx, UsersFile, fmt.Errorf("user key %q: %w", key, err))
		}
		p := domain.NewUserProfile("")
		if err := json.Unmarshal(msg, &p); err != nil {
			return map[int64]domain.UserProfile{}, b.corrupt(ctx, UsersFile, fmt.Errorf("user %d: %w", id, err))
		}
		p.FillDefaults()
		users[id] = p
	}

	return users, nil
}

// WriteUsers replaces users.json atomically.
func (b *Backend) WriteUsers(_ context.Context, users map[int64]domain.UserProfile) error {
	out := make(map[string]domain.UserProfile, len(users))
	for id, p := range users {
		out[strconv.FormatInt(id, 10)] = p
	}
	return b.write(UsersFile, out)
}

// ReadWords decodes words.json, keeping file order.
func (b *Backend) ReadWords(ctx context.Context) ([]domain.VocabularyItem, error) {
	words := []domain.VocabularyItem{}

	data, err := b.read(WordsFile)
	if err != nil || data == nil {
		return words, err
	}

	if err := json.Unmarshal(data, &words); err != nil {
		return []domain.VocabularyItem{}, b.corrupt(ctx, WordsFile, err)
	}

	for i := range words {
		if !words[i].Level.IsValid() {
			words[i].Level = domain.LevelBeginner
		}
	}
	return words, nil
}

// WriteWords replaces words.json atomically.
func (b *Backend) WriteWords(_ context.Context, words []domain.VocabularyItem) error {
	if words == nil {
		words = []domain.VocabularyItem{}
	}
	return b.write(WordsFile, words)
}

// read returns nil data without error when the file is absent or blank.
func (b *Backend) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

// write encodes v into a temp file in the same directory, then renames it
// over name so readers never observe a partial document.
func (b *Backend) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(b.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(b.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// corrupt moves the undecodable file aside so the next write does not
// destroy it, and returns an error wrapping storage.ErrCorrupt.
func (b *Backend) corrupt(ctx context.Context, name string, cause error) error {
	src := filepath.Join(b.dir, name)
	dst := fmt.Sprintf("%s.corrupt-%s", src, b.now().UTC().Format("20060102T150405"))

	if err := os.Rename(src, dst); err != nil {
		b.log.WarnContext(ctx, "quarantine corrupt file", slog.String("file", src), slog.String("error", err.Error()))
	} else {
		b.log.WarnContext(ctx, "corrupt file moved aside", slog.String("file", src), slog.String("moved_to", dst))
	}

	return fmt.Errorf("%w: %s: %v", storage.ErrCorrupt, name, cause)
}
