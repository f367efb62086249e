// Package guides loads leveling guide documents and serves them by identifier.
package guides

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jharjadi/jdgen/internal/leveling"
	"github.com/jharjadi/jdgen/internal/model"
)

// DefaultMaxFiles bounds how many guide files a single load accepts.
const DefaultMaxFiles = 256

// Document is a loaded guide. It is never mutated after Load returns.
type Document struct {
	ID      string
	Title   string
	Summary string
	Content string

	// ByteLength is len(Content) after any load-time truncation.
	ByteLength   int
	Truncated    bool
	OriginalSize int
}

// Repository maps guide identifiers to documents. It is read-only once built
// and safe for concurrent use.
type Repository struct {
	docs map[string]Document
	ids  []string
}

type loadOptions struct {
	maxFiles int
	logger   *slog.Logger
}

// Option configures Load.
type Option func(*loadOptions)

// WithMaxFiles caps the number of guide files read. Extra files are skipped
// with a warning.
func WithMaxFiles(n int) Option {
	return func(o *loadOptions) { o.maxFiles = n }
}

// WithLogger sets the logger for load warnings. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *loadOptions) { o.logger = l }
}

// Load reads every *.md and *.txt regular file at the top level of fsys. The
// file stem is the guide identifier. Files with invalid stems are skipped.
// Content beyond rawFileCap bytes is dropped and the document is flagged
// Truncated.
func Load(fsys fs.FS, rawFileCap int, opts ...Option) (*Repository, error) {
	if rawFileCap <= 0 {
		return nil, fmt.Errorf("%w: raw file cap %d must be positive", model.ErrInvalidConfiguration, rawFileCap)
	}
	o := loadOptions{maxFiles: DefaultMaxFiles, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading guide directory: %w", err)
	}

	repo := &Repository{docs: make(map[string]Document)}
	for _, e := range entries {
		name := e.Name()
		ext := path.Ext(name)
		if ext != ".md" && ext != ".txt" {
			continue
		}
		if !e.Type().IsRegular() {
			o.logger.Warn("skipping non-regular guide file", "file", name)
			continue
		}
		id := strings.TrimSuffix(name, ext)
		if err := ValidateID(id); err != nil {
			o.logger.Warn("skipping guide with invalid name", "file", name)
			continue
		}
		if _, dup := repo.docs[id]; dup {
			o.logger.Warn("skipping duplicate guide", "file", name, "guide_id", id)
			continue
		}
		if len(repo.docs) >= o.maxFiles {
			o.logger.Warn("guide file limit reached, skipping remaining files",
				"max_files", o.maxFiles, "file", name)
			break
		}

		doc, err := readDocument(fsys, name, id, rawFileCap, o.logger)
		if err != nil {
			o.logger.Warn("skipping unreadable guide", "file", name, "error", err)
			continue
		}
		repo.docs[id] = doc
	}

	repo.ids = make([]string, 0, len(repo.docs))
	for id := range repo.docs {
		repo.ids = append(repo.ids, id)
	}
	sort.Strings(repo.ids)
	return repo, nil
}

func readDocument(fsys fs.FS, name, id string, rawFileCap int, logger *slog.Logger) (Document, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	// Read one byte past the cap so oversize files are detectable even when
	// Stat reports no size.
	raw, err := io.ReadAll(io.LimitReader(f, int64(rawFileCap)+1))
	if err != nil {
		return Document{}, err
	}
	original := len(raw)
	if info, err := f.Stat(); err == nil && int(info.Size()) > original {
		original = int(info.Size())
	}

	text := string(raw)
	truncated := len(text) > rawFileCap
	if truncated {
		text = leveling.TruncateBytes(text, rawFileCap)
		logger.Warn("guide truncated at load", "guide_id", id,
			"original_size", original, "cap", rawFileCap)
	}

	fm, body, err := splitFrontMatter(text)
	if err != nil {
		logger.Warn("ignoring malformed front matter", "guide_id", id, "error", err)
		fm, body = frontMatter{}, text
	}

	return Document{
		ID:           id,
		Title:        fm.Title,
		Summary:      fm.Summary,
		Content:      body,
		ByteLength:   len(body),
		Truncated:    truncated,
		OriginalSize: original,
	}, nil
}

// ValidateID rejects identifiers that are empty, contain "..", a path
// separator or NUL, or use characters outside [a-z0-9_-].
func ValidateID(id string) error {
	if id == "" || strings.Contains(id, "..") {
		return model.ErrInvalidIdentifier
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return model.ErrInvalidIdentifier
		}
	}
	return nil
}

// Get returns the guide for id. A well-formed identifier with no guide
// reports ok=false and a nil error. Identifiers that fail ValidateID are
// rejected before lookup and logged as a security event.
func (r *Repository) Get(id string) (Document, bool, error) {
	if err := ValidateID(id); err != nil {
		slog.Warn("guide_identifier_rejected", "id_len", len(id))
		return Document{}, false, err
	}
	doc, ok := r.docs[id]
	return doc, ok, nil
}

// IDs returns the loaded identifiers in lexical order.
func (r *Repository) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of loaded guides.
func (r *Repository) Len() int { return len(r.docs) }

// Sections resolves ids to assembler input, preserving order. Unknown or
// invalid identifiers are skipped.
func (r *Repository) Sections(ids []string) []leveling.Section {
	out := make([]leveling.Section, 0, len(ids))
	for _, id := range ids {
		doc, ok, err := r.Get(id)
		if err != nil || !ok {
			continue
		}
		out = append(out, leveling.Section{ID: doc.ID, Content: doc.Content})
	}
	return out
}

// Info lists guide metadata in identifier order.
func (r *Repository) Info() []model.GuideInfo {
	out := make([]model.GuideInfo, 0, len(r.ids))
	for _, id := range r.ids {
		d := r.docs[id]
		out = append(out, model.GuideInfo{
			ID:           d.ID,
			Title:        d.Title,
			Summary:      d.Summary,
			Bytes:        d.ByteLength,
			Truncated:    d.Truncated,
			OriginalSize: d.OriginalSize,
		})
	}
	return out
}
