package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/etnz/fiado"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const documentExt = ".json"

// Dir is a DocumentStore persisted in a folder.
//
// Each collection is a sub folder, each document a file named after its id:
//
//	<root>/customers/<id>.json
//
// The file holds the version and the document itself. Files are replaced
// atomically. Dir is safe for concurrent use within a process only.
type Dir struct {
	root string
	mu   sync.Mutex
}

// OpenDir opens (and creates if needed) a folder based store.
func OpenDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create store folder %q: %w", root, err)
	}
	return &Dir{root: root}, nil
}

// file is the on disk format of a document.
type file struct {
	Version int64           `json:"version"`
	Created int64           `json:"created"`
	Data    json.RawMessage `json:"data"`
}

func (s *Dir) path(c fiado.Collection, id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid document id %q", id)
	}
	return filepath.Join(s.root, string(c), id+documentExt), nil
}

func (s *Dir) read(c fiado.Collection, id string) (file, error) {
	p, err := s.path(c, id)
	if err != nil {
		return file{}, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return file{}, fmt.Errorf("%s/%s: %w", c, id, fiado.ErrNotFound)
	}
	if err != nil {
		return file{}, fmt.Errorf("cannot read %q: %w", p, err)
	}
	var f file
	if err := json.Unmarshal(b, &f); err != nil {
		return file{}, fmt.Errorf("format error %q: %w", p, err)
	}
	return f, nil
}

func (s *Dir) List(ctx context.Context, c fiado.Collection) ([]fiado.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	names, err := filepath.Glob(filepath.Join(s.root, string(c), "*"+documentExt))
	if err != nil {
		return nil, err
	}
	type entry struct {
		id string
		file
	}
	entries := make([]entry, 0, len(names))
	for _, name := range names {
		id := strings.TrimSuffix(filepath.Base(name), documentExt)
		f, err := s.read(c, id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{id, f})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Created != entries[j].Created {
			return entries[i].Created < entries[j].Created
		}
		return entries[i].id < entries[j].id
	})
	docs := make([]fiado.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, fiado.Document{ID: e.id, Version: e.Version, Data: e.Data})
	}
	return docs, nil
}

func (s *Dir) Get(ctx context.Context, c fiado.Collection, id string) (fiado.Document, error) {
	if err := ctx.Err(); err != nil {
		return fiado.Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.read(c, id)
	if err != nil {
		return fiado.Document{}, err
	}
	return fiado.Document{ID: id, Version: f.Version, Data: f.Data}, nil
}

func (s *Dir) Create(ctx context.Context, c fiado.Collection, data json.RawMessage) (fiado.Document, error) {
	return s.Put(ctx, c, uuid.NewString(), data, 0)
}

func (s *Dir) Put(ctx context.Context, c fiado.Collection, id string, data json.RawMessage, expect int64) (fiado.Document, error) {
	if err := ctx.Err(); err != nil {
		return fiado.Document{}, err
	}
	p, err := s.path(c, id)
	if err != nil {
		return fiado.Document{}, err
	}
	if !json.Valid(data) {
		return fiado.Document{}, fmt.Errorf("%s/%s: invalid json document", c, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.read(c, id)
	if err != nil && !errors.Is(err, fiado.ErrNotFound) {
		return fiado.Document{}, err
	}
	if expect != fiado.AnyVersion && old.Version != expect {
		return fiado.Document{}, fmt.Errorf("%s/%s at version %d, expected %d: %w", c, id, old.Version, expect, fiado.ErrConflict)
	}

	created := old.Created
	if old.Version == 0 {
		created = stamp()
	}
	d := fiado.Document{ID: id, Version: old.Version + 1, Data: data}
	b, err := json.MarshalIndent(file{Version: d.Version, Created: created, Data: data}, "", "  ")
	if err != nil {
		return fiado.Document{}, fmt.Errorf("cannot encode %q: %w", p, err)
	}
	if err := writeFile(p, b); err != nil {
		return fiado.Document{}, err
	}
	log.Debug().Str("collection", string(c)).Str("id", id).Int64("version", d.Version).Msg("document written")
	return d, nil
}

// writeFile replaces the file at p with b atomically.
func writeFile(p string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("cannot create folder for %q: %w", p, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot write %q: %w", p, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write %q: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write %q: %w", p, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("cannot write %q: %w", p, err)
	}
	return nil
}

func (s *Dir) Delete(ctx context.Context, c fiado.Collection, id string, expect int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(c, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if expect != fiado.AnyVersion {
		old, err := s.read(c, id)
		if err != nil {
			return err
		}
		if old.Version != expect {
			return fmt.Errorf("%s/%s at version %d, expected %d: %w", c, id, old.Version, expect, fiado.ErrConflict)
		}
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s/%s: %w", c, id, fiado.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("cannot delete %q: %w", p, err)
	}
	return nil
}

func (s *Dir) Find(ctx context.Context, c fiado.Collection, field, value string) ([]fiado.Document, error) {
	docs, err := s.List(ctx, c)
	if err != nil {
		return nil, err
	}
	return filter(c, docs, field, value)
}

// filter keeps the documents whose field equals value.
func filter(c fiado.Collection, docs []fiado.Document, field, value string) ([]fiado.Document, error) {
	var out []fiado.Document
	for _, d := range docs {
		ok, err := fiado.MatchField(d.Data, field, value)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", c, d.ID, err)
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}
