// Package prompt loads the few-shot prompt templates and renders them for a
// topic question.
package prompt

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"perspectives/internal/safeio"
	t "perspectives/internal/types"
)

// ErrTemplateMissing matches every *MissingError.
var ErrTemplateMissing = errors.New("prompt template missing")

// MissingError reports the candidate paths that were tried.
type MissingError struct {
	Shot   t.ShotCount
	Method t.Method
	Tried  []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("prompt template for %s %s not found (tried %s)",
		e.Shot, e.Method, strings.Join(e.Tried, ", "))
}

func (e *MissingError) Is(target error) bool { return target == ErrTemplateMissing }

type cacheKey struct {
	shot   t.ShotCount
	method t.Method
}

// Store reads templates from a directory. Loaded templates are kept in a
// small LRU; missing files are never cached so a template added mid-run is
// picked up by the next request. Reads never leave dir.
type Store struct {
	dir   string
	root  *safeio.Root
	cache *lru.Cache[cacheKey, Template]
}

func NewStore(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("prompt: template directory is required")
	}
	root, err := safeio.NewRoot(dir)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[cacheKey, Template](8)
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, root: root, cache: cache}, nil
}

func (s *Store) Dir() string { return s.dir }

// Candidates lists the file names tried for (shot, method), most specific
// first. 5-shot templates may also omit the shot count.
func Candidates(shot t.ShotCount, method t.Method) []string {
	names := []string{fmt.Sprintf("%s-%s-prompting.txt", shot, method)}
	if shot == t.FiveShot {
		names = append(names, fmt.Sprintf("%s-prompting.txt", method))
	}
	return names
}

// Load returns the template for (shot, method).
func (s *Store) Load(shot t.ShotCount, method t.Method) (Template, error) {
	key := cacheKey{shot: shot, method: method}
	if tpl, ok := s.cache.Get(key); ok {
		return tpl, nil
	}

	var tried []string
	for _, name := range Candidates(shot, method) {
		path := filepath.Join(s.dir, name)
		tried = append(tried, path)
		b, err := s.root.ReadFile(name)
		if safeio.IsNotExist(err) {
			continue
		}
		if err != nil {
			return Template{}, fmt.Errorf("prompt: read %s: %w", path, err)
		}
		tpl := Template{Shot: shot, Method: method, Path: path, Body: string(b)}
		s.cache.Add(key, tpl)
		return tpl, nil
	}
	return Template{}, &MissingError{Shot: shot, Method: method, Tried: tried}
}
