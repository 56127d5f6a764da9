package doc

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/argus-intel/argus/backend/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// Extractor wraps another Loader and turns fetched document bytes into
// plain text. Word documents (.docx) are parsed from their XML; other
// files are treated as plain text.
type Extractor struct {
	loader loader.Loader

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

func NewExtractor(inner loader.Loader) *Extractor {
	return &Extractor{
		loader: inner,
		cache:  make(map[string][]byte),
	}
}

func (l *Extractor) GetText(ctx context.Context, source loader.Source) ([]byte, error) {
	key := loader.CacheKey(source)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		content, err := l.loader.GetText(ctx, source)
		if err != nil {
			return nil, err
		}

		ext := strings.ToLower(filepath.Ext(source.Path))
		if ext == ".docx" {
			content, err = parseDocx(content)
			if err != nil {
				return nil, err
			}
		}

		l.cacheMu.Lock()
		l.cache[key] = content
		l.cacheMu.Unlock()

		return content, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
