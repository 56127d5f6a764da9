package loader

import "context"

// Source identifies one raw source awaiting text extraction: an object
// key in blob storage for uploaded documents, or a URL for articles.
type Source struct {
	ID   string
	Path string
}

// Loader turns a Source into plain text. Implementations may read from
// blob storage, the web, or wrap another Loader with format parsing.
type Loader interface {
	GetText(ctx context.Context, source Source) ([]byte, error)
}

func CacheKey(source Source) string {
	return source.ID + ":" + source.Path
}
