package track

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultContextRadius is the number of characters kept on each
	// side of a matched name.
	DefaultContextRadius = 100

	defaultMaxParallel = 8
)

// ScanMatch is one occurrence of a name in a body of text: the trimmed
// context window around it and the character offset of the match.
type ScanMatch struct {
	Context string
	Offset  int
}

// Scan finds every case-insensitive occurrence of name in text and
// extracts a symmetric context window of radius characters around each,
// clipped to the text bounds. Contexts keep the original casing of the
// text; a side where the window ends before the text does is marked
// with an ellipsis. Offsets are byte positions in text.
//
// The search cursor advances by one character after each match rather
// than past it, so occurrences of a name that overlaps itself at
// shifted positions are all reported. Advancing past the match would
// drop those and change mention counts.
func Scan(text, name string, radius int) []ScanMatch {
	if radius <= 0 {
		radius = DefaultContextRadius
	}
	needle := Normalize(name)
	if needle == "" || text == "" {
		return nil
	}

	haystack := strings.ToLower(text)
	var toOrig []int
	if len(haystack) != len(text) {
		// Case folding shifted byte offsets for this text. Build a map
		// from each folded byte back to the start of the original rune
		// so contexts and offsets come from the original text.
		toOrig = make([]int, 0, len(haystack)+1)
		for i, r := range text {
			for j := 0; j < utf8.RuneLen(unicode.ToLower(r)); j++ {
				toOrig = append(toOrig, i)
			}
		}
		toOrig = append(toOrig, len(text))
	}
	orig := func(pos int) int {
		if toOrig == nil {
			return pos
		}
		return toOrig[pos]
	}

	var matches []ScanMatch
	cursor := 0
	for cursor <= len(haystack)-len(needle) {
		rel := strings.Index(haystack[cursor:], needle)
		if rel < 0 {
			break
		}
		start := cursor + rel
		end := start + len(needle)

		winStart := max(0, start-radius)
		winEnd := min(len(haystack), end+radius)

		context := strings.TrimSpace(text[orig(winStart):orig(winEnd)])
		if winStart > 0 {
			context = "..." + context
		}
		if winEnd < len(haystack) {
			context = context + "..."
		}

		matches = append(matches, ScanMatch{
			Context: context,
			Offset:  orig(start),
		})
		cursor = start + 1
	}

	return matches
}

// Scanner locates mentions of tracked entities across an owner's
// sources and persists them through a MentionStore.
type Scanner struct {
	entities EntityStore
	sources  SourceStore
	mentions MentionStore
	log      logger.LoggerInstance
	radius   int
	parallel int
}

// ScannerParams configures a Scanner. ContextRadius defaults to
// DefaultContextRadius and MaxParallel bounds concurrent source scans
// during backfill.
type ScannerParams struct {
	Entities      EntityStore
	Sources       SourceStore
	Mentions      MentionStore
	Logger        logger.LoggerInstance
	ContextRadius int
	MaxParallel   int
}

func NewScanner(params ScannerParams) *Scanner {
	radius := params.ContextRadius
	if radius <= 0 {
		radius = DefaultContextRadius
	}
	parallel := params.MaxParallel
	if parallel <= 0 {
		parallel = defaultMaxParallel
	}
	log := params.Logger
	if log == nil {
		log = logger.Default()
	}
	return &Scanner{
		entities: params.Entities,
		sources:  params.Sources,
		mentions: params.Mentions,
		log:      log,
		radius:   radius,
		parallel: parallel,
	}
}

// Backfill scans every source visible to the owner for the entity's
// display name and persists the resulting mentions as one unit.
// Sources without scannable text are skipped; a storage failure rolls
// back the whole unit and is returned as a PersistenceError.
func (s *Scanner) Backfill(ctx context.Context, ownerID int64, entity common.Entity) (int, error) {
	sources, err := s.sources.ListSourceTexts(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to list sources: %w", err)
	}

	var mu sync.Mutex
	var mentions []common.Mention

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)

	for _, source := range sources {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			found := s.scanSource(source, entity)
			if len(found) == 0 {
				return nil
			}
			mu.Lock()
			mentions = append(mentions, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if len(mentions) == 0 {
		return 0, nil
	}
	if err := s.mentions.SaveMentions(ctx, mentions); err != nil {
		return 0, err
	}
	return len(mentions), nil
}

// IncrementalScan scans one newly ingested source against every entity
// currently tracked by the owner and persists the mentions as one unit.
// It is used at ingestion time instead of re-scanning the whole corpus.
func (s *Scanner) IncrementalScan(ctx context.Context, ownerID int64, source SourceText) ([]common.Mention, error) {
	entities, err := s.entities.ListEntities(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	var mentions []common.Mention
	for _, entity := range entities {
		mentions = append(mentions, s.scanSource(source, entity)...)
	}

	if len(mentions) == 0 {
		return nil, nil
	}
	if err := s.mentions.SaveMentions(ctx, mentions); err != nil {
		return nil, err
	}
	return mentions, nil
}

func (s *Scanner) scanSource(source SourceText, entity common.Entity) []common.Mention {
	var mentions []common.Mention
	for _, chunk := range source.Chunks {
		if strings.TrimSpace(chunk.Text) == "" {
			continue
		}
		for _, match := range Scan(chunk.Text, entity.Name, s.radius) {
			mentions = append(mentions, common.Mention{
				EntityID:   entity.ID,
				OwnerID:    entity.OwnerID,
				DocumentID: source.DocumentID,
				ArticleID:  source.ArticleID,
				ChunkID:    fmt.Sprintf("%s_%d", source.PublicID, chunk.Index),
				Context:    match.Context,
			})
		}
	}
	return mentions
}
