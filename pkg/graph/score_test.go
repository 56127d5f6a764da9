package graph

import (
	"testing"

	"github.com/argus-intel/argus/backend/pkg/common"
)

func mentionIn(entityID, docID int64, chunkID string) common.Mention {
	id := docID
	return common.Mention{
		EntityID:   entityID,
		OwnerID:    1,
		DocumentID: &id,
		ChunkID:    chunkID,
		Context:    "ctx",
	}
}

func TestScoreSymmetricAndBounded(t *testing.T) {
	analyzer := NewAnalyzer(AnalyzerParams{})

	tests := []struct {
		name      string
		mentionsA []common.Mention
		mentionsB []common.Mention
	}{
		{
			name:      "single shared chunk",
			mentionsA: []common.Mention{mentionIn(1, 1, "D1_0")},
			mentionsB: []common.Mention{mentionIn(2, 1, "D1_0")},
		},
		{
			name: "partial document overlap",
			mentionsA: []common.Mention{
				mentionIn(1, 1, "D1_0"),
				mentionIn(1, 2, "D2_0"),
			},
			mentionsB: []common.Mention{
				mentionIn(2, 1, "D1_1"),
				mentionIn(2, 3, "D3_0"),
			},
		},
		{
			name:      "no overlap",
			mentionsA: []common.Mention{mentionIn(1, 1, "D1_0")},
			mentionsB: []common.Mention{mentionIn(2, 2, "D2_0")},
		},
		{
			name:      "one side empty",
			mentionsA: []common.Mention{mentionIn(1, 1, "D1_0")},
			mentionsB: nil,
		},
		{
			name: "many pairs clamp at one",
			mentionsA: []common.Mention{
				mentionIn(1, 1, "D1_0"),
				mentionIn(1, 1, "D1_0"),
				mentionIn(1, 1, "D1_0"),
			},
			mentionsB: []common.Mention{
				mentionIn(2, 1, "D1_0"),
				mentionIn(2, 1, "D1_0"),
				mentionIn(2, 1, "D1_0"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forward, _ := analyzer.score(tt.mentionsA, tt.mentionsB)
			backward, _ := analyzer.score(tt.mentionsB, tt.mentionsA)

			if forward != backward {
				t.Errorf("score not symmetric: %v vs %v", forward, backward)
			}
			if forward < 0 || forward > 1 {
				t.Errorf("score = %v, out of [0,1]", forward)
			}
		})
	}
}

func TestScoreZeroWithoutAdjacency(t *testing.T) {
	analyzer := NewAnalyzer(AnalyzerParams{})

	mentionsA := []common.Mention{mentionIn(1, 1, "D1_0")}
	mentionsB := []common.Mention{mentionIn(2, 1, "D1_5")}

	strength, contexts := analyzer.score(mentionsA, mentionsB)
	if len(contexts) != 0 {
		t.Fatalf("got %d contexts for distant chunks, want 0", len(contexts))
	}
	// Shared document still contributes to the document signals.
	if strength <= 0 {
		t.Errorf("strength = %v, want document overlap contribution", strength)
	}
}

func TestChunksNearby(t *testing.T) {
	analyzer := NewAnalyzer(AnalyzerParams{ChunkWindow: 2})

	tests := []struct {
		a    string
		b    string
		want bool
	}{
		{"D1_0", "D1_0", true},
		{"D1_0", "D1_2", true},
		{"D1_0", "D1_3", false},
		{"D1_0", "D2_0", false},
		{"plain", "plain", true},
		{"plain", "other", false},
	}

	for _, tt := range tests {
		if got := analyzer.chunksNearby(tt.a, tt.b); got != tt.want {
			t.Errorf("chunksNearby(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
