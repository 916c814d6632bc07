package segment

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naiveSplit splits after ". " so tests do not depend on the punkt model.
func naiveSplit(p string) []string {
	var out []string
	for _, s := range strings.SplitAfter(p, ". ") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// unnumber strips the "i/N " prefix and checks it matches the position.
func unnumber(t *testing.T, chunks []string) []string {
	t.Helper()
	out := make([]string, len(chunks))
	for i, c := range chunks {
		prefix := fmt.Sprintf("%d/%d ", i+1, len(chunks))
		require.True(t, strings.HasPrefix(c, prefix), "chunk %d missing prefix %q: %q", i, prefix, c)
		out[i] = strings.TrimPrefix(c, prefix)
	}
	return out
}

func TestSegment_Empty(t *testing.T) {
	s := New(naiveSplit)
	for _, in := range []string{"", "   ", "\n\n\t\n"} {
		assert.Empty(t, s.Segment(in), "input %q", in)
	}
}

func TestSegment_SingleChunkIsUnprefixed(t *testing.T) {
	s := New(naiveSplit)
	assert.Equal(t, []string{"Line one sentence. Line two sentence."}, s.Segment("  Line one sentence. Line two sentence.  "))
}

func TestSegment_DefaultTokenizer(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"Line one sentence. Line two sentence."}, s.Segment("Line one sentence. Line two sentence."))
}

func TestSegment_ParagraphsJoinedByBlankLine(t *testing.T) {
	s := New(naiveSplit)
	assert.Equal(t, []string{"First point.\n\nSecond point."}, s.Segment("First point.\n\n\nSecond point.\n"))
}

func TestSegment_ManySentencesAreNumbered(t *testing.T) {
	var sentences []string
	for i := 0; i < 30; i++ {
		sentences = append(sentences, fmt.Sprintf("Sentence number %d is here.", i))
	}
	input := strings.Join(sentences, " ")

	chunks := New(naiveSplit).Segment(input)
	require.Greater(t, len(chunks), 1)

	drafts := unnumber(t, chunks)
	for _, d := range drafts {
		assert.LessOrEqual(t, utf8.RuneCountInString(d), HardLimit)
		assert.False(t, strings.HasSuffix(d, TruncationMarker), "no sentence needed cutting: %q", d)
	}
	assert.Equal(t, strings.Fields(input), strings.Fields(strings.Join(drafts, " ")))
}

func TestSegment_LongSentenceIsSplitOnWords(t *testing.T) {
	var words []string
	for i := 0; i < 100; i++ {
		words = append(words, fmt.Sprintf("word%d", i))
	}
	input := strings.Join(words, " ")

	chunks := New(naiveSplit).Segment(input)
	require.Greater(t, len(chunks), 2)

	drafts := unnumber(t, chunks)
	var recovered []string
	for i, d := range drafts {
		assert.LessOrEqual(t, utf8.RuneCountInString(d), HardLimit)
		if i < len(drafts)-1 {
			assert.True(t, strings.HasSuffix(d, TruncationMarker), "chunk %d should be marked: %q", i, d)
		}
		recovered = append(recovered, strings.TrimSuffix(d, TruncationMarker))
	}
	assert.Equal(t, words, strings.Fields(strings.Join(recovered, " ")))
}

func TestSegment_OversizedTokenIsCut(t *testing.T) {
	token := strings.Repeat("a", 600)

	drafts := unnumber(t, New(naiveSplit).Segment(token))
	require.Len(t, drafts, 3)

	var b strings.Builder
	for _, d := range drafts {
		assert.LessOrEqual(t, utf8.RuneCountInString(d), HardLimit)
		b.WriteString(strings.TrimSuffix(d, TruncationMarker))
	}
	assert.Equal(t, token, b.String())
}

func TestSegment_NumberedChunksFitHardLimit(t *testing.T) {
	var sentences []string
	for i := 0; i < 40; i++ {
		sentences = append(sentences, strings.Repeat("x", 120)+".")
	}
	words := strings.Fields(strings.Repeat("lorem ipsum dolor ", 200))

	for _, input := range []string{strings.Join(sentences, " "), strings.Join(words, " ")} {
		chunks := New(naiveSplit).Segment(input)
		require.Greater(t, len(chunks), 9)
		unnumber(t, chunks)
		for i, c := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(c), HardLimit, "chunk %d: %q", i, c)
		}
	}
}

func TestSegment_MergesLanguageTagSplits(t *testing.T) {
	split := func(string) []string {
		return []string{"Rename index.", "js to index.", "tsx and rebuild."}
	}
	assert.Equal(t, []string{"Rename index.js to index.tsx and rebuild."}, New(split).Segment("ignored"))
}

func TestSegment_IsRestartable(t *testing.T) {
	s := New(naiveSplit)
	input := strings.Repeat("This sentence repeats itself. ", 20)
	assert.Equal(t, s.Segment(input), s.Segment(input))
}
