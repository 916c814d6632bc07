// Package segment turns an AI response into an ordered list of tweet-sized
// chunks that keep sentences together whenever they fit.
package segment

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	logx "github.com/chatgpt-twitter-bot/server/pkg/logger"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

const (
	// SoftLimit is the buffer length past which a chunk is flushed before
	// the next sentence is considered.
	SoftLimit = 200
	// HardLimit is the maximum chunk length, numbering included.
	HardLimit = 250
	// TruncationMarker ends a chunk that had to be cut inside a sentence.
	TruncationMarker = "..."
)

// language tags the sentence detector splits away from a preceding "file."
var langTag = regexp.MustCompile(`^(js|ts|jsx|tsx)\b`)

// SentenceSplitter splits a paragraph into sentences.
type SentenceSplitter func(paragraph string) []string

// Segmenter packs sentences into chunks. The zero value is not usable; use
// New or Default.
type Segmenter struct {
	Split SentenceSplitter
	Soft  int
	Hard  int
}

var (
	defaultOnce      sync.Once
	defaultSegmenter *Segmenter
	defaultErr       error
)

// Default returns a Segmenter backed by the english punkt tokenizer.
func Default() (*Segmenter, error) {
	defaultOnce.Do(func() {
		tokenizer, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			defaultErr = fmt.Errorf("load sentence tokenizer: %w", err)
			return
		}
		defaultSegmenter = New(punktSplitter(tokenizer))
	})
	return defaultSegmenter, defaultErr
}

// New builds a Segmenter with the default limits.
func New(split SentenceSplitter) *Segmenter {
	return &Segmenter{Split: split, Soft: SoftLimit, Hard: HardLimit}
}

func punktSplitter(tokenizer *sentences.DefaultSentenceTokenizer) SentenceSplitter {
	return func(paragraph string) []string {
		var out []string
		for _, s := range tokenizer.Tokenize(paragraph) {
			if text := strings.TrimSpace(s.Text); text != "" {
				out = append(out, text)
			}
		}
		return out
	}
}

// Segment converts a response into chunks. When more than one chunk is
// produced every chunk is prefixed with "i/N " and packed so that the
// numbered chunk still fits Hard. Whitespace-only input yields no chunks.
func (s *Segmenter) Segment(response string) []string {
	drafts := s.pack(response, 0)
	// reserving room can add chunks, which can widen the prefix
	for reserve := 0; len(drafts) > 1; {
		need := prefixLen(len(drafts))
		if need <= reserve || s.Hard-need <= runeLen(TruncationMarker) {
			break
		}
		reserve = need
		drafts = s.pack(response, reserve)
	}
	return number(drafts, s.Hard)
}

func (s *Segmenter) pack(response string, reserve int) []string {
	p := &packer{soft: s.Soft - reserve, hard: s.Hard - reserve}

	for _, paragraph := range paragraphs(response) {
		for i, sentence := range mergeLanguageTags(s.Split(paragraph)) {
			sep := " "
			if i == 0 {
				sep = "\n\n"
			}
			p.add(sentence, sep)
		}
	}
	p.flush()
	return p.drafts
}

func prefixLen(n int) int {
	return runeLen(fmt.Sprintf("%d/%d ", n, n))
}

func paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// mergeLanguageTags glues "something." + "js ..." back together.
func mergeLanguageTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, sentence := range in {
		if n := len(out); n > 0 && strings.HasSuffix(out[n-1], ".") && langTag.MatchString(sentence) {
			out[n-1] += sentence
			continue
		}
		out = append(out, sentence)
	}
	return out
}

type packer struct {
	soft, hard int
	cur        string
	drafts     []string
}

func (p *packer) add(sentence, sep string) {
	for strings.TrimSpace(sentence) != "" {
		if runeLen(p.cur) > p.soft {
			p.flush()
		}

		candidate := sentence
		if p.cur != "" {
			candidate = p.cur + sep + sentence
		}
		if runeLen(candidate) <= p.hard {
			p.cur = candidate
			return
		}

		sentence = p.splitWords(sentence, sep)
	}
}

// splitWords fills the current chunk with as many words of sentence as fit,
// emits it with the truncation marker and returns the words left over.
func (p *packer) splitWords(sentence, sep string) string {
	tokens := strings.Fields(sentence)
	budget := p.hard - runeLen(TruncationMarker)
	if budget < 1 {
		budget = 1
	}

	var b strings.Builder
	if p.cur != "" {
		b.WriteString(p.cur)
		b.WriteString(sep)
	}
	used := runeLen(b.String())

	taken := 0
	for _, tok := range tokens {
		add := tok
		if taken > 0 {
			add = " " + tok
		}
		if used+runeLen(add) > budget {
			break
		}
		b.WriteString(add)
		used += runeLen(add)
		taken++
	}

	switch {
	case taken == len(tokens):
		// collapsing whitespace was enough
		p.cur = strings.TrimSpace(b.String())
		return ""
	case taken == 0 && p.cur != "":
		p.flush()
		return sentence
	case taken == 0:
		head, tail := cutRunes(tokens[0], budget)
		p.emit(head + TruncationMarker)
		return strings.Join(append([]string{tail}, tokens[1:]...), " ")
	}

	p.emit(strings.TrimSpace(b.String()) + TruncationMarker)
	p.cur = ""
	return strings.Join(tokens[taken:], " ")
}

func (p *packer) flush() {
	p.emit(p.cur)
	p.cur = ""
}

func (p *packer) emit(chunk string) {
	if chunk = strings.TrimSpace(chunk); chunk != "" {
		p.drafts = append(p.drafts, chunk)
	}
}

func number(drafts []string, hard int) []string {
	if len(drafts) <= 1 {
		return drafts
	}
	out := make([]string, len(drafts))
	for i, d := range drafts {
		out[i] = fmt.Sprintf("%d/%d %s", i+1, len(drafts), d)
		if runeLen(out[i]) > hard {
			logx.Warn().Int("index", i+1).Int("length", runeLen(out[i])).Msg("chunk exceeds tweet length")
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func cutRunes(s string, n int) (string, string) {
	r := []rune(s)
	if len(r) <= n {
		return s, ""
	}
	return string(r[:n]), string(r[n:])
}
