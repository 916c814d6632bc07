package responder

import (
	"fmt"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

const (
	undetermined      = "und"
	minDetectionRunes = 5
)

// WhatlangDetector guesses ISO 639-3 language codes with trigram statistics.
type WhatlangDetector struct{}

func (WhatlangDetector) Detect(text string) (string, string) {
	if utf8.RuneCountInString(text) < minDetectionRunes {
		return undetermined, "unknown"
	}
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6393()
	if code == "" {
		return undetermined, "unknown"
	}
	return code, info.Lang.String()
}

type languagePolicy struct {
	allow    map[string]struct{}
	disallow map[string]struct{}
}

func newLanguagePolicy(allow, disallow []string) languagePolicy {
	p := languagePolicy{allow: map[string]struct{}{}, disallow: map[string]struct{}{}}
	for _, c := range allow {
		p.allow[c] = struct{}{}
	}
	for _, c := range disallow {
		p.disallow[c] = struct{}{}
	}
	return p
}

func (p languagePolicy) allowed(code string) bool {
	_, ok := p.allow[code]
	return ok
}

func (p languagePolicy) rejected(code string) bool {
	_, ok := p.disallow[code]
	return ok
}

func unsupportedLanguageMessage(username, langName, mentionID string) string {
	greeting := "We're sorry but "
	if username != "" {
		greeting = fmt.Sprintf("Hey @%s, we're sorry but ", username)
	}
	subject := langName
	if subject == "" || subject == "unknown" {
		subject = "your prompt"
	}
	return fmt.Sprintf("%s%s is currently not supported by this chatbot. "+
		"We apologize for the inconvenience and will be adding support for more languages soon.\n\nRef: %s",
		greeting, subject, mentionID)
}

func timeoutMessage(mentionID string) string {
	return fmt.Sprintf("Uh-oh ChatGPT timed out responding to your prompt. Sorry 😓\n\nRef: %s", mentionID)
}
