package tokenizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/crimson-sun/subtext/internal/model"
)

var (
	reURL     = regexp.MustCompile(`(?:https?://|www\.)\S+`)
	reUser    = regexp.MustCompile(`@[A-Za-z0-9_]+`)
	reHashtag = regexp.MustCompile(`#[^\s#]+`)
	reNumber  = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
)

// Normalize rewrites text into the boundary-joined form every tokenizer
// operates on: handling options applied, words lowercased and stripped per
// the params, known symbols isolated as standalone words, and the result
// joined as "~word~word~…~". An empty word list yields a bare marker.
func Normalize(text string, p model.Params) string {
	if p.Lowercase {
		text = strings.ToLower(text)
	}
	text = applyOption(text, reURL, p.URLOption, "_url")
	text = applyOption(text, reUser, p.UserOption, "_usr")
	text = applyOption(text, reHashtag, p.HashtagOption, "_htag")
	text = applyOption(text, reNumber, p.NumOption, "_num")
	if p.StripDiacritics {
		text = stripDiacritics(text)
	}

	words := splitWords(text, p)
	if p.CollapseLaughter {
		for i, w := range words {
			words[i] = collapseLaughter(w)
		}
	}
	if len(words) == 0 {
		return string(model.Boundary)
	}
	marker := string(model.Boundary)
	return marker + strings.Join(words, marker) + marker
}

// applyOption deletes or group-replaces every match of re according to opt.
func applyOption(text string, re *regexp.Regexp, opt, group string) string {
	switch opt {
	case model.OptionDelete:
		return re.ReplaceAllString(text, " ")
	case model.OptionGroup:
		return re.ReplaceAllString(text, " "+group+" ")
	}
	return text
}

// stripDiacritics removes combining marks after canonical decomposition, so
// "día" becomes "dia".
func stripDiacritics(text string) string {
	decomposed := norm.NFD.String(text)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitWords walks the cleaned text once, breaking words on whitespace,
// isolating known symbols, and dropping punctuation, joiners and the
// boundary marker itself per the params.
func splitWords(text string, p model.Params) []string {
	var words []string
	var word []rune
	flush := func() {
		if len(word) > 0 {
			words = append(words, string(word))
			word = word[:0]
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case r == '\u200d', r == '\ufe0e', r == '\ufe0f':
			// zero-width joiner and variation selectors
		case isSymbol(r):
			flush()
			switch p.EmoOption {
			case model.OptionDelete:
			case model.OptionGroup:
				words = append(words, "_emo")
			default:
				words = append(words, defaultSymbols[r])
			}
		case r == model.Boundary:
			// a literal marker in the input would forge word boundaries
		case r == '_':
			// kept so group tokens such as _url survive punctuation removal
			word = append(word, r)
		case p.StripPunctuation && (unicode.IsPunct(r) || unicode.IsSymbol(r)):
		case p.CollapseRepeats && len(word) > 0 && word[len(word)-1] == r:
		default:
			word = append(word, r)
		}
	}
	flush()
	return words
}

// collapseLaughter reduces repeated laughter syllables ("jajaja", "jejeje",
// "hahaha") to their two-letter base. Words that are not a clean repetition
// of one consonant-vowel laughter unit are returned unchanged.
func collapseLaughter(word string) string {
	runes := []rune(word)
	if len(runes) < 4 {
		return word
	}
	c, v := runes[0], runes[1]
	if c != 'j' && c != 'h' {
		return word
	}
	switch v {
	case 'a', 'e', 'i', 'o', 'u':
	default:
		return word
	}
	for i, r := range runes {
		want := c
		if i%2 == 1 {
			want = v
		}
		if r != want {
			return word
		}
	}
	return string([]rune{c, v})
}
