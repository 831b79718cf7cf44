package model

import "sort"

// Handling options for normalization categories (URLs, usernames, numbers,
// hashtags, emoji).
const (
	OptionNone   = "none"
	OptionDelete = "delete"
	OptionGroup  = "group"
)

// Boundary is the synthetic marker wrapped around words so q-grams can tell
// word-edge material from word-internal material.
const Boundary = '~'

// QGramPrefix marks q-gram tokens in their persisted form.
const QGramPrefix = "q:"

// Params is the base-tokenizer configuration record persisted with every
// vocabulary. TokenList selects the produced candidate kinds: -1 means whole
// words, a positive n means q-grams of exactly n runes.
type Params struct {
	Lang             string `json:"lang"`
	SizeExponent     int    `json:"voc_size_exponent"`
	TokenList        []int  `json:"token_list"`
	Lowercase        bool   `json:"lc"`
	StripDiacritics  bool   `json:"del_diac"`
	StripPunctuation bool   `json:"del_punc"`
	CollapseRepeats  bool   `json:"del_dup"`
	CollapseLaughter bool   `json:"norm_laughter"`
	URLOption        string `json:"url_option"`
	UserOption       string `json:"usr_option"`
	NumOption        string `json:"num_option"`
	HashtagOption    string `json:"hashtag_option"`
	EmoOption        string `json:"emo_option"`
}

// DefaultParams returns the standard configuration for lang. Chinese and
// Japanese corpora use short q-grams only; every other language mixes whole
// words with q-grams of length 2 through 8.
func DefaultParams(lang string) Params {
	p := Params{
		Lang:             lang,
		SizeExponent:     13,
		TokenList:        []int{-1, 2, 3, 4, 5, 6, 7, 8},
		Lowercase:        true,
		StripDiacritics:  true,
		StripPunctuation: true,
		CollapseLaughter: true,
		URLOption:        OptionDelete,
		UserOption:       OptionDelete,
		NumOption:        OptionNone,
		HashtagOption:    OptionNone,
		EmoOption:        OptionNone,
	}
	switch lang {
	case "zh", "ja":
		p.TokenList = []int{1, 2, 3}
	}
	return p
}

// QGramLengths returns the configured q-gram lengths, longest first.
func (p Params) QGramLengths() []int {
	var lengths []int
	for _, n := range p.TokenList {
		if n > 0 {
			lengths = append(lengths, n)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))
	return lengths
}

// HasWords reports whether whole words are produced alongside q-grams.
func (p Params) HasWords() bool {
	for _, n := range p.TokenList {
		if n == -1 {
			return true
		}
	}
	return false
}
