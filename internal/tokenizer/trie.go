package tokenizer

import "github.com/crimson-sun/subtext/internal/model"

// Span is one half-open segment [Start, End) in rune offsets over the
// normalized text.
type Span struct {
	Start, End int
}

// trie is a rune-keyed prefix tree over registered surface forms. Terminal
// nodes carry the canonical label of the surface ending there. Built once
// per vocabulary and read-only afterwards.
type trie struct {
	children map[rune]*trie
	label    string
	terminal bool
}

func newTrie() *trie {
	return &trie{children: make(map[rune]*trie)}
}

// insert registers surface → label. When overwrite is false an existing
// terminal keeps its original label.
func (t *trie) insert(surface, label string, overwrite bool) {
	node := t
	for _, r := range surface {
		child := node.children[r]
		if child == nil {
			child = newTrie()
			node.children[r] = child
		}
		node = child
	}
	if node.terminal && !overwrite {
		return
	}
	node.terminal = true
	node.label = label
}

// segment runs the greedy longest-match automaton over text. Three cursors
// init ≤ end ≤ i track the current attempt: end marks the longest terminal
// seen since init, and on a dead edge the captured span is emitted. A span
// of two or more runes ending in the boundary marker re-admits the marker as
// the start of the next attempt, so adjacent q-grams share a boundary; the
// same rule applies when consumed runes never reached a terminal. A dead
// edge on the very first rune skips it. Unmatched runes produce no span.
func (t *trie) segment(text []rune) []Span {
	var blocks []Span
	init, end, i := 0, 0, 0
	node := t
	for i < len(text) {
		if child, ok := node.children[text[i]]; ok {
			node = child
			i++
			if node.terminal {
				end = i
			}
			continue
		}
		node = t
		switch {
		case end > init:
			blocks = append(blocks, Span{init, end})
			if end-init >= 2 && text[end-1] == model.Boundary {
				end--
			}
			init, i = end, end
		case i > init:
			if i-init >= 2 && text[i-1] == model.Boundary {
				i--
			}
			init, end = i, i
		default:
			init++
			i, end = init, init
		}
	}
	if end > init {
		blocks = append(blocks, Span{init, end})
	}
	return blocks
}
