package bayes

import (
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FeatureVector maps feature indices to counts.
type FeatureVector map[int]float64

// Alphabet assigns stable indices to entries in insertion order.
type Alphabet struct {
	Index   map[string]int
	Entries []string
}

// NewAlphabet creates an empty alphabet, optionally seeded with entries.
func NewAlphabet(entries ...string) *Alphabet {
	a := &Alphabet{Index: make(map[string]int)}
	for _, e := range entries {
		a.Lookup(e, true)
	}
	return a
}

// Lookup returns the index of entry, adding it when grow is set.
func (a *Alphabet) Lookup(entry string, grow bool) (int, bool) {
	if i, ok := a.Index[entry]; ok {
		return i, true
	}
	if !grow {
		return -1, false
	}
	if a.Index == nil {
		a.Index = make(map[string]int)
	}
	i := len(a.Entries)
	a.Index[entry] = i
	a.Entries = append(a.Entries, entry)
	return i, true
}

// Size returns the number of entries.
func (a *Alphabet) Size() int {
	return len(a.Entries)
}

// Entry returns the entry at index i.
func (a *Alphabet) Entry(i int) string {
	return a.Entries[i]
}

// Clone returns a deep copy.
func (a *Alphabet) Clone() *Alphabet {
	return &Alphabet{Index: maps.Clone(a.Index), Entries: slices.Clone(a.Entries)}
}

// Pipeline lowercases and tokenizes documents and maps tokens to features.
type Pipeline struct {
	MinTokenLength int
	StopWords      map[string]bool
	Alphabet       *Alphabet
}

// NewPipeline creates a pipeline with an empty feature alphabet.
func NewPipeline(minTokenLength int, stopWords []string) *Pipeline {
	p := &Pipeline{
		MinTokenLength: minTokenLength,
		StopWords:      make(map[string]bool, len(stopWords)),
		Alphabet:       NewAlphabet(),
	}
	for _, w := range stopWords {
		p.StopWords[strings.ToLower(w)] = true
	}
	return p
}

// FeatureCount returns the size of the feature alphabet.
func (p *Pipeline) FeatureCount() int {
	if p.Alphabet == nil {
		return 0
	}
	return p.Alphabet.Size()
}

// Tokens splits text into normalized tokens.
func (p *Pipeline) Tokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < p.MinTokenLength || p.StopWords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Process converts text to features, adding unseen tokens to the alphabet.
func (p *Pipeline) Process(text string) FeatureVector {
	if p.Alphabet == nil {
		p.Alphabet = NewAlphabet()
	}
	return p.vectorize(text, true)
}

// Features converts text to features without growing the alphabet.
// Unknown tokens are dropped.
func (p *Pipeline) Features(text string) FeatureVector {
	if p.Alphabet == nil {
		return FeatureVector{}
	}
	return p.vectorize(text, false)
}

func (p *Pipeline) vectorize(text string, grow bool) FeatureVector {
	fv := FeatureVector{}
	for _, tok := range p.Tokens(text) {
		if i, ok := p.Alphabet.Lookup(tok, grow); ok {
			fv[i]++
		}
	}
	return fv
}

// Clone returns a deep copy.
func (p *Pipeline) Clone() *Pipeline {
	c := &Pipeline{MinTokenLength: p.MinTokenLength, StopWords: maps.Clone(p.StopWords)}
	if p.Alphabet != nil {
		c.Alphabet = p.Alphabet.Clone()
	} else {
		c.Alphabet = NewAlphabet()
	}
	return c
}
