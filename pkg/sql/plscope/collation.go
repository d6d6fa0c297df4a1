// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

import (
	"sync"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NameComparer is the equality predicate used for variable, condition and
// cursor names.
type NameComparer interface {
	EqualNames(a, b string) bool
}

// NameComparerFunc adapts a function to the NameComparer interface.
type NameComparerFunc func(a, b string) bool

// EqualNames implements the NameComparer interface.
func (f NameComparerFunc) EqualNames(a, b string) bool { return f(a, b) }

// BinaryNames compares names byte for byte.
var BinaryNames NameComparer = NameComparerFunc(func(a, b string) bool { return a == b })

// CollationComparer compares names with a locale-aware collation.
type CollationComparer struct {
	// collate.Collator keeps internal buffers and is not safe for
	// concurrent use.
	mu       sync.Mutex
	collator *collate.Collator
	// stripAccents, if set, removes combining marks from both names before
	// they are collated. IgnoreDiacritics still leaves accents visible at
	// the tertiary level when case is significant.
	stripAccents transform.Transformer
}

var _ NameComparer = (*CollationComparer)(nil)

// NewCollationComparer returns a comparer for the given locale. Unless
// they are requested to be significant, differences in case, width and
// accents are ignored.
func NewCollationComparer(
	tag language.Tag, caseSensitive, accentSensitive bool,
) *CollationComparer {
	var opts []collate.Option
	if !caseSensitive {
		opts = append(opts, collate.IgnoreCase, collate.IgnoreWidth)
	}
	c := &CollationComparer{}
	if !accentSensitive {
		opts = append(opts, collate.IgnoreDiacritics)
		c.stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	}
	c.collator = collate.New(tag, opts...)
	return c
}

// DefaultNameComparer returns the case and accent insensitive comparer
// used when none is configured.
func DefaultNameComparer() *CollationComparer {
	return NewCollationComparer(language.Und, false /* caseSensitive */, false /* accentSensitive */)
}

// EqualNames implements the NameComparer interface.
func (c *CollationComparer) EqualNames(a, b string) bool {
	if a == b {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stripAccents != nil {
		a, b = c.strip(a), c.strip(b)
	}
	return c.collator.CompareString(a, b) == 0
}

func (c *CollationComparer) strip(s string) string {
	res, _, err := transform.String(c.stripAccents, s)
	if err != nil {
		return s
	}
	return res
}
