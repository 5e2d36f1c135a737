package grammar

import "strings"

// RuneRange is an inclusive range of runes
type RuneRange struct {
	Lo, Hi rune
}

// CharClass is a set of runes, described by explicit runes and ranges
type CharClass struct {
	Label  string // Human-readable form used in exports, e.g. "[A-Z0-9]"
	Chars  string
	Ranges []RuneRange
	Negate bool
}

// NewClass builds a class from explicit runes and ranges.
func NewClass(label, chars string, ranges ...RuneRange) *CharClass {
	return &CharClass{Label: label, Chars: chars, Ranges: ranges}
}

// Contains reports whether r belongs to the class.
func (c *CharClass) Contains(r rune) bool {
	in := strings.ContainsRune(c.Chars, r)
	if !in {
		for _, rg := range c.Ranges {
			if r >= rg.Lo && r <= rg.Hi {
				in = true
				break
			}
		}
	}
	return in != c.Negate
}

// Negated returns the complement of the class.
func (c *CharClass) Negated() *CharClass {
	label := c.Label
	if strings.HasPrefix(label, "[") {
		label = "[^" + strings.TrimPrefix(label, "[")
	}
	return &CharClass{Label: label, Chars: c.Chars, Ranges: c.Ranges, Negate: !c.Negate}
}

var (
	rangeUpper = RuneRange{'A', 'Z'}
	rangeLower = RuneRange{'a', 'z'}
	rangeDigit = RuneRange{'0', '9'}
)

// Predefined classes shared by the built-in rules
var (
	ClassSpace     = NewClass("[ \\t]", " \t")
	ClassUpper     = NewClass("[A-Z]", "", rangeUpper)
	ClassLower     = NewClass("[a-z]", "", rangeLower)
	ClassDigit     = NewClass("[0-9]", "", rangeDigit)
	ClassAlnum     = NewClass("[A-Za-z0-9]", "", rangeUpper, rangeLower, rangeDigit)
	ClassWord      = NewClass("[A-Za-z0-9_]", "_", rangeUpper, rangeLower, rangeDigit)
	ClassShortName = NewClass("[A-Za-z0-9?@#]", "?@#", rangeUpper, rangeLower, rangeDigit)
	ClassUpperTail = NewClass("[A-Z0-9_:-]", "_:-", rangeUpper, rangeDigit)
	ClassNameTail  = NewClass("[A-Za-z0-9_.:-]", "_.:-", rangeUpper, rangeLower, rangeDigit)
)
