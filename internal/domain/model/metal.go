package model

import (
	"strings"
	"unicode"
)

type MetalGrade string

const (
	Grade14KT MetalGrade = "14KT"
	Grade18KT MetalGrade = "18KT"
)

// ParseMetalGrade normalizes storefront option values such as "14 KT" or "18kt".
// Anything else is returned normalized but unrecognized.
func ParseMetalGrade(value string) MetalGrade {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return MetalGrade(b.String())
}

func (g MetalGrade) Recognized() bool {
	return g == Grade14KT || g == Grade18KT
}

func (g MetalGrade) String() string {
	if g == "" {
		return "unrecognized"
	}
	return string(g)
}
