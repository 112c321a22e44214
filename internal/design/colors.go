package design

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Color targets a customization can change.
const (
	TargetPrimary    = "primary"
	TargetAccent     = "accent"
	TargetText       = "text"
	TargetBackground = "background"
	TargetHeadings   = "headings"
)

// Targets lists every color target.
var Targets = []string{TargetPrimary, TargetAccent, TargetText, TargetBackground, TargetHeadings}

var targetAliases = map[string]string{
	"primary":    TargetPrimary,
	"main":       TargetPrimary,
	"theme":      TargetPrimary,
	"accent":     TargetAccent,
	"highlight":  TargetAccent,
	"text":       TargetText,
	"font":       TargetText,
	"body":       TargetText,
	"background": TargetBackground,
	"bg":         TargetBackground,
	"page":       TargetBackground,
	"heading":    TargetHeadings,
	"headings":   TargetHeadings,
	"header":     TargetHeadings,
	"headers":    TargetHeadings,
	"title":      TargetHeadings,
	"titles":     TargetHeadings,
}

// namedColors maps accepted color names to their hex value.
var namedColors = map[string]string{
	"black":      "#000000",
	"white":      "#ffffff",
	"red":        "#ff0000",
	"green":      "#008000",
	"blue":       "#0000ff",
	"navy":       "#000080",
	"teal":       "#008080",
	"purple":     "#800080",
	"orange":     "#ffa500",
	"yellow":     "#ffff00",
	"gray":       "#808080",
	"grey":       "#808080",
	"charcoal":   "#36454f",
	"maroon":     "#800000",
	"olive":      "#808000",
	"pink":       "#ffc0cb",
	"gold":       "#ffd700",
	"silver":     "#c0c0c0",
	"beige":      "#f5f5dc",
	"brown":      "#a52a2a",
	"cyan":       "#00ffff",
	"magenta":    "#ff00ff",
	"indigo":     "#4b0082",
	"turquoise":  "#40e0d0",
	"burgundy":   "#800020",
	"dark blue":  "#00008b",
	"light blue": "#add8e6",
	"dark green": "#006400",
	"light gray": "#d3d3d3",
	"light grey": "#d3d3d3",
	"dark gray":  "#a9a9a9",
	"dark grey":  "#a9a9a9",
}

var (
	hexPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	rgbPattern = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)
)

// ParseColor converts a color phrase into lowercase #rrggbb. It accepts a
// named color, #rgb, #rrggbb or rgb(r, g, b) and never guesses.
func ParseColor(input string) (string, error) {
	value := strings.ToLower(strings.Join(strings.Fields(input), " "))
	if value == "" {
		return "", fmt.Errorf("%w: empty color", ErrInvalidColor)
	}
	if hex, ok := namedColors[value]; ok {
		return hex, nil
	}
	if m := hexPattern.FindStringSubmatch(value); m != nil {
		digits := m[1]
		if len(digits) == 3 {
			digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
		}
		return "#" + digits, nil
	}
	if m := rgbPattern.FindStringSubmatch(value); m != nil {
		var b strings.Builder
		b.WriteByte('#')
		for _, part := range m[1:] {
			n, err := strconv.Atoi(part)
			if err != nil || n > 255 {
				return "", fmt.Errorf("%w: %q has a channel outside 0-255", ErrInvalidColor, input)
			}
			fmt.Fprintf(&b, "%02x", n)
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidColor, input)
}

// ParseTarget resolves a target name or alias.
func ParseTarget(input string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(input))
	if value == "" {
		return TargetPrimary, nil
	}
	if t, ok := targetAliases[value]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTarget, input)
}

// IsColorName reports whether name is in the named color table.
func IsColorName(name string) bool {
	_, ok := namedColors[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// ColorNames returns the accepted color names, longest first so multi-word
// names match before their suffixes.
func ColorNames() []string {
	out := make([]string, 0, len(namedColors))
	for name := range namedColors {
		out = append(out, name)
	}
	sortLongestFirst(out)
	return out
}

// TargetAliases returns every accepted target word, longest first.
func TargetAliases() []string {
	out := make([]string, 0, len(targetAliases))
	for alias := range targetAliases {
		out = append(out, alias)
	}
	sortLongestFirst(out)
	return out
}
