package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/design"
)

// ColorCustomizer turns color phrases into validated hex values. Input that
// does not parse exactly is rejected, never approximated.
type ColorCustomizer struct{}

func (ColorCustomizer) Name() string { return NameColorCustomizer }

func (ColorCustomizer) Description() string {
	return `change template colors; args {"colors": {"primary|accent|text|background|headings": "<named color, #rgb, #rrggbb or rgb(r,g,b)>"}} or {"target": ..., "color": ...}`
}

func colorArgs(args Args) map[string]string {
	colors := args.Map("colors")
	if c := args.String("color"); c != "" {
		colors[args.String("target")] = c
	}
	return colors
}

func (ColorCustomizer) Validate(args Args) error {
	_, err := design.NormalizeColors(colorArgs(args))
	return err
}

func (ColorCustomizer) Execute(_ context.Context, in Input) (Result, error) {
	colors, err := design.NormalizeColors(colorArgs(in.Args))
	if err != nil {
		return Result{}, err
	}
	targets := make([]string, 0, len(colors))
	for t := range colors {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	parts := make([]string, 0, len(targets))
	for _, t := range targets {
		parts = append(parts, fmt.Sprintf("%s to %s", t, colors[t]))
	}
	return Result{
		Success:   true,
		Rationale: "set " + strings.Join(parts, ", "),
		Design:    &DesignChange{Colors: colors},
	}, nil
}
