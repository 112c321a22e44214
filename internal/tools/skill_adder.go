package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/patch"
)

const maxSkillLength = 80

// SkillAdder appends skills without case-insensitive duplicates.
type SkillAdder struct{}

func (SkillAdder) Name() string { return NameSkillAdder }

func (SkillAdder) Description() string {
	return `add skills; args {"skills": [string], "category": "technical"|"soft" (default technical)}`
}

func (SkillAdder) Validate(args Args) error {
	skills := args.Strings("skills")
	if len(skills) == 0 {
		return errors.New("skills is required")
	}
	for _, s := range skills {
		if len([]rune(s)) > maxSkillLength {
			return fmt.Errorf("skill %q is longer than %d characters", s, maxSkillLength)
		}
	}
	if _, err := skillCategory(args); err != nil {
		return err
	}
	return nil
}

func skillCategory(args Args) (string, error) {
	switch c := strings.ToLower(args.String("category")); c {
	case "", "technical", "tech", "hard":
		return "technical", nil
	case "soft":
		return "soft", nil
	default:
		return "", fmt.Errorf("category %q must be technical or soft", c)
	}
}

func (SkillAdder) Execute(_ context.Context, in Input) (Result, error) {
	category, _ := skillCategory(in.Args)
	existing := in.Document.Skills.Technical
	if category == "soft" {
		existing = in.Document.Skills.Soft
	}

	seen := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		seen[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	var added, skipped []string
	for _, s := range in.Args.Strings("skills") {
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			skipped = append(skipped, s)
			continue
		}
		seen[key] = struct{}{}
		added = append(added, s)
	}

	res := Result{Success: true}
	for _, s := range skipped {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s is already listed", s))
	}
	if len(added) == 0 {
		res.Rationale = "no new skills to add"
		return res, nil
	}
	res.Patch = patch.Patch{patch.AppendUnique("skills."+category, added...)}
	res.Rationale = fmt.Sprintf("added %s to %s skills", strings.Join(added, ", "), category)
	return res, nil
}
