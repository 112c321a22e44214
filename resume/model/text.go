package model

import "strings"

// Text flattens the document into plain text in reading order. Scoring and
// language detection operate on this view.
func (d Document) Text() string {
	var b strings.Builder
	write := func(values ...string) {
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(v)
		}
	}

	write(d.Contact.Name, d.Contact.Headline, d.Contact.Location)
	write(d.Summary)
	write(d.Skills.Technical...)
	write(d.Skills.Soft...)
	for _, exp := range d.Experience {
		write(exp.Title, exp.Company)
		write(exp.Achievements...)
	}
	for _, edu := range d.Education {
		write(edu.Degree, edu.Field, edu.Institution)
	}
	write(d.Certifications...)
	write(d.Languages...)
	return b.String()
}

// AllSkills returns technical followed by soft skills.
func (d Document) AllSkills() []string {
	out := make([]string, 0, len(d.Skills.Technical)+len(d.Skills.Soft))
	out = append(out, d.Skills.Technical...)
	out = append(out, d.Skills.Soft...)
	return out
}

// Achievements returns every achievement bullet with its experience index.
func (d Document) Achievements() []AchievementRef {
	var out []AchievementRef
	for i, exp := range d.Experience {
		for j, a := range exp.Achievements {
			out = append(out, AchievementRef{ExperienceIndex: i, Index: j, Text: a})
		}
	}
	return out
}

// AchievementRef points at a single achievement bullet.
type AchievementRef struct {
	ExperienceIndex int
	Index           int
	Text            string
}
