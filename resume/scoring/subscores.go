package scoring

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const neutralScore = 50

func ratioScore(matched, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(matched) / float64(total)))
}

func missingKeywords(in input) []string {
	var out []string
	for _, k := range in.keywords {
		if !containsFold(in.lower, k) {
			out = append(out, k)
		}
	}
	return out
}

func keywordExactScore(in input) int {
	if in.empty() {
		return 0
	}
	if len(in.keywords) == 0 {
		return neutralScore
	}
	return ratioScore(len(in.keywords)-len(missingKeywords(in)), len(in.keywords))
}

func missingPhrases(in input) []string {
	var out []string
	for _, p := range in.phrases {
		if !containsWord(in.lower, p) {
			out = append(out, p)
		}
	}
	return out
}

func keywordPhraseScore(in input) int {
	if in.empty() {
		return 0
	}
	if len(in.phrases) > 0 {
		return ratioScore(len(in.phrases)-len(missingPhrases(in)), len(in.phrases))
	}
	if len(in.keywords) == 0 {
		return neutralScore
	}
	matched := 0
	for _, k := range in.keywords {
		if containsWord(in.lower, k) {
			matched++
		}
	}
	return ratioScore(matched, len(in.keywords))
}

// semanticRelevanceScore is the cosine similarity of stemmed term
// frequencies, scaled so a typical strong match (~0.65) reaches 100.
func semanticRelevanceScore(in input) int {
	if in.empty() {
		return 0
	}
	if len(in.jobTerms) == 0 {
		return neutralScore
	}
	var dot, jobNorm, textNorm float64
	for _, term := range sortedKeys(in.jobTerms) {
		jf := in.jobTerms[term]
		jobNorm += jf * jf
		dot += jf * in.textTerms[term]
	}
	for _, term := range sortedKeys(in.textTerms) {
		tf := in.textTerms[term]
		textNorm += tf * tf
	}
	if jobNorm == 0 || textNorm == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(jobNorm) * math.Sqrt(textNorm))
	return int(math.Round(math.Min(1, cos*1.5) * 100))
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type titleCandidate struct {
	text   string
	weight float64
}

func titleCandidates(in input) []titleCandidate {
	if in.doc != nil {
		out := []titleCandidate{{text: in.doc.Contact.Headline, weight: 1}}
		for i, exp := range in.doc.Experience {
			weight := 0.8
			if i == 0 {
				weight = 1
			}
			out = append(out, titleCandidate{text: exp.Title, weight: weight})
		}
		return out
	}
	var out []titleCandidate
	for i, line := range in.lines {
		if i >= 5 {
			break
		}
		out = append(out, titleCandidate{text: line, weight: 1})
	}
	return append(out, titleCandidate{text: in.text, weight: 0.7})
}

func titleAlignmentScore(in input) int {
	if in.empty() {
		return 0
	}
	jobTitle := uniqueTerms(contentTerms(in.job.Title))
	if len(jobTitle) == 0 {
		return neutralScore
	}
	best := 0.0
	for _, cand := range titleCandidates(in) {
		terms := termFrequencies(contentTerms(cand.text))
		if len(terms) == 0 {
			continue
		}
		hits := 0
		for _, t := range jobTitle {
			if terms[t] > 0 {
				hits++
			}
		}
		overlap := cand.weight * float64(hits) / float64(len(jobTitle))
		if overlap > best {
			best = overlap
		}
	}
	return int(math.Round(best * 100))
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

type bullet struct {
	text   string
	target string
}

func bullets(in input) []bullet {
	var out []bullet
	if in.doc != nil {
		for _, ref := range in.doc.Achievements() {
			if strings.TrimSpace(ref.Text) == "" {
				continue
			}
			out = append(out, bullet{
				text:   ref.Text,
				target: "experience[" + strconv.Itoa(ref.ExperienceIndex) + "].achievements[" + strconv.Itoa(ref.Index) + "]",
			})
		}
		return out
	}
	for _, line := range in.lines {
		if len(strings.Fields(line)) >= 5 {
			out = append(out, bullet{text: line})
		}
	}
	return out
}

// metricsPresenceScore reaches 100 when at least 60% of bullets carry a number.
func metricsPresenceScore(in input) int {
	items := bullets(in)
	if len(items) == 0 {
		return 0
	}
	withMetric := 0
	for _, b := range items {
		if hasMetric(b.text) {
			withMetric++
		}
	}
	ratio := float64(withMetric) / float64(len(items))
	return int(math.Round(math.Min(1, ratio/0.6) * 100))
}

type sectionCheck struct {
	name    string
	points  int
	present bool
	partial int
}

func sectionChecks(in input) []sectionCheck {
	if in.doc != nil {
		d := in.doc
		experience := sectionCheck{name: "experience", points: 30, present: len(d.Experience) > 0}
		if experience.present && len(d.Achievements()) == 0 {
			experience.partial = 20
		}
		return []sectionCheck{
			experience,
			{name: "skills", points: 20, present: len(d.AllSkills()) > 0},
			{name: "summary", points: 15, present: strings.TrimSpace(d.Summary) != ""},
			{name: "education", points: 15, present: len(d.Education) > 0},
			{name: "contact", points: 20, present: strings.TrimSpace(d.Contact.Name) != "" &&
				(strings.TrimSpace(d.Contact.Email) != "" || strings.TrimSpace(d.Contact.Phone) != "")},
		}
	}
	hasHeading := func(words ...string) bool {
		for _, w := range words {
			if containsWord(in.lower, w) {
				return true
			}
		}
		return false
	}
	return []sectionCheck{
		{name: "experience", points: 30, present: hasHeading("experience", "employment", "work history")},
		{name: "skills", points: 20, present: hasHeading("skills", "technologies")},
		{name: "summary", points: 15, present: hasHeading("summary", "profile", "about me")},
		{name: "education", points: 15, present: hasHeading("education", "degree", "university")},
		{name: "contact", points: 20, present: emailPattern.MatchString(in.text) || phonePattern.MatchString(in.text)},
	}
}

func sectionCompletenessScore(in input) int {
	if in.empty() {
		return 0
	}
	score := 0
	for _, c := range sectionChecks(in) {
		switch {
		case c.present && c.partial > 0:
			score += c.partial
		case c.present:
			score += c.points
		}
	}
	return score
}

type formatIssue struct {
	id      string
	text    string
	penalty int
	target  string
}

var decorativeRunes = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2500, Hi: 0x27bf, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f300, Hi: 0x1faff, Stride: 1},
	},
}

var tableLine = regexp.MustCompile(`\|.*\|.*\||\t.*\t`)

func formatIssues(in input) []formatIssue {
	var issues []formatIssue
	for _, r := range in.text {
		if unicode.Is(decorativeRunes, r) {
			issues = append(issues, formatIssue{id: "decorative-symbols", text: "Remove decorative symbols and icons; ATS parsers drop or garble them", penalty: 10})
			break
		}
	}
	if in.doc == nil {
		for _, line := range strings.Split(in.text, "\n") {
			if tableLine.MatchString(line) {
				issues = append(issues, formatIssue{id: "tables", text: "Replace tables and multi-column layouts with plain sections", penalty: 15})
				break
			}
		}
		if !emailPattern.MatchString(in.text) {
			issues = append(issues, formatIssue{id: "email", text: "Add an email address in plain text", penalty: 10})
		}
		return issues
	}

	d := in.doc
	if in.validation != nil {
		issues = append(issues, formatIssue{id: "field-format", text: "Fix field formatting: " + in.validation.Error(), penalty: 20})
	}
	if strings.TrimSpace(d.Contact.Email) == "" {
		issues = append(issues, formatIssue{id: "email", text: "Add an email address to your contact details", penalty: 10, target: "contact.email"})
	}
	missingDates := 0
	for i, exp := range d.Experience {
		if strings.TrimSpace(exp.Start) != "" {
			continue
		}
		if missingDates == 3 {
			break
		}
		missingDates++
		issues = append(issues, formatIssue{
			id:      "dates-" + strconv.Itoa(i),
			text:    "Add start and end dates to " + describeRole(exp.Title, exp.Company),
			penalty: 5,
			target:  "experience[" + strconv.Itoa(i) + "]",
		})
	}
	longBullets := 0
	for _, b := range bullets(in) {
		if len([]rune(b.text)) <= 300 {
			continue
		}
		if longBullets == 3 {
			break
		}
		longBullets++
		issues = append(issues, formatIssue{id: "long-" + slugify(b.target), text: "Split or shorten this achievement: \"" + truncate(b.text, 60) + "\"", penalty: 5, target: b.target})
	}
	if len([]rune(d.Summary)) > 800 {
		issues = append(issues, formatIssue{id: "long-summary", text: "Trim your summary to a few sentences", penalty: 10, target: "summary"})
	}
	return issues
}

func describeRole(title, company string) string {
	title, company = strings.TrimSpace(title), strings.TrimSpace(company)
	switch {
	case title != "" && company != "":
		return title + " at " + company
	case title != "":
		return title
	case company != "":
		return "your role at " + company
	default:
		return "this role"
	}
}

func formatParseabilityScore(in input) int {
	if in.empty() {
		return 0
	}
	score := 100
	for _, issue := range formatIssues(in) {
		score -= issue.penalty
	}
	return score
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// parseResumeDate reads YYYY, YYYY-MM or Present.
func parseResumeDate(value string, now time.Time) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if strings.EqualFold(value, "present") || strings.EqualFold(value, "current") {
		return now, true
	}
	if t, err := time.Parse("2006-01", value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006", value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// mostRecentRole returns the index of the role with the latest end (or start)
// date and that date. ok is false when no role carries a usable date.
func mostRecentRole(in input) (int, time.Time, bool) {
	best, bestAt, found := -1, time.Time{}, false
	for i, exp := range in.doc.Experience {
		at, ok := parseResumeDate(exp.End, in.now)
		if !ok {
			at, ok = parseResumeDate(exp.Start, in.now)
		}
		if !ok {
			continue
		}
		if !found || at.After(bestAt) {
			best, bestAt, found = i, at, true
		}
	}
	return best, bestAt, found
}

func recencyBase(at, now time.Time) int {
	years := now.Sub(at).Hours() / (24 * 365)
	switch {
	case years <= 2:
		return 100
	case years <= 5:
		return 70
	default:
		return 40
	}
}

func recentRoleCoverage(in input, idx int) (float64, []string) {
	if len(in.keywords) == 0 || idx < 0 {
		return 1, nil
	}
	exp := in.doc.Experience[idx]
	roleText := normalizeSpace(exp.Title + " " + strings.Join(exp.Achievements, " "))
	var missing []string
	for _, k := range in.keywords {
		if !containsFold(roleText, k) {
			missing = append(missing, k)
		}
	}
	return float64(len(in.keywords)-len(missing)) / float64(len(in.keywords)), missing
}

func recencyFitScore(in input) int {
	if in.empty() {
		return 0
	}
	if in.doc == nil {
		if containsWord(in.lower, "present") || containsWord(in.lower, "current") {
			return 100
		}
		latest := 0
		for _, y := range yearPattern.FindAllString(in.text, -1) {
			if v, err := strconv.Atoi(y); err == nil && v > latest {
				latest = v
			}
		}
		if latest == 0 {
			return neutralScore
		}
		return recencyBase(time.Date(latest, time.December, 31, 0, 0, 0, 0, time.UTC), in.now)
	}
	if len(in.doc.Experience) == 0 {
		return 0
	}
	idx, at, ok := mostRecentRole(in)
	base := neutralScore
	if ok {
		base = recencyBase(at, in.now)
	} else {
		idx = 0
	}
	coverage, _ := recentRoleCoverage(in, idx)
	if len(in.keywords) == 0 {
		return base
	}
	return int(math.Round(0.6*float64(base) + 0.4*100*coverage))
}
