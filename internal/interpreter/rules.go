package interpreter

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/design"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/tools"
)

const (
	ruleConfidence      = 0.95
	scoreRuleConfidence = 0.9
)

type rule struct {
	name  string
	match func(segment string, req Request) ([]Intent, bool)
}

// rules run in order; the first match wins for a segment.
var rules = []rule{
	{"apply_all", matchApplyAll},
	{"apply_tips", matchApplyTips},
	{"add_skills", matchAddSkills},
	{"rewrite", matchRewrite},
	{"template", matchTemplate},
	{"colors", matchColors},
	{"score", matchScore},
}

var (
	applyAllPattern   = regexp.MustCompile(`(?i)\bapply\s+(?:all\s+(?:the\s+)?)?(quick[\s-]?wins|all\s+(?:tips|suggestions))\b`)
	tipListPattern    = regexp.MustCompile(`(?i)\b(?:tips?|suggestions?|recommendations?)\s*((?:#?\s*\d+)(?:\s*(?:,|and|&|\+)\s*#?\s*\d+)*)`)
	suggestionIDRegex = regexp.MustCompile(`(?i)\bapply\s+(?:(?:the\s+)?(?:suggestion|tip)\s+)?((?:kw|phrase|semantic|title|metrics|section|format|recency)-[a-z0-9-]+)`)
	numberPattern     = regexp.MustCompile(`\d+`)

	addSkillsPattern = regexp.MustCompile(`(?i)^(?:please\s+)?add\s+(.+?)\s+(?:to|in|into|under)\s+(?:my\s+|the\s+)?(?:(technical|tech|hard|soft)\s+)?skills?(?:\s+(?:section|list))?$`)
	addSkillsColon   = regexp.MustCompile(`(?i)^(?:please\s+)?add\s+(?:(technical|tech|hard|soft)\s+)?skills?\s*:?\s+(.+)$`)
	listSplitPattern = regexp.MustCompile(`(?i)\s*(?:,|;|&|\band\b)\s*`)

	rewriteVerb        = `(?:rewrite|improve|rephrase|polish|tighten|strengthen|enhance|shorten)`
	rewriteAchievement = regexp.MustCompile(`(?i)\b` + rewriteVerb + `\s+(?:the\s+)?(?:achievement|bullet|point)\s+#?(\d+)\s+(?:of|in|for|from)\s+(?:my\s+|the\s+)?(?:job|role|experience|position)\s+#?(\d+)`)
	rewriteExperience  = regexp.MustCompile(`(?i)\b` + rewriteVerb + `\s+(?:my\s+|the\s+)?(?:job|role|experience|position)\s+#?(\d+)`)
	rewriteSummary     = regexp.MustCompile(`(?i)\b` + rewriteVerb + `\s+(?:my\s+|the\s+)?(summary|profile|about(?:\s+me)?|headline)\b`)

	templatePattern  = regexp.MustCompile(`(?i)\b(?:use|switch\s+to|apply|change\s+to|set)\s+(?:the\s+|a\s+)?(classic|modern|minimal|executive|technical|creative)\s+(?:template|design|layout|theme)\b`)
	recommendPattern = regexp.MustCompile(`(?i)\b(?:recommend|suggest|which|best|pick|choose)\b.*\b(?:template|design|layout|theme)s?\b`)
	applyWordPattern = regexp.MustCompile(`(?i)\b(?:apply|use|switch|set)\s+it\b|\band\s+(?:apply|use|switch)\b`)

	hexColorPattern = regexp.MustCompile(`#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`)
	rgbColorPattern = regexp.MustCompile(`(?i)rgb\s*\([^)]*\)`)
	colorWord       = regexp.MustCompile(`(?i)\bcolou?rs?\b`)
	toValuePattern  = regexp.MustCompile(`(?i)\bto\s+(.+)$`)
	clauseSplit     = regexp.MustCompile(`(?i)\s*(?:,|\band\b)\s*`)

	scorePattern = regexp.MustCompile(`(?i)^(?:please\s+)?(?:score|rate|grade|evaluate)\b|` +
		`\b(?:score|rate|grade|evaluate|check)\s+(?:it|this|me|my\s+(?:resume|cv)|the\s+(?:resume|cv))\b|` +
		`\bats\s+(?:score|check|match|rating)\b|` +
		`\bhow\s+(?:well|good)\b.*\b(?:match(?:es)?|fit|fits|score|scores|rank|ranks)\b|` +
		`\b(?:what(?:'s|\s+is)\s+my|my\s+current|get\s+(?:a|my))\s+(?:ats\s+)?score\b|` +
		`\bmatch(?:es)?\s+(?:the|this|that)\s+(?:job|role|posting|position|description)\b`)

	// namedColorShape accepts a bare color name only in a "make the headings
	// navy" or "accent teal" clause; "title" needs an explicit color word.
	namedColorShape = regexp.MustCompile(`(?i)^(?:please\s+)?(?:(?:make|set|change|paint|turn|colou?r)\s+)?(?:the\s+|my\s+)?(?:` +
		alternation(design.TargetAliases(), "title", "titles") + `)\s+(?:(?:to|into|in)\s+)?(?:` +
		alternation(design.ColorNames()) + `)$`)
)

func alternation(words []string, skip ...string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if slices.Contains(skip, w) {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return strings.Join(quoted, "|")
}

func resolved(tool string, args tools.Args, confidence float64, segment string) Intent {
	return Intent{Kind: KindResolved, Tool: tool, Args: args, Confidence: confidence, Source: SourceRule, Segment: segment}
}

func clarify(prompt, segment string, source Source) Intent {
	return Intent{Kind: KindNeedsClarification, ClarificationPrompt: prompt, Source: source, Segment: segment}
}

func matchApplyAll(segment string, req Request) ([]Intent, bool) {
	m := applyAllPattern.FindStringSubmatch(segment)
	if m == nil {
		return nil, false
	}
	quickOnly := strings.Contains(strings.ToLower(m[1]), "quick")
	var refs []string
	for _, s := range req.Suggestions {
		if len(s.Patch) == 0 || (quickOnly && !s.QuickWin) {
			continue
		}
		refs = append(refs, s.ID)
	}
	if len(refs) == 0 {
		return []Intent{clarify("There are no automatically applicable suggestions right now. Score the resume first or name a tip number.", segment, SourceRule)}, true
	}
	return []Intent{resolved(tools.NameApplySuggestions, tools.Args{"suggestions": refs}, ruleConfidence, segment)}, true
}

func matchApplyTips(segment string, _ Request) ([]Intent, bool) {
	if m := suggestionIDRegex.FindStringSubmatch(segment); m != nil {
		return []Intent{resolved(tools.NameApplySuggestions, tools.Args{"suggestions": []string{strings.ToLower(m[1])}}, ruleConfidence, segment)}, true
	}
	m := tipListPattern.FindStringSubmatch(segment)
	if m == nil {
		return nil, false
	}
	refs := numberPattern.FindAllString(m[1], -1)
	return []Intent{resolved(tools.NameApplySuggestions, tools.Args{"suggestions": refs}, ruleConfidence, segment)}, true
}

func splitList(raw string) []string {
	var out []string
	for _, part := range listSplitPattern.Split(raw, -1) {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func skillCategory(word string) string {
	if strings.EqualFold(word, "soft") {
		return "soft"
	}
	return "technical"
}

func matchAddSkills(segment string, _ Request) ([]Intent, bool) {
	var raw, category string
	if m := addSkillsPattern.FindStringSubmatch(segment); m != nil {
		raw, category = m[1], m[2]
	} else if m := addSkillsColon.FindStringSubmatch(segment); m != nil {
		raw, category = m[2], m[1]
	} else {
		return nil, false
	}
	skills := splitList(raw)
	if len(skills) == 0 {
		return []Intent{clarify("Which skills should I add?", segment, SourceRule)}, true
	}
	return []Intent{resolved(tools.NameSkillAdder, tools.Args{"skills": skills, "category": skillCategory(category)}, ruleConfidence, segment)}, true
}

func matchRewrite(segment string, req Request) ([]Intent, bool) {
	if m := rewriteAchievement.FindStringSubmatch(segment); m != nil {
		bullet, _ := strconv.Atoi(m[1])
		job, _ := strconv.Atoi(m[2])
		if job < 1 || job > len(req.Document.Experience) || bullet < 1 || bullet > len(req.Document.Experience[job-1].Achievements) {
			return []Intent{clarify(fmt.Sprintf("I could not find achievement %d of job %d. Which bullet should I rewrite?", bullet, job), segment, SourceRule)}, true
		}
		path := fmt.Sprintf("experience[%d].achievements[%d]", job-1, bullet-1)
		return []Intent{resolved(tools.NameContentRewriter, tools.Args{"path": path, "instruction": segment}, ruleConfidence, segment)}, true
	}
	if m := rewriteExperience.FindStringSubmatch(segment); m != nil {
		job, _ := strconv.Atoi(m[1])
		if job < 1 || job > len(req.Document.Experience) || len(req.Document.Experience[job-1].Achievements) == 0 {
			return []Intent{clarify(fmt.Sprintf("Job %d has no achievements to rewrite. Which section did you mean?", job), segment, SourceRule)}, true
		}
		intents := make([]Intent, 0, len(req.Document.Experience[job-1].Achievements))
		for i := range req.Document.Experience[job-1].Achievements {
			path := fmt.Sprintf("experience[%d].achievements[%d]", job-1, i)
			intents = append(intents, resolved(tools.NameContentRewriter, tools.Args{"path": path, "instruction": segment}, ruleConfidence, segment))
		}
		return intents, true
	}
	if m := rewriteSummary.FindStringSubmatch(segment); m != nil {
		path := "summary"
		if strings.EqualFold(m[1], "headline") {
			path = "contact.headline"
		}
		return []Intent{resolved(tools.NameContentRewriter, tools.Args{"path": path, "instruction": segment}, ruleConfidence, segment)}, true
	}
	return nil, false
}

func matchTemplate(segment string, _ Request) ([]Intent, bool) {
	if m := templatePattern.FindStringSubmatch(segment); m != nil {
		return []Intent{resolved(tools.NameDesignRecommender, tools.Args{"template": strings.ToLower(m[1])}, ruleConfidence, segment)}, true
	}
	if recommendPattern.MatchString(segment) {
		args := tools.Args{"apply": applyWordPattern.MatchString(segment)}
		return []Intent{resolved(tools.NameDesignRecommender, args, ruleConfidence, segment)}, true
	}
	return nil, false
}

// findColor returns the first explicit color token in text.
func findColor(text string) string {
	if m := rgbColorPattern.FindString(text); m != "" {
		return m
	}
	if m := hexColorPattern.FindString(text); m != "" {
		return m
	}
	lower := strings.ToLower(text)
	for _, name := range design.ColorNames() {
		if hasWord(lower, name) {
			return name
		}
	}
	return ""
}

func isNamedColor(color string) bool {
	return !strings.HasPrefix(color, "#") && !rgbColorPattern.MatchString(color)
}

func findTarget(text string) string {
	lower := strings.ToLower(text)
	for _, alias := range design.TargetAliases() {
		if hasWord(lower, alias) {
			return alias
		}
	}
	return ""
}

// matchColors handles "make headings navy and accent #ff8800". A segment that
// talks about colors without a parseable value still produces an intent, so
// the customizer rejects it explicitly instead of the model guessing. Color
// names inside ordinary content ("Red Hat", "gold medal") are left alone.
func matchColors(segment string, _ Request) ([]Intent, bool) {
	mentionsColor := colorWord.MatchString(segment)
	// rgb(...) contains commas; protect it before splitting clauses.
	protected := rgbColorPattern.ReplaceAllStringFunc(segment, func(s string) string {
		return strings.ReplaceAll(s, ",", "\x00")
	})
	colors := map[string]any{}
	for _, clause := range clauseSplit.Split(protected, -1) {
		clause = strings.TrimSpace(strings.ReplaceAll(clause, "\x00", ","))
		color := findColor(clause)
		if color == "" {
			continue
		}
		if isNamedColor(color) && !mentionsColor && !namedColorShape.MatchString(clause) {
			continue
		}
		target := findTarget(clause)
		if target == "" {
			target = design.TargetPrimary
		}
		colors[target] = color
	}
	if len(colors) > 0 {
		return []Intent{resolved(tools.NameColorCustomizer, tools.Args{"colors": colors}, ruleConfidence, segment)}, true
	}
	if !mentionsColor {
		return nil, false
	}
	if m := toValuePattern.FindStringSubmatch(segment); m != nil {
		args := tools.Args{"target": findTarget(segment), "color": strings.TrimSpace(m[1])}
		return []Intent{resolved(tools.NameColorCustomizer, args, ruleConfidence, segment)}, true
	}
	return []Intent{clarify("Which color should I use? Give a name like navy, a hex value like #1a73e8 or rgb(26,115,232).", segment, SourceRule)}, true
}

func matchScore(segment string, _ Request) ([]Intent, bool) {
	if !scorePattern.MatchString(segment) {
		return nil, false
	}
	return []Intent{resolved(tools.NameATSScorer, tools.Args{}, scoreRuleConfidence, segment)}, true
}

func hasWord(lower, word string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		if (start == 0 || !isWordByte(lower[start-1])) && (end == len(lower) || !isWordByte(lower[end])) {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b == '#' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
