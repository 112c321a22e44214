package tools

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/design"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/scoring"
)

// Recommendation is the design_recommender artifact.
type Recommendation struct {
	TemplateID   string   `json:"template_id"`
	Reasoning    string   `json:"reasoning"`
	Confidence   float64  `json:"confidence"`
	Alternatives []string `json:"alternatives"`
}

// DesignRecommender picks a template from the role, the document shape and
// the latest format score.
type DesignRecommender struct{}

func (DesignRecommender) Name() string { return NameDesignRecommender }

func (DesignRecommender) Description() string {
	return `recommend a resume template; args {"apply": bool} to also assign it, or {"template": "classic|modern|minimal|executive|technical|creative"} to assign one directly`
}

func (DesignRecommender) Validate(args Args) error {
	if t := args.String("template"); t != "" && !design.IsTemplate(strings.ToLower(t)) {
		return fmt.Errorf("%w: %q", design.ErrUnknownTemplate, t)
	}
	return nil
}

var roleSignals = []struct {
	template string
	words    []string
	reason   string
}{
	{design.TemplateExecutive, []string{"director", "head of", "vp", "vice president", "chief", "cto", "ceo", "cfo", "principal"}, "leadership role"},
	{design.TemplateTechnical, []string{"engineer", "developer", "devops", "sre", "architect", "data scientist", "programmer"}, "technical role"},
	{design.TemplateCreative, []string{"designer", "ux", "ui", "creative", "marketing", "brand", "content", "artist"}, "creative role"},
	{design.TemplateModern, []string{"product", "manager", "analyst", "consultant", "growth"}, "business role"},
}

func (DesignRecommender) Execute(_ context.Context, in Input) (Result, error) {
	if t := strings.ToLower(in.Args.String("template")); t != "" {
		rec := Recommendation{TemplateID: t, Reasoning: "template requested explicitly", Confidence: 1}
		return Result{
			Success:   true,
			Rationale: fmt.Sprintf("switch to the %s template", t),
			Design:    &DesignChange{TemplateID: t},
			Artifacts: map[string]any{"design_recommendation": rec},
		}, nil
	}

	weights := map[string]float64{}
	for _, t := range design.Templates {
		weights[t] = 1
	}
	var reasons []string

	roleText := strings.ToLower(strings.Join([]string{in.Job.Title, in.Document.Contact.Headline, firstTitle(in)}, " "))
	for _, sig := range roleSignals {
		for _, w := range sig.words {
			if containsWordFold(roleText, w) {
				weights[sig.template] += 3
				reasons = append(reasons, fmt.Sprintf("%s suggests %s", sig.reason, sig.template))
				break
			}
		}
	}

	roles := len(in.Document.Experience)
	bullets := len(in.Document.Achievements())
	switch {
	case roles >= 5:
		weights[design.TemplateClassic] += 2
		weights[design.TemplateExecutive] += 1
		reasons = append(reasons, fmt.Sprintf("%d roles fit a dense classic layout", roles))
	case roles <= 1 && bullets <= 4:
		weights[design.TemplateMinimal] += 2
		reasons = append(reasons, "short history reads best in a minimal layout")
	}
	if len(in.Document.Skills.Technical) >= 12 {
		weights[design.TemplateTechnical] += 1
		reasons = append(reasons, "long technical skill list benefits from a skills grid")
	}

	if in.Report != nil {
		if fp, ok := in.Report.Subscores[scoring.FormatParseability]; ok && fp < scoring.WeakSubscoreThreshold {
			weights[design.TemplateClassic] += 2
			weights[design.TemplateMinimal] += 1
			weights[design.TemplateCreative] -= 2
			reasons = append(reasons, fmt.Sprintf("format parseability %d favors single-column ATS-safe templates", fp))
		}
	}

	ranked := make([]string, 0, len(weights))
	total := 0.0
	for t, w := range weights {
		if w < 0 {
			weights[t] = 0
			w = 0
		}
		total += w
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if weights[ranked[i]] != weights[ranked[j]] {
			return weights[ranked[i]] > weights[ranked[j]]
		}
		return templateOrder(ranked[i]) < templateOrder(ranked[j])
	})

	best := ranked[0]
	confidence := 0.0
	if total > 0 {
		// Share of the top template, stretched so a clear winner approaches 1.
		share := weights[best] / total
		confidence = math.Min(1, share*2)
	}
	confidence = math.Round(confidence*100) / 100
	if len(reasons) == 0 {
		reasons = append(reasons, "no strong signals; defaulting to the most ATS-friendly layout")
	}

	rec := Recommendation{
		TemplateID:   best,
		Reasoning:    strings.Join(reasons, "; "),
		Confidence:   confidence,
		Alternatives: ranked[1:3],
	}
	res := Result{
		Success:   true,
		Rationale: fmt.Sprintf("recommend %s template: %s", best, rec.Reasoning),
		Artifacts: map[string]any{"design_recommendation": rec},
	}
	if in.Args.Bool("apply") {
		res.Design = &DesignChange{TemplateID: best}
	}
	return res, nil
}

func firstTitle(in Input) string {
	if len(in.Document.Experience) == 0 {
		return ""
	}
	return in.Document.Experience[0].Title
}

func templateOrder(id string) int {
	for i, t := range design.Templates {
		if t == id {
			return i
		}
	}
	return len(design.Templates)
}

func containsWordFold(haystackLower, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystackLower[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		if (start == 0 || !isWordByte(haystackLower[start-1])) && (end == len(haystackLower) || !isWordByte(haystackLower[end])) {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
