package tools

import (
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/llm"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/scoring"
)

// NewDefaultRegistry registers every built-in tool.
func NewDefaultRegistry(engine *scoring.Engine, completer llm.Completer) (*Registry, error) {
	if engine == nil {
		engine = scoring.NewEngine()
	}
	r := NewRegistry()
	for _, t := range []Tool{
		ATSScorer{Engine: engine},
		ContentRewriter{Completer: completer},
		ColorCustomizer{},
		SkillAdder{},
		DesignRecommender{},
		ApplySuggestions{Engine: engine},
	} {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}
