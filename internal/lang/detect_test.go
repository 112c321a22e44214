package lang

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		lang string
		dir  string
	}{
		{name: "english", text: "Senior engineer with Go experience", lang: "en", dir: DirectionLTR},
		{name: "hebrew", text: "מהנדס תוכנה בכיר עם ניסיון ב Go", lang: "he", dir: DirectionRTL},
		{name: "arabic", text: "مهندس برمجيات", lang: "ar", dir: DirectionRTL},
		{name: "empty", text: "  123 ", lang: "en", dir: DirectionLTR},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.text)
			if got.Language != tt.lang || got.Direction != tt.dir {
				t.Fatalf("Detect(%q) = %+v, want %s/%s", tt.text, got, tt.lang, tt.dir)
			}
		})
	}
}

func TestResolvePrefersHint(t *testing.T) {
	got := Resolve("he-IL", "plain english text")
	if got.Language != "he" || got.Direction != DirectionRTL || got.Confidence != 1 {
		t.Fatalf("unexpected result %+v", got)
	}
	if got := Resolve("", "hello"); got.Language != "en" {
		t.Fatalf("expected detection fallback, got %+v", got)
	}
}
