package provider

import "testing"

func TestFromString(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{"openai", KindOpenAI},
		{"OpenAI", KindOpenAI},
		{" claude ", KindClaude},
		{"anthropic", KindClaude},
		{"gemini", KindGemini},
		{"google", KindGemini},
		{"", KindUnknown},
		{"mistral", KindUnknown},
	}
	for _, tc := range cases {
		if got := FromString(tc.in); got != tc.want {
			t.Errorf("FromString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range Kinds() {
		if !k.Valid() {
			t.Errorf("Kind %q should be valid", k)
		}
	}
	if KindUnknown.Valid() {
		t.Error("KindUnknown should not be valid")
	}
	if Kind("mistral").Valid() {
		t.Error("unregistered kind should not be valid")
	}
}
