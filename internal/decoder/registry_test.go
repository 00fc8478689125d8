package decoder

import (
	"reflect"
	"testing"

	"github.com/mdreader/llmstream/internal/provider"
)

func TestRegistryDispatch(t *testing.T) {
	for _, kind := range []provider.Kind{provider.KindOpenAI, provider.KindClaude, provider.KindGemini} {
		d, err := New(kind)
		if err != nil {
			t.Fatalf("New(%s): %v", kind, err)
		}
		if d == nil {
			t.Fatalf("New(%s) = nil decoder", kind)
		}
		if d.Done() {
			t.Fatalf("New(%s): fresh decoder already done", kind)
		}
	}
}

func TestRegistryUnknownKind(t *testing.T) {
	if _, err := New(provider.Kind("smalltalk")); err == nil {
		t.Fatal("New(smalltalk): want error")
	}
}

func TestRegistryKindsSorted(t *testing.T) {
	want := []provider.Kind{provider.KindClaude, provider.KindGemini, provider.KindOpenAI}
	if got := Kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Kinds() = %v, want %v", got, want)
	}
}

func TestFreshDecodersPerRequest(t *testing.T) {
	a, err := New(provider.KindOpenAI)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(provider.KindOpenAI)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a == b {
		t.Fatal("New returned a shared decoder instance")
	}
	if _, err := a.OnChunk([]byte("data: [DONE]\n")); err != nil {
		t.Fatalf("OnChunk: %v", err)
	}
	if !a.Done() || b.Done() {
		t.Fatal("decoder state leaked between instances")
	}
}

func TestNormalizeFinish(t *testing.T) {
	cases := []struct {
		in   string
		want FinishReason
	}{
		{"", FinishReasonNone},
		{"stop", FinishReasonStop},
		{"end_turn", FinishReasonStop},
		{"STOP", FinishReasonStop},
		{"max_tokens", FinishReasonLength},
		{"length", FinishReasonLength},
		{"MAX_TOKENS", FinishReasonLength},
		{"tool_use", FinishReasonToolCalls},
		{"RECITATION", FinishReason("recitation")},
	}
	for _, tc := range cases {
		if got := normalizeFinish(tc.in); got != tc.want {
			t.Errorf("normalizeFinish(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
