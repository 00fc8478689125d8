package streamparse

import "testing"

func TestFindRawMarker(t *testing.T) {
	if idx, ok := findRawMarker([]byte(`before {"function": "a"}`)); !ok || idx != 7 {
		t.Fatalf("got (%d, %v)", idx, ok)
	}
	if _, ok := findRawMarker([]byte(`no marker here`)); ok {
		t.Fatal("matched without marker")
	}
	if _, ok := findRawMarker([]byte(`{"fun`)); ok {
		t.Fatal("matched a partial marker")
	}
}

func TestFindEscapedMarker(t *testing.T) {
	if idx, ok := findEscapedMarker([]byte(`x {\"function\": 1`)); !ok || idx != 2 {
		t.Fatalf("got (%d, %v)", idx, ok)
	}
	if _, ok := findEscapedMarker([]byte(`{"function`)); ok {
		t.Fatal("matched the unescaped form")
	}
}

func TestFindFencedCommand(t *testing.T) {
	cases := []struct {
		name  string
		buf   string
		start int
		ok    bool
	}{
		{"escaped body", "pre\n```\n" + `{\"function\": 1`, 4, true},
		{"raw body", "pre\n```json\n{\"function\": 1", 4, true},
		{"prose fence skipped", "```go\nfmt.Println(1)\n```\n", 0, false},
		{"prose fence then command fence", "```go\ncode\n```\n```\n" + `{\"function\"`, 15, true},
		{"header incomplete", "```jso", 0, false},
		{"body undecided", "```\n{\"fun", 0, false},
		{"body empty so far", "```\n", 0, false},
		{"no fence", "plain text", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, ok := findFencedCommand([]byte(tc.buf))
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && start != tc.start {
				t.Fatalf("start = %d, want %d", start, tc.start)
			}
		})
	}
}

func TestMatcherOrder(t *testing.T) {
	if len(matchers) != 3 {
		t.Fatalf("matchers = %d, want 3", len(matchers))
	}
	want := []MatcherKind{MatchRawJSON, MatchFenced, MatchEscapedJSON}
	for i, m := range matchers {
		if m.kind != want[i] {
			t.Fatalf("matcher %d = %v, want %v", i, m.kind, want[i])
		}
	}
}

func TestMatcherKindString(t *testing.T) {
	if MatchFenced.String() != "fenced" || MatchNone.String() != "none" {
		t.Fatal("MatcherKind.String mismatch")
	}
}
