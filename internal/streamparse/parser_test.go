package streamparse

import (
	"reflect"
	"testing"
)

func assertCommand(t *testing.T, cmd *Command, name string, args map[string]any) {
	t.Helper()
	if cmd == nil {
		t.Fatal("FunctionCall = nil")
	}
	if cmd.Name != name {
		t.Fatalf("command name = %q, want %q", cmd.Name, name)
	}
	if !reflect.DeepEqual(cmd.Arguments, args) {
		t.Fatalf("arguments = %#v, want %#v", cmd.Arguments, args)
	}
}

func TestPlainTextPassesThrough(t *testing.T) {
	p := New()
	p.ProcessChunk("Hello ")
	res := p.ProcessChunk("world")
	if res.DisplayContent != "Hello world" {
		t.Fatalf("display = %q", res.DisplayContent)
	}
	if res.InJSON {
		t.Fatal("InJSON = true for plain text")
	}
	if res.FunctionCall != nil {
		t.Fatalf("FunctionCall = %v", res.FunctionCall)
	}
	final := p.Finalize()
	if final.Status != StatusStreaming {
		t.Fatalf("status = %q, want streaming when no command was found", final.Status)
	}
	if final.DisplayContent != "Hello world" {
		t.Fatalf("final display = %q", final.DisplayContent)
	}
}

func TestRawCommandAcrossChunks(t *testing.T) {
	p := New()
	res := p.ProcessChunk("I'll help.\n\n{\"function\": \"create_document\", \"argum")
	if res.DisplayContent != "I'll help." {
		t.Fatalf("display = %q, want %q", res.DisplayContent, "I'll help.")
	}
	if !res.InJSON {
		t.Fatal("InJSON = false after command opened")
	}
	if res.FunctionCall != nil {
		t.Fatal("FunctionCall set before the region closed")
	}
	res = p.ProcessChunk("ents\": {\"title\":\"Plan\"}}")
	assertCommand(t, res.FunctionCall, "create_document", map[string]any{"title": "Plan"})
	final := p.Finalize()
	if final.Status != StatusComplete {
		t.Fatalf("status = %q", final.Status)
	}
	assertCommand(t, final.FunctionCall, "create_document", map[string]any{"title": "Plan"})
	if final.DisplayContent != "I'll help." {
		t.Fatalf("final display = %q", final.DisplayContent)
	}
}

func TestRawCommandChunkBoundaryInvariance(t *testing.T) {
	text := "I'll help.\n\n{\"function\": \"create_document\", \"arguments\": {\"title\": \"Plan\"}}"
	for cut := 0; cut <= len(text); cut++ {
		p := New()
		p.ProcessChunk(text[:cut])
		p.ProcessChunk(text[cut:])
		final := p.Finalize()
		if final.Status != StatusComplete {
			t.Fatalf("cut %d: status = %q", cut, final.Status)
		}
		if final.DisplayContent != "I'll help." {
			t.Fatalf("cut %d: display = %q", cut, final.DisplayContent)
		}
		assertCommand(t, final.FunctionCall, "create_document", map[string]any{"title": "Plan"})
	}
}

// A fenced body that opens with the bare marker is claimed by the raw
// matcher; the fence opener left in the prose is stripped from the display.
func TestCommandInsideFence(t *testing.T) {
	text := "Sure!\n```json\n{\"function\": \"create_slide\", \"arguments\": {\"layout\": \"two_column\"}}\n```\nDone"
	for cut := 0; cut <= len(text); cut++ {
		p := New()
		p.ProcessChunk(text[:cut])
		p.ProcessChunk(text[cut:])
		final := p.Finalize()
		if final.Status != StatusComplete {
			t.Fatalf("cut %d: status = %q", cut, final.Status)
		}
		if final.DisplayContent != "Sure!" {
			t.Fatalf("cut %d: display = %q", cut, final.DisplayContent)
		}
		assertCommand(t, final.FunctionCall, "create_slide", map[string]any{"layout": "two_column"})
	}
}

// An escaped body commits the fenced matcher, so the display cut lands on
// the fence itself.
func TestFencedEscapedCommand(t *testing.T) {
	text := "Here:\n```\n" + `{\"function\": \"export_pdf\", \"arguments\": {\"pages\": \"all\"}}` + "\n```"
	for cut := 0; cut <= len(text); cut++ {
		p := New()
		p.ProcessChunk(text[:cut])
		p.ProcessChunk(text[cut:])
		final := p.Finalize()
		if final.Status != StatusComplete {
			t.Fatalf("cut %d: status = %q", cut, final.Status)
		}
		if final.DisplayContent != "Here:" {
			t.Fatalf("cut %d: display = %q", cut, final.DisplayContent)
		}
		assertCommand(t, final.FunctionCall, "export_pdf", map[string]any{"pages": "all"})
	}
}

func TestEscapedCommandWithoutFence(t *testing.T) {
	text := "Done soon.\n" + `{\"function\": \"rename\", \"arguments\": {\"to\": \"Q3\"}}`
	p := New()
	res := p.ProcessChunk(text)
	if res.DisplayContent != "Done soon." {
		t.Fatalf("display = %q", res.DisplayContent)
	}
	if !res.InJSON {
		t.Fatal("InJSON = false")
	}
	assertCommand(t, res.FunctionCall, "rename", map[string]any{"to": "Q3"})
}

// A fence whose closing marker never arrives is still extracted at
// finalization when its body holds a complete object.
func TestUnclosedFenceExtractedAtFinalize(t *testing.T) {
	p := New()
	p.ProcessChunk("Plan below.\n```\n" + `{\"function\": \"create_mindmap\", \"arguments\": {\"root\": \"Go\"}}`)
	if p.Phase() != PhaseCommandOpening {
		t.Fatalf("phase = %v before finalize", p.Phase())
	}
	final := p.Finalize()
	if final.Status != StatusComplete {
		t.Fatalf("status = %q", final.Status)
	}
	assertCommand(t, final.FunctionCall, "create_mindmap", map[string]any{"root": "Go"})
	if final.DisplayContent != "Plan below." {
		t.Fatalf("display = %q", final.DisplayContent)
	}
}

// Prose code blocks that do not open a command are skipped by the fence
// matcher and stay in the display.
func TestProseCodeBlockNotTreatedAsCommand(t *testing.T) {
	prose := "Use this:\n```go\nfmt.Println(1)\n```\nThen run it.\n"
	p := New()
	res := p.ProcessChunk(prose)
	if res.InJSON {
		t.Fatal("InJSON = true for a prose code block")
	}
	res = p.ProcessChunk("{\"function\": \"create_document\", \"arguments\": {}}")
	assertCommand(t, res.FunctionCall, "create_document", map[string]any{})
	want := "Use this:\n```go\nfmt.Println(1)\n```\nThen run it."
	if res.DisplayContent != want {
		t.Fatalf("display = %q, want %q", res.DisplayContent, want)
	}
}

// The first hit pins the start index and the extracted command for the rest
// of the session.
func TestCommandStartFixedOnce(t *testing.T) {
	p := New()
	p.ProcessChunk("note:\n```\n" + `{\"function\": \"a\", \"arguments\": {}}` + "\n```\n")
	res := p.ProcessChunk("{\"function\": \"b\", \"arguments\": {}}")
	assertCommand(t, res.FunctionCall, "a", map[string]any{})
	if res.DisplayContent != "note:" {
		t.Fatalf("display = %q", res.DisplayContent)
	}
	final := p.Finalize()
	assertCommand(t, final.FunctionCall, "a", map[string]any{})
}

func TestPhaseMonotonic(t *testing.T) {
	p := New()
	if p.Phase() != PhaseNoCommand {
		t.Fatalf("phase = %v", p.Phase())
	}
	p.ProcessChunk("Working. {\"function\": \"crea")
	if p.Phase() != PhaseCommandOpening {
		t.Fatalf("phase = %v after marker", p.Phase())
	}
	p.ProcessChunk("te_document\", \"arguments\": {}}")
	if p.Phase() != PhaseCommandComplete {
		t.Fatalf("phase = %v after close", p.Phase())
	}
	p.ProcessChunk(" trailing")
	if p.Phase() != PhaseCommandComplete {
		t.Fatalf("phase = %v after trailing text", p.Phase())
	}
}

func TestResetStartsNewSession(t *testing.T) {
	p := New()
	p.ProcessChunk("{\"function\": \"a\", \"arguments\": {}}")
	p.Finalize()
	p.Reset()
	if p.Phase() != PhaseNoCommand {
		t.Fatalf("phase = %v after reset", p.Phase())
	}
	res := p.ProcessChunk("fresh text")
	if res.InJSON || res.FunctionCall != nil {
		t.Fatalf("state leaked across reset: %+v", res)
	}
	if res.DisplayContent != "fresh text" {
		t.Fatalf("display = %q", res.DisplayContent)
	}
	final := p.Finalize()
	if final.Status != StatusStreaming || final.FunctionCall != nil {
		t.Fatalf("final = %+v", final)
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	p := New()
	p.ProcessChunk("Hi. {\"function\": \"create_document\", \"arguments\": {\"title\": \"x\"}}")
	first := p.Finalize()
	p.ProcessChunk("more")
	second := p.Finalize()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("finalize not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

// A region that opened but never closed is not a parser failure: the result
// stays streaming, with the prose still intact.
func TestOpenRegionStaysStreamingAtFinalize(t *testing.T) {
	p := New()
	p.ProcessChunk("Let me try.\n{\"function\": \"create_doc")
	final := p.Finalize()
	if final.Status != StatusStreaming {
		t.Fatalf("status = %q, want streaming", final.Status)
	}
	if final.FunctionCall != nil {
		t.Fatalf("FunctionCall = %v", final.FunctionCall)
	}
	if final.DisplayContent != "Let me try." {
		t.Fatalf("display = %q", final.DisplayContent)
	}
	if !final.InJSON {
		t.Fatal("InJSON = false")
	}
}

// A complete region that is not a command (wrong envelope) never becomes
// complete; no bogus command is cached.
func TestInvalidEnvelopeNeverCompletes(t *testing.T) {
	p := New()
	p.ProcessChunk("{\"function\": \"x\", \"arguments\": []}")
	if p.Phase() != PhaseCommandOpening {
		t.Fatalf("phase = %v", p.Phase())
	}
	final := p.Finalize()
	if final.Status != StatusStreaming || final.FunctionCall != nil {
		t.Fatalf("final = %+v", final)
	}
}

func TestPartialMarkerHiddenFromDisplay(t *testing.T) {
	p := New()
	res := p.ProcessChunk("Text {\"fun")
	if res.InJSON {
		t.Fatal("InJSON = true before the marker completed")
	}
	if res.DisplayContent != "Text" {
		t.Fatalf("display = %q, want %q", res.DisplayContent, "Text")
	}
}

func TestBufferAccumulates(t *testing.T) {
	p := New()
	p.ProcessChunk("a")
	res := p.ProcessChunk("b")
	if res.Buffer != "ab" {
		t.Fatalf("buffer = %q", res.Buffer)
	}
	if res.Status != StatusStreaming {
		t.Fatalf("status = %q", res.Status)
	}
}
