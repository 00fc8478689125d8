package sseutil

import (
	"bytes"
	"testing"
)

func collect(b *LineBuffer, chunks ...[]byte) [][]byte {
	var lines [][]byte
	for _, c := range chunks {
		lines = append(lines, b.Append(c)...)
	}
	if last, ok := b.Flush(); ok {
		lines = append(lines, last)
	}
	return lines
}

func TestLineBufferSplitAtEveryOffset(t *testing.T) {
	stream := []byte("data: one\ndata: two\r\n\nlast")
	want := [][]byte{
		[]byte("data: one"),
		[]byte("data: two"),
		[]byte(""),
		[]byte("last"),
	}
	for split := 0; split <= len(stream); split++ {
		var b LineBuffer
		got := collect(&b, stream[:split], stream[split:])
		if len(got) != len(want) {
			t.Fatalf("split %d: got %d lines, want %d: %q", split, len(got), len(want), got)
		}
		for i := range want {
			if !bytes.Equal(got[i], want[i]) {
				t.Fatalf("split %d: line %d = %q, want %q", split, i, got[i], want[i])
			}
		}
	}
}

func TestLineBufferByteAtATime(t *testing.T) {
	stream := []byte("alpha\nbeta\n")
	var b LineBuffer
	var got [][]byte
	for i := range stream {
		got = append(got, b.Append(stream[i:i+1])...)
	}
	if len(got) != 2 || string(got[0]) != "alpha" || string(got[1]) != "beta" {
		t.Fatalf("lines = %q", got)
	}
	if b.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", b.Pending())
	}
}

func TestLineBufferFlush(t *testing.T) {
	var b LineBuffer
	if _, ok := b.Flush(); ok {
		t.Fatal("empty buffer should not flush a line")
	}
	b.Append([]byte("tail without newline"))
	line, ok := b.Flush()
	if !ok || string(line) != "tail without newline" {
		t.Fatalf("flush = %q, %v", line, ok)
	}
	if _, ok := b.Flush(); ok {
		t.Fatal("second flush should be empty")
	}
}

func TestLineBufferFlushStripsCR(t *testing.T) {
	var b LineBuffer
	b.Append([]byte("tail\r"))
	line, ok := b.Flush()
	if !ok || string(line) != "tail" {
		t.Fatalf("flush = %q, %v", line, ok)
	}
}

func TestLineBufferPrepend(t *testing.T) {
	var b LineBuffer
	b.Append([]byte(`"a": 1}`))
	b.Prepend([]byte(`data: {`))
	lines := b.Append([]byte("\n"))
	if len(lines) != 1 || string(lines[0]) != `data: {"a": 1}` {
		t.Fatalf("lines = %q", lines)
	}
}

func TestLineBufferReturnedLinesAreStable(t *testing.T) {
	var b LineBuffer
	first := b.Append([]byte("one\ntw"))
	if len(first) != 1 {
		t.Fatalf("got %d lines", len(first))
	}
	b.Append([]byte("o\n"))
	if string(first[0]) != "one" {
		t.Fatalf("earlier line mutated: %q", first[0])
	}
}

func TestJSONPayload(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"data line", `data: {"a":1}`, `{"a":1}`},
		{"data no space", `data:{"a":1}`, `{"a":1}`},
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"padded", `  data: {"a":1}  `, `{"a":1}`},
		{"blank", "", ""},
		{"whitespace", "   ", ""},
		{"done", "[DONE]", ""},
		{"event line", "event: content_block_delta", ""},
		{"comment", ": keep-alive", ""},
		{"non json", "data: hello", ""},
		{"empty data", "data:", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := JSONPayload([]byte(tc.in))
			if string(got) != tc.want {
				t.Fatalf("JSONPayload(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsDoneLine(t *testing.T) {
	for _, in := range []string{"data: [DONE]", "data:[DONE]", "[DONE]", "  data: [DONE]  "} {
		if !IsDoneLine([]byte(in)) {
			t.Errorf("IsDoneLine(%q) = false, want true", in)
		}
	}
	for _, in := range []string{"", "data: {}", "done", "data: [DONE] extra"} {
		if IsDoneLine([]byte(in)) {
			t.Errorf("IsDoneLine(%q) = true, want false", in)
		}
	}
}

func TestIsEventLine(t *testing.T) {
	for _, in := range []string{"event: message_start", "event:message_stop", "  event: content_block_delta"} {
		if !IsEventLine([]byte(in)) {
			t.Errorf("IsEventLine(%q) = false, want true", in)
		}
	}
	for _, in := range []string{"", "data: {}", `data: {"type":"message_start"}`, ": event"} {
		if IsEventLine([]byte(in)) {
			t.Errorf("IsEventLine(%q) = true, want false", in)
		}
	}
}

func TestSplitBetweenPrefixAndPayload(t *testing.T) {
	var b LineBuffer
	if lines := b.Append([]byte("data:")); len(lines) != 0 {
		t.Fatalf("premature lines: %q", lines)
	}
	lines := b.Append([]byte(" {\"a\":1}\n"))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if got := JSONPayload(lines[0]); string(got) != `{"a":1}` {
		t.Fatalf("payload = %q", got)
	}
}
