package streamparse

import (
	"regexp"
	"strings"

	"github.com/mdreader/llmstream/internal/jsonscan"
)

var newlineRuns = regexp.MustCompile(`\n{3,}`)

// cleanDisplay strips streaming artifacts from the prose shown to the user:
// an unmatched trailing code fence, a trailing JSON fragment that has not
// closed, leftover bracket lines, and excess blank lines.
func cleanDisplay(text string) string {
	text = stripDanglingFence(text)
	text = stripTrailingJSONFragment(text)
	text = stripBracketResidue(text)
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimRight(text, " \t\r\n")
}

func stripDanglingFence(text string) string {
	if strings.Count(text, "```")%2 == 0 {
		return text
	}
	return text[:strings.LastIndex(text, "```")]
}

// stripTrailingJSONFragment removes an object fragment at the tail of the
// text, so partially arrived command bytes never flash in the display. A
// complete inline object is prose and stays.
func stripTrailingJSONFragment(text string) string {
	idx := strings.LastIndexByte(text, '{')
	if idx < 0 {
		return text
	}
	suffix := text[idx:]
	if res := jsonscan.LocateString(suffix, 0); res.Outcome != jsonscan.Incomplete {
		return text
	}
	rest := strings.TrimLeft(suffix[1:], " \t\r\n")
	if rest == "" || rest[0] == '"' || rest[0] == '\\' {
		return text[:idx]
	}
	return text
}

// stripBracketResidue drops trailing lines that hold only structural
// punctuation left behind by a cut command region.
func stripBracketResidue(text string) string {
	for {
		trimmed := strings.TrimRight(text, " \t\r\n")
		idx := strings.LastIndexByte(trimmed, '\n')
		line := strings.TrimSpace(trimmed[idx+1:])
		if !bracketResidueOnly(line) {
			return text
		}
		if idx < 0 {
			return ""
		}
		text = trimmed[:idx+1]
	}
}

func bracketResidueOnly(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		switch r {
		case '{', '}', '[', ']', ',', ':', '"', '`':
		default:
			return false
		}
	}
	return true
}
