package llmstream_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/mdreader/llmstream/sdk/llmstream"
)

func Example() {
	stream := `data: {"choices":[{"delta":{"content":"Here you go.\n\n"}}]}` + "\n" +
		`data: {"choices":[{"delta":{"content":"{\"function\": \"create_document\", \"arguments\": {\"title\": \"Plan\"}}"}}]}` + "\n" +
		"data: [DONE]\n"

	sess, err := llmstream.NewSession(llmstream.KindOpenAI, llmstream.Options{})
	if err != nil {
		fmt.Println("new session:", err)
		return
	}
	outcome, err := sess.Run(context.Background(), strings.NewReader(stream), nil)
	if err != nil {
		fmt.Println("run:", err)
		return
	}

	fmt.Println(outcome.Result.DisplayContent)
	fmt.Println(outcome.Result.FunctionCall.Name)
	fmt.Println(outcome.Result.Status)
	// Output:
	// Here you go.
	// create_document
	// complete
}

func ExampleNewParser() {
	p := llmstream.NewParser()
	p.ProcessChunk("Renaming now.\n")
	res := p.ProcessChunk(`{"function": "rename_document", "arguments": {"to": "Q3 Plan"}}`)

	fmt.Println(res.DisplayContent)
	fmt.Println(res.FunctionCall.Name)
	// Output:
	// Renaming now.
	// rename_document
}
