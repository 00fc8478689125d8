package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mdreader/llmstream/internal/decoder"
	"github.com/mdreader/llmstream/internal/json"
	log "github.com/mdreader/llmstream/internal/logging"
	"github.com/mdreader/llmstream/internal/provider"
	"github.com/mdreader/llmstream/internal/redact"
	"github.com/mdreader/llmstream/internal/session"
	"github.com/mdreader/llmstream/internal/streamparse"
	"github.com/mdreader/llmstream/internal/streamutil"
)

var (
	decodeProvider  string
	decodeChunkSize int
	decodeEncoding  string
	decodeJSON      bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Replay a captured provider stream through the decoder",
	Long: `Replay a captured provider response stream through the decoding
pipeline and print the parsed result: the display prose, the extracted
command if one was embedded, token usage, and the finish reason.

The capture is read from the named file, or from stdin when the name is
"-" or omitted. --chunk-size re-splits the capture into small reads to
simulate network chunking; --content-encoding unwraps compressed
captures before decoding.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func runDecode(c *cobra.Command, args []string) error {
	cfg, err := bootstrapConfig()
	if err != nil {
		return err
	}

	name := decodeProvider
	if name == "" {
		name = cfg.DefaultProvider
	}
	kind := provider.FromString(name)
	if !kind.Valid() {
		return fmt.Errorf("unknown provider %q (want one of: %s)", name, kindList())
	}

	in, err := openCapture(args)
	if err != nil {
		return err
	}
	defer in.Close()

	body, err := streamutil.DecodeBody(in, decodeEncoding)
	if err != nil {
		return err
	}
	defer body.Close()

	chunkSize := decodeChunkSize
	if chunkSize == 0 {
		chunkSize = cfg.Stream.ChunkSizeBytes
	}
	var r io.Reader = body
	if chunkSize > 0 {
		r = &chunkedReader{r: body, size: chunkSize}
	}

	sess, err := session.New(kind, session.Options{IdleTimeout: cfg.Stream.IdleTimeout()})
	if err != nil {
		return err
	}
	log.Debugf("decode: session %s provider=%s chunk-size=%d", sess.ID(), kind, chunkSize)

	outcome, runErr := sess.Run(c.Context(), r, nil)
	if runErr != nil {
		if decodeJSON {
			printJSONError(kind, runErr)
		}
		return runErr
	}

	if decodeJSON {
		return printJSONResult(kind, outcome)
	}
	printResult(outcome)
	return nil
}

// openCapture opens the capture argument; "-" or no argument means stdin.
func openCapture(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	return f, nil
}

func printResult(outcome *session.Outcome) {
	res := outcome.Result
	if res.DisplayContent != "" {
		fmt.Println(res.DisplayContent)
	}
	if res.FunctionCall != nil {
		args, err := json.MarshalIndent(res.FunctionCall.Arguments, "", "  ")
		if err != nil {
			args = []byte("{}")
		}
		fmt.Printf("\ncommand: %s\narguments: %s\n", res.FunctionCall.Name, args)
	}
	if outcome.Usage != nil {
		fmt.Printf("usage: prompt=%d completion=%d total=%d\n",
			outcome.Usage.PromptTokens, outcome.Usage.CompletionTokens, outcome.Usage.TotalTokens)
	}
	if outcome.FinishReason != decoder.FinishReasonNone {
		fmt.Printf("finish: %s\n", outcome.FinishReason)
	}
}

// decodeOutput is the JSON document the --json flag prints.
type decodeOutput struct {
	Provider     string               `json:"provider"`
	Status       streamparse.Status   `json:"status"`
	Display      string               `json:"display_content,omitempty"`
	FunctionCall *streamparse.Command `json:"function_call,omitempty"`
	Usage        *decoder.Usage       `json:"usage,omitempty"`
	FinishReason decoder.FinishReason `json:"finish_reason,omitempty"`
	Error        string               `json:"error,omitempty"`
}

func printJSONResult(kind provider.Kind, outcome *session.Outcome) error {
	doc := decodeOutput{
		Provider:     kind.String(),
		Status:       outcome.Result.Status,
		Display:      outcome.Result.DisplayContent,
		FunctionCall: outcome.Result.FunctionCall,
		Usage:        outcome.Usage,
		FinishReason: outcome.FinishReason,
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printJSONError(kind provider.Kind, runErr error) {
	doc := decodeOutput{
		Provider: kind.String(),
		Status:   streamparse.StatusError,
		Error:    redact.String(runErr.Error()),
	}
	if b, err := json.MarshalIndent(doc, "", "  "); err == nil {
		fmt.Println(string(b))
	}
}

func kindList() string {
	kinds := provider.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

// chunkedReader caps each Read so a capture replays with transport-like
// chunk sizes instead of one big read.
type chunkedReader struct {
	r    io.Reader
	size int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if len(p) > c.size {
		p = p[:c.size]
	}
	return c.r.Read(p)
}

func init() {
	f := decodeCmd.Flags()
	f.StringVarP(&decodeProvider, "provider", "p", "", "provider kind: "+kindList()+" (default: config default-provider)")
	f.IntVar(&decodeChunkSize, "chunk-size", 0, "split the capture into reads of this many bytes (0 = source-sized reads)")
	f.StringVar(&decodeEncoding, "content-encoding", "", "capture compression: gzip, deflate, br, zstd")
	f.BoolVar(&decodeJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(decodeCmd)
}
