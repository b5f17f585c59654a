package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"c3ingest/internal/chunkstream"
	"c3ingest/internal/ingest"
)

type options struct {
	company   string
	filename  string
	mimeType  string
	size      int64
	filePath  string
	maxChunks int
	stats     bool
	pretty    bool
}

// itemMode reports whether any document metadata flag was given, which
// switches the output from records to items.
func (o options) itemMode(cmd *cobra.Command) bool {
	for _, name := range []string{"company", "filename", "mimetype", "size", "file-path"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "chunkparse [file]",
		Short: "Parse a captured chunker transcript into JSON",
		Long: "chunkparse reads a chunker transcript from a file, or stdin when no file\n" +
			"(or \"-\") is given, and prints the parsed chunk records as JSON.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.maxChunks < 0 {
				return fmt.Errorf("--max-chunks must not be negative")
			}

			buf, err := readInput(stdin, args)
			if err != nil {
				return err
			}

			records, stats := chunkstream.ParseWithStats(string(buf))
			if opts.stats {
				if err := writeJSON(stderr, stats, opts.pretty); err != nil {
					return err
				}
			}

			if opts.itemMode(cmd) {
				meta := ingest.DocumentMeta{
					Company:  opts.company,
					Filename: opts.filename,
					MimeType: opts.mimeType,
					Size:     opts.size,
					FilePath: opts.filePath,
				}
				return writeJSON(stdout, ingest.BuildItems(meta, records, opts.maxChunks), opts.pretty)
			}
			return writeJSON(stdout, ingest.LimitRecords(records, opts.maxChunks), opts.pretty)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.company, "company", "", "company attached to each item")
	flags.StringVar(&opts.filename, "filename", "", "source filename attached to each item")
	flags.StringVar(&opts.mimeType, "mimetype", "", "source mime type attached to each item")
	flags.Int64Var(&opts.size, "size", 0, "source size in bytes attached to each item")
	flags.StringVar(&opts.filePath, "file-path", "", "stored document path, defaults to --filename")
	flags.IntVar(&opts.maxChunks, "max-chunks", 0, "keep only the first N chunks (0 keeps all)")
	flags.BoolVar(&opts.stats, "stats", false, "print parse statistics to stderr")
	flags.BoolVar(&opts.pretty, "pretty", false, "indent JSON output")

	return cmd
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		buf, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return buf, nil
	}
	buf, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return buf, nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "chunkparse:", err)
		os.Exit(1)
	}
}
