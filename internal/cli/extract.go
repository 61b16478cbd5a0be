package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgallion1/clausecheck/internal/parser"
)

func newExtractCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the text extracted from a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "text" {
				return fmt.Errorf("invalid format %q (must be json or text)", format)
			}
			doc, err := a.readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			if doc.Empty() {
				return fmt.Errorf("%s: %w", args[0], parser.ErrNoText)
			}
			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}
			_, err = io.WriteString(out, doc.Text+"\n")
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (json, text)")
	return cmd
}
