package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moradology/pith/internal/filter"
	"github.com/moradology/pith/internal/output"
)

// languagesCmd represents the languages command
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and their file extensions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeLanguages(os.Stdout, jsonOutput)
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
	languagesCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
}

type languageRecord struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

func writeLanguages(w io.Writer, asJSON bool) error {
	if asJSON {
		records := make([]languageRecord, 0, len(filter.All()))
		for _, lang := range filter.All() {
			records = append(records, languageRecord{Name: lang.String(), Extensions: lang.Extensions()})
		}
		doc, err := output.MarshalJSON(map[string][]languageRecord{"languages": records})
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, doc)
		return err
	}

	fmt.Fprintln(w, "Supported languages:")
	for _, lang := range filter.All() {
		exts := make([]string, 0, len(lang.Extensions()))
		for _, ext := range lang.Extensions() {
			exts = append(exts, "."+ext)
		}
		if _, err := fmt.Fprintf(w, "  %-12s %s\n", lang, strings.Join(exts, ", ")); err != nil {
			return err
		}
	}
	return nil
}
