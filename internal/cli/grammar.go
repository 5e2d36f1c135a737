package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/helpscan/internal/grammar"
)

var grammarEBNF bool

// grammarCmd represents the grammar command
var grammarCmd = &cobra.Command{
	Use:   "grammar",
	Short: "Print the option-line grammar",
	Long: `Grammar prints the rules used to recognize option, entry and usage lines,
as a JSON tree of rule definitions or, with --ebnf, as EBNF text.

Example:
  helpscan grammar
  helpscan grammar --ebnf`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := grammar.Default()
		if grammarEBNF {
			_, err := fmt.Fprint(cmd.OutOrStdout(), grammar.EBNF(g))
			return err
		}

		data, err := json.MarshalIndent(grammar.Export(g), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal grammar: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	rootCmd.AddCommand(grammarCmd)
	grammarCmd.Flags().BoolVar(&grammarEBNF, "ebnf", false, "print EBNF instead of JSON")
}
