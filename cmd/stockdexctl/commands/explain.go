package commands

import (
	"github.com/spf13/cobra"
)

var explainFlags intentFlags

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Print the compiled predicate and SQL without running the search",
	Args:  cobra.NoArgs,
	RunE:  runExplain,
}

func init() {
	explainFlags.register(explainCmd)
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, _ []string) error {
	in, err := explainFlags.build(cmd.InOrStdin())
	if err != nil {
		return err
	}

	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	ex, err := client.Explain(cmd.Context(), in)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), ex)
}
