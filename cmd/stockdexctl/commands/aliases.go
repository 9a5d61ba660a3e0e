package commands

import (
	"github.com/spf13/cobra"
)

var aliasesCmd = &cobra.Command{
	Use:   "aliases",
	Short: "Inspect the brand alias table",
}

var aliasesStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the loaded alias table summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()
		return printJSON(cmd.OutOrStdout(), client.Aliases())
	},
}

var aliasesExpandCmd = &cobra.Command{
	Use:   "expand TERM",
	Short: "Print every spelling a publisher or brand term expands to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()
		return printJSON(cmd.OutOrStdout(), client.ExpandBrand(args[0]))
	},
}

func init() {
	aliasesCmd.AddCommand(aliasesStatusCmd, aliasesExpandCmd)
	rootCmd.AddCommand(aliasesCmd)
}
