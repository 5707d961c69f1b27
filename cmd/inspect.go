package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceauth/internal/authclient"
	"github.com/kozaktomas/faceauth/internal/form"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <page> <form-id>",
	Short: "Print the definition of a live form",
	Long: `Fetch a page from the server and print the definition of one of its
forms as YAML. The output can be saved and passed with --forms.

Examples:
  faceauth inspect /signup signupForm > forms.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().String("name", "", "Form name to record (defaults to the form's name attribute)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	client, err := authclient.New(cfg.Server.URL, authclient.WithTimeout(cfg.Client.Timeout))
	if err != nil {
		return fmt.Errorf("could not create client: %w", err)
	}

	def, err := client.FetchForm(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	if name := mustGetString(cmd, "name"); name != "" {
		def.Name = name
	}
	if def.Name == "" {
		def.Name = def.ID
	}

	out, err := form.Marshal(def)
	if err != nil {
		return fmt.Errorf("could not marshal form: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
