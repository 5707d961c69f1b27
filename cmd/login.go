package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceauth/internal/config"
	"github.com/kozaktomas/faceauth/internal/form"
	"github.com/kozaktomas/faceauth/internal/submit"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Submit the login form",
	Long: `Submit the login form. On success the redirect target is printed,
with --follow it is visited using the session cookie of the login.

Examples:
  faceauth login --field email=alice@example.com --field password=secret --follow`,
	Args: cobra.NoArgs,
	RunE: submitCommand(config.FormLogin, func(ctx context.Context, c *submit.Controller, data *form.Data) submit.Outcome {
		h := &submit.Handlers{Login: c}
		return h.HandleLoginSubmit(ctx, data)
	}),
}

func init() {
	rootCmd.AddCommand(loginCmd)
	addSubmitFlags(loginCmd)
}
