package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceauth/internal/config"
	"github.com/kozaktomas/faceauth/internal/form"
	"github.com/kozaktomas/faceauth/internal/submit"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Submit the signup form",
	Long: `Submit the signup form with the given fields.

Examples:
  faceauth signup --field name="Alice Doe" --field email=alice@example.com --field password=secret
  faceauth signup -i --discover`,
	Args: cobra.NoArgs,
	RunE: submitCommand(config.FormSignup, func(ctx context.Context, c *submit.Controller, data *form.Data) submit.Outcome {
		h := &submit.Handlers{Signup: c}
		return h.HandleSignupSubmit(ctx, data)
	}),
}

func init() {
	rootCmd.AddCommand(signupCmd)
	addSubmitFlags(signupCmd)
}
