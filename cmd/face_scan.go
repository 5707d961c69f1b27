package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceauth/internal/config"
	"github.com/kozaktomas/faceauth/internal/form"
	"github.com/kozaktomas/faceauth/internal/submit"
)

var faceScanCmd = &cobra.Command{
	Use:   "face-scan",
	Short: "Upload a face picture",
	Long: `Upload a face picture through the face scan form.

Examples:
  faceauth face-scan --file image=me.jpg --field pic_name=alice
  faceauth face-scan --file image=me.png --max-size 640`,
	Args: cobra.NoArgs,
	RunE: submitCommand(config.FormFaceScan, func(ctx context.Context, c *submit.Controller, data *form.Data) submit.Outcome {
		return c.Submit(ctx, data)
	}),
}

func init() {
	rootCmd.AddCommand(faceScanCmd)
	addSubmitFlags(faceScanCmd)
}
