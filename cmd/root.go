package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	serverURL  string
	captureDir string
	formsPath  string
)

var rootCmd = &cobra.Command{
	Use:   "faceauth",
	Short: "Drive the face-auth signup and login forms from the terminal",
	Long: `faceauth submits the signup, login and face scan forms of a face-auth
server the way its web front end does: the form data is posted in the
background, a successful result is followed to its redirect target and a
rejected one is reported as an alert.

A scripted stand-in for the server is available with "faceauth stub".`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "", "Server base URL (overrides FACEAUTH_URL)")
	rootCmd.PersistentFlags().StringVar(&captureDir, "capture", "", "Directory to save endpoint responses for testing")
	rootCmd.PersistentFlags().StringVar(&formsPath, "forms", "", "YAML file with form definitions (overrides FACEAUTH_FORMS)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
