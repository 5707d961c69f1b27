package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceauth/internal/stub"
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Start a scripted face-auth server",
	Long: `Start a stand-in for the face-auth server. It serves the signup, login
and face scan pages and answers their submissions from a scenario file;
without one every submission succeeds.`,
	RunE: runStub,
}

func init() {
	rootCmd.AddCommand(stubCmd)

	stubCmd.Flags().Int("port", 0, "Port to listen on (overrides STUB_PORT)")
	stubCmd.Flags().String("host", "", "Host to bind to (overrides STUB_HOST)")
	stubCmd.Flags().String("scenario", "", "Scenario YAML file (overrides STUB_SCENARIO)")
	stubCmd.Flags().String("session-secret", "", "Secret for signing CSRF tokens (defaults to random)")
}

func runStub(cmd *cobra.Command, args []string) error {
	cfg := loadConfig().Stub

	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Host = host
	}
	if path := mustGetString(cmd, "scenario"); path != "" {
		cfg.ScenarioPath = path
	}
	if secret := mustGetString(cmd, "session-secret"); secret != "" {
		cfg.SessionSecret = secret
	}

	scenario, err := stub.LoadScenario(cfg.ScenarioPath)
	if err != nil {
		return err
	}
	if cfg.ScenarioPath != "" {
		fmt.Printf("Loaded %d rules from %s\n", len(scenario.Rules), cfg.ScenarioPath)
	}

	server := stub.NewServer(scenario, stub.Options{
		Host:           cfg.Host,
		Port:           cfg.Port,
		SessionSecret:  cfg.SessionSecret,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Stub server on http://%s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.Start()
}
