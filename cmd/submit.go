package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceauth/internal/authclient"
	"github.com/kozaktomas/faceauth/internal/capture"
	"github.com/kozaktomas/faceauth/internal/config"
	"github.com/kozaktomas/faceauth/internal/form"
	"github.com/kozaktomas/faceauth/internal/prompt"
	"github.com/kozaktomas/faceauth/internal/submit"
)

// submitFunc hands the prepared data to the controller of a form.
type submitFunc func(ctx context.Context, c *submit.Controller, data *form.Data) submit.Outcome

// submitOptions are the inputs of one form submission from the CLI.
type submitOptions struct {
	formName    string
	fields      [][2]string
	files       [][2]string
	discover    bool
	page        string // page holding the form, defaults to its action
	follow      bool
	interactive bool
	maxSize     int
	progress    bool
}

// submitRun carries what a submission writes to and reads from.
type submitRun struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	driver prompt.Driver
}

func addSubmitFlags(c *cobra.Command) {
	c.Flags().StringArray("field", nil, "Form field as name=value (repeatable)")
	c.Flags().StringArray("file", nil, "File field as name=path (repeatable)")
	c.Flags().Bool("discover", false, "Read the form from the live page (hidden inputs, CSRF token, session cookie)")
	c.Flags().String("page", "", "Page holding the form for --discover (defaults to the form action)")
	c.Flags().Bool("follow", false, "Visit the redirect target after a successful submission")
	c.Flags().BoolP("interactive", "i", false, "Prompt for missing required fields")
	c.Flags().Int("max-size", 0, "Downscale images to this many pixels per side (overrides FACEAUTH_MAX_IMAGE_SIZE)")
	c.Flags().Bool("no-progress", false, "Hide the upload progress bar")
}

// loadConfig applies the persistent flags over the environment.
func loadConfig() *config.Config {
	cfg := config.Load()
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if captureDir != "" {
		cfg.Client.CaptureDir = captureDir
	}
	if formsPath != "" {
		cfg.Server.FormsPath = formsPath
	}
	return cfg
}

// submitCommand returns the RunE of a form command.
func submitCommand(formName string, fn submitFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		fields, err := parseAssignments("field", mustGetStringArray(cmd, "field"))
		if err != nil {
			return err
		}
		files, err := parseAssignments("file", mustGetStringArray(cmd, "file"))
		if err != nil {
			return err
		}

		cfg := loadConfig()
		opts := submitOptions{
			formName:    formName,
			fields:      fields,
			files:       files,
			discover:    mustGetBool(cmd, "discover"),
			page:        mustGetString(cmd, "page"),
			follow:      mustGetBool(cmd, "follow"),
			interactive: mustGetBool(cmd, "interactive"),
			maxSize:     cfg.Capture.MaxImageSize,
			progress:    !mustGetBool(cmd, "no-progress"),
		}
		if cmd.Flags().Changed("max-size") {
			opts.maxSize = mustGetInt(cmd, "max-size")
		}

		run := &submitRun{cfg: cfg, stdout: os.Stdout, stderr: os.Stderr, driver: prompt.NewSurveyDriver()}
		out, err := run.submit(cmd.Context(), opts, fn)
		if err != nil {
			return err
		}
		return outcomeError(out)
	}
}

// submit builds the client, the form data and the controller, and submits.
func (r *submitRun) submit(ctx context.Context, opts submitOptions, fn submitFunc) (submit.Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	def, err := r.cfg.Form(opts.formName)
	if err != nil {
		return submit.Outcome{}, err
	}

	clientOpts := []authclient.Option{
		authclient.WithTimeout(r.cfg.Client.Timeout),
		authclient.WithCapture(r.cfg.Client.CaptureDir),
	}
	if opts.progress && len(opts.files) > 0 {
		clientOpts = append(clientOpts, authclient.WithUploadObserver(r.uploadBar))
	}
	client, err := authclient.New(r.cfg.Server.URL, clientOpts...)
	if err != nil {
		return submit.Outcome{}, fmt.Errorf("could not create client: %w", err)
	}

	if opts.discover {
		page := opts.page
		if page == "" {
			page = def.Action
		}
		live, err := client.FetchForm(ctx, page, def.ID)
		if err != nil {
			return submit.Outcome{}, fmt.Errorf("could not discover %s form: %w", def.Name, err)
		}
		def = def.Merge(live)
	}

	data, err := r.buildData(def, opts)
	if err != nil {
		return submit.Outcome{}, err
	}
	if opts.interactive {
		if err := prompt.FillMissing(ctx, r.driver, def, data); err != nil {
			return submit.Outcome{}, err
		}
	}

	nav := &cliNavigator{client: client, follow: opts.follow, out: r.stdout}
	controller := submit.NewController(def, client, nav,
		submit.NotifierFunc(func(message string) {
			fmt.Fprintf(r.stderr, "alert: %s\n", message)
		}),
		submit.WithLogger(log.New(r.stderr, "faceauth: ", log.LstdFlags)),
	)
	nav.endpoint = controller.Endpoint()

	out := fn(ctx, controller, data)
	if out.Result != nil && out.Result.Duplicate {
		fmt.Fprintf(r.stderr, "warning: face already registered as %q\n", out.Result.PicName)
	}
	return out, nil
}

// buildData seeds the definition's defaults and applies the flag values.
// The first value of a name replaces its default, later ones are appended.
func (r *submitRun) buildData(def *form.Definition, opts submitOptions) (*form.Data, error) {
	data := form.NewData(def)

	seen := make(map[string]bool)
	for _, kv := range opts.fields {
		name, value := kv[0], kv[1]
		if _, ok := def.Field(name); !ok {
			fmt.Fprintf(r.stderr, "warning: field %q is not part of the %s form\n", name, def.Name)
		}
		if seen[name] {
			data.Append(name, value)
		} else {
			data.Set(name, value)
			seen[name] = true
		}
	}

	for _, kv := range opts.files {
		name, path := kv[0], kv[1]
		file, err := capture.Load(path, opts.maxSize)
		if err != nil {
			return nil, fmt.Errorf("could not load --file %s: %w", name, err)
		}
		if seen[name] {
			data.AppendFile(name, file)
		} else {
			data.SetFile(name, file)
			seen[name] = true
		}
	}
	return data, nil
}

func (r *submitRun) uploadBar(size int64) io.Writer {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(r.stderr),
		progressbar.OptionSetDescription("Uploading"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionClearOnFinish(),
	)
}

// cliNavigator reports the redirect target and optionally visits it.
// Relative targets are resolved against the endpoint that answered.
type cliNavigator struct {
	client   *authclient.Client
	endpoint string
	follow   bool
	out      io.Writer
}

func (n *cliNavigator) Navigate(ctx context.Context, location string) error {
	target, err := n.client.ResolveFrom(n.endpoint, location)
	if err != nil {
		return err
	}
	fmt.Fprintf(n.out, "redirect: %s\n", target)
	if !n.follow {
		return nil
	}

	status, final, err := n.client.Visit(ctx, target.String())
	if err != nil {
		return err
	}
	fmt.Fprintf(n.out, "visited: %s (%d)\n", final, status)
	return nil
}

// outcomeError maps every outcome but a redirect to a command error.
func outcomeError(out submit.Outcome) error {
	switch out.State {
	case submit.StateRedirected:
		return nil
	case submit.StateRejected:
		return errors.New("submission rejected")
	case submit.StateInvalid:
		return fmt.Errorf("form not submitted: %w", out.Err)
	}
	if out.Err != nil {
		return fmt.Errorf("submission %s: %w", out.State, out.Err)
	}
	return fmt.Errorf("submission %s", out.State)
}
