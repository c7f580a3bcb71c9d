package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bnema/recap/internal/domain"
)

type RunJobOptions struct {
	GlobalOptions

	JobID       string
	Mode        string
	OptionsFile string
	Output      string
}

func DefaultRunJobOptions() *RunJobOptions {
	return &RunJobOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Mode:          string(domain.RunModeSummarize),
		Output:        jsonFormat,
	}
}

func NewCmdRun() *cobra.Command {
	o := DefaultRunJobOptions()
	cmd := &cobra.Command{
		Use:   "run VIDEO",
		Short: "Process a recording in the foreground.",
		Long: "Ingest VIDEO and run every stage up to moment analysis (--mode full) " +
			"or through composition of the summary (--mode summarize).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd, args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *RunJobOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVar(&o.JobID, "job-id", o.JobID, "Job id to use instead of a generated one")
	fs.StringVar(&o.Mode, "mode", o.Mode, "Flow to run: full or summarize")
	fs.StringVarP(&o.OptionsFile, "options", "f", o.OptionsFile, "JSON or YAML run options file, - for stdin")
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output format: json or yaml")
}

func (o *RunJobOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	if o.JobID == "" {
		o.JobID = domain.NewJobID()
	}
	return nil
}

func (o *RunJobOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	switch domain.RunMode(o.Mode) {
	case domain.RunModeFull, domain.RunModeSummarize:
	default:
		return fmt.Errorf("mode must be one of %s, %s", domain.RunModeFull, domain.RunModeSummarize)
	}
	if err := domain.ValidateJobID(o.JobID); err != nil {
		return fmt.Errorf("job id %q: %w", o.JobID, err)
	}
	return validateOutput(o.Output)
}

// runOptions merges the options file over the defaults.
func (o *RunJobOptions) runOptions() (domain.RunOptions, error) {
	opts := domain.DefaultRunOptions()
	raw, err := readOptions(o.OptionsFile)
	if err != nil || raw == nil {
		return opts, err
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return opts, fmt.Errorf("decoding run options: %w", err)
	}
	return opts, nil
}

func (o *RunJobOptions) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	opts, err := o.runOptions()
	if err != nil {
		return err
	}

	app, err := o.App()
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	source, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	name := filepath.Base(source)

	var result *domain.PipelineResult
	if domain.RunMode(o.Mode) == domain.RunModeFull {
		result, err = app.Pipeline.ProcessFull(ctx, o.JobID, source, name, opts)
	} else {
		result, err = app.Pipeline.ProcessAndSummarize(ctx, o.JobID, source, name, opts)
	}
	if err != nil {
		return fmt.Errorf("job %s: %w", o.JobID, err)
	}
	return printResult(cmd.OutOrStdout(), struct {
		JobID string `json:"jobId"`
		*domain.PipelineResult
	}{o.JobID, result}, o.Output)
}
