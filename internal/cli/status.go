package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bnema/recap/internal/domain"
)

type StatusOptions struct {
	GlobalOptions

	Output string
}

func DefaultStatusOptions() *StatusOptions {
	return &StatusOptions{GlobalOptions: DefaultGlobalOptions()}
}

func NewCmdStatus() *cobra.Command {
	o := DefaultStatusOptions()
	cmd := &cobra.Command{
		Use:   "status [JOB_ID]",
		Short: "Show one job with its event history, or list every job.",
		Args:  cobra.MaximumNArgs(1),
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

func (o *StatusOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output format: json or yaml. Defaults to a table.")
}

func (o *StatusOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if len(args) == 1 {
		if err := domain.ValidateJobID(args[0]); err != nil {
			return fmt.Errorf("job id %q: %w", args[0], err)
		}
	}
	if o.Output == "" {
		return nil
	}
	return validateOutput(o.Output)
}

func (o *StatusOptions) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	app, err := o.App()
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	w := cmd.OutOrStdout()
	if len(args) == 0 {
		jobs, err := app.Pipeline.ListJobs(ctx)
		if err != nil {
			return fmt.Errorf("listing jobs: %w", err)
		}
		if o.Output != "" {
			return printResult(w, jobs, o.Output)
		}
		return printJobTable(w, jobs)
	}

	view, err := app.Pipeline.Status(ctx, args[0])
	if err != nil {
		return fmt.Errorf("reading job %s: %w", args[0], err)
	}
	runs, err := app.Jobs.Runs(args[0])
	if err != nil {
		return fmt.Errorf("reading runs of job %s: %w", args[0], err)
	}
	if o.Output != "" {
		return printResult(w, struct {
			Status domain.JobStatus    `json:"status"`
			Events []domain.StageEvent `json:"events"`
			Runs   []domain.Run        `json:"runs"`
		}{view.Status, view.Events, runs}, o.Output)
	}
	return printEventTable(w, view.Status, view.Events)
}

func printJobTable(w io.Writer, jobs []domain.JobStatus) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB ID\tSTATE\tLAST ACTIVITY\tEVENTS\tUPDATED")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", j.JobID, j.State, j.LastActivity, j.EventCount, j.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func printEventTable(w io.Writer, status domain.JobStatus, events []domain.StageEvent) error {
	fmt.Fprintf(w, "job %s: %s\n", status.JobID, status.State)
	if status.LastError != "" {
		fmt.Fprintf(w, "last error: %s\n", status.LastError)
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tACTIVITY")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\n", e.Timestamp.Format(time.RFC3339), e.Activity)
	}
	return tw.Flush()
}
