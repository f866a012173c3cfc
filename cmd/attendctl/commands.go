package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/attendance-ledger/internal/app"
	"github.com/iliyamo/attendance-ledger/internal/config"
	"github.com/iliyamo/attendance-ledger/internal/coordinator"
	"github.com/iliyamo/attendance-ledger/internal/export"
	"github.com/iliyamo/attendance-ledger/internal/model"
	"github.com/iliyamo/attendance-ledger/internal/report"
)

// cli holds flags and the lazily opened coordinator.
type cli struct {
	out     io.Writer
	timeout time.Duration
	verbose bool

	// open is replaced in tests.
	open func(ctx context.Context) (*coordinator.Coordinator, config.SyncConfig, func(), error)
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}
	c.open = c.openFromEnv

	root := &cobra.Command{
		Use:           "attendctl",
		Short:         "Inspect and export the attendance log",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "overall timeout for remote calls")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log sync activity to stderr")

	root.AddCommand(c.rosterCmd(), c.statusCmd(), c.reportCmd(), c.exportCmd(), c.recordCmd())
	return root
}

func (c *cli) openFromEnv(ctx context.Context) (*coordinator.Coordinator, config.SyncConfig, func(), error) {
	_ = godotenv.Load()
	sc, err := config.LoadSyncConfig()
	if err != nil {
		return nil, sc, nil, err
	}
	logger := zap.NewNop()
	if c.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, sc, nil, err
		}
	}
	store, release, err := app.OpenLogStore(ctx, config.LoadStoreConfig(), sc, logger)
	if err != nil {
		return nil, sc, nil, err
	}
	coord := coordinator.New(store, coordinator.Options{
		Location:          sc.Location,
		Language:          sc.Language,
		DefaultPassphrase: sc.DefaultPassphrase,
		Policy:            sc.Policy,
		WriteTimeout:      sc.WriteTimeout,
		Source:            "cli",
		Logger:            logger,
	})
	if err := coord.Start(ctx); err != nil {
		release()
		return nil, sc, nil, fmt.Errorf("load attendance log: %w", err)
	}
	return coord, sc, release, nil
}

// with opens the coordinator for the duration of fn.
func (c *cli) with(cmd *cobra.Command, fn func(ctx context.Context, coord *coordinator.Coordinator, sc config.SyncConfig) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
	defer cancel()
	coord, sc, release, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer release()
	defer func() { _ = coord.Close(ctx) }()
	return fn(ctx, coord, sc)
}

func (c *cli) rosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "List active employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.with(cmd, func(_ context.Context, coord *coordinator.Coordinator, _ config.SyncConfig) error {
				for _, name := range coord.Snapshot().RosterCopy() {
					fmt.Fprintln(c.out, name)
				}
				return nil
			})
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Load the log and summarise it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.with(cmd, func(_ context.Context, coord *coordinator.Coordinator, _ config.SyncConfig) error {
				p := coord.Snapshot()
				tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "status\t%s\n", coord.Status())
				fmt.Fprintf(tw, "rows\t%d\n", p.Rows)
				fmt.Fprintf(tw, "dropped\t%d\n", p.Dropped)
				fmt.Fprintf(tw, "employees\t%d\n", len(p.Roster))
				fmt.Fprintf(tw, "policy\t%s\n", coord.Policy())
				return tw.Flush()
			})
		},
	}
}

// windowFlags are shared by report and export.
type windowFlags struct {
	date        string
	granularity string
	policy      string
	wage        float64
}

func (f *windowFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "reference date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&f.granularity, "granularity", "g", "day", "day, week or month")
	cmd.Flags().StringVar(&f.policy, "policy", "", "preview under first-last or pairs instead of HOUR_POLICY")
	cmd.Flags().Float64Var(&f.wage, "wage", 0, "hourly wage for the pay estimate")
}

func (f *windowFlags) window(coord *coordinator.Coordinator, sc config.SyncConfig, employee string) (report.Window, error) {
	proj := coord.Snapshot()
	if !proj.HasEmployee(employee) && proj.EmployeeLogs(employee) == nil {
		return report.Window{}, fmt.Errorf("unknown employee %q", employee)
	}
	if f.wage < 0 {
		return report.Window{}, fmt.Errorf("wage must not be negative")
	}
	loc := coord.Location()
	now := time.Now().In(loc)
	ref := now
	if f.date != "" {
		_, t, err := model.ParseDate(f.date, loc)
		if err != nil {
			return report.Window{}, err
		}
		ref = t
	}
	g, err := model.ParseGranularity(f.granularity)
	if err != nil {
		return report.Window{}, err
	}
	policy := coord.Policy()
	if f.policy != "" {
		if policy, err = model.ParsePolicy(f.policy); err != nil {
			return report.Window{}, err
		}
	}
	return report.Assemble(proj.EmployeeLogs(employee), report.Query{
		Employee:    employee,
		Ref:         ref,
		Granularity: g,
		Policy:      policy,
		WeekStart:   sc.WeekStart,
		HourlyWage:  f.wage,
		Now:         now,
	}), nil
}

func (c *cli) reportCmd() *cobra.Command {
	var f windowFlags
	cmd := &cobra.Command{
		Use:   "report <employee>",
		Short: "Print an employee's hours for a day, week or month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.with(cmd, func(_ context.Context, coord *coordinator.Coordinator, sc config.SyncConfig) error {
				w, err := f.window(coord, sc, args[0])
				if err != nil {
					return err
				}
				return printWindow(c.out, w, coord.Location())
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func printWindow(out io.Writer, w report.Window, loc *time.Location) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s (%s, %s)\n", w.Employee, w.Period(), w.Granularity, w.Policy)
	fmt.Fprintln(tw, "DATE\tIN\tOUT\tHOURS")
	for _, s := range w.Summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", s.Date, clock(s.FirstIn, loc), clock(s.LastOut, loc), s.TotalHours)
	}
	fmt.Fprintf(tw, "total\t\t\t%.2f\n", w.TotalHours)
	fmt.Fprintf(tw, "days\t\t\t%d\n", w.Days)
	if w.HourlyWage > 0 {
		fmt.Fprintf(tw, "pay\t\t\t%.2f\n", w.EstimatedPay)
	}
	return tw.Flush()
}

func clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format("15:04")
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		f      windowFlags
		format string
		path   string
	)
	cmd := &cobra.Command{
		Use:   "export <employee>",
		Short: "Export a report window as CSV or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("format must be csv or xlsx")
			}
			return c.with(cmd, func(_ context.Context, coord *coordinator.Coordinator, sc config.SyncConfig) error {
				w, err := f.window(coord, sc, args[0])
				if err != nil {
					return err
				}
				if path == "" {
					path = fmt.Sprintf("attendance_%s_%s_%s.%s", w.Employee, w.Start, w.End, format)
				}
				file, err := os.Create(path)
				if err != nil {
					return err
				}
				if format == "xlsx" {
					err = export.WriteXLSX(file, w, coord.Location())
				} else {
					err = export.WriteCSV(file, w, coord.Location())
				}
				if cerr := file.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(c.out, path)
				return nil
			})
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&path, "out", "o", "", "output file (default derived from employee and period)")
	return cmd
}

func (c *cli) recordCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "record <employee> <checkin|checkout>",
		Short:     "Append a check-in or check-out",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(model.ActionCheckIn), string(model.ActionCheckOut)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.with(cmd, func(ctx context.Context, coord *coordinator.Coordinator, _ config.SyncConfig) error {
				rec, err := coord.RecordAttendance(ctx, args[0], model.Action(strings.ToLower(args[1])))
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "%s %s at %s %s\n", rec.Employee, rec.Action, rec.Date, rec.Time)
				return nil
			})
		},
	}
}
