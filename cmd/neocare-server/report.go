package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/neocare/neocare/internal/domain/alerts"
	"github.com/neocare/neocare/internal/domain/performance"
	"github.com/neocare/neocare/internal/domain/resources"
	"github.com/neocare/neocare/internal/rules"
	"github.com/neocare/neocare/internal/store/memory"
)

// reportOptions are the flags shared by every report kind.
type reportOptions struct {
	input      string
	hospitalID string
	rulesFile  string
	at         string
	days       int
	limit      int
	xlsx       string
}

// reportEnv is what a report kind needs once the flags are resolved.
type reportEnv struct {
	store    *memory.Store
	rules    *rules.Holder
	facility *uuid.UUID
	now      func() time.Time
}

func reportCmd() *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute dashboard payloads offline from a JSON record dump",
	}
	cmd.PersistentFlags().StringVar(&opts.input, "input", "", "Path to the JSON record dump (required)")
	cmd.PersistentFlags().StringVar(&opts.hospitalID, "hospital-id", "", "Restrict the report to one hospital")
	cmd.PersistentFlags().StringVar(&opts.rulesFile, "rules", "", "Rules file overriding the built-in reference tables")
	cmd.PersistentFlags().StringVar(&opts.at, "at", "", "Evaluate as of this RFC3339 time instead of now")
	_ = cmd.MarkPersistentFlagRequired("input")

	departments := &cobra.Command{
		Use:   "departments",
		Short: "Department performance over a trailing window",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.env()
			if err != nil {
				return err
			}
			svc := performance.NewService(env.store, env.rules, newLogger(cmd.ErrOrStderr(), "", "warn")).WithClock(env.now)
			result := svc.Departments(cmd.Context(), env.facility, opts.days)

			if opts.xlsx != "" {
				data, err := performance.Workbook(result)
				if err != nil {
					return fmt.Errorf("build workbook: %w", err)
				}
				if err := os.WriteFile(opts.xlsx, data, 0o644); err != nil {
					return fmt.Errorf("write workbook: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", opts.xlsx)
			}
			return writeJSON(cmd, result)
		},
	}
	departments.Flags().IntVar(&opts.days, "days", 30, "Trailing window in days")
	departments.Flags().StringVar(&opts.xlsx, "xlsx", "", "Also write the report as an XLSX workbook to this path")

	occupancy := &cobra.Command{
		Use:   "occupancy",
		Short: "Bed occupancy per facility",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.env()
			if err != nil {
				return err
			}
			svc := resources.NewService(env.store, env.rules, newLogger(cmd.ErrOrStderr(), "", "warn")).WithClock(env.now)
			return writeJSON(cmd, svc.Beds(cmd.Context(), env.facility))
		},
	}

	alertsCmd := &cobra.Command{
		Use:   "alerts",
		Short: "Critical feed and category grouping of unresolved alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.env()
			if err != nil {
				return err
			}
			svc := alerts.NewService(env.store, newLogger(cmd.ErrOrStderr(), "", "warn")).WithClock(env.now)
			return writeJSON(cmd, struct {
				Critical *alerts.CriticalFeed `json:"critical"`
				Clinical *alerts.ClinicalFeed `json:"clinical"`
			}{
				Critical: svc.Critical(cmd.Context(), env.facility, opts.limit),
				Clinical: svc.Clinical(cmd.Context(), env.facility),
			})
		},
	}
	alertsCmd.Flags().IntVar(&opts.limit, "limit", 10, "Maximum number of critical alerts")

	cmd.AddCommand(departments, occupancy, alertsCmd)
	return cmd
}

func (o *reportOptions) env() (*reportEnv, error) {
	d, err := memory.LoadFile(o.input)
	if err != nil {
		return nil, err
	}

	current := rules.Default()
	if o.rulesFile != "" {
		if current, err = rules.Load(o.rulesFile); err != nil {
			return nil, err
		}
	}

	env := &reportEnv{
		store: memory.New(d),
		rules: rules.NewHolder(current),
		now:   time.Now,
	}

	if o.hospitalID != "" {
		id, err := uuid.Parse(o.hospitalID)
		if err != nil {
			return nil, fmt.Errorf("invalid --hospital-id: %w", err)
		}
		env.facility = &id
	}

	if o.at != "" {
		at, err := time.Parse(time.RFC3339, o.at)
		if err != nil {
			return nil, fmt.Errorf("invalid --at: %w", err)
		}
		env.now = func() time.Time { return at }
	}
	return env, nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
