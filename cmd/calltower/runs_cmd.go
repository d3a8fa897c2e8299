package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/funvibe/calltower/internal/store"
)

func newRunsCmd(a *app) *cobra.Command {
	var dbPath string
	var limit int
	var runID string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs recorded in the outcome store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = a.settings.Store.Path
			}
			if dbPath == "" {
				return errors.New("no store configured: pass --db or set store.path")
			}
			db, err := store.Open(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			if runID != "" {
				outcomes, err := db.Outcomes(cmd.Context(), runID)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "CASE\tOUTCOME\tSYMBOL\tCODE\tRENDERED")
				for _, o := range outcomes {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.Case, o.Outcome, o.Symbol, o.Code, o.Rendered)
				}
				return w.Flush()
			}

			runs, err := db.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "RUN\tFILE\tSTARTED\tPASSED\tFAILED")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", r.ID, r.File, r.StartedAt.Local().Format(time.DateTime), r.Passed, r.Failed)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database (default from settings)")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list, 0 for all")
	cmd.Flags().StringVar(&runID, "run", "", "show the outcomes of one run")
	return cmd
}
