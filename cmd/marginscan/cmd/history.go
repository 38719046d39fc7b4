package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marginscan/internal/id"
	"github.com/rustyeddy/marginscan/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history [cycle-id]",
	Short: "Show journaled risk cycles",
	Long: `Print recent cycles from the SQLite journal as Org-mode blocks, newest
first. With a cycle ID the full record is shown, including per-position
contributions and any liquidation orders.

Examples:
  marginscan history --limit 5
  marginscan history 01J9Z3M4Q8K2X7V5N6B1C0D9E8`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var (
	historyLimit  int
	historyDBPath string
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of cycles to list (0 for all)")
	historyCmd.Flags().StringVarP(&historyDBPath, "db", "d", "", "SQLite journal path (default journal.db_path from the config)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := historyDBPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return fmt.Errorf("no SQLite journal configured; pass --db")
	}

	j, err := journal.NewSQLite(path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		rec, err := j.GetCycle(args[0])
		if err != nil {
			return fmt.Errorf("get cycle: %w", err)
		}
		liqs, err := j.ListLiquidations(rec.CycleID)
		if err != nil {
			return fmt.Errorf("list liquidations: %w", err)
		}
		fmt.Fprintln(out, journal.FormatCycleOrg(rec, liqs))
		if age, err := cycleAge(rec.CycleID, time.Now()); err == nil {
			fmt.Fprintf(out, "Age: %s\n", age)
		}
		return nil
	}

	recs, err := j.ListCycles(historyLimit)
	if err != nil {
		return fmt.Errorf("query cycles: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "No cycles journaled yet.")
		return nil
	}
	fmt.Fprintln(out, journal.FormatCyclesOrg(recs))
	return nil
}

// cycleAge reads the creation time out of a ULID cycle ID.
func cycleAge(cycleID string, now time.Time) (time.Duration, error) {
	created, err := id.Time(cycleID)
	if err != nil {
		return 0, err
	}
	return now.Sub(created).Truncate(time.Second), nil
}
