package simulator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lox/pokertable/internal/table"
)

// TableReport summarizes one simulated table.
type TableReport struct {
	ID        string `json:"id"`
	Hands     int    `json:"hands"`
	Aborted   int    `json:"aborted"`
	Showdowns int    `json:"showdowns"`
	MultiRun  int    `json:"multi_run"`
	Rebuys    int    `json:"rebuys"`
	Chips     int    `json:"chips"` // on the table at the end, including rebuys
}

// Report is the outcome of a simulation.
type Report struct {
	Seed     int64               `json:"seed"`
	Tables   []TableReport       `json:"tables"`
	Players  []table.PlayerStats `json:"players"`
	Duration time.Duration       `json:"duration_ns"`
}

// Hands returns the number of hands dealt across all tables.
func (r *Report) Hands() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Hands
	}
	return n
}

// PrintSummary writes a human readable report.
func PrintSummary(w io.Writer, r *Report) {
	fmt.Fprintf(w, "\n=== SIMULATION (seed %d) ===\n", r.Seed)
	fmt.Fprintf(w, "Hands played: %d in %s\n", r.Hands(), r.Duration.Round(time.Millisecond))

	fmt.Fprintf(w, "\n=== TABLES ===\n")
	for _, t := range r.Tables {
		fmt.Fprintf(w, "%-10s hands=%d showdowns=%d multi-run=%d aborted=%d rebuys=%d chips=%d\n",
			t.ID, t.Hands, t.Showdowns, t.MultiRun, t.Aborted, t.Rebuys, t.Chips)
	}

	fmt.Fprintf(w, "\n=== PLAYERS ===\n")
	for _, p := range r.Players {
		fmt.Fprintf(w, "%-8s hands=%-6d net=%-8d bb/100=%8.2f sd=%6.2f wins=%d (showdown %d, fold equity %d)\n",
			p.PlayerID, p.Hands, p.NetChips, p.BB100, p.StdDev, p.WinningHands, p.ShowdownWins, p.NonShowdownWins)
	}
}

// WriteFile stores the report as JSON. The file is written to a temporary
// name and renamed, so readers never see a partial report.
func (r *Report) WriteFile(filename string) (err error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync report: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}
