package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"animeapi/internal/anime"
	"animeapi/internal/config"
	"animeapi/internal/services"
	"animeapi/internal/store"
)

type statusView struct {
	Records int            `json:"records"`
	Pending int            `json:"pending_changes"`
	Counts  map[string]int `json:"counts"`
	LastRun *runView       `json:"last_run,omitempty"`
}

type runView struct {
	ID         string `json:"run_id"`
	Status     string `json:"status"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
	Records    int    `json:"records"`
	Inserts    int    `json:"inserts"`
	Updates    int    `json:"updates"`
	Deletes    int    `json:"deletes"`
	ErrorStage string `json:"error_stage,omitempty"`
	Error      string `json:"error,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-platform counts and the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				view, err := loadStatus(cmd, st)
				if err != nil {
					return services.Wrap(services.ErrPersistence, "status", "read store", "", err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, view)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderStatus(view, shouldColorize(cmd.OutOrStdout())))
				return nil
			})
		},
	}
}

func loadStatus(cmd *cobra.Command, st *store.Store) (statusView, error) {
	c := cmd.Context()
	var view statusView
	var err error
	if view.Records, err = st.Count(c); err != nil {
		return view, err
	}
	if view.Pending, err = st.PendingCount(c); err != nil {
		return view, err
	}
	if view.Counts, err = st.PlatformCounts(c); err != nil {
		return view, err
	}
	run, err := st.LastRun(c)
	if err != nil {
		return view, err
	}
	if run != nil {
		view.LastRun = &runView{
			ID:         run.ID,
			Status:     string(run.Status),
			StartedAt:  run.StartedAt.Format(time.RFC3339),
			Records:    run.Records,
			Inserts:    run.Inserts,
			Updates:    run.Updates,
			Deletes:    run.Deletes,
			ErrorStage: run.ErrorStage,
			Error:      run.ErrorMessage,
		}
		if !run.FinishedAt.IsZero() {
			view.LastRun.FinishedAt = run.FinishedAt.Format(time.RFC3339)
		}
	}
	return view, nil
}

func renderStatus(view statusView, colorize bool) string {
	rows := make([][]string, 0, len(anime.Platforms)+1)
	for _, name := range anime.PlatformNames() {
		rows = append(rows, []string{name, strconv.Itoa(view.Counts[name])})
	}
	rows = append(rows, []string{"total", strconv.Itoa(view.Records)})

	var b strings.Builder
	b.WriteString(renderTable([]string{"Platform", "Records"}, rows, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Pending KV changes: %d\n", view.Pending)

	if view.LastRun == nil {
		b.WriteString("No runs recorded yet")
		return b.String()
	}
	run := view.LastRun
	runRows := [][]string{
		{"Run", run.ID},
		{"Status", statusLabel(run.Status, colorize)},
		{"Started", run.StartedAt},
		{"Finished", run.FinishedAt},
		{"Changes", fmt.Sprintf("%d inserts, %d updates, %d deletes", run.Inserts, run.Updates, run.Deletes)},
	}
	if run.ErrorStage != "" {
		runRows = append(runRows, []string{"Failed stage", run.ErrorStage})
	}
	if run.Error != "" {
		runRows = append(runRows, []string{"Error", run.Error})
	}
	b.WriteString(renderTable([]string{"Last run", ""}, runRows, nil))
	return b.String()
}
