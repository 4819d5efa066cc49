package pipeline

import (
	"time"

	"animeapi/internal/fileutil"
	"animeapi/internal/link"
)

// Updated is the status timestamp in both machine and human form.
type Updated struct {
	Timestamp int64  `json:"timestamp"`
	ISO       string `json:"iso"`
}

// ChangeCounts is the changeset size of the run.
type ChangeCounts struct {
	Inserts int `json:"inserts"`
	Updates int `json:"updates"`
	Deletes int `json:"deletes"`
}

// Status is the document written to status.json after a successful run.
// Counts holds one entry per platform plus "total".
type Status struct {
	Updated  Updated        `json:"updated"`
	RunID    string         `json:"run_id"`
	Changes  ChangeCounts   `json:"changes"`
	Unlinked map[string]int `json:"unlinked"`
	Counts   map[string]int `json:"counts"`
}

func newStatus(runID string, counts map[string]int, total int, summary *Summary) Status {
	now := time.Now().UTC()
	merged := make(map[string]int, len(counts)+1)
	for platform, count := range counts {
		merged[platform] = count
	}
	merged["total"] = total
	return Status{
		Updated: Updated{
			Timestamp: now.Unix(),
			ISO:       now.Format(time.RFC3339),
		},
		RunID: runID,
		Changes: ChangeCounts{
			Inserts: summary.Inserts,
			Updates: summary.Updates,
			Deletes: summary.Deletes,
		},
		Unlinked: summary.Unlinked,
		Counts:   merged,
	}
}

func writeStatus(path string, status Status) error {
	return fileutil.WriteJSON(path, status)
}

func writeUnlinked(path string, entries []link.Unlinked) error {
	return fileutil.WriteJSON(path, entries)
}
