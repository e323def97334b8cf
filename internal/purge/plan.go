package purge

import (
	"context"

	"prunarr/internal/logging"
	"prunarr/internal/reconcile"
	"prunarr/internal/requests"
)

// PlanItem is the dry-run verdict for one requested title.
type PlanItem struct {
	Requested  string `json:"requested"`
	Key        string `json:"key"`
	Match      bool   `json:"match"`
	MovieID    int64  `json:"movie_id,omitempty"`
	Year       int    `json:"year,omitempty"`
	Path       string `json:"path,omitempty"`
	SizeOnDisk int64  `json:"size_on_disk_bytes,omitempty"`
}

// Plan lists what a run would delete right now.
type Plan struct {
	Items      []PlanItem `json:"items"`
	Matched    int        `json:"matched"`
	Missing    int        `json:"missing"`
	TotalBytes int64      `json:"total_bytes"`
	TotalGB    int64      `json:"total_gb"`
	Collisions []string   `json:"collisions,omitempty"`
}

// Plan resolves the request list against the live catalog with the same
// matching rule as Run, without deleting anything. A title requested twice is
// reported as a match both times even though a run would only delete it once.
func (r *Runner) Plan(ctx context.Context) (*Plan, error) {
	logger := logging.WithContext(ctx, r.logger)

	requested, err := requests.ReadFile(r.cfg.Paths.RequestsFile)
	if err != nil {
		return nil, err
	}
	index, err := r.fetchIndex(ctx, logger)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Items: make([]PlanItem, 0, len(requested)), Collisions: index.Collisions()}
	for _, title := range requested {
		key := reconcile.Normalize(title)
		item := PlanItem{Requested: title, Key: key}
		if entry, ok := index.Lookup(key); ok {
			item.Match = true
			item.MovieID = entry.ID
			item.Year = entry.Year
			item.Path = entry.Path
			item.SizeOnDisk = entry.SizeOnDisk
			plan.Matched++
			plan.TotalBytes += entry.SizeOnDisk
		} else {
			plan.Missing++
		}
		plan.Items = append(plan.Items, item)
	}
	plan.TotalGB = reconcile.RoundGB(plan.TotalBytes)
	logger.Info("plan built",
		logging.Int("matched", plan.Matched),
		logging.Int("missing", plan.Missing),
		logging.Int64("total_gb", plan.TotalGB),
	)
	return plan, nil
}
