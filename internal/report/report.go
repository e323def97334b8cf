package report

import "prunarr/internal/reconcile"

// Summary is the "_summary" block of the deleted document.
type Summary struct {
	MoviesDeleted int    `json:"movies_deleted"`
	SpaceSavedGB  int64  `json:"space_saved_gb"`
	DateDeleted   string `json:"date_deleted"`
}

// DeletedMovie is one entry of "movies_deleted".
type DeletedMovie struct {
	Title           string  `json:"title"`
	Year            int     `json:"year"`
	Path            string  `json:"path"`
	SizeOnDiskBytes int64   `json:"size_on_disk_bytes"`
	SizeOnDiskGB    float64 `json:"size_on_disk_gb"`
}

// MissingMovie is one entry of "movies_not_found".
type MissingMovie struct {
	Title string `json:"title"`
}

// DeletedDocument is persisted as movies_deleted.json.
type DeletedDocument struct {
	Summary       Summary        `json:"_summary"`
	MoviesDeleted []DeletedMovie `json:"movies_deleted"`
}

// NotFoundDocument is persisted as movies_not_found.json.
type NotFoundDocument struct {
	MoviesNotFound []MissingMovie `json:"movies_not_found"`
}

// Build splits outcomes into the two report documents, keeping request order.
func Build(outcomes []reconcile.Outcome, summary reconcile.Summary) (DeletedDocument, NotFoundDocument) {
	deleted := DeletedDocument{
		Summary: Summary{
			MoviesDeleted: summary.DeletedCount,
			SpaceSavedGB:  summary.SpaceSavedGB,
			DateDeleted:   summary.DateStamp(),
		},
		MoviesDeleted: make([]DeletedMovie, 0, summary.DeletedCount),
	}
	notFound := NotFoundDocument{MoviesNotFound: make([]MissingMovie, 0, summary.NotFoundCount)}

	for _, outcome := range outcomes {
		switch outcome.Kind {
		case reconcile.OutcomeDeleted:
			deleted.MoviesDeleted = append(deleted.MoviesDeleted, DeletedMovie{
				Title:           outcome.Title,
				Year:            outcome.Year,
				Path:            outcome.Path,
				SizeOnDiskBytes: outcome.SizeOnDisk,
				SizeOnDiskGB:    reconcile.GB(outcome.SizeOnDisk),
			})
		case reconcile.OutcomeNotFound:
			notFound.MoviesNotFound = append(notFound.MoviesNotFound, MissingMovie{Title: outcome.Title})
		}
	}
	return deleted, notFound
}
