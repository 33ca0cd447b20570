package report

import "github.com/chmouel/p4status/internal/models"

// GroupConflicts returns one group per file opened by more than one entry.
// Files keep their first-seen order and entries their encounter order;
// entries without a path are ignored.
func GroupConflicts(entries []models.OpenedFile) []models.ConflictGroup {
	var order []string
	grouped := make(map[string][]models.OpenedFile)
	for _, e := range entries {
		if e.File == "" {
			continue
		}
		if _, seen := grouped[e.File]; !seen {
			order = append(order, e.File)
		}
		grouped[e.File] = append(grouped[e.File], e)
	}

	conflicts := []models.ConflictGroup{}
	for _, file := range order {
		if group := grouped[file]; len(group) > 1 {
			conflicts = append(conflicts, models.ConflictGroup{File: file, Entries: group})
		}
	}
	return conflicts
}
