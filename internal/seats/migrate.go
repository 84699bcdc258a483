package seats

import (
	"regexp"

	"gatta/internal/models"
)

// legacyPlaceholder matches the "شخص 1", "شخص 2" names that schema v0
// pre-filled into every seat instead of leaving it empty.
var legacyPlaceholder = regexp.MustCompile(`^شخص\s+\d+$`)

type migration func(rows []models.SeatRow) []models.SeatRow

// migrations[v] upgrades rows from schema v to v+1
var migrations = []migration{
	vacateLegacyPlaceholders,
}

// Migrate upgrades member rows written under an older schema version to the
// current one. It never touches the caller's slice.
func Migrate(version int, rows []models.SeatRow) []models.SeatRow {
	out := make([]models.SeatRow, len(rows))
	copy(out, rows)

	if version < 0 {
		version = 0
	}
	for v := version; v < models.CurrentSchemaVersion && v < len(migrations); v++ {
		out = migrations[v](out)
	}
	return out
}

// vacateLegacyPlaceholders turns unpaid placeholder seats into vacancies.
// A paid placeholder was confirmed by someone and keeps its name.
func vacateLegacyPlaceholders(rows []models.SeatRow) []models.SeatRow {
	for i := range rows {
		if rows[i].Paid {
			continue
		}
		if legacyPlaceholder.MatchString(CleanName(rows[i].Name)) {
			rows[i].Name = ""
		}
	}
	return rows
}
