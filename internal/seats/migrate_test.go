package seats

import (
	"testing"

	"gatta/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMigrateVacatesLegacyPlaceholders(t *testing.T) {
	in := []models.SeatRow{
		{ID: "1", Name: "شخص 1"},
		{ID: "2", Name: "شخص  2", Paid: true},
		{ID: "3", Name: " شخص 3 "},
		{ID: "4", Name: "Sara"},
	}

	got := Migrate(0, in)

	assert.Equal(t, "", got[0].Name)
	assert.Equal(t, "شخص  2", got[1].Name, "paid placeholders keep their name")
	assert.Equal(t, "", got[2].Name)
	assert.Equal(t, "Sara", got[3].Name)

	assert.Equal(t, "شخص 1", in[0].Name, "input must not be modified")
}

func TestMigrateCurrentVersionIsIdentity(t *testing.T) {
	in := []models.SeatRow{{ID: "1", Name: "شخص 1"}}
	got := Migrate(models.CurrentSchemaVersion, in)
	assert.Equal(t, in, got)
}
