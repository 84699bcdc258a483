package repository

import (
	"testing"

	"gatta/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildSeatInsert(t *testing.T) {
	query, args := buildSeatInsert("pot", []models.SeatRow{{ID: "a"}, {ID: "b", Name: "Sara", Paid: true}})

	assert.Equal(t, "INSERT INTO seats (id, pot_id, name, paid) VALUES ($1, $2, $3, $4), ($5, $6, $7, $8)", query)
	assert.Equal(t, []any{"a", "pot", "", false, "b", "pot", "Sara", true}, args)
}
