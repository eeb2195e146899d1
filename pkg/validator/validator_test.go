package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kind string

type sample struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Type      kind      `json:"movement_type" validate:"required,movement_type"`
	Role      string    `json:"role" validate:"omitempty,role"`
	Alert     string    `json:"alert_type,omitempty" validate:"omitempty,alert_type"`
}

func TestValidateStruct(t *testing.T) {
	ok := sample{ProductID: uuid.New(), Type: "damaged", Role: "manager", Alert: "reorder_point"}
	assert.Empty(t, ValidateStruct(&ok))

	errs := ValidateStruct(&sample{Type: "teleport", Role: "owner", Alert: "system"})
	require.Len(t, errs, 4)

	got := map[string]string{}
	for _, e := range errs {
		got[e.FailedField] = e.Tag
	}
	assert.Equal(t, map[string]string{
		"product_id":    "uuid_required",
		"movement_type": "movement_type",
		"role":          "role",
		"alert_type":    "alert_type",
	}, got)
}
