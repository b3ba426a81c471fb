package validator

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dueRequest struct {
	DueDate time.Time `validate:"required,future"`
}

type optionalDueRequest struct {
	DueDate *time.Time `validate:"omitempty,future"`
}

func TestFuture(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	v := validator.New()
	require.NoError(t, RegisterOn(v))

	tests := []struct {
		name    string
		due     time.Time
		wantErr bool
	}{
		{"明天", fixed.Add(24 * time.Hour), false},
		{"一秒后", fixed.Add(time.Second), false},
		{"当前时间", fixed, true},
		{"昨天", fixed.Add(-24 * time.Hour), true},
		{"零值", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(dueRequest{DueDate: tt.due})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFuture_Pointer(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	past := time.Now().Add(-time.Hour)
	later := time.Now().Add(time.Hour)

	assert.NoError(t, v.Struct(optionalDueRequest{}))
	assert.NoError(t, v.Struct(optionalDueRequest{DueDate: &later}))
	assert.Error(t, v.Struct(optionalDueRequest{DueDate: &past}))
}

func TestRegister_Idempotent(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register())
}
