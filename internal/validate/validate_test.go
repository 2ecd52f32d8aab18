package validate_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/validate"
)

type person struct {
	FirstName   string    `validate:"required,min=2,max=50"`
	Email       string    `validate:"required,email"`
	Phone       string    `validate:"required,phone"`
	DateOfBirth time.Time `validate:"required,notfuture"`
	RoomID      string    `validate:"omitempty,uuid"`
}

func TestStruct(t *testing.T) {
	valid := person{
		FirstName:   "Camille",
		Email:       "camille@example.com",
		Phone:       "+33 0612345678",
		DateOfBirth: time.Date(1995, 3, 2, 0, 0, 0, 0, time.UTC),
	}

	type testCase struct {
		name       string
		mutate     func(p *person)
		wantFields map[string]string
	}

	tests := []testCase{
		{
			name:   "Valid",
			mutate: func(*person) {},
		},
		{
			name:       "ShortName",
			mutate:     func(p *person) { p.FirstName = "C" },
			wantFields: map[string]string{"first_name": "must be at least 2 characters"},
		},
		{
			name:       "BadEmail",
			mutate:     func(p *person) { p.Email = "camille" },
			wantFields: map[string]string{"email": "must be a valid email address"},
		},
		{
			name:       "BadPhone",
			mutate:     func(p *person) { p.Phone = "12-34" },
			wantFields: map[string]string{"phone": "must be a valid phone number"},
		},
		{
			name:       "FutureBirthDate",
			mutate:     func(p *person) { p.DateOfBirth = time.Now().AddDate(1, 0, 0) },
			wantFields: map[string]string{"date_of_birth": "cannot be in the future"},
		},
		{
			name:       "BadRoomID",
			mutate:     func(p *person) { p.RoomID = "room-1" },
			wantFields: map[string]string{"room_id": "is invalid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)

			err := validate.Struct(p)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, apperr.ErrValidation)

			var verr *apperr.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantFields, verr.Fields)
		})
	}
}
