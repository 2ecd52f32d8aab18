package money_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/Madofly35/GestLoc/internal/money"
)

func TestParse(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    money.Cents
		wantErr bool
	}

	tests := []testCase{
		{name: "Integer", input: "650", want: 65000},
		{name: "Dot", input: "650.5", want: 65050},
		{name: "Comma", input: "49,99", want: 4999},
		{name: "Grouped", input: "1 234,56", want: 123456},
		{name: "Rounded", input: "10.005", want: 1001},
		{name: "Invalid", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCents_JSON(t *testing.T) {
	var payload struct {
		Rent    money.Cents `json:"rent"`
		Charges money.Cents `json:"charges"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"rent": 650.5, "charges": "50"}`), &payload))
	assert.Equal(t, money.Cents(65050), payload.Rent)
	assert.Equal(t, money.Cents(5000), payload.Charges)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rent": 650.50, "charges": 50.00}`, string(out))
}

func TestCents_UnmarshalJSON(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    money.Cents
		wantErr bool
	}

	tests := []testCase{
		{name: "Number", input: `650.5`, want: 65050},
		{name: "QuotedDot", input: `"650.50"`, want: 65050},
		{name: "QuotedComma", input: `"650,50"`, want: 65050},
		{name: "QuotedGrouped", input: `"1 234,56"`, want: 123456},
		{name: "QuotedInvalid", input: `"abc"`, wantErr: true},
		{name: "Bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got money.Cents

			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCents_Format(t *testing.T) {
	assert.Equal(t, "700.00", money.Cents(70000).String())
	assert.Contains(t, money.Cents(70050).Format(language.French), "700,50")
}
