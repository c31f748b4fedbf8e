package utils_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/utils"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{"plain integer string", "65000", 65000, true},
		{"currency with commas", "$65,000", 65000, true},
		{"padded decimals", "  1,234.56 ", 1234.56, true},
		{"percent sign", "20%", 20, true},
		{"negative", "-500", -500, true},
		{"float64", 42.5, 42.5, true},
		{"int", 7, 7, true},
		{"raw number", models.RawNumber("$1,000"), 1000, true},
		{"json number", json.Number("3.5"), 3.5, true},
		{"empty", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"letters", "abc", 0, false},
		{"nil", nil, 0, false},
		{"NaN string", "NaN", 0, false},
		{"Inf string", "Inf", 0, false},
		{"NaN float", math.NaN(), 0, false},
		{"unsupported type", []int{1}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := utils.ParseNumeric(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestParsePositive(t *testing.T) {
	v, err := utils.ParsePositive("$350,000", "targetPrice")
	require.NoError(t, err)
	assert.Equal(t, 350000.0, v)

	_, err = utils.ParsePositive("", "targetPrice")
	var fe *models.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, models.CodeRequired, fe.Code)
	assert.Equal(t, "targetPrice", fe.Field)

	_, err = utils.ParsePositive("0", "targetPrice")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, models.CodeMustBePositive, fe.Code)

	_, err = utils.ParsePositive("n/a", "targetPrice")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, models.CodeInvalid, fe.Code)
}

func TestParseNonNegative(t *testing.T) {
	t.Run("empty optional is not provided", func(t *testing.T) {
		v, provided, err := utils.ParseNonNegative("", "monthlyDebts", false)
		require.NoError(t, err)
		assert.False(t, provided)
		assert.Zero(t, v)
	})

	t.Run("empty required fails", func(t *testing.T) {
		_, _, err := utils.ParseNonNegative("", "annualIncome", true)
		var fe *models.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, models.CodeRequired, fe.Code)
	})

	t.Run("zero is provided", func(t *testing.T) {
		v, provided, err := utils.ParseNonNegative("0", "annualIncome", true)
		require.NoError(t, err)
		assert.True(t, provided)
		assert.Zero(t, v)
	})

	t.Run("negative fails", func(t *testing.T) {
		_, _, err := utils.ParseNonNegative("-1", "monthlyDebts", false)
		var fe *models.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, models.CodeCannotBeNegative, fe.Code)
	})

	t.Run("garbage in optional field is invalid", func(t *testing.T) {
		_, _, err := utils.ParseNonNegative("abc", "monthlyDebts", false)
		var fe *models.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, models.CodeInvalid, fe.Code)
		assert.Equal(t, "monthlyDebts: is invalid", fe.Error())
	})

	t.Run("garbage in required field is invalid", func(t *testing.T) {
		_, _, err := utils.ParseNonNegative("lots", "annualIncome", true)
		var fe *models.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, models.CodeInvalid, fe.Code)
	})
}

func TestParsePercent(t *testing.T) {
	v, provided, err := utils.ParsePercent("20%", "downPayment.percent")
	require.NoError(t, err)
	assert.True(t, provided)
	assert.Equal(t, 20.0, v)

	_, _, err = utils.ParsePercent("120", "downPayment.percent")
	var fe *models.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, models.CodeOutOfRange, fe.Code)
}

func TestSanitizeString(t *testing.T) {
	s, ok := utils.SanitizeString("  Austin  ", 100)
	assert.True(t, ok)
	assert.Equal(t, "Austin", s)

	_, ok = utils.SanitizeString("   ", 100)
	assert.False(t, ok)

	s, ok = utils.SanitizeString("San José del Cabo", 8)
	assert.True(t, ok)
	assert.Equal(t, "San José", s)
}
