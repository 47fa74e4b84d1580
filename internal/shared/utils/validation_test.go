package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "bitcoin-wallet", false},
		{"underscore", "win_01HZX", false},
		{"empty", "", true},
		{"slash", "../etc", true},
		{"space", "a b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id, "app_id", true)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAction(t *testing.T) {
	assert.NoError(t, ValidateAction("create_identity"))
	assert.Error(t, ValidateAction(""))
	assert.Error(t, ValidateAction("Create"))
	assert.Error(t, ValidateAction("drop;table"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("satoshi@bitcoin.org", true))
	assert.NoError(t, ValidateEmail("", false))
	assert.Error(t, ValidateEmail("", true))
	assert.Error(t, ValidateEmail("not-an-email", true))
}

func TestValidateHex(t *testing.T) {
	assert.NoError(t, ValidateHex("deadBEEF", "signature"))
	assert.Error(t, ValidateHex("abc", "signature"))
	assert.Error(t, ValidateHex("zz", "signature"))
	assert.Error(t, ValidateHex("", "signature"))
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://example.com/app", "url"))
	assert.Error(t, ValidateURL("javascript:alert(1)", "url"))
	assert.Error(t, ValidateURL("https://", "url"))
}

func TestParams(t *testing.T) {
	params := map[string]interface{}{
		"to":      []interface{}{"a@b.co", 3, "c@d.co"},
		"single":  "x@y.co",
		"options": map[string]interface{}{"label": "main"},
	}

	assert.Equal(t, []string{"a@b.co", "c@d.co"}, StringSliceParam(params, "to"))
	assert.Equal(t, []string{"x@y.co"}, StringSliceParam(params, "single"))
	assert.Nil(t, StringSliceParam(params, "missing"))
	assert.Equal(t, "main", MapParam(params, "options")["label"])
	assert.Empty(t, MapParam(params, "missing"))
	assert.Equal(t, "", StringParam(params, "missing"))
}
