package auth

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeForm_PreservesOrder(t *testing.T) {
	got := EncodeForm([]Field{
		{Key: "grant_type", Value: "password"},
		{Key: "username", Value: "u"},
		{Key: "password", Value: "p"},
	})

	assert.Equal(t, "grant_type=password&username=u&password=p", got)
}

func TestEncodeForm_EscapesValuesOnly(t *testing.T) {
	got := EncodeForm([]Field{
		{Key: "p_target", Value: "https://cell.example/"},
		{Key: "password", Value: "a b&c=d"},
	})

	assert.Equal(t, "p_target=https%3A%2F%2Fcell.example%2F&password=a+b%26c%3Dd", got)
}

func TestEncodeForm_RoundTripsThroughStandardDecoder(t *testing.T) {
	values := []Field{
		{Key: "refresh_token", Value: "r/+=?&token with spaces"},
		{Key: "p_target", Value: "https://cell.example/ünïcode/"},
	}

	parsed, err := url.ParseQuery(EncodeForm(values))
	require.NoError(t, err)

	for _, f := range values {
		assert.Equal(t, f.Value, parsed.Get(f.Key))
	}
}

func TestEncodeForm_Empty(t *testing.T) {
	assert.Empty(t, EncodeForm(nil))
}

func TestEncodeForm_EmptyValue(t *testing.T) {
	assert.Equal(t, "refresh_token=", EncodeForm([]Field{{Key: "refresh_token"}}))
}
