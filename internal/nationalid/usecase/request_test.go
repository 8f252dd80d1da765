package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customValidation "github.com/allisson/nationalid/internal/validation"
)

func TestDecodeRequest(t *testing.T) {
	t.Run("Success_DefaultsStrictToFalse", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"national_id":"30103271701312"}`))

		require.NoError(t, err)
		assert.Equal(t, "30103271701312", req.NationalID)
		assert.False(t, req.StrictChecksum)
	})

	t.Run("Success_KeepsSurroundingWhitespaceForParser", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"national_id":" 30103271701312 ","strict_checksum":true}`))

		require.NoError(t, err)
		assert.Equal(t, " 30103271701312 ", req.NationalID)
		assert.True(t, req.StrictChecksum)
	})

	t.Run("Error_NullStrictChecksum", func(t *testing.T) {
		_, err := DecodeRequest([]byte(`{"national_id":"30103271701312","strict_checksum":null}`))

		require.Error(t, err)
		assert.Equal(t, []string{"strict_checksum"}, customValidation.FieldNames(err))
	})

	t.Run("Error_ObjectNationalID", func(t *testing.T) {
		_, err := DecodeRequest([]byte(`{"national_id":{"value":"30103271701312"}}`))

		require.Error(t, err)
		assert.Equal(t, []string{"national_id"}, customValidation.FieldNames(err))
	})
}

func TestStrictChecksumForLog(t *testing.T) {
	assert.Equal(t, true, strictChecksumForLog([]byte(`{"strict_checksum":true}`)))
	assert.Equal(t, "yes", strictChecksumForLog([]byte(`{"strict_checksum":"yes"}`)))
	assert.Equal(t, false, strictChecksumForLog([]byte(`{}`)))
	assert.Equal(t, false, strictChecksumForLog([]byte(`not json`)))
}
