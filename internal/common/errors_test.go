package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreError("select", cause)

	assert.True(t, errors.Is(err, ErrDatabase))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "store select: connection reset", err.Error())

	// already classified errors are kept as is
	assert.Same(t, err, NewStoreError("insert", err))
	assert.NoError(t, NewStoreError("insert", nil))
}

func TestNotFoundAndTransitionErrors(t *testing.T) {
	nf := NotFoundError("bill", 12)
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.Equal(t, "bill 12: resource not found", nf.Error())

	tr := TransitionError("Pago", "Pendente")
	assert.True(t, errors.Is(tr, ErrInvalidTransition))
	assert.Contains(t, tr.Error(), "Pago -> Pendente")
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "ignored"))

	err := WrapError(ErrDatabase, "query bills")
	assert.True(t, errors.Is(err, ErrDatabase))
	assert.Equal(t, "query bills: database error", err.Error())
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Name  string  `json:"fornecedor" validate:"required,max=5"`
		Note  *string `json:"anexo" validate:"omitempty,max=3"`
		Plain string  `validate:"required"`
	}
	long := "longer"

	testCases := []struct {
		name          string
		in            input
		expectedField string
		expectedMsg   string
	}{
		{name: "valid", in: input{Name: "abc", Plain: "x"}},
		{name: "required_uses_json_name", in: input{Plain: "x"}, expectedField: "fornecedor", expectedMsg: "is required"},
		{name: "max_length", in: input{Name: "abcdef", Plain: "x"}, expectedField: "fornecedor", expectedMsg: "must be at most 5 characters"},
		{name: "optional_pointer", in: input{Name: "abc", Note: &long, Plain: "x"}, expectedField: "anexo", expectedMsg: "must be at most 3 characters"},
		{name: "no_json_tag", in: input{Name: "abc"}, expectedField: "Plain", expectedMsg: "is required"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.in)
			if tc.expectedField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.expectedField, ve.Field)
			assert.Equal(t, tc.expectedMsg, ve.Message)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}
