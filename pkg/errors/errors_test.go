package errors

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPostgresCodes(t *testing.T) {
	cases := []struct {
		code   pq.ErrorCode
		kind   Kind
		status int
	}{
		{"23505", KindConflict, http.StatusConflict},
		{"23503", KindReferential, http.StatusUnprocessableEntity},
		{"23502", KindRequired, http.StatusBadRequest},
		{"42501", KindAuthorization, http.StatusForbidden},
		{"XX000", KindUnclassified, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			err := fmt.Errorf("insert: %w", &pq.Error{Code: tc.code, Message: "raw backend text"})
			classified := Classify(err)
			assert.Equal(t, tc.kind, classified.Kind)
			assert.Equal(t, tc.status, classified.Status)
		})
	}
}

func TestDuplicateKeyRendersFixedMessage(t *testing.T) {
	raw := &pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "students_student_code_key"`}
	classified := Store(raw, "create student")

	bn := classified.Localize(LangBengali)
	assert.Equal(t, "এই আইডি ইতিমধ্যে ব্যবহৃত হয়েছে", bn.Message)
	en := classified.Localize(LangEnglish)
	assert.Equal(t, "This ID is already in use", en.Message)

	payload, err := json.Marshal(en)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "duplicate key")
	assert.NotContains(t, string(payload), "students_student_code_key")
	assert.Contains(t, classified.Error(), "create student")
}

func TestClassifyNoRowsAndUnknown(t *testing.T) {
	assert.Equal(t, KindNotFound, Classify(sql.ErrNoRows).Kind)

	unknown := Classify(errors.New("connection reset by peer"))
	assert.Equal(t, KindUnclassified, unknown.Kind)
	assert.Equal(t, "Something went wrong, please try again", unknown.Localize(LangEnglish).Message)
}

func TestClassifyPassesThroughTypedErrors(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrForbidden)
	assert.Equal(t, ErrForbidden, Classify(err))
	assert.True(t, errors.Is(Wrap(errors.New("x"), ErrConflict), ErrConflict))
}

func TestClassifyValidatorErrorsAreFieldScoped(t *testing.T) {
	type form struct {
		Name string `validate:"required"`
		Age  int    `validate:"gte=5"`
	}
	err := validator.New().Struct(form{Age: 3})
	require.Error(t, err)

	classified := Classify(err)
	assert.Equal(t, KindValidation, classified.Kind)
	localized := classified.Localize(LangEnglish)
	assert.Equal(t, "This field is required", localized.Fields["Name"])
	assert.Equal(t, "Must be at least 5", localized.Fields["Age"])
}

func TestLocalizeFallsBackToBengali(t *testing.T) {
	localized := ErrUnauthorized.Localize("fr")
	assert.Equal(t, "আপনি লগইন করেননি", localized.Message)
	assert.Equal(t, "Invalid email or password", ErrInvalidLogin.Localize(LangEnglish).Message)
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, LangEnglish, NormalizeLanguage("en-US,en;q=0.9"))
	assert.Equal(t, LangBengali, NormalizeLanguage("bn-BD"))
	assert.Equal(t, "", NormalizeLanguage("de"))
}
