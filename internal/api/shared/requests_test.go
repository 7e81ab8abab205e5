package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Days  int    `json:"days" validate:"min=0,max=30"`
}

type selfValidating struct {
	Value string `json:"value"`
}

func (s selfValidating) Validate() error {
	if s.Value == "" {
		return errors.New("value is required")
	}
	return nil
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		errText string
	}{
		{name: "valid", body: `{"email":"a@example.com","days":3}`},
		{name: "empty body", body: ``, wantErr: ErrEmptyBody},
		{name: "malformed", body: `{"email":`, errText: "decode request body"},
		{name: "unknown field", body: `{"email":"a@example.com","admin":true}`, errText: "unknown field"},
		{name: "trailing object", body: `{"email":"a@example.com"}{"days":1}`, errText: "single JSON object"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			w := httptest.NewRecorder()

			var v sampleRequest
			err := DecodeJSON(w, req, &v)

			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errText)
			default:
				require.NoError(t, err)
				assert.Equal(t, "a@example.com", v.Email)
				assert.Equal(t, 3, v.Days)
			}
		})
	}
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	body := `{"email":"` + strings.Repeat("a", MaxRequestBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	var v sampleRequest
	err := DecodeJSON(w, req, &v)

	var maxErr *http.MaxBytesError
	assert.ErrorAs(t, err, &maxErr)
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&sampleRequest{Email: "a@example.com", Days: 7}))

	err := ValidateRequest(&sampleRequest{Email: "nope", Days: 31})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)

	assert.EqualError(t, ValidateRequest(selfValidating{}), "value is required")
	assert.NoError(t, ValidateRequest(selfValidating{Value: "x"}))
}
