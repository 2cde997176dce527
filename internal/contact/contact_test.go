package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return FormFromValues(url.Values{
		"name":    {"Ana Souza"},
		"phone":   {"(31) 99999-0000"},
		"email":   {"ana@example.com"},
		"state":   {"MG"},
		"city":    {"Belo Horizonte"},
		"privacy": {"on"},
	})
}

func TestFormFromValues(t *testing.T) {
	f := validForm()
	assert.Equal(t, "mg", f.State)
	assert.Equal(t, "belo-horizonte", f.CityCode)
	assert.True(t, f.Privacy)
	assert.Nil(t, f.Validate())
}

func TestValidate(t *testing.T) {
	errs := Form{}.Validate()
	for _, field := range []string{"name", "phone", "email", "state", "city", "privacy"} {
		assert.Contains(t, errs, field)
	}

	f := validForm()
	f.Email = "ana@example"
	f.Phone = "3199-9999"
	errs = f.Validate()
	assert.Equal(t, msgInvalidEmail, errs["email"])
	assert.Equal(t, msgInvalidPhone, errs["phone"])
	assert.Len(t, errs, 2)
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("+55 (31) 3333-4444"))
	assert.True(t, ValidPhone("3133334444"))
	assert.False(t, ValidPhone("313333444"))
	assert.False(t, ValidPhone("31 3333-44a4"))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@b.co"))
	assert.False(t, ValidEmail("a b@c.com"))
	assert.False(t, ValidEmail("a@b"))
}

type recorder struct {
	got []Submission
	err error
}

func (r *recorder) Submit(_ context.Context, s Submission) error {
	r.got = append(r.got, s)
	return r.err
}

func TestServiceSubmit(t *testing.T) {
	rec := &recorder{}
	svc := NewService(rec, 0, nil)

	sub, errs, err := svc.Submit(context.Background(), "1.1.1.1", "pt", validForm())
	require.NoError(t, err)
	assert.Nil(t, errs)
	_, parseErr := ulid.Parse(sub.ID)
	assert.NoError(t, parseErr)
	require.Len(t, rec.got, 1)
	assert.Equal(t, sub.ID, rec.got[0].ID)

	_, errs, err = svc.Submit(context.Background(), "1.1.1.1", "pt", Form{})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.NotEmpty(t, errs)
	assert.Len(t, rec.got, 1)
}

func TestServiceSubmitterError(t *testing.T) {
	svc := NewService(&recorder{err: errors.New("boom")}, 0, nil)
	_, _, err := svc.Submit(context.Background(), "c", "pt", validForm())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalid))
}

func TestServiceRateLimit(t *testing.T) {
	svc := NewService(&recorder{}, 2, nil)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_, _, err := svc.Submit(context.Background(), "a", "pt", validForm())
		require.NoError(t, err)
	}
	_, _, err := svc.Submit(context.Background(), "a", "pt", validForm())
	assert.ErrorIs(t, err, ErrRateLimited)

	_, _, err = svc.Submit(context.Background(), "b", "pt", validForm())
	assert.NoError(t, err, "limits are per client")

	now = now.Add(31 * time.Second)
	_, _, err = svc.Submit(context.Background(), "a", "pt", validForm())
	assert.NoError(t, err)
}

func TestHTTPSubmitter(t *testing.T) {
	var got Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, got.ID, r.Header.Get("Idempotency-Key"))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	svc := NewService(NewHTTPSubmitter(srv.URL), 0, nil)
	sub, _, err := svc.Submit(context.Background(), "c", "pt", validForm())
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, "belo-horizonte", got.Form.CityCode)
}

func TestHTTPSubmitterStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewHTTPSubmitter(srv.URL).Submit(context.Background(), Submission{ID: "x"})
	assert.Error(t, err)
}
