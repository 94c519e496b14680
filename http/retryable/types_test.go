package retryable

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusError(t *testing.T) {
	t.Parallel()

	rsp := &Response{
		StatusCode: http.StatusConflict,
		Body:       []byte(`{"errors":[{"message":"TRIP_ALREADY_ACTIVE"},"junk",{"code":1}],"extra":"x"}`),
	}
	rsp.Data = decodeBody(rsp.Body, "application/json")

	err := StatusError(rsp)

	assert.Equal(t, http.StatusConflict, err.Status)
	require.Len(t, err.Errors, 2)
	assert.Equal(t, "TRIP_ALREADY_ACTIVE", err.Errors[0].Message)
	assert.Empty(t, err.Errors[1].Message)
	assert.Equal(t, []string{"TRIP_ALREADY_ACTIVE"}, err.Messages())
	assert.Equal(t, "x", err.Body["extra"])
	assert.Same(t, rsp, err.Response)
	assert.Equal(t, "http status 409: TRIP_ALREADY_ACTIVE", err.Error())
}

func TestStatusError_NonObjectBody(t *testing.T) {
	t.Parallel()

	err := StatusError(&Response{StatusCode: 500, Data: []any{"a"}})

	assert.Equal(t, 500, err.Status)
	assert.Nil(t, err.Body)
	assert.Empty(t, err.Errors)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused") //nolint:err113
	got := normalize(cause)

	assert.Zero(t, got.Status)
	assert.Empty(t, got.Errors)
	require.ErrorIs(t, got, cause)
	assert.Equal(t, "http request failed: dial tcp: connection refused", got.Error())

	structured := &Error{Status: 418}
	assert.Same(t, structured, normalize(structured))
}

func TestClassification(t *testing.T) {
	t.Parallel()

	cls := Classification{"A": {Retry: false}, "B": {Retry: true}}

	id, fatal := cls.Fatal(&Error{Errors: []ErrorEntry{{Message: "B"}, {Message: "A"}}})
	assert.True(t, fatal)
	assert.Equal(t, "A", id)

	_, fatal = cls.Fatal(&Error{Errors: []ErrorEntry{{Message: "B"}, {Message: "C"}}})
	assert.False(t, fatal)

	_, fatal = cls.Fatal(&Error{})
	assert.False(t, fatal)

	_, fatal = Classification(nil).Fatal(&Error{Errors: []ErrorEntry{{Message: "A"}}})
	assert.False(t, fatal)

	merged := cls.Merge(Classification{"B": {Retry: false}})
	assert.False(t, merged["B"].Retry)
	assert.True(t, cls["B"].Retry, "Merge does not modify the receiver")
}

func TestDecodeBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		data        string
		contentType string
		want        any
	}{
		{"json", `{"a":1}`, "application/json", map[string]any{"a": float64(1)}},
		{"vendor json", `[1]`, "application/problem+json", []any{float64(1)}},
		{"vendor json with charset", `{"a":1}`, "application/vnd.gira+json; charset=utf-8", map[string]any{"a": float64(1)}},
		{"json-like subtype", `{"a":1}`, "application/jsonx", nil},
		{"sniffed", ` {"a":"b"}`, "", map[string]any{"a": "b"}},
		{"blank sniffed", "  \n", "", nil},
		{"string", `"ok"`, "application/json", "ok"},
		{"text", `{"a":1}`, "text/plain", nil},
		{"empty", ``, "application/json", nil},
		{"malformed", `{"a":`, "application/json", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, decodeBody([]byte(tt.data), tt.contentType))
		})
	}
}
