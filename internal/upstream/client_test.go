package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/smalltalk/model/types"
)

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_, _ = w.Write([]byte(`{"ok":true}`))
		case "/throttled":
			w.WriteHeader(http.StatusTooManyRequests)
		case "/unavailable":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/unauthorized":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	var testCases = []struct {
		description     string
		path            string
		expect          string
		expectErr       bool
		expectTransient bool
	}{
		{description: "success", path: "/ok", expect: `{"ok":true}`},
		{description: "throttled is transient", path: "/throttled", expectErr: true, expectTransient: true},
		{description: "server error is transient", path: "/unavailable", expectErr: true, expectTransient: true},
		{description: "unauthorized is permanent", path: "/unauthorized", expectErr: true},
		{description: "not found is permanent", path: "/missing", expectErr: true},
	}

	header := http.Header{"Content-Type": []string{"application/json"}}
	for _, testCase := range testCases {
		data, err := Get(context.Background(), server.Client(), server.URL+testCase.path, header)
		if !testCase.expectErr {
			require.NoError(t, err, testCase.description)
			assert.Equal(t, testCase.expect, string(data), testCase.description)
			continue
		}
		var taskErr *types.TaskError
		require.True(t, errors.As(err, &taskErr), testCase.description)
		assert.Equal(t, testCase.expectTransient, taskErr.Transient, testCase.description)
	}
}

func TestGet_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	URL := server.URL
	server.Close()

	_, err := Get(context.Background(), nil, URL, nil)
	var taskErr *types.TaskError
	require.True(t, errors.As(err, &taskErr))
	assert.True(t, taskErr.Transient)
}
