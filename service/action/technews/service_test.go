package technews

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/service/cache"
)

func TestService_Top(t *testing.T) {
	page, err := os.ReadFile("testdata/front.html")
	require.NoError(t, err)
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write(page)
	}))
	defer server.Close()

	aCache, err := cache.New(16)
	require.NoError(t, err)
	defer aCache.Close()
	service := New(&Config{URL: server.URL + "/", Limit: 2},
		WithHTTPClient(server.Client()), WithCache(aCache, cache.DefaultConfig().NewsTTL))
	method, err := service.Method("top")
	require.NoError(t, err)

	var testCases = []struct {
		description string
		limit       int
		expect      []string
	}{
		{description: "configured limit", expect: []string{"Go 1.99 released", "Ask HN: Favorite parsers?"}},
		{description: "explicit limit", limit: 1, expect: []string{"Go 1.99 released"}},
		{description: "limit above available", limit: 10, expect: []string{"Go 1.99 released", "Ask HN: Favorite parsers?", "Example is hiring"}},
	}

	for _, testCase := range testCases {
		output := &Articles{}
		require.NoError(t, method(context.Background(), &Input{Limit: testCase.limit}, output), testCase.description)
		var titles []string
		for _, article := range *output {
			titles = append(titles, article.Title)
		}
		assert.Equal(t, testCase.expect, titles, testCase.description)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "page is fetched once and cached")
	assert.Equal(t, server.URL+"/item?id=1002", (*mustTop(t, method))[1].Link)
}

func mustTop(t *testing.T, method types.Executable) *Articles {
	output := &Articles{}
	require.NoError(t, method(context.Background(), &Input{}, output))
	return output
}

func TestService_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()
	service := New(&Config{URL: server.URL}, WithHTTPClient(server.Client()))
	method, err := service.Method("top")
	require.NoError(t, err)

	err = method(context.Background(), &Input{}, &Articles{})
	var taskErr *types.TaskError
	require.True(t, errors.As(err, &taskErr))
	assert.True(t, taskErr.Transient)
}

func TestService_Method(t *testing.T) {
	service := New(nil)
	assert.Equal(t, "technews", service.Name())
	_, err := service.Method("bottom")
	assert.Error(t, err)
}
