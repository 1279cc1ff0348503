// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	RetryBaseDelay = time.Millisecond
}

func statusSequence(t *testing.T, statuses ...int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(atomic.AddInt32(&calls, 1))
		if n > len(statuses) {
			n = len(statuses)
		}
		w.WriteHeader(statuses[n-1])
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		maxRetries int
		wantStatus int
		wantCalls  int32
	}{
		{name: "immediate success", statuses: []int{200}, maxRetries: 3, wantStatus: 200, wantCalls: 1},
		{name: "throttled then ok", statuses: []int{429, 429, 200}, maxRetries: 3, wantStatus: 200, wantCalls: 3},
		{name: "unavailable then ok", statuses: []int{503, 200}, maxRetries: 3, wantStatus: 200, wantCalls: 2},
		{name: "overloaded then ok", statuses: []int{529, 200}, maxRetries: 3, wantStatus: 200, wantCalls: 2},
		{name: "exhausted", statuses: []int{429}, maxRetries: 2, wantStatus: 429, wantCalls: 3},
		{name: "default retries", statuses: []int{502}, maxRetries: 0, wantStatus: 502, wantCalls: 4},
		{name: "client error passes through", statuses: []int{400}, maxRetries: 3, wantStatus: 400, wantCalls: 1},
		{name: "internal error passes through", statuses: []int{500}, maxRetries: 3, wantStatus: 500, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, calls := statusSequence(t, tt.statuses...)

			req, err := http.NewRequest(http.MethodPost, ts.URL, strings.NewReader(`{"prompt":"x"}`))
			require.NoError(t, err)

			resp, err := DoWithRetry(context.Background(), ts.Client(), req, tt.maxRetries)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(calls))
		})
	}
}

func TestDoWithRetryContextCancelled(t *testing.T) {
	ts, _ := statusSequence(t, http.StatusTooManyRequests)

	old := RetryBaseDelay
	RetryBaseDelay = 500 * time.Millisecond
	defer func() { RetryBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = DoWithRetry(ctx, ts.Client(), req, 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, RetryBaseDelay, backoff(0, ""))
	assert.Equal(t, 4*RetryBaseDelay, backoff(2, ""))
	assert.Equal(t, 3*time.Second, backoff(0, "3"))
	assert.Equal(t, MaxRetryAfter, backoff(0, "86400"))
	assert.Equal(t, 2*RetryBaseDelay, backoff(1, "Wed, 21 Oct 2015 07:28:00 GMT"))
}
