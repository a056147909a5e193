package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	rl := newRateLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d blocked below the limit", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request above the limit was allowed")
	}
}

func TestRateLimiterIsolatesIPs(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)

	if !rl.allow("10.0.0.1") {
		t.Fatal("first IP blocked")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("second IP blocked by first IP's usage")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := newRateLimiter(1, 50*time.Millisecond)

	if !rl.allow("10.0.0.1") {
		t.Fatal("first request blocked")
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("second request inside window allowed")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.allow("10.0.0.1") {
		t.Error("request after window expiry blocked")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	handler := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:4321"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, want)
		}
	}
}
