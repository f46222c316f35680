package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestSuccessLineUsesTwoDecimals(t *testing.T) {
	cases := map[float64]string{
		97.4:  "DXY Index Level: 97.40",
		97.42: "DXY Index Level: 97.42",
		100:   "DXY Index Level: 100.00",
	}
	for in, want := range cases {
		if got := successLine(in); got != want {
			t.Fatalf("successLine(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFailureLine(t *testing.T) {
	got := failureLine(errors.New("boom"))
	if got != "Failed to retrieve DXY index: boom" {
		t.Fatalf("failureLine = %q", got)
	}
}

func setupEnv(t *testing.T, apiKey, baseURL string) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("POLYGON_API_KEY", apiKey)
	t.Setenv("POLYGON_BASE_URL", baseURL)
	t.Setenv("PUBLISHERS_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
}

func TestRunSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"value":97.4}]}`))
	}))
	defer srv.Close()
	setupEnv(t, "key", srv.URL)

	var out bytes.Buffer
	if code := run(&out); code != 0 {
		t.Fatalf("exit code = %d, output %q", code, out.String())
	}
	if got := strings.TrimSpace(out.String()); got != "DXY Index Level: 97.40" {
		t.Fatalf("output = %q", got)
	}
}

func TestRunMissingCredential(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()
	setupEnv(t, "", srv.URL)

	var out bytes.Buffer
	if code := run(&out); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	want := "Failed to retrieve DXY index: POLYGON_API_KEY environment variable not found"
	if got := strings.TrimSpace(out.String()); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no request, got %d", hits.Load())
	}
}

func TestRunMissingCredentialSkipsPublisherSetup(t *testing.T) {
	setupEnv(t, "", "https://example.test")
	t.Setenv("PUBLISHERS_FILE", "/nonexistent/publishers.yaml")

	var out bytes.Buffer
	if code := run(&out); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	want := "Failed to retrieve DXY index: POLYGON_API_KEY environment variable not found"
	if got := strings.TrimSpace(out.String()); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestRunUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()
	setupEnv(t, "key", srv.URL)

	var out bytes.Buffer
	if code := run(&out); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(out.String(), "Failed to retrieve DXY index: http response status 401") {
		t.Fatalf("output = %q", out.String())
	}
}
