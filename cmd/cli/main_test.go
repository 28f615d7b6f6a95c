package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestPrettyJSON(t *testing.T) {
	got := prettyJSON([]byte(`{"a":1}`))
	if !strings.Contains(got, "\"a\": 1") {
		t.Fatalf("expected indented JSON, got %q", got)
	}

	if got := prettyJSON([]byte("not json")); got != "not json" {
		t.Fatalf("expected non-JSON body unchanged, got %q", got)
	}
}

func TestCheckConsistencyPassed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/book/consistency" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"consistent":true}`))
	}))
	defer server.Close()

	baseURL = server.URL

	out := captureOutput(t, checkConsistency)
	if !strings.Contains(out, "PASSED") {
		t.Fatalf("expected PASSED in output, got %q", out)
	}
}

func TestCreateAccountPostsPayload(t *testing.T) {
	var captured map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/accounts" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"acc-1"}`))
	}))
	defer server.Close()

	baseURL = server.URL

	out := captureOutput(t, func() {
		createAccount("Sharma Traders", "customer", "INR")
	})

	if captured["name"] != "Sharma Traders" || captured["kind"] != "customer" {
		t.Fatalf("unexpected payload: %#v", captured)
	}
	if !strings.Contains(out, "acc-1") {
		t.Fatalf("expected response echoed, got %q", out)
	}
}
