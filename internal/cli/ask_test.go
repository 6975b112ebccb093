// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/jeranaias/nyaya-tui/internal/api"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestAskStreamingServerErrorShowsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"chunk\": \"partial \"}\n"))
		w.Write([]byte("data: {\"error\": \"model crashed\", \"full\": \"The model failed to answer.\"}\n"))
	}))
	defer srv.Close()

	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: srv.URL})

	var err error
	out := captureStdout(t, func() {
		err = askStreaming(context.Background(), client, Args{}, false, api.QueryRequest{Query: "q", Stream: true})
	})

	if err == nil {
		t.Fatal("server error event did not fail the command")
	}
	if !strings.Contains(out, "The model failed to answer.") {
		t.Errorf("fallback text missing from output: %q", out)
	}
}

func TestAskStreamingConnectionDropKeepsPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Stream ends without a done event.
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"chunk\": \"partial content\"}\n"))
	}))
	defer srv.Close()

	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: srv.URL})

	var err error
	out := captureStdout(t, func() {
		err = askStreaming(context.Background(), client, Args{}, false, api.QueryRequest{Query: "q", Stream: true})
	})

	if err != nil {
		t.Fatalf("dropped connection failed the command: %v", err)
	}
	if !strings.Contains(out, "partial content") {
		t.Errorf("partial content missing from output: %q", out)
	}
}
