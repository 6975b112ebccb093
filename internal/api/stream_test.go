// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"testing"

	"github.com/jeranaias/nyaya-tui/internal/model"
)

func TestFrameDecoderSingleFrame(t *testing.T) {
	d := NewFrameDecoder()

	events := d.Feed([]byte("data: {\"chunk\": \"Hello\"}\n"))
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Chunk != "Hello" {
		t.Errorf("Chunk = %q, want %q", events[0].Chunk, "Hello")
	}
}

func TestFrameDecoderSplitAcrossReads(t *testing.T) {
	d := NewFrameDecoder()

	// First read ends mid-frame.
	events := d.Feed([]byte("data: {\"chu"))
	if len(events) != 0 {
		t.Fatalf("partial line produced %d events", len(events))
	}

	events = d.Feed([]byte("nk\": \"Sec 498A\"}\ndata: {\"chunk\": \" IPC\"}\n"))
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Chunk != "Sec 498A" || events[1].Chunk != " IPC" {
		t.Errorf("chunks = %q, %q", events[0].Chunk, events[1].Chunk)
	}
}

func TestFrameDecoderSplitMultiByteRune(t *testing.T) {
	d := NewFrameDecoder()

	frame := []byte("data: {\"chunk\": \"धारा\"}\n")
	// Split inside the first Devanagari rune.
	cut := 12
	for frame[cut]&0xC0 != 0x80 {
		cut++
	}

	if events := d.Feed(frame[:cut]); len(events) != 0 {
		t.Fatalf("split rune produced %d events early", len(events))
	}
	events := d.Feed(frame[cut:])
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Chunk != "धारा" {
		t.Errorf("Chunk = %q, want %q", events[0].Chunk, "धारा")
	}
}

func TestFrameDecoderMalformedLines(t *testing.T) {
	d := NewFrameDecoder()

	input := "data: {\"chunk\": \"ok\"}\n" +
		"garbage line\n" +
		"data: {not json\n" +
		"\n" +
		"data: {\"chunk\": \"more\"}\n"

	events := d.Feed([]byte(input))
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if d.Malformed() != 2 {
		t.Errorf("Malformed = %d, want 2", d.Malformed())
	}
}

func TestFrameDecoderCloseFlushesRemainder(t *testing.T) {
	d := NewFrameDecoder()

	// Terminal frame without a trailing newline, as happens when the
	// connection drops right after the last write.
	d.Feed([]byte("data: {\"chunk\": \"partial\"}\ndata: {\"done\": true}"))

	events := d.Close()
	if len(events) != 1 {
		t.Fatalf("Close produced %d events, want 1", len(events))
	}
	if !events[0].Done {
		t.Error("flushed event should be terminal")
	}

	// Decoder is inert after Close.
	if events := d.Feed([]byte("data: {\"chunk\": \"late\"}\n")); len(events) != 0 {
		t.Errorf("Feed after Close produced %d events", len(events))
	}
	if events := d.Close(); len(events) != 0 {
		t.Errorf("second Close produced %d events", len(events))
	}
}

func TestFrameDecoderCRLF(t *testing.T) {
	d := NewFrameDecoder()

	events := d.Feed([]byte("data: {\"chunk\": \"crlf\"}\r\n"))
	if len(events) != 1 || events[0].Chunk != "crlf" {
		t.Fatalf("CRLF frame not parsed: %v", events)
	}
}

func TestReconcilerAccumulates(t *testing.T) {
	r := NewReconciler()

	r.Apply(StreamEvent{Chunk: "Res judicata "})
	r.Apply(StreamEvent{Chunk: "bars re-litigation."})

	if got := r.Content(); got != "Res judicata bars re-litigation." {
		t.Errorf("Content = %q", got)
	}
	if r.Done() {
		t.Error("Done before terminal event")
	}
}

func TestReconcilerDoneEvent(t *testing.T) {
	r := NewReconciler()

	r.Apply(StreamEvent{Chunk: "answer"})
	terminal := r.Apply(StreamEvent{
		Done: true,
		Metadata: &model.Metadata{
			Model:          "gpt-4o",
			ConversationID: "conv-42",
			SessionName:    "Res judicata",
		},
		Sources: []model.Citation{{Title: "CPC Section 11"}},
	})

	if !terminal {
		t.Fatal("done event not reported terminal")
	}

	state := r.Snapshot()
	if state.Meta == nil || state.Meta.ConversationID != "conv-42" {
		t.Errorf("metadata not applied: %+v", state.Meta)
	}
	if len(state.Sources) != 1 || state.Sources[0].Title != "CPC Section 11" {
		t.Errorf("sources not applied: %+v", state.Sources)
	}
	if !state.Done {
		t.Error("state not done")
	}
}

func TestReconcilerIgnoresEventsAfterTerminal(t *testing.T) {
	r := NewReconciler()

	r.Apply(StreamEvent{Chunk: "before"})
	r.Apply(StreamEvent{Done: true})
	r.Apply(StreamEvent{Chunk: " after"})

	if got := r.Content(); got != "before" {
		t.Errorf("content mutated after terminal: %q", got)
	}
}

func TestReconcilerErrorPrefersFull(t *testing.T) {
	tests := []struct {
		name string
		ev   StreamEvent
		want string
	}{
		{"full message", StreamEvent{Error: "timeout", Full: "The model timed out while answering."}, "The model timed out while answering."},
		{"error only", StreamEvent{Error: "timeout"}, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReconciler()
			r.Apply(StreamEvent{Chunk: "partial answer"})
			r.Apply(tt.ev)

			state := r.Snapshot()
			if state.Err != tt.want {
				t.Errorf("Err = %q, want %q", state.Err, tt.want)
			}
			// Partial content survives the error.
			if state.Content != "partial answer" {
				t.Errorf("Content = %q", state.Content)
			}
		})
	}
}

func TestReconcilerPartialWithoutTerminal(t *testing.T) {
	r := NewReconciler()
	r.Apply(StreamEvent{Chunk: "the stream just stopped"})

	state := r.Snapshot()
	if state.Done {
		t.Error("state done without terminal event")
	}
	if state.Content != "the stream just stopped" {
		t.Errorf("Content = %q", state.Content)
	}
}
