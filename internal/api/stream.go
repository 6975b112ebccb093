// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/jeranaias/nyaya-tui/internal/model"
)

// =============================================================================
// FRAME DECODER
// =============================================================================

// dataPrefix marks a payload line in the stream protocol.
var dataPrefix = []byte("data: ")

// FrameDecoder incrementally parses the newline-delimited stream
// protocol. Feed accepts arbitrary byte slices as they arrive from the
// network; a trailing partial line (including one that splits a
// multi-byte rune) is retained until the rest arrives. Lines that do
// not carry the "data: " prefix, and payloads that are not valid JSON,
// are counted and skipped.
//
// The decoder is not safe for concurrent use.
type FrameDecoder struct {
	buf       bytes.Buffer
	malformed int
	closed    bool
}

// NewFrameDecoder creates an empty decoder.
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{}
}

// Feed appends raw bytes and returns the events for every complete
// line now available. A line may yield no event if it is blank or
// malformed.
func (d *FrameDecoder) Feed(p []byte) []StreamEvent {
	if d.closed {
		return nil
	}
	d.buf.Write(p)

	var events []StreamEvent
	for {
		data := d.buf.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		line := make([]byte, idx)
		copy(line, data[:idx])
		d.buf.Next(idx + 1)

		if ev, ok := d.decodeLine(line); ok {
			events = append(events, ev)
		}
	}
	return events
}

// Close processes any buffered remainder as a final line. Servers
// normally end every frame with a newline, but a connection that drops
// mid-stream can leave a complete frame unterminated.
func (d *FrameDecoder) Close() []StreamEvent {
	if d.closed {
		return nil
	}
	d.closed = true

	rest := d.buf.Bytes()
	d.buf.Reset()
	if len(bytes.TrimSpace(rest)) == 0 {
		return nil
	}
	if ev, ok := d.decodeLine(rest); ok {
		return []StreamEvent{ev}
	}
	return nil
}

// Malformed returns the number of skipped lines.
func (d *FrameDecoder) Malformed() int {
	return d.malformed
}

// decodeLine parses one protocol line into an event.
func (d *FrameDecoder) decodeLine(line []byte) (StreamEvent, bool) {
	line = bytes.TrimRight(line, "\r")
	if len(bytes.TrimSpace(line)) == 0 {
		return StreamEvent{}, false
	}

	if !bytes.HasPrefix(line, dataPrefix) {
		d.malformed++
		return StreamEvent{}, false
	}
	payload := line[len(dataPrefix):]

	var ev StreamEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		d.malformed++
		return StreamEvent{}, false
	}
	return ev, true
}

// =============================================================================
// RECONCILER
// =============================================================================

// RenderState is the display-ready view of an in-flight response.
type RenderState struct {
	Content string
	Sources []model.Citation
	Meta    *model.Metadata
	Err     string
	Done    bool
}

// Reconciler folds stream events into a RenderState. Once a terminal
// event has been applied all further events are ignored, so a
// misbehaving server cannot overwrite a finished response.
type Reconciler struct {
	content strings.Builder
	sources []model.Citation
	meta    *model.Metadata
	errText string
	done    bool
}

// NewReconciler creates an empty reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Apply folds one event into the state. Returns true if the event was
// terminal.
func (r *Reconciler) Apply(ev StreamEvent) bool {
	if r.done {
		return true
	}

	switch {
	case ev.Error != "":
		r.errText = ev.ErrorText()
		r.done = true

	case ev.Done:
		if ev.Metadata != nil {
			r.meta = ev.Metadata
		}
		if len(ev.Sources) > 0 {
			r.sources = ev.Sources
		}
		r.done = true

	default:
		r.content.WriteString(ev.Chunk)
	}

	return r.done
}

// Snapshot returns the current display state. Partial content remains
// available even when the stream ended without a terminal event.
func (r *Reconciler) Snapshot() RenderState {
	return RenderState{
		Content: r.content.String(),
		Sources: r.sources,
		Meta:    r.meta,
		Err:     r.errText,
		Done:    r.done,
	}
}

// Content returns just the accumulated text.
func (r *Reconciler) Content() string {
	return r.content.String()
}

// Done reports whether a terminal event has been applied.
func (r *Reconciler) Done() bool {
	return r.done
}

// Message converts the final state into an assistant message.
func (r *Reconciler) Message() model.Message {
	msg := model.NewAssistantMessage(r.content.String())
	msg.Citations = r.sources
	msg.Meta = r.meta
	return msg
}
