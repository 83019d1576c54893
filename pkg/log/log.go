// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🔌 Sink receives user-facing progress lines from the pipeline
type Sink interface {
	Emit(msg string)
}

// SinkFunc adapts a plain function to a Sink
type SinkFunc func(msg string)

func (f SinkFunc) Emit(msg string) { f(msg) }

// 🎯 Console writes progress lines to a terminal, highlighting warnings and errors
type Console struct {
	w  io.Writer
	mu sync.Mutex
}

// 🏭 NewConsole creates a console sink writing to w
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// 📝 Emit writes one message followed by a newline
func (c *Console) Emit(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, paint(msg))
}

// 🎨 paint colors a line based on the marker it starts with
func paint(msg string) string {
	trimmed := strings.TrimLeft(msg, "\t\n ")
	switch {
	case strings.HasPrefix(trimmed, "WARNING"):
		return color.New(color.FgYellow).Sprint(msg)
	case strings.HasPrefix(trimmed, "Error"):
		return color.New(color.FgRed).Sprint(msg)
	case strings.HasPrefix(trimmed, "Processing region"):
		return color.New(color.Bold, color.FgCyan).Sprint(msg)
	case strings.HasPrefix(trimmed, "File renamed"), strings.HasPrefix(trimmed, "Data saved"):
		return color.New(color.FgGreen).Sprint(msg)
	default:
		return msg
	}
}

type discard struct{}

func (discard) Emit(string) {}

// Discard returns a sink that drops every message
func Discard() Sink { return discard{} }

// Default returns the console sink on stdout
func Default() Sink { return NewConsole(os.Stdout) }

// OrDefault returns s, or the default console sink when s is nil
func OrDefault(s Sink) Sink {
	if s == nil {
		return Default()
	}
	return s
}

type zerologSink struct {
	zlog zerolog.Logger
}

func (z zerologSink) Emit(msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" || strings.Trim(msg, "-") == "" {
		return
	}
	trimmed := strings.TrimLeft(msg, "\t ")
	switch {
	case strings.HasPrefix(trimmed, "WARNING"):
		z.zlog.Warn().Msg(msg)
	case strings.HasPrefix(trimmed, "Error"):
		z.zlog.Error().Msg(msg)
	default:
		z.zlog.Info().Msg(msg)
	}
}

// 📝 Zerolog forwards progress lines to a zerolog logger, dropping separators
func Zerolog(l zerolog.Logger) Sink {
	return zerologSink{zlog: l}
}

// FromContext wraps the context logger as a sink
func FromContext(ctx context.Context) Sink {
	return Zerolog(*zerolog.Ctx(ctx))
}

type tee []Sink

func (t tee) Emit(msg string) {
	for _, s := range t {
		s.Emit(msg)
	}
}

// Tee fans every message out to all non-nil sinks
func Tee(sinks ...Sink) Sink {
	out := make(tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// 📦 Memory keeps every emitted message, mostly useful in tests
type Memory struct {
	mu    sync.Mutex
	lines []string
}

func (m *Memory) Emit(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, msg)
}

// Lines returns a copy of the messages emitted so far
func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

// Contains reports whether any message contains substr
func (m *Memory) Contains(substr string) bool {
	for _, line := range m.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
