// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Status prints human progress and summary lines, normally to stderr.
// Progress lines are redrawn in place and only shown on a terminal; summary
// lines are always printed, styled only on a terminal.
type Status struct {
	mu      sync.Mutex
	out     io.Writer
	tty     bool
	pending bool
}

// NewStatus returns a Status on f, detecting whether f is a terminal.
func NewStatus(f *os.File) *Status {
	return &Status{out: f, tty: term.IsTerminal(int(f.Fd()))}
}

// NewPlainStatus returns a Status that never draws progress or styles.
func NewPlainStatus(w io.Writer) *Status {
	return &Status{out: w}
}

// Progress redraws the progress line for label.
func (s *Status) Progress(label string, done, total int) {
	if !s.tty {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	line := fmt.Sprintf("%s %d / %d", label, done, total)
	if total > 0 {
		line += mutedStyle.Render(fmt.Sprintf(" [%.1f%%]", float64(done)*100/float64(total)))
	}
	fmt.Fprintf(s.out, "\r\033[K%s", line)
	s.pending = true
}

// Clear removes a pending progress line.
func (s *Status) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

func (s *Status) clear() {
	if s.pending {
		fmt.Fprint(s.out, "\r\033[K")
		s.pending = false
	}
}

// Success prints a summary line.
func (s *Status) Success(format string, args ...any) {
	s.line(successStyle, format, args...)
}

// Warn prints a warning line.
func (s *Status) Warn(format string, args ...any) {
	s.line(warnStyle, format, args...)
}

func (s *Status) line(style lipgloss.Style, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()

	msg := fmt.Sprintf(format, args...)
	if s.tty {
		msg = style.Render(msg)
	}
	fmt.Fprintln(s.out, msg)
}
