// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/buffer.go
// Summary: Line-oriented reader over one tailed file with change history.
// Usage: Owned by a Viewport; all calls happen under the registry lock.

package texel

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/framegrace/texeltail/internal/logging"
)

var (
	ErrNotFound         = errors.New("texel: file not found")
	ErrPermissionDenied = errors.New("texel: permission denied")
	ErrAlreadyAttached  = errors.New("texel: buffer already attached")
	ErrBinaryFile       = errors.New("texel: binary file")
	ErrEndOfBuffer      = errors.New("texel: end of buffer")
	ErrDead             = errors.New("texel: buffer has no file")
)

// binarySniffLen is how much of a file is inspected for binary content.
const binarySniffLen = 8000

// Line is one line returned by ReadLine.
type Line struct {
	Index   int    // 0-based line index
	Text    string // print-format text, optionally prefixed with its number
	Changed bool   // content differs from the previous read of this index
}

type historyEntry struct {
	text string
	seen bool
}

// LineBuffer reads a file line by line from the start. A buffer without a
// file is dead; every read on it fails and Rescan does nothing.
type LineBuffer struct {
	path    string
	file    *os.File
	reader  *bufio.Reader
	offset  int64 // byte offset of the read cursor
	cursor  int   // line index of the read cursor
	lines   int   // cached line count from the last rescan
	history []historyEntry
}

// NewLineBuffer returns a dead buffer.
func NewLineBuffer() *LineBuffer {
	return &LineBuffer{}
}

// Attach opens path. It refuses binary files and a second attachment.
func (b *LineBuffer) Attach(path string) error {
	if b.file != nil {
		return ErrAlreadyAttached
	}
	f, err := openText(path)
	if err != nil {
		return err
	}
	b.path = path
	b.file = f
	b.reader = bufio.NewReader(f)
	b.offset = 0
	b.cursor = 0
	return b.Rescan()
}

func openText(path string) (*os.File, error) {
	f, err := os.Open(path) //nolint:gosec // tailing user-supplied paths is the point
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, err
	}
	head := make([]byte, binarySniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, err
	}
	if enry.IsBinary(head[:n]) {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrBinaryFile, path)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Reopen swaps in a fresh handle when path now names a different file than
// the one held open (log rotation). It reports whether the file changed.
func (b *LineBuffer) Reopen() (bool, error) {
	if b.file == nil {
		return false, ErrDead
	}
	cur, err := b.file.Stat()
	if err != nil {
		return false, err
	}
	next, err := os.Stat(b.path)
	if err != nil {
		return false, err
	}
	if os.SameFile(cur, next) {
		return false, nil
	}
	f, err := openText(b.path)
	if err != nil {
		return false, err
	}
	b.file.Close()
	b.file = f
	b.reader = bufio.NewReader(f)
	b.offset = 0
	b.cursor = 0
	b.history = nil
	return true, b.Rescan()
}

// Close releases the file. The buffer becomes dead.
func (b *LineBuffer) Close() error {
	if b.file == nil {
		return nil
	}
	err := b.file.Close()
	b.file = nil
	b.reader = nil
	return err
}

// Path returns the attached path.
func (b *LineBuffer) Path() string { return b.path }

// IsDead reports whether no file is attached.
func (b *LineBuffer) IsDead() bool { return b.file == nil }

// LineCount returns the line count from the last rescan.
func (b *LineBuffer) LineCount() int { return b.lines }

// Cursor returns the index of the next line ReadLine will return.
func (b *LineBuffer) Cursor() int { return b.cursor }

// Rescan recounts the lines of the file and leaves the read cursor where it
// was. A trailing line without terminator counts as a line.
func (b *LineBuffer) Rescan() error {
	if b.file == nil {
		return nil
	}
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	count, size, err := countLines(b.file)
	if err != nil {
		return err
	}
	b.lines = count
	if b.offset > size {
		// Truncated underneath us; the old position means nothing now.
		b.offset = 0
		b.cursor = 0
	}
	if _, err := b.file.Seek(b.offset, io.SeekStart); err != nil {
		return err
	}
	b.reader.Reset(b.file)
	return nil
}

func countLines(r io.Reader) (int, int64, error) {
	buf := make([]byte, 32*1024)
	count := 0
	var last byte
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, 0, err
		}
	}
	if total > 0 && last != '\n' {
		count++
	}
	return count, total, nil
}

// ReadLine returns the line under the cursor and advances it. Percent signs
// are doubled so the text can go straight to Window.Print.
func (b *LineBuffer) ReadLine(wantNumber, trackChanges bool) (Line, error) {
	if b.file == nil {
		return Line{}, ErrDead
	}
	raw, err := b.reader.ReadString('\n')
	if raw == "" {
		// EOF and transient read errors both end this pass.
		if err != nil && !errors.Is(err, io.EOF) {
			logging.Debug(logging.CatBuffer, "read failed", "path", b.path, "error", err)
		}
		return Line{}, ErrEndOfBuffer
	}
	b.offset += int64(len(raw))

	text := strings.TrimSuffix(raw, "\n")
	text = strings.TrimSuffix(text, "\r")
	text = Escape(text)

	line := Line{Index: b.cursor, Text: text}
	if trackChanges {
		line.Changed = b.track(b.cursor, text)
	}
	b.cursor++
	if b.cursor > b.lines {
		b.lines = b.cursor
	}
	if wantNumber {
		line.Text = strconv.Itoa(b.cursor) + " " + line.Text
	}
	return line, nil
}

// track records text for index and reports whether it differs from what was
// recorded before. The first sighting of an index is never a change.
func (b *LineBuffer) track(index int, text string) bool {
	if index >= len(b.history) {
		size := len(b.history)
		for size <= index {
			size = size*2 + 1
		}
		grown := make([]historyEntry, size)
		copy(grown, b.history)
		b.history = grown
	}
	prev := b.history[index]
	b.history[index] = historyEntry{text: text, seen: true}
	return prev.seen && prev.text != text
}

// Rewind moves the cursor back to the first line.
func (b *LineBuffer) Rewind() error {
	if b.file == nil {
		return ErrDead
	}
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	b.reader.Reset(b.file)
	b.offset = 0
	b.cursor = 0
	return nil
}
