package twofa

import "strings"

// CodeLength is the number of digits in a one-time code.
const CodeLength = 6

// CodeBuffer is the six-cell one-time code entry with a focused cell.
type CodeBuffer struct {
	cells [CodeLength]string
	focus int
}

// Input sets cell i to v, which must be empty or a single digit.
// Entering a digit moves focus to the next cell. It reports whether v was accepted.
func (b *CodeBuffer) Input(i int, v string) bool {
	if i < 0 || i >= CodeLength || !digitOrEmpty(v) {
		return false
	}

	b.cells[i] = v
	b.focus = i
	if v != "" && i < CodeLength-1 {
		b.focus = i + 1
	}
	return true
}

// Backspace clears cell i, or moves focus back when it is already empty.
func (b *CodeBuffer) Backspace(i int) {
	if i < 0 || i >= CodeLength {
		return
	}

	if b.cells[i] != "" {
		b.cells[i] = ""
		b.focus = i
		return
	}
	if i > 0 {
		b.focus = i - 1
	}
}

// Paste fills cells from the start with up to six digits taken from text.
// Focus lands on the first empty cell, or the last one when all are filled.
func (b *CodeBuffer) Paste(text string) {
	n := 0
	for _, r := range text {
		if n == CodeLength {
			break
		}
		if r >= '0' && r <= '9' {
			b.cells[n] = string(r)
			n++
		}
	}

	b.focus = CodeLength - 1
	for i, c := range b.cells {
		if c == "" {
			b.focus = i
			break
		}
	}
}

// Code returns the entered digits joined.
func (b *CodeBuffer) Code() string {
	return strings.Join(b.cells[:], "")
}

// Complete reports whether every cell holds a digit.
func (b *CodeBuffer) Complete() bool {
	return len(b.Code()) == CodeLength
}

// Clear empties every cell and focuses the first one.
func (b *CodeBuffer) Clear() {
	b.cells = [CodeLength]string{}
	b.focus = 0
}

// Cells returns a copy of the cells.
func (b *CodeBuffer) Cells() [CodeLength]string {
	return b.cells
}

// Focus returns the index of the focused cell.
func (b *CodeBuffer) Focus() int {
	return b.focus
}

func digitOrEmpty(v string) bool {
	return v == "" || (len(v) == 1 && v[0] >= '0' && v[0] <= '9')
}
