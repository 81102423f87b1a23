package ui

import "strings"

// InputField is a single-line editor. The caret is a rune offset in
// [0, len(value)].
type InputField struct {
	value   []rune
	caret   int
	focused bool
}

func NewInputField() *InputField {
	return &InputField{focused: true}
}

func (f *InputField) Value() string { return string(f.value) }

func (f *InputField) Caret() int { return f.caret }

func (f *InputField) Focused() bool { return f.focused }

func (f *InputField) Focus() { f.focused = true }

func (f *InputField) Blur() { f.focused = false }

// SetValue replaces the text and puts the caret after it.
func (f *InputField) SetValue(s string) {
	f.value = []rune(s)
	f.caret = len(f.value)
}

// SetCaret clamps p into the text.
func (f *InputField) SetCaret(p int) {
	f.caret = max(0, min(p, len(f.value)))
}

// InsertSymbol splices token in at the caret and keeps focus. Writing the
// value back leaves the caret at the end of the text, not after the token.
func (f *InputField) InsertSymbol(token string) {
	p := f.caret
	next := make([]rune, 0, len(f.value)+len(token))
	next = append(next, f.value[:p]...)
	next = append(next, []rune(token)...)
	next = append(next, f.value[p:]...)
	f.SetValue(string(next))
	f.Focus()
}

// InsertRunes types rs at the caret and advances past them.
func (f *InputField) InsertRunes(rs []rune) {
	p := f.caret
	next := make([]rune, 0, len(f.value)+len(rs))
	next = append(next, f.value[:p]...)
	next = append(next, rs...)
	next = append(next, f.value[p:]...)
	f.value = next
	f.caret = p + len(rs)
}

func (f *InputField) Backspace() {
	if f.caret == 0 {
		return
	}
	f.value = append(f.value[:f.caret-1], f.value[f.caret:]...)
	f.caret--
}

func (f *InputField) Delete() {
	if f.caret >= len(f.value) {
		return
	}
	f.value = append(f.value[:f.caret], f.value[f.caret+1:]...)
}

func (f *InputField) Left() { f.SetCaret(f.caret - 1) }

func (f *InputField) Right() { f.SetCaret(f.caret + 1) }

func (f *InputField) Home() { f.caret = 0 }

func (f *InputField) End() { f.caret = len(f.value) }

func (f *InputField) Reset() {
	f.value = nil
	f.caret = 0
}

// View draws the text with cursor marking the caret when focused.
func (f *InputField) View(cursor func(string) string) string {
	if !f.focused {
		return string(f.value)
	}
	var b strings.Builder
	b.WriteString(string(f.value[:f.caret]))
	under := " "
	if f.caret < len(f.value) {
		under = string(f.value[f.caret])
	}
	b.WriteString(cursor(under))
	if f.caret < len(f.value) {
		b.WriteString(string(f.value[f.caret+1:]))
	}
	return b.String()
}
