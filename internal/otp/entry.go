package otp

import "strings"

const Length = 6

// Entry — шесть ячеек по одной цифре, как поле ввода кода в форме регистрации.
type Entry struct {
	cells [Length]string
	focus int
}

func (e *Entry) Focus() int { return e.focus }

func (e *Entry) Cell(i int) string {
	if i < 0 || i >= Length {
		return ""
	}
	return e.cells[i]
}

// Input пишет в ячейку idx; нецифровые символы отбрасываются.
// Если цифра осталась — фокус уходит на следующую ячейку.
func (e *Entry) Input(idx int, v string) {
	if idx < 0 || idx >= Length {
		return
	}
	d := digitsOnly(v)
	if len(d) > 1 {
		d = d[len(d)-1:]
	}
	e.cells[idx] = d
	e.focus = idx
	if d != "" && idx < Length-1 {
		e.focus = idx + 1
	}
}

// Type — ввод в ячейку под фокусом.
func (e *Entry) Type(v string) { e.Input(e.focus, v) }

// Backspace на пустой ячейке уводит фокус назад и очищает предыдущую.
func (e *Entry) Backspace(idx int) {
	if idx < 0 || idx >= Length {
		return
	}
	if e.cells[idx] != "" {
		e.cells[idx] = ""
		e.focus = idx
		return
	}
	if idx > 0 {
		e.cells[idx-1] = ""
		e.focus = idx - 1
	}
}

// Erase — backspace в ячейке под фокусом (кнопка ⌫ на клавиатуре).
func (e *Entry) Erase() { e.Backspace(e.focus) }

// Paste раскладывает код по ячейкам начиная с первой.
func (e *Entry) Paste(v string) {
	e.Clear()
	for _, r := range digitsOnly(v) {
		if e.cells[Length-1] != "" {
			break
		}
		e.Type(string(r))
	}
}

func (e *Entry) Clear() {
	e.cells = [Length]string{}
	e.focus = 0
}

func (e *Entry) Value() string { return strings.Join(e.cells[:], "") }

func (e *Entry) Complete() bool { return len(e.Value()) == Length }

// Mask — ячейки для показа пользователю, текущая в квадратных скобках.
func (e *Entry) Mask() string {
	var b strings.Builder
	for i, c := range e.cells {
		if c == "" {
			c = "_"
		}
		if i == e.focus {
			b.WriteString("[" + c + "]")
		} else {
			b.WriteString(" " + c + " ")
		}
	}
	return b.String()
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
