package fsmutil

import "testing"

func TestPending(t *testing.T) {
	if !SetPending(1, "upload") {
		t.Fatal("первый SetPending должен пройти")
	}
	if SetPending(1, "review") {
		t.Fatal("второе действие в том же чате должно быть отклонено")
	}
	ClearPending(1, "review")
	if SetPending(1, "x") {
		t.Fatal("чужой ключ не должен снимать флаг")
	}
	ClearPending(1, "upload")
	if !SetPending(1, "x") {
		t.Fatal("после снятия флага действие разрешено")
	}
	ClearPending(1, "x")
}

func TestIsCancelText(t *testing.T) {
	for _, s := range []string{"cancel", " /Cancel "} {
		if !IsCancelText(s) {
			t.Fatalf("%q должно считаться отменой", s)
		}
	}
	if IsCancelText("cancellation") {
		t.Fatal("лишнее совпадение")
	}
}
