package intern

import (
	"slices"
	"testing"
	"unsafe"
)

func sameBacking(a, b string) bool {
	return unsafe.StringData(a) == unsafe.StringData(b)
}

func TestDictionary(t *testing.T) {
	d := NewDictionary(slices.Values([]string{"社長", "猫", "猫"}))

	if d.Len() != 2 {
		t.Errorf("Len() = %d; want 2", d.Len())
	}

	a, ok := d.Lookup([]byte("社長は"[:6]))
	if !ok || a != "社長" {
		t.Fatalf("Lookup(社長) = %q, %v; want %q, true", a, ok, "社長")
	}

	b, _ := d.LookupString("社長")
	if !sameBacking(a, b) {
		t.Error("two lookups of one word returned different backing arrays")
	}

	if _, ok := d.Lookup([]byte("火星")); ok {
		t.Error("Lookup(火星) = true; want false")
	}
}

func TestDictionary_ClonesInput(t *testing.T) {
	buf := []byte("社長")
	word := unsafe.String(&buf[0], len(buf))

	d := NewDictionary(slices.Values([]string{word}))
	got, _ := d.LookupString("社長")
	if sameBacking(got, word) {
		t.Error("Dictionary kept a reference to caller memory")
	}
}

func TestDictionary_LookupDoesNotAllocate(t *testing.T) {
	d := NewDictionary(slices.Values([]string{"社長", "猫"}))
	key := []byte("社長")

	allocs := testing.AllocsPerRun(100, func() {
		_, _ = d.Lookup(key)
	})
	if allocs != 0 {
		t.Errorf("Lookup allocated %.0f times; want 0", allocs)
	}
}

func TestLazy(t *testing.T) {
	l := NewLazy()

	first := l.Intern(string([]byte("名詞")))
	second := l.Intern(string([]byte("名詞")))
	if !sameBacking(first, second) {
		t.Error("Intern returned different backing arrays for equal values")
	}

	l.Intern("助詞")
	l.Intern("名詞")
	if l.Len() != 2 {
		t.Errorf("Len() = %d; want 2", l.Len())
	}
}

func TestRecent(t *testing.T) {
	r, err := NewRecent(2)
	if err != nil {
		t.Fatalf("NewRecent: %v", err)
	}

	a := r.Intern([]byte("東京"))
	b := r.Intern([]byte("東京"))
	if !sameBacking(a, b) {
		t.Error("cached value was not shared")
	}

	r.Intern([]byte("大阪"))
	r.Intern([]byte("京都"))
	if r.Len() != 2 {
		t.Errorf("Len() = %d; want 2", r.Len())
	}

	c := r.Intern([]byte("東京"))
	if c != "東京" {
		t.Errorf("Intern() = %q; want %q", c, "東京")
	}
	if sameBacking(a, c) {
		t.Error("evicted value was still shared")
	}
}

func TestRecent_Disabled(t *testing.T) {
	r, err := NewRecent(0)
	if err != nil {
		t.Fatalf("NewRecent: %v", err)
	}

	if got := r.Intern([]byte("猫")); got != "猫" {
		t.Errorf("Intern() = %q; want %q", got, "猫")
	}

	if r.Len() != 0 {
		t.Errorf("Len() = %d; want 0", r.Len())
	}

	var nilRecent *Recent
	if got := nilRecent.Intern([]byte("猫")); got != "猫" {
		t.Errorf("nil Intern() = %q; want %q", got, "猫")
	}
}
