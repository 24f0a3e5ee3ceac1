package date

import (
	"slices"
	"testing"
)

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Test is about appending two values in reverse order and checking that everything is
	// as expected at every step of the way.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[1] != d1 {
		t.Errorf("history[1].day = %v want %v", h.days[1], d1)
	}
	if h.days[0] != d2 {
		t.Errorf("history[0].day = %v want %v", h.days[0], d2)
	}
	if h.values[1] != v1 {
		t.Errorf("history[1].value = %v want %v", h.values[1], v1)
	}
	if h.values[0] != v2 {
		t.Errorf("history[0].value = %v want %v", h.values[0], v2)
	}

	// same day overwrites.
	h.Append(d1, "again")
	if h.Len() != 2 {
		t.Errorf("Append(d1, again).Len() = %v want 2", h.Len())
	}
	if got, _ := h.Get(d1); got != "again" {
		t.Errorf("Get(d1) = %q want %q", got, "again")
	}
}

func TestValueAsOf(t *testing.T) {
	h := new(History[float64])
	h.Append(MustParse("2023-07-02"), 101)
	h.Append(MustParse("2023-07-03"), 102)
	h.Append(MustParse("2023-07-05"), 103)

	tests := []struct {
		on     string
		want   float64
		wantOK bool
	}{
		{"2023-07-01", 0, false},
		{"2023-07-02", 101, true},
		{"2023-07-04", 102, true},
		{"2023-07-05", 103, true},
		{"2024-01-01", 103, true},
	}
	for _, tt := range tests {
		got, ok := h.ValueAsOf(MustParse(tt.on))
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ValueAsOf(%s) = %v, %v want %v, %v", tt.on, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestUnion(t *testing.T) {
	a, b := new(History[float64]), new(History[float64])
	for _, s := range []string{"2023-07-01", "2023-07-02", "2023-07-03", "2023-07-05"} {
		a.Append(MustParse(s), 1)
	}
	for _, s := range []string{"2023-07-02", "2023-07-03", "2023-07-04", "2023-07-05"} {
		b.Append(MustParse(s), 1)
	}

	var got []string
	for d := range Union(a, b) {
		got = append(got, d.String())
	}
	want := []string{"2023-07-01", "2023-07-02", "2023-07-03", "2023-07-04", "2023-07-05"}
	if !slices.Equal(got, want) {
		t.Errorf("Union() = %v want %v", got, want)
	}
}
