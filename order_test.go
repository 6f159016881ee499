package flipbook

import (
	"slices"
	"testing"
)

func TestBuildOrderPermutation(t *testing.T) {
	for _, dir := range []Direction{LTR, RTL} {
		for n := 0; n <= 50; n++ {
			o := BuildOrder(n, dir)
			if o.Len() != n {
				t.Fatalf("n=%d %s: Len = %d", n, dir, o.Len())
			}
			seen := make([]bool, n+1)
			for i := range n {
				p, ok := o.PageAt(i)
				if !ok || p < 1 || p > n || seen[p] {
					t.Fatalf("n=%d %s: slot %d holds %d, not a permutation", n, dir, i, p)
				}
				seen[p] = true
				if j, ok := o.IndexOf(p); !ok || j != i {
					t.Fatalf("n=%d %s: IndexOf(%d) = %d, want %d", n, dir, p, j, i)
				}
			}
		}
	}
}

func TestBuildOrderCover(t *testing.T) {
	for n := 1; n <= 50; n++ {
		if !BuildOrder(n, LTR).Cover() {
			t.Errorf("n=%d LTR: cover = false, want true", n)
		}
		rtl := BuildOrder(n, RTL)
		if rtl.Cover() != (n%2 == 0) {
			t.Errorf("n=%d RTL: cover = %t, want %t", n, rtl.Cover(), n%2 == 0)
		}
		// page 1 must never share a spread
		first := rtl.FirstIndex()
		if _, paired := rtl.Partner(first); paired {
			t.Errorf("n=%d RTL: page 1 in slot %d is paired", n, first)
		}
		if _, paired := BuildOrder(n, LTR).Partner(0); paired {
			t.Errorf("n=%d LTR: cover slot is paired", n)
		}
	}
}

func TestOrderScenarioA(t *testing.T) {
	o := BuildOrder(10, LTR)
	if want := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}; !slices.Equal(o.Pages(), want) {
		t.Errorf("Pages = %v, want %v", o.Pages(), want)
	}
	if !o.Cover() {
		t.Error("cover = false, want true")
	}
	if !o.SpreadStart(1) {
		t.Error("slot 1 should open a spread")
	}
	if got := o.Label(1, Spread); got != "2-3 / 10" {
		t.Errorf("Label(1) = %q, want %q", got, "2-3 / 10")
	}
	if got := o.Label(2, Spread); got != "2-3 / 10" {
		t.Errorf("Label(2) = %q, want %q", got, "2-3 / 10")
	}
	if got := o.Label(1, Single); got != "2 / 10" {
		t.Errorf("single Label(1) = %q, want %q", got, "2 / 10")
	}
	if got := o.Label(0, Spread); got != "1 / 10" {
		t.Errorf("Label(0) = %q, want %q", got, "1 / 10")
	}
}

func TestOrderScenarioB(t *testing.T) {
	o := BuildOrder(10, RTL)
	if want := []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}; !slices.Equal(o.Pages(), want) {
		t.Errorf("Pages = %v, want %v", o.Pages(), want)
	}
	if !o.Cover() {
		t.Error("cover = false, want true")
	}
	if p, _ := o.PageAt(0); p != 10 {
		t.Errorf("slot 0 = page %d, want 10", p)
	}
	if _, ok := o.Partner(0); ok {
		t.Error("slot 0 should be alone")
	}
	if p, _ := o.PageAt(9); p != 1 {
		t.Errorf("slot 9 = page %d, want 1", p)
	}
	if _, ok := o.Partner(9); ok {
		t.Error("slot 9 should be alone")
	}
	if o.FirstIndex() != 9 || o.LastIndex() != 0 {
		t.Errorf("First/Last = %d/%d, want 9/0", o.FirstIndex(), o.LastIndex())
	}
}

func TestOrderScenarioC(t *testing.T) {
	o := BuildOrder(7, RTL)
	if o.Cover() {
		t.Error("cover = true, want false")
	}
	for i := 0; i < 6; i++ {
		if _, ok := o.Partner(i); !ok {
			t.Errorf("slot %d should be paired", i)
		}
	}
	if _, ok := o.Partner(6); ok {
		t.Error("slot 6 should be alone")
	}
	if p, _ := o.PageAt(6); p != 1 {
		t.Errorf("slot 6 = page %d, want 1", p)
	}
	if got := o.Label(0, Spread); got != "6-7 / 7" {
		t.Errorf("Label(0) = %q, want %q", got, "6-7 / 7")
	}
}

func TestOrderOutOfRange(t *testing.T) {
	o := BuildOrder(5, LTR)
	if _, ok := o.PageAt(-1); ok {
		t.Error("PageAt(-1) ok")
	}
	if _, ok := o.PageAt(5); ok {
		t.Error("PageAt(5) ok")
	}
	if _, ok := o.IndexOf(0); ok {
		t.Error("IndexOf(0) ok")
	}
	if _, ok := o.IndexOf(6); ok {
		t.Error("IndexOf(6) ok")
	}
	tests := []struct{ in, want int }{{-3, 0}, {0, 0}, {4, 4}, {9, 4}}
	for _, tt := range tests {
		if got := o.ClampIndex(tt.in); got != tt.want {
			t.Errorf("ClampIndex(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := o.Label(7, Spread); got != "0 / 5" {
		t.Errorf("Label(7) = %q", got)
	}
}

func TestEmptyOrder(t *testing.T) {
	o := BuildOrder(0, RTL)
	if o.Len() != 0 || o.ClampIndex(3) != 0 || o.FirstIndex() != 0 {
		t.Errorf("empty order misbehaves: len %d clamp %d first %d", o.Len(), o.ClampIndex(3), o.FirstIndex())
	}
	if got := o.Label(0, Spread); got != "0 / 0" {
		t.Errorf("Label = %q, want %q", got, "0 / 0")
	}
}

func TestPagesReturnsCopy(t *testing.T) {
	o := BuildOrder(3, LTR)
	p := o.Pages()
	p[0] = 99
	if got, _ := o.PageAt(0); got != 1 {
		t.Errorf("PageAt(0) = %d after mutating Pages(), want 1", got)
	}
}
