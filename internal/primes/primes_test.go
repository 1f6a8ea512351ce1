package primes

import (
	"reflect"
	"testing"
)

func TestIsPrimeSmallValues(t *testing.T) {
	cases := map[int]bool{
		-7: false, 0: false, 1: false,
		2: true, 3: true, 4: false, 5: true,
		25: false, 29: true, 49: false,
		7919: true, 104729: true, 104730: false,
	}
	for n, want := range cases {
		if got := IsPrime(n); got != want {
			t.Fatalf("IsPrime(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestCompositesHaveDivisor(t *testing.T) {
	for n := 4; n <= 500; n++ {
		if IsPrime(n) {
			continue
		}
		found := false
		for d := 2; d < n; d++ {
			if n%d == 0 {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("%d reported composite but has no divisor", n)
		}
	}
}

func TestInRange(t *testing.T) {
	want := []int{2, 3, 5, 7}
	if got := InRange(1, 10); !reflect.DeepEqual(got, want) {
		t.Fatalf("InRange(1, 10) = %v, want %v", got, want)
	}
}

func TestInRangeSwappedBounds(t *testing.T) {
	if got, want := InRange(10, 1), InRange(1, 10); !reflect.DeepEqual(got, want) {
		t.Fatalf("swapped bounds differ: %v vs %v", got, want)
	}
}

func TestInRangeEmptyInterval(t *testing.T) {
	if got := InRange(24, 28); len(got) != 0 {
		t.Fatalf("expected no primes in [24, 28], got %v", got)
	}
}

func TestCountMatchesInRange(t *testing.T) {
	pairs := [][2]int{{1, 10}, {10, 1}, {10, 20}, {-5, 2}, {1, 10000}}
	for _, p := range pairs {
		if got, want := Count(p[0], p[1]), len(InRange(p[0], p[1])); got != want {
			t.Fatalf("Count(%d, %d) = %d, want %d", p[0], p[1], got, want)
		}
	}
	if got := Count(1, 10000); got != 1229 {
		t.Fatalf("Count(1, 10000) = %d, want 1229", got)
	}
}
