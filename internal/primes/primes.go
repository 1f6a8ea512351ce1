// Package primes holds the pure compute functions run by the worker pool.
package primes

import "math"

// IsPrime reports whether n is prime using 6k±1 trial division up to
// floor(sqrt(n)).
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n == 2 || n == 3 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	limit := int(math.Sqrt(float64(n)))
	for k := 5; k <= limit; k += 6 {
		if n%k == 0 || n%(k+2) == 0 {
			return false
		}
	}
	return true
}

// InRange returns every prime in the closed interval [start, end] in
// ascending order. Swapped bounds are tolerated.
func InRange(start, end int) []int {
	if start > end {
		start, end = end, start
	}
	var result []int
	for n := start; n <= end; n++ {
		if IsPrime(n) {
			result = append(result, n)
		}
	}
	return result
}

// Count returns the number of primes in the closed interval [start, end].
func Count(start, end int) int {
	return len(InRange(start, end))
}
