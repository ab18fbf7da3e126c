// Package series sums the integers 1..n with three interchangeable strategies.
// Every strategy returns 0 for n < 1.
package series

import "fmt"

// MaxN bounds n for callers that run every strategy. The recursive strategy
// needs one stack frame per term, and the loop one iteration per term.
const MaxN = 1_000_000

// ErrOutOfRange is returned by CheckRange for n above MaxN.
var ErrOutOfRange = fmt.Errorf("n must be at most %d", MaxN)

// CheckRange reports whether n can be handed to every strategy.
func CheckRange(n int) error {
	if n > MaxN {
		return ErrOutOfRange
	}
	return nil
}

// Strategy computes 1 + 2 + ... + n.
type Strategy func(n int) int

// Strategies lists the available strategies by name, in display order.
var Strategies = []struct {
	Name string
	Sum  Strategy
}{
	{"loop", SumLoop},
	{"formula", SumFormula},
	{"recursive", SumRecursive},
}

// SumLoop adds the terms one by one.
func SumLoop(n int) int {
	sum := 0
	for i := 1; i <= n; i++ {
		sum += i
	}
	return sum
}

// SumFormula uses the closed form n(n+1)/2, halving the even factor first.
func SumFormula(n int) int {
	if n < 1 {
		return 0
	}
	if n%2 == 0 {
		return (n / 2) * (n + 1)
	}
	return n * ((n + 1) / 2)
}

// SumRecursive reduces n to n-1. Depth grows linearly with n.
func SumRecursive(n int) int {
	if n < 1 {
		return 0
	}
	return n + SumRecursive(n-1)
}
