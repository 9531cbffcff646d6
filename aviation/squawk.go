// aviation/squawk.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "fmt"

// Squawk is a 4-digit octal transponder code.
type Squawk uint16

const VFRSquawk Squawk = 0o1200

func (s Squawk) String() string {
	return fmt.Sprintf("%04o", uint16(s))
}

// isValidOctal reports whether every digit of n (as a 4-digit decimal
// rendering of an octal-looking code) is in [0,7].
func isValidOctal(n int) bool {
	for n > 0 {
		if n%10 > 7 {
			return false
		}
		n /= 10
	}
	return true
}

// SquawkAllocator hands out unique squawk codes in [1201,7777],
// skipping any code with a digit > 7, wrapping on overflow.
type SquawkAllocator struct {
	next int
}

func NewSquawkAllocator() *SquawkAllocator {
	return &SquawkAllocator{next: 1201}
}

// Next returns the next valid squawk code.
func (a *SquawkAllocator) Next() Squawk {
	for {
		n := a.next
		a.next++
		if a.next > 7777 {
			a.next = 1201
		}
		if isValidOctal(n) {
			// n's decimal digits are the code's octal digits.
			var code, place Squawk = 0, 1
			for d := n; d > 0; d /= 10 {
				code += Squawk(d%10) * place
				place *= 8
			}
			return code
		}
	}
}
