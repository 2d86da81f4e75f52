package gocascade

import (
	"fmt"
	"io"
)

// Gap returns |A-B|.
func (t Triple) Gap() int {
	if t.A > t.B {
		return t.A - t.B
	}
	return t.B - t.A
}

// HasCorrection reports if (A+B) is a multiple of 3, i.e. whether the default cascade correction applies.
func (t Triple) HasCorrection() bool {
	return t.HasCorrectionMod(DefaultParams.CorrectionModulus)
}

// HasCorrectionMod reports if (A+B) is a multiple of the given modulus.
func (t Triple) HasCorrectionMod(modulus int) bool {
	if modulus <= 0 {
		return false
	}
	return (t.A+t.B)%modulus == 0
}

func (t Triple) String() string {
	return fmt.Sprintf("(%d, %d, %d)", t.A, t.B, t.N)
}

func (t Triple) WriteAsString(out io.Writer) {
	fmt.Fprintf(out, "%d,%d,%d,%d", t.N, t.A, t.B, t.Gap())
}
