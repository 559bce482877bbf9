package math

import "golang.org/x/exp/constraints"

// DivRoundUp returns the smallest integer q with q*d >= n. d must be non-zero.
func DivRoundUp[T constraints.Unsigned](n, d T) T {
	return (n + d - 1) / d
}

// AlignTo rounds n up to the next multiple of alignment.
func AlignTo[T constraints.Unsigned](n, alignment T) T {
	if alignment == 0 {
		return n
	}
	return DivRoundUp(n, alignment) * alignment
}

// BytesPerRow returns the pitch of a row of width texels stored in blocks of
// blockWidth texels and blockSize bytes, padded to alignment.
func BytesPerRow(width, blockWidth, blockSize, alignment uint32) uint32 {
	return AlignTo(DivRoundUp(width, blockWidth)*blockSize, alignment)
}
