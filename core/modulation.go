package core

import (
	"fmt"
	"math"
)

// ppmEpsilon keeps the approximate PPM expression away from zero
// denominators and zero probabilities.
const ppmEpsilon = 1e-12

// QFunc is the Gaussian tail function Q(x) = 0.5·erfc(x/√2).
func QFunc(x float64) float64 {
	return 0.5 * math.Erfc(x/math.Sqrt2)
}

// BEROOKFromSNRdB returns the OOK bit-error rate Q(√SNR) for an SNR given
// in decibels. This is the standard first-order approximation for IM/DD
// on-off keying with optimal threshold and equal priors in AWGN.
func BEROOKFromSNRdB(snrDB float64) float64 {
	snrLin := math.Pow(10, snrDB/10)
	return QFunc(math.Sqrt(snrLin))
}

// BERPPMApprox estimates the symbol-error-driven BER of M-ary PPM from the
// linear per-symbol SNR as
//
//	max(ε, 0.5·exp(-SNR / (2·log2(M) + ε)))
//
// This is NOT a validated closed form; it is a rough placeholder pending a
// Monte-Carlo or literature-backed expression, kept only so PPM trade-off
// sweeps have a number to plot. Treat results as order-of-magnitude.
func BERPPMApprox(m int, snrPerSymbol float64) float64 {
	if m < 2 {
		return 0.5
	}
	ber := 0.5 * math.Exp(-snrPerSymbol/(2*math.Log2(float64(m))+ppmEpsilon))
	return math.Max(ppmEpsilon, ber)
}

// PPMEncode packs a bitstream into M-ary PPM one-hot symbols. Each group of
// ⌈log2 M⌉ bits (MSB first, the final partial group zero-padded) maps to a
// slot index modulo M, and one row per symbol is emitted with a single 1 in
// that slot. No framing, channel coding or error detection is applied.
func PPMEncode(bits []int, m int) ([][]int, error) {
	if m < 2 {
		return nil, fmt.Errorf("ppm encode: order %d must be >= 2", m)
	}
	k := int(math.Ceil(math.Log2(float64(m))))

	padded := make([]int, 0, len(bits))
	for _, b := range bits {
		padded = append(padded, b&1)
	}
	for len(padded)%k != 0 {
		padded = append(padded, 0)
	}

	symbols := make([][]int, 0, len(padded)/k)
	for i := 0; i < len(padded); i += k {
		idx := 0
		for _, b := range padded[i : i+k] {
			idx = idx<<1 | b
		}
		row := make([]int, m)
		row[idx%m] = 1
		symbols = append(symbols, row)
	}
	return symbols, nil
}
