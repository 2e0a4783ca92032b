package scan

// MaxContexts is the number of coefficient contexts per band. Band 0 only
// uses the first 3.
const MaxContexts = 6

// NumBands is the number of frequency bands.
const NumBands = 6

// band4x4 covers every position of a 4x4 block.
var band4x4 = [16]uint8{0, 1, 1, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 5, 5, 5}

// bandLarge covers the first positions of 8x8 and larger blocks; every
// later position is in band 5.
var bandLarge = [22]uint8{0, 1, 1, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4}

var bands [NumTxSizes][]uint8

func buildBands(tx TxSize) []uint8 {
	b := make([]uint8, tx.Area())
	if tx == TX4x4 {
		copy(b, band4x4[:])
		return b
	}
	for i := range b {
		if i < len(bandLarge) {
			b[i] = bandLarge[i]
		} else {
			b[i] = 5
		}
	}
	return b
}

// Band returns the frequency band of scan position pos.
func Band(pos int, tx TxSize) int {
	return int(bands[tx][pos])
}

// Bands returns the band table of a transform size, indexed by scan
// position. The slice must not be modified.
func Bands(tx TxSize) []uint8 {
	return bands[tx]
}

// energyClass buckets a coded token by magnitude. Indexed by token value
// (ZERO..CAT6, EOB).
var energyClass = [12]uint8{0, 1, 2, 3, 3, 4, 4, 5, 5, 5, 5, 5}

// Energy returns the energy class of a token.
func Energy(token int) uint8 {
	return energyClass[token]
}

// Context returns the context of scan position pos > 0 from the energy
// classes cached at its two neighbours. cache is indexed by raster
// position. The result is in 0..5.
func Context(neighbors []int16, cache []uint8, pos int) int {
	return (1 + int(cache[neighbors[2*pos]]) + int(cache[neighbors[2*pos+1]])) >> 1
}

// EntropyContext returns the context of the first coefficient of a block:
// the number of sides (0..2) whose adjacent blocks had non-zero
// coefficients. above and left hold one flag per 4x4 unit starting at the
// block; entries past the end of a slice are outside the tile and count as
// zero.
func EntropyContext(tx TxSize, above, left []uint8) int {
	return anySet(above, tx.Units()) + anySet(left, tx.Units())
}

func anySet(flags []uint8, n int) int {
	n = min(n, len(flags))
	for _, f := range flags[:n] {
		if f != 0 {
			return 1
		}
	}
	return 0
}

// SetContexts records whether the block just coded had a non-zero
// coefficient in every above and left unit it covers.
func SetContexts(tx TxSize, above, left []uint8, nonzero bool) {
	var v uint8
	if nonzero {
		v = 1
	}
	n := tx.Units()
	for i := 0; i < n && i < len(above); i++ {
		above[i] = v
	}
	for i := 0; i < n && i < len(left); i++ {
		left[i] = v
	}
}
