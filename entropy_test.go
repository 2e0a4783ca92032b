package entropy

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/kr/pretty"

	"github.com/deepteams/entropy/internal/coeff"
	"github.com/deepteams/entropy/internal/scan"
)

// frameOp is one symbol of a test tile: a block or a motion vector.
type frameOp struct {
	isMV bool
	mv   MV
	prec Precision

	params   BlockParams
	coeffs   []int32 // unquantized, for the trellis
	levels   []int32
	optimize bool
}

func randomMV(rng *rand.Rand, p Precision) MV {
	comp := func() int32 {
		if rng.Intn(3) == 0 {
			return 0
		}
		v := 1 + rng.Int31n(600)
		switch p {
		case PrecisionInteger:
			v = (v + 7) &^ 7
		case PrecisionLow:
			v = (v + 1) &^ 1
		}
		if rng.Intn(2) == 0 {
			v = -v
		}
		return v
	}
	return MV{Row: comp(), Col: comp()}
}

// blockOp draws coefficients that decay along the scan and quantizes them
// by rounding.
func blockOp(rng *rand.Rand, p BlockParams) frameOp {
	b := p.block()
	area := b.Tx.Area()
	op := frameOp{
		params:   p,
		coeffs:   make([]int32, area),
		levels:   make([]int32, area),
		optimize: rng.Intn(2) == 0,
	}
	order := scan.Get(b.Tx, b.Type).Scan
	for pos := 0; pos < area; pos++ {
		amp := int32(2000 / (1 + pos))
		if amp < 2 || rng.Intn(3) == 0 {
			continue
		}
		rc := int(order[pos])
		c := rng.Int31n(amp)
		step := p.Dequant.Step(pos, rc)
		q := (c + step/2) / step
		if rng.Intn(2) == 0 {
			c, q = -c, -q
		}
		op.coeffs[rc] = c
		op.levels[rc] = q
	}
	return op
}

// buildTile lays out luma blocks of mixed sizes, optionally preceded by a
// motion vector, then 4x4 blocks in both chroma planes.
func buildTile(rng *rand.Rand, t Tile, withMV bool, prec Precision) []frameOp {
	ref := Intra
	if withMV {
		ref = Inter
	}
	dq := Dequant{DC: 8, AC: 11}
	var ops []frameOp
	for row := 0; row < t.Rows; row += 2 {
		for col := 0; col < t.Cols; col += 2 {
			if withMV {
				ops = append(ops, frameOp{isMV: true, mv: randomMV(rng, prec), prec: prec})
			}
			tx := TX8x8
			if rng.Intn(3) == 0 {
				tx = TX4x4
			}
			ops = append(ops, blockOp(rng, BlockParams{
				Col: col, Row: row, Tx: tx, Type: TxType(rng.Intn(4)), Ref: ref, Dequant: dq,
			}))
		}
	}
	for plane := 1; plane < NumPlanes; plane++ {
		cols, rows := t.planeSize(plane)
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				ops = append(ops, blockOp(rng, BlockParams{
					Plane: plane, Col: col, Row: row, Tx: TX4x4, Ref: ref, Dequant: dq,
				}))
			}
		}
	}
	return ops
}

// encodeTile codes ops through e. Optimized levels are written back into
// the ops.
func encodeTile(e *TileEncoder, ops []frameOp, lambda int64) error {
	for i := range ops {
		op := &ops[i]
		if op.isMV {
			if err := e.EncodeMV(op.mv, op.prec); err != nil {
				return fmt.Errorf("op %d: %w", i, err)
			}
			continue
		}
		if op.optimize {
			if _, err := e.OptimizeBlock(&op.params, op.coeffs, op.levels, nil, lambda); err != nil {
				return fmt.Errorf("op %d: OptimizeBlock: %w", i, err)
			}
		}
		if _, err := e.EncodeBlock(&op.params, op.levels); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}

// checkTile decodes ops through d and compares every value.
func checkTile(d *TileDecoder, ops []frameOp) error {
	out := make([]int32, 1024)
	want := make([]int32, 1024)
	for i := range ops {
		op := &ops[i]
		if op.isMV {
			v, err := d.DecodeMV(op.prec)
			if err != nil {
				return fmt.Errorf("op %d: %w", i, err)
			}
			if v != op.mv {
				return fmt.Errorf("op %d: mv = %+v, want %+v", i, v, op.mv)
			}
			continue
		}
		if _, err := d.DecodeBlock(&op.params, out); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
		b := op.params.block()
		coeff.DequantizeBlock(&b, op.levels, want)
		for rc := 0; rc < b.Tx.Area(); rc++ {
			if out[rc] != want[rc] {
				return fmt.Errorf("op %d (plane %d, %v): coeff %d = %d, want %d",
					i, op.params.Plane, b.Tx, rc, out[rc], want[rc])
			}
		}
	}
	return nil
}

func TestTileRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		bitDepth int
		withMV   bool
		prec     Precision
		allowHP  bool
	}{
		{"tree/intra", StrategyTree, 8, false, PrecisionLow, false},
		{"multi/intra", StrategyMultiSymbol, 8, false, PrecisionLow, false},
		{"tree/inter-integer", StrategyTree, 8, true, PrecisionInteger, false},
		{"multi/inter-low", StrategyMultiSymbol, 10, true, PrecisionLow, false},
		{"tree/inter-high", StrategyTree, 12, true, PrecisionHigh, true},
		{"multi/inter-high", StrategyMultiSymbol, 8, true, PrecisionHigh, true},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(int64(i) + 1))
			opts := &Options{
				BitDepth:             tt.bitDepth,
				Strategy:             tt.strategy,
				AllowHighPrecisionMV: tt.allowHP,
				TrellisShortcut:      i%2 == 0,
			}
			tile := Tile{Cols: 8, Rows: 6}
			ops := buildTile(rng, tile, tt.withMV, tt.prec)
			m := NewModel()

			enc, err := NewTileEncoder(m, tile, opts)
			if err != nil {
				t.Fatal(err)
			}
			if err := encodeTile(enc, ops, 300); err != nil {
				t.Fatal(err)
			}
			if enc.Rate() <= 0 {
				t.Errorf("Rate() = %d, want > 0", enc.Rate())
			}
			data := enc.Finish()

			dec, err := NewTileDecoder(m, tile, data, opts)
			if err != nil {
				t.Fatal(err)
			}
			if err := checkTile(dec, ops); err != nil {
				t.Fatal(err)
			}
			if diff := pretty.Diff(enc.Counts(), dec.Counts()); len(diff) > 0 {
				t.Errorf("encoder and decoder counts differ: %v", diff)
			}
		})
	}
}

func TestOptimizeBlockMatchesDecoder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tile := Tile{Cols: 4, Rows: 4}
	m := NewModel()
	enc, err := NewTileEncoder(m, tile, nil)
	if err != nil {
		t.Fatal(err)
	}
	op := blockOp(rng, BlockParams{Tx: TX16x16, Dequant: Dequant{DC: 6, AC: 9}})
	dq := make([]int32, 256)
	eob, err := enc.OptimizeBlock(&op.params, op.coeffs, op.levels, dq, 1000)
	if err != nil {
		t.Fatal(err)
	}
	got, err := enc.EncodeBlock(&op.params, op.levels)
	if err != nil {
		t.Fatal(err)
	}
	if got != eob {
		t.Errorf("EncodeBlock eob = %d, OptimizeBlock eob = %d", got, eob)
	}

	dec, err := NewTileDecoder(m, tile, enc.Finish(), nil)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]int32, 256)
	if _, err := dec.DecodeBlock(&op.params, out); err != nil {
		t.Fatal(err)
	}
	for rc := range out {
		if out[rc] != dq[rc] {
			t.Fatalf("coeff %d = %d, trellis reconstructed %d", rc, out[rc], dq[rc])
		}
	}
}

func TestBlockOutsideTile(t *testing.T) {
	enc, err := NewTileEncoder(NewModel(), Tile{Cols: 4, Rows: 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	levels := make([]int32, 16)
	tests := []BlockParams{
		{Col: 4, Dequant: Dequant{DC: 1, AC: 1}},
		{Row: 2, Dequant: Dequant{DC: 1, AC: 1}},
		{Plane: 1, Col: 2, Dequant: Dequant{DC: 1, AC: 1}},
		{Plane: 3, Dequant: Dequant{DC: 1, AC: 1}},
		{Col: -1, Dequant: Dequant{DC: 1, AC: 1}},
	}
	for _, p := range tests {
		if _, err := enc.EncodeBlock(&p, levels); !errors.Is(err, ErrConfigMismatch) {
			t.Errorf("EncodeBlock(%+v) error = %v, want ErrConfigMismatch", p, err)
		}
	}
	// A block overhanging the edge is fine; its contexts are cut off.
	p := BlockParams{Col: 3, Row: 1, Tx: TX16x16, Dequant: Dequant{DC: 1, AC: 1}}
	if _, err := enc.EncodeBlock(&p, make([]int32, 256)); err != nil {
		t.Errorf("EncodeBlock at edge: %v", err)
	}
}

func TestHighPrecisionNeedsOption(t *testing.T) {
	enc, err := NewTileEncoder(NewModel(), Tile{Cols: 1, Rows: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeMV(MV{Row: 3}, PrecisionHigh); !errors.Is(err, ErrConfigMismatch) {
		t.Errorf("EncodeMV high precision error = %v, want ErrConfigMismatch", err)
	}
	if err := enc.EncodeMV(MV{Row: 3}, PrecisionLow); !errors.Is(err, ErrConfigMismatch) {
		t.Errorf("EncodeMV odd vector at low precision error = %v, want ErrConfigMismatch", err)
	}
	if err := enc.EncodeMV(MV{Row: MaxMVMagnitude + 1}, PrecisionLow); !errors.Is(err, ErrConfigMismatch) {
		t.Errorf("EncodeMV out of range error = %v, want ErrConfigMismatch", err)
	}
	if err := enc.EncodeMV(MV{Row: 4, Col: -16}, PrecisionLow); err != nil {
		t.Errorf("EncodeMV valid vector: %v", err)
	}
	if n := len(enc.symbols); n != 1 {
		t.Errorf("%d symbols recorded, want 1", n)
	}
}

func TestDecodeTruncatedLatches(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tile := Tile{Cols: 8, Rows: 8}
	ops := buildTile(rng, tile, true, PrecisionLow)
	m := NewModel()
	enc, _ := NewTileEncoder(m, tile, nil)
	if err := encodeTile(enc, ops, 0); err != nil {
		t.Fatal(err)
	}
	data := enc.Finish()

	dec, err := NewTileDecoder(m, tile, data[:len(data)/4], nil)
	if err != nil {
		t.Fatal(err)
	}
	// Past the end the coder reads zeros, which may still decode to valid
	// symbols for a while; keep going until the overrun is detected.
	out := make([]int32, 1024)
	for i := 0; i < 100*len(ops) && err == nil; i++ {
		op := &ops[i%len(ops)]
		if op.isMV {
			_, err = dec.DecodeMV(op.prec)
		} else {
			_, err = dec.DecodeBlock(&op.params, out)
		}
	}
	if !errors.Is(err, ErrStreamCorrupt) {
		t.Fatalf("decoding truncated tile: error = %v, want ErrStreamCorrupt", err)
	}
	if _, err2 := dec.DecodeMV(PrecisionLow); err2 != dec.err {
		t.Errorf("DecodeMV after failure = %v, want latched %v", err2, dec.err)
	}
	if _, err2 := dec.DecodeBlock(&ops[1].params, make([]int32, 64)); err2 != dec.err {
		t.Errorf("DecodeBlock after failure = %v, want latched %v", err2, dec.err)
	}
}

func TestModelClone(t *testing.T) {
	m := NewModel()
	c := m.Clone()
	c.Coeff.Probs[0][0][0][0][0][0] = 1
	c.MV.Joints[0] = 1
	if m.Coeff.Probs[0][0][0][0][0][0] == 1 || m.MV.Joints[0] == 1 {
		t.Error("Clone shares memory with the original")
	}
	if err := m.Validate(); err != nil {
		t.Errorf("default model: %v", err)
	}
	c.MV.Joints[0] = 0
	if err := c.Validate(); !errors.Is(err, ErrModelInconsistent) {
		t.Errorf("Validate with zero probability = %v, want ErrModelInconsistent", err)
	}
}
