package entropy

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

var frameTiles = []Tile{
	{Cols: 8, Rows: 8},
	{Cols: 6, Rows: 8},
	{Cols: 8, Rows: 3},
	{Cols: 6, Rows: 3},
	{Cols: 1, Rows: 1},
}

func buildFrame(seed int64, tiles []Tile, withMV bool) [][]frameOp {
	rng := rand.New(rand.NewSource(seed))
	frame := make([][]frameOp, len(tiles))
	for i, t := range tiles {
		frame[i] = buildTile(rng, t, withMV, PrecisionLow)
	}
	return frame
}

func TestEncodeDecodeTiles(t *testing.T) {
	for _, workers := range []int{1, 3, 0} {
		opts := &Options{Strategy: StrategyMultiSymbol, Workers: workers}
		frame := buildFrame(11, frameTiles, true)
		m := NewModel()

		data, encCounts, err := EncodeTiles(m, frameTiles, opts, func(i int, e *TileEncoder) error {
			return encodeTile(e, frame[i], 500)
		})
		if err != nil {
			t.Fatalf("workers=%d: EncodeTiles: %v", workers, err)
		}
		decCounts, err := DecodeTiles(m, frameTiles, data, opts, func(i int, d *TileDecoder) error {
			return checkTile(d, frame[i])
		})
		if err != nil {
			t.Fatalf("workers=%d: DecodeTiles: %v", workers, err)
		}
		if diff := pretty.Diff(encCounts, decCounts); len(diff) > 0 {
			t.Errorf("workers=%d: summed counts differ: %v", workers, diff)
		}
		if *m != *NewModel() {
			t.Errorf("workers=%d: tile coding modified the shared model", workers)
		}
	}
}

// TestSummedCounts checks that the barrier sums exactly the per-tile
// statistics.
func TestSummedCounts(t *testing.T) {
	frame := buildFrame(12, frameTiles, true)
	m := NewModel()
	var want Counts
	for i, tile := range frameTiles {
		e, err := NewTileEncoder(m, tile, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := encodeTile(e, frame[i], 0); err != nil {
			t.Fatal(err)
		}
		want.Add(e.Counts())
	}

	frame = buildFrame(12, frameTiles, true)
	_, got, err := EncodeTiles(m, frameTiles, &Options{Workers: 4}, func(i int, e *TileEncoder) error {
		return encodeTile(e, frame[i], 0)
	})
	if err != nil {
		t.Fatal(err)
	}
	if *got != want {
		t.Errorf("EncodeTiles counts differ from per-tile sum: %v", pretty.Diff(*got, want))
	}
}

func TestMultiFrame(t *testing.T) {
	opts := &Options{Strategy: StrategyTree, Workers: 2}
	encModel, decModel := NewModel(), NewModel()
	frameTypes := []FrameType{KeyFrame, InterAfterKey, InterFrame, InterFrame}
	for f, ft := range frameTypes {
		frame := buildFrame(int64(20+f), frameTiles, ft != KeyFrame)
		data, encCounts, err := EncodeTiles(encModel, frameTiles, opts, func(i int, e *TileEncoder) error {
			return encodeTile(e, frame[i], 200)
		})
		if err != nil {
			t.Fatalf("frame %d: %v", f, err)
		}
		decCounts, err := DecodeTiles(decModel, frameTiles, data, opts, func(i int, d *TileDecoder) error {
			return checkTile(d, frame[i])
		})
		if err != nil {
			t.Fatalf("frame %d: %v", f, err)
		}
		if encModel, err = Adapt(encModel, encCounts, ft, opts); err != nil {
			t.Fatal(err)
		}
		if decModel, err = Adapt(decModel, decCounts, ft, opts); err != nil {
			t.Fatal(err)
		}
		if *encModel != *decModel {
			t.Fatalf("frame %d: adapted models diverged", f)
		}
		if err := decModel.Validate(); err != nil {
			t.Fatalf("frame %d: %v", f, err)
		}
	}
	if *encModel == *NewModel() {
		t.Error("four frames of adaptation left the model unchanged")
	}
}

func TestEncodeTilesError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := EncodeTiles(NewModel(), frameTiles, &Options{Workers: 2}, func(i int, e *TileEncoder) error {
		if i == 2 || i == 4 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if !strings.HasPrefix(err.Error(), "tile 2:") {
		t.Errorf("err = %q, want the lowest failing tile", err)
	}
}

func TestDecodeTilesMismatch(t *testing.T) {
	_, err := DecodeTiles(NewModel(), frameTiles, make([][]byte, 2), nil, func(int, *TileDecoder) error { return nil })
	if !errors.Is(err, ErrConfigMismatch) {
		t.Errorf("err = %v, want ErrConfigMismatch", err)
	}
	_, _, err = EncodeTiles(NewModel(), []Tile{{Cols: 0, Rows: 1}}, nil, func(int, *TileEncoder) error { return nil })
	if !errors.Is(err, ErrConfigMismatch) {
		t.Errorf("empty tile: err = %v, want ErrConfigMismatch", err)
	}
}
