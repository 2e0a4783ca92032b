package entropy

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/deepteams/entropy/internal/xlog"
)

// EncodeFunc codes tile i through e. It must not call e.Finish.
type EncodeFunc func(i int, e *TileEncoder) error

// DecodeFunc decodes tile i through d.
type DecodeFunc func(i int, d *TileDecoder) error

// runTiles calls work for every tile index on up to workers goroutines.
// Workers claim the next free tile until none is left. The returned error
// is the one of the lowest failing tile.
func runTiles(n, workers int, work func(i int) error) error {
	workers = min(workers, n)
	errs := make([]error, n)
	if workers <= 1 {
		for i := range n {
			errs[i] = work(i)
		}
	} else {
		var (
			wg   sync.WaitGroup
			next atomic.Int32
		)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					i := int(next.Add(1) - 1)
					if i >= n {
						return
					}
					errs[i] = work(i)
				}
			}()
		}
		wg.Wait()
	}
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("tile %d: %w", i, err)
		}
	}
	return nil
}

// EncodeTiles codes every tile of a frame in parallel, each with a private
// copy of m, and returns the tile data together with the summed statistics
// of all tiles. m is not modified.
func EncodeTiles(m *Model, tiles []Tile, opts *Options, code EncodeFunc) ([][]byte, *Counts, error) {
	o, err := opts.normalize()
	if err != nil {
		return nil, nil, err
	}
	encoders := make([]*TileEncoder, len(tiles))
	for i, t := range tiles {
		if encoders[i], err = NewTileEncoder(m, t, &o); err != nil {
			return nil, nil, fmt.Errorf("tile %d: %w", i, err)
		}
	}
	data := make([][]byte, len(tiles))
	err = runTiles(len(tiles), o.Workers, func(i int) error {
		if err := code(i, encoders[i]); err != nil {
			return err
		}
		data[i] = encoders[i].Finish()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	total := new(Counts)
	for _, e := range encoders {
		total.Add(e.Counts())
	}
	xlog.Printf(o.Logger, "entropy: encoded %d tiles on %d workers", len(tiles), min(o.Workers, len(tiles)))
	return data, total, nil
}

// DecodeTiles decodes every tile of a frame in parallel and returns the
// summed statistics. data[i] holds the bytes of tiles[i].
func DecodeTiles(m *Model, tiles []Tile, data [][]byte, opts *Options, decode DecodeFunc) (*Counts, error) {
	o, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if len(data) != len(tiles) {
		return nil, fmt.Errorf("%w: %d tile buffers for %d tiles", ErrConfigMismatch, len(data), len(tiles))
	}
	decoders := make([]*TileDecoder, len(tiles))
	for i, t := range tiles {
		if decoders[i], err = NewTileDecoder(m, t, data[i], &o); err != nil {
			return nil, fmt.Errorf("tile %d: %w", i, err)
		}
	}
	err = runTiles(len(tiles), o.Workers, func(i int) error {
		return decode(i, decoders[i])
	})
	if err != nil {
		return nil, err
	}
	total := new(Counts)
	for _, d := range decoders {
		total.Add(d.Counts())
	}
	return total, nil
}
