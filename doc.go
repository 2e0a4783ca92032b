// Package entropy implements the adaptive entropy coding layer of a block
// transform video codec: quantized transform coefficients and motion vectors
// are turned into a range coded bitstream and back, using context dependent
// probability models that adapt between frames.
//
// A frame context (Model) holds every probability the coders use. Each tile
// is coded by a TileEncoder or TileDecoder working on a private copy of the
// frame context and collecting private statistics. Once all tiles of a frame
// are done, Adapt merges their statistics into the model used by the next
// frame.
//
// Encoding a tile:
//
//	enc, err := entropy.NewTileEncoder(model, entropy.Tile{Cols: 16, Rows: 16}, opts)
//	...
//	eob, err := enc.OptimizeBlock(&params, coeffs, levels, nil, lambda)
//	eob, err = enc.EncodeBlock(&params, levels)
//	err = enc.EncodeMV(entropy.MV{Row: -9, Col: 24}, entropy.PrecisionLow)
//	data := enc.Finish()
//
// Decoding mirrors the calls in the same order:
//
//	dec, err := entropy.NewTileDecoder(model, entropy.Tile{Cols: 16, Rows: 16}, data, opts)
//	eob, err := dec.DecodeBlock(&params, out)
//	v, err := dec.DecodeMV(entropy.PrecisionLow)
//
// Two coding strategies are available and must match on both sides:
// StrategyTree codes every binary decision of the token tree with an 8-bit
// probability, StrategyMultiSymbol codes whole symbols with CDFs derived from
// the same probabilities.
package entropy
