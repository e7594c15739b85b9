// Package snapshot reads and writes the fixed-width binary particle files
// produced by the N-body engines.
//
// A file is a sequence of N records with no header, footer or padding. Each
// record is 5 or 6 little-endian IEEE-754 doubles laid out positionally:
//
//	x, y, mass, vx, vy [, brightness]
//
// Engines write 5-wide result files; generated inputs carry the 6th
// brightness column. The reader assigns no meaning beyond the byte offsets.
//
// # Example
//
//	snap, err := snapshot.Read("result.gal", 500, snapshot.WidthResult)
//	if errors.Is(err, snapshot.ErrTruncatedRecord) {
//	    // the engine wrote fewer than 500 particles
//	}
package snapshot
