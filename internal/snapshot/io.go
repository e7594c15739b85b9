package snapshot

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
)

// Read loads exactly n records of the given width from path.
func Read(path string, n, width int) (Snapshot, error) {
	if !ValidWidth(width) {
		return nil, &ReadError{Path: path, Index: -1, Wrapped: ErrInvalidWidth}
	}
	if n < 0 {
		return nil, &ReadError{Path: path, Index: -1, Wrapped: ErrInvalidCount}
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ReadError{Path: path, Index: -1, Wrapped: ErrMissingFile}
		}
		return nil, &ReadError{Path: path, Index: -1, Wrapped: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &ReadError{Path: path, Index: -1, Wrapped: err}
	}
	if info.Mode().IsRegular() {
		if have := info.Size() / int64(RecordSize(width)); int64(n) > have {
			err := fmt.Errorf("%w: got %d of %d records", ErrTruncatedRecord, have, n)
			return nil, &ReadError{Path: path, Index: int(have), Wrapped: err}
		}
	}

	snap, idx, err := decode(bufio.NewReader(f), n, width)
	if err != nil {
		return nil, &ReadError{Path: path, Index: idx, Wrapped: err}
	}
	return snap, nil
}

// Decode reads exactly n records of the given width from r. Trailing bytes
// after the n-th record are left unread.
func Decode(r io.Reader, n, width int) (Snapshot, error) {
	if !ValidWidth(width) {
		return nil, ErrInvalidWidth
	}
	if n < 0 {
		return nil, ErrInvalidCount
	}
	snap, idx, err := decode(r, n, width)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", idx, err)
	}
	return snap, nil
}

// preallocLimit caps the up-front allocation so a bogus count fails on EOF
// instead of exhausting memory.
const preallocLimit = 1 << 16

func decode(r io.Reader, n, width int) (Snapshot, int, error) {
	snap := make(Snapshot, 0, min(n, preallocLimit))
	buf := make([]byte, RecordSize(width))

	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, i, fmt.Errorf("%w: got %d of %d records", ErrTruncatedRecord, i, n)
			}
			return nil, i, err
		}

		var fields [WidthInput]float64
		for k := 0; k < width; k++ {
			fields[k] = math.Float64frombits(binary.LittleEndian.Uint64(buf[k*bytesPerField:]))
		}
		snap = append(snap, Particle{
			X:          fields[0],
			Y:          fields[1],
			Mass:       fields[2],
			VX:         fields[3],
			VY:         fields[4],
			Brightness: fields[5],
		})
	}

	return snap, -1, nil
}

// Encode writes s to w in the given record width. Brightness is dropped for
// 5-wide records.
func Encode(w io.Writer, s Snapshot, width int) error {
	if !ValidWidth(width) {
		return ErrInvalidWidth
	}
	buf := make([]byte, RecordSize(width))
	for _, p := range s {
		fields := [WidthInput]float64{p.X, p.Y, p.Mass, p.VX, p.VY, p.Brightness}
		for k := 0; k < width; k++ {
			binary.LittleEndian.PutUint64(buf[k*bytesPerField:], math.Float64bits(fields[k]))
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// Write stores s at path. The file is written to a temporary sibling and
// renamed into place so readers never observe a partial snapshot.
func Write(path string, s Snapshot, width int) error {
	if !ValidWidth(width) {
		return ErrInvalidWidth
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, s, width); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
