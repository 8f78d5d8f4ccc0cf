package flat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// Binary snapshot layout, little-endian:
//
//	0..7  magic "TRVVEC01"
//	8..11 dimensionality (uint32)
//	      model name (uint16 length + bytes)
//	      entry count (uint64)
//	      per entry: chunk ID (uint16 length + bytes),
//	                 document ID (uint16 length + bytes),
//	                 vector (dims x float32)
const magicLen = 8

var fileMagic = [magicLen]byte{'T', 'R', 'V', 'V', 'E', 'C', '0', '1'}

// errBadFormat marks files that cannot be parsed as an index snapshot.
// Open treats these as stale content to rebuild, not as fatal errors.
var errBadFormat = errors.New("unrecognised index file format")

// snapshot is the decoded on-disk state.
type snapshot struct {
	model   string
	dims    int
	entries []entry
}

// loadFile reads and decodes the snapshot at path. Missing files
// surface os.ErrNotExist; undecodable content surfaces errBadFormat.
func loadFile(path string) (*snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	r := &reader{buf: data}

	magic, err := r.bytes(magicLen)
	if err != nil || [magicLen]byte(magic) != fileMagic {
		return nil, errBadFormat
	}

	dims, err := r.uint32()
	if err != nil || dims == 0 {
		return nil, errBadFormat
	}

	model, err := r.str()
	if err != nil {
		return nil, errBadFormat
	}

	count, err := r.uint64()
	if err != nil {
		return nil, errBadFormat
	}

	// A corrupt count must not drive allocation. Every entry occupies at
	// least two length prefixes plus the vector itself.
	remaining := uint64(len(data) - r.off)
	minEntry := 4 + uint64(dims)*4
	if count > remaining/minEntry {
		return nil, errBadFormat
	}

	entries := make([]entry, 0, count)
	for n := uint64(0); n < count; n++ {
		chunkID, err := r.str()
		if err != nil {
			return nil, errBadFormat
		}
		documentID, err := r.str()
		if err != nil {
			return nil, errBadFormat
		}
		vec, err := r.vector(int(dims))
		if err != nil {
			return nil, errBadFormat
		}
		entries = append(entries, entry{chunkID: chunkID, documentID: documentID, vector: vec})
	}

	if r.off != len(r.buf) {
		return nil, errBadFormat
	}

	return &snapshot{model: model, dims: int(dims), entries: entries}, nil
}

// writeFile encodes a snapshot to a temp file in the target directory
// and renames it over path, so a failed write never clobbers the
// previous snapshot.
func writeFile(path, model string, dims int, entries []entry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err := writeSnapshot(buf, model, dims, entries); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flushing index: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing index: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing index: %w", err)
	}
	tmpName = ""
	return nil
}

func writeSnapshot(dst io.Writer, model string, dims int, entries []entry) error {
	w := &writer{w: dst, vecBuf: make([]byte, dims*4)}
	w.bytes(fileMagic[:])
	w.uint32(uint32(dims))
	w.str(model)
	w.uint64(uint64(len(entries)))
	for _, e := range entries {
		w.str(e.chunkID)
		w.str(e.documentID)
		w.vector(e.vector)
	}
	if w.err != nil {
		return fmt.Errorf("writing index: %w", w.err)
	}
	return nil
}

// reader is a bounds-checked cursor over the snapshot bytes.
type reader struct {
	buf []byte
	off int
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.buf) {
		return nil, errBadFormat
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) uint16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) uint64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) str() (string, error) {
	n, err := r.uint16()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) vector(dims int) ([]float32, error) {
	b, err := r.bytes(dims * 4)
	if err != nil {
		return nil, err
	}
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

// writer encodes snapshot fields and holds the first error it hits.
type writer struct {
	w      io.Writer
	vecBuf []byte
	err    error
}

func (w *writer) bytes(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *writer) uint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.bytes(b[:])
}

func (w *writer) uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.bytes(b[:])
}

func (w *writer) uint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.bytes(b[:])
}

func (w *writer) str(s string) {
	if w.err != nil {
		return
	}
	if len(s) > math.MaxUint16 {
		w.err = fmt.Errorf("string field too long: %d bytes", len(s))
		return
	}
	w.uint16(uint16(len(s)))
	w.bytes([]byte(s))
}

func (w *writer) vector(vec []float32) {
	if w.err != nil {
		return
	}
	for i, v := range vec {
		binary.LittleEndian.PutUint32(w.vecBuf[i*4:], math.Float32bits(v))
	}
	w.bytes(w.vecBuf)
}
