package wal

import (
	"encoding/binary"
	"path/filepath"
	"sync"

	"github.com/golang/snappy"
)

// CompressedWAL is a WAL whose payloads are snappy-compressed.
// The checksum covers the compressed bytes.
type CompressedWAL struct {
	*WAL

	statsMu           sync.Mutex
	totalWrites       uint64
	bytesUncompressed uint64
	bytesCompressed   uint64
}

// CompressedWALStats holds compression statistics
type CompressedWALStats struct {
	TotalWrites       uint64
	BytesUncompressed uint64
	BytesCompressed   uint64
	CompressionRatio  float64 // e.g., 0.75 = 75% compression
}

// NewCompressedWAL opens or creates wal_compressed.log in dataDir.
func NewCompressedWAL(dataDir string, opts ...Option) (*CompressedWAL, error) {
	w, err := openWAL(
		filepath.Join(dataDir, "wal_compressed.log"),
		binary.BigEndian,
		func(data []byte) []byte { return snappy.Encode(nil, data) },
		func(data []byte) ([]byte, error) { return snappy.Decode(nil, data) },
		opts,
	)
	if err != nil {
		return nil, err
	}

	cw := &CompressedWAL{WAL: w}
	w.onAppend = cw.record
	return cw, nil
}

func (w *CompressedWAL) record(raw, stored int) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.totalWrites++
	w.bytesUncompressed += uint64(raw)
	w.bytesCompressed += uint64(stored)
}

// GetStatistics returns compression statistics
func (w *CompressedWAL) GetStatistics() CompressedWALStats {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	ratio := 0.0
	if w.bytesUncompressed > 0 {
		ratio = 1.0 - (float64(w.bytesCompressed) / float64(w.bytesUncompressed))
	}

	return CompressedWALStats{
		TotalWrites:       w.totalWrites,
		BytesUncompressed: w.bytesUncompressed,
		BytesCompressed:   w.bytesCompressed,
		CompressionRatio:  ratio,
	}
}
