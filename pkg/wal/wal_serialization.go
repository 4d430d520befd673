package wal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/dd0wney/cluso-conduit/pkg/logging"
)

// maxEntrySize bounds DataLen so a corrupt length cannot force a huge allocation.
const maxEntrySize = 64 << 20

var errChecksumMismatch = errors.New("checksum mismatch")

// writeEntry writes a single entry.
// Format: [LSN:8][OpType:1][DataLen:4][Data:N][Checksum:4][Timestamp:8]
func writeEntry(w *bufio.Writer, order binary.ByteOrder, entry *Entry) error {
	if err := binary.Write(w, order, entry.LSN); err != nil {
		return err
	}
	if err := w.WriteByte(byte(entry.OpType)); err != nil {
		return err
	}
	if err := binary.Write(w, order, uint32(len(entry.Data))); err != nil {
		return err
	}
	if _, err := w.Write(entry.Data); err != nil {
		return err
	}
	if err := binary.Write(w, order, entry.Checksum); err != nil {
		return err
	}
	return binary.Write(w, order, entry.Timestamp)
}

// readEntry reads a single entry and verifies its checksum over the stored bytes.
func readEntry(r *bufio.Reader, order binary.ByteOrder) (*Entry, error) {
	entry := &Entry{}

	if err := binary.Read(r, order, &entry.LSN); err != nil {
		return nil, err
	}

	opTypeByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	entry.OpType = OpType(opTypeByte)

	var dataLen uint32
	if err := binary.Read(r, order, &dataLen); err != nil {
		return nil, err
	}
	if dataLen > maxEntrySize {
		return nil, fmt.Errorf("entry length %d exceeds limit", dataLen)
	}

	entry.Data = make([]byte, dataLen)
	if _, err := io.ReadFull(r, entry.Data); err != nil {
		return nil, err
	}
	if err := binary.Read(r, order, &entry.Checksum); err != nil {
		return nil, err
	}
	if err := binary.Read(r, order, &entry.Timestamp); err != nil {
		return nil, err
	}

	if crc32.ChecksumIEEE(entry.Data) != entry.Checksum {
		return entry, errChecksumMismatch
	}
	return entry, nil
}

// readEntries returns every valid entry before the first corrupt or truncated one.
// Corruption is logged, not returned, so recovery keeps the intact prefix.
// decode, when non-nil, transforms the stored payload after its checksum passes.
func readEntries(r io.Reader, order binary.ByteOrder, decode func([]byte) ([]byte, error), logger logging.Logger) []*Entry {
	reader := bufio.NewReader(r)
	entries := make([]*Entry, 0)

	for {
		entry, err := readEntry(reader, order)
		if err == io.EOF {
			break
		}
		if err == nil && decode != nil {
			var data []byte
			data, err = decode(entry.Data)
			if err == nil {
				entry.Data = data
			}
		}
		if err != nil {
			fields := []logging.Field{logging.Count(len(entries)), logging.Error(err)}
			if entry != nil {
				fields = append(fields, logging.Uint64("lsn", entry.LSN))
			}
			logger.Warn("wal corruption detected, recovery stopped", fields...)
			break
		}
		entries = append(entries, entry)
	}

	return entries
}
