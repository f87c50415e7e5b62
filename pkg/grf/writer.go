package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/collidergen/pkg/encoding"
)

// Writer builds a version 0x200 archive. Files are compressed as they are
// added; Close writes the file table and header.
type Writer struct {
	w       io.WriteSeeker
	body    int64
	table   bytes.Buffer
	count   uint32
	started bool
}

// NewWriter returns a Writer that emits an archive to w.
func NewWriter(w io.WriteSeeker) *Writer {
	return &Writer{w: w}
}

func (gw *Writer) start() error {
	if gw.started {
		return nil
	}
	gw.started = true
	// Placeholder header, rewritten by Close.
	_, err := gw.w.Write(make([]byte, headerSize))
	return err
}

// Add stores data under name. Names are written EUC-KR encoded with
// backslash separators.
func (gw *Writer) Add(name string, data []byte) error {
	if err := gw.start(); err != nil {
		return err
	}

	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("compressing %s: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing %s: %w", name, err)
	}
	payload := z.Bytes()
	aligned := (len(payload) + 7) &^ 7

	if _, err := gw.w.Write(payload); err != nil {
		return err
	}
	if _, err := gw.w.Write(make([]byte, aligned-len(payload))); err != nil {
		return err
	}

	stored := encoding.UTF8ToEUCKR(strings.ReplaceAll(name, "/", "\\"))
	gw.table.Write(stored)
	gw.table.WriteByte(0)
	var rec [entrySize]byte
	binary.LittleEndian.PutUint32(rec[0:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(rec[4:], uint32(aligned))
	binary.LittleEndian.PutUint32(rec[8:], uint32(len(data)))
	rec[12] = flagFile
	binary.LittleEndian.PutUint32(rec[13:], uint32(gw.body))
	gw.table.Write(rec[:])

	gw.body += int64(aligned)
	gw.count++
	return nil
}

// Close writes the file table and the final header. It does not close the
// underlying writer.
func (gw *Writer) Close() error {
	if err := gw.start(); err != nil {
		return err
	}

	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(gw.table.Bytes()); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	var sizes [8]byte
	binary.LittleEndian.PutUint32(sizes[0:], uint32(z.Len()))
	binary.LittleEndian.PutUint32(sizes[4:], uint32(gw.table.Len()))
	if _, err := gw.w.Write(sizes[:]); err != nil {
		return err
	}
	if _, err := gw.w.Write(z.Bytes()); err != nil {
		return err
	}

	hdr := Header{
		TableOffset: uint32(gw.body),
		FileCount:   gw.count + 7,
		Version:     version200,
	}
	copy(hdr.Magic[:], grfMagic)
	if _, err := gw.w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return binary.Write(gw.w, binary.LittleEndian, hdr)
}
