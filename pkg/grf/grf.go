// Package grf reads Ragnarok Online GRF archives (version 0x200).
//
// Entries are addressed by their normalized path: forward slashes, lower
// case, and names decoded from EUC-KR to UTF-8. Reads go through ReadAt, so
// an Archive is safe for concurrent use.
package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/Faultbox/collidergen/pkg/encoding"
)

const (
	grfMagic   = "Master of Magic"
	headerSize = 46
	version200 = 0x200
	entrySize  = 17

	flagFile      = 0x01
	flagEncrypted = 0x06 // mixed and DES-header encryption
)

// GRF errors.
var (
	ErrInvalidMagic       = errors.New("invalid GRF magic")
	ErrUnsupportedVersion = errors.New("unsupported GRF version")
	ErrCorruptTable       = errors.New("corrupt GRF file table")
	ErrNotFound           = errors.New("file not found in GRF")
	ErrEncrypted          = errors.New("encrypted GRF entries are not supported")
)

// Header is the fixed 46-byte GRF header.
type Header struct {
	Magic         [15]byte
	EncryptionKey [15]byte
	TableOffset   uint32
	Seed          uint32
	FileCount     uint32
	Version       uint32
}

// Entry describes one stored file.
type Entry struct {
	Name             string
	CompressedSize   uint32
	AlignedSize      uint32
	UncompressedSize uint32
	Flags            uint8
	Offset           uint32
}

// Encrypted reports whether the entry uses GRF encryption.
func (e *Entry) Encrypted() bool {
	return e.Flags&flagEncrypted != 0
}

// Archive is an opened GRF archive.
type Archive struct {
	r      io.ReaderAt
	closer io.Closer
	header Header
	files  map[string]*Entry
}

// Open opens the GRF archive at path.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	a, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	a.closer = file
	return a, nil
}

// NewReader reads the header and file table from r.
func NewReader(r io.ReaderAt) (*Archive, error) {
	a := &Archive{r: r, files: make(map[string]*Entry)}
	if err := a.readHeader(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := a.readFileTable(); err != nil {
		return nil, fmt.Errorf("reading file table: %w", err)
	}
	return a, nil
}

// Close releases the underlying file, if Open created one.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// Header returns the parsed archive header.
func (a *Archive) Header() Header {
	return a.header
}

func (a *Archive) readHeader() error {
	var buf [headerSize]byte
	if _, err := a.r.ReadAt(buf[:], 0); err != nil {
		return err
	}
	if err := binary.Read(bytes.NewReader(buf[:]), binary.LittleEndian, &a.header); err != nil {
		return err
	}
	if string(a.header.Magic[:]) != grfMagic {
		return ErrInvalidMagic
	}
	if a.header.Version != version200 {
		return fmt.Errorf("%w: 0x%x", ErrUnsupportedVersion, a.header.Version)
	}
	return nil
}

func (a *Archive) readFileTable() error {
	offset := int64(a.header.TableOffset) + headerSize

	var sizes [8]byte
	if _, err := a.r.ReadAt(sizes[:], offset); err != nil {
		return fmt.Errorf("%w: table sizes: %v", ErrCorruptTable, err)
	}
	compressedSize := binary.LittleEndian.Uint32(sizes[0:])
	tableSize := binary.LittleEndian.Uint32(sizes[4:])

	compressed := make([]byte, compressedSize)
	if _, err := a.r.ReadAt(compressed, offset+8); err != nil {
		return fmt.Errorf("%w: table data: %v", ErrCorruptTable, err)
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptTable, err)
	}
	defer zr.Close()
	table := make([]byte, tableSize)
	if _, err := io.ReadFull(zr, table); err != nil {
		return fmt.Errorf("%w: inflating: %v", ErrCorruptTable, err)
	}

	if a.header.FileCount < a.header.Seed+7 {
		return fmt.Errorf("%w: file count %d below seed", ErrCorruptTable, a.header.FileCount)
	}
	count := a.header.FileCount - a.header.Seed - 7

	pos := 0
	for i := uint32(0); i < count; i++ {
		end := bytes.IndexByte(table[pos:], 0)
		if end < 0 || pos+end+1+entrySize > len(table) {
			return fmt.Errorf("%w: entry %d truncated", ErrCorruptTable, i)
		}
		name := encoding.EUCKRToUTF8(table[pos : pos+end])
		pos += end + 1

		rec := table[pos : pos+entrySize]
		pos += entrySize
		e := &Entry{
			Name:             Normalize(name),
			CompressedSize:   binary.LittleEndian.Uint32(rec[0:]),
			AlignedSize:      binary.LittleEndian.Uint32(rec[4:]),
			UncompressedSize: binary.LittleEndian.Uint32(rec[8:]),
			Flags:            rec[12],
			Offset:           binary.LittleEndian.Uint32(rec[13:]),
		}
		// Directory records carry no file flag.
		if e.Flags&flagFile != 0 {
			a.files[e.Name] = e
		}
	}
	return nil
}

// Normalize converts a GRF path to its lookup key.
func Normalize(p string) string {
	return encoding.NormalizeGRFPath(p)
}

// Len returns the number of file entries.
func (a *Archive) Len() int {
	return len(a.files)
}

// List returns all file paths in lexical order.
func (a *Archive) List() []string {
	out := make([]string, 0, len(a.files))
	for name := range a.files {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Glob returns the sorted paths matching pattern, using path.Match syntax
// against normalized names.
func (a *Archive) Glob(pattern string) ([]string, error) {
	pattern = Normalize(pattern)
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, err
	}
	var out []string
	for _, name := range a.List() {
		if ok, _ := path.Match(pattern, name); ok {
			out = append(out, name)
		}
	}
	return out, nil
}

// WithSuffix returns the sorted paths ending in any of suffixes.
func (a *Archive) WithSuffix(suffixes ...string) []string {
	var out []string
	for _, name := range a.List() {
		for _, s := range suffixes {
			if strings.HasSuffix(name, strings.ToLower(s)) {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// Stat returns the entry for a path.
func (a *Archive) Stat(p string) (*Entry, bool) {
	e, ok := a.files[Normalize(p)]
	return e, ok
}

// Contains reports whether a file exists.
func (a *Archive) Contains(p string) bool {
	_, ok := a.Stat(p)
	return ok
}

// Read returns the decompressed contents of a file.
func (a *Archive) Read(p string) ([]byte, error) {
	e, ok := a.Stat(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if e.Encrypted() {
		return nil, fmt.Errorf("%w: %s", ErrEncrypted, p)
	}

	stored := make([]byte, e.AlignedSize)
	if _, err := a.r.ReadAt(stored, int64(e.Offset)+headerSize); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	if e.CompressedSize > e.AlignedSize {
		return nil, fmt.Errorf("%w: %s sizes", ErrCorruptTable, p)
	}

	if e.CompressedSize == e.UncompressedSize {
		return stored[:e.UncompressedSize], nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(stored[:e.CompressedSize]))
	if err != nil {
		return nil, fmt.Errorf("inflating %s: %w", p, err)
	}
	defer zr.Close()
	out := make([]byte, e.UncompressedSize)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("inflating %s: %w", p, err)
	}
	return out, nil
}
