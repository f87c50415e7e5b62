package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/collidergen/pkg/encoding"
)

type testFile struct {
	name  string
	data  []byte
	store bool // keep uncompressed
	flags uint8
}

// buildGRF assembles a version 0x200 archive in memory. Names are written
// EUC-KR encoded with backslashes, as the game client does.
func buildGRF(t *testing.T, files []testFile) []byte {
	t.Helper()
	var body, table bytes.Buffer
	for _, f := range files {
		payload := f.data
		if !f.store {
			var z bytes.Buffer
			zw := zlib.NewWriter(&z)
			zw.Write(f.data)
			zw.Close()
			payload = z.Bytes()
		}
		aligned := (len(payload) + 7) &^ 7
		offset := body.Len()
		body.Write(payload)
		body.Write(make([]byte, aligned-len(payload)))

		name := bytes.ReplaceAll(encoding.UTF8ToEUCKR(f.name), []byte("/"), []byte("\\"))
		table.Write(name)
		table.WriteByte(0)
		flags := f.flags
		if flags == 0 {
			flags = flagFile
		}
		binary.Write(&table, binary.LittleEndian, uint32(len(payload)))
		binary.Write(&table, binary.LittleEndian, uint32(aligned))
		binary.Write(&table, binary.LittleEndian, uint32(len(f.data)))
		table.WriteByte(flags)
		binary.Write(&table, binary.LittleEndian, uint32(offset))
	}

	var ztable bytes.Buffer
	zw := zlib.NewWriter(&ztable)
	zw.Write(table.Bytes())
	zw.Close()

	var out bytes.Buffer
	hdr := Header{
		TableOffset: uint32(body.Len()),
		FileCount:   uint32(len(files)) + 7,
		Version:     version200,
	}
	copy(hdr.Magic[:], grfMagic)
	binary.Write(&out, binary.LittleEndian, hdr)
	out.Write(body.Bytes())
	binary.Write(&out, binary.LittleEndian, uint32(ztable.Len()))
	binary.Write(&out, binary.LittleEndian, uint32(table.Len()))
	out.Write(ztable.Bytes())
	return out.Bytes()
}

var sample = []testFile{
	{name: "data/sprite/Poring.spr", data: []byte("SP\x01\x02sprite")},
	{name: "data/texture/wall.bmp", data: bytes.Repeat([]byte("BM"), 64)},
	{name: "data/sprite/몬스터/포링.spr", data: []byte("SP korean"), store: true},
	{name: "data/readme.txt", data: []byte("hello")},
	{name: "data/sprite", flags: 0x02},
}

func openSample(t *testing.T) *Archive {
	t.Helper()
	a, err := NewReader(bytes.NewReader(buildGRF(t, sample)))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	return a
}

func TestNewReader_List(t *testing.T) {
	a := openSample(t)
	want := []string{
		"data/readme.txt",
		"data/sprite/poring.spr",
		"data/sprite/몬스터/포링.spr",
		"data/texture/wall.bmp",
	}
	if d := cmp.Diff(want, a.List()); d != "" {
		t.Error(d)
	}
	if a.Len() != 4 {
		t.Errorf("expected 4 files, got %d", a.Len())
	}
}

func TestRead(t *testing.T) {
	a := openSample(t)
	tests := []struct {
		path string
		want []byte
	}{
		{`DATA\SPRITE\PORING.SPR`, sample[0].data},
		{"data/texture/wall.bmp", sample[1].data},
		{"data/sprite/몬스터/포링.spr", sample[2].data},
	}
	for _, tt := range tests {
		got, err := a.Read(tt.path)
		if err != nil {
			t.Errorf("Read(%q) failed: %v", tt.path, err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("Read(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	if _, err := a.Read("data/missing.spr"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRead_Encrypted(t *testing.T) {
	files := []testFile{{name: "secret.spr", data: []byte("x"), flags: flagFile | 0x02}}
	a, err := NewReader(bytes.NewReader(buildGRF(t, files)))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if _, err := a.Read("secret.spr"); !errors.Is(err, ErrEncrypted) {
		t.Errorf("expected ErrEncrypted, got %v", err)
	}
}

func TestGlobAndSuffix(t *testing.T) {
	a := openSample(t)
	got, err := a.Glob("data/sprite/*.SPR")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if d := cmp.Diff([]string{"data/sprite/poring.spr"}, got); d != "" {
		t.Error(d)
	}
	if _, err := a.Glob("[bad"); err == nil {
		t.Error("expected error for malformed pattern")
	}

	sprites := a.WithSuffix(".SPR", ".bmp")
	if len(sprites) != 3 {
		t.Errorf("expected 3 sprite files, got %v", sprites)
	}
}

func TestNewReader_Errors(t *testing.T) {
	good := buildGRF(t, sample)

	badMagic := bytes.Clone(good)
	badMagic[0] = 'X'
	if _, err := NewReader(bytes.NewReader(badMagic)); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}

	badVersion := bytes.Clone(good)
	binary.LittleEndian.PutUint32(badVersion[42:], 0x103)
	if _, err := NewReader(bytes.NewReader(badVersion)); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}

	tooMany := bytes.Clone(good)
	binary.LittleEndian.PutUint32(tooMany[38:], uint32(len(sample)+20))
	if _, err := NewReader(bytes.NewReader(tooMany)); !errors.Is(err, ErrCorruptTable) {
		t.Errorf("expected ErrCorruptTable, got %v", err)
	}

	if _, err := NewReader(bytes.NewReader(good[:60])); !errors.Is(err, ErrCorruptTable) {
		t.Errorf("truncated archive: expected ErrCorruptTable, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.grf")
	if err := os.WriteFile(path, buildGRF(t, sample), 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer a.Close()
	if !a.Contains("data/readme.txt") {
		t.Error("expected readme in archive")
	}
	if a.Header().Version != version200 {
		t.Errorf("unexpected version 0x%x", a.Header().Version)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.grf")); err == nil {
		t.Error("expected error opening missing archive")
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packed.grf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := NewWriter(f)
	files := map[string][]byte{
		"data/sprite/Poring.spr":  []byte("SP\x01\x02sprite"),
		"data/sprite/몬스터/포링.spr": bytes.Repeat([]byte{0xAB}, 300),
	}
	for _, name := range []string{"data/sprite/Poring.spr", "data/sprite/몬스터/포링.spr"} {
		if err := w.Add(name, files[name]); err != nil {
			t.Fatalf("Add(%q) failed: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer a.Close()

	if d := cmp.Diff([]string{"data/sprite/poring.spr", "data/sprite/몬스터/포링.spr"}, a.List()); d != "" {
		t.Error(d)
	}
	for name, want := range files {
		got, err := a.Read(name)
		if err != nil {
			t.Fatalf("Read(%q) failed: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Read(%q) returned %d bytes, want %d", name, len(got), len(want))
		}
	}
}

func TestWriter_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.grf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewWriter(f).Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	f.Close()

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer a.Close()
	if a.Len() != 0 {
		t.Errorf("expected empty archive, got %v", a.List())
	}
}
