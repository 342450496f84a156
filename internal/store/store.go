// Package store persists index snapshots as self-describing .psx files: a
// fixed header followed by a zstd-compressed body holding a JSON meta section
// and a raw little-endian data section. Files are written to a .tmp sibling,
// fsynced and renamed into place, so a crashed build never leaves a partial
// file under the final name.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
	"github.com/klauspost/compress/zstd"
)

const (
	MagicBytes    uint32 = 0x50535846
	FormatVersion uint32 = 1
	HeaderSize    int    = 32
)

// Kind tags what a file holds so a reader cannot load one index type as
// another.
type Kind uint32

const (
	KindCorpus Kind = iota + 1
	KindLexical
	KindSemantic
)

func (k Kind) String() string {
	switch k {
	case KindCorpus:
		return "corpus"
	case KindLexical:
		return "lexical"
	case KindSemantic:
		return "semantic"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

// Header is the fixed-size prefix of every file.
type Header struct {
	Magic    uint32
	Version  uint32
	Kind     Kind
	Checksum uint32
	MetaLen  uint64
	DataLen  uint64
}

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// Encode serialises meta as JSON and frames it with data.
func Encode(kind Kind, meta any, data []byte) ([]byte, error) {
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s meta: %w", kind, err)
	}
	raw := make([]byte, 0, len(metaBytes)+len(data))
	raw = append(raw, metaBytes...)
	raw = append(raw, data...)
	body := encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2))

	buf := make([]byte, HeaderSize, HeaderSize+len(body))
	binary.LittleEndian.PutUint32(buf[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(buf[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(kind))
	binary.LittleEndian.PutUint32(buf[12:16], crc32.ChecksumIEEE(body))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(len(metaBytes)))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(len(data)))
	return append(buf, body...), nil
}

// Decode validates a framed file, unmarshals its meta into meta and returns
// the data section.
func Decode(kind Kind, raw []byte, meta any) ([]byte, error) {
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", apperrors.ErrIndexCorrupt, len(raw))
	}
	h := Header{
		Magic:    binary.LittleEndian.Uint32(raw[0:4]),
		Version:  binary.LittleEndian.Uint32(raw[4:8]),
		Kind:     Kind(binary.LittleEndian.Uint32(raw[8:12])),
		Checksum: binary.LittleEndian.Uint32(raw[12:16]),
		MetaLen:  binary.LittleEndian.Uint64(raw[16:24]),
		DataLen:  binary.LittleEndian.Uint64(raw[24:32]),
	}
	if h.Magic != MagicBytes {
		return nil, fmt.Errorf("%w: bad magic bytes %x", apperrors.ErrIndexCorrupt, h.Magic)
	}
	if h.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", apperrors.ErrIndexCorrupt, h.Version)
	}
	if h.Kind != kind {
		return nil, fmt.Errorf("%w: file holds %s, expected %s", apperrors.ErrIndexCorrupt, h.Kind, kind)
	}
	body := raw[HeaderSize:]
	if sum := crc32.ChecksumIEEE(body); sum != h.Checksum {
		return nil, fmt.Errorf("%w: checksum %08x does not match header %08x", apperrors.ErrIndexCorrupt, sum, h.Checksum)
	}
	plain, err := decoder.DecodeAll(body, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing body: %v", apperrors.ErrIndexCorrupt, err)
	}
	if uint64(len(plain)) != h.MetaLen+h.DataLen {
		return nil, fmt.Errorf("%w: body is %d bytes, header declares %d", apperrors.ErrIndexCorrupt, len(plain), h.MetaLen+h.DataLen)
	}
	if err := json.Unmarshal(plain[:h.MetaLen], meta); err != nil {
		return nil, fmt.Errorf("%w: parsing %s meta: %v", apperrors.ErrIndexCorrupt, kind, err)
	}
	return plain[h.MetaLen:], nil
}

// Read loads and decodes the file at path. A missing file is reported as
// ErrIndexNotBuilt.
func Read(path string, kind Kind, meta any) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s index file %s does not exist", apperrors.ErrIndexNotBuilt, kind, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	data, err := Decode(kind, raw, meta)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return data, nil
}

// Exists reports whether a file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Tx stages several files and renames them into place together. Nothing is
// visible under the final names until Commit. Renames are not atomic as a
// group, so callers stamp every file with Build and readers compare stamps
// to detect a set left half-committed.
type Tx struct {
	Build  string
	staged []staged
}

type staged struct {
	tmpPath   string
	finalPath string
}

// Put encodes and durably writes one file to its temporary name.
func (tx *Tx) Put(path string, kind Kind, meta any, data []byte) error {
	raw, err := Encode(kind, meta, data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp file %s: %w", tmpPath, err)
	}
	tx.staged = append(tx.staged, staged{tmpPath: tmpPath, finalPath: path})
	if _, err := f.Write(raw); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	return nil
}

// Commit renames every staged file into place in the order they were put.
func (tx *Tx) Commit() error {
	for i, s := range tx.staged {
		if err := os.Rename(s.tmpPath, s.finalPath); err != nil {
			tx.staged = tx.staged[i:]
			tx.Abort()
			return fmt.Errorf("renaming %s: %w", s.tmpPath, err)
		}
	}
	tx.staged = nil
	return nil
}

// Abort removes any staged temporary files. It is safe to call after Commit.
func (tx *Tx) Abort() {
	for _, s := range tx.staged {
		os.Remove(s.tmpPath)
	}
	tx.staged = nil
}

// Write stages and commits a single file.
func Write(path string, kind Kind, meta any, data []byte) error {
	var tx Tx
	if err := tx.Put(path, kind, meta, data); err != nil {
		tx.Abort()
		return err
	}
	return tx.Commit()
}
