// Package ali implements the reader/writer for Ada library information
// (".ali") files: per-unit metadata recording a source checksum, the
// unit's with-dependencies, its exported symbols, and its pragma-derived
// attributes.
//
// The on-disk layout is a fixed-layout Header (magic identifier plus
// major/minor version, hand-rolled big-endian encoding so the header can be
// read and validated without committing to a full decode) followed by a
// gob-encoded payload.
package ali

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"hash/crc32"
)

// MajorVersion is the major version of the ALI file format. A reader
// refuses any file whose header records a different major version.
const MajorVersion uint16 = 1

// MinorVersion is the minor version of the ALI file format. A reader
// accepts any minor version less than or equal to this one.
const MinorVersion uint16 = 0

// magic is the 8-byte identifier that marks a file as an adac ALI file.
var magic = [8]byte{'a', 'd', 'a', 'c', 'A', 'L', 'I', '1'}

// Header is the fixed-layout prefix of every ALI file.
type Header struct {
	Identifier   [8]byte
	MajorVersion uint16
	MinorVersion uint16
}

// IsCompatible reports whether this header can be decoded by the current
// implementation: the magic identifier must match, the major version must
// match exactly, and the minor version must be no greater than the current
// one.
func (h Header) IsCompatible() bool {
	return h.Identifier == magic &&
		h.MajorVersion == MajorVersion &&
		h.MinorVersion <= MinorVersion
}

// MarshalBinary encodes the header as 12 raw bytes: the 8-byte identifier
// followed by two big-endian uint16 version fields. The schema (everything
// after the header) is never gob-encoded for this fixed part, so a reader
// can validate the file type before committing to a full gob decode.
func (h Header) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	buf.Write(h.Identifier[:])

	var vbuf [4]byte
	binary.BigEndian.PutUint16(vbuf[0:2], h.MajorVersion)
	binary.BigEndian.PutUint16(vbuf[2:4], h.MinorVersion)
	buf.Write(vbuf[:])

	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a header from the front of buf, matching exactly
// the encoding MarshalBinary produces.
func (h *Header) UnmarshalBinary(buf *bytes.Buffer) error {
	if n, err := buf.Read(h.Identifier[:]); err != nil {
		return err
	} else if n != len(h.Identifier) {
		return errors.New("ali: malformed header: short identifier")
	}

	var vbuf [4]byte
	if n, err := buf.Read(vbuf[:]); err != nil {
		return err
	} else if n != len(vbuf) {
		return errors.New("ali: malformed header: short version")
	}

	h.MajorVersion = binary.BigEndian.Uint16(vbuf[0:2])
	h.MinorVersion = binary.BigEndian.Uint16(vbuf[2:4])

	return nil
}

// SymbolKind classifies one exported symbol recorded in an ALI file.
type SymbolKind uint8

const (
	// FunctionSymbol is an exported function.
	FunctionSymbol SymbolKind = iota
	// ProcedureSymbol is an exported procedure.
	ProcedureSymbol
	// TypeSymbol is an exported type or subtype.
	TypeSymbol
	// VariableSymbol is an exported library-level variable or constant.
	VariableSymbol
	// ExceptionSymbol is an exported exception.
	ExceptionSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case FunctionSymbol:
		return "function"
	case ProcedureSymbol:
		return "procedure"
	case TypeSymbol:
		return "type"
	case VariableSymbol:
		return "variable"
	case ExceptionSymbol:
		return "exception"
	default:
		return "unknown"
	}
}

// WithDependency records one unit this compilation unit names in a
// with-clause: its simple name, the source file that defines it (following
// the hyphenated-filename convention, dot to hyphen and lowercased), and
// the path to its own ALI file.
type WithDependency struct {
	Name       string
	SourceFile string
	ALIPath    string
}

// ExportedSymbol records one symbol this compilation unit makes visible to
// other units, with its mangled (linker-visible) name, kind, and the source
// line it was declared on.
type ExportedSymbol struct {
	Name        string
	MangledName string
	Kind        SymbolKind
	Line        int
}

// Attributes collects the pragma-derived, whole-unit attributes an ALI
// file records.
type Attributes struct {
	Preelaborate bool
	Pure         bool
	Elaborate    []string
	ElaborateAll []string
}

// File is the in-memory representation of one compilation unit's ALI data.
type File struct {
	Header   Header
	Checksum uint32
	Withs    []WithDependency
	Exports  []ExportedSymbol
	Attrs    Attributes
}

// New constructs a File with its header stamped at the current version and
// its CRC32 checksum computed from the given source text.
func New(source []byte, withs []WithDependency, exports []ExportedSymbol, attrs Attributes) *File {
	return &File{
		Header:   Header{magic, MajorVersion, MinorVersion},
		Checksum: crc32.ChecksumIEEE(source),
		Withs:    withs,
		Exports:  exports,
		Attrs:    attrs,
	}
}

// IsALIFile reports whether data begins with the adac ALI magic identifier.
func IsALIFile(data []byte) bool {
	var got [8]byte

	buf := bytes.NewBuffer(data)
	if _, err := buf.Read(got[:]); err != nil {
		return false
	}

	return got == magic
}

// MarshalBinary encodes the complete ALI file: the hand-rolled header
// followed by a gob-encoded payload (checksum, with-list, exports,
// attributes).
func (f *File) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	headerBytes, err := f.Header.MarshalBinary()
	if err != nil {
		return nil, err
	}

	buf.Write(headerBytes)

	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(f.Checksum); err != nil {
		return nil, err
	}

	if err := enc.Encode(f.Withs); err != nil {
		return nil, err
	}

	if err := enc.Encode(f.Exports); err != nil {
		return nil, err
	}

	if err := enc.Encode(f.Attrs); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a complete ALI file, matching exactly the
// encoding MarshalBinary produces.
func (f *File) UnmarshalBinary(data []byte) error {
	buf := bytes.NewBuffer(data)

	if err := f.Header.UnmarshalBinary(buf); err != nil {
		return err
	}

	if !f.Header.IsCompatible() {
		return fmt.Errorf("ali: incompatible file was v%d.%d, expected v%d.%d",
			f.Header.MajorVersion, f.Header.MinorVersion, MajorVersion, MinorVersion)
	}

	dec := gob.NewDecoder(buf)

	if err := dec.Decode(&f.Checksum); err != nil {
		return err
	}

	if err := dec.Decode(&f.Withs); err != nil {
		return err
	}

	if err := dec.Decode(&f.Exports); err != nil {
		return err
	}

	return dec.Decode(&f.Attrs)
}

// MatchesSource reports whether this file's checksum matches the given
// source text, the basis for invalidating a stale ALI when its source
// changes.
func (f *File) MatchesSource(source []byte) bool {
	return f.Checksum == crc32.ChecksumIEEE(source)
}
