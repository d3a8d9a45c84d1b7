package ali

import "testing"

func TestRoundTrip(t *testing.T) {
	src := []byte("procedure Hello is begin null; end Hello;")

	withs := []WithDependency{{Name: "Text_IO", SourceFile: "text_io.ads", ALIPath: "text_io.ali"}}
	exports := []ExportedSymbol{{Name: "Hello", MangledName: "hello__1", Kind: ProcedureSymbol, Line: 1}}
	attrs := Attributes{Preelaborate: false, Pure: false}

	f := New(src, withs, exports, attrs)

	data, err := f.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	if !IsALIFile(data) {
		t.Fatalf("expected encoded data to carry the ALI magic identifier")
	}

	var got File
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}

	if got.Checksum != f.Checksum {
		t.Fatalf("checksum mismatch: got %d, want %d", got.Checksum, f.Checksum)
	}

	if len(got.Withs) != 1 || got.Withs[0].Name != "Text_IO" {
		t.Fatalf("with-list did not round-trip: %+v", got.Withs)
	}

	if len(got.Exports) != 1 || got.Exports[0].MangledName != "hello__1" {
		t.Fatalf("exports did not round-trip: %+v", got.Exports)
	}

	if !got.MatchesSource(src) {
		t.Fatalf("expected round-tripped file to match original source checksum")
	}

	if got.MatchesSource([]byte("different source")) {
		t.Fatalf("expected checksum mismatch to be detected for changed source")
	}
}

func TestIncompatibleMajorVersionRejected(t *testing.T) {
	f := New([]byte("x"), nil, nil, Attributes{})
	f.Header.MajorVersion = MajorVersion + 1

	data, err := f.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	var got File
	if err := got.UnmarshalBinary(data); err == nil {
		t.Fatalf("expected an incompatible-version error")
	}
}

func TestIsALIFileRejectsForeignData(t *testing.T) {
	if IsALIFile([]byte("not an ali file")) {
		t.Fatalf("expected arbitrary text not to be recognized as an ALI file")
	}
}
