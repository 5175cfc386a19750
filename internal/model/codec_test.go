package model

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protowire"
)

func fixture() *Model {
	return &Model{
		TagSlots: 2,
		Words: []Word{
			{Surface: "社長", Tags: []string{"名詞", "シャチョー"}},
			{Surface: "は", Tags: []string{"助詞", "ワ"}},
			{Surface: "。", Tags: []string{"補助記号"}},
			{Surface: "猫"},
		},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	want := fixture()

	data, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode(Encode(m)) = %+v; want %+v", got, want)
	}
}

func TestMarshal_ZeroTagSlotsOmitsField(t *testing.T) {
	data := Marshal(&Model{Words: []Word{{Surface: "猫"}}})

	num, _, n := protowire.ConsumeTag(data)
	if n < 0 {
		t.Fatalf("ConsumeTag: %v", protowire.ParseError(n))
	}

	if num != fieldWords {
		t.Errorf("first field = %d; want %d", num, fieldWords)
	}
}

func TestUnmarshal_SkipsUnknownFields(t *testing.T) {
	data := Marshal(fixture())
	data = protowire.AppendTag(data, 15, protowire.BytesType)
	data = protowire.AppendString(data, "future extension")
	data = protowire.AppendTag(data, 16, protowire.VarintType)
	data = protowire.AppendVarint(data, 42)

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !reflect.DeepEqual(got, fixture()) {
		t.Errorf("Unmarshal() = %+v; want %+v", got, fixture())
	}
}

func TestUnmarshal_Corrupt(t *testing.T) {
	full := Marshal(fixture())

	tests := []struct {
		name string
		data []byte
	}{
		{"truncated", full[:len(full)-3]},
		{"bad tag", []byte{0xff}},
		{"huge tag slots", protowire.AppendVarint(protowire.AppendTag(nil, fieldTagSlots, protowire.VarintType), 1<<20)},
		{"tag slots above max", protowire.AppendVarint(protowire.AppendTag(nil, fieldTagSlots, protowire.VarintType), MaxTagSlots+1)},
		{"truncated word length", protowire.AppendTag(nil, fieldWords, protowire.BytesType)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.data)
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("Unmarshal() error = %v; want ErrCorrupt", err)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer enc.Close()

	invalid := enc.EncodeAll(Marshal(&Model{TagSlots: 0, Words: []Word{{Surface: "猫", Tags: []string{"名詞"}}}}), nil)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEmptyModel},
		{"not zstd", []byte("definitely not a zstd frame"), ErrCorrupt},
		{"too many tags", invalid, ErrCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestEncode_RejectsInvalidModel(t *testing.T) {
	_, err := Encode(&Model{Words: []Word{{Surface: ""}}})
	if err == nil {
		t.Fatal("Encode() = nil error; want error for empty surface")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.zst")

	if err := WriteFile(path, fixture()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(got.Words) != len(fixture().Words) {
		t.Errorf("len(Words) = %d; want %d", len(got.Words), len(fixture().Words))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       *Model
		wantErr bool
	}{
		{"fixture", fixture(), false},
		{"nil", nil, true},
		{"negative slots", &Model{TagSlots: -1}, true},
		{"max slots", &Model{TagSlots: MaxTagSlots}, false},
		{"slots above max", &Model{TagSlots: MaxTagSlots + 1}, true},
		{"empty surface", &Model{Words: []Word{{Surface: ""}}}, true},
		{"invalid surface", &Model{Words: []Word{{Surface: "\xff"}}}, true},
		{"too many tags", &Model{TagSlots: 1, Words: []Word{{Surface: "猫", Tags: []string{"a", "b"}}}}, true},
		{"invalid tag", &Model{TagSlots: 1, Words: []Word{{Surface: "猫", Tags: []string{"\xfe"}}}}, true},
		{"duplicate surface", &Model{Words: []Word{{Surface: "猫"}, {Surface: "猫"}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithoutTags(t *testing.T) {
	m := fixture().WithoutTags()

	if m.TagSlots != 0 {
		t.Errorf("TagSlots = %d; want 0", m.TagSlots)
	}

	for i, w := range m.Words {
		if w.Tags != nil {
			t.Errorf("Words[%d].Tags = %v; want nil", i, w.Tags)
		}
	}

	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v; want nil", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	zst := filepath.Join(dir, "model.zst")
	if err := WriteFile(zst, &Model{TagSlots: 1, Words: []Word{{Surface: "猫", Tags: []string{"名詞"}}}}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := LoadFile(zst, false)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if m.TagSlots != 1 || len(m.Words) != 1 {
		t.Errorf("LoadFile() = %+v; want one word with one tag slot", m)
	}

	txt := filepath.Join(dir, "dict.txt")
	if err := os.WriteFile(txt, []byte("猫\n犬\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err = LoadFile(txt, true)
	if err != nil {
		t.Fatalf("LoadFile(legacy): %v", err)
	}
	if len(m.Words) != 2 {
		t.Errorf("len(Words) = %d; want 2", len(m.Words))
	}

	if _, err := LoadFile(txt, false); !errors.Is(err, ErrCorrupt) {
		t.Errorf("LoadFile(text as zstd) error = %v; want ErrCorrupt", err)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing"), false); err == nil {
		t.Error("LoadFile(missing) = nil error; want error")
	}
}
