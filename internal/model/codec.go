package model

import (
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protowire"
)

// Wire field numbers. A model message is
//
//	1: uint32 tag_slots
//	2: repeated Word words
//
// and a Word is
//
//	1: string surface
//	2: repeated string tags
//
// Unknown fields are skipped so newer writers stay readable.
const (
	fieldTagSlots protowire.Number = 1
	fieldWords    protowire.Number = 2

	fieldSurface protowire.Number = 1
	fieldTags    protowire.Number = 2
)

// maxDecodedSize bounds the decompressed model size.
const maxDecodedSize = 1 << 30

// Marshal encodes m in protobuf wire format without compression.
func Marshal(m *Model) []byte {
	var out []byte
	if m.TagSlots > 0 {
		out = protowire.AppendTag(out, fieldTagSlots, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(m.TagSlots))
	}

	var word []byte
	for _, w := range m.Words {
		word = word[:0]
		word = protowire.AppendTag(word, fieldSurface, protowire.BytesType)
		word = protowire.AppendString(word, w.Surface)
		for _, tag := range w.Tags {
			word = protowire.AppendTag(word, fieldTags, protowire.BytesType)
			word = protowire.AppendString(word, tag)
		}

		out = protowire.AppendTag(out, fieldWords, protowire.BytesType)
		out = protowire.AppendBytes(out, word)
	}

	return out
}

// Unmarshal decodes an uncompressed wire-format model.
func Unmarshal(data []byte) (*Model, error) {
	m := &Model{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldTagSlots && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: tag slots: %v", ErrCorrupt, protowire.ParseError(n))
			}
			if v > MaxTagSlots {
				return nil, fmt.Errorf("%w: tag slots %d out of range", ErrCorrupt, v)
			}
			m.TagSlots = int(v)
			data = data[n:]
		case num == fieldWords && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: word %d: %v", ErrCorrupt, len(m.Words), protowire.ParseError(n))
			}
			w, err := unmarshalWord(raw)
			if err != nil {
				return nil, fmt.Errorf("word %d: %w", len(m.Words), err)
			}
			m.Words = append(m.Words, w)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrCorrupt, num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	return m, nil
}

func unmarshalWord(data []byte) (Word, error) {
	var w Word

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Word{}, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldSurface && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return Word{}, fmt.Errorf("%w: surface: %v", ErrCorrupt, protowire.ParseError(n))
			}
			w.Surface = v
			data = data[n:]
		case num == fieldTags && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return Word{}, fmt.Errorf("%w: tag: %v", ErrCorrupt, protowire.ParseError(n))
			}
			w.Tags = append(w.Tags, v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return Word{}, fmt.Errorf("%w: field %d: %v", ErrCorrupt, num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	return w, nil
}

// Encode serializes m and wraps it in a zstd frame.
func Encode(m *Model) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer func() { _ = enc.Close() }()

	return enc.EncodeAll(Marshal(m), nil), nil
}

// Decode unwraps the zstd frame, decodes the model, and validates it.
func Decode(data []byte) (*Model, error) {
	if len(data) == 0 {
		return nil, ErrEmptyModel
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", ErrCorrupt, err)
	}

	m, err := Unmarshal(raw)
	if err != nil {
		return nil, err
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return m, nil
}

// WriteFile encodes m into a compressed model file at path.
func WriteFile(path string, m *Model) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model %s: %w", path, err)
	}

	return nil
}
