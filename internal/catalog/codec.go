package catalog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Snapshot layout:
//
//	magic   [4]byte  "PCAT"
//	version uint16   big-endian
//	count   uint32   big-endian
//	count × (varint length, record body)
//
// Record bodies use protobuf wire tags so a decoder can skip fields it does
// not know about.
const (
	FormatVersion uint16 = 1

	headerLen = 4 + 2 + 4
)

var magic = [4]byte{'P', 'C', 'A', 'T'}

const (
	fieldID          protowire.Number = 1
	fieldName        protowire.Number = 2
	fieldBrand       protowire.Number = 3
	fieldPrice       protowire.Number = 4
	fieldDescription protowire.Number = 5
	fieldStock       protowire.Number = 6
)

var (
	ErrBadMagic           = errors.New("not a catalog snapshot")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrTruncated          = errors.New("snapshot truncated")
	ErrMalformed          = errors.New("malformed record")
)

// Encode serializes the whole catalog in insertion order.
func Encode(products []Product) ([]byte, error) {
	if uint64(len(products)) > math.MaxUint32 {
		return nil, fmt.Errorf("too many records: %d", len(products))
	}

	out := make([]byte, headerLen, headerLen+len(products)*64)
	copy(out, magic[:])
	binary.BigEndian.PutUint16(out[4:6], FormatVersion)
	binary.BigEndian.PutUint32(out[6:10], uint32(len(products)))

	var body []byte
	for _, p := range products {
		body = appendRecord(body[:0], p)
		out = protowire.AppendBytes(out, body)
	}
	return out, nil
}

func appendRecord(b []byte, p Product) []byte {
	b = protowire.AppendTag(b, fieldID, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, uint64(p.ID))

	b = protowire.AppendTag(b, fieldName, protowire.BytesType)
	b = protowire.AppendString(b, p.Name)

	b = protowire.AppendTag(b, fieldBrand, protowire.BytesType)
	b = protowire.AppendString(b, p.Brand)

	b = protowire.AppendTag(b, fieldPrice, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(p.Price))

	b = protowire.AppendTag(b, fieldDescription, protowire.BytesType)
	b = protowire.AppendString(b, p.Description)

	b = protowire.AppendTag(b, fieldStock, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, uint32(p.Stock))

	return b
}

// Decode parses a snapshot produced by Encode. The result is never nil on
// success.
func Decode(data []byte) ([]Product, error) {
	if len(data) < headerLen {
		if len(data) >= len(magic) && [4]byte(data[:4]) != magic {
			return nil, ErrBadMagic
		}
		return nil, fmt.Errorf("%w: header is %d bytes", ErrTruncated, len(data))
	}
	if [4]byte(data[:4]) != magic {
		return nil, ErrBadMagic
	}

	version := binary.BigEndian.Uint16(data[4:6])
	if version == 0 || version > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	count := binary.BigEndian.Uint32(data[6:10])
	rest := data[headerLen:]

	// Every frame carries at least a one-byte length prefix.
	if uint64(count) > uint64(len(rest)) {
		return nil, fmt.Errorf("%w: %d records declared, %d bytes left", ErrTruncated, count, len(rest))
	}

	products := make([]Product, 0, count)
	for i := range count {
		body, n := protowire.ConsumeBytes(rest)
		if n < 0 {
			return nil, fmt.Errorf("%w: record %d: %w", ErrTruncated, i, protowire.ParseError(n))
		}
		rest = rest[n:]

		p, err := decodeRecord(body)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		products = append(products, p)
	}

	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(rest))
	}
	return products, nil
}

func decodeRecord(b []byte) (Product, error) {
	var p Product

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Product{}, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		if want, known := fieldTypes[num]; known && want != typ {
			return Product{}, fmt.Errorf("%w: field %d has wire type %d", ErrMalformed, num, typ)
		}

		switch num {
		case fieldID:
			v, m := protowire.ConsumeFixed64(b)
			n = m
			p.ID = int64(v)
		case fieldName:
			p.Name, n = protowire.ConsumeString(b)
		case fieldBrand:
			p.Brand, n = protowire.ConsumeString(b)
		case fieldPrice:
			v, m := protowire.ConsumeFixed64(b)
			n = m
			p.Price = math.Float64frombits(v)
		case fieldDescription:
			p.Description, n = protowire.ConsumeString(b)
		case fieldStock:
			v, m := protowire.ConsumeFixed32(b)
			n = m
			p.Stock = int32(v)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}

		if n < 0 {
			return Product{}, fmt.Errorf("%w: field %d: %w", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
	}

	return p, nil
}

var fieldTypes = map[protowire.Number]protowire.Type{
	fieldID:          protowire.Fixed64Type,
	fieldName:        protowire.BytesType,
	fieldBrand:       protowire.BytesType,
	fieldPrice:       protowire.Fixed64Type,
	fieldDescription: protowire.BytesType,
	fieldStock:       protowire.Fixed32Type,
}
