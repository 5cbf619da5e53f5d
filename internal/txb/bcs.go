package txb

import "encoding/binary"

// BCS layout of the pure arguments used by the blog module. A vector is its
// ULEB128 element count followed by the elements.

// EncodeBytes encodes a vector<u8>.
func EncodeBytes(b []byte) []byte {
	out := make([]byte, 0, len(b)+binary.MaxVarintLen32)
	out = binary.AppendUvarint(out, uint64(len(b)))
	return append(out, b...)
}

// EncodeBytesVector encodes a vector<vector<u8>>.
func EncodeBytesVector(vs [][]byte) []byte {
	out := binary.AppendUvarint(nil, uint64(len(vs)))
	for _, v := range vs {
		out = append(out, EncodeBytes(v)...)
	}
	return out
}
