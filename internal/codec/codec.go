// Package codec converts text to and from the raw byte vectors the blog
// contract stores for every text field (title, content, tags, author,
// comment body), and decodes the JSON shapes the ledger RPC uses for them.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/suiblog/internal/common"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encode returns the UTF-8 bytes of text. It fails only when text holds
// byte sequences that are not valid UTF-8.
func Encode(text string) ([]byte, error) {
	b, _, err := transform.Bytes(encoding.UTF8Validator, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncoding, err)
	}
	return b, nil
}

// EncodeAll encodes every element of texts.
func EncodeAll(texts []string) ([][]byte, error) {
	out := make([][]byte, 0, len(texts))
	for i, t := range texts {
		b, err := Encode(t)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Decode interprets b as UTF-8. Invalid sequences become U+FFFD.
func Decode(b []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return string(bytes.ToValidUTF8(b, []byte("�")))
	}
	return string(out)
}

// Bytes is a byte vector as returned by the ledger RPC. It accepts a JSON
// array of numbers (vector<u8>), a JSON string (contracts that store text as
// a native string) or null.
type Bytes []byte

func (b *Bytes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*b = nil
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = Bytes(s)
		return nil
	case data[0] == '[':
		var nums []int
		if err := json.Unmarshal(data, &nums); err != nil {
			return fmt.Errorf("byte vector: %w", err)
		}
		out := make([]byte, len(nums))
		for i, n := range nums {
			if n < 0 || n > 255 {
				return fmt.Errorf("byte vector: value %d at %d out of range", n, i)
			}
			out[i] = byte(n)
		}
		*b = out
		return nil
	default:
		return fmt.Errorf("byte vector: unexpected JSON %q", string(data))
	}
}

func (b Bytes) MarshalJSON() ([]byte, error) {
	nums := make([]int, len(b))
	for i, v := range b {
		nums[i] = int(v)
	}
	return json.Marshal(nums)
}

// String decodes the vector as UTF-8 text.
func (b Bytes) String() string { return Decode(b) }

// Strings decodes a vector<vector<u8>>.
func Strings(vs []Bytes) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.String())
	}
	return out
}

// U64 is a Move u64. The RPC renders it as a decimal string, older nodes
// as a JSON number.
type U64 uint64

func (u *U64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*u = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*u = 0
			return nil
		}
		data = []byte(s)
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("u64: %w", err)
	}
	*u = U64(v)
	return nil
}
