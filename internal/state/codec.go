package state

import (
	"github.com/ugorji/go/codec"
)

// State entries are encoded with canonical msgpack: map keys are sorted, so
// the same logical value always produces the same bytes. The ledger's
// determinism depends on this.
var stateHandle = func() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.Canonical = true
	h.WriteExt = true
	return h
}()

// Marshal encodes a state entry canonically.
func Marshal(v any) ([]byte, error) {
	var out []byte
	enc := codec.NewEncoderBytes(&out, stateHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return out, nil
}

// Unmarshal decodes a state entry produced by Marshal.
func Unmarshal(data []byte, v any) error {
	dec := codec.NewDecoderBytes(data, stateHandle)
	return dec.Decode(v)
}
