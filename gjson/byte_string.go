package gjson

import (
	"encoding/hex"
	"encoding/json"
	"github.com/pkg/errors"
	"strings"
)

// ByteString is a byte slice carried as hex in JSON. An optional 0x prefix
// is accepted on input, and null decodes to nil.
type ByteString []byte

func (b ByteString) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(b))
}

func (b *ByteString) UnmarshalJSON(buf []byte) error {
	var h *string
	if err := json.Unmarshal(buf, &h); err != nil {
		return errors.WithStack(err)
	}
	if h == nil {
		*b = nil
		return nil
	}
	bs, err := hex.DecodeString(strings.TrimPrefix(*h, "0x"))
	if err != nil {
		return errors.Wrap(err, "invalid hex string")
	}
	*b = bs
	return nil
}
