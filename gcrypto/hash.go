package gcrypto

import (
	"bytes"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
	"reflect"
)

const HashSize = 32

// Hash is a digest that marshals as lowercase hex in JSON and in SQL columns.
type Hash []byte

func HashFromHex(in string) (Hash, error) {
	buf, err := hex.DecodeString(in)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hex hash")
	}
	return buf, nil
}

func (h Hash) IsZero() bool {
	for _, b := range h {
		if b != 0x00 {
			return false
		}
	}
	return true
}

func (h Hash) String() string {
	return hex.EncodeToString(h)
}

func (h Hash) Equal(other Hash) bool {
	return bytes.Equal(h, other)
}

func (h Hash) MarshalJSON() ([]byte, error) {
	if len(h) == 0 {
		return json.Marshal(nil)
	}
	return json.Marshal(h.String())
}

func (h *Hash) UnmarshalJSON(b []byte) error {
	var hexStr *string
	if err := json.Unmarshal(b, &hexStr); err != nil {
		return errors.WithStack(err)
	}
	if hexStr == nil {
		*h = nil
		return nil
	}
	buf, err := HashFromHex(*hexStr)
	if err != nil {
		return err
	}
	*h = buf
	return nil
}

func (h Hash) Value() (driver.Value, error) {
	if len(h) == 0 {
		return nil, nil
	}
	return h.String(), nil
}

func (h *Hash) Scan(src interface{}) error {
	switch t := src.(type) {
	case nil:
		*h = nil
	case string:
		buf, err := HashFromHex(t)
		if err != nil {
			return err
		}
		*h = buf
	case []byte:
		buf, err := HashFromHex(string(t))
		if err != nil {
			return err
		}
		*h = buf
	default:
		return errors.Errorf("cannot scan %v into hash", reflect.TypeOf(src))
	}

	return nil
}

func Blake160(in []byte) Hash {
	buf, _ := blake2b.New(20, nil)
	buf.Write(in)
	return buf.Sum(nil)
}

func Blake256(in ...[]byte) Hash {
	buf, _ := blake2b.New256(nil)
	for _, b := range in {
		buf.Write(b)
	}
	return buf.Sum(nil)
}

func SHA3256(in []byte) Hash {
	buf := sha3.Sum256(in)
	return buf[:]
}
