package auction

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"github.com/btcsuite/btcutil/bech32"
	"github.com/kurumiimari/vickrey/bio"
	"github.com/kurumiimari/vickrey/gcrypto"
	"github.com/pkg/errors"
	"io"
)

// Address is an opaque participant identity. Only equality matters to the
// engine; the bech32 form exists for humans.
type Address struct {
	Version uint8
	Hash    []byte
}

func NewAddressFromHash(hash []byte) *Address {
	return &Address{
		Version: 0,
		Hash:    hash,
	}
}

// NewAddressFromSeed derives a stable identity from arbitrary bytes, e.g. a
// participant name in the demo harness.
func NewAddressFromSeed(seed []byte) *Address {
	return NewAddressFromHash(gcrypto.Blake160(seed))
}

// EscrowAddress is the account that holds an auction's deposits.
func EscrowAddress(auctionID gcrypto.Hash) *Address {
	return &Address{
		Version: 1,
		Hash:    gcrypto.Blake160(auctionID),
	}
}

func NewAddressFromBech32(params *Params, bech string) (*Address, error) {
	hrp, data, err := bech32.Decode(bech)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding bech32")
	}
	if hrp != params.AddressHRP {
		return nil, errors.Errorf("address prefix %s does not match network %s", hrp, params.Name)
	}
	if len(data) == 0 {
		return nil, errors.New("empty address payload")
	}
	hash, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, errors.Wrap(err, "error converting bits")
	}
	return &Address{
		Version: data[0],
		Hash:    hash,
	}, nil
}

func MustAddressFromBech32(params *Params, bech string) *Address {
	addr, err := NewAddressFromBech32(params, bech)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a *Address) String(params *Params) string {
	data, err := bech32.ConvertBits(a.Hash, 8, 5, true)
	if err != nil {
		panic(err)
	}
	bech, err := bech32.Encode(params.AddressHRP, append([]byte{a.Version}, data...))
	if err != nil {
		panic(err)
	}
	return bech
}

// Key is a network-independent map key: the hex of Bytes.
func (a *Address) Key() string {
	return hex.EncodeToString(a.Bytes())
}

// NewAddressFromKey parses the output of Key.
func NewAddressFromKey(key string) (*Address, error) {
	b, err := hex.DecodeString(key)
	if err != nil {
		return nil, errors.Wrap(err, "invalid address key")
	}
	addr := new(Address)
	if err := addr.UnmarshalBinary(b); err != nil {
		return nil, errors.Wrap(err, "invalid address key")
	}
	return addr, nil
}

func (a *Address) Equal(b *Address) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Version == b.Version && bytes.Equal(a.Hash, b.Hash)
}

func (a *Address) WriteTo(w io.Writer) (int64, error) {
	g := bio.NewGuardWriter(w)
	bio.WriteByte(g, a.Version)
	bio.WriteByte(g, uint8(len(a.Hash)))
	bio.WriteRawBytes(g, a.Hash)
	return g.N, errors.Wrap(g.Err, "error writing address")
}

func (a *Address) ReadFrom(r io.Reader) (int64, error) {
	g := bio.NewGuardReader(r)
	version, _ := bio.ReadByte(g)
	hashLen, _ := bio.ReadByte(g)
	hash, _ := bio.ReadFixedBytes(g, int(hashLen))
	if g.Err != nil {
		return g.N, errors.Wrap(g.Err, "error reading address")
	}
	a.Version = version
	a.Hash = hash
	return g.N, nil
}

func (a *Address) Bytes() []byte {
	buf := new(bytes.Buffer)
	if _, err := a.WriteTo(buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func (a *Address) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	_, err := a.WriteTo(buf)
	return buf.Bytes(), err
}

func (a *Address) UnmarshalBinary(b []byte) error {
	r := bytes.NewReader(b)
	if _, err := a.ReadFrom(r); err != nil {
		return err
	}
	if r.Len() != 0 {
		return errors.Errorf("%d trailing bytes after address", r.Len())
	}
	return nil
}

func (a *Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Version uint8  `json:"version"`
		Hash    string `json:"hash"`
	}{
		Version: a.Version,
		Hash:    hex.EncodeToString(a.Hash),
	})
}

func (a *Address) UnmarshalJSON(b []byte) error {
	var in struct {
		Version uint8  `json:"version"`
		Hash    string `json:"hash"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return errors.WithStack(err)
	}
	hash, err := hex.DecodeString(in.Hash)
	if err != nil {
		return errors.Wrap(err, "invalid address hash")
	}
	a.Version = in.Version
	a.Hash = hash
	return nil
}
