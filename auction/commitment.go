package auction

import (
	"crypto/rand"
	"github.com/kurumiimari/vickrey/bio"
	"github.com/kurumiimari/vickrey/gcrypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

const NonceSize = 32

// CreateCommitment binds a bid to a secret nonce:
// blake2b-256(uint64LE(bid) || nonce).
func CreateCommitment(bid uint64, nonce []byte) gcrypto.Hash {
	return gcrypto.Blake256(bio.Uint64LE(bid), nonce)
}

func VerifyCommitment(commitment gcrypto.Hash, bid uint64, nonce []byte) bool {
	return CreateCommitment(bid, nonce).Equal(commitment)
}

// NewNonce returns NonceSize random bytes.
func NewNonce() []byte {
	out := make([]byte, NonceSize)
	if _, err := rand.Read(out); err != nil {
		panic(err)
	}
	return out
}

// AuctionID is the SHA3-256 of the auction's name.
func AuctionID(name string) gcrypto.Hash {
	return gcrypto.SHA3256([]byte(name))
}

// NonceMnemonic renders a 32-byte nonce as a 24-word BIP-39 phrase so that
// bidders can write it down between the bid and reveal phases.
func NonceMnemonic(nonce []byte) (string, error) {
	if len(nonce) != NonceSize {
		return "", errors.Errorf("nonce must be %d bytes", NonceSize)
	}
	mnemonic, err := bip39.NewMnemonic(nonce)
	return mnemonic, errors.Wrap(err, "error encoding nonce mnemonic")
}

func NonceFromMnemonic(mnemonic string) ([]byte, error) {
	nonce, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, errors.Wrap(err, "invalid nonce mnemonic")
	}
	if len(nonce) != NonceSize {
		return nil, errors.Errorf("nonce must be %d bytes", NonceSize)
	}
	return nonce, nil
}
