package auction_test

import (
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/testutil"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestCreateCommitment(t *testing.T) {
	n := make([]byte, auction.NonceSize)
	for i := range n {
		n[i] = byte(i)
	}
	c := auction.CreateCommitment(600, n)
	testutil.RequireEqualHexBytes(t, "8252923feb7446e47d7cd813ccfc89768071cc703d626032e32d5eddfd176640", c)
	require.True(t, auction.VerifyCommitment(c, 600, n))
	require.False(t, auction.VerifyCommitment(c, 601, n))
	require.False(t, auction.CreateCommitment(600, nonce(1)).Equal(auction.CreateCommitment(600, nonce(2))))
}

func TestAuctionID(t *testing.T) {
	testutil.RequireEqualHexBytes(t, "f38e7d9b9da52df78679c06570ea6c853d07c34ae64ec188727331a72d8ee034", auction.AuctionID("lot-1"))
}

func TestNonceMnemonic(t *testing.T) {
	zero := make([]byte, auction.NonceSize)
	mnemonic, err := auction.NonceMnemonic(zero)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("abandon ", 23)+"art", mnemonic)

	n := nonce(42)
	mnemonic, err = auction.NonceMnemonic(n)
	require.NoError(t, err)
	require.Len(t, strings.Fields(mnemonic), 24)
	back, err := auction.NonceFromMnemonic(mnemonic)
	require.NoError(t, err)
	require.Equal(t, n, back)

	_, err = auction.NonceMnemonic(make([]byte, 16))
	require.Error(t, err)
	_, err = auction.NonceFromMnemonic(strings.Repeat("abandon ", 11) + "about")
	require.Error(t, err)
	_, err = auction.NonceFromMnemonic("not a mnemonic")
	require.Error(t, err)
}

func TestNewNonce(t *testing.T) {
	a := auction.NewNonce()
	b := auction.NewNonce()
	require.Len(t, a, auction.NonceSize)
	require.NotEqual(t, a, b)
}
