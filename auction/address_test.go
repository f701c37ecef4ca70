package auction_test

import (
	"bytes"
	"encoding/json"
	"github.com/fxamacker/cbor/v2"
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/testutil"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestAddress_Bech32(t *testing.T) {
	testutil.RequireEqualHexBytes(t, "6d4afdca0468b62847a15d99bccdae2dbaa2ff5c", alice.Hash)
	require.Equal(t, "vk1qd490mjsydzmzs3aptkvmendw9ka29l6uck3e8y", alice.String(auction.ParamsMain))
	require.Equal(t, "rvk1qd490mjsydzmzs3aptkvmendw9ka29l6usntc6e", alice.String(auction.ParamsRegtest))

	addr, err := auction.NewAddressFromBech32(auction.ParamsRegtest, "rvk1qd490mjsydzmzs3aptkvmendw9ka29l6usntc6e")
	require.NoError(t, err)
	require.True(t, alice.Equal(addr))

	_, err = auction.NewAddressFromBech32(auction.ParamsMain, "rvk1qd490mjsydzmzs3aptkvmendw9ka29l6usntc6e")
	require.Error(t, err)
	_, err = auction.NewAddressFromBech32(auction.ParamsMain, "vk1qd490mjsydzmzs3aptkvmendw9ka29l6uck3e8z")
	require.Error(t, err)
	require.Panics(t, func() {
		auction.MustAddressFromBech32(auction.ParamsMain, "nope")
	})
}

func TestAddress_Key(t *testing.T) {
	require.Equal(t, "00146d4afdca0468b62847a15d99bccdae2dbaa2ff5c", alice.Key())
	addr, err := auction.NewAddressFromKey(alice.Key())
	require.NoError(t, err)
	require.True(t, alice.Equal(addr))

	_, err = auction.NewAddressFromKey("zz")
	require.Error(t, err)
	_, err = auction.NewAddressFromKey("")
	require.Error(t, err)
	_, err = auction.NewAddressFromKey(alice.Key() + "00")
	require.Error(t, err)
	_, err = auction.NewAddressFromKey(alice.Key()[:10])
	require.Error(t, err)
}

func TestAddress_Equal(t *testing.T) {
	var nilAddr *auction.Address
	require.True(t, nilAddr.Equal(nil))
	require.False(t, alice.Equal(nil))
	require.False(t, alice.Equal(bob))

	escrow := auction.EscrowAddress(auction.AuctionID("lot-1"))
	require.EqualValues(t, 1, escrow.Version)
	testutil.RequireEqualHexBytes(t, "b926365d1f17450d056578179173936eb5dbaa50", escrow.Hash)
	require.False(t, escrow.Equal(auction.NewAddressFromHash(escrow.Hash)))
}

func TestAddress_Serialization(t *testing.T) {
	buf := new(bytes.Buffer)
	n, err := alice.WriteTo(buf)
	require.NoError(t, err)
	require.EqualValues(t, 22, n)
	require.Equal(t, buf.Bytes(), alice.Bytes())

	addr := new(auction.Address)
	_, err = addr.ReadFrom(bytes.NewReader(alice.Bytes()))
	require.NoError(t, err)
	require.True(t, alice.Equal(addr))

	_, err = new(auction.Address).ReadFrom(bytes.NewReader(alice.Bytes()[:5]))
	require.Error(t, err)

	raw, err := cbor.Marshal(alice)
	require.NoError(t, err)
	addr = new(auction.Address)
	require.NoError(t, cbor.Unmarshal(raw, addr))
	require.True(t, alice.Equal(addr))
	require.NoError(t, cbor.Unmarshal(raw, new([]byte)))

	j, err := json.Marshal(alice)
	require.NoError(t, err)
	require.JSONEq(t, `{"version":0,"hash":"6d4afdca0468b62847a15d99bccdae2dbaa2ff5c"}`, string(j))
	addr = new(auction.Address)
	require.NoError(t, json.Unmarshal(j, addr))
	require.True(t, alice.Equal(addr))
}
