package api

import (
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/auctioneer"
	"github.com/kurumiimari/vickrey/gjson"
	"github.com/kurumiimari/vickrey/ledgerdb"
)

type MineReq struct {
	Count int `json:"count"`
}

type MineRes struct {
	Height int `json:"height"`
}

type FundReq struct {
	Amount uint64 `json:"amount"`
}

type AccountRes struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

type TransfersRes struct {
	Transfers []*ledgerdb.Transfer `json:"transfers"`
}

type CreateAuctionReq struct {
	Name        string `json:"name"`
	Beneficiary string `json:"beneficiary"`
}

type GetAuctionsRes struct {
	Auctions []*auctioneer.AuctionInfo `json:"auctions"`
}

type BidReq struct {
	Sender     string           `json:"sender"`
	Value      uint64           `json:"value"`
	Commitment gjson.ByteString `json:"commitment"`
}

type BidRes struct {
	Slot int `json:"slot"`
}

type RevealReq struct {
	Sender string           `json:"sender"`
	Value  uint64           `json:"value"`
	Bid    uint64           `json:"bid"`
	Nonce  gjson.ByteString `json:"nonce"`
}

type SettleReq struct {
	Sender string `json:"sender"`
	Value  uint64 `json:"value"`
}

// SettleRes carries the outcome for every settlement that paid out. Code
// is set when the payout was a partial-reveal or no-reveal forfeit, or
// when the auction had already been settled.
type SettleRes struct {
	Outcome     *auctioneer.OutcomeInfo  `json:"outcome"`
	Code        string                   `json:"code,omitempty"`
	Disposition auction.FundsDisposition `json:"disposition"`
}
