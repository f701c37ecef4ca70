package api

import (
	"github.com/gorilla/mux"
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/gcrypto"
	"net/http"
)

func (a *API) HandleAuctionsGET(w http.ResponseWriter, r *http.Request) {
	MarshalResponseJSON(w, &GetAuctionsRes{
		Auctions: a.node.Auctions(),
	})
}

func (a *API) HandleAuctionsPOST(w http.ResponseWriter, r *http.Request) {
	req := new(CreateAuctionReq)
	if !UnmarshalRequestJSON(w, r, req) {
		return
	}

	var beneficiary *auction.Address
	if req.Beneficiary != "" {
		var ok bool
		if beneficiary, ok = a.parseAddress(w, req.Beneficiary); !ok {
			return
		}
	}

	info, err := a.node.CreateAuction(req.Name, beneficiary)
	if err != nil {
		MarshalNodeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	MarshalResponseJSON(w, info)
}

func (a *API) HandleAuctionGET(w http.ResponseWriter, r *http.Request) {
	info, err := a.node.Auction(mux.Vars(r)["name"])
	if err != nil {
		MarshalNodeError(w, err)
		return
	}
	MarshalResponseJSON(w, info)
}

func (a *API) HandleAuctionTransfersGET(w http.ResponseWriter, r *http.Request) {
	transfers, err := a.node.Transfers(mux.Vars(r)["name"])
	if err != nil {
		MarshalNodeError(w, err)
		return
	}
	MarshalResponseJSON(w, &TransfersRes{
		Transfers: transfers,
	})
}

func (a *API) HandleBidsPOST(w http.ResponseWriter, r *http.Request) {
	req := new(BidReq)
	if !UnmarshalRequestJSON(w, r, req) {
		return
	}
	sender, ok := a.parseAddress(w, req.Sender)
	if !ok {
		return
	}

	slot, err := a.node.Submit(mux.Vars(r)["name"], sender, req.Value, gcrypto.Hash(req.Commitment))
	if err != nil {
		MarshalNodeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	MarshalResponseJSON(w, &BidRes{
		Slot: slot,
	})
}

func (a *API) HandleRevealsPOST(w http.ResponseWriter, r *http.Request) {
	req := new(RevealReq)
	if !UnmarshalRequestJSON(w, r, req) {
		return
	}
	sender, ok := a.parseAddress(w, req.Sender)
	if !ok {
		return
	}

	if err := a.node.Reveal(mux.Vars(r)["name"], sender, req.Value, req.Bid, req.Nonce); err != nil {
		MarshalNodeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) HandleSettlementsPOST(w http.ResponseWriter, r *http.Request) {
	req := new(SettleReq)
	if !UnmarshalRequestJSON(w, r, req) {
		return
	}
	sender, ok := a.parseAddress(w, req.Sender)
	if !ok {
		return
	}

	out, err := a.node.Settle(mux.Vars(r)["name"], sender, req.Value)
	if err != nil && out == nil {
		MarshalNodeError(w, err)
		return
	}

	res := &SettleRes{
		Outcome:     out,
		Disposition: auction.FundsDisbursed,
	}
	if err != nil {
		res.Code = ErrorCode(err)
	}
	MarshalResponseJSON(w, res)
}
