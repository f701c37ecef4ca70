package api

import (
	"github.com/gorilla/mux"
	"net/http"
)

func (a *API) HandleAccountGET(w http.ResponseWriter, r *http.Request) {
	bech := mux.Vars(r)["address"]
	addr, ok := a.parseAddress(w, bech)
	if !ok {
		return
	}
	balance, err := a.node.Balance(addr)
	if err != nil {
		MarshalNodeError(w, err)
		return
	}
	MarshalResponseJSON(w, &AccountRes{
		Address: bech,
		Balance: balance,
	})
}

func (a *API) HandleAccountTransfersGET(w http.ResponseWriter, r *http.Request) {
	addr, ok := a.parseAddress(w, mux.Vars(r)["address"])
	if !ok {
		return
	}
	transfers, err := a.node.AccountTransfers(addr)
	if err != nil {
		MarshalNodeError(w, err)
		return
	}
	MarshalResponseJSON(w, &TransfersRes{
		Transfers: transfers,
	})
}

// HandleAccountFundPOST mints test funds on networks with a faucet.
func (a *API) HandleAccountFundPOST(w http.ResponseWriter, r *http.Request) {
	req := new(FundReq)
	if !UnmarshalRequestJSON(w, r, req) {
		return
	}
	bech := mux.Vars(r)["address"]
	addr, ok := a.parseAddress(w, bech)
	if !ok {
		return
	}
	balance, err := a.node.Fund(addr, req.Amount)
	if err != nil {
		MarshalNodeError(w, err)
		return
	}
	MarshalResponseJSON(w, &AccountRes{
		Address: bech,
		Balance: balance,
	})
}
