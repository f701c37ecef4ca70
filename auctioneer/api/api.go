package api

import (
	"encoding/json"
	"github.com/gorilla/mux"
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/auctioneer"
	"github.com/kurumiimari/vickrey/log"
	"github.com/pkg/errors"
	"net/http"
)

var apiLogger = log.ModuleLogger("api")

// ErrorResponse is the body of every non-2xx response. Code and
// Disposition are set for protocol errors so that clients can tell what
// happened to the value they attached.
type ErrorResponse struct {
	Msg         string                   `json:"msg"`
	Code        string                   `json:"code,omitempty"`
	Disposition auction.FundsDisposition `json:"disposition,omitempty"`
}

var invalidJSONRes = &ErrorResponse{
	Msg:  "Mal-formed JSON payload.",
	Code: CodeBadRequest,
}

func UnmarshalRequestJSON(w http.ResponseWriter, r *http.Request, in interface{}) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(in); err == nil {
		return true
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(400)
	MarshalResponseJSON(w, invalidJSONRes)
	return false
}

func MarshalErrorJSON(w http.ResponseWriter, err error, code int) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)
	if code >= 500 {
		apiLogger.Error("error handling request", "err", err)
	} else {
		apiLogger.Debug("rejected request", "err", err, "status", code)
	}
	res := &ErrorResponse{
		Msg:  err.Error(),
		Code: ErrorCode(err),
	}
	if res.Code == CodeInternal {
		switch {
		case code == http.StatusUnauthorized:
			res.Code = CodeUnauthorized
		case code < 500:
			res.Code = CodeBadRequest
		}
	}
	if code == http.StatusConflict || auction.IsFatal(err) {
		res.Disposition = auction.Disposition(err)
	}
	MarshalResponseJSON(w, res)
}

// MarshalNodeError picks the status code for an error returned by the node.
func MarshalNodeError(w http.ResponseWriter, err error) {
	MarshalErrorJSON(w, err, StatusCode(err))
}

func MarshalResponseJSON(w http.ResponseWriter, out interface{}) {
	data, err := json.Marshal(out)
	if err != nil {
		apiLogger.Error("error marshaling JSON response", "err", err)
		w.WriteHeader(500)
		return
	}
	if _, err := w.Write(data); err != nil {
		apiLogger.Warning("error writing JSON response")
	}
}

type API struct {
	params *auction.Params
	node   *auctioneer.Node
	apiKey string
}

func NewAPI(params *auction.Params, node *auctioneer.Node, apiKey string) http.Handler {
	api := &API{
		params: params,
		node:   node,
		apiKey: apiKey,
	}
	r := mux.NewRouter()
	r.Use(api.apiKeyMiddleware)
	v1 := r.PathPrefix("/api/v1").Subrouter()
	getOnly(v1.HandleFunc("/status", api.Status))
	jsonPostOnly(v1.HandleFunc("/mine", api.HandleMinePOST))
	getOnly(v1.HandleFunc("/accounts/{address}", api.HandleAccountGET))
	getOnly(v1.HandleFunc("/accounts/{address}/transfers", api.HandleAccountTransfersGET))
	jsonPostOnly(v1.HandleFunc("/accounts/{address}/fund", api.HandleAccountFundPOST))
	getOnly(v1.HandleFunc("/auctions", api.HandleAuctionsGET))
	jsonPostOnly(v1.HandleFunc("/auctions", api.HandleAuctionsPOST))
	getOnly(v1.HandleFunc("/auctions/{name}", api.HandleAuctionGET))
	getOnly(v1.HandleFunc("/auctions/{name}/transfers", api.HandleAuctionTransfersGET))
	jsonPostOnly(v1.HandleFunc("/auctions/{name}/bids", api.HandleBidsPOST))
	jsonPostOnly(v1.HandleFunc("/auctions/{name}/reveals", api.HandleRevealsPOST))
	jsonPostOnly(v1.HandleFunc("/auctions/{name}/settlements", api.HandleSettlementsPOST))
	return r
}

func (a *API) Status(w http.ResponseWriter, r *http.Request) {
	MarshalResponseJSON(w, a.node.Status())
}

func (a *API) HandleMinePOST(w http.ResponseWriter, r *http.Request) {
	req := new(MineReq)
	if !UnmarshalRequestJSON(w, r, req) {
		return
	}
	height, err := a.node.Mine(req.Count)
	if err != nil {
		MarshalNodeError(w, err)
		return
	}
	MarshalResponseJSON(w, &MineRes{
		Height: height,
	})
}

func (a *API) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		providedKey := r.Header.Get("X-API-Key")
		if providedKey != a.apiKey {
			MarshalErrorJSON(w, errors.New("invalid API key"), 401)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *API) parseAddress(w http.ResponseWriter, bech string) (*auction.Address, bool) {
	addr, err := auction.NewAddressFromBech32(a.params, bech)
	if err != nil {
		MarshalErrorJSON(w, errors.Wrap(err, "invalid address"), 400)
		return nil, false
	}
	return addr, true
}

func getOnly(route *mux.Route) {
	route.Methods("GET")
}

func postOnly(route *mux.Route) *mux.Route {
	route.Methods("POST")
	return route
}

func jsonPostOnly(route *mux.Route) {
	postOnly(route).
		Headers("Content-Type", "application/json")
}
