package api

import (
	"encoding/json"
	"fmt"
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/auctioneer"
	"github.com/kurumiimari/vickrey/gcrypto"
	"github.com/kurumiimari/vickrey/ghttp"
	"github.com/kurumiimari/vickrey/ledgerdb"
	"github.com/pkg/errors"
	"net/url"
	"strings"
)

// APIError is a decoded error response. It unwraps to the matching
// sentinel error so callers can use errors.Is across the wire.
type APIError struct {
	StatusCode  int
	Msg         string
	Code        string
	Disposition auction.FundsDisposition
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d, code %s)", e.Msg, e.StatusCode, e.Code)
}

func (e *APIError) Unwrap() error {
	return ErrorFromCode(e.Code)
}

type Client struct {
	url    string
	apiKey string
}

func NewClient(url string, apiKey string) *Client {
	return &Client{
		url:    strings.TrimRight(url, "/"),
		apiKey: apiKey,
	}
}

func (c *Client) Status() (*auctioneer.NodeStatus, error) {
	res := new(auctioneer.NodeStatus)
	err := c.doGet("api/v1/status", res)
	return res, err
}

func (c *Client) Mine(count int) (int, error) {
	res := new(MineRes)
	err := c.doPost("api/v1/mine", &MineReq{Count: count}, res)
	return res.Height, err
}

func (c *Client) GetAccount(address string) (*AccountRes, error) {
	res := new(AccountRes)
	err := c.doGet(c.accountPath(address), res)
	return res, err
}

func (c *Client) GetAccountTransfers(address string) ([]*ledgerdb.Transfer, error) {
	res := new(TransfersRes)
	err := c.doGet(c.accountPath(address, "transfers"), res)
	return res.Transfers, err
}

func (c *Client) Fund(address string, amount uint64) (*AccountRes, error) {
	res := new(AccountRes)
	err := c.doPost(c.accountPath(address, "fund"), &FundReq{Amount: amount}, res)
	return res, err
}

func (c *Client) CreateAuction(name, beneficiary string) (*auctioneer.AuctionInfo, error) {
	res := new(auctioneer.AuctionInfo)
	err := c.doPost("api/v1/auctions", &CreateAuctionReq{
		Name:        name,
		Beneficiary: beneficiary,
	}, res)
	return res, err
}

func (c *Client) GetAuctions() ([]*auctioneer.AuctionInfo, error) {
	res := new(GetAuctionsRes)
	err := c.doGet("api/v1/auctions", res)
	return res.Auctions, err
}

func (c *Client) GetAuction(name string) (*auctioneer.AuctionInfo, error) {
	res := new(auctioneer.AuctionInfo)
	err := c.doGet(c.auctionPath(name), res)
	return res, err
}

func (c *Client) GetAuctionTransfers(name string) ([]*ledgerdb.Transfer, error) {
	res := new(TransfersRes)
	err := c.doGet(c.auctionPath(name, "transfers"), res)
	return res.Transfers, err
}

func (c *Client) Bid(name, sender string, value uint64, commitment gcrypto.Hash) (int, error) {
	res := new(BidRes)
	err := c.doPost(c.auctionPath(name, "bids"), &BidReq{
		Sender:     sender,
		Value:      value,
		Commitment: []byte(commitment),
	}, res)
	if err != nil {
		return -1, err
	}
	return res.Slot, nil
}

func (c *Client) Reveal(name, sender string, value, bid uint64, nonce []byte) error {
	return c.doPost(c.auctionPath(name, "reveals"), &RevealReq{
		Sender: sender,
		Value:  value,
		Bid:    bid,
		Nonce:  nonce,
	}, nil)
}

// Settle returns the outcome together with ErrPartialReveal, ErrNoReveal
// or ErrAlreadySettled when the response carries one of those codes.
func (c *Client) Settle(name, sender string, value uint64) (*auctioneer.OutcomeInfo, error) {
	res := new(SettleRes)
	err := c.doPost(c.auctionPath(name, "settlements"), &SettleReq{
		Sender: sender,
		Value:  value,
	}, res)
	if err != nil {
		return nil, err
	}
	if res.Code != "" {
		return res.Outcome, ErrorFromCode(res.Code)
	}
	return res.Outcome, nil
}

func (c *Client) doGet(path string, resObj interface{}) error {
	return c.convertErr(ghttp.DefaultClient.DoGetJSON(
		fmt.Sprintf("%s/%s", c.url, path),
		resObj,
		ghttp.WithHeader("X-API-Key", c.apiKey),
	))
}

func (c *Client) doPost(path string, reqObj interface{}, resObj interface{}) error {
	return c.convertErr(ghttp.DefaultClient.DoPostJSON(
		fmt.Sprintf("%s/%s", c.url, path),
		reqObj,
		resObj,
		ghttp.WithHeader("X-API-Key", c.apiKey),
	))
}

func (c *Client) convertErr(err error) error {
	if err == nil {
		return nil
	}
	var httpErr *ghttp.Error
	if !errors.As(err, &httpErr) || httpErr.StatusCode < 400 || httpErr.ResponseBody == nil {
		return err
	}
	errRes := new(ErrorResponse)
	if jErr := json.Unmarshal(httpErr.ResponseBody, errRes); jErr != nil {
		return err
	}
	return &APIError{
		StatusCode:  httpErr.StatusCode,
		Msg:         errRes.Msg,
		Code:        errRes.Code,
		Disposition: errRes.Disposition,
	}
}

func (c *Client) accountPath(address string, suffixes ...string) string {
	return c.joinPath("accounts", address, suffixes)
}

func (c *Client) auctionPath(name string, suffixes ...string) string {
	return c.joinPath("auctions", name, suffixes)
}

func (c *Client) joinPath(collection, id string, suffixes []string) string {
	parts := append([]string{"api/v1", collection, url.PathEscape(id)}, suffixes...)
	return strings.Join(parts, "/")
}
