package api

import (
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/auctioneer"
	"github.com/kurumiimari/vickrey/ledgerdb"
	"github.com/pkg/errors"
	"net/http"
)

const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidAuctionName  = "INVALID_AUCTION_NAME"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeAuctionNotFound     = "AUCTION_NOT_FOUND"
	CodeAuctionExists       = "AUCTION_EXISTS"
	CodeCommitmentReused    = "COMMITMENT_REUSED"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeFaucetDisabled      = "FAUCET_DISABLED"
	CodeMiningDisabled      = "MINING_DISABLED"
	CodeInternal            = "INTERNAL"
)

type nodeError struct {
	err    error
	status int
}

var nodeErrors = map[string]nodeError{
	CodeInvalidAuctionName:  {auctioneer.ErrInvalidAuctionName, http.StatusBadRequest},
	CodeInvalidAmount:       {auctioneer.ErrInvalidAmount, http.StatusBadRequest},
	CodeAuctionNotFound:     {auctioneer.ErrAuctionNotFound, http.StatusNotFound},
	CodeAuctionExists:       {auctioneer.ErrAuctionExists, http.StatusConflict},
	CodeCommitmentReused:    {auctioneer.ErrCommitmentReused, http.StatusConflict},
	CodeInsufficientBalance: {ledgerdb.ErrInsufficientBalance, http.StatusConflict},
	CodeFaucetDisabled:      {auctioneer.ErrFaucetDisabled, http.StatusForbidden},
	CodeMiningDisabled:      {auctioneer.ErrMiningDisabled, http.StatusForbidden},
}

// ErrorCode names err for the wire. Engine errors keep the engine's codes.
func ErrorCode(err error) string {
	if code := auction.ErrorCode(err); code != CodeInternal {
		return code
	}
	for code, ne := range nodeErrors {
		if errors.Is(err, ne.err) {
			return code
		}
	}
	return CodeInternal
}

// ErrorFromCode is the inverse of ErrorCode. It returns nil for unknown
// codes.
func ErrorFromCode(code string) error {
	if err := auction.ErrorFromCode(code); err != nil {
		return err
	}
	if ne, ok := nodeErrors[code]; ok {
		return ne.err
	}
	return nil
}

// StatusCode maps a node error onto an HTTP status. Protocol rejections
// are conflicts with the auction's state; fatal engine errors are server
// errors.
func StatusCode(err error) int {
	if auction.IsFatal(err) {
		return http.StatusInternalServerError
	}
	if auction.ErrorCode(err) != CodeInternal {
		return http.StatusConflict
	}
	for _, ne := range nodeErrors {
		if errors.Is(err, ne.err) {
			return ne.status
		}
	}
	return http.StatusInternalServerError
}
