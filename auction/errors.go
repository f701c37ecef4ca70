package auction

import (
	"github.com/pkg/errors"
)

// Admission errors. The whole attached value is refunded to the sender.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds attached")
	ErrPoolFull            = errors.New("bidder pool is full")
	ErrWindowClosed        = errors.New("bid window is closed")
	ErrDuplicateCommitment = errors.New("commitment already submitted")
	ErrInvalidCommitment   = errors.New("commitment must be a 32-byte hash")
	ErrAlreadyAdmitted     = errors.New("sender already holds a slot")
)

// Reveal errors. The bidder's deposit stays in escrow, except for
// ErrAuctionVoided which means every deposit has been returned.
var (
	ErrOutOfRange     = errors.New("bid out of range")
	ErrUnknownBidder  = errors.New("unknown bidder")
	ErrTooEarly       = errors.New("window has not opened yet")
	ErrTooLate        = errors.New("check window is closed")
	ErrCommitMismatch = errors.New("bid does not match commitment")
	ErrAuctionVoided  = errors.New("not enough bidders, auction voided")
)

// Settlement errors.
var (
	ErrNoAuction      = errors.New("no auction occurred")
	// ErrNoAuctionYet is ErrNoAuction while the bid window is still open;
	// deposits stay in escrow.
	ErrNoAuctionYet   = errors.Wrap(ErrNoAuction, "bid window still open")
	ErrPartialReveal  = errors.New("only one bidder revealed")
	ErrNoReveal       = errors.New("no bidder revealed")
	ErrAlreadySettled = errors.New("auction already settled")
)

// Fatal errors. These indicate a broken collaborator or a bug rather than a
// protocol rejection.
var (
	ErrLedgerFault   = errors.New("ledger transfer failed")
	ErrInvariant     = errors.New("auction invariant violated")
	ErrHalted        = errors.New("auction engine halted")
	ErrReentrantCall = errors.New("re-entrant call rejected")
	ErrMissingSender = errors.New("message has no sender")
)

type FundsDisposition string

const (
	// FundsRefunded means the caller's money came back to them.
	FundsRefunded FundsDisposition = "REFUNDED"
	// FundsEscrowed means the deposit is still held by the auction.
	FundsEscrowed FundsDisposition = "ESCROWED"
	// FundsDisbursed means escrow was paid out according to the outcome.
	FundsDisbursed FundsDisposition = "DISBURSED"
	// FundsReverted means the call had no effect and the ledger must undo
	// the value it attached.
	FundsReverted FundsDisposition = "REVERTED"
	FundsUnknown  FundsDisposition = "UNKNOWN"
)

// Disposition reports what happened to the caller's funds for err.
func Disposition(err error) FundsDisposition {
	switch {
	case err == nil, errors.Is(err, ErrNoAuctionYet):
		return FundsEscrowed
	case errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrPoolFull),
		errors.Is(err, ErrWindowClosed),
		errors.Is(err, ErrDuplicateCommitment),
		errors.Is(err, ErrInvalidCommitment),
		errors.Is(err, ErrAlreadyAdmitted),
		errors.Is(err, ErrAuctionVoided),
		errors.Is(err, ErrNoAuction):
		return FundsRefunded
	case errors.Is(err, ErrOutOfRange),
		errors.Is(err, ErrUnknownBidder),
		errors.Is(err, ErrTooEarly),
		errors.Is(err, ErrTooLate),
		errors.Is(err, ErrCommitMismatch):
		return FundsEscrowed
	case errors.Is(err, ErrPartialReveal),
		errors.Is(err, ErrNoReveal),
		errors.Is(err, ErrAlreadySettled):
		return FundsDisbursed
	case errors.Is(err, ErrReentrantCall),
		errors.Is(err, ErrHalted),
		errors.Is(err, ErrMissingSender):
		return FundsReverted
	default:
		return FundsUnknown
	}
}

// IsFatal reports whether err signals a collaborator or invariant failure.
func IsFatal(err error) bool {
	return errors.Is(err, ErrLedgerFault) ||
		errors.Is(err, ErrInvariant) ||
		errors.Is(err, ErrHalted)
}

// IsReverted reports whether the engine did nothing for the call, so the
// ledger must return any value it attached.
func IsReverted(err error) bool {
	return Disposition(err) == FundsReverted
}

// ErrorCode is a stable name for protocol errors, used on the wire.
func ErrorCode(err error) string {
	if errors.Is(err, ErrNoAuctionYet) {
		return "NO_AUCTION_YET"
	}
	for code, target := range errorCodes {
		if errors.Is(err, target) {
			return code
		}
	}
	return "INTERNAL"
}

func ErrorFromCode(code string) error {
	return errorCodes[code]
}

var errorCodes = map[string]error{
	"INSUFFICIENT_FUNDS":   ErrInsufficientFunds,
	"POOL_FULL":            ErrPoolFull,
	"WINDOW_CLOSED":        ErrWindowClosed,
	"DUPLICATE_COMMITMENT": ErrDuplicateCommitment,
	"INVALID_COMMITMENT":   ErrInvalidCommitment,
	"ALREADY_ADMITTED":     ErrAlreadyAdmitted,
	"OUT_OF_RANGE":         ErrOutOfRange,
	"UNKNOWN_BIDDER":       ErrUnknownBidder,
	"TOO_EARLY":            ErrTooEarly,
	"TOO_LATE":             ErrTooLate,
	"COMMIT_MISMATCH":      ErrCommitMismatch,
	"AUCTION_VOIDED":       ErrAuctionVoided,
	"NO_AUCTION":           ErrNoAuction,
	"NO_AUCTION_YET":       ErrNoAuctionYet,
	"PARTIAL_REVEAL":       ErrPartialReveal,
	"NO_REVEAL":            ErrNoReveal,
	"ALREADY_SETTLED":      ErrAlreadySettled,
	"LEDGER_FAULT":         ErrLedgerFault,
	"INVARIANT":            ErrInvariant,
	"HALTED":               ErrHalted,
	"REENTRANT_CALL":       ErrReentrantCall,
	"MISSING_SENDER":       ErrMissingSender,
}
