package auction

// Ledger is the execution environment an Engine runs against. Height is a
// monotonically non-decreasing logical clock. Transfer moves value out of
// the auction's escrow account; any error is treated as fatal by the engine.
type Ledger interface {
	Height() int
	Transfer(to *Address, amount uint64) error
}

// Msg carries the caller identity and the value attached to a call. The
// ledger has already moved Value into escrow when the engine sees it.
type Msg struct {
	Sender *Address
	Value  uint64
}

type TransferReason string

const (
	ReasonReturnValue TransferReason = "RETURN_VALUE"
	ReasonExcess      TransferReason = "EXCESS"
	ReasonRefundAll   TransferReason = "REFUND_ALL"
	ReasonRefund      TransferReason = "REFUND"
	ReasonPayout      TransferReason = "PAYOUT"
	ReasonProceeds    TransferReason = "PROCEEDS"
	ReasonForfeit     TransferReason = "FORFEIT"
)

// Transfer is an outbound payment instruction.
type Transfer struct {
	To     *Address       `json:"to"`
	Amount uint64         `json:"amount"`
	Reason TransferReason `json:"reason"`
}

// fromEscrow reports whether the transfer draws on escrowed deposits as
// opposed to value attached to the current call.
func (t *Transfer) fromEscrow() bool {
	switch t.Reason {
	case ReasonReturnValue, ReasonExcess:
		return false
	default:
		return true
	}
}
