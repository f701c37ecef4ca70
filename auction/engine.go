package auction

import (
	"github.com/kurumiimari/vickrey/gcrypto"
	"github.com/kurumiimari/vickrey/log"
	"github.com/pkg/errors"
	"sync/atomic"
)

var engineLogger = log.ModuleLogger("auction")

type Phase string

const (
	PhaseAdmitting     Phase = "ADMITTING"
	PhaseChecking      Phase = "CHECKING"
	PhaseVoided        Phase = "VOIDED"
	PhaseSettled       Phase = "SETTLED"
	PhasePartialReveal Phase = "PARTIAL_REVEAL"
	PhaseNoReveal      Phase = "NO_REVEAL"
	PhaseHalted        Phase = "HALTED"
)

type Slot struct {
	Address    *Address     `json:"address"`
	Commitment gcrypto.Hash `json:"commitment"`
	Revealed   bool         `json:"revealed"`
	Bid        uint64       `json:"bid"`
}

type OutcomeKind string

const (
	OutcomeWinner        OutcomeKind = "WINNER"
	OutcomeTie           OutcomeKind = "TIE"
	OutcomePartialReveal OutcomeKind = "PARTIAL_REVEAL"
	OutcomeNoReveal      OutcomeKind = "NO_REVEAL"
)

// Outcome is the terminal result of Settle. Transfers lists the payments
// drawn from escrow; the price is what the winner paid, i.e. the losing bid.
type Outcome struct {
	Kind       OutcomeKind `json:"kind"`
	Height     int         `json:"height"`
	WinnerSlot int         `json:"winner_slot"`
	Winner     *Address    `json:"winner"`
	Price      uint64      `json:"price"`
	Transfers  []*Transfer `json:"transfers"`
}

// Engine runs a single two-party sealed-bid second-price auction. Calls
// must be serialized by the caller; a call that arrives while another is in
// progress (for example from inside a ledger transfer) is rejected with
// ErrReentrantCall.
type Engine struct {
	params      *Params
	ledger      Ledger
	beneficiary *Address
	logger      log.Logger
	inCall      int32
	halted      bool

	slots         [MaxBidders]Slot
	bidderCount   int
	totalEscrowed uint64
	bidStart      int
	hasBidStart   bool
	checkStart    int
	hasCheckStart bool
	settled       bool
	voided        bool
	paidOut       uint64
	retained      uint64
	outcome       *Outcome
}

type EngineOption func(e *Engine)

// WithBeneficiary forwards the clearing price and forfeited deposits to
// addr. Without a beneficiary they stay in escrow.
func WithBeneficiary(addr *Address) EngineOption {
	return func(e *Engine) {
		e.beneficiary = addr
	}
}

func WithLogger(logger log.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

func NewEngine(params *Params, ledger Ledger, opts ...EngineOption) *Engine {
	e := &Engine{
		params: params,
		ledger: ledger,
		logger: engineLogger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rebind swaps the ledger between calls. Hosts that open a fresh ledger
// view per database transaction use it before each call.
func (e *Engine) Rebind(ledger Ledger) {
	if atomic.LoadInt32(&e.inCall) != 0 {
		panic("cannot rebind ledger during a call")
	}
	e.ledger = ledger
}

func (e *Engine) Params() *Params {
	return e.params
}

func (e *Engine) Beneficiary() *Address {
	return e.beneficiary
}

func (e *Engine) BidderCount() int {
	return e.bidderCount
}

func (e *Engine) TotalEscrowed() uint64 {
	return e.totalEscrowed
}

func (e *Engine) Settled() bool {
	return e.settled
}

func (e *Engine) Voided() bool {
	return e.voided
}

func (e *Engine) Halted() bool {
	return e.halted
}

func (e *Engine) Outcome() *Outcome {
	return e.outcome
}

// BidWindowStart returns the height of the first admission.
func (e *Engine) BidWindowStart() (int, bool) {
	return e.bidStart, e.hasBidStart
}

// CheckWindowStart returns the height of the first reveal attempt made
// after the bid window closed. A settlement reached without any attempt
// fixes it at the close of the bid window.
func (e *Engine) CheckWindowStart() (int, bool) {
	return e.checkStart, e.hasCheckStart
}

// Slots returns copies of the admitted bidder slots.
func (e *Engine) Slots() []Slot {
	out := make([]Slot, e.bidderCount)
	copy(out, e.slots[:e.bidderCount])
	return out
}

func (e *Engine) Phase() Phase {
	if e.halted {
		return PhaseHalted
	}
	if e.outcome != nil {
		switch e.outcome.Kind {
		case OutcomePartialReveal:
			return PhasePartialReveal
		case OutcomeNoReveal:
			return PhaseNoReveal
		default:
			return PhaseSettled
		}
	}
	if e.voided {
		return PhaseVoided
	}
	if !e.hasBidStart || e.ledger.Height()-e.bidStart < e.params.BidDuration {
		return PhaseAdmitting
	}
	if e.bidderCount < e.params.MinBidders {
		return PhaseVoided
	}
	return PhaseChecking
}

// SubmitBidder admits msg.Sender with commitment and returns its slot.
// Exactly MaxBid of the attached value is escrowed; any excess is returned
// immediately, and a rejected call returns the whole attached value.
func (e *Engine) SubmitBidder(msg *Msg, commitment gcrypto.Hash) (int, error) {
	c, err := e.begin(msg)
	if err != nil {
		return -1, err
	}
	idx, err := e.submitBidder(c, commitment)
	return idx, c.finish(err)
}

// RevealBid opens the sender's commitment. Value attached to the call is
// returned. Once a slot is revealed its bid never changes: a repeated
// reveal of the matching pair succeeds without writing.
func (e *Engine) RevealBid(msg *Msg, bid uint64, nonce []byte) error {
	c, err := e.begin(msg)
	if err != nil {
		return err
	}
	return c.finish(e.revealBid(c, bid, nonce))
}

// Settle computes the auction result and pays it out. On ErrPartialReveal
// and ErrNoReveal the returned Outcome describes what was paid.
func (e *Engine) Settle(msg *Msg) (*Outcome, error) {
	c, err := e.begin(msg)
	if err != nil {
		return nil, err
	}
	out, err := e.settle(c)
	return out, c.finish(err)
}

func (e *Engine) submitBidder(c *call, commitment gcrypto.Hash) (int, error) {
	sender := c.msg.Sender
	if c.msg.Value < e.params.MaxBid {
		c.returnValue()
		return -1, ErrInsufficientFunds
	}
	if e.bidderCount >= e.params.MaxBidders {
		c.returnValue()
		return -1, ErrPoolFull
	}
	if e.hasBidStart && c.now-e.bidStart >= e.params.BidDuration {
		c.returnValue()
		return -1, ErrWindowClosed
	}
	if len(commitment) != gcrypto.HashSize {
		c.returnValue()
		return -1, ErrInvalidCommitment
	}
	if _, _, ok := e.slotOf(sender); ok {
		c.returnValue()
		return -1, ErrAlreadyAdmitted
	}
	for i := 0; i < e.bidderCount; i++ {
		if e.slots[i].Commitment.Equal(commitment) {
			c.returnValue()
			return -1, ErrDuplicateCommitment
		}
	}

	if !e.hasBidStart {
		e.bidStart = c.now
		e.hasBidStart = true
	}

	idx := e.bidderCount
	e.slots[idx] = Slot{
		Address:    sender,
		Commitment: commitment,
	}
	e.bidderCount++
	e.totalEscrowed += e.params.MaxBid
	c.pay(sender, c.msg.Value-e.params.MaxBid, ReasonExcess)

	e.logger.Debug(
		"bidder admitted",
		"slot", idx,
		"height", c.now,
		"commitment", commitment.String(),
	)
	return idx, nil
}

func (e *Engine) revealBid(c *call, bid uint64, nonce []byte) error {
	c.returnValue()

	if bid > e.params.MaxBid {
		return ErrOutOfRange
	}

	slot, idx, ok := e.slotOf(c.msg.Sender)
	if !ok {
		return ErrUnknownBidder
	}

	if c.now-e.bidStart < e.params.BidDuration {
		return ErrTooEarly
	}

	if e.settled {
		return ErrTooLate
	}

	if !e.hasCheckStart {
		e.checkStart = c.now
		e.hasCheckStart = true
		e.logger.Debug("check window opened", "height", c.now)
	}

	if e.bidderCount < e.params.MinBidders {
		e.refundAll(c)
		return ErrAuctionVoided
	}

	if c.now-e.checkStart >= e.params.CheckDuration {
		return ErrTooLate
	}

	if !VerifyCommitment(slot.Commitment, bid, nonce) {
		e.logger.Debug("commitment mismatch", "slot", idx, "height", c.now)
		return ErrCommitMismatch
	}

	if slot.Revealed {
		return nil
	}

	slot.Revealed = true
	slot.Bid = bid
	e.logger.Debug("bid revealed", "slot", idx, "height", c.now)
	return nil
}

func (e *Engine) settle(c *call) (*Outcome, error) {
	c.returnValue()

	if e.bidderCount < e.params.MinBidders {
		if !e.hasBidStart || c.now-e.bidStart < e.params.BidDuration {
			return nil, ErrNoAuctionYet
		}
		e.refundAll(c)
		return nil, ErrNoAuction
	}

	if e.settled {
		return e.outcome, ErrAlreadySettled
	}

	if c.now-e.checkWindowStart() < e.params.CheckDuration {
		return nil, ErrTooEarly
	}

	out := &Outcome{
		Height:     c.now,
		WinnerSlot: -1,
	}
	mark := len(c.pending)

	var err error
	first, second := &e.slots[0], &e.slots[1]
	switch {
	case first.Revealed && second.Revealed:
		e.settleRevealed(c, out, first, second)
	case first.Revealed || second.Revealed:
		revealer, withholder := first, second
		if second.Revealed {
			revealer, withholder = second, first
		}
		out.Kind = OutcomePartialReveal
		c.pay(revealer.Address, e.params.MaxBid, ReasonRefund)
		e.retain(c, e.params.MaxBid, ReasonForfeit)
		e.logger.Info("auction settled with one reveal", "withholder", withholder.Address.Key())
		err = ErrPartialReveal
	default:
		out.Kind = OutcomeNoReveal
		e.retain(c, 2*e.params.MaxBid, ReasonForfeit)
		e.logger.Info("auction settled without reveals")
		err = ErrNoReveal
	}

	out.Transfers = append([]*Transfer(nil), c.pending[mark:]...)
	if !e.hasCheckStart {
		e.checkStart = e.checkWindowStart()
		e.hasCheckStart = true
	}
	e.settled = true
	e.outcome = out
	return out, err
}

func (e *Engine) settleRevealed(c *call, out *Outcome, first, second *Slot) {
	if first.Bid == second.Bid {
		out.Kind = OutcomeTie
		c.pay(first.Address, e.params.MaxBid, ReasonRefund)
		c.pay(second.Address, e.params.MaxBid, ReasonRefund)
		e.logger.Info("auction tied", "bid", first.Bid)
		return
	}

	winner, loser, winnerIdx := first, second, 0
	if second.Bid > first.Bid {
		winner, loser, winnerIdx = second, first, 1
	}

	out.Kind = OutcomeWinner
	out.WinnerSlot = winnerIdx
	out.Winner = winner.Address
	out.Price = loser.Bid
	c.pay(winner.Address, e.params.MaxBid-loser.Bid, ReasonPayout)
	c.pay(loser.Address, e.params.MaxBid, ReasonRefund)
	e.retain(c, loser.Bid, ReasonProceeds)
	e.logger.Info("auction settled", "winner_slot", winnerIdx, "price", loser.Bid)
}

// refundAll returns every admitted deposit. It runs at most once.
func (e *Engine) refundAll(c *call) {
	if e.voided {
		return
	}
	e.voided = true
	for i := 0; i < e.bidderCount; i++ {
		c.pay(e.slots[i].Address, e.params.MaxBid, ReasonRefundAll)
	}
	e.logger.Warning("auction voided, deposits refunded", "bidders", e.bidderCount, "height", c.now)
}

func (e *Engine) retain(c *call, amount uint64, reason TransferReason) {
	if e.beneficiary != nil {
		c.pay(e.beneficiary, amount, reason)
		return
	}
	e.retained += amount
}

// checkWindowStart falls back to the close of the bid window when nobody
// has attempted a reveal.
func (e *Engine) checkWindowStart() int {
	if e.hasCheckStart {
		return e.checkStart
	}
	return e.bidStart + e.params.BidDuration
}

func (e *Engine) slotOf(addr *Address) (*Slot, int, bool) {
	for i := 0; i < e.bidderCount; i++ {
		if e.slots[i].Address.Equal(addr) {
			return &e.slots[i], i, true
		}
	}
	return nil, -1, false
}

func (e *Engine) checkInvariants() error {
	var admitted int
	for i := range e.slots {
		if e.slots[i].Address != nil {
			admitted++
		}
	}
	if admitted != e.bidderCount {
		return errors.Wrapf(ErrInvariant, "%d slots filled but bidder count is %d", admitted, e.bidderCount)
	}
	if e.totalEscrowed != uint64(e.bidderCount)*e.params.MaxBid {
		return errors.Wrapf(ErrInvariant, "escrowed %d for %d bidders", e.totalEscrowed, e.bidderCount)
	}
	if e.hasCheckStart && (!e.hasBidStart || e.checkStart-e.bidStart < e.params.BidDuration) {
		return errors.Wrap(ErrInvariant, "check window opened before bid window closed")
	}
	for i := 0; i < e.bidderCount; i++ {
		if e.slots[i].Revealed && e.slots[i].Bid > e.params.MaxBid {
			return errors.Wrapf(ErrInvariant, "slot %d holds out-of-range bid", i)
		}
	}
	disbursed := e.paidOut + e.retained
	if disbursed > e.totalEscrowed {
		return errors.Wrapf(ErrInvariant, "disbursed %d of %d escrowed", disbursed, e.totalEscrowed)
	}
	if (e.settled || e.voided) && disbursed != e.totalEscrowed {
		return errors.Wrapf(ErrInvariant, "terminal auction disbursed %d of %d escrowed", disbursed, e.totalEscrowed)
	}
	if e.settled != (e.outcome != nil) {
		return errors.Wrap(ErrInvariant, "settled flag disagrees with outcome")
	}
	return nil
}

type call struct {
	e       *Engine
	msg     *Msg
	now     int
	pending []*Transfer
}

func (e *Engine) begin(msg *Msg) (*call, error) {
	if !atomic.CompareAndSwapInt32(&e.inCall, 0, 1) {
		return nil, ErrReentrantCall
	}
	if e.halted {
		atomic.StoreInt32(&e.inCall, 0)
		return nil, ErrHalted
	}
	if msg == nil || msg.Sender == nil {
		atomic.StoreInt32(&e.inCall, 0)
		return nil, ErrMissingSender
	}
	return &call{
		e:   e,
		msg: msg,
		now: e.ledger.Height(),
	}, nil
}

func (c *call) pay(to *Address, amount uint64, reason TransferReason) {
	if amount == 0 {
		return
	}
	t := &Transfer{
		To:     to,
		Amount: amount,
		Reason: reason,
	}
	if t.fromEscrow() {
		c.e.paidOut += amount
	}
	c.pending = append(c.pending, t)
}

func (c *call) returnValue() {
	c.pay(c.msg.Sender, c.msg.Value, ReasonReturnValue)
}

// finish verifies the committed state, then issues the queued transfers.
// The in-call guard stays held until the last transfer returns.
func (c *call) finish(callErr error) error {
	e := c.e
	defer atomic.StoreInt32(&e.inCall, 0)

	if err := e.checkInvariants(); err != nil {
		e.halted = true
		e.logger.Error("invariant violated, halting", "err", err)
		return err
	}

	for _, t := range c.pending {
		if err := e.ledger.Transfer(t.To, t.Amount); err != nil {
			e.halted = true
			e.logger.Error(
				"transfer failed, halting",
				"reason", t.Reason,
				"amount", t.Amount,
				"err", err,
			)
			return errors.Wrapf(ErrLedgerFault, "%s transfer of %d: %v", t.Reason, t.Amount, err)
		}
	}
	return callErr
}
