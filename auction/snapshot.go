package auction

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// Snapshot is the persistent form of an Engine's state.
type Snapshot struct {
	Slots         []Slot   `cbor:"slots"`
	BidderCount   int      `cbor:"bidder_count"`
	TotalEscrowed uint64   `cbor:"total_escrowed"`
	BidStart      int      `cbor:"bid_start"`
	HasBidStart   bool     `cbor:"has_bid_start"`
	CheckStart    int      `cbor:"check_start"`
	HasCheckStart bool     `cbor:"has_check_start"`
	Settled       bool     `cbor:"settled"`
	Voided        bool     `cbor:"voided"`
	Halted        bool     `cbor:"halted"`
	PaidOut       uint64   `cbor:"paid_out"`
	Retained      uint64   `cbor:"retained"`
	Outcome       *Outcome `cbor:"outcome"`
	Beneficiary   *Address `cbor:"beneficiary"`
}

func (e *Engine) Snapshot() *Snapshot {
	return &Snapshot{
		Slots:         e.Slots(),
		BidderCount:   e.bidderCount,
		TotalEscrowed: e.totalEscrowed,
		BidStart:      e.bidStart,
		HasBidStart:   e.hasBidStart,
		CheckStart:    e.checkStart,
		HasCheckStart: e.hasCheckStart,
		Settled:       e.settled,
		Voided:        e.voided,
		Halted:        e.halted,
		PaidOut:       e.paidOut,
		Retained:      e.retained,
		Outcome:       e.outcome,
		Beneficiary:   e.beneficiary,
	}
}

// RestoreEngine rebuilds an engine from a snapshot and verifies that the
// restored state satisfies every invariant.
func RestoreEngine(params *Params, ledger Ledger, snap *Snapshot, opts ...EngineOption) (*Engine, error) {
	if len(snap.Slots) > MaxBidders {
		return nil, errors.Wrapf(ErrInvariant, "snapshot has %d slots", len(snap.Slots))
	}

	e := NewEngine(params, ledger, append([]EngineOption{WithBeneficiary(snap.Beneficiary)}, opts...)...)
	copy(e.slots[:], snap.Slots)
	e.bidderCount = snap.BidderCount
	e.totalEscrowed = snap.TotalEscrowed
	e.bidStart = snap.BidStart
	e.hasBidStart = snap.HasBidStart
	e.checkStart = snap.CheckStart
	e.hasCheckStart = snap.HasCheckStart
	e.settled = snap.Settled
	e.voided = snap.Voided
	e.halted = snap.Halted
	e.paidOut = snap.PaidOut
	e.retained = snap.Retained
	e.outcome = snap.Outcome

	if err := e.checkInvariants(); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Snapshot) Encode() ([]byte, error) {
	b, err := cbor.Marshal(s)
	return b, errors.Wrap(err, "error encoding auction snapshot")
}

func DecodeSnapshot(b []byte) (*Snapshot, error) {
	snap := new(Snapshot)
	if err := cbor.Unmarshal(b, snap); err != nil {
		return nil, errors.Wrap(err, "error decoding auction snapshot")
	}
	return snap, nil
}
