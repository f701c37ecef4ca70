package auctioneer

import (
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/gcrypto"
)

type AuctionInfo struct {
	Name             string        `json:"name"`
	ID               gcrypto.Hash  `json:"id"`
	Escrow           string        `json:"escrow"`
	Beneficiary      string        `json:"beneficiary,omitempty"`
	Phase            auction.Phase `json:"phase"`
	Height           int           `json:"height"`
	CreatedHeight    int           `json:"created_height"`
	BidderCount      int           `json:"bidder_count"`
	TotalEscrowed    uint64        `json:"total_escrowed"`
	BidWindowStart   *int          `json:"bid_window_start"`
	CheckWindowStart *int          `json:"check_window_start"`
	Slots            []*SlotInfo   `json:"slots"`
	Outcome          *OutcomeInfo  `json:"outcome"`
}

// SlotInfo hides the bid until it has been revealed.
type SlotInfo struct {
	Address    string       `json:"address"`
	Commitment gcrypto.Hash `json:"commitment"`
	Revealed   bool         `json:"revealed"`
	Bid        *uint64      `json:"bid"`
}

type OutcomeInfo struct {
	Kind       auction.OutcomeKind `json:"kind"`
	Height     int                 `json:"height"`
	WinnerSlot int                 `json:"winner_slot"`
	Winner     string              `json:"winner,omitempty"`
	Price      uint64              `json:"price"`
	Transfers  []*TransferInfo     `json:"transfers"`
}

type TransferInfo struct {
	To     string                 `json:"to"`
	Amount uint64                 `json:"amount"`
	Reason auction.TransferReason `json:"reason"`
}

func (n *Node) info(ha *hostedAuction) *AuctionInfo {
	ha.mtx.Lock()
	defer ha.mtx.Unlock()

	height := n.hm.LastHeight()
	e := ha.engine
	e.Rebind(frozenLedger(height))

	info := &AuctionInfo{
		Name:          ha.name,
		ID:            ha.id,
		Escrow:        ha.escrow.String(n.params),
		Phase:         e.Phase(),
		Height:        height,
		CreatedHeight: ha.createdHeight,
		BidderCount:   e.BidderCount(),
		TotalEscrowed: e.TotalEscrowed(),
		Slots:         make([]*SlotInfo, 0, e.BidderCount()),
		Outcome:       n.outcomeInfo(e.Outcome()),
	}
	if b := e.Beneficiary(); b != nil {
		info.Beneficiary = b.String(n.params)
	}
	if start, ok := e.BidWindowStart(); ok {
		info.BidWindowStart = &start
	}
	if start, ok := e.CheckWindowStart(); ok {
		info.CheckWindowStart = &start
	}
	for _, slot := range e.Slots() {
		si := &SlotInfo{
			Address:    slot.Address.String(n.params),
			Commitment: slot.Commitment,
			Revealed:   slot.Revealed,
		}
		if slot.Revealed {
			bid := slot.Bid
			si.Bid = &bid
		}
		info.Slots = append(info.Slots, si)
	}
	return info
}

func (n *Node) outcomeInfo(out *auction.Outcome) *OutcomeInfo {
	if out == nil {
		return nil
	}
	info := &OutcomeInfo{
		Kind:       out.Kind,
		Height:     out.Height,
		WinnerSlot: out.WinnerSlot,
		Price:      out.Price,
		Transfers:  make([]*TransferInfo, len(out.Transfers)),
	}
	if out.Winner != nil {
		info.Winner = out.Winner.String(n.params)
	}
	for i, t := range out.Transfers {
		info.Transfers[i] = &TransferInfo{
			To:     t.To.String(n.params),
			Amount: t.Amount,
			Reason: t.Reason,
		}
	}
	return info
}
