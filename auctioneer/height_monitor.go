package auctioneer

import (
	"github.com/kurumiimari/vickrey/ledgerdb"
	"github.com/kurumiimari/vickrey/log"
	"github.com/pkg/errors"
	"gopkg.in/tomb.v2"
	"sync"
	"time"
)

var hmLogger = log.ModuleLogger("height-monitor")

// HeightSource reports the current height of an external chain.
type HeightSource interface {
	GetBlockCount() (int, error)
}

// HeightMonitor drives the logical clock stored in ledgerdb. With a nil
// source it produces one height per interval itself; otherwise it follows
// the source's block count.
type HeightMonitor struct {
	tmb        *tomb.Tomb
	engine     *ledgerdb.Engine
	source     HeightSource
	interval   time.Duration
	lastHeight int
	subs       []chan int
	mtx        sync.RWMutex
	dead       bool
}

func NewHeightMonitor(tmb *tomb.Tomb, engine *ledgerdb.Engine, source HeightSource, interval time.Duration) *HeightMonitor {
	return &HeightMonitor{
		tmb:      tmb,
		engine:   engine,
		source:   source,
		interval: interval,
	}
}

// Start loads the stored height and, if an interval is set, begins polling.
func (h *HeightMonitor) Start() error {
	var height int
	err := h.engine.Transaction(func(tx ledgerdb.Transactor) error {
		var err error
		height, err = ledgerdb.GetHeight(tx)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "error loading height")
	}
	h.mtx.Lock()
	h.lastHeight = height
	h.mtx.Unlock()

	if h.interval == 0 {
		return nil
	}

	h.tmb.Go(func() error {
		if h.source != nil {
			if err := h.Poll(); err != nil {
				hmLogger.Error("error polling", "err", err)
			}
		}

		tick := time.NewTicker(h.interval)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				if err := h.Poll(); err != nil {
					hmLogger.Error("error polling", "err", err)
				}
			case <-h.tmb.Dying():
				h.mtx.Lock()
				h.dead = true
				for _, sub := range h.subs {
					close(sub)
				}
				h.subs = nil
				h.mtx.Unlock()
				return nil
			}
		}
	})
	return nil
}

func (h *HeightMonitor) LastHeight() int {
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	return h.lastHeight
}

// Subscribe returns a channel that receives each new height. Slow readers
// miss intermediate heights rather than blocking the monitor.
func (h *HeightMonitor) Subscribe() <-chan int {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.dead {
		panic("height monitor is closed")
	}
	ch := make(chan int, 1)
	h.subs = append(h.subs, ch)
	return ch
}

// Poll advances the clock once: by one height when producing locally, or
// up to the source's block count when following.
func (h *HeightMonitor) Poll() error {
	if h.source == nil {
		_, err := h.Advance(1)
		return err
	}

	count, err := h.source.GetBlockCount()
	if err != nil {
		return errors.Wrap(err, "error getting block count")
	}

	h.mtx.Lock()
	defer h.mtx.Unlock()
	if count < h.lastHeight {
		hmLogger.Warning("source height went backwards, ignoring", "source_height", count, "height", h.lastHeight)
		return nil
	}
	if count == h.lastHeight {
		return nil
	}
	return h.setHeight(count)
}

// Advance moves the clock forward by n and returns the new height.
func (h *HeightMonitor) Advance(n int) (int, error) {
	if n < 0 {
		return 0, errors.New("cannot advance by a negative amount")
	}
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if err := h.setHeight(h.lastHeight + n); err != nil {
		return 0, err
	}
	return h.lastHeight, nil
}

func (h *HeightMonitor) setHeight(height int) error {
	err := h.engine.Transaction(func(tx ledgerdb.Transactor) error {
		return ledgerdb.SetHeight(tx, height)
	})
	if err != nil {
		return errors.Wrap(err, "error storing height")
	}
	h.lastHeight = height
	hmLogger.Debug("height advanced", "height", height)
	for _, sub := range h.subs {
		select {
		case sub <- height:
		default:
		}
	}
	return nil
}
