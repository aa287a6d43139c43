// Package ledger serializes access to an amm.Engine the way the hosting
// ledger would, and releases events only for operations that committed.
package ledger

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CasuinoOfficial/bonding-curve/internal/amm"
	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

// Tx is one operation against the engine. It should make a single mutating
// engine call, which is all-or-nothing on its own. The capability is the one
// held by the executor's owner; a Tx that should not present it passes nil on
// to the engine.
type Tx func(engine *amm.Engine, admin *amm.AdminCap) error

// Executor owns an engine and runs one Tx at a time.
type Executor struct {
	mu        sync.Mutex
	engine    *amm.Engine
	admin     *amm.AdminCap
	pending   []model.Event
	committed []model.Event
	now       func() time.Time
	logger    *zap.Logger
}

func NewExecutor(engine *amm.Engine, admin *amm.AdminCap, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	x := &Executor{
		engine: engine,
		admin:  admin,
		now:    time.Now,
		logger: logger,
	}
	engine.SetNotifier(amm.NotifierFunc(x.collect))
	return x
}

// Do runs tx under the executor lock. Events emitted by tx are stamped with
// seq and the current time and kept only when tx returns nil.
func (x *Executor) Do(seq uint64, tx Tx) error {
	return x.DoAt(seq, 0, tx)
}

// DoAt is Do with the event timestamp taken from ts. A zero ts falls back to
// the current time.
func (x *Executor) DoAt(seq, ts uint64, tx Tx) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.pending = x.pending[:0]
	err := tx(x.engine, x.admin)
	if err != nil {
		x.pending = x.pending[:0]
		x.logger.Debug("operation aborted", zap.Uint64("seq", seq), zap.Error(err))
		return err
	}

	if ts == 0 {
		ts = uint64(x.now().Unix())
	}
	for _, event := range x.pending {
		event.Seq = seq
		event.Timestamp = ts
		x.committed = append(x.committed, event)
	}
	x.pending = x.pending[:0]
	return nil
}

// Drain returns and forgets the events committed since the last call.
func (x *Executor) Drain() []model.Event {
	x.mu.Lock()
	defer x.mu.Unlock()

	out := x.committed
	x.committed = nil
	return out
}

// Snapshot copies the engine state between operations.
func (x *Executor) Snapshot() amm.Snapshot {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.engine.Snapshot()
}

func (x *Executor) collect(event model.Event) {
	x.pending = append(x.pending, event)
}
