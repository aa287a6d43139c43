package postgres

import (
	"context"

	"github.com/CasuinoOfficial/bonding-curve/internal/amm"
	"github.com/CasuinoOfficial/bonding-curve/internal/model"
	"github.com/CasuinoOfficial/bonding-curve/internal/storage"
)

var _ storage.Storage = (*EventSink)(nil)

// EventSink adapts Store to the replay sinks for a fixed context.
type EventSink struct {
	Ctx   context.Context
	Store *Store
}

func (s *EventSink) PutEventBatch(events []model.Event) error {
	return s.Store.InsertEvents(s.Ctx, events)
}

// PutSnapshot mirrors pool reserves and the fee vault.
func (s *EventSink) PutSnapshot(snap amm.Snapshot) error {
	if err := s.Store.UpsertPools(s.Ctx, snap.Pools); err != nil {
		return err
	}
	return s.Store.SaveVault(s.Ctx, snap.Vault)
}
