package storage

import "github.com/CasuinoOfficial/bonding-curve/internal/model"

// Storage defines a sink for committed engine events.
type Storage interface {
	PutEventBatch(events []model.Event) error
}
