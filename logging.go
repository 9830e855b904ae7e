package juriscraper

import (
	"github.com/google/uuid"
	"github.com/navindex/juriscraper/logger"
)

// ------------------------------------------------------------------------

// driverIDFor hashes a UUID down to the uint32 logger.Event carries as
// CollectorID; see DESIGN.md for why the shared struct field was not
// renamed to DriverID.
func driverIDFor(id uuid.UUID) uint32 {
	b := id[:4]

	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func requestIDFor(id uuid.UUID) uint32 {
	b := id[12:16]

	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// ------------------------------------------------------------------------

// logEvent emits one Event through l.
func logEvent(l logger.Logger, level logger.Level, driverID uuid.UUID, reqID uuid.UUID, eventType string, values map[string]string) {
	if l == nil {
		return
	}

	l.Log(level, logger.NewEvent(eventType, driverIDFor(driverID), requestIDFor(reqID), values))
}
