package domain

import "time"

// Account represents a chain account seen by the ingestion stream.
// Corresponds to the accounts table. Pure reference data: upserted,
// never derived from.
type Account struct {
	Name       string    // account name, unique
	Created    time.Time // UTC account creation time
	Reputation int64     // human-readable reputation at last sighting
	PublicKey  string    // STM-prefixed base58 posting key, may be empty
}
