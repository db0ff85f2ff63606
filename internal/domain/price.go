package domain

import "time"

// PriceTick holds one day of STEEM-USD OHLCV market data.
// Corresponds to the price_history table. Upserted by the price feed;
// no derived state.
type PriceTick struct {
	Date   time.Time // UTC calendar day
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}
