package binance

import "github.com/spooky-finn/cryptobridge/domain"

// BinanceDepthUpdateValidator follows the diff depth rules: drop any event where u is
// <= lastUpdateId, the next event to apply must have U <= lastUpdateId+1 <= u.
type BinanceDepthUpdateValidator struct{}

func (v BinanceDepthUpdateValidator) IsValidUpd(update *domain.OrderBookUpdate, orderBookLastUpdId int64) error {
	if update.SequenceEnd <= orderBookLastUpdId {
		return domain.ErrOrderBookUpdateIsOutdated
	}

	if update.SequenceStart > orderBookLastUpdId+1 {
		return domain.ErrOrderBookUpdateIsOutOfSequence
	}

	return nil
}
