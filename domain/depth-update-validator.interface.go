package domain

type DepthUpdateValidator interface {
	// IsValidUpd returns nil when update can be applied to a book at lastUpdateId,
	// ErrOrderBookUpdateIsOutdated when the book already holds it and
	// ErrOrderBookUpdateIsOutOfSequence when updates are missing in between.
	IsValidUpd(update *OrderBookUpdate, lastUpdateId int64) error
}
