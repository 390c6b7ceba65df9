package rpc

import (
	"context"

	"github.com/spooky-finn/cryptobridge/domain"
	gen "github.com/spooky-finn/cryptobridge/gen"
)

func (s *server) GetOrderBookSnapshot(ctx context.Context, in *gen.GetOrderBookSnapshotRequest) (*gen.GetOrderBookSnapshotResponse, error) {
	if err := s.validationService.ValidateRequest(in); err != nil {
		return nil, toStatus(err)
	}

	snapshot, err := s.orderbookSnapshotUseCase.GetOrderBookSnapshot(ctx, in.Provider, in.Market, in.MaxDepth)
	if err != nil {
		return nil, toStatus(err)
	}

	return &gen.GetOrderBookSnapshotResponse{
		Bids:      toLevels(snapshot.Bids),
		Asks:      toLevels(snapshot.Asks),
		Source:    snapshot.Source,
		Status:    selectOrderBookStatus(snapshot.Status),
		Reason:    snapshot.Reason,
		FetchedAt: snapshot.FetchedAt.UnixMilli(),
	}, nil
}

func toLevels(depth []domain.PriceLevel) []*gen.OrderBookLevel {
	levels := make([]*gen.OrderBookLevel, 0, len(depth))
	for _, level := range depth {
		levels = append(levels, &gen.OrderBookLevel{
			Price: level.Price.String(),
			Qty:   level.Quantity.String(),
		})
	}
	return levels
}

func selectOrderBookStatus(status domain.OrderBookStatus) gen.OrderBookStatus {
	switch status {
	case domain.OrderBookStatus_Ok:
		return gen.OrderBookStatus_Ok
	case domain.OrderBookStatus_Unavailable:
		return gen.OrderBookStatus_Unavailable
	default:
		return gen.OrderBookStatus_Unknown
	}
}
