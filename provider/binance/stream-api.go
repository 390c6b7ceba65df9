package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/spooky-finn/cryptobridge/domain"
)

// diff depth pushed every 100ms
const depthStreamSuffix = "@depth@100ms"

type Message[T any] struct {
	Stream string `json:"stream"`
	Data   T      `json:"data"`
}

type DepthUpdateData struct {
	Event         string     `json:"e"`
	EventTime     int64      `json:"E"`
	Symbol        string     `json:"s"`
	FirstUpdateId int64      `json:"U"`
	FinalUpdateId int64      `json:"u"`
	Bids          [][]string `json:"b"`
	Asks          [][]string `json:"a"`
}

type BinanceStreamAPI struct {
	streamClient *BinanceStreamClient
	BinanceDepthUpdateValidator
}

func NewBinanceStreamAPI(client *BinanceStreamClient) *BinanceStreamAPI {
	return &BinanceStreamAPI{streamClient: client}
}

func depthTopic(symbol *domain.MarketSymbol) string {
	return symbol.Join("") + depthStreamSuffix
}

func (bs *BinanceStreamAPI) DepthDiffStream(
	ctx context.Context, symbol *domain.MarketSymbol,
) (*domain.Subscription[*domain.OrderBookUpdate], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	topic := depthTopic(symbol)
	frames, unsubscribe, err := bs.streamClient.Subscribe(topic)
	if err != nil {
		return nil, err
	}

	updates := make(chan *domain.OrderBookUpdate, topicBuffer)
	stop := make(chan struct{})
	var stopOnce sync.Once

	go func() {
		defer close(updates)

		for {
			var msg []byte
			var ok bool
			select {
			case <-stop:
				return
			case msg, ok = <-frames:
				if !ok {
					return
				}
			}

			update, err := parseDepthUpdate(symbol, msg)
			if err != nil {
				log.WithField("topic", topic).WithError(err).Warn("dropping depth update")
				continue
			}

			select {
			case updates <- update:
			case <-stop:
				return
			}
		}
	}()

	return &domain.Subscription[*domain.OrderBookUpdate]{
		Stream: updates,
		Unsubscribe: func() {
			stopOnce.Do(func() {
				close(stop)
				unsubscribe()
			})
		},
		Topic: topic,
	}, nil
}

func parseDepthUpdate(symbol *domain.MarketSymbol, msg []byte) (*domain.OrderBookUpdate, error) {
	var message Message[DepthUpdateData]
	if err := json.Unmarshal(msg, &message); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstreamMalformedResponse, err)
	}

	bids, err := domain.ParsePriceLevels(message.Data.Bids)
	if err != nil {
		return nil, err
	}
	asks, err := domain.ParsePriceLevels(message.Data.Asks)
	if err != nil {
		return nil, err
	}

	return &domain.OrderBookUpdate{
		Symbol:        symbol,
		SequenceStart: message.Data.FirstUpdateId,
		SequenceEnd:   message.Data.FinalUpdateId,
		Bids:          bids,
		Asks:          asks,
	}, nil
}
