package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/domain"
)

// SwapRequest describes a swap for estimation or building. Token ids are
// units (policy id + asset name hex); the empty string means ADA.
type SwapRequest struct {
	AmountIn decimal.Decimal
	TokenIn  string
	TokenOut string
	Slippage decimal.Decimal
}

// BuildRequest adds the buyer to a SwapRequest.
type BuildRequest struct {
	SwapRequest
	BuyerAddress string
}

// SwapEstimate is the aggregator's indicative quote.
type SwapEstimate struct {
	AveragePrice decimal.Decimal `json:"average_price"`
	NetPrice     decimal.Decimal `json:"net_price"`
	TotalOutput  decimal.Decimal `json:"total_output"`
	TotalFee     decimal.Decimal `json:"total_fee"`
	BatcherFee   decimal.Decimal `json:"batcher_fee"`
	Deposits     decimal.Decimal `json:"deposits"`
}

// Aggregator is the DEX aggregator surface: quote, build the unsigned
// swap, and co-sign the witnessed payload.
type Aggregator interface {
	EstimateSwap(ctx context.Context, req SwapRequest) (*SwapEstimate, error)
	BuildSwap(ctx context.Context, req BuildRequest) (string, error)
	CoSignSwap(ctx context.Context, witnessHex, txCbor string) (string, error)
}

// Block is a chain tip observation.
type Block struct {
	Height int64
	Slot   uint64
}

// Indexer is the ledger indexer surface the transactor needs.
type Indexer interface {
	SubmitTransaction(ctx context.Context, raw []byte) (string, error)
	// TransactionHeight reports the block height a transaction was
	// included at. found is false while the indexer has not seen it.
	TransactionHeight(ctx context.Context, txHash string) (height int64, found bool, err error)
	LatestBlock(ctx context.Context) (*Block, error)
	// AddressAssets maps asset unit to raw quantity held at an address.
	AddressAssets(ctx context.Context, address string) (map[string]decimal.Decimal, error)
	AddressUTxOs(ctx context.Context, address string) ([]domain.UTxO, error)
}
