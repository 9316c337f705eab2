package app

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/domain"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apperror"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

const (
	// confirmPollInterval is the gap between inclusion polls.
	confirmPollInterval = 5 * time.Second

	// ttlSlotMargin bounds how long a built payment stays valid.
	ttlSlotMargin = 7200
)

// TransactorConfig carries the wallet identity and swap parameters.
type TransactorConfig struct {
	Address     string
	NetworkID   uint8
	TokenUnit   string
	SlippagePct decimal.Decimal
	// MinUTxOLovelace is the ADA rider attached to native-asset outputs.
	MinUTxOLovelace uint64
}

// Transactor drives the DEX leg: estimate, build, sign, submit, confirm.
// It also sends plain native-asset payments for exchange deposits.
type Transactor struct {
	aggregator Aggregator
	indexer    Indexer
	paymentKey *domain.SigningKey
	stakeKey   *domain.SigningKey
	cfg        TransactorConfig
	clock      clock.Clock
	logger     logger.LoggerInterface
}

// NewTransactor creates a Transactor. stakeKey may be nil; addresses
// without a stake part need no stake witness.
func NewTransactor(
	aggregator Aggregator,
	indexer Indexer,
	paymentKey *domain.SigningKey,
	stakeKey *domain.SigningKey,
	cfg TransactorConfig,
	clk clock.Clock,
	log logger.LoggerInterface,
) *Transactor {
	return &Transactor{
		aggregator: aggregator,
		indexer:    indexer,
		paymentKey: paymentKey,
		stakeKey:   stakeKey,
		cfg:        cfg,
		clock:      clk,
		logger:     log,
	}
}

// swapTokens returns the in/out token units for a swap direction. Selling
// moves the token into ADA; buying moves ADA into the token.
func (t *Transactor) swapTokens(sell bool) (tokenIn, tokenOut string) {
	if sell {
		return t.cfg.TokenUnit, ""
	}
	return "", t.cfg.TokenUnit
}

// Estimate quotes a swap without executing it.
func (t *Transactor) Estimate(ctx context.Context, amountIn decimal.Decimal, sell bool) (*SwapEstimate, error) {
	tokenIn, tokenOut := t.swapTokens(sell)
	return t.aggregator.EstimateSwap(ctx, SwapRequest{
		AmountIn: amountIn,
		TokenIn:  tokenIn,
		TokenOut: tokenOut,
		Slippage: t.cfg.SlippagePct,
	})
}

// ExecuteSwap runs the full DEX leg and returns the submitted transaction
// hash. The caller decides whether and how long to wait for inclusion.
func (t *Transactor) ExecuteSwap(ctx context.Context, amountIn decimal.Decimal, sell bool) (string, error) {
	estimate, err := t.Estimate(ctx, amountIn, sell)
	if err != nil {
		return "", err
	}
	t.logger.Info(ctx, "swap estimated",
		"amount_in", amountIn.String(),
		"sell", sell,
		"total_output", estimate.TotalOutput.String(),
		"net_price", estimate.NetPrice.String())

	tokenIn, tokenOut := t.swapTokens(sell)
	unsigned, err := t.aggregator.BuildSwap(ctx, BuildRequest{
		SwapRequest: SwapRequest{
			AmountIn: amountIn,
			TokenIn:  tokenIn,
			TokenOut: tokenOut,
			Slippage: t.cfg.SlippagePct,
		},
		BuyerAddress: t.cfg.Address,
	})
	if err != nil {
		return "", err
	}

	signed, err := t.Sign(ctx, unsigned)
	if err != nil {
		return "", err
	}

	return t.Submit(ctx, signed)
}

// Sign witnesses the transaction body and hands the witness set to the
// aggregator for counter-signing; the aggregator may hold additional
// required signers such as a relayer fee payer. The returned payload is
// checked for witness coverage of the body's required signers; gaps are
// logged, not fatal, since some of them can be script credentials.
func (t *Transactor) Sign(ctx context.Context, txCbor string) (string, error) {
	tx, err := domain.ParseTransaction(txCbor)
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeSigningError, "decode unsigned transaction")
	}

	bodyHash := tx.BodyHash()
	keys := []*domain.SigningKey{t.paymentKey}
	if t.stakeKey != nil {
		keys = append(keys, t.stakeKey)
	} else {
		t.logger.Warn(ctx, "no stake key configured, signing with payment key only")
	}

	witnessHex, err := domain.NewWitnessSet(bodyHash[:], keys...).Hex()
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeSigningError, "encode witness set")
	}
	t.logger.Debug(ctx, "witness set built",
		"tx_id", tx.ID(),
		"payment_key_hash", hex.EncodeToString(t.paymentKey.Hash()))

	signed, err := t.aggregator.CoSignSwap(ctx, witnessHex, txCbor)
	if err != nil {
		return "", err
	}

	signedTx, err := domain.ParseTransaction(signed)
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeSigningError, "decode co-signed transaction")
	}

	required, err := tx.RequiredSigners()
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeSigningError, "read required signers")
	}
	witnesses, err := signedTx.Witnesses()
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeSigningError, "read witnesses")
	}
	for _, missing := range domain.MissingSigners(required, witnesses) {
		t.logger.Warn(ctx, "required signer has no witness", "key_hash", missing)
	}

	return signed, nil
}

// Submit validates and submits a signed transaction, returning its hash.
// A network id baked into the body must match the configured network; a
// transaction without witnesses is rejected before it reaches the node.
func (t *Transactor) Submit(ctx context.Context, signedCbor string) (string, error) {
	tx, err := domain.ParseTransaction(signedCbor)
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeSigningError, "decode signed transaction")
	}

	netID, err := tx.NetworkID()
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeSigningError, "read network id")
	}
	if netID != nil && *netID != t.cfg.NetworkID {
		return "", apperror.New(apperror.CodeNetworkIDMismatch,
			apperror.WithContext("transaction targets another network"))
	}

	witnesses, err := tx.Witnesses()
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeSigningError, "read witnesses")
	}
	if len(witnesses) == 0 {
		return "", apperror.New(apperror.CodeSigningError,
			apperror.WithContext("transaction has no witnesses"))
	}

	raw, err := hex.DecodeString(signedCbor)
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeSigningError, "decode transaction hex")
	}

	hash, err := t.indexer.SubmitTransaction(ctx, raw)
	if err != nil {
		return "", err
	}
	t.logger.Info(ctx, "transaction submitted", "tx_hash", hash, "witnesses", len(witnesses))
	return hash, nil
}

// AwaitConfirmation polls the indexer until the transaction is included
// in a block. Not-yet-visible is the expected state while the transaction
// propagates; only indexer failures and the timeout end the wait early.
func (t *Transactor) AwaitConfirmation(ctx context.Context, txHash string, timeout time.Duration) error {
	start := t.clock.Now()
	for {
		height, found, err := t.indexer.TransactionHeight(ctx, txHash)
		if err != nil {
			return apperror.Wrap(err, apperror.CodeBlockfrostAPIError, "confirmation poll")
		}
		if found {
			t.logger.Info(ctx, "transaction confirmed", "tx_hash", txHash, "block_height", height)
			return nil
		}

		if t.clock.Now().Sub(start) >= timeout {
			return apperror.New(apperror.CodeConfirmationTimeout,
				apperror.WithContext("transaction not included within timeout"))
		}
		if err := t.clock.Sleep(ctx, confirmPollInterval); err != nil {
			return err
		}
	}
}

// SendAsset pays quantity of the configured token to a recipient address,
// with the min-ADA rider attached, and returns the transaction hash.
func (t *Transactor) SendAsset(ctx context.Context, recipient string, quantity decimal.Decimal) (string, error) {
	to, err := domain.ParseAddress(recipient)
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeInvalidInput, "recipient address")
	}
	from, err := domain.ParseAddress(t.cfg.Address)
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeInvalidInput, "wallet address")
	}

	utxos, err := t.indexer.AddressUTxOs(ctx, t.cfg.Address)
	if err != nil {
		return "", err
	}
	tip, err := t.indexer.LatestBlock(ctx)
	if err != nil {
		return "", err
	}

	tx, err := domain.BuildPayment(domain.PaymentSpec{
		Sender:        from,
		Recipient:     to,
		TokenUnit:     t.cfg.TokenUnit,
		TokenQuantity: uint64(quantity.IntPart()),
		Lovelace:      t.cfg.MinUTxOLovelace,
		TTL:           tip.Slot + ttlSlotMargin,
	}, utxos)
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeInsufficientBalance, "build payment")
	}

	bodyHash := tx.BodyHash()
	witnessHex, err := domain.NewWitnessSet(bodyHash[:], t.paymentKey).Hex()
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeSigningError, "encode witness set")
	}
	witnessRaw, err := hex.DecodeString(witnessHex)
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeSigningError, "decode witness set")
	}
	tx.WitnessSet = witnessRaw

	raw, err := tx.Bytes()
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeSigningError, "encode transaction")
	}

	hash, err := t.indexer.SubmitTransaction(ctx, raw)
	if err != nil {
		return "", err
	}
	t.logger.Info(ctx, "asset payment submitted",
		"tx_hash", hash,
		"recipient", recipient,
		"quantity", quantity.String())
	return hash, nil
}

// TokenBalance reports the wallet's raw holdings of the configured token.
func (t *Transactor) TokenBalance(ctx context.Context) (decimal.Decimal, error) {
	assets, err := t.indexer.AddressAssets(ctx, t.cfg.Address)
	if err != nil {
		return decimal.Zero, err
	}
	return assets[t.cfg.TokenUnit], nil
}
