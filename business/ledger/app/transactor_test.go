package app

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/domain"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apperror"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

const (
	testAddr      = "addr1q8xvenxvenxvenxvenxvenxvenxvenxvenxvenxvenxvenxamhwamhwamhwamhwamhwamhwamhwamhwamhwamhwamhws3gpln6"
	testTokenUnit = "ea153b5d4864af15a1079a94a0e2486d6376fa28aafad272d15b243a0014df10536861726473"

	// A transaction whose body carries network id 1 and one witness.
	mainnetTxHex = "84a50081825820aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa01018182583901ccccccccccccccccccccccccccccccccccccccccccccccccccccccccdddddddddddddddddddddddddddddddddddddddddddddddddddddddd1a001e8480021a000298100e81581cbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb0f01a10081825820eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee5840fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff5f6"
)

func key(t *testing.T, seedByte byte) *domain.SigningKey {
	t.Helper()
	seed := hex.EncodeToString(bytes.Repeat([]byte{seedByte}, 32))
	k, err := domain.ParseSigningKeyJSON(`{"type":"PaymentSigningKeyShelley_ed25519","description":"","cborHex":"5820` + seed + `"}`)
	if err != nil {
		t.Fatal(err)
	}
	return k
}

// unsignedTxHex builds a realistic unsigned transaction to feed the
// signing flow.
func unsignedTxHex(t *testing.T) string {
	t.Helper()
	addr, err := domain.ParseAddress(testAddr)
	if err != nil {
		t.Fatal(err)
	}
	tx, err := domain.BuildPayment(domain.PaymentSpec{
		Sender:        addr,
		Recipient:     addr,
		TokenUnit:     testTokenUnit,
		TokenQuantity: 500,
		Lovelace:      1_500_000,
		TTL:           99,
	}, []domain.UTxO{{
		TxHash:   strings.Repeat("aa", 32),
		Lovelace: 10_000_000,
		Assets:   map[string]uint64{testTokenUnit: 500},
	}})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := tx.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	return hex.EncodeToString(raw)
}

type fakeAggregator struct {
	estimate     *SwapEstimate
	estimateErr  error
	unsigned     string
	coSignCalled bool
	lastWitness  string
}

func (f *fakeAggregator) EstimateSwap(context.Context, SwapRequest) (*SwapEstimate, error) {
	if f.estimateErr != nil {
		return nil, f.estimateErr
	}
	if f.estimate != nil {
		return f.estimate, nil
	}
	return &SwapEstimate{TotalOutput: decimal.RequireFromString("490")}, nil
}

func (f *fakeAggregator) BuildSwap(context.Context, BuildRequest) (string, error) {
	return f.unsigned, nil
}

// CoSignSwap splices the submitted witness set into the transaction, the
// way the real aggregator returns a fully witnessed payload.
func (f *fakeAggregator) CoSignSwap(_ context.Context, witnessHex, txCbor string) (string, error) {
	f.coSignCalled = true
	f.lastWitness = witnessHex

	tx, err := domain.ParseTransaction(txCbor)
	if err != nil {
		return "", err
	}
	raw, err := hex.DecodeString(witnessHex)
	if err != nil {
		return "", err
	}
	tx.WitnessSet = raw
	out, err := tx.Bytes()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(out), nil
}

type fakeIndexer struct {
	submitted   [][]byte
	submitHash  string
	foundAfter  int
	heightPolls int
	pollErr     error
	block       Block
	assets      map[string]decimal.Decimal
	utxos       []domain.UTxO
	includedAt  int64
}

func (f *fakeIndexer) SubmitTransaction(_ context.Context, raw []byte) (string, error) {
	f.submitted = append(f.submitted, raw)
	return f.submitHash, nil
}

func (f *fakeIndexer) TransactionHeight(context.Context, string) (int64, bool, error) {
	f.heightPolls++
	if f.pollErr != nil {
		return 0, false, f.pollErr
	}
	if f.foundAfter > 0 && f.heightPolls >= f.foundAfter {
		return f.includedAt, true, nil
	}
	return 0, false, nil
}

func (f *fakeIndexer) LatestBlock(context.Context) (*Block, error) {
	b := f.block
	return &b, nil
}

func (f *fakeIndexer) AddressAssets(context.Context, string) (map[string]decimal.Decimal, error) {
	return f.assets, nil
}

func (f *fakeIndexer) AddressUTxOs(context.Context, string) ([]domain.UTxO, error) {
	return f.utxos, nil
}

func newTransactor(agg *fakeAggregator, idx *fakeIndexer, stakeKey *domain.SigningKey, t *testing.T) (*Transactor, *clock.Fake) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	tr := NewTransactor(agg, idx, key(t, 0x10), stakeKey, TransactorConfig{
		Address:         testAddr,
		NetworkID:       1,
		TokenUnit:       testTokenUnit,
		SlippagePct:     decimal.RequireFromString("2"),
		MinUTxOLovelace: 1_500_000,
	}, clk, logger.Nop())
	return tr, clk
}

func TestExecuteSwap(t *testing.T) {
	agg := &fakeAggregator{unsigned: unsignedTxHex(t)}
	idx := &fakeIndexer{submitHash: "deadbeef"}
	tr, _ := newTransactor(agg, idx, key(t, 0x20), t)

	hash, err := tr.ExecuteSwap(context.Background(), decimal.RequireFromString("500"), true)
	if err != nil {
		t.Fatalf("ExecuteSwap failed: %v", err)
	}
	if hash != "deadbeef" {
		t.Errorf("hash = %s", hash)
	}
	if !agg.coSignCalled {
		t.Error("co-sign never called")
	}
	if len(idx.submitted) != 1 {
		t.Fatalf("submit count = %d", len(idx.submitted))
	}

	// The submitted payload must carry both witnesses, payment and stake,
	// each verifying against the body hash.
	tx, err := domain.ParseTransaction(hex.EncodeToString(idx.submitted[0]))
	if err != nil {
		t.Fatalf("submitted payload unparseable: %v", err)
	}
	witnesses, err := tx.Witnesses()
	if err != nil {
		t.Fatal(err)
	}
	if len(witnesses) != 2 {
		t.Fatalf("witness count = %d, want payment + stake", len(witnesses))
	}
	bodyHash := tx.BodyHash()
	for i, w := range witnesses {
		if !ed25519.Verify(ed25519.PublicKey(w.VKey), bodyHash[:], w.Signature) {
			t.Errorf("witness %d does not verify", i)
		}
	}
}

func TestExecuteSwap_EstimateFailureAborts(t *testing.T) {
	agg := &fakeAggregator{estimateErr: errors.New("aggregator down"), unsigned: unsignedTxHex(t)}
	idx := &fakeIndexer{submitHash: "x"}
	tr, _ := newTransactor(agg, idx, nil, t)

	if _, err := tr.ExecuteSwap(context.Background(), decimal.RequireFromString("500"), false); err == nil {
		t.Fatal("expected estimate failure to abort the leg")
	}
	if agg.coSignCalled || len(idx.submitted) != 0 {
		t.Error("leg continued past a failed estimate")
	}
}

func TestSign_MalformedPayload(t *testing.T) {
	tr, _ := newTransactor(&fakeAggregator{}, &fakeIndexer{}, nil, t)

	_, err := tr.Sign(context.Background(), "not-cbor")
	if !apperror.HasCode(err, apperror.CodeSigningError) {
		t.Errorf("expected CodeSigningError, got %v", err)
	}
}

func TestSubmit_NetworkMismatch(t *testing.T) {
	tr, _ := newTransactor(&fakeAggregator{}, &fakeIndexer{}, nil, t)
	// Config says network 1; use a config targeting network 0 instead.
	tr.cfg.NetworkID = 0

	_, err := tr.Submit(context.Background(), mainnetTxHex)
	if !apperror.HasCode(err, apperror.CodeNetworkIDMismatch) {
		t.Errorf("expected CodeNetworkIDMismatch, got %v", err)
	}
}

func TestSubmit_RejectsUnwitnessed(t *testing.T) {
	tr, _ := newTransactor(&fakeAggregator{}, &fakeIndexer{}, nil, t)

	_, err := tr.Submit(context.Background(), unsignedTxHex(t))
	if !apperror.HasCode(err, apperror.CodeSigningError) {
		t.Errorf("expected CodeSigningError for missing witnesses, got %v", err)
	}
}

func TestAwaitConfirmation(t *testing.T) {
	idx := &fakeIndexer{foundAfter: 3, includedAt: 1000}
	tr, clk := newTransactor(&fakeAggregator{}, idx, nil, t)

	if err := tr.AwaitConfirmation(context.Background(), "abc", 5*time.Minute); err != nil {
		t.Fatalf("AwaitConfirmation failed: %v", err)
	}
	if idx.heightPolls != 3 {
		t.Errorf("polls = %d, want 3", idx.heightPolls)
	}
	for _, s := range clk.Sleeps {
		if s != 5*time.Second {
			t.Errorf("poll interval = %v, want 5s", s)
		}
	}
}

func TestAwaitConfirmation_Timeout(t *testing.T) {
	idx := &fakeIndexer{}
	tr, _ := newTransactor(&fakeAggregator{}, idx, nil, t)

	err := tr.AwaitConfirmation(context.Background(), "abc", 30*time.Second)
	if !apperror.HasCode(err, apperror.CodeConfirmationTimeout) {
		t.Errorf("expected CodeConfirmationTimeout, got %v", err)
	}
}

func TestAwaitConfirmation_IndexerError(t *testing.T) {
	idx := &fakeIndexer{pollErr: errors.New("boom")}
	tr, _ := newTransactor(&fakeAggregator{}, idx, nil, t)

	err := tr.AwaitConfirmation(context.Background(), "abc", time.Minute)
	if !apperror.HasCode(err, apperror.CodeBlockfrostAPIError) {
		t.Errorf("expected CodeBlockfrostAPIError, got %v", err)
	}
}

func TestSendAsset(t *testing.T) {
	idx := &fakeIndexer{
		submitHash: "feedface",
		block:      Block{Height: 500, Slot: 120_000_000},
		utxos: []domain.UTxO{{
			TxHash:   strings.Repeat("aa", 32),
			Lovelace: 10_000_000,
			Assets:   map[string]uint64{testTokenUnit: 500},
		}},
	}
	tr, _ := newTransactor(&fakeAggregator{}, idx, nil, t)

	hash, err := tr.SendAsset(context.Background(), testAddr, decimal.RequireFromString("500"))
	if err != nil {
		t.Fatalf("SendAsset failed: %v", err)
	}
	if hash != "feedface" {
		t.Errorf("hash = %s", hash)
	}

	submitted, err := domain.ParseTransaction(hex.EncodeToString(idx.submitted[0]))
	if err != nil {
		t.Fatalf("submitted payload unparseable: %v", err)
	}
	witnesses, err := submitted.Witnesses()
	if err != nil || len(witnesses) != 1 {
		t.Fatalf("witnesses = %v, %v", witnesses, err)
	}
	bodyHash := submitted.BodyHash()
	if !ed25519.Verify(ed25519.PublicKey(witnesses[0].VKey), bodyHash[:], witnesses[0].Signature) {
		t.Error("payment witness does not verify")
	}
}

func TestSendAsset_InsufficientFunds(t *testing.T) {
	idx := &fakeIndexer{block: Block{Slot: 1}}
	tr, _ := newTransactor(&fakeAggregator{}, idx, nil, t)

	_, err := tr.SendAsset(context.Background(), testAddr, decimal.RequireFromString("500"))
	if !apperror.HasCode(err, apperror.CodeInsufficientBalance) {
		t.Errorf("expected CodeInsufficientBalance, got %v", err)
	}
}

func TestTokenBalance(t *testing.T) {
	idx := &fakeIndexer{assets: map[string]decimal.Decimal{
		"lovelace":    decimal.RequireFromString("5000000"),
		testTokenUnit: decimal.RequireFromString("750"),
	}}
	tr, _ := newTransactor(&fakeAggregator{}, idx, nil, t)

	balance, err := tr.TokenBalance(context.Background())
	if err != nil {
		t.Fatalf("TokenBalance failed: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("750")) {
		t.Errorf("balance = %s, want 750", balance)
	}
}
