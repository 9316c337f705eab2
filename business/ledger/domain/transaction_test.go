package domain

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"testing"
)

// A hand-assembled transaction: one input, one output, fee, a required
// signer (bb..bb) and network id 1, with a single vkey witness.
const fixtureTxHex = "84a50081825820aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa01018182583901ccccccccccccccccccccccccccccccccccccccccccccccccccccccccdddddddddddddddddddddddddddddddddddddddddddddddddddddddd1a001e8480021a000298100e81581cbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb0f01a10081825820eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee5840fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff5f6"

const fixtureBodyHash = "e7e4449aebbd6f6c21067b241c73e1699e7f5303b99e67cc4c65697b78d6a16e"

func TestParseTransaction_Fixture(t *testing.T) {
	tx, err := ParseTransaction(fixtureTxHex)
	if err != nil {
		t.Fatalf("ParseTransaction failed: %v", err)
	}

	if got := tx.ID(); got != fixtureBodyHash {
		t.Errorf("tx id = %s, want %s", got, fixtureBodyHash)
	}

	signers, err := tx.RequiredSigners()
	if err != nil {
		t.Fatalf("RequiredSigners failed: %v", err)
	}
	if len(signers) != 1 || hex.EncodeToString(signers[0]) != strings.Repeat("bb", 28) {
		t.Errorf("unexpected required signers: %x", signers)
	}

	netID, err := tx.NetworkID()
	if err != nil {
		t.Fatalf("NetworkID failed: %v", err)
	}
	if netID == nil || *netID != 1 {
		t.Errorf("network id = %v, want 1", netID)
	}

	witnesses, err := tx.Witnesses()
	if err != nil {
		t.Fatalf("Witnesses failed: %v", err)
	}
	if len(witnesses) != 1 {
		t.Fatalf("witness count = %d, want 1", len(witnesses))
	}
	if hex.EncodeToString(witnesses[0].VKey) != strings.Repeat("ee", 32) {
		t.Errorf("unexpected witness vkey: %x", witnesses[0].VKey)
	}
}

func TestParseTransaction_Malformed(t *testing.T) {
	for _, input := range []string{"", "zz", "deadbeef", "80"} {
		if _, err := ParseTransaction(input); err == nil {
			t.Errorf("ParseTransaction(%q) accepted malformed input", input)
		}
	}
}

func testKey(t *testing.T, seedByte byte) *SigningKey {
	t.Helper()
	seed := bytes.Repeat([]byte{seedByte}, 32)
	envelope := `{"type":"PaymentSigningKeyShelley_ed25519","description":"Payment Signing Key","cborHex":"5820` + hex.EncodeToString(seed) + `"}`
	key, err := ParseSigningKeyJSON(envelope)
	if err != nil {
		t.Fatalf("ParseSigningKeyJSON failed: %v", err)
	}
	return key
}

func TestSigningKey_WitnessVerifies(t *testing.T) {
	key := testKey(t, 0x11)
	tx, err := ParseTransaction(fixtureTxHex)
	if err != nil {
		t.Fatal(err)
	}

	hash := tx.BodyHash()
	ws := NewWitnessSet(hash[:], key)
	if len(ws.VKeyWitnesses) != 1 {
		t.Fatalf("witness count = %d", len(ws.VKeyWitnesses))
	}

	w := ws.VKeyWitnesses[0]
	if !ed25519.Verify(ed25519.PublicKey(w.VKey), hash[:], w.Signature) {
		t.Error("witness signature does not verify against the body hash")
	}

	if got := KeyHash(w.VKey); !bytes.Equal(got, key.Hash()) {
		t.Error("witness vkey hash mismatch")
	}
	if len(key.Hash()) != 28 {
		t.Errorf("key hash length = %d, want 28", len(key.Hash()))
	}
}

func TestNewWitnessSet_SkipsNilKeys(t *testing.T) {
	key := testKey(t, 0x22)
	hash := make([]byte, 32)

	ws := NewWitnessSet(hash, key, nil)
	if len(ws.VKeyWitnesses) != 1 {
		t.Errorf("witness count = %d, want 1 (nil stake key skipped)", len(ws.VKeyWitnesses))
	}
}

func TestWitnessSet_HexRoundTrip(t *testing.T) {
	key := testKey(t, 0x33)
	hash := bytes.Repeat([]byte{0xab}, 32)

	wsHex, err := NewWitnessSet(hash, key).Hex()
	if err != nil {
		t.Fatalf("Hex failed: %v", err)
	}

	raw, err := hex.DecodeString(wsHex)
	if err != nil {
		t.Fatal(err)
	}
	if raw[0] != 0xa1 {
		t.Errorf("witness set must encode as a one-entry map, got 0x%02x", raw[0])
	}
}

func TestMissingSigners(t *testing.T) {
	key := testKey(t, 0x44)
	other := testKey(t, 0x55)

	hash := make([]byte, 32)
	ws := NewWitnessSet(hash, key)

	missing := MissingSigners([][]byte{key.Hash(), other.Hash()}, ws.VKeyWitnesses)
	if len(missing) != 1 {
		t.Fatalf("missing count = %d, want 1", len(missing))
	}
	if missing[0] != hex.EncodeToString(other.Hash()) {
		t.Errorf("missing = %s, want %s", missing[0], hex.EncodeToString(other.Hash()))
	}

	if got := MissingSigners(nil, ws.VKeyWitnesses); got != nil {
		t.Errorf("no required signers should yield no missing, got %v", got)
	}
}

func TestParseSigningKeyJSON_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "nope"},
		{name: "bad hex", raw: `{"type":"x","cborHex":"zz"}`},
		{name: "short seed", raw: `{"type":"x","cborHex":"44deadbeef"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSigningKeyJSON(tt.raw); err == nil {
				t.Error("accepted malformed key")
			}
		})
	}
}

func TestParseAddress(t *testing.T) {
	mainnet := "addr1q8xvenxvenxvenxvenxvenxvenxvenxvenxvenxvenxvenxamhwamhwamhwamhwamhwamhwamhwamhwamhwamhwamhws3gpln6"
	testnet := "addr_test1qrxvenxvenxvenxvenxvenxvenxvenxvenxvenxvenxvenxamhwamhwamhwamhwamhwamhwamhwamhwamhwamhwamhwsj7ull9"

	a, err := ParseAddress(mainnet)
	if err != nil {
		t.Fatalf("ParseAddress mainnet failed: %v", err)
	}
	if !a.IsMainnet() || a.NetworkID() != 1 {
		t.Errorf("mainnet address: IsMainnet=%v NetworkID=%d", a.IsMainnet(), a.NetworkID())
	}
	if len(a.Bytes()) != 57 {
		t.Errorf("payload length = %d, want 57", len(a.Bytes()))
	}

	b, err := ParseAddress(testnet)
	if err != nil {
		t.Fatalf("ParseAddress testnet failed: %v", err)
	}
	if b.IsMainnet() || b.NetworkID() != 0 {
		t.Errorf("testnet address: IsMainnet=%v NetworkID=%d", b.IsMainnet(), b.NetworkID())
	}

	if _, err := ParseAddress("stake1abc"); err == nil {
		t.Error("accepted non-payment prefix")
	}
	if _, err := ParseAddress("addr1qqqqqqqq"); err == nil {
		t.Error("accepted bad checksum")
	}
}
