package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Address is a decoded Cardano shelley address: raw header-plus-payload
// bytes as they appear inside transaction outputs.
type Address struct {
	raw []byte
	hrp string
}

var ErrBadAddress = errors.New("malformed address")

// ParseAddress decodes a bech32 mainnet or testnet address. Cardano
// addresses exceed the 90-character bech32 limit, so decoding is
// length-unlimited.
func ParseAddress(addr string) (Address, error) {
	hrp, data, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrBadAddress, err)
	}
	if hrp != "addr" && hrp != "addr_test" {
		return Address{}, fmt.Errorf("%w: unexpected prefix %q", ErrBadAddress, hrp)
	}

	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrBadAddress, err)
	}
	if len(raw) == 0 {
		return Address{}, fmt.Errorf("%w: empty payload", ErrBadAddress)
	}
	return Address{raw: raw, hrp: hrp}, nil
}

// Bytes returns the address as it is embedded in transaction outputs.
func (a Address) Bytes() []byte {
	return a.raw
}

// NetworkID is the network tag in the address header's low nibble.
func (a Address) NetworkID() uint8 {
	return a.raw[0] & 0x0f
}

// IsMainnet reports whether the address targets mainnet.
func (a Address) IsMainnet() bool {
	return strings.EqualFold(a.hrp, "addr")
}
