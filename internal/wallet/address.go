// Package wallet validates Cardano wallet material locally: bech32
// addresses, BIP-39 mnemonics and verification keys.
package wallet

import (
	"errors"
	"fmt"
)

// Network ids carried in the low nibble of an address header.
const (
	NetworkTestnet = 0
	NetworkMainnet = 1
)

// AddressType is the high nibble of a Shelley address header.
type AddressType byte

const (
	TypeBaseKeyKey AddressType = iota
	TypeBaseScriptKey
	TypeBaseKeyScript
	TypeBaseScriptScript
	TypePointerKey
	TypePointerScript
	TypeEnterpriseKey
	TypeEnterpriseScript
	TypeByron
	TypeRewardKey    AddressType = 14
	TypeRewardScript AddressType = 15
)

func (t AddressType) String() string {
	switch t {
	case TypeBaseKeyKey, TypeBaseScriptKey, TypeBaseKeyScript, TypeBaseScriptScript:
		return "base"
	case TypePointerKey, TypePointerScript:
		return "pointer"
	case TypeEnterpriseKey, TypeEnterpriseScript:
		return "enterprise"
	case TypeByron:
		return "byron"
	case TypeRewardKey, TypeRewardScript:
		return "reward"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// ErrInvalidAddress is wrapped by every ParseAddress failure.
var ErrInvalidAddress = errors.New("invalid address")

// Address is a decoded Shelley address.
type Address struct {
	HRP     string
	Network int
	Type    AddressType
	Bytes   []byte
}

// String re-encodes the address.
func (a Address) String() string {
	s, err := EncodeBech32(a.HRP, a.Bytes)
	if err != nil {
		return ""
	}
	return s
}

// Mainnet reports whether the address belongs to mainnet.
func (a Address) Mainnet() bool { return a.Network == NetworkMainnet }

// prefixes maps each accepted hrp to its network and whether it is a stake address.
var prefixes = map[string]struct {
	network int
	stake   bool
}{
	"addr":       {NetworkMainnet, false},
	"addr_test":  {NetworkTestnet, false},
	"stake":      {NetworkMainnet, true},
	"stake_test": {NetworkTestnet, true},
}

// ParseAddress decodes and checks a bech32 Shelley payment or stake address.
func ParseAddress(s string) (Address, error) {
	hrp, payload, err := DecodeBech32(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	p, ok := prefixes[hrp]
	if !ok {
		return Address{}, fmt.Errorf("%w: unknown prefix %q", ErrInvalidAddress, hrp)
	}
	if len(payload) < 29 {
		return Address{}, fmt.Errorf("%w: payload too short (%d bytes)", ErrInvalidAddress, len(payload))
	}

	addr := Address{
		HRP:     hrp,
		Network: int(payload[0] & 0x0f),
		Type:    AddressType(payload[0] >> 4),
		Bytes:   payload,
	}

	if addr.Network != p.network {
		return Address{}, fmt.Errorf("%w: network id %d does not match prefix %q", ErrInvalidAddress, addr.Network, hrp)
	}
	isReward := addr.Type == TypeRewardKey || addr.Type == TypeRewardScript
	if isReward != p.stake {
		return Address{}, fmt.Errorf("%w: %s address under prefix %q", ErrInvalidAddress, addr.Type, hrp)
	}
	if addr.Type > TypeEnterpriseScript && !isReward {
		return Address{}, fmt.Errorf("%w: unsupported address type %s", ErrInvalidAddress, addr.Type)
	}
	return addr, nil
}
