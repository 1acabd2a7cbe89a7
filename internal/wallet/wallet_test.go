package wallet

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/blake2b"
)

func TestDecodeBech32_KnownVectors(t *testing.T) {
	tests := []struct {
		in      string
		hrp     string
		payload string
	}{
		{"a12uel5l", "a", ""},
		{"A12UEL5L", "a", ""},
		{"abcdef1qpzry9x8gf2tvdw0s3jn54khce6mua7lmqqqxw", "abcdef", "00443214c74254b635cf84653a56d7c675be77df"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hrp, payload, err := DecodeBech32(tt.in)
			if err != nil {
				t.Fatalf("DecodeBech32() error = %v", err)
			}
			if hrp != tt.hrp {
				t.Errorf("hrp = %q, want %q", hrp, tt.hrp)
			}
			if got := hex.EncodeToString(payload); got != tt.payload {
				t.Errorf("payload = %s, want %s", got, tt.payload)
			}
		})
	}
}

func TestDecodeBech32_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"mixed case", "a12UEL5L", ErrBech32Case},
		{"no separator", "pzry9x0s0muk", ErrBech32Format},
		{"empty hrp", "1pzry9x0s0muk", ErrBech32Format},
		{"bad checksum", "a12uel5m", ErrBech32Checksum},
		{"bad char", "a1b2uel5l", ErrBech32Char},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeBech32(tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeBech32(%q) error = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
}

func TestBech32_LongPayloadRoundTrip(t *testing.T) {
	payload := make([]byte, 57)
	payload[0] = 0x01
	for i := 1; i < len(payload); i++ {
		payload[i] = byte(i * 7)
	}

	s, err := EncodeBech32("addr", payload)
	if err != nil {
		t.Fatalf("EncodeBech32() error = %v", err)
	}
	if len(s) <= 90 {
		t.Fatalf("expected an address longer than 90 chars, got %d", len(s))
	}

	hrp, got, err := DecodeBech32(s)
	if err != nil {
		t.Fatalf("DecodeBech32() error = %v", err)
	}
	if hrp != "addr" || !bytes.Equal(got, payload) {
		t.Errorf("round trip mismatch: %s %x", hrp, got)
	}
}

func shelley(t *testing.T, hrp string, header byte, size int) string {
	t.Helper()
	payload := make([]byte, size)
	payload[0] = header
	for i := 1; i < size; i++ {
		payload[i] = byte(i)
	}
	s, err := EncodeBech32(hrp, payload)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantType AddressType
		wantNet  int
		wantErr  bool
	}{
		{"mainnet base", shelley(t, "addr", 0x01, 57), TypeBaseKeyKey, NetworkMainnet, false},
		{"testnet base", shelley(t, "addr_test", 0x00, 57), TypeBaseKeyKey, NetworkTestnet, false},
		{"testnet enterprise", shelley(t, "addr_test", 0x60, 29), TypeEnterpriseKey, NetworkTestnet, false},
		{"testnet pointer", shelley(t, "addr_test", 0x40, 32), TypePointerKey, NetworkTestnet, false},
		{"mainnet stake", shelley(t, "stake", 0xe1, 29), TypeRewardKey, NetworkMainnet, false},
		{"network mismatch", shelley(t, "addr", 0x00, 57), 0, 0, true},
		{"stake under addr", shelley(t, "addr", 0xe1, 29), 0, 0, true},
		{"base under stake", shelley(t, "stake", 0x01, 57), 0, 0, true},
		{"unknown prefix", shelley(t, "mono", 0x01, 57), 0, 0, true},
		{"too short", shelley(t, "addr", 0x61, 10), 0, 0, true},
		{"byron header", shelley(t, "addr", 0x81, 57), 0, 0, true},
		{"garbage", "addr1notanaddress", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseAddress(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAddress() = %+v, want error", addr)
				}
				if !errors.Is(err, ErrInvalidAddress) {
					t.Errorf("error %v should wrap ErrInvalidAddress", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAddress() error = %v", err)
			}
			if addr.Type != tt.wantType || addr.Network != tt.wantNet {
				t.Errorf("ParseAddress() = type %s net %d, want type %s net %d", addr.Type, addr.Network, tt.wantType, tt.wantNet)
			}
			if addr.String() != tt.in {
				t.Errorf("String() = %q, want %q", addr.String(), tt.in)
			}
		})
	}
}

func TestValidateMnemonic(t *testing.T) {
	valid := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	tests := []struct {
		name    string
		phrase  string
		wantErr bool
	}{
		{"valid", valid, false},
		{"extra whitespace and case", "  ABANDON abandon\tabandon abandon abandon abandon abandon abandon abandon abandon abandon   about \n", false},
		{"24 words", strings.Repeat("abandon ", 23) + "art", false},
		{"bad checksum", strings.Repeat("abandon ", 12), true},
		{"unknown word", strings.Replace(valid, "about", "aboutt", 1), true},
		{"too few words", "abandon abandon about", true},
		{"empty", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMnemonic(tt.phrase)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateMnemonic() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidMnemonic) {
				t.Errorf("error %v should wrap ErrInvalidMnemonic", err)
			}
		})
	}
}

func TestVKeyHash(t *testing.T) {
	key := strings.Repeat("ab", 32)
	h, _ := blake2b.New(28, nil)
	raw, _ := hex.DecodeString(key)
	h.Write(raw)
	want := hex.EncodeToString(h.Sum(nil))

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"plain hex", key, false},
		{"0x prefix", "0x" + key, false},
		{"cbor hex", "5820" + key, false},
		{"surrounding space", "  " + key + "\n", false},
		{"too short", "abcd", true},
		{"not hex", strings.Repeat("zz", 32), true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VKeyHash(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("VKeyHash() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != want {
				t.Errorf("VKeyHash() = %s, want %s", got, want)
			}
			if len(got) != 56 {
				t.Errorf("len(VKeyHash()) = %d, want 56", len(got))
			}
		})
	}
}
