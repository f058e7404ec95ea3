package coin

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/iov-one/dao/errors"
)

// Decimals is the number of fractional digits used by both the stake token
// and the treasury currency. One whole unit equals 10^Decimals base units.
const Decimals = 18

// EncodedLen is the length of a binary encoded amount.
const EncodedLen = 32

var unit = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(Decimals))

// Zero returns a new zero amount.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// NewAmount returns an amount of given base units.
func NewAmount(base uint64) *uint256.Int {
	return uint256.NewInt(base)
}

// Units returns an amount of given whole units, that is whole * 10^Decimals
// base units. Units(100) is what is usually called "100 ether".
func Units(whole uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(whole), unit)
}

// ParseAmount decodes a base unit amount written as a decimal number or as a
// 0x prefixed hexadecimal number.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.Wrap(errors.ErrInput, "empty amount")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := uint256.FromHex(s)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "amount %q: %s", s, err)
		}
		return v, nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "amount %q: %s", s, err)
	}
	return v, nil
}

// ParseUnits decodes a human readable amount with up to Decimals fractional
// digits, for example "100" or "0.5", into base units.
func ParseUnits(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > Decimals {
		return nil, errors.Wrapf(errors.ErrInput, "amount %q: more than %d decimals", s, Decimals)
	}
	if whole == "" {
		whole = "0"
	}
	frac += strings.Repeat("0", Decimals-len(frac))
	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		return Zero(), nil
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "amount %q: %s", s, err)
	}
	return v, nil
}

// Format returns a human readable representation in whole units, without
// trailing fractional zeros.
func Format(a *uint256.Int) string {
	if a == nil {
		return "0"
	}
	whole, frac := new(uint256.Int).DivMod(a, unit, new(uint256.Int))
	if frac.IsZero() {
		return whole.Dec()
	}
	f := frac.Dec()
	f = strings.Repeat("0", Decimals-len(f)) + f
	return whole.Dec() + "." + strings.TrimRight(f, "0")
}

// Add returns a + b, or ErrOverflow. A nil operand is ErrInput.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	if a == nil || b == nil {
		return nil, errors.Wrap(errors.ErrInput, "missing amount")
	}
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, errors.Wrapf(errors.ErrOverflow, "%s + %s", a.Dec(), b.Dec())
	}
	return sum, nil
}

// Sub returns a - b, or ErrOverflow when b is greater than a. A nil
// operand is ErrInput.
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	if a == nil || b == nil {
		return nil, errors.Wrap(errors.ErrInput, "missing amount")
	}
	diff, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, errors.Wrapf(errors.ErrOverflow, "%s - %s", a.Dec(), b.Dec())
	}
	return diff, nil
}

// Encode returns the fixed size big endian representation of an amount.
// A nil amount is encoded as zero.
func Encode(a *uint256.Int) []byte {
	if a == nil {
		a = Zero()
	}
	b := a.Bytes32()
	return b[:]
}

// Decode is the reverse of Encode. An empty input decodes to zero.
func Decode(raw []byte) (*uint256.Int, error) {
	switch len(raw) {
	case 0:
		return Zero(), nil
	case EncodedLen:
		return new(uint256.Int).SetBytes(raw), nil
	default:
		return nil, errors.Wrapf(errors.ErrModel, "amount must be %d bytes, got %d", EncodedLen, len(raw))
	}
}

// ValidateEncoded returns an error if given bytes are not a valid encoded
// amount.
func ValidateEncoded(raw []byte) error {
	_, err := Decode(raw)
	return err
}
