package soldid

import (
	"encoding/hex"
	"sort"
	"strings"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"go.dedis.ch/kyber/v3/group/edwards25519"

	"github.com/tcfw/soldid/pkg/did/w3cdid/cryptography"
)

// Flag is a verification method capability bit as stored on chain
type Flag uint16

const (
	FlagAuthentication Flag = 1 << iota
	FlagAssertion
	FlagKeyAgreement
	FlagCapabilityInvocation
	FlagCapabilityDelegation
	FlagDidDocHidden
	FlagOwnershipProof
	FlagProtected

	FlagNone Flag = 0
)

var flagNames = map[string]Flag{
	"authentication":       FlagAuthentication,
	"assertion":            FlagAssertion,
	"keyagreement":         FlagKeyAgreement,
	"capabilityinvocation": FlagCapabilityInvocation,
	"capabilitydelegation": FlagCapabilityDelegation,
	"diddochidden":         FlagDidDocHidden,
	"ownershipproof":       FlagOwnershipProof,
	"protected":            FlagProtected,
}

// ParseFlags combines named flags, e.g. ["assertion", "keyAgreement"]
func ParseFlags(names []string) (Flag, error) {
	var f Flag
	for _, n := range names {
		key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(n))
		v, ok := flagNames[key]
		if !ok {
			return 0, errors.Wrapf(ErrUnknownFlag, "%q", n)
		}
		f |= v
	}

	return f, nil
}

func (f Flag) Has(o Flag) bool {
	return f&o == o && o != FlagNone
}

func (f Flag) String() string {
	if f == FlagNone {
		return "None"
	}

	names := []string{}
	for n, v := range flagNames {
		if f.Has(v) {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	return strings.Join(names, "|")
}

// MethodType is the on-chain key type of a verification method
type MethodType uint8

const (
	MethodTypeEd25519VerificationKey2018 MethodType = iota
	MethodTypeEcdsaSecp256k1RecoveryMethod2020
	MethodTypeEcdsaSecp256k1VerificationKey2019
)

func ParseMethodType(s string) (MethodType, error) {
	switch cryptography.VerificationMethodType(s) {
	case cryptography.Ed25519VerificationKey2018:
		return MethodTypeEd25519VerificationKey2018, nil
	case cryptography.EcdsaSecp256k1RecoveryMethod2020:
		return MethodTypeEcdsaSecp256k1RecoveryMethod2020, nil
	case cryptography.EcdsaSecp256k1VerificationKey2019:
		return MethodTypeEcdsaSecp256k1VerificationKey2019, nil
	default:
		return 0, errors.Wrapf(ErrUnknownType, "%q", s)
	}
}

// W3CType maps the on-chain type to the document type name
func (t MethodType) W3CType() cryptography.VerificationMethodType {
	switch t {
	case MethodTypeEd25519VerificationKey2018:
		return cryptography.Ed25519VerificationKey2018
	case MethodTypeEcdsaSecp256k1RecoveryMethod2020:
		return cryptography.EcdsaSecp256k1RecoveryMethod2020
	case MethodTypeEcdsaSecp256k1VerificationKey2019:
		return cryptography.EcdsaSecp256k1VerificationKey2019
	default:
		return cryptography.Other
	}
}

var ed25519Curve = edwards25519.NewBlakeSHA256Ed25519()

// ValidateKeyData checks key material has the shape the method type expects
func ValidateKeyData(t MethodType, key []byte) error {
	switch t {
	case MethodTypeEd25519VerificationKey2018:
		if len(key) != 32 {
			return errors.Wrapf(ErrInvalidKeyData, "ed25519 key must be 32 bytes, got %d", len(key))
		}
		if err := ed25519Curve.Point().UnmarshalBinary(key); err != nil {
			return errors.Wrap(ErrInvalidKeyData, "ed25519 key is not a curve point")
		}
	case MethodTypeEcdsaSecp256k1RecoveryMethod2020:
		if len(key) != 20 {
			return errors.Wrapf(ErrInvalidKeyData, "ethereum address must be 20 bytes, got %d", len(key))
		}
	case MethodTypeEcdsaSecp256k1VerificationKey2019:
		if _, err := ethCrypto.DecompressPubkey(key); err != nil {
			return errors.Wrap(ErrInvalidKeyData, "secp256k1 key must be a compressed public key")
		}
	default:
		return errors.Wrapf(ErrUnknownType, "%d", t)
	}

	return nil
}

func parseSecp256k1(pubHex string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(pubHex, "0x"))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKeyData, "decoding hex key")
	}

	switch len(b) {
	case 33:
		pub, err := ethCrypto.DecompressPubkey(b)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidKeyData, err.Error())
		}
		return ethCrypto.CompressPubkey(pub), nil
	case 65:
		pub, err := ethCrypto.UnmarshalPubkey(b)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidKeyData, err.Error())
		}
		return ethCrypto.CompressPubkey(pub), nil
	default:
		return nil, errors.Wrapf(ErrInvalidKeyData, "secp256k1 key must be 33 or 65 bytes, got %d", len(b))
	}
}

// KeyDataFromSecp256k1 returns the key data stored on chain for a hex encoded
// secp256k1 public key: the compressed key for verification keys and the
// Ethereum address for recovery methods.
func KeyDataFromSecp256k1(t MethodType, pubHex string) ([]byte, error) {
	compressed, err := parseSecp256k1(pubHex)
	if err != nil {
		return nil, err
	}

	switch t {
	case MethodTypeEcdsaSecp256k1VerificationKey2019:
		return compressed, nil
	case MethodTypeEcdsaSecp256k1RecoveryMethod2020:
		pub, _ := ethCrypto.DecompressPubkey(compressed)
		return ethCrypto.PubkeyToAddress(*pub).Bytes(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownType, "%s is not a secp256k1 method", t.W3CType())
	}
}
