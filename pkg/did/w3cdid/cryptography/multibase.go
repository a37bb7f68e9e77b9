package cryptography

import (
	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multibase"
	"github.com/pkg/errors"
)

func decodeMultibase(mb string) ([]byte, error) {
	_, d, err := multibase.Decode(mb)
	return d, err
}

// EncodeMultibase renders raw key bytes as base58btc multibase ('z' prefixed)
func EncodeMultibase(raw []byte) string {
	s, _ := multibase.Encode(multibase.Base58BTC, raw)
	return s
}

func EncodeBase58(raw []byte) string {
	return base58.Encode(raw)
}

// PublicKeyBytes returns the raw key material of vm regardless of which
// encoding it was published with.
func PublicKeyBytes(vm VerificationMethod) ([]byte, error) {
	switch {
	case vm.PublicKeyBase58 != "":
		b, err := base58.Decode(vm.PublicKeyBase58)
		if err != nil {
			return nil, errors.Wrap(err, "decoding base58")
		}
		return b, nil
	case vm.PublicKeyMultibase != "":
		b, err := decodeMultibase(vm.PublicKeyMultibase)
		if err != nil {
			return nil, errors.Wrap(err, "decoding multibase")
		}
		return b, nil
	default:
		return nil, ErrNoPublicKeyMaterial
	}
}
