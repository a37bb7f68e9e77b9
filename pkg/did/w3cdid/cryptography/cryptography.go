package cryptography

import "errors"

type VerificationMethodType string

var (
	ErrNoPublicKeyMaterial = errors.New("verification method has no public key material")
)

const (
	EcdsaSecp256k1RecoveryMethod2020  VerificationMethodType = "EcdsaSecp256k1RecoveryMethod2020"
	EcdsaSecp256k1VerificationKey2019 VerificationMethodType = "EcdsaSecp256k1VerificationKey2019"
	Ed25519VerificationKey2018        VerificationMethodType = "Ed25519VerificationKey2018"
	JsonWebKey2020                    VerificationMethodType = "JsonWebKey2020"
	X25519KeyAgreementKey2019         VerificationMethodType = "X25519KeyAgreementKey2019"

	// Other is used for key types the DID method cannot name
	Other VerificationMethodType = "Other"
)

// VerificationMethod carries exactly one of the public key encodings
type VerificationMethod struct {
	ID                 string                 `json:"id" yaml:"id"`
	Type               VerificationMethodType `json:"type" yaml:"type"`
	Controller         string                 `json:"controller" yaml:"controller"`
	PublicKeyBase58    string                 `json:"publicKeyBase58,omitempty" yaml:"publicKeyBase58,omitempty"`
	PublicKeyMultibase string                 `json:"publicKeyMultibase,omitempty" yaml:"publicKeyMultibase,omitempty"`
}
