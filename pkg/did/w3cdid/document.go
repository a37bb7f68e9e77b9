package w3cdid

import "github.com/tcfw/soldid/pkg/did/w3cdid/cryptography"

const (
	ContextDIDv1          = "https://www.w3.org/ns/did/v1"
	ContextEd25519Suite18 = "https://w3id.org/security/suites/ed25519-2018/v1"
)

// Document is a DID document. Verification relationships reference methods
// in VerificationMethod by their full DID URL.
type Document struct {
	Context              []string                          `json:"@context" yaml:"@context"`
	ID                   string                            `json:"id" yaml:"id"`
	AlsoKnownAs          []string                          `json:"alsoKnownAs,omitempty" yaml:"alsoKnownAs,omitempty"`
	Controller           []string                          `json:"controller,omitempty" yaml:"controller,omitempty"`
	VerificationMethod   []cryptography.VerificationMethod `json:"verificationMethod,omitempty" yaml:"verificationMethod,omitempty"`
	Authentication       []string                          `json:"authentication,omitempty" yaml:"authentication,omitempty"`
	AssertionMethod      []string                          `json:"assertionMethod,omitempty" yaml:"assertionMethod,omitempty"`
	KeyAgreement         []string                          `json:"keyAgreement,omitempty" yaml:"keyAgreement,omitempty"`
	CapabilityInvocation []string                          `json:"capabilityInvocation,omitempty" yaml:"capabilityInvocation,omitempty"`
	CapabilityDelegation []string                          `json:"capabilityDelegation,omitempty" yaml:"capabilityDelegation,omitempty"`
	Service              []Service                         `json:"service,omitempty" yaml:"service,omitempty"`
}

type Service struct {
	ID              string `json:"id" yaml:"id"`
	Type            string `json:"type" yaml:"type"`
	ServiceEndpoint string `json:"serviceEndpoint" yaml:"serviceEndpoint"`
}

// FindVerificationMethod looks up a method by its full id (did#fragment)
func (d *Document) FindVerificationMethod(id string) (cryptography.VerificationMethod, bool) {
	for _, vm := range d.VerificationMethod {
		if vm.ID == id {
			return vm, true
		}
	}

	return cryptography.VerificationMethod{}, false
}

// FindService looks up a service by its full id (did#fragment)
func (d *Document) FindService(id string) (Service, bool) {
	for _, s := range d.Service {
		if s.ID == id {
			return s, true
		}
	}

	return Service{}, false
}
