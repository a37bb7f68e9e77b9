package soldid

import (
	"github.com/tcfw/soldid/pkg/did/w3cdid"
	"github.com/tcfw/soldid/pkg/did/w3cdid/cryptography"
)

// BuildDocument renders the DID document of id. A nil account yields the
// generative document every did:sol has before anything is written on chain;
// on-chain methods and services are appended after the defaults.
func BuildDocument(id Identifier, acct *DidAccount) *w3cdid.Document {
	did := id.URL()
	defaultRef := string(did.WithFragment(DefaultFragment))

	doc := &w3cdid.Document{
		Context: []string{w3cdid.ContextDIDv1, w3cdid.ContextEd25519Suite18},
		ID:      string(did),
		VerificationMethod: []cryptography.VerificationMethod{{
			ID:              defaultRef,
			Type:            cryptography.Ed25519VerificationKey2018,
			Controller:      string(did),
			PublicKeyBase58: id.Authority().String(),
		}},
		Authentication:       []string{defaultRef},
		KeyAgreement:         []string{defaultRef},
		CapabilityInvocation: []string{defaultRef},
	}

	if acct == nil {
		return doc
	}

	for _, vm := range acct.VerificationMethods {
		flags := vm.Flag()
		if flags.Has(FlagDidDocHidden) {
			continue
		}

		ref := string(did.WithFragment(vm.Fragment))
		doc.VerificationMethod = append(doc.VerificationMethod, verificationMethod(did, vm))

		if flags.Has(FlagAuthentication) {
			doc.Authentication = append(doc.Authentication, ref)
		}
		if flags.Has(FlagAssertion) {
			doc.AssertionMethod = append(doc.AssertionMethod, ref)
		}
		if flags.Has(FlagKeyAgreement) {
			doc.KeyAgreement = append(doc.KeyAgreement, ref)
		}
		if flags.Has(FlagCapabilityInvocation) {
			doc.CapabilityInvocation = append(doc.CapabilityInvocation, ref)
		}
		if flags.Has(FlagCapabilityDelegation) {
			doc.CapabilityDelegation = append(doc.CapabilityDelegation, ref)
		}
	}

	for _, s := range acct.Services {
		doc.Service = append(doc.Service, w3cdid.Service{
			ID:              string(did.WithFragment(s.Fragment)),
			Type:            s.ServiceType,
			ServiceEndpoint: s.ServiceEndpoint,
		})
	}

	for _, c := range acct.NativeControllers {
		doc.Controller = append(doc.Controller, id.WithAuthority(c).String())
	}
	doc.Controller = append(doc.Controller, acct.OtherControllers...)

	return doc
}

func verificationMethod(did w3cdid.URL, vm VerificationMethod) cryptography.VerificationMethod {
	out := cryptography.VerificationMethod{
		ID:         string(did.WithFragment(vm.Fragment)),
		Type:       vm.Type().W3CType(),
		Controller: string(did),
	}

	if vm.Type() == MethodTypeEd25519VerificationKey2018 {
		out.PublicKeyBase58 = cryptography.EncodeBase58(vm.KeyData)
	} else {
		out.PublicKeyMultibase = cryptography.EncodeMultibase(vm.KeyData)
	}

	return out
}
