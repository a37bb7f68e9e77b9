package soldid

import (
	"bytes"
	"crypto/sha256"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

const (
	DefaultFragment = "default"

	discriminatorSize = 8
)

var (
	didAccountDiscriminator = discriminator("account", "DidAccount")

	// InitialAccountSize is the allocation needed by a freshly initialised
	// DID account
	InitialAccountSize = initialAccountSize()
)

// discriminator is the Anchor type/instruction tag: the first 8 bytes of
// sha256("<namespace>:<name>")
func discriminator(namespace, name string) [discriminatorSize]byte {
	var d [discriminatorSize]byte
	h := sha256.Sum256([]byte(namespace + ":" + name))
	copy(d[:], h[:discriminatorSize])
	return d
}

type VerificationMethod struct {
	Fragment   string
	Flags      uint16
	MethodType uint8
	KeyData    []byte
}

func (vm VerificationMethod) Flag() Flag {
	return Flag(vm.Flags)
}

func (vm VerificationMethod) Type() MethodType {
	return MethodType(vm.MethodType)
}

type Service struct {
	Fragment        string
	ServiceType     string
	ServiceEndpoint string
}

// DidAccount is the Borsh layout of the DID program's data account
type DidAccount struct {
	Version                   uint8
	Bump                      uint8
	Nonce                     uint64
	InitialVerificationMethod VerificationMethod
	VerificationMethods       []VerificationMethod
	Services                  []Service
	NativeControllers         []solana.PublicKey
	OtherControllers          []string
}

// NewDidAccount is the state the program writes on initialize
func NewDidAccount(authority solana.PublicKey, bump uint8) *DidAccount {
	return &DidAccount{
		Bump: bump,
		InitialVerificationMethod: VerificationMethod{
			Fragment:   DefaultFragment,
			Flags:      uint16(FlagCapabilityInvocation | FlagOwnershipProof),
			MethodType: uint8(MethodTypeEd25519VerificationKey2018),
			KeyData:    authority.Bytes(),
		},
		VerificationMethods: []VerificationMethod{},
		Services:            []Service{},
		NativeControllers:   []solana.PublicKey{},
		OtherControllers:    []string{},
	}
}

// DecodeAccount decodes raw account data. Allocation padding after the
// encoded state is ignored.
func DecodeAccount(data []byte) (*DidAccount, error) {
	if len(data) < discriminatorSize {
		return nil, ErrAccountTooShort
	}

	if !bytes.Equal(data[:discriminatorSize], didAccountDiscriminator[:]) {
		return nil, ErrInvalidDiscriminator
	}

	a := &DidAccount{}
	if err := bin.NewBorshDecoder(data[discriminatorSize:]).Decode(a); err != nil {
		return nil, errors.Wrap(err, "decoding DID account")
	}

	return a, nil
}

// Encode renders the account as stored on chain, discriminator included
func (a *DidAccount) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	buf.Write(didAccountDiscriminator[:])

	if err := bin.NewBorshEncoder(buf).Encode(a); err != nil {
		return nil, errors.Wrap(err, "encoding DID account")
	}

	return buf.Bytes(), nil
}

func initialAccountSize() uint32 {
	n, err := NewDidAccount(solana.PublicKey{}, 0).Size()
	if err != nil {
		panic(err)
	}

	return uint32(n)
}

// Size is the number of bytes the account needs to hold its current state
func (a *DidAccount) Size() (int, error) {
	b, err := a.Encode()
	if err != nil {
		return 0, err
	}

	return len(b), nil
}

func (a *DidAccount) FindVerificationMethod(fragment string) (VerificationMethod, bool) {
	if a.InitialVerificationMethod.Fragment == fragment {
		return a.InitialVerificationMethod, true
	}

	for _, vm := range a.VerificationMethods {
		if vm.Fragment == fragment {
			return vm, true
		}
	}

	return VerificationMethod{}, false
}

func (a *DidAccount) FindService(fragment string) (Service, bool) {
	for _, s := range a.Services {
		if s.Fragment == fragment {
			return s, true
		}
	}

	return Service{}, false
}

func (a *DidAccount) clone() *DidAccount {
	c := *a
	c.VerificationMethods = append([]VerificationMethod{}, a.VerificationMethods...)
	c.Services = append([]Service{}, a.Services...)
	c.NativeControllers = append([]solana.PublicKey{}, a.NativeControllers...)
	c.OtherControllers = append([]string{}, a.OtherControllers...)
	return &c
}

// WithService returns a copy of the account with s added, replacing an
// existing entry with the same fragment when overwrite is set.
func (a *DidAccount) WithService(s Service, overwrite bool) (*DidAccount, error) {
	c := a.clone()

	for i, existing := range c.Services {
		if existing.Fragment == s.Fragment {
			if !overwrite {
				return nil, errors.Wrapf(ErrFragmentExists, "service %q", s.Fragment)
			}
			c.Services[i] = s
			return c, nil
		}
	}

	c.Services = append(c.Services, s)
	return c, nil
}

func (a *DidAccount) WithoutService(fragment string) (*DidAccount, error) {
	c := a.clone()

	for i, existing := range c.Services {
		if existing.Fragment == fragment {
			c.Services = append(c.Services[:i], c.Services[i+1:]...)
			return c, nil
		}
	}

	return nil, errors.Wrapf(ErrFragmentNotFound, "service %q", fragment)
}

func (a *DidAccount) WithVerificationMethod(vm VerificationMethod) (*DidAccount, error) {
	if _, ok := a.FindVerificationMethod(vm.Fragment); ok {
		return nil, errors.Wrapf(ErrFragmentExists, "verification method %q", vm.Fragment)
	}

	c := a.clone()
	c.VerificationMethods = append(c.VerificationMethods, vm)
	return c, nil
}

func (a *DidAccount) WithoutVerificationMethod(fragment string) (*DidAccount, error) {
	if fragment == a.InitialVerificationMethod.Fragment {
		return nil, errors.Errorf("the %q verification method cannot be removed", fragment)
	}

	c := a.clone()

	for i, existing := range c.VerificationMethods {
		if existing.Fragment == fragment {
			c.VerificationMethods = append(c.VerificationMethods[:i], c.VerificationMethods[i+1:]...)
			return c, nil
		}
	}

	return nil, errors.Wrapf(ErrFragmentNotFound, "verification method %q", fragment)
}
