package soldid

import (
	"regexp"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/tcfw/soldid/pkg/did/w3cdid"
)

type Cluster string

const (
	ClusterMainnet  Cluster = "mainnet-beta"
	ClusterTestnet  Cluster = "testnet"
	ClusterDevnet   Cluster = "devnet"
	ClusterLocalnet Cluster = "localnet"
)

const (
	MainnetRPC  = "https://api.mainnet-beta.solana.com"
	TestnetRPC  = "https://api.testnet.solana.com"
	DevnetRPC   = "https://api.devnet.solana.com"
	LocalnetRPC = "http://127.0.0.1:8899"

	MethodName      = "sol"
	DataAccountSeed = "did-account"
)

var (
	DefaultProgramID = solana.MustPublicKeyFromBase58("didso1Dpqpm4CsiCjzP766BGY89CAdD6ZBL68cRhFPc")

	didSolRegex = regexp.MustCompile(`^did:sol(?::(testnet|devnet|localnet))?:([1-9A-HJ-NP-Za-km-z]{40,48})$`)
)

// ParseCluster accepts the cluster names used by Solana tooling. "mainnet"
// is accepted as an alias of mainnet-beta.
func ParseCluster(s string) (Cluster, error) {
	switch strings.ToLower(s) {
	case "mainnet", "mainnet-beta", "":
		return ClusterMainnet, nil
	case "testnet":
		return ClusterTestnet, nil
	case "devnet":
		return ClusterDevnet, nil
	case "localnet", "localhost":
		return ClusterLocalnet, nil
	default:
		return "", errors.Wrapf(ErrUnknownCluster, "%q", s)
	}
}

// DefaultRPC is the public endpoint of the cluster
func (c Cluster) DefaultRPC() string {
	switch c {
	case ClusterTestnet:
		return TestnetRPC
	case ClusterDevnet:
		return DevnetRPC
	case ClusterLocalnet:
		return LocalnetRPC
	default:
		return MainnetRPC
	}
}

// Identifier is a did:sol DID: an authority key on a cluster.
type Identifier struct {
	authority solana.PublicKey
	cluster   Cluster
}

func NewIdentifier(authority solana.PublicKey, cluster Cluster) Identifier {
	if cluster == "" {
		cluster = ClusterMainnet
	}

	return Identifier{authority: authority, cluster: cluster}
}

// ParseIdentifier parses did:sol[:cluster]:<base58 key>. Mainnet DIDs carry no
// cluster segment.
func ParseIdentifier(did string) (Identifier, error) {
	m := didSolRegex.FindStringSubmatch(did)
	if m == nil {
		return Identifier{}, ErrInvalidDidFormat
	}

	cluster := ClusterMainnet
	if m[1] != "" {
		cluster = Cluster(m[1])
	}

	address := m[2]
	if address == "" {
		return Identifier{}, ErrInvalidSolanaAddress
	}

	if len(address) < 32 || len(address) > 44 {
		return Identifier{}, ErrInvalidAddressLength
	}

	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return Identifier{}, ErrInvalidSolanaAddress
	}

	return Identifier{authority: pk, cluster: cluster}, nil
}

func (i Identifier) Authority() solana.PublicKey {
	return i.authority
}

func (i Identifier) Cluster() Cluster {
	return i.cluster
}

func (i Identifier) String() string {
	if i.cluster == ClusterMainnet || i.cluster == "" {
		return "did:sol:" + i.authority.String()
	}

	return "did:sol:" + string(i.cluster) + ":" + i.authority.String()
}

func (i Identifier) URL() w3cdid.URL {
	return w3cdid.URL(i.String())
}

// WithAuthority returns an identifier for another key on the same cluster
func (i Identifier) WithAuthority(authority solana.PublicKey) Identifier {
	return Identifier{authority: authority, cluster: i.cluster}
}

// DataAccount derives the address of the account holding the DID state
func (i Identifier) DataAccount(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(
		[][]byte{[]byte(DataAccountSeed), i.authority.Bytes()},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, errors.Wrap(err, "deriving DID data account")
	}

	return addr, bump, nil
}
