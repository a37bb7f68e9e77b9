package soldid

import (
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentifier(t *testing.T) {
	key := testKey(1).PublicKey()

	tests := []struct {
		name    string
		did     string
		cluster Cluster
		err     error
	}{
		{"mainnet", "did:sol:" + key.String(), ClusterMainnet, nil},
		{"devnet", "did:sol:devnet:" + key.String(), ClusterDevnet, nil},
		{"testnet", "did:sol:testnet:" + key.String(), ClusterTestnet, nil},
		{"localnet", "did:sol:localnet:" + key.String(), ClusterLocalnet, nil},
		{"explicit mainnet segment", "did:sol:mainnet:" + key.String(), "", ErrInvalidDidFormat},
		{"other method", "did:web:example.com", "", ErrInvalidDidFormat},
		{"non base58", "did:sol:devnet:" + strings.Repeat("0", 44), "", ErrInvalidDidFormat},
		{"too short for regex", "did:sol:" + strings.Repeat("a", 39), "", ErrInvalidDidFormat},
		{"too long address", "did:sol:" + strings.Repeat("a", 45), "", ErrInvalidAddressLength},
		{"not a key", "did:sol:" + strings.Repeat("z", 44), "", ErrInvalidSolanaAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseIdentifier(tt.did)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.cluster, id.Cluster())
			assert.Equal(t, key, id.Authority())
			assert.Equal(t, tt.did, id.String())
		})
	}
}

func TestIdentifierString(t *testing.T) {
	key := testKey(2).PublicKey()

	assert.Equal(t, "did:sol:"+key.String(), NewIdentifier(key, ClusterMainnet).String())
	assert.Equal(t, "did:sol:"+key.String(), NewIdentifier(key, "").String())
	assert.Equal(t, "did:sol:devnet:"+key.String(), NewIdentifier(key, ClusterDevnet).String())

	other := testKey(3).PublicKey()
	assert.Equal(t, "did:sol:devnet:"+other.String(), NewIdentifier(key, ClusterDevnet).WithAuthority(other).String())
}

func TestParseCluster(t *testing.T) {
	for in, want := range map[string]Cluster{
		"":             ClusterMainnet,
		"mainnet":      ClusterMainnet,
		"mainnet-beta": ClusterMainnet,
		"Devnet":       ClusterDevnet,
		"testnet":      ClusterTestnet,
		"localhost":    ClusterLocalnet,
		"localnet":     ClusterLocalnet,
	} {
		c, err := ParseCluster(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, c, in)
	}

	_, err := ParseCluster("moon")
	assert.ErrorIs(t, err, ErrUnknownCluster)

	assert.Equal(t, LocalnetRPC, ClusterLocalnet.DefaultRPC())
	assert.Equal(t, MainnetRPC, ClusterMainnet.DefaultRPC())
}

func TestDataAccount(t *testing.T) {
	key := testKey(4).PublicKey()

	addr, bump, err := NewIdentifier(key, ClusterDevnet).DataAccount(DefaultProgramID)
	require.NoError(t, err)

	want, wantBump, err := solana.FindProgramAddress([][]byte{[]byte("did-account"), key.Bytes()}, DefaultProgramID)
	require.NoError(t, err)
	assert.Equal(t, want, addr)
	assert.Equal(t, wantBump, bump)

	// the cluster is not part of the derivation
	mainAddr, _, err := NewIdentifier(key, ClusterMainnet).DataAccount(DefaultProgramID)
	require.NoError(t, err)
	assert.Equal(t, addr, mainAddr)
}
