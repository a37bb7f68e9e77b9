package soldid

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// LoadKeypair reads a keypair file as written by solana-keygen: a JSON array
// of the 64 secret key bytes.
func LoadKeypair(path string) (solana.PrivateKey, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading keypair file")
	}

	var raw []int
	if err := json.Unmarshal(d, &raw); err != nil {
		return nil, errors.Wrap(ErrInvalidKeypair, err.Error())
	}

	return keypairFromInts(raw)
}

// TestData is the ad hoc fixture format holding a keypair and the DID it controls
type TestData struct {
	Keypair solana.PrivateKey
	DID     Identifier
}

type testDataFile struct {
	Keypair []int  `json:"keypair"`
	DID     string `json:"did"`
}

func LoadTestData(path string) (*TestData, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading test data file")
	}

	f := &testDataFile{}
	if err := json.Unmarshal(d, f); err != nil {
		return nil, errors.Wrap(err, "unmarshalling test data")
	}

	kp, err := keypairFromInts(f.Keypair)
	if err != nil {
		return nil, err
	}

	id, err := ParseIdentifier(f.DID)
	if err != nil {
		return nil, errors.Wrap(err, "parsing test data DID")
	}

	return &TestData{Keypair: kp, DID: id}, nil
}

func keypairFromInts(raw []int) (solana.PrivateKey, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(ErrInvalidKeypair, "expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	b := make([]byte, len(raw))
	for i, v := range raw {
		if v < 0 || v > 255 {
			return nil, errors.Wrapf(ErrInvalidKeypair, "byte %d out of range", i)
		}
		b[i] = byte(v)
	}

	derived := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], b[ed25519.SeedSize:]) {
		return nil, errors.Wrap(ErrInvalidKeypair, "public key does not match secret key")
	}

	return solana.PrivateKey(b), nil
}
