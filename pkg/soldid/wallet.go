package soldid

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// Wallet signs transactions on behalf of a single key
type Wallet interface {
	PublicKey() solana.PublicKey
	SignTransaction(tx *solana.Transaction) (*solana.Transaction, error)
	SignAllTransactions(txs []*solana.Transaction) ([]*solana.Transaction, error)
}

var _ Wallet = (*KeypairWallet)(nil)

// KeypairWallet is a Wallet backed by a local keypair. It only fills its own
// signature slot so transactions needing other signers can be passed along.
type KeypairWallet struct {
	payer solana.PrivateKey
}

func NewKeypairWallet(payer solana.PrivateKey) *KeypairWallet {
	return &KeypairWallet{payer: payer}
}

func (w *KeypairWallet) PublicKey() solana.PublicKey {
	return w.payer.PublicKey()
}

func (w *KeypairWallet) SignTransaction(tx *solana.Transaction) (*solana.Transaction, error) {
	if err := partialSign(tx, w.payer); err != nil {
		return nil, err
	}

	return tx, nil
}

func (w *KeypairWallet) SignAllTransactions(txs []*solana.Transaction) ([]*solana.Transaction, error) {
	signed := make([]*solana.Transaction, 0, len(txs))

	for _, tx := range txs {
		s, err := w.SignTransaction(tx)
		if err != nil {
			return nil, err
		}
		signed = append(signed, s)
	}

	return signed, nil
}

func partialSign(tx *solana.Transaction, key solana.PrivateKey) error {
	pub := key.PublicKey()

	signer := false
	for i := 0; i < int(tx.Message.Header.NumRequiredSignatures) && i < len(tx.Message.AccountKeys); i++ {
		if tx.Message.AccountKeys[i].Equals(pub) {
			signer = true
			break
		}
	}
	if !signer {
		return errors.Wrap(ErrUnknownSigner, pub.String())
	}

	_, err := tx.PartialSign(func(k solana.PublicKey) *solana.PrivateKey {
		if k.Equals(pub) {
			return &key
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "signing transaction")
	}

	return nil
}
