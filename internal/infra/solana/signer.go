package solana

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
)

// KeypairSigner signs with a locally held private key and broadcasts
// through the chain client. Used for server-held wallets and the payer
// CLI; browser wallets sign on their own side and only hand back a
// signature.
type KeypairSigner struct {
	key    solanago.PrivateKey
	client ChainClient
}

func NewKeypairSigner(key solanago.PrivateKey, client ChainClient) *KeypairSigner {
	return &KeypairSigner{key: key, client: client}
}

func (s *KeypairSigner) PublicKey() solanago.PublicKey {
	return s.key.PublicKey()
}

func (s *KeypairSigner) SignAndSend(ctx context.Context, tx *solanago.Transaction) (solanago.Signature, error) {
	_, err := tx.Sign(func(pk solanago.PublicKey) *solanago.PrivateKey {
		if pk.Equals(s.key.PublicKey()) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return solanago.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}
	return s.client.SendTransaction(ctx, tx)
}

var _ Signer = (*KeypairSigner)(nil)
