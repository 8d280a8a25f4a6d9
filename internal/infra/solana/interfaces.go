package solana

import (
	"context"

	"checkout-service/internal/domain"

	solanago "github.com/gagliardetto/solana-go"
)

// ChainClient is the narrow slice of Solana RPC the payment core reads and
// writes. Keeping it small lets the services test against mocks.
type ChainClient interface {
	GetBalance(ctx context.Context, account solanago.PublicKey) (uint64, error)
	AccountExists(ctx context.Context, account solanago.PublicKey) (bool, error)
	GetTokenBalance(ctx context.Context, tokenAccount solanago.PublicKey) (uint64, error)
	LatestBlockhash(ctx context.Context) (solanago.Hash, error)
	SignatureStatus(ctx context.Context, sig solanago.Signature) (*SignatureStatus, error)
	FetchTransaction(ctx context.Context, sig solanago.Signature) (*FetchedTransaction, error)
	SendTransaction(ctx context.Context, tx *solanago.Transaction) (solanago.Signature, error)
}

// Signer signs and broadcasts a built transaction. The connected-wallet
// flow suspends here until the user approves or rejects.
type Signer interface {
	SignAndSend(ctx context.Context, tx *solanago.Transaction) (solanago.Signature, error)
}

type InspectorInterface interface {
	InspectPayment(ctx context.Context, signature string) (*domain.PaymentRecord, error)
}

var _ InspectorInterface = (*Inspector)(nil)
