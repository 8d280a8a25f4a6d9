package solana

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"checkout-service/internal/domain"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SignatureStatus is the tracker's view of a broadcast transaction.
type SignatureStatus struct {
	// Confirmed is true once the cluster reports confirmed or finalized.
	Confirmed bool
	// Failed is true when the transaction landed with an on-chain error.
	Failed    bool
	ErrDetail string
}

// FetchedTransaction pairs a decoded transaction with its execution meta.
type FetchedTransaction struct {
	Tx   *solanago.Transaction
	Meta *rpc.TransactionMeta
	Slot uint64
}

// Client adapts the solana-go RPC client to ChainClient.
type Client struct {
	rpc *rpc.Client
}

func NewClient(endpoint string) *Client {
	return &Client{rpc: rpc.New(endpoint)}
}

func (c *Client) GetBalance(ctx context.Context, account solanago.PublicKey) (uint64, error) {
	res, err := c.rpc.GetBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

func (c *Client) AccountExists(ctx context.Context, account solanago.PublicKey) (bool, error) {
	_, err := c.rpc.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) GetTokenBalance(ctx context.Context, tokenAccount solanago.PublicKey) (uint64, error) {
	res, err := c.rpc.GetTokenAccountBalance(ctx, tokenAccount, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, err
	}
	if res.Value == nil {
		return 0, nil
	}
	amount, err := strconv.ParseUint(res.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse token balance: %w", err)
	}
	return amount, nil
}

func (c *Client) LatestBlockhash(ctx context.Context) (solanago.Hash, error) {
	res, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solanago.Hash{}, err
	}
	return res.Value.Blockhash, nil
}

func (c *Client) SignatureStatus(ctx context.Context, sig solanago.Signature) (*SignatureStatus, error) {
	res, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, err
	}
	if len(res.Value) == 0 || res.Value[0] == nil {
		// Not yet visible to the cluster; the caller keeps polling.
		return &SignatureStatus{}, nil
	}
	st := res.Value[0]
	out := &SignatureStatus{}
	if st.Err != nil {
		out.Failed = true
		out.ErrDetail = fmt.Sprintf("%v", st.Err)
		return out, nil
	}
	switch st.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		out.Confirmed = true
	}
	return out, nil
}

func (c *Client) FetchTransaction(ctx context.Context, sig solanago.Signature) (*FetchedTransaction, error) {
	res, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:   solanago.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	if res == nil || res.Transaction == nil {
		return nil, domain.ErrTransactionNotFound
	}
	tx, err := res.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return &FetchedTransaction{Tx: tx, Meta: res.Meta, Slot: res.Slot}, nil
}

func (c *Client) SendTransaction(ctx context.Context, tx *solanago.Transaction) (solanago.Signature, error) {
	return c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
}

var _ ChainClient = (*Client)(nil)
