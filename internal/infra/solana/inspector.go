package solana

import (
	"context"
	"fmt"
	"strconv"

	"checkout-service/internal/domain"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	memoProgramV1 = solanago.MustPublicKeyFromBase58("Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo")
	memoProgramV2 = solanago.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
)

// Inspector turns a confirmed transaction into a chain-neutral payment
// record: lamport credits from balance deltas, token credits from token
// balance deltas, and the memo text if one was attached. Reconciliation
// validates the record against the order; nothing here mutates state.
type Inspector struct {
	client ChainClient
}

func NewInspector(client ChainClient) *Inspector {
	return &Inspector{client: client}
}

func (i *Inspector) InspectPayment(ctx context.Context, signature string) (*domain.PaymentRecord, error) {
	sig, err := solanago.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction signature: %w", err)
	}

	fetched, err := i.client.FetchTransaction(ctx, sig)
	if err != nil {
		return nil, err
	}

	return recordFromTransaction(signature, fetched), nil
}

func recordFromTransaction(signature string, f *FetchedTransaction) *domain.PaymentRecord {
	rec := &domain.PaymentRecord{Signature: signature, Slot: f.Slot}
	if f.Meta == nil || f.Tx == nil {
		return rec
	}
	if f.Meta.Err != nil {
		rec.Failed = true
		return rec
	}

	keys := f.Tx.Message.AccountKeys

	for idx, key := range keys {
		if idx >= len(f.Meta.PreBalances) || idx >= len(f.Meta.PostBalances) {
			break
		}
		pre := f.Meta.PreBalances[idx]
		post := f.Meta.PostBalances[idx]
		if post > pre {
			rec.Transfers = append(rec.Transfers, domain.TransferRecord{
				Recipient: key.String(),
				Amount:    post - pre,
			})
		}
	}

	preTok := make(map[uint16]uint64, len(f.Meta.PreTokenBalances))
	for _, tb := range f.Meta.PreTokenBalances {
		preTok[tb.AccountIndex] = parseTokenAmount(tb)
	}
	for _, tb := range f.Meta.PostTokenBalances {
		if tb.Owner == nil {
			continue
		}
		post := parseTokenAmount(tb)
		pre := preTok[tb.AccountIndex]
		if post > pre {
			rec.Transfers = append(rec.Transfers, domain.TransferRecord{
				Recipient: tb.Owner.String(),
				Mint:      tb.Mint.String(),
				Amount:    post - pre,
			})
		}
	}

	for _, inst := range f.Tx.Message.Instructions {
		if int(inst.ProgramIDIndex) >= len(keys) {
			continue
		}
		prog := keys[inst.ProgramIDIndex]
		if prog.Equals(memoProgramV1) || prog.Equals(memoProgramV2) {
			rec.Memo = string(inst.Data)
		}
	}

	return rec
}

func parseTokenAmount(tb rpc.TokenBalance) uint64 {
	if tb.UiTokenAmount == nil {
		return 0
	}
	n, err := strconv.ParseUint(tb.UiTokenAmount.Amount, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
