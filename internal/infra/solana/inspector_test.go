package solana

import (
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/memo"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inspectorTestSig = "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"

func paymentTx(t *testing.T, payer, recipient solanago.PublicKey, lamports uint64, memoText string) *solanago.Transaction {
	t.Helper()
	instructions := []solanago.Instruction{
		system.NewTransferInstruction(lamports, payer, recipient).Build(),
	}
	if memoText != "" {
		instructions = append(instructions, memo.NewMemoInstruction([]byte(memoText), payer).Build())
	}
	tx, err := solanago.NewTransaction(instructions, solanago.Hash{}, solanago.TransactionPayer(payer))
	require.NoError(t, err)
	return tx
}

func keyIndex(t *testing.T, tx *solanago.Transaction, key solanago.PublicKey) int {
	t.Helper()
	for i, k := range tx.Message.AccountKeys {
		if k.Equals(key) {
			return i
		}
	}
	t.Fatalf("key %s not in account keys", key)
	return -1
}

func TestRecordFromTransaction_NativeTransfer(t *testing.T) {
	payer := solanago.NewWallet().PublicKey()
	recipient := solanago.NewWallet().PublicKey()

	tx := paymentTx(t, payer, recipient, 500_000_000, "FL-TEST0001")

	keys := tx.Message.AccountKeys
	pre := make([]uint64, len(keys))
	post := make([]uint64, len(keys))
	for i := range keys {
		pre[i] = 1_000_000_000
		post[i] = 1_000_000_000
	}
	payerIdx := keyIndex(t, tx, payer)
	recipientIdx := keyIndex(t, tx, recipient)
	pre[payerIdx] = 2_000_000_000
	post[payerIdx] = 1_499_995_000 // transfer plus fee
	post[recipientIdx] += 500_000_000

	rec := recordFromTransaction(inspectorTestSig, &FetchedTransaction{
		Tx:   tx,
		Meta: &rpc.TransactionMeta{PreBalances: pre, PostBalances: post},
		Slot: 42,
	})

	assert.False(t, rec.Failed)
	assert.Equal(t, uint64(42), rec.Slot)
	assert.Equal(t, "FL-TEST0001", rec.Memo)
	assert.Equal(t, uint64(500_000_000), rec.AmountTo(recipient.String(), ""))
	// The payer's balance only decreased; no credit is recorded for them.
	assert.Equal(t, uint64(0), rec.AmountTo(payer.String(), ""))
}

func TestRecordFromTransaction_TokenTransfer(t *testing.T) {
	payer := solanago.NewWallet().PublicKey()
	recipient := solanago.NewWallet().PublicKey()
	mint := solanago.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	tx := paymentTx(t, payer, recipient, 1, "")

	meta := &rpc.TransactionMeta{
		PreTokenBalances: []rpc.TokenBalance{
			{AccountIndex: 1, Mint: mint, Owner: &payer, UiTokenAmount: &rpc.UiTokenAmount{Amount: "100000000"}},
			{AccountIndex: 2, Mint: mint, Owner: &recipient, UiTokenAmount: &rpc.UiTokenAmount{Amount: "0"}},
		},
		PostTokenBalances: []rpc.TokenBalance{
			{AccountIndex: 1, Mint: mint, Owner: &payer, UiTokenAmount: &rpc.UiTokenAmount{Amount: "50000000"}},
			{AccountIndex: 2, Mint: mint, Owner: &recipient, UiTokenAmount: &rpc.UiTokenAmount{Amount: "50000000"}},
		},
	}

	rec := recordFromTransaction(inspectorTestSig, &FetchedTransaction{Tx: tx, Meta: meta, Slot: 42})

	assert.Equal(t, uint64(50_000_000), rec.AmountTo(recipient.String(), mint.String()))
	// Credits in another mint or in lamports do not count toward USDC.
	assert.Equal(t, uint64(0), rec.AmountTo(recipient.String(), ""))
	assert.Equal(t, uint64(0), rec.AmountTo(payer.String(), mint.String()))
}

func TestRecordFromTransaction_FailedTransaction(t *testing.T) {
	payer := solanago.NewWallet().PublicKey()
	recipient := solanago.NewWallet().PublicKey()

	tx := paymentTx(t, payer, recipient, 500_000_000, "")

	rec := recordFromTransaction(inspectorTestSig, &FetchedTransaction{
		Tx: tx,
		Meta: &rpc.TransactionMeta{
			Err:          map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
			PreBalances:  []uint64{1, 1, 1},
			PostBalances: []uint64{2, 2, 2},
		},
		Slot: 42,
	})

	assert.True(t, rec.Failed)
	assert.Empty(t, rec.Transfers)
}

func TestRecordFromTransaction_MissingMeta(t *testing.T) {
	rec := recordFromTransaction(inspectorTestSig, &FetchedTransaction{Slot: 42})
	assert.False(t, rec.Failed)
	assert.Empty(t, rec.Transfers)
}
