package solana

import (
	"context"
	"fmt"

	"checkout-service/internal/domain"

	solanago "github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/memo"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/shopspring/decimal"
)

// Builder constructs unsigned payment transactions: a native transfer for
// SOL, or an SPL token transfer for USDC with associated-token-account
// bootstrap when the recipient has never held the token. Only read-only
// balance checks happen here.
type Builder struct {
	client    ChainClient
	usdcMint  solanago.PublicKey
	feeBuffer uint64
}

func NewBuilder(client ChainClient, usdcMint string, feeBufferLamports uint64) (*Builder, error) {
	mint, err := solanago.PublicKeyFromBase58(usdcMint)
	if err != nil {
		return nil, fmt.Errorf("invalid usdc mint: %w", err)
	}
	return &Builder{client: client, usdcMint: mint, feeBuffer: feeBufferLamports}, nil
}

// BuildPaymentTransaction verifies the payer can cover amount plus fees
// and returns an unsigned transaction with the payer as fee payer. A
// non-empty memoText is attached as a memo instruction so externally
// visible receipts carry the order number.
func (b *Builder) BuildPaymentTransaction(ctx context.Context, payer, recipient solanago.PublicKey, amount decimal.Decimal, currency domain.Currency, memoText string) (*solanago.Transaction, error) {
	var instructions []solanago.Instruction
	var err error

	switch currency {
	case domain.CurrencySOL:
		instructions, err = b.nativeTransfer(ctx, payer, recipient, amount)
	case domain.CurrencyUSDC:
		instructions, err = b.tokenTransfer(ctx, payer, recipient, amount)
	default:
		return nil, fmt.Errorf("unsupported payment currency %q", currency)
	}
	if err != nil {
		return nil, err
	}

	if memoText != "" {
		instructions = append(instructions, memo.NewMemoInstruction([]byte(memoText), payer).Build())
	}

	blockhash, err := b.client.LatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch blockhash: %w", err)
	}

	return solanago.NewTransaction(instructions, blockhash, solanago.TransactionPayer(payer))
}

func (b *Builder) nativeTransfer(ctx context.Context, payer, recipient solanago.PublicKey, amount decimal.Decimal) ([]solanago.Instruction, error) {
	lamports := domain.ToMinorUnits(amount, domain.CurrencySOL)

	balance, err := b.client.GetBalance(ctx, payer)
	if err != nil {
		return nil, fmt.Errorf("fetch payer balance: %w", err)
	}
	if balance < lamports+b.feeBuffer {
		return nil, &domain.InsufficientFundsError{
			Currency:  domain.CurrencySOL,
			Required:  domain.FromMinorUnits(lamports+b.feeBuffer, domain.CurrencySOL),
			Available: domain.FromMinorUnits(balance, domain.CurrencySOL),
		}
	}

	return []solanago.Instruction{
		system.NewTransferInstruction(lamports, payer, recipient).Build(),
	}, nil
}

func (b *Builder) tokenTransfer(ctx context.Context, payer, recipient solanago.PublicKey, amount decimal.Decimal) ([]solanago.Instruction, error) {
	baseUnits := domain.ToMinorUnits(amount, domain.CurrencyUSDC)

	payerATA, _, err := solanago.FindAssociatedTokenAddress(payer, b.usdcMint)
	if err != nil {
		return nil, err
	}
	recipientATA, _, err := solanago.FindAssociatedTokenAddress(recipient, b.usdcMint)
	if err != nil {
		return nil, err
	}

	hasAccount, err := b.client.AccountExists(ctx, payerATA)
	if err != nil {
		return nil, fmt.Errorf("check payer token account: %w", err)
	}
	if !hasAccount {
		return nil, domain.ErrNoTokenAccount
	}

	balance, err := b.client.GetTokenBalance(ctx, payerATA)
	if err != nil {
		return nil, fmt.Errorf("fetch payer token balance: %w", err)
	}
	if balance < baseUnits {
		return nil, &domain.InsufficientFundsError{
			Currency:  domain.CurrencyUSDC,
			Required:  domain.FromMinorUnits(baseUnits, domain.CurrencyUSDC),
			Available: domain.FromMinorUnits(balance, domain.CurrencyUSDC),
		}
	}

	var instructions []solanago.Instruction

	// The recipient cannot receive tokens without an associated token
	// account; the payer funds its creation ahead of the transfer.
	recipientHasATA, err := b.client.AccountExists(ctx, recipientATA)
	if err != nil {
		return nil, fmt.Errorf("check recipient token account: %w", err)
	}
	if !recipientHasATA {
		instructions = append(instructions,
			associatedtokenaccount.NewCreateInstruction(payer, recipient, b.usdcMint).Build())
	}

	instructions = append(instructions,
		token.NewTransferCheckedInstruction(
			baseUnits,
			uint8(domain.CurrencyUSDC.Decimals()),
			payerATA,
			b.usdcMint,
			recipientATA,
			payer,
			nil,
		).Build())

	return instructions, nil
}
