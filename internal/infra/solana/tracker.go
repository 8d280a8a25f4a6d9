package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checkout-service/internal/domain"

	"github.com/cenkalti/backoff/v5"
	solanago "github.com/gagliardetto/solana-go"
)

var errStillPending = errors.New("transaction still pending")

// Tracker broadcasts a built transaction through a signer and polls the
// cluster until it confirms or the attempt budget runs out. Exhausting the
// budget is ErrConfirmationTimeout, deliberately distinct from
// ErrTransactionFailed: the transaction may still land, so the caller must
// surface "unknown, check manually" rather than "failed".
type Tracker struct {
	client   ChainClient
	interval time.Duration
	attempts uint
}

func NewTracker(client ChainClient, interval time.Duration, attempts uint) *Tracker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if attempts == 0 {
		attempts = 30
	}
	return &Tracker{client: client, interval: interval, attempts: attempts}
}

// SubmitAndConfirm hands the transaction to the signer (which suspends
// until the wallet approves or rejects) and then waits for confirmation.
func (t *Tracker) SubmitAndConfirm(ctx context.Context, tx *solanago.Transaction, signer Signer) (solanago.Signature, error) {
	sig, err := signer.SignAndSend(ctx, tx)
	if err != nil {
		return solanago.Signature{}, fmt.Errorf("sign and broadcast: %w", err)
	}
	if err := t.AwaitConfirmation(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// AwaitConfirmation polls signature status on a fixed interval. Context
// cancellation aborts the loop without leaking the timer.
func (t *Tracker) AwaitConfirmation(ctx context.Context, sig solanago.Signature) error {
	operation := func() (struct{}, error) {
		st, err := t.client.SignatureStatus(ctx, sig)
		if err != nil {
			// Transient RPC failure; keep polling within the budget.
			return struct{}{}, err
		}
		if st.Failed {
			return struct{}{}, backoff.Permanent(fmt.Errorf("%w: %s", domain.ErrTransactionFailed, st.ErrDetail))
		}
		if st.Confirmed {
			return struct{}{}, nil
		}
		return struct{}{}, errStillPending
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(t.interval)),
		backoff.WithMaxTries(t.attempts),
	)
	if err != nil {
		if errors.Is(err, errStillPending) {
			return domain.ErrConfirmationTimeout
		}
		return err
	}
	return nil
}
