// Command payer pays a pending order from a locally held keypair: it
// fetches the order from the checkout service, builds the payment
// transaction, signs and broadcasts it, waits for confirmation, and then
// asks the service to reconcile. Useful for devnet smoke tests and for
// settling orders from a treasury wallet.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"checkout-service/internal/config"
	"checkout-service/internal/domain"
	solanainfra "checkout-service/internal/infra/solana"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

type orderView struct {
	ID              uint64          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	Total           decimal.Decimal `json:"total"`
	PaymentCurrency domain.Currency `json:"paymentCurrency"`
	PaymentStatus   string          `json:"paymentStatus"`
}

func main() {
	var (
		serviceURL = flag.String("service", "http://127.0.0.1:8080", "checkout service base URL")
		orderID    = flag.Uint64("order", 0, "order id to pay")
		keyPath    = flag.String("key", "", "path to the payer keypair file")
		manual     = flag.Bool("manual", false, "reconcile via the manual path (memo required on chain)")
	)
	flag.Parse()

	if *orderID == 0 || *keyPath == "" {
		log.Fatal("usage: payer -order <id> -key <keypair.json> [-service url] [-manual]")
	}

	cfg := config.FromEnv()
	if cfg.Solana.PlatformWallet == "" {
		log.Fatal("PLATFORM_WALLET must be set")
	}

	key, err := solanago.PrivateKeyFromSolanaKeygenFile(*keyPath)
	if err != nil {
		log.Fatalf("load keypair: %v", err)
	}

	ctx := context.Background()
	httpClient := &http.Client{Timeout: 10 * time.Second}

	order, err := fetchOrder(ctx, httpClient, *serviceURL, *orderID)
	if err != nil {
		log.Fatalf("fetch order: %v", err)
	}
	if order.PaymentStatus != string(domain.PaymentPending) {
		log.Fatalf("order %d is not awaiting payment (status %s)", order.ID, order.PaymentStatus)
	}

	log.Printf("paying order %s: %s %s", order.OrderNumber, order.Total, order.PaymentCurrency)

	chainClient := solanainfra.NewClient(cfg.Solana.RPCEndpoint)
	builder, err := solanainfra.NewBuilder(chainClient, cfg.Solana.USDCMint, cfg.Solana.FeeBufferLamports)
	if err != nil {
		log.Fatalf("init builder: %v", err)
	}
	tracker := solanainfra.NewTracker(chainClient, cfg.Solana.ConfirmInterval, cfg.Solana.ConfirmAttempts)
	signer := solanainfra.NewKeypairSigner(key, chainClient)

	recipient := solanago.MustPublicKeyFromBase58(cfg.Solana.PlatformWallet)

	tx, err := builder.BuildPaymentTransaction(ctx, signer.PublicKey(), recipient, order.Total, order.PaymentCurrency, order.OrderNumber)
	if err != nil {
		log.Fatalf("build transaction: %v", err)
	}

	sig, err := tracker.SubmitAndConfirm(ctx, tx, signer)
	if err != nil {
		if sig.IsZero() {
			log.Fatalf("submit: %v", err)
		}
		// Timeout is not failure; reconcile may still succeed later.
		log.Printf("confirmation: %v (signature %s)", err, sig)
	} else {
		log.Printf("confirmed: %s", sig)
	}

	memo := ""
	if *manual {
		memo = order.OrderNumber
	}
	if err := reconcileOrder(ctx, httpClient, *serviceURL, order.ID, sig.String(), memo); err != nil {
		log.Fatalf("reconcile: %v", err)
	}
	log.Printf("order %s paid", order.OrderNumber)
}

func fetchOrder(ctx context.Context, client *http.Client, baseURL string, id uint64) (*orderView, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/orders/%d", baseURL, id), nil)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service returned status %d", resp.StatusCode)
	}
	var out orderView
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func reconcileOrder(ctx context.Context, client *http.Client, baseURL string, id uint64, signature, memo string) error {
	body, _ := json.Marshal(map[string]string{"signature": signature, "memo": memo})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/orders/%d/pay", baseURL, id), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service returned status %d", resp.StatusCode)
	}
	return nil
}
