package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra/onramp"
	"checkout-service/internal/infra/oracle"
	solanainfra "checkout-service/internal/infra/solana"
	"checkout-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	solanago "github.com/gagliardetto/solana-go"
)

type Handler struct {
	orders    *services.OrderService
	reconcile *services.ReconcileService
	rates     oracle.RateSourceInterface
	builder   *solanainfra.Builder
	tracker   *solanainfra.Tracker
	onramp    onramp.SessionClientInterface
	rdb       *redis.Client
	recipient string
}

func NewHandler(orders *services.OrderService, reconcile *services.ReconcileService, rates oracle.RateSourceInterface, builder *solanainfra.Builder, tracker *solanainfra.Tracker, ramp onramp.SessionClientInterface, rdb *redis.Client, recipient string) *Handler {
	return &Handler{
		orders:    orders,
		reconcile: reconcile,
		rates:     rates,
		builder:   builder,
		tracker:   tracker,
		onramp:    ramp,
		rdb:       rdb,
		recipient: recipient,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/checkout", h.Checkout)
	r.GET("/orders", h.GetOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.POST("/orders/:id/transaction", h.BuildTransaction)
	r.POST("/orders/:id/submit", h.SubmitSignature)
	r.POST("/orders/:id/pay", h.Pay)
	r.GET("/price", h.GetPrice)
	r.POST("/onramp/create", h.CreateOnRampSession)
}

func (h *Handler) Checkout(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	created, err := h.orders.CreateOrder(ctx, customerID, services.CheckoutInput{
		Email:           req.Email,
		Currency:        req.Currency,
		FulfillmentType: req.FulfillmentType,
		ShippingAddress: req.ShippingAddress,
		PickupNotes:     req.PickupNotes,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := CheckoutResponse{}
	for _, o := range created {
		resp.Orders = append(resp.Orders, CheckoutOrder{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			StoreID:     o.StoreID,
			Total:       o.Total,
			Currency:    o.PaymentCurrency,
		})
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) GetOrders(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	orders, err := h.orders.GetOrdersByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder backs the on-ramp completion polling, so responses are cached
// briefly to keep a polling client off the database.
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	ctx := c.Request.Context()
	cacheKey := orderCacheKey(id)

	if b, err := h.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var cached domain.Order
		if json.Unmarshal([]byte(b), &cached) == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	order, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if data, err := json.Marshal(order); err == nil {
		h.rdb.Set(ctx, cacheKey, data, 2*time.Second)
	}

	c.JSON(http.StatusOK, order)
}

// BuildTransaction returns an unsigned payment transaction for the
// connected-wallet path; the browser wallet signs and broadcasts it.
func (h *Handler) BuildTransaction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req BuildTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payer, err := solanago.PublicKeyFromBase58(req.Payer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payer address"})
		return
	}

	ctx := c.Request.Context()

	order, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if order.PaymentStatus != domain.PaymentPending {
		c.JSON(http.StatusConflict, gin.H{"error": "order is not awaiting payment"})
		return
	}

	recipient, err := solanago.PublicKeyFromBase58(h.recipient)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "platform wallet misconfigured"})
		return
	}

	tx, err := h.builder.BuildPaymentTransaction(ctx, payer, recipient, order.Total, order.PaymentCurrency, order.OrderNumber)
	if err != nil {
		h.renderError(c, err)
		return
	}

	encoded, err := tx.ToBase64()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to serialize transaction"})
		return
	}

	c.JSON(http.StatusOK, BuildTransactionResponse{
		Transaction: encoded,
		Total:       order.Total,
		Currency:    order.PaymentCurrency,
	})
}

// SubmitSignature is called after the wallet broadcasts: the server polls
// for confirmation and reconciles on success. A confirmation timeout is
// reported as unknown, not failed — the transaction may still land.
func (h *Handler) SubmitSignature(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sig, err := solanago.SignatureFromBase58(req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction signature"})
		return
	}

	ctx := c.Request.Context()

	if err := h.tracker.AwaitConfirmation(ctx, sig); err != nil {
		if errors.Is(err, domain.ErrConfirmationTimeout) {
			c.JSON(http.StatusAccepted, gin.H{
				"status": "unknown",
				"error":  "confirmation timed out; the payment may still settle, check again shortly",
			})
			return
		}
		h.renderError(c, err)
		return
	}

	order, err := h.reconcile.Reconcile(ctx, id, req.Signature, "")
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.rdb.Del(context.Background(), orderCacheKey(id))
	c.JSON(http.StatusOK, order)
}

// Pay reconciles a payment signature from any path against the order.
func (h *Handler) Pay(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.reconcile.Reconcile(c.Request.Context(), id, req.Signature, req.Memo)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.rdb.Del(context.Background(), orderCacheKey(id))
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetPrice(c *gin.Context) {
	rate, err := h.rates.GetExchangeRate(c.Request.Context(), "SOL", "USD")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, PriceResponse{Base: "SOL", Quote: "USD", Rate: rate})
}

func (h *Handler) CreateOnRampSession(c *gin.Context) {
	var req OnRampRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	order, err := h.orders.GetOrder(ctx, req.OrderID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if order.PaymentStatus != domain.PaymentPending {
		c.JSON(http.StatusConflict, gin.H{"error": "order is not awaiting payment"})
		return
	}

	// The crypto leg always settles to the platform wallet; the client
	// never chooses the recipient.
	url, err := h.onramp.CreateSession(ctx, onramp.SessionRequest{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
		Currency:    string(order.PaymentCurrency),
		Method:      req.Method,
		Recipient:   h.recipient,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, OnRampResponse{URL: url})
}

func (h *Handler) customerID(c *gin.Context) (uint64, bool) {
	// Authentication is the gateway's concern; it forwards the verified
	// customer id in this header.
	id, err := strconv.ParseUint(c.GetHeader("X-Customer-ID"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing customer identity"})
		return 0, false
	}
	return id, true
}

func orderCacheKey(id uint64) string {
	return "orders:id:" + strconv.FormatUint(id, 10)
}

// renderError maps the payment error taxonomy onto status codes and a
// stable machine-readable code, keeping the detail the UI needs to show a
// precise message.
func (h *Handler) renderError(c *gin.Context, err error) {
	var insufficientFunds *domain.InsufficientFundsError
	var insufficientPayment *domain.InsufficientPaymentError
	var memoMismatch *domain.MemoMismatchError

	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "ORDER_NOT_FOUND", "error": err.Error()})
	case errors.Is(err, domain.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "TX_NOT_FOUND", "error": "transaction not visible on chain yet; retry in a moment"})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"code": "EMPTY_CART", "error": err.Error()})
	case errors.Is(err, domain.ErrInvalidFulfillment):
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_FULFILLMENT", "error": err.Error()})
	case errors.Is(err, domain.ErrBelowMinimum):
		c.JSON(http.StatusBadRequest, gin.H{"code": "BELOW_MINIMUM", "error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"code": "INSUFFICIENT_STOCK", "error": err.Error()})
	case errors.Is(err, domain.ErrNoTokenAccount):
		c.JSON(http.StatusBadRequest, gin.H{"code": "NO_TOKEN_ACCOUNT", "error": err.Error()})
	case errors.Is(err, domain.ErrTransactionFailed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": "TX_FAILED", "error": err.Error()})
	case errors.Is(err, domain.ErrIntentExpired):
		c.JSON(http.StatusGone, gin.H{"code": "PAYMENT_WINDOW_EXPIRED", "error": err.Error()})
	case errors.Is(err, domain.ErrOrderAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"code": "ORDER_ALREADY_PAID", "error": err.Error()})
	case errors.As(err, &insufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"code": "INSUFFICIENT_FUNDS", "error": err.Error()})
	case errors.As(err, &insufficientPayment):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":     "INSUFFICIENT_PAYMENT",
			"error":    err.Error(),
			"expected": insufficientPayment.Expected,
			"actual":   insufficientPayment.Actual,
		})
	case errors.As(err, &memoMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": "MEMO_MISMATCH", "error": err.Error()})
	default:
		// Unexpected internal failure; keep the client message generic.
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL", "error": "something went wrong, please try again"})
	}
}
