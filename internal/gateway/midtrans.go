// Package gateway talks to the Midtrans payment gateway.  The Client
// interface is the capability injected into the payment service so
// tests and local development can substitute a fake instead of a
// process-wide singleton.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client creates hosted payment transactions and queries their
// current status by order reference.
type Client interface {
	CreateTransaction(ctx context.Context, req TransactionRequest) (*Session, error)
	TransactionStatus(ctx context.Context, orderRef string) (*StatusResponse, error)
}

// Customer identifies the paying tenant to the gateway.
type Customer struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Item describes the single invoice line forwarded to the gateway.
type Item struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

// TransactionRequest is the Snap transaction creation payload.
type TransactionRequest struct {
	OrderRef    string   // unique order id (the payment code)
	GrossAmount int64    // amount in whole rupiah
	Customer    Customer // customer details
	Items       []Item   // item details
	FinishURL   string   // where the hosted page redirects afterwards
}

// Session is the hosted payment page handle returned by Snap.
type Session struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// VANumber is one bank/virtual-account pair reported on bank
// transfer payments.
type VANumber struct {
	Bank     string `json:"bank"`
	VANumber string `json:"va_number"`
}

// StatusResponse mirrors the fields of the transaction status API and
// of webhook notification payloads that reconciliation cares about.
type StatusResponse struct {
	OrderID           string     `json:"order_id"`
	TransactionStatus string     `json:"transaction_status"`
	FraudStatus       string     `json:"fraud_status"`
	TransactionID     string     `json:"transaction_id"`
	PaymentType       string     `json:"payment_type"`
	StatusCode        string     `json:"status_code"`
	StatusMessage     string     `json:"status_message"`
	VANumbers         []VANumber `json:"va_numbers"`
}

type snapRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	CustomerDetails Customer `json:"customer_details"`
	ItemDetails     []Item   `json:"item_details"`
	Callbacks       struct {
		Finish string `json:"finish,omitempty"`
	} `json:"callbacks"`
}

// SnapClient is the production Client backed by the Midtrans Snap and
// core APIs.  The server key authenticates via HTTP basic auth with
// an empty password, per the gateway's API convention.
type SnapClient struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewSnapClient builds a SnapClient for the given environment base
// URL (e.g. https://api.sandbox.midtrans.com) and server key.
func NewSnapClient(baseURL, serverKey string, logger *zap.Logger) *SnapClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetBasicAuth(serverKey, "").
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &SnapClient{http: client, logger: logger}
}

// CreateTransaction opens a hosted payment session for an order.
func (c *SnapClient) CreateTransaction(ctx context.Context, req TransactionRequest) (*Session, error) {
	body := snapRequest{CustomerDetails: req.Customer, ItemDetails: req.Items}
	body.TransactionDetails.OrderID = req.OrderRef
	body.TransactionDetails.GrossAmount = req.GrossAmount
	body.Callbacks.Finish = req.FinishURL

	var session Session
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&session).
		Post("/snap/v1/transactions")
	if err != nil {
		c.logger.Error("snap transaction create failed",
			zap.String("order_ref", req.OrderRef),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("snap transaction create rejected",
			zap.String("order_ref", req.OrderRef),
			zap.Int("status_code", resp.StatusCode()),
			zap.ByteString("body", resp.Body()),
		)
		return nil, fmt.Errorf("create transaction: gateway returned %d", resp.StatusCode())
	}
	if session.Token == "" {
		return nil, fmt.Errorf("create transaction: empty token in gateway response")
	}

	c.logger.Info("snap transaction created",
		zap.String("order_ref", req.OrderRef),
		zap.Int64("gross_amount", req.GrossAmount),
	)
	return &session, nil
}

// TransactionStatus queries the current state of an order.
func (c *SnapClient) TransactionStatus(ctx context.Context, orderRef string) (*StatusResponse, error) {
	var status StatusResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&status).
		Get(fmt.Sprintf("/v2/%s/status", orderRef))
	if err != nil {
		c.logger.Error("transaction status query failed",
			zap.String("order_ref", orderRef),
			zap.Error(err),
		)
		return nil, fmt.Errorf("transaction status: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("transaction status query rejected",
			zap.String("order_ref", orderRef),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("transaction status: gateway returned %d", resp.StatusCode())
	}
	return &status, nil
}
