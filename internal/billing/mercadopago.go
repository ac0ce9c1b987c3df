package billing

import (
	"context"
	"fmt"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/customer"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preapproval"
	"github.com/mercadopago/sdk-go/pkg/preapprovalplan"
	"github.com/shopspring/decimal"

	"github.com/motmatch/mot-marketplace/internal/config"
)

type MercadoPagoProvider struct {
	customers     customer.Client
	plans         preapprovalplan.Client
	subscriptions preapproval.Client
	payments      payment.Client
}

func NewMercadoPagoProvider(cfg *config.Config) (*MercadoPagoProvider, error) {
	mpCfg, err := mpconfig.New(cfg.MPAccessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &MercadoPagoProvider{
		customers:     customer.NewClient(mpCfg),
		plans:         preapprovalplan.NewClient(mpCfg),
		subscriptions: preapproval.NewClient(mpCfg),
		payments:      payment.NewClient(mpCfg),
	}, nil
}

func (p *MercadoPagoProvider) CreateCustomer(
	ctx context.Context,
	email, name string,
) (string, error) {

	resp, err := p.customers.Create(ctx, customer.Request{
		Email:     email,
		FirstName: name,
	})
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}

	return resp.ID, nil
}

func (p *MercadoPagoProvider) CreatePlan(
	ctx context.Context,
	reason string,
	amount decimal.Decimal,
	currencyID string,
) (string, error) {

	resp, err := p.plans.Create(ctx, preapprovalplan.Request{
		Reason: reason,
		AutoRecurring: &preapprovalplan.AutoRecurringRequest{
			Frequency:         1,
			FrequencyType:     "months",
			TransactionAmount: amount.InexactFloat64(),
			CurrencyID:        currencyID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("create plan: %w", err)
	}

	return resp.ID, nil
}

func (p *MercadoPagoProvider) CreateSubscription(
	ctx context.Context,
	in SubscriptionRequest,
) (*SubscriptionResult, error) {

	resp, err := p.subscriptions.Create(ctx, preapproval.Request{
		Reason:            in.Reason,
		ExternalReference: in.ExternalReference,
		PayerEmail:        in.PayerEmail,
		BackURL:           in.BackURL,
		AutoRecurring: &preapproval.AutoRecurringRequest{
			Frequency:         1,
			FrequencyType:     "months",
			TransactionAmount: in.Amount.InexactFloat64(),
			CurrencyID:        in.CurrencyID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	return subscriptionResult(resp), nil
}

func (p *MercadoPagoProvider) GetSubscription(
	ctx context.Context,
	id string,
) (*SubscriptionResult, error) {

	resp, err := p.subscriptions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	return subscriptionResult(resp), nil
}

func (p *MercadoPagoProvider) CancelSubscription(
	ctx context.Context,
	id string,
) error {

	_, err := p.subscriptions.Update(ctx, id, preapproval.UpdateRequest{
		Status: ProcessorStatusCancelled,
	})
	if err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	return nil
}

func (p *MercadoPagoProvider) GetPayment(
	ctx context.Context,
	id string,
) (*PaymentResult, error) {

	paymentID, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("payment id %q: %w", id, err)
	}

	resp, err := p.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}

	out := &PaymentResult{
		ID:                strconv.Itoa(resp.ID),
		Status:            resp.Status,
		Amount:            decimal.NewFromFloat(resp.TransactionAmount),
		CurrencyID:        resp.CurrencyID,
		ExternalReference: resp.ExternalReference,
	}
	if !resp.DateApproved.IsZero() {
		t := resp.DateApproved
		out.DateApproved = &t
	}

	return out, nil
}

func subscriptionResult(resp *preapproval.Response) *SubscriptionResult {
	out := &SubscriptionResult{
		ID:        resp.ID,
		Status:    resp.Status,
		InitPoint: resp.InitPoint,
	}
	if !resp.NextPaymentDate.IsZero() {
		t := resp.NextPaymentDate
		out.NextPaymentDate = &t
	}
	return out
}

// Compile-time check
var _ Provider = (*MercadoPagoProvider)(nil)
