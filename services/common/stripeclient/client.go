// Package stripeclient wraps the Stripe pieces this system touches:
// customers, hosted checkout sessions and webhook signature verification.
package stripeclient

import (
	"context"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/customer"
	"github.com/stripe/stripe-go/v80/webhook"
)

type Client struct {
	webhookSecret string
}

// New configures the Stripe API key and returns a client. The webhook secret
// may be empty for services that never receive Stripe webhooks.
func New(secretKey, webhookSecret string) *Client {
	stripe.Key = secretKey
	return &Client{webhookSecret: webhookSecret}
}

// FindCustomerByEmail returns the id of an existing Stripe customer with the
// given email, or "" if none exists. Guards against creating duplicate
// customers across repeated onboarding.
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := customer.List(params)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	return "", iter.Err()
}

// CreateCustomer creates a Stripe customer tagged with the Clerk id.
func (c *Client) CreateCustomer(ctx context.Context, email, name, clerkID string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.AddMetadata("clerkId", clerkID)

	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

// SessionItem is one hosted-checkout line item. UnitAmount is in minor
// currency units.
type SessionItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionParams describes a hosted checkout session to open.
type SessionParams struct {
	CustomerID        string
	Items             []SessionItem
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
	ExpiresAt         int64
}

// CreateCheckoutSession opens a hosted checkout session and returns its id
// and redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, p SessionParams) (string, string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(p.Items))
	for _, item := range p.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(p.CustomerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID:  stripe.String(p.ClientReferenceID),
		SuccessURL:         stripe.String(p.SuccessURL),
		CancelURL:          stripe.String(p.CancelURL),
		ExpiresAt:          stripe.Int64(p.ExpiresAt),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.ID, sess.URL, nil
}

// ParseWebhook verifies the signature over the exact raw payload and returns
// the decoded event. Verification must see the unparsed bytes, re-serialized
// JSON will not match the signature.
func (c *Client) ParseWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
}
