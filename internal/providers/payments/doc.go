// Package payments integrates Stripe Checkout.
//
// Checkout sessions are created with a form POST to the Stripe API; the
// webhook endpoint verifies Stripe-Signature (HMAC-SHA256 over
// "timestamp.payload") and records subscription state in storage, which
// subscription_status reads back.
package payments
