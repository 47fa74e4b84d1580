// Package service is the integration registry behind POST /api/:service.
//
// Providers (auth, wallet, payments, email, drive) describe themselves with
// a types.Service definition and handle tool calls named "service.action".
package service
