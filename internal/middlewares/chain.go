package middlewares

import (
	"context"

	"github.com/benmeehan/merchant-intake/internal/form"
	"github.com/benmeehan/merchant-intake/internal/models"
)

// SubmitMiddleware wraps a submission handler. Each middleware calls the next one in the chain.
type SubmitMiddleware interface {
	form.SubmitHandler
	SetNext(next form.SubmitHandler)
}

// ChainedHandler runs a submission through its middlewares before reaching the handler.
type ChainedHandler struct {
	middlewares []SubmitMiddleware
	handler     form.SubmitHandler
}

// NewChainedHandler links middlewares in order, the last one calling handler.
func NewChainedHandler(handler form.SubmitHandler, middlewares ...SubmitMiddleware) *ChainedHandler {
	for i := 0; i < len(middlewares)-1; i++ {
		middlewares[i].SetNext(middlewares[i+1])
	}
	if len(middlewares) > 0 {
		middlewares[len(middlewares)-1].SetNext(handler)
	}
	return &ChainedHandler{
		middlewares: middlewares,
		handler:     handler,
	}
}

// Submit sends the submission through the chain.
func (c *ChainedHandler) Submit(ctx context.Context, submission models.MerchantSubmission) error {
	if len(c.middlewares) == 0 {
		return c.handler.Submit(ctx, submission)
	}
	return c.middlewares[0].Submit(ctx, submission)
}
