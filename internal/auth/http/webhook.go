package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/bodhivana/storefront/internal/payment"
	"github.com/bodhivana/storefront/pkg/httpx"
	"github.com/bodhivana/storefront/pkg/slogx"
)

// maxWebhookBody caps provider payloads at 1 MiB.
const maxWebhookBody = 1 << 20

// PaymentWebhookHandler serves POST /api/webhooks/payment. The provider
// signs the raw body with a shared secret; anything unsigned is dropped
// before the payload is even parsed.
type PaymentWebhookHandler struct {
	Secret []byte
}

type paymentEvent struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func (h *PaymentWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sig := r.Header.Get("X-Webhook-Signature")
	if sig == "" || !payment.VerifySignature(h.Secret, body, sig) {
		log.Warn("payment webhook signature rejected")
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event paymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	log.Info("payment webhook received",
		"order_id", event.OrderID,
		"status", event.Status,
	)

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}
