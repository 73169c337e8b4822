package main

import (
	"encoding/json"
	"errors"
	"net/http"
)

type completeOrderFlowRequest struct {
	UserEmail     string   `json:"user_email"`
	ProductSKUs   []string `json:"product_skus"`
	Quantities    []int    `json:"quantities"`
	PaymentMethod string   `json:"payment_method"`
}

// completeOrderFlowHandler chains the simulated services end to end: user
// lookup, product resolution, order creation, payment. Each step carries its
// own injected latency and failure rate, which makes the latency histogram
// and error counters interesting under generated traffic.
func completeOrderFlowHandler(w http.ResponseWriter, r *http.Request) {
	var req completeOrderFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserEmail == "" || len(req.ProductSKUs) == 0 || len(req.ProductSKUs) != len(req.Quantities) {
		writeError(w, http.StatusBadRequest, "user_email, product_skus and matching quantities are required")
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "credit_card"
	}

	user, err := store.GetUserByEmail(req.UserEmail)
	if errors.Is(err, errNotFound) {
		writeError(w, http.StatusNotFound, "user not found: "+req.UserEmail)
		return
	}

	items := make([]OrderItem, 0, len(req.ProductSKUs))
	for i, sku := range req.ProductSKUs {
		product, err := store.GetProductBySKU(sku)
		if errors.Is(err, errNotFound) {
			writeError(w, http.StatusNotFound, "product not found: "+sku)
			return
		}
		items = append(items, OrderItem{ProductID: product.ID, Quantity: req.Quantities[i]})
	}

	order, err := store.CreateOrder(user.ID, items)
	switch {
	case errors.Is(err, errOutOfStock):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, errInventoryCheck):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payment, err := store.ProcessPayment(order.ID, req.PaymentMethod)
	if errors.Is(err, errPaymentFailed) {
		writeJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"order":  order,
			"error":  err.Error(),
			"status": "payment_failed",
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":    user,
		"order":   order,
		"payment": payment,
		"status":  "completed",
	})
}
