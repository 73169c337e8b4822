package main

import (
	"encoding/json"
	"errors"
	"net/http"
)

type orderCreateRequest struct {
	UserID int         `json:"user_id"`
	Items  []OrderItem `json:"items"`
}

type paymentRequest struct {
	OrderID int    `json:"order_id"`
	Method  string `json:"method"`
}

func listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	orders := store.ListOrders()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  len(orders),
	})
}

func getOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	order, err := store.GetOrder(id)
	if errors.Is(err, errNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req orderCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID <= 0 || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "user_id and items are required")
		return
	}
	order, err := store.CreateOrder(req.UserID, req.Items)
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, errOutOfStock):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, errInventoryCheck):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func createPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OrderID <= 0 {
		writeError(w, http.StatusBadRequest, "order_id is required")
		return
	}
	if req.Method == "" {
		req.Method = "credit_card"
	}
	payment, err := store.ProcessPayment(req.OrderID, req.Method)
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, errPaymentFailed):
		writeError(w, http.StatusPaymentRequired, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}
