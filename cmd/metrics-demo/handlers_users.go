package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type userCreateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type userUpdateRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Active  *bool   `json:"active"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// pathID parses the {id} route variable. The route template keeps the metric
// label bounded no matter how many distinct ids pass through here.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil && id > 0
}

func listUsersHandler(w http.ResponseWriter, r *http.Request) {
	skip := int(parseInt64(r.URL.Query().Get("skip")))
	limit := int(parseInt64(r.URL.Query().Get("limit")))
	if limit <= 0 {
		limit = 100
	}
	users, total := store.ListUsers(skip, limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": total,
		"skip":  skip,
		"limit": limit,
	})
}

func createUserHandler(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	user, err := store.CreateUser(req.Name, req.Email, req.Address, req.Phone)
	if errors.Is(err, errDuplicateEmail) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	store.recordActiveUsers()
	writeJSON(w, http.StatusCreated, user)
}

func getUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := store.GetUser(id)
	if errors.Is(err, errNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func updateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req userUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := store.UpdateUser(id, req.Name, req.Email, req.Address, req.Phone, req.Active)
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, "user not found")
		return
	case errors.Is(err, errDuplicateEmail):
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	store.recordActiveUsers()
	writeJSON(w, http.StatusOK, user)
}

func deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := store.DeleteUser(id); errors.Is(err, errNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	store.recordActiveUsers()
	w.WriteHeader(http.StatusNoContent)
}
