package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cmpny/customerdataservice/internal/domain/customers"
	"github.com/cmpny/customerdataservice/internal/logger"
)

const maxBodyBytes = 1 << 20

// customerPayload is the request body of the create and update operations.
type customerPayload struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	MiddleName   string `json:"middleName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	PhoneNumber  string `json:"phoneNumber"`
}

func (p customerPayload) customer() customers.Customer {
	return customers.Customer{
		ID:           p.ID,
		FirstName:    p.FirstName,
		MiddleName:   p.MiddleName,
		LastName:     p.LastName,
		EmailAddress: p.EmailAddress,
		PhoneNumber:  p.PhoneNumber,
	}
}

type customerHandler struct {
	logger  *slog.Logger
	service customers.Service
}

func registerCustomerRoutes(r chi.Router, logger *slog.Logger, service customers.Service) {
	h := &customerHandler{logger: logger, service: service}

	r.Get("/customer", h.get)
	r.Get("/customerByEmail", h.getByEmail)
	r.Get("/customers", h.list)
	r.Post("/customer", h.update)
	r.Put("/customer", h.create)
	r.Delete("/customer", h.delete)
}

func (h *customerHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := customerIDParam(w, r)
	if !ok {
		return
	}

	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.lookupFailed(w, r, "get customer", err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *customerHandler) getByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := customers.ValidateEmail(email); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid email provided")
		return
	}

	customer, err := h.service.GetByEmail(r.Context(), email)
	if err != nil {
		h.lookupFailed(w, r, "get customer by email", err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *customerHandler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	offset, limit := 0, 0
	if v := query.Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "invalid offset parameter")
			return
		}
		offset = parsed
	}
	if v := query.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	results, err := h.service.List(r.Context(), offset, limit)
	if err != nil {
		if errors.Is(err, customers.ErrNotImplemented) {
			respondError(w, http.StatusNotImplemented, "list customers not yet implemented")
			return
		}
		h.log(r).Error("list customers failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if results == nil {
		results = []customers.Customer{}
	}
	respondJSON(w, http.StatusOK, results)
}

// update replaces every attribute of an existing customer.
func (h *customerHandler) update(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	if err := customers.Validate(payload.customer(), false); err != nil {
		h.log(r).Error("invalid arguments provided to update operation", "err", err)
		respondError(w, http.StatusBadRequest, "Invalid arguments provided")
		return
	}
	id, err := uuid.Parse(payload.ID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid arguments provided")
		return
	}
	payload.ID = id.String()

	customer, err := h.service.Update(r.Context(), customers.UpdateInput{
		ID:           payload.ID,
		FirstName:    payload.FirstName,
		MiddleName:   payload.MiddleName,
		LastName:     payload.LastName,
		EmailAddress: payload.EmailAddress,
		PhoneNumber:  payload.PhoneNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, customers.ErrNotFound):
			respondError(w, http.StatusBadRequest, "Customer id not found")
		case errors.Is(err, customers.ErrEmailExists):
			h.log(r).Error("customer email already exists", "customer_id", payload.ID, "email", payload.EmailAddress)
			respondError(w, http.StatusBadRequest, "Customer email already exists")
		case errors.Is(err, customers.ErrNotImplemented):
			respondError(w, http.StatusNotImplemented, "update customer not yet implemented")
		default:
			h.log(r).Error("update customer failed", "customer_id", payload.ID, "err", err)
			respondError(w, http.StatusInternalServerError, "Error while trying to update customer")
		}
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

// create stores a new customer; any id in the payload is ignored.
func (h *customerHandler) create(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	if err := customers.Validate(payload.customer(), true); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid arguments provided")
		return
	}

	customer, err := h.service.Create(r.Context(), customers.CreateInput{
		FirstName:    payload.FirstName,
		MiddleName:   payload.MiddleName,
		LastName:     payload.LastName,
		EmailAddress: payload.EmailAddress,
		PhoneNumber:  payload.PhoneNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, customers.ErrEmailExists):
			h.log(r).Error("customer email already exists", "email", payload.EmailAddress)
			respondError(w, http.StatusBadRequest, "Customer email already exists")
		case errors.Is(err, customers.ErrNotImplemented):
			respondError(w, http.StatusNotImplemented, "create customer not yet implemented")
		default:
			h.log(r).Error("create customer failed", "email", payload.EmailAddress, "err", err)
			respondError(w, http.StatusInternalServerError, "Error while trying to create customer")
		}
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *customerHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := customerIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, customers.ErrNotImplemented) {
			respondError(w, http.StatusNotImplemented, "delete customer not yet implemented")
			return
		}
		h.log(r).Error("delete customer failed", "customer_id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *customerHandler) lookupFailed(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, customers.ErrNotFound):
		respondError(w, http.StatusNotFound, "Customer Not Found")
	case errors.Is(err, customers.ErrNotImplemented):
		respondError(w, http.StatusNotImplemented, op+" not yet implemented")
	default:
		h.log(r).Error(op+" failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *customerHandler) log(r *http.Request) *slog.Logger {
	return logger.WithContext(r.Context(), h.logger)
}

// customerIDParam reads the required "id" query parameter as a UUID.
func customerIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "missing customer id")
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return "", false
	}
	return id.String(), true
}

func decodePayload(w http.ResponseWriter, r *http.Request) (customerPayload, bool) {
	var payload customerPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return customerPayload{}, false
	}
	return payload, true
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// If encoding fails there's not much we can do; log to stderr.
		slog.Default().Error("failed to encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
