package handler

import (
	"net/http"

	"github.com/GoodnessFx/GlowUp/internal/services"
	"github.com/GoodnessFx/GlowUp/internal/utils"
	"github.com/gorilla/mux"
)

type CreateRequestBody struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Budget      string   `json:"budget,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type CreateResponseBody struct {
	Content string `json:"content"`
}

// ListRequests liste les demandes, filtre optionnel ?category=
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.feed.ListRequests(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.feed.GetRequest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Success(w, req)
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	var body CreateRequestBody
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	req, err := h.feed.CreateRequest(r.Context(), userID, services.NewRequestInput{
		Title:       body.Title,
		Description: body.Description,
		Category:    body.Category,
		Budget:      body.Budget,
		Tags:        body.Tags,
	})
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Created(w, req)
}

func (h *Handler) CreateResponse(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	var body CreateResponseBody
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	reply, err := h.feed.AddResponse(r.Context(), mux.Vars(r)["id"], userID, body.Content)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Created(w, reply)
}

func (h *Handler) UpvoteRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	req, err := h.feed.UpvoteRequest(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Success(w, req)
}

func (h *Handler) UpvoteResponse(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	vars := mux.Vars(r)
	reply, err := h.feed.UpvoteResponse(r.Context(), vars["id"], vars["responseId"], userID)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Success(w, reply)
}

// MarkHelpful réservé à l'auteur de la demande
func (h *Handler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	vars := mux.Vars(r)
	reply, err := h.feed.MarkHelpful(r.Context(), vars["id"], vars["responseId"], userID)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Success(w, reply)
}
