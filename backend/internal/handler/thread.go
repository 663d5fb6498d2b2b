package handler

import (
	"net/http"

	"github.com/itchan-dev/mboard/shared/api"
	"github.com/itchan-dev/mboard/shared/utils"
)

func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	threads, err := h.thread.List(r.Context(), user, utils.ClientDetails(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := make([]api.ThreadResponse, 0, len(threads))
	for _, t := range threads {
		resp = append(resp, api.NewThreadResponse(t))
	}
	utils.WriteJSON(w, resp)
}

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body api.CreateThreadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.thread.Create(r.Context(), user, body.Title, utils.ClientDetails(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.CreateThreadResponse{ThreadId: thread.Id})
}

func (h *Handler) SetThreadLock(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body api.SetThreadLockRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.thread.SetLocked(r.Context(), user, body.ThreadId, body.IsLocked, utils.ClientDetails(r)); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.ThreadLockResponse{ThreadId: body.ThreadId, IsLocked: body.IsLocked})
}

func (h *Handler) SetThreadPin(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body api.SetThreadPinRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.thread.SetPinned(r.Context(), user, body.ThreadId, body.IsPinned, utils.ClientDetails(r)); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.ThreadPinResponse{ThreadId: body.ThreadId, IsPinned: body.IsPinned})
}
