package handler

import (
	"net/http"

	"github.com/itchan-dev/mboard/shared/api"
	"github.com/itchan-dev/mboard/shared/errors"
	"github.com/itchan-dev/mboard/shared/utils"
)

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	threadId, ok := parseInt64Query(r, "threadId")
	if !ok {
		utils.WriteErrorAndStatusCode(w, errors.Validation("Thread ID is required"))
		return
	}

	messages, err := h.message.List(r.Context(), user, threadId, utils.ClientDetails(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := make([]api.MessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, api.NewMessageResponse(m, h.renderer.Render(m.Text)))
	}
	utils.WriteJSON(w, resp)
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body api.PostMessageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg, err := h.message.Post(r.Context(), user, body.ThreadId, body.Content, utils.ClientDetails(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.PostMessageResponse{MessageId: msg.Id})
}

func (h *Handler) EditMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body api.EditMessageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if _, err := h.message.Edit(r.Context(), user, body.MessageId, body.Content, utils.ClientDetails(r)); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.EmptyResponse{})
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body api.DeleteMessageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.message.Delete(r.Context(), user, body.MessageId, utils.ClientDetails(r)); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.EmptyResponse{})
}
