package handler

import (
	"net/http"
	"strconv"

	"github.com/itchan-dev/mboard/shared/domain"
	"github.com/itchan-dev/mboard/shared/errors"
	mw "github.com/itchan-dev/mboard/shared/middleware"
	"github.com/itchan-dev/mboard/shared/utils"
)

// requireUser returns the authenticated user or writes 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		utils.WriteErrorAndStatusCode(w, errors.Unauthorized("Please sign-in"))
		return nil, false
	}
	return user, true
}

func parseInt64Query(r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
