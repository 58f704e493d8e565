package handlers

import (
	"net/http"

	"github.com/diewo77/traiteur/httpx"
	"github.com/diewo77/traiteur/internal/editor"
)

func (a *API) openEditor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EventID string `json:"eventID"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	v, err := a.editor.Open(r.Context(), body.EventID)
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, v)
}

func (a *API) getEditor(w http.ResponseWriter, r *http.Request) {
	v, err := a.editor.Get(r.PathValue("sid"))
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (a *API) closeEditor(w http.ResponseWriter, r *http.Request) {
	a.editor.Close(r.PathValue("sid"))
	w.WriteHeader(http.StatusNoContent)
}

// applyEditor runs the action named by the path. The body carries its
// arguments.
func (a *API) applyEditor(w http.ResponseWriter, r *http.Request) {
	var act editor.Action
	if err := httpx.Decode(r, &act); err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	act.Type = r.PathValue("action")
	v, err := a.editor.Apply(r.Context(), r.PathValue("sid"), act)
	if err != nil {
		a.fail(w, r, err, v, nil)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

// saveEditor answers 422 with the session view when the details are
// invalid.
func (a *API) saveEditor(w http.ResponseWriter, r *http.Request) {
	v, err := a.editor.Save(r.Context(), r.PathValue("sid"))
	if err != nil {
		a.fail(w, r, err, v, nil)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}
