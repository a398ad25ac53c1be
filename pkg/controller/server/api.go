package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/repository"
	"github.com/secmon-lab/complior/pkg/utils/errutil"
)

const defaultListLimit = 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(v)
	if err != nil {
		safeWrite(w, http.StatusInternalServerError, []byte(`{"error":"failed to encode response"}`))
		return
	}
	safeWrite(w, code, body)
}

func handleGetRun(uc interfaces.UseCase, w http.ResponseWriter, r *http.Request) {
	runID := types.RunID(chi.URLParam(r, "runID"))
	if runID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "run ID is required"})
		return
	}

	run, err := uc.GetStatus(r.Context(), runID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		errutil.HandleError(r.Context(), "fail to get run status", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func handleListRuns(uc interfaces.UseCase, w http.ResponseWriter, r *http.Request) {
	repo := r.URL.Query().Get("repo")
	branch := r.URL.Query().Get("branch")
	if repo == "" || branch == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "repo and branch are required"})
		return
	}

	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	runs, err := uc.ListRuns(r.Context(), repo, types.BranchName(branch), limit)
	if err != nil {
		errutil.HandleError(r.Context(), "fail to list runs", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}
