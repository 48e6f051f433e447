package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	httpMW "github.com/yungbote/rateio-sync-backend/internal/http/middleware"
	"github.com/yungbote/rateio-sync-backend/internal/http/response"
	rateiomod "github.com/yungbote/rateio-sync-backend/internal/modules/rateio"
	"github.com/yungbote/rateio-sync-backend/internal/platform/ctxutil"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
	"github.com/yungbote/rateio-sync-backend/internal/services"
)

const (
	ActionPreview = "preview"
	ActionApply   = "apply"

	maxBodyBytes = 10 << 20
)

var (
	errUnknownAction = errors.New("unknown action: use preview or apply")
	errInvalidBody   = errors.New("request body is not valid JSON")
)

type RateioHandler struct {
	log    *logger.Logger
	gate   services.AuthGate
	rateio rateiomod.Usecases
}

func NewRateioHandler(log *logger.Logger, gate services.AuthGate, rateio rateiomod.Usecases) *RateioHandler {
	return &RateioHandler{
		log:    log.With("handler", "RateioHandler"),
		gate:   gate,
		rateio: rateio,
	}
}

type rateioRequest struct {
	Action       string               `json:"action"`
	PlanilhaRows *[]any               `json:"planilhaRows"`
	Options      *rateiomod.Options   `json:"options"`
	SessionToken string               `json:"sessionToken"`
	Selection    *rateiomod.Selection `json:"selection"`
}

// POST /functions/v1/rateio-claro-sync[/:action]
//
// The action comes from the path suffix, then ?action=, then the body. The caller is
// authorized before the body is validated or any planilha work starts.
func (h *RateioHandler) Handle(c *gin.Context) {
	req, bodyErr := decodeRateioRequest(c)

	action := resolveAction(c.Param("action"), c.Query("action"), req.Action)
	if action == "" {
		response.RespondError(c, http.StatusNotFound, "not_found", errUnknownAction)
		return
	}
	c.Set(httpMW.ActionKey, action)

	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		token = strings.TrimSpace(req.SessionToken)
	}
	rd, err := h.gate.Authorize(c.Request.Context(), token)
	if err != nil {
		response.RespondAPIError(c, err, "unauthorized")
		return
	}
	ctx := ctxutil.WithRequestData(c.Request.Context(), rd)
	c.Request = c.Request.WithContext(ctx)

	if bodyErr != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", bodyErr)
		return
	}

	switch action {
	case ActionPreview:
		out, err := h.rateio.Preview(ctx, rateiomod.PreviewInput{PlanilhaRows: req.PlanilhaRows})
		if err != nil {
			h.logFailure(ctx, action, err)
			response.RespondAPIError(c, err, "preview_failed")
			return
		}
		response.RespondOK(c, out)
	case ActionApply:
		out, err := h.rateio.Apply(ctx, rateiomod.ApplyInput{
			UserID:       rd.UserID,
			PlanilhaRows: req.PlanilhaRows,
			Options:      req.Options,
			Selection:    req.Selection,
		})
		if err != nil {
			h.logFailure(ctx, action, err)
			response.RespondAPIError(c, err, "apply_failed")
			return
		}
		response.RespondOK(c, out)
	}
}

func (h *RateioHandler) logFailure(ctx context.Context, action string, err error) {
	h.log.With(ctxutil.LogFields(ctx)...).Warn("rateio action failed", "action", action, "error", err)
}

func decodeRateioRequest(c *gin.Context) (rateioRequest, error) {
	var req rateioRequest
	if c.Request.Body == nil {
		return req, nil
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		return req, fmt.Errorf("read body: %w", err)
	}
	if len(raw) > maxBodyBytes {
		return req, fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return req, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return rateioRequest{}, errInvalidBody
	}
	return req, nil
}

// resolveAction takes the first non-empty candidate; an unrecognized one is not skipped.
func resolveAction(candidates ...string) string {
	for _, cand := range candidates {
		cand = strings.ToLower(strings.Trim(strings.TrimSpace(cand), "/"))
		if cand == "" {
			continue
		}
		switch cand {
		case ActionPreview, ActionApply:
			return cand
		default:
			return ""
		}
	}
	return ""
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
