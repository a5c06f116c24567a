package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/logger"
	"github.com/danielcastano/mercato-backend/pkg/types"
)

// WriteSuccess writes a 200 envelope with the provided payload.
func WriteSuccess(w http.ResponseWriter, message string, data any) {
	WriteSuccessStatus(w, http.StatusOK, message, data)
}

// WriteSuccessStatus writes a success envelope with an explicit status code.
func WriteSuccessStatus(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, types.SuccessEnvelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// WriteError maps an error to its HTTP status and envelope. Client-caused
// error messages pass through; internal detail is logged, never returned.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	message := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeForbidden,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeIdempotency,
		pkgerrors.CodeRateLimit:
		if m := typed.Message(); m != "" {
			message = m
		}
	}

	if meta.HTTPStatus >= http.StatusInternalServerError && logg != nil {
		dump := pkgerrors.Dump(err)
		ctx := logg.WithFields(ctx, map[string]any{
			"error_code":    dump.Code,
			"error_chain":   dump.Chain,
			"pg_code":       dump.PGCode,
			"pg_constraint": dump.PGConstraint,
			"pg_table":      dump.PGTable,
			"pg_column":     dump.PGColumn,
			"pg_detail":     dump.PGDetail,
			"pg_message":    dump.PGMessage,
		})
		logg.Error(ctx, typed.Message(), typed)
	}

	payload := types.ErrorEnvelope{
		Success: false,
		Message: message,
		Error:   types.APIError{Code: string(typed.Code())},
	}
	if meta.DetailsAllowed {
		payload.Error.Details = typed.Details()
	}
	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
