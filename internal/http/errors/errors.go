package errors

import (
	"encoding/json"
	"net/http"
)

// errorResponse controla exactamente qué campos llegan al cliente.
type errorResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Detail  string       `json:"detail,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// WriteError escribe la respuesta HTTP correspondiente a err.
// Para errores internos no se expone el detalle: quien llama debe loguear la causa.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	if appErr == nil {
		appErr = ErrInternalServerError
	}

	resp := errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
		Fields:  appErr.Fields,
	}
	if appErr.IsInternal() {
		resp.Detail = ""
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}
