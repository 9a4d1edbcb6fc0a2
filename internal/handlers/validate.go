package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// maxBodyBytes caps request bodies; every payload here is a small object.
const maxBodyBytes = 1 << 20

// requests validates decoded request structs. Field names in errors use
// the json tag so clients see the names they sent.
var requests = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// requestError is a problem with the request itself, found before the
// service is called.
type requestError struct {
	status int
	code   string
	fields []string
}

func (e *requestError) Error() string {
	if len(e.fields) == 0 {
		return e.code
	}
	return fmt.Sprintf("%s: %s", e.code, strings.Join(e.fields, ", "))
}

func invalidRequest(fields ...string) error {
	return &requestError{status: http.StatusUnprocessableEntity, code: "invalid_request", fields: fields}
}

// decode reads a JSON body into dst and runs the struct validation tags.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &requestError{status: http.StatusBadRequest, code: "invalid_json"}
	}

	if err := requests.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return invalidRequest(fields...)
	}
	return nil
}

// pathID parses the {id} URL parameter. A malformed id cannot match any
// row, so it is reported as not found.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, &requestError{status: http.StatusNotFound, code: "not_found"}
	}
	return id, nil
}

// parseIDs converts a list of string ids, reporting field on the first
// malformed entry.
func parseIDs(field string, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, invalidRequest(field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// optionalID parses an optional id field from a request body.
func optionalID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalidRequest(field)
	}
	return &id, nil
}
