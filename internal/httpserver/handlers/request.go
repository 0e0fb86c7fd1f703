package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/inframe/internal/domain"
)

const maxBodyBytes = 64 << 10

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// flexID accepts ids sent as JSON numbers or numeric strings.
type flexID int64

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	*id = flexID(n)
	return nil
}

type bookmarkRequest struct {
	UserID        flexID `json:"user_id" validate:"required,gt=0"`
	CustomFrameID flexID `json:"custom_frame_id" validate:"required,gt=0"`
}

// fieldCodes maps a failing request field to its client code and message.
var fieldCodes = map[string][2]string{
	"UserID":        {domain.CodeUserIDMissing, "user_id is required"},
	"CustomFrameID": {domain.CodeFrameIDMissing, "custom_frame_id is required"},
}

// decodeBookmarkRequest reads a JSON, urlencoded or multipart body.
func decodeBookmarkRequest(w http.ResponseWriter, r *http.Request) (bookmarkRequest, error) {
	var req bookmarkRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, domain.Validation(domain.CodeInvalidBody, "malformed JSON body")
		}
	default:
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
				return req, domain.Validation(domain.CodeInvalidBody, "malformed form body")
			}
		} else if err := r.ParseForm(); err != nil {
			return req, domain.Validation(domain.CodeInvalidBody, "malformed form body")
		}
		for field, dst := range map[string]*flexID{"user_id": &req.UserID, "custom_frame_id": &req.CustomFrameID} {
			v := strings.TrimSpace(r.FormValue(field))
			if v == "" {
				continue
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return req, domain.Validation(domain.CodeInvalidBody, field+" must be an integer")
			}
			*dst = flexID(n)
		}
	}

	if err := validatorInstance().Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			if c, ok := fieldCodes[verrs[0].StructField()]; ok {
				return req, domain.Validation(c[0], c[1])
			}
		}
		return req, domain.Validation(domain.CodeInvalidBody, "invalid request body")
	}
	return req, nil
}

// pathID parses a positive integer URL parameter.
func pathID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
