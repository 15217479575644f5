package shared

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"peopledesk/internal/apperror"
	"peopledesk/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// CheckStruct runs struct-tag validation on a decoded payload and, when it
// fails, writes the 400 with every field issue. Reports whether it wrote.
// Domain rules live in the services; this covers only what the wire format
// itself can get wrong.
func CheckStruct(w http.ResponseWriter, validate *validator.Validate, payload any, requestID string) bool {
	err := validate.Struct(payload)
	if err == nil {
		return false
	}
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		apperror.CodeValidation,
		"payload validation failed",
		map[string]any{"fields": IssuesFromError(err)},
		requestID,
	)
	return true
}

// IssuesFromError converts validator field errors into wire issues, with
// JSON-style field names and a stable order.
func IssuesFromError(err error) []ValidationIssue {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationIssue{}
	}
	issues := make([]ValidationIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, ValidationIssue{
			Field:  lowerFirst(fe.Field()),
			Reason: "failed " + fe.Tag() + " constraint",
		})
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Field == issues[j].Field {
			return issues[i].Reason < issues[j].Reason
		}
		return issues[i].Field < issues[j].Field
	})
	return issues
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
