package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

type LookupRequest struct {
	Email string `query:"email"`
	Name  string `query:"name"`
}

func (r *LookupRequest) GetEmail() string {
	if r == nil {
		return ""
	}
	return r.Email
}

func (r *LookupRequest) GetName() string {
	if r == nil {
		return ""
	}
	return r.Name
}

func NewLookupRequestFromContext(ctx echo.Context) (*LookupRequest, error) {
	var query LookupRequest
	if err := ctx.Bind(&query); err != nil {
		return nil, err
	}
	query.Email = strings.TrimSpace(query.Email)
	query.Name = strings.TrimSpace(query.Name)

	return &query, nil
}

func (r *LookupRequest) Validate() error {
	hasEmail := strings.TrimSpace(r.GetEmail()) != ""
	hasName := strings.TrimSpace(r.GetName()) != ""
	if hasEmail == hasName {
		return errors.New("exactly one of email or name is required")
	}

	return nil
}
