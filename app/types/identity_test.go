package types_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
	"github.com/vibast-solutions/ms-go-idmatch/app/types"

	"github.com/labstack/echo/v4"
)

func TestNewLookupRequestFromContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/identities?email=A%40X.com", nil)
	ctx := e.NewContext(req, httptest.NewRecorder())

	lookup, err := types.NewLookupRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if lookup.GetEmail() != "A@X.com" || lookup.GetName() != "" {
		t.Fatalf("unexpected request %+v", lookup)
	}
	if err := lookup.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestNewLookupRequestFromContextTrimsValues(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/identities?email=%20%20&name=%20alice%20", nil)
	ctx := e.NewContext(req, httptest.NewRecorder())

	lookup, err := types.NewLookupRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if lookup.GetEmail() != "" || lookup.GetName() != "alice" {
		t.Fatalf("unexpected request %+v", lookup)
	}
	if err := lookup.Validate(); err != nil {
		t.Fatalf("expected a name-only request, got %v", err)
	}
}

func TestLookupRequestValidate(t *testing.T) {
	cases := []struct {
		req   types.LookupRequest
		valid bool
	}{
		{types.LookupRequest{Email: "a@x.com"}, true},
		{types.LookupRequest{Name: "alice"}, true},
		{types.LookupRequest{}, false},
		{types.LookupRequest{Email: "  "}, false},
		{types.LookupRequest{Email: "a@x.com", Name: "alice"}, false},
	}
	for _, c := range cases {
		err := c.req.Validate()
		if c.valid && err != nil {
			t.Fatalf("%+v: expected valid, got %v", c.req, err)
		}
		if !c.valid && err == nil {
			t.Fatalf("%+v: expected error", c.req)
		}
	}

	var nilReq *types.LookupRequest
	if nilReq.Validate() == nil {
		t.Fatalf("expected error for nil request")
	}
}

func TestIdentitiesToStruct(t *testing.T) {
	identity := entity.NewIdentity(3)
	identity.Names.Add("bob")
	identity.Emails.Add("b@y.com")
	identity.Emails.Add("b2@y.com")

	s := types.IdentitiesToStruct([]*entity.Identity{identity})
	list := s.GetFields()["identities"].GetListValue().GetValues()
	if len(list) != 1 {
		t.Fatalf("expected 1 identity, got %d", len(list))
	}
	fields := list[0].GetStructValue().GetFields()
	if fields["id"].GetNumberValue() != 3 {
		t.Fatalf("unexpected id %v", fields["id"])
	}
	emails := fields["emails"].GetListValue().GetValues()
	if len(emails) != 2 || emails[0].GetStringValue() != "b2@y.com" {
		t.Fatalf("expected sorted emails, got %v", emails)
	}
}

func TestReportToStruct(t *testing.T) {
	s := types.ReportToStruct(&entity.Report{Precision: 0.5, WeightedF1: 0.25, Samples: 4})
	fields := s.GetFields()
	if fields["precision"].GetNumberValue() != 0.5 || fields["weighted_f1"].GetNumberValue() != 0.25 || fields["samples"].GetNumberValue() != 4 {
		t.Fatalf("unexpected report struct %v", s)
	}
}
