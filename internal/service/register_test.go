package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fueltrackr/internal/apiclient"
)

type fakeRegistrar struct {
	got []apiclient.RegisterRequest
	err error
}

func (f *fakeRegistrar) Register(_ context.Context, req apiclient.RegisterRequest) error {
	f.got = append(f.got, req)
	return f.err
}

func validRequest(email string) apiclient.RegisterRequest {
	return apiclient.RegisterRequest{Name: "Ann", Email: email, Password: "secret", FuelCardNo: "FC-1"}
}

func TestRegisterRejectsForeignDomainWithoutNetwork(t *testing.T) {
	api := &fakeRegistrar{}
	svc := NewRegistrationService(api, "haycarb.com")
	err := svc.Register(context.Background(), validRequest("ann@gmail.com"))
	if !errors.Is(err, ErrEmailDomain) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if len(api.got) != 0 {
		t.Fatal("API must not be called for a foreign domain")
	}
}

func TestRegisterCorporateDomainCallsAPI(t *testing.T) {
	api := &fakeRegistrar{}
	svc := NewRegistrationService(api, "@haycarb.com")
	if err := svc.Register(context.Background(), validRequest("  Ann@Haycarb.com ")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(api.got) != 1 || api.got[0].Email != "ann@haycarb.com" {
		t.Fatalf("unexpected API calls %+v", api.got)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewRegistrationService(&fakeRegistrar{}, "haycarb.com")
	missing := validRequest("ann@haycarb.com")
	missing.FuelCardNo = " "
	if err := svc.Register(context.Background(), missing); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected missing fields, got %v", err)
	}
	if err := svc.Register(context.Background(), validRequest("not-an-email")); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected invalid email, got %v", err)
	}
	if err := svc.Register(context.Background(), validRequest("ann@evilhaycarb.com")); !errors.Is(err, ErrEmailDomain) {
		t.Fatalf("expected domain error for lookalike domain, got %v", err)
	}
}

func TestRegisterSurfacesAPIError(t *testing.T) {
	apiErr := &apiclient.Error{Status: 400, Detail: "User already exists"}
	svc := NewRegistrationService(&fakeRegistrar{err: apiErr}, "haycarb.com")
	err := svc.Register(context.Background(), validRequest("ann@haycarb.com"))
	if apiclient.Message(err, "") != "User already exists" {
		t.Fatalf("expected API detail, got %v", err)
	}
}
