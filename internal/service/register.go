package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/fueltrackr/internal/apiclient"
)

var (
	ErrMissingFields = errors.New("all fields are required")
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrEmailDomain   = errors.New("email domain not allowed")
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type Registrar interface {
	Register(ctx context.Context, req apiclient.RegisterRequest) error
}

// RegistrationService проверяет форму регистрации до обращения к API:
// регистрироваться могут только адреса корпоративного домена.
type RegistrationService struct {
	api    Registrar
	domain string
}

func NewRegistrationService(api Registrar, domain string) *RegistrationService {
	return &RegistrationService{api: api, domain: strings.ToLower(strings.TrimPrefix(domain, "@"))}
}

func (s *RegistrationService) Domain() string { return s.domain }

func (s *RegistrationService) Validate(req apiclient.RegisterRequest) (apiclient.RegisterRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FuelCardNo = strings.TrimSpace(req.FuelCardNo)
	if req.Name == "" || req.Email == "" || req.Password == "" || req.FuelCardNo == "" {
		return req, ErrMissingFields
	}
	if !emailRegexp.MatchString(req.Email) {
		return req, ErrInvalidEmail
	}
	if s.domain != "" && !strings.HasSuffix(req.Email, "@"+s.domain) {
		return req, ErrEmailDomain
	}
	return req, nil
}

func (s *RegistrationService) Register(ctx context.Context, req apiclient.RegisterRequest) error {
	req, err := s.Validate(req)
	if err != nil {
		return err
	}
	return s.api.Register(ctx, req)
}
