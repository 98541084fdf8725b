package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fueltrackr/internal/apiclient"
	"github.com/fueltrackr/internal/logger"
	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/session"
	"golang.org/x/sync/singleflight"
)

var (
	ErrMissingCode   = errors.New("authorization code missing")
	ErrCodeReplayed  = errors.New("authorization code already used")
	ErrNoToken       = errors.New("token response without access_token")
	ErrStateMismatch = errors.New("state parameter mismatch")
)

// CodeExchanger — обмен authorization code на токены (apiclient.Client).
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string) (*apiclient.CallbackResponse, error)
}

// CodeClaimer — отметка «код использован» (storage.SessionStore).
type CodeClaimer interface {
	ClaimCode(ctx context.Context, code string) (bool, error)
}

type CallbackState int

const (
	CallbackIdle CallbackState = iota
	CallbackExchanging
	CallbackSuccess
	CallbackFailure
)

func (s CallbackState) String() string {
	switch s {
	case CallbackIdle:
		return "idle"
	case CallbackExchanging:
		return "exchanging"
	case CallbackSuccess:
		return "success"
	case CallbackFailure:
		return "failure"
	}
	return fmt.Sprintf("CallbackState(%d)", int(s))
}

// CallbackResult — итог обработки callback. При Failure Err содержит причину.
type CallbackResult struct {
	State   CallbackState
	Token   string
	IDToken string
	User    model.SessionUser
	Err     error
}

// CallbackService обменивает каждый authorization code не более одного раза.
// Одновременные запросы с одним кодом присоединяются к одному обмену (singleflight),
// повтор после завершения отсекается отметкой в хранилище.
type CallbackService struct {
	exchanger CodeExchanger
	claims    CodeClaimer
	group     singleflight.Group
	onState   func(code string, st CallbackState)
}

func NewCallbackService(exchanger CodeExchanger, claims CodeClaimer) *CallbackService {
	return &CallbackService{exchanger: exchanger, claims: claims}
}

func (s *CallbackService) transition(code string, st CallbackState) {
	logger.Debugf("callback code=%s state=%s", logger.MaskSecret(code), st)
	if s.onState != nil {
		s.onState(code, st)
	}
}

func (s *CallbackService) Exchange(ctx context.Context, code string) CallbackResult {
	if code == "" {
		return CallbackResult{State: CallbackFailure, Err: ErrMissingCode}
	}
	v, err, shared := s.group.Do(code, func() (any, error) {
		// обмен не должен оборваться, если первый из присоединившихся запросов отменён
		ctx := context.WithoutCancel(ctx)
		ok, err := s.claims.ClaimCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("claim code: %w", err)
		}
		if !ok {
			return nil, ErrCodeReplayed
		}
		s.transition(code, CallbackExchanging)
		resp, err := s.exchanger.ExchangeCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("exchange code: %w", err)
		}
		if resp == nil || resp.AccessToken == "" {
			return nil, ErrNoToken
		}
		return resp, nil
	})
	if err != nil {
		s.transition(code, CallbackFailure)
		logger.Infof("callback code=%s failed (shared=%v): %v", logger.MaskSecret(code), shared, err)
		return CallbackResult{State: CallbackFailure, Err: err}
	}
	resp := v.(*apiclient.CallbackResponse)
	s.transition(code, CallbackSuccess)
	return CallbackResult{
		State:   CallbackSuccess,
		Token:   resp.AccessToken,
		IDToken: resp.IDToken,
		User:    sessionUser(resp),
	}
}

// sessionUser — профиль из userinfo; роль и email, если их нет в userinfo, берутся из claims токена.
func sessionUser(resp *apiclient.CallbackResponse) model.SessionUser {
	u := resp.User.SessionUser()
	if u.Role != "" && u.Email != "" {
		return u
	}
	claims, err := session.DecodeClaims(resp.AccessToken)
	if err != nil {
		return u
	}
	if u.Role == "" {
		u.Role = model.Role(claims.Role)
	}
	if u.Email == "" {
		u.Email = claims.Email
		if u.Email == "" {
			u.Email = claims.Subject
		}
	}
	if u.Name == "" {
		u.Name = claims.Name
	}
	return u
}
