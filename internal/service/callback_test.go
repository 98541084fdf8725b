package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fueltrackr/internal/apiclient"
	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/storage/memory"
	"github.com/golang-jwt/jwt/v5"
)

type fakeExchanger struct {
	calls atomic.Int32
	fn    func(ctx context.Context, code string) (*apiclient.CallbackResponse, error)
}

func (f *fakeExchanger) ExchangeCode(ctx context.Context, code string) (*apiclient.CallbackResponse, error) {
	f.calls.Add(1)
	return f.fn(ctx, code)
}

func okResponse(ctx context.Context, code string) (*apiclient.CallbackResponse, error) {
	return &apiclient.CallbackResponse{
		Status:      "success",
		AccessToken: "access-" + code,
		IDToken:     "id-" + code,
		User:        apiclient.UserInfo{Email: "ann@haycarb.com", Name: "Ann", Role: "employee"},
	}, nil
}

func newService(ex *fakeExchanger) *CallbackService {
	return NewCallbackService(ex, memory.New(time.Hour, time.Minute))
}

func TestExchangeSuccess(t *testing.T) {
	ex := &fakeExchanger{fn: okResponse}
	svc := newService(ex)
	res := svc.Exchange(context.Background(), "abc")
	if res.State != CallbackSuccess || res.Err != nil {
		t.Fatalf("expected success, got %s %v", res.State, res.Err)
	}
	if res.Token != "access-abc" || res.IDToken != "id-abc" || res.User.Role != model.RoleEmployee {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExchangeSameCodeTwiceSequential(t *testing.T) {
	ex := &fakeExchanger{fn: okResponse}
	svc := newService(ex)
	first := svc.Exchange(context.Background(), "abc")
	second := svc.Exchange(context.Background(), "abc")
	if first.State != CallbackSuccess {
		t.Fatalf("first exchange failed: %v", first.Err)
	}
	if !errors.Is(second.Err, ErrCodeReplayed) {
		t.Fatalf("expected replay error, got %v", second.Err)
	}
	if n := ex.calls.Load(); n != 1 {
		t.Fatalf("expected 1 exchange call, got %d", n)
	}
}

func TestExchangeSameCodeConcurrent(t *testing.T) {
	release := make(chan struct{})
	ex := &fakeExchanger{fn: func(ctx context.Context, code string) (*apiclient.CallbackResponse, error) {
		<-release
		return okResponse(ctx, code)
	}}
	svc := newService(ex)

	var started sync.WaitGroup
	var wg sync.WaitGroup
	results := make([]CallbackResult, 5)
	for i := range results {
		started.Add(1)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Done()
			results[i] = svc.Exchange(context.Background(), "same")
		}(i)
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := ex.calls.Load(); n != 1 {
		t.Fatalf("expected 1 exchange call, got %d", n)
	}
	success := 0
	for _, r := range results {
		if r.State == CallbackSuccess {
			success++
		} else if !errors.Is(r.Err, ErrCodeReplayed) {
			t.Fatalf("unexpected failure %v", r.Err)
		}
	}
	if success == 0 {
		t.Fatal("expected at least one successful result")
	}
}

func TestExchangeCancelledCallerDoesNotAbortExchange(t *testing.T) {
	ex := &fakeExchanger{fn: func(ctx context.Context, code string) (*apiclient.CallbackResponse, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return okResponse(ctx, code)
	}}
	svc := newService(ex)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if res := svc.Exchange(ctx, "abc"); res.State != CallbackSuccess {
		t.Fatalf("expected success, got %v", res.Err)
	}
}

func TestExchangeFailures(t *testing.T) {
	apiErr := &apiclient.Error{Status: 400, Detail: "invalid_grant"}
	cases := []struct {
		name string
		code string
		fn   func(ctx context.Context, code string) (*apiclient.CallbackResponse, error)
		want error
	}{
		{"missing code", "", okResponse, ErrMissingCode},
		{"api error", "c1", func(context.Context, string) (*apiclient.CallbackResponse, error) { return nil, apiErr }, apiErr},
		{"no token", "c2", func(context.Context, string) (*apiclient.CallbackResponse, error) {
			return &apiclient.CallbackResponse{Status: "success"}, nil
		}, ErrNoToken},
	}
	for _, tc := range cases {
		svc := newService(&fakeExchanger{fn: tc.fn})
		res := svc.Exchange(context.Background(), tc.code)
		if res.State != CallbackFailure || !errors.Is(res.Err, tc.want) {
			t.Errorf("%s: expected failure %v, got %s %v", tc.name, tc.want, res.State, res.Err)
		}
	}
}

func TestExchangeStateTransitions(t *testing.T) {
	svc := newService(&fakeExchanger{fn: okResponse})
	var states []CallbackState
	svc.onState = func(_ string, st CallbackState) { states = append(states, st) }
	svc.Exchange(context.Background(), "abc")
	if len(states) != 2 || states[0] != CallbackExchanging || states[1] != CallbackSuccess {
		t.Fatalf("unexpected transitions %v", states)
	}
}

func TestRoleFallsBackToTokenClaims(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "boss@haycarb.com", "role": "admin",
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	svc := newService(&fakeExchanger{fn: func(context.Context, string) (*apiclient.CallbackResponse, error) {
		return &apiclient.CallbackResponse{AccessToken: token}, nil
	}})
	res := svc.Exchange(context.Background(), "abc")
	if res.User.Role != model.RoleAdmin || res.User.Email != "boss@haycarb.com" {
		t.Fatalf("expected admin from claims, got %+v", res.User)
	}
}
