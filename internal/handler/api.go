package handler

import (
	"context"

	"github.com/fueltrackr/internal/model"
)

// Интерфейсы к FuelTrackr API, которые нужны страницам. Реализует *apiclient.Client.

type TravelAPI interface {
	MyTravels(ctx context.Context) ([]model.TravelLogEntry, error)
	CreateTravel(ctx context.Context, entry model.NewTravelLog) error
}

type ProfileAPI interface {
	Me(ctx context.Context) (*model.UserAccount, error)
	UpdateMe(ctx context.Context, upd model.ProfileUpdate) error
}

type PasswordAPI interface {
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
}

type AdminAPI interface {
	ListUsers(ctx context.Context) ([]model.UserAccount, error)
	AllTravels(ctx context.Context) ([]model.TravelLogEntry, error)
	UpdateUser(ctx context.Context, email string, upd model.AdminUserUpdate) error
	DeleteUser(ctx context.Context, email string) error
}
