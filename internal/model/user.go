package model

// UserAccount — учётная запись сотрудника в API. Пароль API не отдаёт.
type UserAccount struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	FuelCardNo string     `json:"fuel_card_no"`
	CreatedAt  *Timestamp `json:"created_at,omitempty"`
}

// ProfileUpdate — то, что сотрудник может менять сам (email и роль — нет).
type ProfileUpdate struct {
	Name       *string `json:"name,omitempty"`
	FuelCardNo *string `json:"fuel_card_no,omitempty"`
}

// AdminUserUpdate — изменение учётной записи администратором.
type AdminUserUpdate struct {
	Name       *string `json:"name,omitempty"`
	FuelCardNo *string `json:"fuel_card_no,omitempty"`
	Role       *Role   `json:"role,omitempty"`
}
