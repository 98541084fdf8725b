package model

// TravelLogEntry — запись журнала поездок. Показания одометра могут отсутствовать
// в старых записях, тогда итог берётся из total_km, посчитанного сервером.
type TravelLogEntry struct {
	ID         string     `json:"_id,omitempty"`
	UserEmail  string     `json:"user_email"`
	Date       string     `json:"date"`
	MeterStart *float64   `json:"meter_start"`
	MeterEnd   *float64   `json:"meter_end"`
	OfficialKm float64    `json:"official_km"`
	PrivateKm  float64    `json:"private_km"`
	TotalKm    *float64   `json:"total_km"`
	Remarks    string     `json:"remarks"`
	CreatedAt  *Timestamp `json:"created_at,omitempty"`
}

// NewTravelLog — тело POST /travels.
type NewTravelLog struct {
	Date       string  `json:"date"`
	MeterStart float64 `json:"meter_start"`
	MeterEnd   float64 `json:"meter_end"`
	OfficialKm float64 `json:"official_km"`
	PrivateKm  float64 `json:"private_km"`
	Remarks    string  `json:"remarks"`
}
