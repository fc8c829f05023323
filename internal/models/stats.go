package models

type RECStats struct {
	TotalRECsGenerated float64          `json:"totalRecsGenerated"`
	TotalRECsSold      float64          `json:"totalRecsSold"`
	TotalEnergyMWh     float64          `json:"totalEnergyMwh"`
	Monthly            []MonthlyRECStat `json:"monthly,omitempty"`
}

type MonthlyRECStat struct {
	Month     string  `json:"month"`
	Generated float64 `json:"generated"`
	Sold      float64 `json:"sold"`
}
