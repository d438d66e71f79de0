package models

import "time"

type DashboardView struct {
	Status      string          `json:"status"`
	Term        string          `json:"term"`
	Total       int             `json:"total"`
	Matched     int             `json:"matched"`
	Details     *VehicleDetails `json:"details,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
	Charts      []ChartSeries   `json:"charts"`
}

// VehicleDetails is the panel shown for the first search hit.
type VehicleDetails struct {
	County              string `json:"county"`
	City                string `json:"city"`
	State               string `json:"state"`
	PostalCode          string `json:"postal_code"`
	Model               string `json:"model"`
	Eligibility         string `json:"cafv_eligibility"`
	ElectricRange       string `json:"electric_range"`
	LegislativeDistrict string `json:"legislative_district"`
	DOLVehicleID        string `json:"dol_vehicle_id"`
	ElectricUtility     string `json:"electric_utility"`
	CensusTract         string `json:"census_tract_2020"`
}

type ChartSeries struct {
	Dimension   string   `json:"dimension"`
	Kind        string   `json:"kind,omitempty"`
	Title       string   `json:"title,omitempty"`
	Labels      []string `json:"labels"`
	Data        []int    `json:"data"`
	Colors      []string `json:"colors,omitempty"`
	BorderColor string   `json:"border_color,omitempty"`
}

type DatasetStatus struct {
	State       string    `json:"state"`
	Source      string    `json:"source"`
	Rows        int       `json:"rows"`
	SkippedRows int       `json:"skipped_rows"`
	Columns     []string  `json:"columns"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	LoadedAt    time.Time `json:"loaded_at"`
	Error       string    `json:"error,omitempty"`
}

type RecordPage struct {
	Data   []map[string]string `json:"data"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}
