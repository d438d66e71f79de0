package engine

import (
	"fmt"
	"strings"
)

// Column names of the Electric Vehicle Population Data export.
const (
	ColMake                = "Make"
	ColModel               = "Model"
	ColModelYear           = "Model Year"
	ColVehicleType         = "Electric Vehicle Type"
	ColCity                = "City"
	ColCounty              = "County"
	ColState               = "State"
	ColPostalCode          = "Postal Code"
	ColVIN                 = "VIN (1-10)"
	ColEligibility         = "Clean Alternative Fuel Vehicle (CAFV) Eligibility"
	ColElectricRange       = "Electric Range"
	ColLegislativeDistrict = "Legislative District"
	ColDOLVehicleID        = "DOL Vehicle ID"
	ColElectricUtility     = "Electric Utility"
	ColCensusTract         = "2020 Census Tract"
)

// Field is one of the dashboard dimensions a dataset can be counted by.
type Field int

const (
	Manufacturer Field = iota
	ModelYear
	VehicleType
	City
	Eligibility
)

// Dimensions lists every supported Field in dashboard order.
var Dimensions = []Field{Manufacturer, ModelYear, VehicleType, City, Eligibility}

var fieldInfo = [...]struct {
	name   string
	column string
}{
	Manufacturer: {"manufacturer", ColMake},
	ModelYear:    {"model-year", ColModelYear},
	VehicleType:  {"vehicle-type", ColVehicleType},
	City:         {"city", ColCity},
	Eligibility:  {"cafv-eligibility", ColEligibility},
}

// Valid reports whether f is one of the supported dimensions.
func (f Field) Valid() bool {
	return f >= 0 && int(f) < len(fieldInfo)
}

// String returns the API name of the field, e.g. "model-year".
func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldInfo[f].name
}

// Column returns the CSV header the field reads from.
func (f Field) Column() string {
	if !f.Valid() {
		return ""
	}
	return fieldInfo[f].column
}

// ParseField maps an API dimension name to its Field.
func ParseField(name string) (Field, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, info := range fieldInfo {
		if info.name == key {
			return Field(i), nil
		}
	}
	return 0, &InvalidFieldError{Field: name}
}

// InvalidFieldError reports an aggregation over a field outside Dimensions.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("unsupported aggregation field %q", e.Field)
}
