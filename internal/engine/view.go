package engine

import (
	"evdash/internal/models"
)

const maxSuggestions = 5

// View is everything the dashboard shows for one search term.
type View struct {
	Term        string
	State       State
	Total       int
	Records     []Record
	Details     *models.VehicleDetails
	Suggestions []string
	Results     []Result
}

// ComputeView filters ds by term and aggregates the hits for every
// dimension. It reads ds only; callers pass the dataset and term explicitly.
func ComputeView(ds *Dataset, term string) View {
	rows := ds.Rows(ds.Select(term))

	v := View{
		Term:    term,
		State:   ds.State(),
		Total:   ds.Len(),
		Records: rows,
		Results: CountAll(rows),
	}

	if term != "" {
		if len(rows) > 0 {
			d := DetailsOf(rows[0])
			v.Details = &d
		} else {
			v.Suggestions = ds.Suggest(term, maxSuggestions)
		}
	}
	return v
}

// Charts binds every result of the view to its presentation.
func (v View) Charts() []models.ChartSeries {
	out := make([]models.ChartSeries, len(v.Results))
	for i, res := range v.Results {
		out[i] = BindChart(res)
	}
	return out
}

// Result returns the aggregation for f.
func (v View) Result(f Field) (Result, error) {
	for _, res := range v.Results {
		if res.Field == f {
			return res, nil
		}
	}
	return Result{}, &InvalidFieldError{Field: f.String()}
}

func DetailsOf(r Record) models.VehicleDetails {
	return models.VehicleDetails{
		County:              r[ColCounty],
		City:                r[ColCity],
		State:               r[ColState],
		PostalCode:          r[ColPostalCode],
		Model:               r[ColModel],
		Eligibility:         r[ColEligibility],
		ElectricRange:       r[ColElectricRange],
		LegislativeDistrict: r[ColLegislativeDistrict],
		DOLVehicleID:        r[ColDOLVehicleID],
		ElectricUtility:     r[ColElectricUtility],
		CensusTract:         r[ColCensusTract],
	}
}
