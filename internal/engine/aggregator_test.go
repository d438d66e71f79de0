package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makes(values ...string) []Record {
	out := make([]Record, len(values))
	for i, v := range values {
		out[i] = Record{ColMake: v}
	}
	return out
}

func years(values ...string) []Record {
	out := make([]Record, len(values))
	for i, v := range values {
		out[i] = Record{ColModelYear: v}
	}
	return out
}

func TestCountByFirstSeenOrder(t *testing.T) {
	res, err := CountBy(makes("Tesla", "Tesla", "Nissan", ""), Manufacturer)
	require.NoError(t, err)

	assert.Equal(t, Manufacturer, res.Field)
	assert.Equal(t, []string{"Tesla", "Nissan", "Unknown"}, res.Labels)
	assert.Equal(t, []int{2, 1, 1}, res.Series)
}

func TestCountByAbsentColumnIsUnknown(t *testing.T) {
	records := []Record{{ColCity: "Seattle"}, {}, {ColCity: "Seattle"}, {ColCity: ""}}

	res, err := CountBy(records, City)
	require.NoError(t, err)
	assert.Equal(t, []string{"Seattle", "Unknown"}, res.Labels)
	assert.Equal(t, []int{2, 2}, res.Series)
}

func TestCountByModelYearOrdering(t *testing.T) {
	t.Run("numeric ascending then unknown", func(t *testing.T) {
		res, err := CountBy(years("2020", "2018", "2020", "Unknown"), ModelYear)
		require.NoError(t, err)
		assert.Equal(t, []string{"2018", "2020", "Unknown"}, res.Labels)
		assert.Equal(t, []int{1, 2, 1}, res.Series)
	})

	t.Run("not lexical", func(t *testing.T) {
		res, err := CountBy(years("2021", "999", "10000", "2008"), ModelYear)
		require.NoError(t, err)
		assert.Equal(t, []string{"999", "2008", "2021", "10000"}, res.Labels)
	})

	t.Run("non numeric keep first seen order after years", func(t *testing.T) {
		res, err := CountBy(years("", "n/a", "2015", "", "2011", "n/a"), ModelYear)
		require.NoError(t, err)
		assert.Equal(t, []string{"2011", "2015", "Unknown", "n/a"}, res.Labels)
		assert.Equal(t, []int{1, 1, 2, 2}, res.Series)
	})
}

func TestCountByInvalidField(t *testing.T) {
	_, err := CountBy(makes("Tesla"), Field(42))
	require.Error(t, err)

	var fieldErr *InvalidFieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "Field(42)", fieldErr.Field)
	assert.Contains(t, err.Error(), "Field(42)")
}

func TestCountByEmptyInput(t *testing.T) {
	for _, f := range Dimensions {
		res, err := CountBy(nil, f)
		require.NoError(t, err)
		assert.Empty(t, res.Labels, f.String())
		assert.Empty(t, res.Series, f.String())
		assert.NotNil(t, res.Labels, f.String())
	}
}

// randomRecords builds rows with a small value space so buckets collide.
func randomRecords(rng *rand.Rand, n int) []Record {
	pick := func(values ...string) string { return values[rng.Intn(len(values))] }
	out := make([]Record, n)
	for i := range out {
		r := Record{
			ColMake:        pick("TESLA", "NISSAN", "KIA", "", "BMW"),
			ColModelYear:   pick("2018", "2020", "2023", "", "soon"),
			ColVehicleType: pick("Battery Electric Vehicle (BEV)", "Plug-in Hybrid Electric Vehicle (PHEV)"),
			ColEligibility: pick("Clean Alternative Fuel Vehicle Eligible", "Not eligible due to low battery range", ""),
		}
		if rng.Intn(4) > 0 {
			r[ColCity] = pick("Seattle", "Tacoma", "Yakima")
		}
		out[i] = r
	}
	return out
}

func TestCountByProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, n := range []int{0, 1, 17, 500} {
		records := randomRecords(rng, n)
		for _, f := range Dimensions {
			t.Run(fmt.Sprintf("%s/%d", f, n), func(t *testing.T) {
				res, err := CountBy(records, f)
				require.NoError(t, err)

				assert.Equal(t, n, res.Total(), "counts must cover every record")
				require.Len(t, res.Series, len(res.Labels))

				seen := make(map[string]bool)
				for i, label := range res.Labels {
					assert.False(t, seen[label], "duplicate label %q", label)
					seen[label] = true
					assert.Positive(t, res.Series[i])
				}

				again, err := CountBy(records, f)
				require.NoError(t, err)
				assert.Equal(t, res, again)
			})
		}
	}
}

func TestCountAll(t *testing.T) {
	records := randomRecords(rand.New(rand.NewSource(1)), 40)

	results := CountAll(records)
	require.Len(t, results, len(Dimensions))
	for i, f := range Dimensions {
		want, err := CountBy(records, f)
		require.NoError(t, err)
		assert.Equal(t, want, results[i])
	}
}

func TestParseField(t *testing.T) {
	for _, f := range Dimensions {
		got, err := ParseField(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseField(" Model-Year ")
	require.NoError(t, err)
	assert.Equal(t, ModelYear, got)

	_, err = ParseField("electric-range")
	var fieldErr *InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "electric-range", fieldErr.Field)
}
