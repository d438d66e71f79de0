package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const sampleCSV = `VIN (1-10),County,City,State,Postal Code,Model Year,Make,Model,Electric Vehicle Type,Clean Alternative Fuel Vehicle (CAFV) Eligibility,Electric Range,Base MSRP,Legislative District,DOL Vehicle ID,Vehicle Location,Electric Utility,2020 Census Tract
5YJ3E1EB4L,Yakima,Yakima,WA,98908,2020,TESLA,MODEL 3,Battery Electric Vehicle (BEV),Clean Alternative Fuel Vehicle Eligible,322,0,14,127175366,POINT (-120.56916 46.58514),PACIFICORP,53077000904
5YJ3E1EA7K,San Diego,San Diego,CA,92101,2019,TESLA,MODEL 3,Battery Electric Vehicle (BEV),Clean Alternative Fuel Vehicle Eligible,220,0,,266614659,POINT (-117.16171 32.71568),,06073005102
1N4AZ0CP8D,Kitsap,Bremerton,WA,98310,2013,NISSAN,LEAF,Battery Electric Vehicle (BEV),Clean Alternative Fuel Vehicle Eligible,75,0,23,250207019,POINT (-122.61091 47.5827),PUGET SOUND ENERGY INC,53035080700
`

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "ev_data_*.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpFile.Name()
}

func TestLoadFromFile(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)

	ds, err := NewLoader(zerolog.Nop(), time.Second).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if ds.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", ds.Len())
	}
	if ds.State() != StateReady {
		t.Errorf("Expected state ready, got %s", ds.State())
	}
	if ds.Records[0][ColMake] != "TESLA" {
		t.Errorf("Row 0 Make: expected TESLA, got %q", ds.Records[0][ColMake])
	}
	if ds.Records[2][ColVIN] != "1N4AZ0CP8D" {
		t.Errorf("Row 2 VIN: expected 1N4AZ0CP8D, got %q", ds.Records[2][ColVIN])
	}
	if ds.Records[1][ColLegislativeDistrict] != "" {
		t.Errorf("Row 1 district should be empty, got %q", ds.Records[1][ColLegislativeDistrict])
	}
	if len(ds.Columns) != 17 {
		t.Errorf("Expected 17 columns, got %d", len(ds.Columns))
	}
	if ds.Fingerprint == 0 {
		t.Error("Expected a content fingerprint")
	}
}

func TestParseHeaderHandling(t *testing.T) {
	content := "\xEF\xBB\xBF Make , Model\nTESLA,MODEL Y,extra\nNISSAN\n"

	ds, err := Parse("inline", []byte(content))
	if err != nil {
		t.Fatal(err)
	}
	if ds.Columns[0] != "Make" || ds.Columns[1] != "Model" {
		t.Fatalf("Header not cleaned: %q", ds.Columns)
	}
	if len(ds.Records[0]) != 2 {
		t.Errorf("Extra cells should be dropped, got %v", ds.Records[0])
	}
	if _, ok := ds.Records[1][ColModel]; ok {
		t.Error("Short row should leave Model absent")
	}
	if _, ok := ds.Records[0][ColCity]; ok {
		t.Error("Missing column should be absent")
	}
}

func TestParseQuotedFields(t *testing.T) {
	content := "Make,Model\nTESLA,\"MODEL 3, LONG\nRANGE\"\nNISSAN,LEAF\n"

	ds, err := Parse("inline", []byte(content))
	if err != nil {
		t.Fatal(err)
	}
	if ds.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", ds.Len())
	}
	if ds.Records[0][ColModel] != "MODEL 3, LONG\nRANGE" {
		t.Errorf("Row 0 Model: got %q", ds.Records[0][ColModel])
	}
	if ds.Records[1][ColMake] != "NISSAN" {
		t.Errorf("Row 1 Make: expected NISSAN, got %q", ds.Records[1][ColMake])
	}
	if ds.SkippedRows != 0 {
		t.Errorf("Expected no skipped rows, got %d", ds.SkippedRows)
	}
}

func TestLoadFailureYieldsEmptyDataset(t *testing.T) {
	loader := NewLoader(zerolog.Nop(), time.Second)

	ds, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatal("Expected an error for a missing file")
	}
	if ds == nil || ds.Len() != 0 {
		t.Fatal("Expected an empty dataset")
	}
	if ds.State() != StateFailed {
		t.Errorf("Expected state failed, got %s", ds.State())
	}

	ds, err = loader.Load(context.Background(), writeTempCSV(t, ""))
	if !errors.Is(err, ErrNoHeader) {
		t.Fatalf("Expected ErrNoHeader, got %v", err)
	}
	if ds.Len() != 0 {
		t.Errorf("Expected empty dataset, got %d rows", ds.Len())
	}
}

func TestLoadFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ev.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	loader := NewLoader(zerolog.Nop(), time.Second)

	ds, err := loader.Load(context.Background(), srv.URL+"/ev.csv")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ds.Len() != 3 {
		t.Errorf("Expected 3 rows, got %d", ds.Len())
	}

	ds, err = loader.Load(context.Background(), srv.URL+"/other.csv")
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("Expected ErrUnexpectedStatus, got %v", err)
	}
	if ds.Len() != 0 {
		t.Errorf("Expected empty dataset, got %d rows", ds.Len())
	}
}
