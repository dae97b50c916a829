package http

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"farm-credit/internal/domain"
	"farm-credit/internal/service"
)

func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestFormPage_RendersDefaults(t *testing.T) {
	srv := setupRouter(t, nil, "secret")

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`name="household_size"`,
		`<option value="Fair" selected>`,
		`name="income_per_capita_ngn" value="2769"`,
		`name="smartphone_owner" value="on" checked`,
		"Income Per Capita Ngn",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected form to contain %q", want)
		}
	}
}

func TestFormPage_SubmitShowsResultAndKeepsValues(t *testing.T) {
	srv := setupRouter(t, nil, "secret")

	values := url.Values{}
	values.Set(domain.FeatureHouseholdSize, "1")
	values.Set(domain.FeatureEducation, "No Formal Education")
	values.Set(domain.FeatureSmartphoneOwner, "on")
	values.Set(domain.FeatureAge, "16")

	rec := srv.do(formRequest(values))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Predicted Credit Score: 598") || !strings.Contains(body, "<strong>Fair</strong>") {
		t.Fatalf("expected 598/Fair result in page")
	}
	if !strings.Contains(body, `name="age" value="16"`) {
		t.Fatalf("expected submitted values to be retained")
	}
}

func TestFormPage_SubmitErrors(t *testing.T) {
	srv := setupRouter(t, nil, "secret")

	cases := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{name: "out of range", field: domain.FeatureHouseholdSize, value: "15", want: "value out of range"},
		{name: "not a number", field: domain.FeatureAge, value: "old", want: "Age must be a number"},
		{name: "not an integer", field: domain.FeatureMobileMoneyActivity, value: "2.5", want: "must be a whole number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := url.Values{}
			values.Set(tc.field, tc.value)
			rec := srv.do(formRequest(values))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("expected page to contain %q", tc.want)
			}
		})
	}
}

func TestBatchPage(t *testing.T) {
	srv := setupRouter(t, nil, "secret")

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/batch", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), domain.BatchOutputFilename) {
		t.Fatalf("expected page to mention the download name")
	}

	csv := batchCSV(domain.AllFeatures(), map[string]string{"age": "20"})
	rec = srv.do(uploadRequest(t, "/batch", csv))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected the page with the results, got %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<th>" + domain.ColumnPredictedScore + "</th>",
		"<th>" + domain.ColumnCategory + "</th>",
		"Scored 1 rows",
		`href="data:text/csv;charset=utf-8;base64,`,
		`download="` + domain.BatchOutputFilename + `"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
}

func TestCSVDataURLRoundTrip(t *testing.T) {
	table := &service.Table{
		Header: []string{"age", domain.ColumnPredictedScore},
		Rows:   [][]string{{"20", "598"}},
	}
	link, err := csvDataURL(table)
	if err != nil {
		t.Fatalf("data url: %v", err)
	}
	const prefix = "data:text/csv;charset=utf-8;base64,"
	if !strings.HasPrefix(string(link), prefix) {
		t.Fatalf("unexpected link %q", link)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(string(link), prefix))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	parsed, err := service.ParseTable(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(parsed, table) {
		t.Fatalf("expected %+v, got %+v", table, parsed)
	}
}

func TestBatchPage_SchemaMismatchShowsPreview(t *testing.T) {
	srv := setupRouter(t, nil, "secret")

	csv := batchCSV([]string{"age", "farmer_id"}, map[string]string{"age": "33", "farmer_id": "F-77"})
	rec := srv.do(uploadRequest(t, "/batch", csv))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Missing features:", "Extra features: farmer_id", "<td>F-77</td>"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
}
