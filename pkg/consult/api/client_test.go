package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/synapse-health/guardian/pkg/consult/protocol"
)

func TestStartConsult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/consult/start" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var req StartConsultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.PatientID != "PT-1001" || req.ProviderID != "DR-1" {
			t.Errorf("request %+v", req)
		}
		json.NewEncoder(w).Encode(StartConsultResponse{
			SessionID:   "sess-42",
			PatientName: "Sarah Chen",
			Status:      "active",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.StartConsult(context.Background(), "PT-1001", "DR-1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.SessionID != "sess-42" || resp.PatientName != "Sarah Chen" {
		t.Errorf("response %+v", resp)
	}
}

func TestEndConsult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/consult/sess-42/end" {
			t.Errorf("path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(EndConsultResponse{
			SessionID:       "sess-42",
			SOAPNote:        protocol.SOAPNote{Assessment: "migraine without aura"},
			Billing:         protocol.Billing{InvoiceID: "INV-7", Amount: 150, Status: "paid"},
			DurationMinutes: 18,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.EndConsult(context.Background(), "sess-42")
	if err != nil {
		t.Fatal(err)
	}
	if resp.SOAPNote.Assessment == "" || resp.Billing.InvoiceID != "INV-7" || resp.DurationMinutes != 18 {
		t.Errorf("response %+v", resp)
	}
}

func TestSessionNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Session not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.SessionStatus(context.Background(), "ghost")
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("error type %T", err)
	}
	if !apiErr.IsNotFound() || apiErr.Detail != "Session not found" {
		t.Errorf("error %+v", apiErr)
	}
}

func TestErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Health(context.Background())
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("error type %T", err)
	}
	if !apiErr.IsServerError() {
		t.Errorf("status %d not classified as server error", apiErr.HTTPStatus)
	}
}

func TestGetPatient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/patients/PT-1001" {
			t.Errorf("path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Patient{
			PatientID: "PT-1001",
			Name:      "Sarah Chen",
			Allergies: []string{"penicillin"},
			CurrentMedications: []Medication{
				{Name: "sertraline", Dosage: "100mg", Frequency: "daily", DrugClass: "SSRI"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	p, err := c.GetPatient(context.Background(), "PT-1001")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.CurrentMedications) != 1 || p.CurrentMedications[0].DrugClass != "SSRI" {
		t.Errorf("patient %+v", p)
	}
}

func TestSimulateDangerQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("session_id") != "sess-42" || q.Get("drug_name") != "sumatriptan" {
			t.Errorf("query %v", q)
		}
		json.NewEncoder(w).Encode(DemoDangerResult{
			DemoText: "I'm going to prescribe sumatriptan 50mg for your migraine.",
			SafetyResult: SafetyResult{
				SafetyLevel:          protocol.SafetyDanger,
				RiskScore:            0.9,
				RequiresInterruption: true,
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.SimulateDanger(context.Background(), "sess-42", "sumatriptan")
	if err != nil {
		t.Fatal(err)
	}
	if res.SafetyResult.SafetyLevel != protocol.SafetyDanger {
		t.Errorf("result %+v", res)
	}
}

func TestWSURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8000", "ws://localhost:8000/ws/consult/sess-1"},
		{"https://guardian.example.com", "wss://guardian.example.com/ws/consult/sess-1"},
		{"http://localhost:8000/", "ws://localhost:8000/ws/consult/sess-1"},
	}
	for _, tt := range tests {
		if got := NewClient(tt.base).WSURL("sess-1"); got != tt.want {
			t.Errorf("WSURL(%q) = %q want %q", tt.base, got, tt.want)
		}
	}
}
