package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gazette/internal/gazette/service"
	"gazette/internal/gazette/store"
	"gazette/internal/platform/middleware"
)

type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (*middleware.TokenClaims, error) {
	if token != "reviewer-token" {
		return nil, errors.New("unknown token")
	}
	return &middleware.TokenClaims{ReviewerID: "reviewer-7"}, nil
}

type GazetteHandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestGazetteHandlerSuite(t *testing.T) {
	suite.Run(t, new(GazetteHandlerSuite))
}

func (s *GazetteHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewInMemory(), service.WithLogger(logger))

	s.router = chi.NewRouter()
	s.router.Use(middleware.RequestID)
	New(svc, logger, staticValidator{}).Register(s.router)
}

func (s *GazetteHandlerSuite) do(method, target, token string, body any) *httptest.ResponseRecorder {
	s.T().Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *GazetteHandlerSuite) linkFamily(item, source string) map[string]any {
	s.T().Helper()
	w := s.do(http.MethodPost, "/gazette/families", "reviewer-token", LinkFamilyRequest{
		CurrentName:    "Jane Mokoena",
		IssueNumber:    "G94",
		ItemNumber:     item,
		SourceDocument: source,
		NoticeType:     "name_change",
		IssueDate:      "2024-06-01",
		Variants: []VariantNameRequest{
			{Role: "old", Name: "Jane Dlamini"},
		},
	})
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(s.T(), json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func (s *GazetteHandlerSuite) TestLinkFamilyRequiresAuth() {
	w := s.do(http.MethodPost, "/gazette/families", "", LinkFamilyRequest{})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/gazette/families", "wrong-token", LinkFamilyRequest{})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *GazetteHandlerSuite) TestLinkFamilyAndFetch() {
	resp := s.linkFamily("24001", "gazette-g94.pdf")
	key, _ := resp["linkage_key"].(string)
	s.Equal("2024-gazette-g94-pdf-24001-1", key)

	w := s.do(http.MethodGet, "/gazette/families/"+key, "", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var family FamilyResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&family))
	s.Equal(key, family.LinkageKey)
	s.Require().NotNil(family.Master)
	s.Equal("Jane Mokoena", family.Master.NameValue)
	s.Len(family.Variants, 1)
}

func (s *GazetteHandlerSuite) TestLinkFamilyRepeatConflicts() {
	s.linkFamily("24001", "gazette-g94.pdf")

	w := s.do(http.MethodPost, "/gazette/families", "reviewer-token", LinkFamilyRequest{
		CurrentName:    "Jane Mokoena",
		IssueNumber:    "G94",
		ItemNumber:     "24001",
		SourceDocument: "gazette-g94.pdf",
		IssueDate:      "2024-06-01",
	})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *GazetteHandlerSuite) TestLinkFamilyValidation() {
	w := s.do(http.MethodPost, "/gazette/families", "reviewer-token", LinkFamilyRequest{
		CurrentName: "Jane Mokoena",
		ItemNumber:  "24001",
	})
	s.Equal(http.StatusBadRequest, w.Code)

	var body map[string]string
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
	s.Equal("validation", body["error"])
}

func (s *GazetteHandlerSuite) TestSequenceReport() {
	for _, item := range []string{"24001", "24003"} {
		s.linkFamily(item, "gazette-g94-"+item+".pdf")
	}

	w := s.do(http.MethodGet, "/gazette/issues/G94/sequence", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var report struct {
		TotalItems        int      `json:"total_items"`
		IsComplete        bool     `json:"is_complete"`
		CorrectionPrompts []string `json:"correction_prompts"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&report))
	// master and variant rows share an item number; the report counts
	// unique item numbers
	s.Equal(2, report.TotalItems)
	s.False(report.IsComplete)
	s.Equal([]string{"You missed from 24002 to 24002. Please capture that data."}, report.CorrectionPrompts)
}

func (s *GazetteHandlerSuite) TestMissingReport() {
	s.linkFamily("100", "gazette-g94-100.pdf")

	w := s.do(http.MethodPost, "/gazette/issues/G94/missing-report", "", MissingReportRequest{
		StartItemNumber: "100",
		EndItemNumber:   "103",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var report struct {
		CorrectionPrompt string   `json:"correction_prompt"`
		ItemsToCapture   []string `json:"items_to_capture"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&report))
	s.Equal("You missed from 100 to 103. Please capture that data.", report.CorrectionPrompt)
	s.Equal([]string{"101", "102", "103"}, report.ItemsToCapture)
}

func (s *GazetteHandlerSuite) TestMissingReportRejectsMissingBoundaries() {
	w := s.do(http.MethodPost, "/gazette/issues/G94/missing-report", "", MissingReportRequest{
		StartItemNumber: "100",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *GazetteHandlerSuite) TestDuplicatesEndpoint() {
	s.linkFamily("24001", "gazette-g94-p1.pdf")
	s.linkFamily("24001", "gazette-g94-p2.pdf")

	w := s.do(http.MethodGet, "/gazette/issues/G94/duplicates?item_number=24001", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var report struct {
		DuplicateCount         int      `json:"duplicate_count"`
		ConflictingItemNumbers []string `json:"conflicting_item_numbers"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&report))
	s.Equal(4, report.DuplicateCount)
	s.Equal([]string{"24001"}, report.ConflictingItemNumbers)
}

func (s *GazetteHandlerSuite) TestCrossReferenceRejectsBadPersonID() {
	w := s.do(http.MethodGet, "/gazette/issues/G94/cross-reference?person_id=not-a-uuid", "", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *GazetteHandlerSuite) TestUpdateMasterPropagates() {
	resp := s.linkFamily("24001", "gazette-g94.pdf")
	key, _ := resp["linkage_key"].(string)

	w := s.do(http.MethodPatch, "/gazette/families/"+key+"/master", "reviewer-token", UpdateMasterRequest{
		CurrentName: "Jane Mokoena-Smith",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var family FamilyResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&family))
	s.Equal("Jane Mokoena-Smith", family.Master.NameValue)
	s.Require().Len(family.Variants, 1)
	s.Equal("Jane Dlamini", family.Variants[0].NameValue)
}

func (s *GazetteHandlerSuite) TestVerifyRecord() {
	resp := s.linkFamily("24001", "gazette-g94.pdf")
	masterID, _ := resp["master_id"].(string)

	w := s.do(http.MethodPost, "/gazette/records/"+masterID+"/verify", "reviewer-token", VerifyRequest{
		Note: "matched against source scan",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var record struct {
		VerificationState string `json:"verification_state"`
		VerificationNote  string `json:"verification_note"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&record))
	s.Equal("verified", record.VerificationState)
	s.Equal("matched against source scan", record.VerificationNote)

	// second attempt is rejected
	w = s.do(http.MethodPost, "/gazette/records/"+masterID+"/verify", "reviewer-token", VerifyRequest{})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *GazetteHandlerSuite) TestVerifyRejectsMalformedID() {
	w := s.do(http.MethodPost, "/gazette/records/nope/verify", "reviewer-token", VerifyRequest{})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *GazetteHandlerSuite) TestReconcileItemNumber() {
	resp := s.linkFamily("24003", "gazette-g94.pdf")
	masterID, _ := resp["master_id"].(string)

	w := s.do(http.MethodPatch, "/gazette/records/"+masterID+"/item-number", "reviewer-token", ReconcileItemRequest{
		ItemNumber: "24002",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var record struct {
		ItemNumber       string `json:"item_number"`
		SourceItemNumber string `json:"source_item_number"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&record))
	s.Equal("24002", record.ItemNumber)
	s.Equal("24003", record.SourceItemNumber)
}

func (s *GazetteHandlerSuite) TestFamilyByMemberRoundTrip() {
	resp := s.linkFamily("24001", "gazette-g94.pdf")
	variants, _ := resp["variant_ids"].([]any)
	s.Require().Len(variants, 1)
	variantID, _ := variants[0].(string)

	w := s.do(http.MethodGet, "/gazette/records/"+variantID+"/family", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var family FamilyResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&family))
	s.Equal(resp["master_id"], family.Master.ID.String())
}

func (s *GazetteHandlerSuite) TestUnknownFamilyIs404() {
	w := s.do(http.MethodGet, "/gazette/families/2024-nope-1-1", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
}
