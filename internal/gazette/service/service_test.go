package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"gazette/internal/gazette/linker"
	"gazette/internal/gazette/models"
	"gazette/internal/gazette/service"
	"gazette/internal/gazette/store"
	"gazette/internal/person"
	id "gazette/pkg/domain"
	dErrors "gazette/pkg/domain-errors"
	"gazette/pkg/requestcontext"
	"gazette/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	records *store.InMemory
	persons *person.InMemory
	svc     *service.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = testutil.ContextWithFixedTime()
	s.records = store.NewInMemory()
	s.persons = person.NewInMemory()
	s.svc = service.New(s.records,
		service.WithPersonStore(s.persons),
	)
}

func (s *ServiceSuite) link(itemNumber string, variants ...linker.VariantName) *models.LinkResult {
	s.T().Helper()
	res, err := s.svc.LinkIdentityFamily(s.ctx, linker.FamilyInput{
		CurrentName:    "Jane Mokoena",
		Variants:       variants,
		IssueNumber:    "G94",
		ItemNumber:     itemNumber,
		SourceDocument: "Gazette G94 (2024).PDF",
		NoticeType:     models.NoticeTypeNameChange,
	})
	s.Require().NoError(err)
	return res
}

func (s *ServiceSuite) TestLinkFamilyBuildsDeterministicKey() {
	res := s.link("24001",
		linker.VariantName{Role: models.NameRoleOld, Name: "Jane Dlamini"},
		linker.VariantName{Role: models.NameRoleAlias, Name: "J. Mokoena"},
	)

	s.Equal(id.LinkageKey("2024-gazette-g94-2024-pdf-24001-1"), res.LinkageKey)
	s.Len(res.VariantIDs, 2)

	family, err := s.svc.GetFamily(s.ctx, res.LinkageKey)
	s.Require().NoError(err)
	s.Equal("Jane Mokoena", family.Master.NameValue)
	s.Equal(models.VerificationUnverified, family.Master.VerificationState)
	s.Len(family.Variants, 2)
	for _, v := range family.Variants {
		s.Equal(res.LinkageKey, v.LinkageKey)
		s.Equal("24001", v.ItemNumber)
	}
}

func (s *ServiceSuite) TestLinkFamilyUsesIssueDateYearForKey() {
	issued := time.Date(2019, time.July, 5, 0, 0, 0, 0, time.UTC)
	res, err := s.svc.LinkIdentityFamily(s.ctx, linker.FamilyInput{
		CurrentName:    "Sipho Nkosi",
		IssueNumber:    "G12",
		ItemNumber:     "7",
		SourceDocument: "gazette-g12.pdf",
		IssueDate:      &issued,
	})
	s.Require().NoError(err)
	s.Equal(id.LinkageKey("2019-gazette-g12-pdf-7-1"), res.LinkageKey)
}

func (s *ServiceSuite) TestLinkFamilyRejectsRepeatOfSameSourceEvent() {
	s.link("24001")

	_, err := s.svc.LinkIdentityFamily(s.ctx, linker.FamilyInput{
		CurrentName:    "Somebody Else",
		IssueNumber:    "G94",
		ItemNumber:     "24001",
		SourceDocument: "Gazette G94 (2024).PDF",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestLinkFamilyWithSecondMasterWritesNothing() {
	_, err := s.svc.LinkIdentityFamily(s.ctx, linker.FamilyInput{
		CurrentName:    "Jane Mokoena",
		IssueNumber:    "G94",
		ItemNumber:     "24001",
		SourceDocument: "gazette-g94.pdf",
		Variants: []linker.VariantName{
			{Role: models.NameRoleMaster, Name: "Jane Dlamini"},
		},
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	records, listErr := s.records.List(s.ctx, store.Filter{IssueNumber: "G94"})
	s.Require().NoError(listErr)
	s.Empty(records)
}

func (s *ServiceSuite) TestLinkFamilyRejectsBlankCurrentName() {
	_, err := s.svc.LinkIdentityFamily(s.ctx, linker.FamilyInput{
		CurrentName:    "   ",
		IssueNumber:    "G94",
		ItemNumber:     "24001",
		SourceDocument: "gazette-g94.pdf",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *ServiceSuite) TestGetFamilyByMemberResolvesFromVariant() {
	res := s.link("24001", linker.VariantName{Role: models.NameRoleOld, Name: "Jane Dlamini"})

	family, err := s.svc.GetFamilyByMember(s.ctx, res.VariantIDs[0])
	s.Require().NoError(err)
	s.Equal(res.MasterID, family.Master.ID)
}

func (s *ServiceSuite) TestGetFamilyUnknownKey() {
	_, err := s.svc.GetFamily(s.ctx, "2024-nope-1-1")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestUpdateMasterPropagatesSharedAttributes() {
	res := s.link("24001", linker.VariantName{Role: models.NameRoleOld, Name: "Jane Dlamini"})

	family, err := s.svc.UpdateMaster(s.ctx, res.LinkageKey, models.SharedAttributes{
		CurrentName: "Jane Mokoena-Smith",
		IssueNumber: "G95",
	})
	s.Require().NoError(err)

	s.Equal("Jane Mokoena-Smith", family.Master.NameValue)
	s.Equal("G95", family.Master.IssueNumber)
	s.Require().Len(family.Variants, 1)
	// variant keeps its own name, shares the issue
	s.Equal("Jane Dlamini", family.Variants[0].NameValue)
	s.Equal("G95", family.Variants[0].IssueNumber)
}

func (s *ServiceSuite) TestUpdateMasterRejectsEmptyPatch() {
	res := s.link("24001")

	_, err := s.svc.UpdateMaster(s.ctx, res.LinkageKey, models.SharedAttributes{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestMarkVerifiedTransitionsOnce() {
	res := s.link("24001")
	ctx := requestcontext.WithReviewer(s.ctx, "reviewer-7")

	record, err := s.svc.MarkVerified(ctx, res.MasterID, "matched against source scan")
	s.Require().NoError(err)
	s.Equal(models.VerificationVerified, record.VerificationState)
	s.Require().NotNil(record.VerifiedAt)
	s.Equal(testutil.FixedTime, *record.VerifiedAt)

	_, err = s.svc.MarkVerified(ctx, res.MasterID, "again")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *ServiceSuite) TestReconcileItemNumberKeepsSourceValue() {
	res := s.link("24003")

	record, err := s.svc.ReconcileItemNumber(s.ctx, res.MasterID, "24002")
	s.Require().NoError(err)
	s.Equal("24002", record.ItemNumber)
	s.Equal("24003", record.SourceItemNumber)

	_, err = s.svc.ReconcileItemNumber(s.ctx, res.MasterID, "24-x")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestVerifySequenceReportsGaps() {
	for _, item := range []string{"24001", "24003", "24006"} {
		res, err := s.svc.LinkIdentityFamily(s.ctx, linker.FamilyInput{
			CurrentName:    "Person " + item,
			IssueNumber:    "G94",
			ItemNumber:     item,
			SourceDocument: "gazette-g94-" + item + ".pdf",
		})
		s.Require().NoError(err)
		s.Require().NotNil(res)
	}

	report, err := s.svc.VerifySequence(s.ctx, "G94", "")
	s.Require().NoError(err)

	s.Equal(3, report.TotalItems)
	s.False(report.IsComplete)
	s.Equal([]models.MissingRange{
		{Start: "24002", End: "24002"},
		{Start: "24004", End: "24005"},
	}, report.MissingRanges)
	s.Equal([]string{
		"You missed from 24002 to 24002. Please capture that data.",
		"You missed from 24004 to 24005. Please capture that data.",
	}, report.CorrectionPrompts)

	// Verification is read-only: running it again reports the same state.
	again, err := s.svc.VerifySequence(s.ctx, "G94", "")
	s.Require().NoError(err)
	s.Equal(report, again)
}

func (s *ServiceSuite) TestVerifySequenceEmptyScopeIsComplete() {
	report, err := s.svc.VerifySequence(s.ctx, "G99", "")
	s.Require().NoError(err)
	s.Equal(0, report.TotalItems)
	s.True(report.IsComplete)
	s.Empty(report.MissingRanges)
}

func (s *ServiceSuite) TestVerifySequenceRequiresIssueNumber() {
	_, err := s.svc.VerifySequence(s.ctx, "", "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestReportMissingExpandsRange() {
	for _, item := range []string{"100", "103"} {
		_, err := s.svc.LinkIdentityFamily(s.ctx, linker.FamilyInput{
			CurrentName:    "Person " + item,
			IssueNumber:    "G94",
			ItemNumber:     item,
			SourceDocument: "gazette-g94-" + item + ".pdf",
		})
		s.Require().NoError(err)
	}

	report, err := s.svc.ReportMissing(s.ctx, "G94", "100", "105", "", "operator flagged")
	s.Require().NoError(err)

	s.Equal("You missed from 100 to 105. Please capture that data.", report.CorrectionPrompt)
	s.Equal([]string{"100", "103"}, report.ExistingItemsInRange)
	s.Equal([]string{"101", "102", "104", "105"}, report.ItemsToCapture)
	s.Equal("operator flagged", report.Note)
}

func (s *ServiceSuite) TestReportMissingRejectsInvertedRange() {
	_, err := s.svc.ReportMissing(s.ctx, "G94", "105", "100", "", "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestCheckDuplicatesFlagsCrossFamilyConflicts() {
	// Two families in the same issue claiming the same item number, from
	// different source documents, is the page-boundary double capture.
	for _, src := range []string{"gazette-g94-p1.pdf", "gazette-g94-p2.pdf"} {
		_, err := s.svc.LinkIdentityFamily(s.ctx, linker.FamilyInput{
			CurrentName:    "Jane Mokoena",
			IssueNumber:    "G94",
			ItemNumber:     "24001",
			SourceDocument: src,
			Variants: []linker.VariantName{
				{Role: models.NameRoleOld, Name: "Jane Dlamini"},
			},
		})
		s.Require().NoError(err)
	}

	report, err := s.svc.CheckDuplicates(s.ctx, "G94", "24001")
	s.Require().NoError(err)

	s.Equal(4, report.DuplicateCount)
	s.Len(report.Duplicates, 4)
	s.Equal([]string{"24001"}, report.ConflictingItemNumbers)
}

func (s *ServiceSuite) TestCheckDuplicatesSingleFamilyIsNotAConflict() {
	s.link("24001", linker.VariantName{Role: models.NameRoleOld, Name: "Jane Dlamini"})

	report, err := s.svc.CheckDuplicates(s.ctx, "G94", "24001")
	s.Require().NoError(err)
	s.Equal(2, report.DuplicateCount)
	s.Empty(report.ConflictingItemNumbers)
}

func (s *ServiceSuite) TestCrossReferenceResolvesPersonNames() {
	pid := id.PersonID(uuid.New())
	s.persons.Seed(person.Person{ID: pid, FullName: "Jane Mokoena", CreatedAt: testutil.FixedTime})

	_, err := s.svc.LinkIdentityFamily(s.ctx, linker.FamilyInput{
		CurrentName:    "Jane Mokoena",
		IssueNumber:    "G94",
		ItemNumber:     "24001",
		SourceDocument: "gazette-g94.pdf",
		LinkedPersonID: &pid,
	})
	s.Require().NoError(err)

	report, err := s.svc.CrossReference(s.ctx, "G94", nil)
	s.Require().NoError(err)

	s.Equal(1, report.TotalEntries)
	s.Require().Len(report.Entries, 1)
	s.Equal("Jane Mokoena", report.Entries[0].PersonName)
	s.Require().NotNil(report.Entries[0].LinkedPersonID)
	s.Equal(pid, *report.Entries[0].LinkedPersonID)
}

func (s *ServiceSuite) TestCrossReferenceUnknownPersonFilter() {
	pid := id.PersonID(uuid.New())

	_, err := s.svc.CrossReference(s.ctx, "G94", &pid)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
