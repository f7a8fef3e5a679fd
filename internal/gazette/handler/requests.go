package handler

import (
	"strings"
	"time"

	"gazette/internal/gazette/linker"
	"gazette/internal/gazette/models"
	id "gazette/pkg/domain"
	dErrors "gazette/pkg/domain-errors"
)

// LinkFamilyRequest is the HTTP request body for POST /gazette/families.
type LinkFamilyRequest struct {
	CurrentName    string               `json:"current_name"`
	Variants       []VariantNameRequest `json:"variants,omitempty"`
	IssueNumber    string               `json:"issue_number"`
	ItemNumber     string               `json:"item_number"`
	SourceDocument string               `json:"source_document"`
	NoticeType     string               `json:"notice_type,omitempty"`
	IssueDate      string               `json:"issue_date,omitempty"`
	IssuePage      *int                 `json:"issue_page,omitempty"`
	LinkedPersonID string               `json:"linked_person_id,omitempty"`

	// Parsed values (populated by Validate)
	parsed linker.FamilyInput
}

// VariantNameRequest is one non-master name row in a link request.
type VariantNameRequest struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *LinkFamilyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}

	r.CurrentName = strings.TrimSpace(r.CurrentName)
	r.IssueNumber = strings.TrimSpace(r.IssueNumber)
	r.ItemNumber = strings.TrimSpace(r.ItemNumber)
	r.SourceDocument = strings.TrimSpace(r.SourceDocument)
	if r.IssueNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "issue_number is required")
	}
	if r.ItemNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "item_number is required")
	}
	if r.SourceDocument == "" {
		return dErrors.New(dErrors.CodeValidation, "source_document is required")
	}

	in := linker.FamilyInput{
		CurrentName:    r.CurrentName,
		IssueNumber:    r.IssueNumber,
		ItemNumber:     r.ItemNumber,
		SourceDocument: r.SourceDocument,
		NoticeType:     models.NoticeType(r.NoticeType),
		IssuePage:      r.IssuePage,
	}

	for _, v := range r.Variants {
		in.Variants = append(in.Variants, linker.VariantName{
			Role: models.NameRole(strings.TrimSpace(v.Role)),
			Name: v.Name,
		})
	}

	if r.IssueDate != "" {
		issued, err := time.Parse("2006-01-02", r.IssueDate)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "issue_date must be YYYY-MM-DD")
		}
		in.IssueDate = &issued
	}

	if r.LinkedPersonID != "" {
		pid, err := id.ParsePersonID(r.LinkedPersonID)
		if err != nil {
			return err
		}
		in.LinkedPersonID = &pid
	}

	r.parsed = in
	return nil
}

// ParsedInput returns the validated family input.
func (r *LinkFamilyRequest) ParsedInput() linker.FamilyInput {
	return r.parsed
}

// MissingReportRequest is the body for POST /gazette/issues/{issue}/missing-report.
type MissingReportRequest struct {
	StartItemNumber string `json:"start_item_number"`
	EndItemNumber   string `json:"end_item_number"`
	NoticeType      string `json:"notice_type,omitempty"`
	Note            string `json:"note,omitempty"`
}

func (r *MissingReportRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	r.StartItemNumber = strings.TrimSpace(r.StartItemNumber)
	r.EndItemNumber = strings.TrimSpace(r.EndItemNumber)
	if r.StartItemNumber == "" || r.EndItemNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "start_item_number and end_item_number are required")
	}
	return nil
}

// UpdateMasterRequest is the body for PATCH /gazette/families/{key}/master.
// All fields are optional; empty fields leave the stored value untouched.
type UpdateMasterRequest struct {
	CurrentName    string `json:"current_name,omitempty"`
	IssueNumber    string `json:"issue_number,omitempty"`
	SourceDocument string `json:"source_document,omitempty"`
}

func (r *UpdateMasterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	r.CurrentName = strings.TrimSpace(r.CurrentName)
	r.IssueNumber = strings.TrimSpace(r.IssueNumber)
	r.SourceDocument = strings.TrimSpace(r.SourceDocument)
	return nil
}

// SharedAttributes converts the patch into the domain value.
func (r *UpdateMasterRequest) SharedAttributes() models.SharedAttributes {
	return models.SharedAttributes{
		CurrentName:    r.CurrentName,
		IssueNumber:    r.IssueNumber,
		SourceDocument: r.SourceDocument,
	}
}

// VerifyRequest is the body for POST /gazette/records/{id}/verify.
type VerifyRequest struct {
	Note string `json:"note,omitempty"`
}

// ReconcileItemRequest is the body for PATCH /gazette/records/{id}/item-number.
type ReconcileItemRequest struct {
	ItemNumber string `json:"item_number"`
}

func (r *ReconcileItemRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	r.ItemNumber = strings.TrimSpace(r.ItemNumber)
	if r.ItemNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "item_number is required")
	}
	return nil
}
