package service

import (
	"context"
	"errors"

	"gazette/internal/gazette/itemno"
	"gazette/internal/gazette/linker"
	"gazette/internal/gazette/models"
	id "gazette/pkg/domain"
	dErrors "gazette/pkg/domain-errors"
	"gazette/pkg/platform/sentinel"
	"gazette/pkg/requestcontext"
)

// linkSequence is the sequence counter used for key derivation. A source
// event repeating under the same (source, item) pair is a duplicate to
// detect, not a new family, so the counter stays fixed.
const linkSequence = 1

// LinkIdentityFamily constructs and persists one identity family: a
// master record with the current name plus variant rows, all under a
// deterministic linkage key. The write is all-or-nothing.
//
// Re-linking the same source event derives the same key and fails with a
// conflict the caller can read as "already ingested"; it never silently
// duplicates the family.
func (s *Service) LinkIdentityFamily(ctx context.Context, in linker.FamilyInput) (*models.LinkResult, error) {
	now := requestcontext.Now(ctx)
	issueYear := now.Year()
	if in.IssueDate != nil {
		issueYear = in.IssueDate.Year()
	}

	var result *models.LinkResult
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		family, err := linker.NewFamily(in, issueYear, linkSequence, now)
		if err != nil {
			return err
		}

		if err := s.records.CreateFamily(txCtx, family); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				s.metrics.IncLinkageCollisions()
				return dErrors.Wrap(err, dErrors.CodeConflict,
					"identity family already linked for this source event")
			}
			return wrapStoreErr(err, "family not found")
		}

		variantIDs := make([]id.RecordID, len(family.Variants))
		for i, v := range family.Variants {
			variantIDs[i] = v.ID
		}
		result = &models.LinkResult{
			LinkageKey: family.LinkageKey(),
			MasterID:   family.Master.ID,
			VariantIDs: variantIDs,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncFamiliesLinked()
	s.logger.Info("identity family linked",
		"linkage_key", result.LinkageKey.String(),
		"issue_number", in.IssueNumber,
		"item_number", in.ItemNumber,
		"variants", len(result.VariantIDs),
		"request_id", requestcontext.RequestID(ctx))
	return result, nil
}

// GetFamily retrieves a full identity family by its linkage key.
func (s *Service) GetFamily(ctx context.Context, key id.LinkageKey) (*models.IdentityFamily, error) {
	if key == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "linkage key is required")
	}
	members, err := s.records.FindFamily(ctx, key)
	if err != nil {
		return nil, wrapStoreErr(err, "identity family not found")
	}
	return assembleFamily(members)
}

// GetFamilyByMember retrieves the family any member record belongs to.
func (s *Service) GetFamilyByMember(ctx context.Context, recordID id.RecordID) (*models.IdentityFamily, error) {
	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, wrapStoreErr(err, "record not found")
	}
	return s.GetFamily(ctx, record.LinkageKey)
}

// UpdateMaster updates the shared attributes on a family and propagates
// them to every variant row in the same transaction. Partial propagation
// is not an outcome: the write either covers the whole family or nothing.
func (s *Service) UpdateMaster(ctx context.Context, key id.LinkageKey, shared models.SharedAttributes) (*models.IdentityFamily, error) {
	if key == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "linkage key is required")
	}
	if shared == (models.SharedAttributes{}) {
		return nil, dErrors.New(dErrors.CodeValidation, "no shared attributes to update")
	}

	var family *models.IdentityFamily
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.records.UpdateFamilyShared(txCtx, key, shared); err != nil {
			return wrapStoreErr(err, "identity family not found")
		}
		members, err := s.records.FindFamily(txCtx, key)
		if err != nil {
			return wrapStoreErr(err, "identity family not found")
		}
		family, err = assembleFamily(members)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("family shared attributes propagated",
		"linkage_key", key.String(),
		"members", len(family.All()),
		"request_id", requestcontext.RequestID(ctx))
	return family, nil
}

// MarkVerified moves a record from unverified to verified. The transition
// only happens through this explicit reviewer action; the engine's
// reports justify it but never trigger it.
func (s *Service) MarkVerified(ctx context.Context, recordID id.RecordID, note string) (*models.GazetteRecord, error) {
	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, wrapStoreErr(err, "record not found")
	}
	if err := record.CanVerify(); err != nil {
		return nil, err
	}

	record.ApplyVerification(note, requestcontext.Now(ctx))
	if err := s.records.Update(ctx, record); err != nil {
		return nil, wrapStoreErr(err, "record not found")
	}

	s.metrics.IncRecordsVerified()
	s.logger.Info("record verified",
		"record_id", recordID.String(),
		"reviewer", requestcontext.Reviewer(ctx),
		"request_id", requestcontext.RequestID(ctx))
	return record, nil
}

// ReconcileItemNumber corrects a record's item number, retaining the
// as-printed value in SourceItemNumber for the audit trail.
func (s *Service) ReconcileItemNumber(ctx context.Context, recordID id.RecordID, corrected string) (*models.GazetteRecord, error) {
	if _, err := itemno.Parse(corrected); err != nil {
		return nil, err
	}

	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, wrapStoreErr(err, "record not found")
	}

	record.ReconcileItemNumber(corrected, requestcontext.Now(ctx))
	if err := s.records.Update(ctx, record); err != nil {
		return nil, wrapStoreErr(err, "record not found")
	}

	s.logger.Info("item number reconciled",
		"record_id", recordID.String(),
		"item_number", corrected,
		"source_item_number", record.SourceItemNumber,
		"request_id", requestcontext.RequestID(ctx))
	return record, nil
}

func assembleFamily(members []*models.GazetteRecord) (*models.IdentityFamily, error) {
	family := &models.IdentityFamily{}
	for _, m := range members {
		if m.IsMaster() {
			if family.Master != nil {
				return nil, dErrors.New(dErrors.CodeInvariantViolation,
					"stored family has more than one master record")
			}
			family.Master = m
			continue
		}
		family.Variants = append(family.Variants, m)
	}
	if family.Master == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			"stored family has no master record")
	}
	return family, nil
}
