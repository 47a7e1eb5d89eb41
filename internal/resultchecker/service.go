package resultchecker

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"SmartScore/internal/academic"
	"SmartScore/internal/directory"
)

// TokenStore is the repository surface the service depends on.
type TokenStore interface {
	UpsertToken(ctx context.Context, studentID, classID primitive.ObjectID, token string, expiresAt time.Time, maxTrials int) (*ResultCheckerToken, error)
	FindToken(ctx context.Context, studentID, classID primitive.ObjectID) (*ResultCheckerToken, error)
	ConsumeTrial(ctx context.Context, studentID, classID primitive.ObjectID, now time.Time) (*ResultCheckerToken, error)
	ResetTrials(ctx context.Context, studentID, classID primitive.ObjectID) (bool, error)
	AppendLog(ctx context.Context, entry *ResultCheckerLog) error
}

// StudentDirectory resolves students for claim construction.
type StudentDirectory interface {
	FindStudentByID(ctx context.Context, id primitive.ObjectID) (*directory.Student, error)
}

// ClassRoster answers whether a student belongs to a class.
type ClassRoster interface {
	ClassContainsStudent(ctx context.Context, classID, studentID primitive.ObjectID) (bool, error)
}

// ResultSource assembles the score sheet released on a successful check.
type ResultSource interface {
	ResultsForStudent(ctx context.Context, studentID, classID primitive.ObjectID) (*academic.ResultSheet, error)
}

// ResultCheckerService gates result viewing behind a short-lived,
// trial-limited credential distinct from any login.
type ResultCheckerService struct {
	store    TokenStore
	signer   *TokenSigner
	students StudentDirectory
	roster   ClassRoster
	results  ResultSource

	// NowFunc is swapped in tests to exercise expiry.
	NowFunc func() time.Time
}

func NewResultCheckerService(store TokenStore, signer *TokenSigner, students StudentDirectory, roster ClassRoster, results ResultSource) *ResultCheckerService {
	return &ResultCheckerService{
		store:    store,
		signer:   signer,
		students: students,
		roster:   roster,
		results:  results,
		NowFunc:  time.Now,
	}
}

// Generate mints a token for the pair and upserts its record. Repeating
// the call for the same pair deliberately invalidates the earlier token:
// the stored token string changes and the trial count starts over.
func (s *ResultCheckerService) Generate(ctx context.Context, studentID, classID primitive.ObjectID) (*TokenGrant, error) {
	student, err := s.students.FindStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.roster.ClassContainsStudent(ctx, classID, studentID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrStudentNotInClass
	}

	expiresAt := s.NowFunc().Add(TokenValidity)
	token, err := s.signer.Sign(studentID.Hex(), classID.Hex(), student.SchoolID.Hex(), TokenValidity)
	if err != nil {
		return nil, err
	}

	record, err := s.store.UpsertToken(ctx, studentID, classID, token, expiresAt, DefaultMaxTrials)
	if err != nil {
		return nil, err
	}
	return &TokenGrant{
		Token:           token,
		ExpiresAt:       record.ExpiresAt,
		TrialsRemaining: record.MaxTrials,
	}, nil
}

// Verify checks the credential and burns one trial. The signature and
// token type check runs before any database lookup. Every rejection,
// signature failures included, appends an audit log entry.
func (s *ResultCheckerService) Verify(ctx context.Context, token string, studentID, classID primitive.ObjectID) (*VerifyResult, error) {
	claims, err := s.signer.Validate(token)
	if err != nil {
		s.logFailure(ctx, studentID, classID, "signature or token type check failed")
		return nil, ErrInvalidToken
	}
	if claims.StudentID != studentID.Hex() || claims.ClassID != classID.Hex() {
		s.logFailure(ctx, studentID, classID, "token issued for a different student or class")
		return nil, ErrInvalidToken
	}

	record, err := s.store.FindToken(ctx, studentID, classID)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			s.logFailure(ctx, studentID, classID, "no token record for pair")
		}
		return nil, err
	}

	now := s.NowFunc()
	switch {
	case record.Token != token:
		// A newer token was generated for the pair.
		s.logFailure(ctx, studentID, classID, "token superseded by regeneration")
		return nil, ErrInvalidToken
	case !record.Active:
		s.logFailure(ctx, studentID, classID, "token record inactive")
		return nil, ErrTokenExpired
	case !record.ExpiresAt.After(now):
		s.logFailure(ctx, studentID, classID, "token record expired")
		return nil, ErrTokenExpired
	case record.TrialCount >= record.MaxTrials:
		s.logFailure(ctx, studentID, classID, "trial budget exhausted")
		return nil, ErrTrialsExceeded
	}

	updated, err := s.store.ConsumeTrial(ctx, studentID, classID, now)
	if err != nil {
		if errors.Is(err, errNoEligibleToken) {
			// Lost a race to a concurrent verification that took the
			// last trial.
			s.logFailure(ctx, studentID, classID, "trial budget exhausted")
			return nil, ErrTrialsExceeded
		}
		return nil, err
	}

	return &VerifyResult{
		Valid:           true,
		TrialsRemaining: updated.MaxTrials - updated.TrialCount,
	}, nil
}

// GetResults releases the score sheet only after a successful verify.
func (s *ResultCheckerService) GetResults(ctx context.Context, studentID, classID primitive.ObjectID, token string) (*academic.ResultSheet, int, error) {
	verification, err := s.Verify(ctx, token, studentID, classID)
	if err != nil {
		return nil, 0, err
	}
	sheet, err := s.results.ResultsForStudent(ctx, studentID, classID)
	if err != nil {
		return nil, 0, err
	}
	return sheet, verification.TrialsRemaining, nil
}

// ResetTrials is the admin escape hatch for a locked-out parent.
func (s *ResultCheckerService) ResetTrials(ctx context.Context, studentID, classID primitive.ObjectID) (bool, error) {
	return s.store.ResetTrials(ctx, studentID, classID)
}

func (s *ResultCheckerService) logFailure(ctx context.Context, studentID, classID primitive.ObjectID, reason string) {
	entry := &ResultCheckerLog{
		ID:          primitive.NewObjectID(),
		StudentID:   studentID,
		ClassID:     classID,
		AttemptType: "VERIFY",
		Reason:      reason,
		CreatedAt:   s.NowFunc(),
	}
	if err := s.store.AppendLog(ctx, entry); err != nil {
		log.Println("Failed to append result checker log:", err)
	}
}
