package resultchecker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"SmartScore/internal/academic"
	"SmartScore/internal/directory"
)

type pairKey struct {
	studentID primitive.ObjectID
	classID   primitive.ObjectID
}

type fakeTokenStore struct {
	tokens map[pairKey]*ResultCheckerToken
	logs   []*ResultCheckerLog
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[pairKey]*ResultCheckerToken)}
}

func (f *fakeTokenStore) UpsertToken(ctx context.Context, studentID, classID primitive.ObjectID, token string, expiresAt time.Time, maxTrials int) (*ResultCheckerToken, error) {
	key := pairKey{studentID, classID}
	record, ok := f.tokens[key]
	if !ok {
		record = &ResultCheckerToken{
			ID:        primitive.NewObjectID(),
			StudentID: studentID,
			ClassID:   classID,
			CreatedAt: time.Now(),
		}
		f.tokens[key] = record
	}
	record.Token = token
	record.TrialCount = 0
	record.MaxTrials = maxTrials
	record.Active = true
	record.ExpiresAt = expiresAt
	record.UpdatedAt = time.Now()
	return record, nil
}

func (f *fakeTokenStore) FindToken(ctx context.Context, studentID, classID primitive.ObjectID) (*ResultCheckerToken, error) {
	record, ok := f.tokens[pairKey{studentID, classID}]
	if !ok {
		return nil, ErrTokenNotFound
	}
	return record, nil
}

func (f *fakeTokenStore) ConsumeTrial(ctx context.Context, studentID, classID primitive.ObjectID, now time.Time) (*ResultCheckerToken, error) {
	record, ok := f.tokens[pairKey{studentID, classID}]
	if !ok || !record.Active || !record.ExpiresAt.After(now) || record.TrialCount >= record.MaxTrials {
		return nil, errNoEligibleToken
	}
	record.TrialCount++
	record.LastAccessedAt = now
	return record, nil
}

func (f *fakeTokenStore) ResetTrials(ctx context.Context, studentID, classID primitive.ObjectID) (bool, error) {
	record, ok := f.tokens[pairKey{studentID, classID}]
	if !ok {
		return false, nil
	}
	record.TrialCount = 0
	return true, nil
}

func (f *fakeTokenStore) AppendLog(ctx context.Context, entry *ResultCheckerLog) error {
	f.logs = append(f.logs, entry)
	return nil
}

type fakeStudentDirectory struct {
	students map[primitive.ObjectID]*directory.Student
}

func (f *fakeStudentDirectory) FindStudentByID(ctx context.Context, id primitive.ObjectID) (*directory.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, directory.ErrStudentNotFound
	}
	return student, nil
}

type fakeRoster struct {
	enrolled map[pairKey]bool
}

func (f *fakeRoster) ClassContainsStudent(ctx context.Context, classID, studentID primitive.ObjectID) (bool, error) {
	return f.enrolled[pairKey{studentID, classID}], nil
}

type fakeResultSource struct {
	sheet *academic.ResultSheet
}

func (f *fakeResultSource) ResultsForStudent(ctx context.Context, studentID, classID primitive.ObjectID) (*academic.ResultSheet, error) {
	return f.sheet, nil
}

type checkerFixture struct {
	service   *ResultCheckerService
	store     *fakeTokenStore
	studentID primitive.ObjectID
	classID   primitive.ObjectID
}

func newCheckerFixture(t *testing.T) *checkerFixture {
	t.Helper()
	studentID := primitive.NewObjectID()
	classID := primitive.NewObjectID()
	schoolID := primitive.NewObjectID()

	store := newFakeTokenStore()
	students := &fakeStudentDirectory{students: map[primitive.ObjectID]*directory.Student{
		studentID: {ID: studentID, SchoolID: schoolID, Name: "Ada"},
	}}
	roster := &fakeRoster{enrolled: map[pairKey]bool{{studentID, classID}: true}}
	results := &fakeResultSource{sheet: &academic.ResultSheet{
		Subjects: []academic.SubjectResult{{Subject: "Mathematics", Score: 92, Grade: "A"}},
		Summary:  academic.ResultSummary{TotalSubjects: 1, TotalScore: 92, AverageScore: 92, OverallGrade: "A"},
	}}

	service := NewResultCheckerService(store, testSigner(), students, roster, results)
	return &checkerFixture{service: service, store: store, studentID: studentID, classID: classID}
}

func TestGenerateIssuesToken(t *testing.T) {
	fx := newCheckerFixture(t)

	grant, err := fx.service.Generate(context.Background(), fx.studentID, fx.classID)
	require.NoError(t, err)
	assert.NotEmpty(t, grant.Token)
	assert.Equal(t, DefaultMaxTrials, grant.TrialsRemaining)
	assert.True(t, grant.ExpiresAt.After(time.Now().Add(29*24*time.Hour)))

	record, err := fx.store.FindToken(context.Background(), fx.studentID, fx.classID)
	require.NoError(t, err)
	assert.Equal(t, grant.Token, record.Token)
	assert.Zero(t, record.TrialCount)
	assert.True(t, record.Active)
}

func TestGenerateRejectsUnknownStudent(t *testing.T) {
	fx := newCheckerFixture(t)

	_, err := fx.service.Generate(context.Background(), primitive.NewObjectID(), fx.classID)
	assert.ErrorIs(t, err, directory.ErrStudentNotFound)
}

func TestGenerateRejectsStudentOutsideClass(t *testing.T) {
	fx := newCheckerFixture(t)

	_, err := fx.service.Generate(context.Background(), fx.studentID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrStudentNotInClass)
}

func TestVerifyBurnsTrialsThenLocks(t *testing.T) {
	fx := newCheckerFixture(t)
	ctx := context.Background()

	grant, err := fx.service.Generate(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)

	for _, want := range []int{2, 1, 0} {
		result, err := fx.service.Verify(ctx, grant.Token, fx.studentID, fx.classID)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, want, result.TrialsRemaining)
	}

	_, err = fx.service.Verify(ctx, grant.Token, fx.studentID, fx.classID)
	assert.ErrorIs(t, err, ErrTrialsExceeded)

	require.Len(t, fx.store.logs, 1)
	assert.Equal(t, "VERIFY", fx.store.logs[0].AttemptType)
	assert.Equal(t, "trial budget exhausted", fx.store.logs[0].Reason)
}

func TestVerifyRejectsForgedToken(t *testing.T) {
	fx := newCheckerFixture(t)
	ctx := context.Background()

	_, err := fx.service.Generate(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)

	_, err = fx.service.Verify(ctx, "garbage-token", fx.studentID, fx.classID)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The failed attempt is audited and does not touch the trial count.
	record, err := fx.store.FindToken(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)
	assert.Zero(t, record.TrialCount)
	require.Len(t, fx.store.logs, 1)
	assert.Equal(t, "signature or token type check failed", fx.store.logs[0].Reason)
}

func TestVerifyRejectsMismatchedPair(t *testing.T) {
	fx := newCheckerFixture(t)
	ctx := context.Background()

	grant, err := fx.service.Generate(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)

	_, err = fx.service.Verify(ctx, grant.Token, fx.studentID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidToken)
	require.Len(t, fx.store.logs, 1)
	assert.Equal(t, "token issued for a different student or class", fx.store.logs[0].Reason)
}

func TestVerifyRejectsMissingRecord(t *testing.T) {
	fx := newCheckerFixture(t)
	ctx := context.Background()

	token, err := testSigner().Sign(fx.studentID.Hex(), fx.classID.Hex(), primitive.NewObjectID().Hex(), TokenValidity)
	require.NoError(t, err)

	_, err = fx.service.Verify(ctx, token, fx.studentID, fx.classID)
	assert.ErrorIs(t, err, ErrTokenNotFound)
	require.Len(t, fx.store.logs, 1)
	assert.Equal(t, "no token record for pair", fx.store.logs[0].Reason)
}

func TestRegenerateSupersedesOldToken(t *testing.T) {
	fx := newCheckerFixture(t)
	ctx := context.Background()

	first, err := fx.service.Generate(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)
	second, err := fx.service.Generate(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	_, err = fx.service.Verify(ctx, first.Token, fx.studentID, fx.classID)
	assert.ErrorIs(t, err, ErrInvalidToken)
	require.Len(t, fx.store.logs, 1)
	assert.Equal(t, "token superseded by regeneration", fx.store.logs[0].Reason)

	result, err := fx.service.Verify(ctx, second.Token, fx.studentID, fx.classID)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxTrials-1, result.TrialsRemaining)
}

func TestRegenerateResetsTrialCount(t *testing.T) {
	fx := newCheckerFixture(t)
	ctx := context.Background()

	grant, err := fx.service.Generate(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)
	for i := 0; i < DefaultMaxTrials; i++ {
		_, err := fx.service.Verify(ctx, grant.Token, fx.studentID, fx.classID)
		require.NoError(t, err)
	}

	fresh, err := fx.service.Generate(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)

	result, err := fx.service.Verify(ctx, fresh.Token, fx.studentID, fx.classID)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxTrials-1, result.TrialsRemaining)
}

func TestVerifyRejectsExpiredRecord(t *testing.T) {
	fx := newCheckerFixture(t)
	ctx := context.Background()

	grant, err := fx.service.Generate(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)

	fx.service.NowFunc = func() time.Time {
		return time.Now().Add(TokenValidity + time.Hour)
	}

	_, err = fx.service.Verify(ctx, grant.Token, fx.studentID, fx.classID)
	assert.ErrorIs(t, err, ErrTokenExpired)
	require.Len(t, fx.store.logs, 1)
	assert.Equal(t, "token record expired", fx.store.logs[0].Reason)
}

func TestVerifyRejectsInactiveRecord(t *testing.T) {
	fx := newCheckerFixture(t)
	ctx := context.Background()

	grant, err := fx.service.Generate(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)

	record, err := fx.store.FindToken(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)
	record.Active = false

	_, err = fx.service.Verify(ctx, grant.Token, fx.studentID, fx.classID)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestEveryRejectionIsAudited(t *testing.T) {
	fx := newCheckerFixture(t)
	ctx := context.Background()

	grant, err := fx.service.Generate(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)

	_, _ = fx.service.Verify(ctx, "garbage", fx.studentID, fx.classID)
	_, _ = fx.service.Verify(ctx, grant.Token, fx.studentID, primitive.NewObjectID())
	for i := 0; i < DefaultMaxTrials; i++ {
		_, err := fx.service.Verify(ctx, grant.Token, fx.studentID, fx.classID)
		require.NoError(t, err)
	}
	_, _ = fx.service.Verify(ctx, grant.Token, fx.studentID, fx.classID)

	assert.Len(t, fx.store.logs, 3)
}

func TestGetResultsReleasesSheet(t *testing.T) {
	fx := newCheckerFixture(t)
	ctx := context.Background()

	grant, err := fx.service.Generate(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)

	sheet, remaining, err := fx.service.GetResults(ctx, fx.studentID, fx.classID, grant.Token)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxTrials-1, remaining)
	require.Len(t, sheet.Subjects, 1)
	assert.Equal(t, "Mathematics", sheet.Subjects[0].Subject)
}

func TestGetResultsRefusesWithoutValidToken(t *testing.T) {
	fx := newCheckerFixture(t)

	_, _, err := fx.service.GetResults(context.Background(), fx.studentID, fx.classID, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetTrials(t *testing.T) {
	fx := newCheckerFixture(t)
	ctx := context.Background()

	grant, err := fx.service.Generate(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)
	for i := 0; i < DefaultMaxTrials; i++ {
		_, err := fx.service.Verify(ctx, grant.Token, fx.studentID, fx.classID)
		require.NoError(t, err)
	}
	_, err = fx.service.Verify(ctx, grant.Token, fx.studentID, fx.classID)
	require.ErrorIs(t, err, ErrTrialsExceeded)

	reset, err := fx.service.ResetTrials(ctx, fx.studentID, fx.classID)
	require.NoError(t, err)
	assert.True(t, reset)

	result, err := fx.service.Verify(ctx, grant.Token, fx.studentID, fx.classID)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxTrials-1, result.TrialsRemaining)
}

func TestResetTrialsMissingRecord(t *testing.T) {
	fx := newCheckerFixture(t)

	reset, err := fx.service.ResetTrials(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.False(t, reset)
}
