package academic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAcademicStore struct {
	classes  map[primitive.ObjectID]*Class
	subjects map[primitive.ObjectID]*Subject
	teachers map[primitive.ObjectID]*Teacher
	scores   []*Score
}

func newFakeAcademicStore() *fakeAcademicStore {
	return &fakeAcademicStore{
		classes:  make(map[primitive.ObjectID]*Class),
		subjects: make(map[primitive.ObjectID]*Subject),
		teachers: make(map[primitive.ObjectID]*Teacher),
	}
}

func (f *fakeAcademicStore) CreateClass(ctx context.Context, class *Class) error {
	f.classes[class.ID] = class
	return nil
}

func (f *fakeAcademicStore) FindClassByID(ctx context.Context, id primitive.ObjectID) (*Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return nil, ErrClassNotFound
	}
	return class, nil
}

func (f *fakeAcademicStore) ListClassesBySchool(ctx context.Context, schoolID primitive.ObjectID) ([]*Class, error) {
	var out []*Class
	for _, class := range f.classes {
		if class.SchoolID == schoolID {
			out = append(out, class)
		}
	}
	return out, nil
}

func (f *fakeAcademicStore) AddStudentToClass(ctx context.Context, classID, studentID primitive.ObjectID) error {
	class, ok := f.classes[classID]
	if !ok {
		return ErrClassNotFound
	}
	for _, id := range class.StudentIDs {
		if id == studentID {
			return nil
		}
	}
	class.StudentIDs = append(class.StudentIDs, studentID)
	return nil
}

func (f *fakeAcademicStore) DeleteClass(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.classes[id]; !ok {
		return ErrClassNotFound
	}
	delete(f.classes, id)
	return nil
}

func (f *fakeAcademicStore) CreateSubject(ctx context.Context, subject *Subject) error {
	f.subjects[subject.ID] = subject
	return nil
}

func (f *fakeAcademicStore) FindSubjectByID(ctx context.Context, id primitive.ObjectID) (*Subject, error) {
	subject, ok := f.subjects[id]
	if !ok {
		return nil, ErrSubjectNotFound
	}
	return subject, nil
}

func (f *fakeAcademicStore) ListSubjectsBySchool(ctx context.Context, schoolID primitive.ObjectID) ([]*Subject, error) {
	var out []*Subject
	for _, subject := range f.subjects {
		if subject.SchoolID == schoolID {
			out = append(out, subject)
		}
	}
	return out, nil
}

func (f *fakeAcademicStore) DeleteSubject(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.subjects[id]; !ok {
		return ErrSubjectNotFound
	}
	delete(f.subjects, id)
	return nil
}

func (f *fakeAcademicStore) CreateTeacher(ctx context.Context, teacher *Teacher) error {
	f.teachers[teacher.ID] = teacher
	return nil
}

func (f *fakeAcademicStore) FindTeacherByID(ctx context.Context, id primitive.ObjectID) (*Teacher, error) {
	teacher, ok := f.teachers[id]
	if !ok {
		return nil, ErrTeacherNotFound
	}
	return teacher, nil
}

func (f *fakeAcademicStore) ListTeachersBySchool(ctx context.Context, schoolID primitive.ObjectID) ([]*Teacher, error) {
	var out []*Teacher
	for _, teacher := range f.teachers {
		if teacher.SchoolID == schoolID {
			out = append(out, teacher)
		}
	}
	return out, nil
}

func (f *fakeAcademicStore) DeleteTeacher(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.teachers[id]; !ok {
		return ErrTeacherNotFound
	}
	delete(f.teachers, id)
	return nil
}

func (f *fakeAcademicStore) CreateScore(ctx context.Context, score *Score) error {
	f.scores = append(f.scores, score)
	return nil
}

func (f *fakeAcademicStore) FindScores(ctx context.Context, studentID, classID primitive.ObjectID) ([]*Score, error) {
	var out []*Score
	for _, score := range f.scores {
		if score.StudentID == studentID && score.ClassID == classID {
			out = append(out, score)
		}
	}
	return out, nil
}

func (f *fakeAcademicStore) UpdateScore(ctx context.Context, id primitive.ObjectID, caScore, examScore, finalScore float64) error {
	for _, score := range f.scores {
		if score.ID == id {
			score.CAScore = caScore
			score.ExamScore = examScore
			score.FinalScore = finalScore
			score.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrScoreNotFound
}

func (f *fakeAcademicStore) DeleteScore(ctx context.Context, id primitive.ObjectID) error {
	for i, score := range f.scores {
		if score.ID == id {
			f.scores = append(f.scores[:i], f.scores[i+1:]...)
			return nil
		}
	}
	return ErrScoreNotFound
}

func (f *fakeAcademicStore) addSubject(schoolID primitive.ObjectID, name string) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.subjects[id] = &Subject{ID: id, SchoolID: schoolID, Name: name}
	return id
}

func TestLetterGrade(t *testing.T) {
	assert.Equal(t, "A", LetterGrade(95))
	assert.Equal(t, "A", LetterGrade(90))
	assert.Equal(t, "B", LetterGrade(89.9))
	assert.Equal(t, "B", LetterGrade(80))
	assert.Equal(t, "C", LetterGrade(70))
	assert.Equal(t, "D", LetterGrade(60))
	assert.Equal(t, "F", LetterGrade(59.9))
	assert.Equal(t, "F", LetterGrade(0))
}

func TestRecordScoreComputesFinal(t *testing.T) {
	store := newFakeAcademicStore()
	service := NewAcademicService(store)

	score, err := service.RecordScore(context.Background(), RecordScoreRequest{
		StudentID: primitive.NewObjectID().Hex(),
		ClassID:   primitive.NewObjectID().Hex(),
		SubjectID: primitive.NewObjectID().Hex(),
		ExamType:  "final",
		CAScore:   28,
		ExamScore: 55,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(83), score.FinalScore)
	assert.Len(t, store.scores, 1)
}

func TestResultsForStudent(t *testing.T) {
	store := newFakeAcademicStore()
	service := NewAcademicService(store)

	schoolID := primitive.NewObjectID()
	studentID := primitive.NewObjectID()
	classID := primitive.NewObjectID()
	mathID := store.addSubject(schoolID, "Mathematics")
	englishID := store.addSubject(schoolID, "English")

	store.scores = append(store.scores,
		&Score{ID: primitive.NewObjectID(), StudentID: studentID, ClassID: classID, SubjectID: mathID, FinalScore: 92},
		&Score{ID: primitive.NewObjectID(), StudentID: studentID, ClassID: classID, SubjectID: englishID, FinalScore: 74},
	)

	sheet, err := service.ResultsForStudent(context.Background(), studentID, classID)
	require.NoError(t, err)

	require.Len(t, sheet.Subjects, 2)
	assert.Equal(t, "Mathematics", sheet.Subjects[0].Subject)
	assert.Equal(t, "A", sheet.Subjects[0].Grade)
	assert.Equal(t, "C", sheet.Subjects[1].Grade)
	assert.Equal(t, 2, sheet.Summary.TotalSubjects)
	assert.Equal(t, float64(166), sheet.Summary.TotalScore)
	assert.Equal(t, float64(83), sheet.Summary.AverageScore)
	assert.Equal(t, "B", sheet.Summary.OverallGrade)
}

func TestResultsForStudentUnknownSubject(t *testing.T) {
	store := newFakeAcademicStore()
	service := NewAcademicService(store)

	studentID := primitive.NewObjectID()
	classID := primitive.NewObjectID()
	store.scores = append(store.scores, &Score{
		ID:         primitive.NewObjectID(),
		StudentID:  studentID,
		ClassID:    classID,
		SubjectID:  primitive.NewObjectID(),
		FinalScore: 65,
	})

	sheet, err := service.ResultsForStudent(context.Background(), studentID, classID)
	require.NoError(t, err)
	require.Len(t, sheet.Subjects, 1)
	assert.Equal(t, "Unknown", sheet.Subjects[0].Subject)
}

func TestResultsForStudentEmpty(t *testing.T) {
	store := newFakeAcademicStore()
	service := NewAcademicService(store)

	sheet, err := service.ResultsForStudent(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, sheet.Subjects)
	assert.Equal(t, 0, sheet.Summary.TotalSubjects)
	assert.Equal(t, "F", sheet.Summary.OverallGrade)
}

func TestClassContainsStudent(t *testing.T) {
	store := newFakeAcademicStore()
	service := NewAcademicService(store)

	studentID := primitive.NewObjectID()
	classID := primitive.NewObjectID()
	store.classes[classID] = &Class{ID: classID, StudentIDs: []primitive.ObjectID{studentID}}

	enrolled, err := service.ClassContainsStudent(context.Background(), classID, studentID)
	require.NoError(t, err)
	assert.True(t, enrolled)

	enrolled, err = service.ClassContainsStudent(context.Background(), classID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.False(t, enrolled)

	_, err = service.ClassContainsStudent(context.Background(), primitive.NewObjectID(), studentID)
	assert.ErrorIs(t, err, ErrClassNotFound)
}

func TestAddStudentToClassDeduplicates(t *testing.T) {
	store := newFakeAcademicStore()
	service := NewAcademicService(store)

	studentID := primitive.NewObjectID()
	classID := primitive.NewObjectID()
	store.classes[classID] = &Class{ID: classID}

	require.NoError(t, service.AddStudentToClass(context.Background(), classID, studentID))
	require.NoError(t, service.AddStudentToClass(context.Background(), classID, studentID))
	assert.Len(t, store.classes[classID].StudentIDs, 1)
}
