package academic

import (
	"context"
	"errors"
	"time"

	"github.com/montanaflynn/stats"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AcademicStore is the repository surface the service depends on; the
// Mongo repository implements it and tests substitute an in-memory fake.
type AcademicStore interface {
	CreateClass(ctx context.Context, class *Class) error
	FindClassByID(ctx context.Context, id primitive.ObjectID) (*Class, error)
	ListClassesBySchool(ctx context.Context, schoolID primitive.ObjectID) ([]*Class, error)
	AddStudentToClass(ctx context.Context, classID, studentID primitive.ObjectID) error
	DeleteClass(ctx context.Context, id primitive.ObjectID) error

	CreateSubject(ctx context.Context, subject *Subject) error
	FindSubjectByID(ctx context.Context, id primitive.ObjectID) (*Subject, error)
	ListSubjectsBySchool(ctx context.Context, schoolID primitive.ObjectID) ([]*Subject, error)
	DeleteSubject(ctx context.Context, id primitive.ObjectID) error

	CreateTeacher(ctx context.Context, teacher *Teacher) error
	FindTeacherByID(ctx context.Context, id primitive.ObjectID) (*Teacher, error)
	ListTeachersBySchool(ctx context.Context, schoolID primitive.ObjectID) ([]*Teacher, error)
	DeleteTeacher(ctx context.Context, id primitive.ObjectID) error

	CreateScore(ctx context.Context, score *Score) error
	FindScores(ctx context.Context, studentID, classID primitive.ObjectID) ([]*Score, error)
	UpdateScore(ctx context.Context, id primitive.ObjectID, caScore, examScore, finalScore float64) error
	DeleteScore(ctx context.Context, id primitive.ObjectID) error
}

// AcademicService handles business logic for classes, subjects, teachers
// and scores.
type AcademicService struct {
	store AcademicStore
}

func NewAcademicService(store AcademicStore) *AcademicService {
	return &AcademicService{store: store}
}

func (s *AcademicService) CreateClass(ctx context.Context, req CreateClassRequest) (*Class, error) {
	schoolID, err := primitive.ObjectIDFromHex(req.SchoolID)
	if err != nil {
		return nil, errors.New("invalid school ID")
	}
	class := &Class{
		ID:        primitive.NewObjectID(),
		SchoolID:  schoolID,
		Name:      req.Name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if req.TeacherID != "" {
		teacherID, err := primitive.ObjectIDFromHex(req.TeacherID)
		if err != nil {
			return nil, errors.New("invalid teacher ID")
		}
		class.TeacherID = teacherID
	}
	for _, raw := range req.StudentIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, errors.New("invalid student ID")
		}
		class.StudentIDs = append(class.StudentIDs, id)
	}
	if err := s.store.CreateClass(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *AcademicService) GetClass(ctx context.Context, id primitive.ObjectID) (*Class, error) {
	return s.store.FindClassByID(ctx, id)
}

func (s *AcademicService) ListClasses(ctx context.Context, schoolID primitive.ObjectID) ([]*Class, error) {
	return s.store.ListClassesBySchool(ctx, schoolID)
}

func (s *AcademicService) AddStudentToClass(ctx context.Context, classID, studentID primitive.ObjectID) error {
	return s.store.AddStudentToClass(ctx, classID, studentID)
}

func (s *AcademicService) DeleteClass(ctx context.Context, id primitive.ObjectID) error {
	return s.store.DeleteClass(ctx, id)
}

// ClassContainsStudent reports whether the student is enrolled in the
// class roster.
func (s *AcademicService) ClassContainsStudent(ctx context.Context, classID, studentID primitive.ObjectID) (bool, error) {
	class, err := s.store.FindClassByID(ctx, classID)
	if err != nil {
		return false, err
	}
	for _, id := range class.StudentIDs {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *AcademicService) CreateSubject(ctx context.Context, req CreateSubjectRequest) (*Subject, error) {
	schoolID, err := primitive.ObjectIDFromHex(req.SchoolID)
	if err != nil {
		return nil, errors.New("invalid school ID")
	}
	subject := &Subject{
		ID:        primitive.NewObjectID(),
		SchoolID:  schoolID,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateSubject(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *AcademicService) ListSubjects(ctx context.Context, schoolID primitive.ObjectID) ([]*Subject, error) {
	return s.store.ListSubjectsBySchool(ctx, schoolID)
}

func (s *AcademicService) DeleteSubject(ctx context.Context, id primitive.ObjectID) error {
	return s.store.DeleteSubject(ctx, id)
}

func (s *AcademicService) CreateTeacher(ctx context.Context, req CreateTeacherRequest) (*Teacher, error) {
	schoolID, err := primitive.ObjectIDFromHex(req.SchoolID)
	if err != nil {
		return nil, errors.New("invalid school ID")
	}
	teacher := &Teacher{
		ID:        primitive.NewObjectID(),
		SchoolID:  schoolID,
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateTeacher(ctx, teacher); err != nil {
		return nil, err
	}
	return teacher, nil
}

func (s *AcademicService) ListTeachers(ctx context.Context, schoolID primitive.ObjectID) ([]*Teacher, error) {
	return s.store.ListTeachersBySchool(ctx, schoolID)
}

func (s *AcademicService) DeleteTeacher(ctx context.Context, id primitive.ObjectID) error {
	return s.store.DeleteTeacher(ctx, id)
}

func (s *AcademicService) RecordScore(ctx context.Context, req RecordScoreRequest) (*Score, error) {
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		return nil, errors.New("invalid student ID")
	}
	classID, err := primitive.ObjectIDFromHex(req.ClassID)
	if err != nil {
		return nil, errors.New("invalid class ID")
	}
	subjectID, err := primitive.ObjectIDFromHex(req.SubjectID)
	if err != nil {
		return nil, errors.New("invalid subject ID")
	}
	score := &Score{
		ID:         primitive.NewObjectID(),
		StudentID:  studentID,
		ClassID:    classID,
		SubjectID:  subjectID,
		ExamType:   req.ExamType,
		CAScore:    req.CAScore,
		ExamScore:  req.ExamScore,
		FinalScore: req.CAScore + req.ExamScore,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.store.CreateScore(ctx, score); err != nil {
		return nil, err
	}
	return score, nil
}

// ResultsForStudent assembles one student's result sheet for a class:
// per-subject scores with letter grades plus an averaged summary.
func (s *AcademicService) ResultsForStudent(ctx context.Context, studentID, classID primitive.ObjectID) (*ResultSheet, error) {
	scores, err := s.store.FindScores(ctx, studentID, classID)
	if err != nil {
		return nil, err
	}

	sheet := &ResultSheet{Subjects: make([]SubjectResult, 0, len(scores))}
	values := make([]float64, 0, len(scores))
	for _, score := range scores {
		subjectName := "Unknown"
		if subject, err := s.store.FindSubjectByID(ctx, score.SubjectID); err == nil {
			subjectName = subject.Name
		}
		sheet.Subjects = append(sheet.Subjects, SubjectResult{
			Subject: subjectName,
			Score:   score.FinalScore,
			Grade:   LetterGrade(score.FinalScore),
		})
		values = append(values, score.FinalScore)
	}

	sheet.Summary.TotalSubjects = len(scores)
	if len(values) > 0 {
		total, _ := stats.Sum(values)
		mean, _ := stats.Mean(values)
		rounded, _ := stats.Round(mean, 2)
		sheet.Summary.TotalScore = total
		sheet.Summary.AverageScore = rounded
		sheet.Summary.OverallGrade = LetterGrade(mean)
	} else {
		sheet.Summary.OverallGrade = "F"
	}
	return sheet, nil
}
