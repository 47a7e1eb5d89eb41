package academic

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Class groups students within a school for a term.
type Class struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	SchoolID   primitive.ObjectID   `bson:"school_id" json:"school_id"`
	Name       string               `bson:"name" json:"name"`             // e.g. "JSS 2A"
	TeacherID  primitive.ObjectID   `bson:"teacher_id,omitempty" json:"teacher_id,omitempty"`
	StudentIDs []primitive.ObjectID `bson:"student_ids" json:"student_ids"`
	CreatedAt  time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at" json:"updated_at"`
}

type Subject struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SchoolID  primitive.ObjectID `bson:"school_id" json:"school_id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Teacher is kept alongside classes since class assignment is its only
// relationship in this service.
type Teacher struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SchoolID  primitive.ObjectID `bson:"school_id" json:"school_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Score is one graded entry for a student in a subject within a class.
type Score struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	StudentID  primitive.ObjectID `bson:"student_id" json:"student_id"`
	ClassID    primitive.ObjectID `bson:"class_id" json:"class_id"`
	SubjectID  primitive.ObjectID `bson:"subject_id" json:"subject_id"`
	ExamType   string             `bson:"exam_type" json:"exam_type"` // midterm, final
	CAScore    float64            `bson:"ca_score" json:"ca_score"`
	ExamScore  float64            `bson:"exam_score" json:"exam_score"`
	FinalScore float64            `bson:"final_score" json:"final_score"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// SubjectResult is a score row resolved against its subject name.
type SubjectResult struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
	Grade   string  `json:"grade"`
}

// ResultSummary aggregates one student's scores for a class.
type ResultSummary struct {
	TotalSubjects int     `json:"total_subjects"`
	TotalScore    float64 `json:"total_score"`
	AverageScore  float64 `json:"average_score"`
	OverallGrade  string  `json:"overall_grade"`
}

// ResultSheet is what the result checker hands to a parent.
type ResultSheet struct {
	Subjects []SubjectResult `json:"subjects"`
	Summary  ResultSummary   `json:"summary"`
}

type CreateClassRequest struct {
	SchoolID   string   `json:"school_id"`
	Name       string   `json:"name"`
	TeacherID  string   `json:"teacher_id"`
	StudentIDs []string `json:"student_ids"`
}

type CreateSubjectRequest struct {
	SchoolID string `json:"school_id"`
	Name     string `json:"name"`
}

type CreateTeacherRequest struct {
	SchoolID string `json:"school_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type RecordScoreRequest struct {
	StudentID string  `json:"student_id"`
	ClassID   string  `json:"class_id"`
	SubjectID string  `json:"subject_id"`
	ExamType  string  `json:"exam_type"`
	CAScore   float64 `json:"ca_score"`
	ExamScore float64 `json:"exam_score"`
}
