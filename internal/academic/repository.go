package academic

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrClassNotFound   = errors.New("class not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrScoreNotFound   = errors.New("score not found")
)

// AcademicRepository handles DB operations for classes, subjects,
// teachers and scores.
type AcademicRepository struct {
	classesCollection  *mongo.Collection
	subjectsCollection *mongo.Collection
	teachersCollection *mongo.Collection
	scoresCollection   *mongo.Collection
}

func NewAcademicRepository(db *mongo.Database) *AcademicRepository {
	return &AcademicRepository{
		classesCollection:  db.Collection("classes"),
		subjectsCollection: db.Collection("subjects"),
		teachersCollection: db.Collection("teachers"),
		scoresCollection:   db.Collection("scores"),
	}
}

// Class operations

func (r *AcademicRepository) CreateClass(ctx context.Context, class *Class) error {
	_, err := r.classesCollection.InsertOne(ctx, class)
	return err
}

func (r *AcademicRepository) FindClassByID(ctx context.Context, id primitive.ObjectID) (*Class, error) {
	var class Class
	err := r.classesCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&class)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return &class, nil
}

func (r *AcademicRepository) ListClassesBySchool(ctx context.Context, schoolID primitive.ObjectID) ([]*Class, error) {
	cursor, err := r.classesCollection.Find(ctx, bson.M{"school_id": schoolID})
	if err != nil {
		return nil, err
	}
	var classes []*Class
	if err := cursor.All(ctx, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *AcademicRepository) AddStudentToClass(ctx context.Context, classID, studentID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"student_ids": studentID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	res, err := r.classesCollection.UpdateByID(ctx, classID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrClassNotFound
	}
	return nil
}

func (r *AcademicRepository) DeleteClass(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.classesCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrClassNotFound
	}
	return nil
}

// Subject operations

func (r *AcademicRepository) CreateSubject(ctx context.Context, subject *Subject) error {
	_, err := r.subjectsCollection.InsertOne(ctx, subject)
	return err
}

func (r *AcademicRepository) FindSubjectByID(ctx context.Context, id primitive.ObjectID) (*Subject, error) {
	var subject Subject
	err := r.subjectsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&subject)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	return &subject, nil
}

func (r *AcademicRepository) ListSubjectsBySchool(ctx context.Context, schoolID primitive.ObjectID) ([]*Subject, error) {
	cursor, err := r.subjectsCollection.Find(ctx, bson.M{"school_id": schoolID})
	if err != nil {
		return nil, err
	}
	var subjects []*Subject
	if err := cursor.All(ctx, &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *AcademicRepository) DeleteSubject(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.subjectsCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrSubjectNotFound
	}
	return nil
}

// Teacher operations

func (r *AcademicRepository) CreateTeacher(ctx context.Context, teacher *Teacher) error {
	_, err := r.teachersCollection.InsertOne(ctx, teacher)
	return err
}

func (r *AcademicRepository) FindTeacherByID(ctx context.Context, id primitive.ObjectID) (*Teacher, error) {
	var teacher Teacher
	err := r.teachersCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&teacher)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	return &teacher, nil
}

func (r *AcademicRepository) ListTeachersBySchool(ctx context.Context, schoolID primitive.ObjectID) ([]*Teacher, error) {
	cursor, err := r.teachersCollection.Find(ctx, bson.M{"school_id": schoolID})
	if err != nil {
		return nil, err
	}
	var teachers []*Teacher
	if err := cursor.All(ctx, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

func (r *AcademicRepository) DeleteTeacher(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.teachersCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrTeacherNotFound
	}
	return nil
}

// Score operations

func (r *AcademicRepository) CreateScore(ctx context.Context, score *Score) error {
	_, err := r.scoresCollection.InsertOne(ctx, score)
	return err
}

func (r *AcademicRepository) FindScores(ctx context.Context, studentID, classID primitive.ObjectID) ([]*Score, error) {
	cursor, err := r.scoresCollection.Find(ctx, bson.M{"student_id": studentID, "class_id": classID})
	if err != nil {
		return nil, err
	}
	var scores []*Score
	if err := cursor.All(ctx, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *AcademicRepository) UpdateScore(ctx context.Context, id primitive.ObjectID, caScore, examScore, finalScore float64) error {
	update := bson.M{"$set": bson.M{
		"ca_score":    caScore,
		"exam_score":  examScore,
		"final_score": finalScore,
		"updated_at":  time.Now(),
	}}
	res, err := r.scoresCollection.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrScoreNotFound
	}
	return nil
}

func (r *AcademicRepository) DeleteScore(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.scoresCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrScoreNotFound
	}
	return nil
}
