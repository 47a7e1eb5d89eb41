package directory

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrSchoolNotFound  = errors.New("school not found")
	ErrStudentNotFound = errors.New("student not found")

	// ErrDuplicateGeneratedID surfaces the unique index on generated_id.
	// The allocator treats it as a lost race and retries.
	ErrDuplicateGeneratedID = errors.New("generated student ID already exists")
)

// DirectoryRepository handles DB operations for schools and students.
type DirectoryRepository struct {
	schoolsCollection  *mongo.Collection
	studentsCollection *mongo.Collection
}

func NewDirectoryRepository(db *mongo.Database) *DirectoryRepository {
	return &DirectoryRepository{
		schoolsCollection:  db.Collection("schools"),
		studentsCollection: db.Collection("students"),
	}
}

// School operations

func (r *DirectoryRepository) CreateSchool(ctx context.Context, school *School) error {
	_, err := r.schoolsCollection.InsertOne(ctx, school)
	return err
}

func (r *DirectoryRepository) FindSchoolByID(ctx context.Context, id primitive.ObjectID) (*School, error) {
	var school School
	err := r.schoolsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&school)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}
	return &school, nil
}

func (r *DirectoryRepository) ListSchools(ctx context.Context) ([]*School, error) {
	cursor, err := r.schoolsCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var schools []*School
	if err := cursor.All(ctx, &schools); err != nil {
		return nil, err
	}
	return schools, nil
}

func (r *DirectoryRepository) UpdateSchool(ctx context.Context, school *School) error {
	school.UpdatedAt = time.Now()
	res, err := r.schoolsCollection.ReplaceOne(ctx, bson.M{"_id": school.ID}, school)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSchoolNotFound
	}
	return nil
}

func (r *DirectoryRepository) DeleteSchool(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.schoolsCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrSchoolNotFound
	}
	return nil
}

// Student operations

func (r *DirectoryRepository) CreateStudent(ctx context.Context, student *Student) error {
	_, err := r.studentsCollection.InsertOne(ctx, student)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateGeneratedID
		}
		return err
	}
	return nil
}

func (r *DirectoryRepository) FindStudentByID(ctx context.Context, id primitive.ObjectID) (*Student, error) {
	var student Student
	err := r.studentsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&student)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &student, nil
}

func (r *DirectoryRepository) FindStudentByGeneratedID(ctx context.Context, generatedID string) (*Student, error) {
	var student Student
	err := r.studentsCollection.FindOne(ctx, bson.M{"generated_id": generatedID}).Decode(&student)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &student, nil
}

func (r *DirectoryRepository) ListStudentsBySchool(ctx context.Context, schoolID primitive.ObjectID) ([]*Student, error) {
	cursor, err := r.studentsCollection.Find(ctx, bson.M{"school_id": schoolID})
	if err != nil {
		return nil, err
	}
	var students []*Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (r *DirectoryRepository) UpdateStudent(ctx context.Context, id primitive.ObjectID, req UpdateStudentRequest) (*Student, error) {
	update := bson.M{"$set": bson.M{
		"name":           req.Name,
		"email":          req.Email,
		"parent_contact": req.ParentContact,
		"updated_at":     time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var student Student
	err := r.studentsCollection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&student)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &student, nil
}

func (r *DirectoryRepository) DeleteStudent(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.studentsCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// MaxGeneratedID returns the lexicographically greatest generated ID with
// the given prefix for a school, or "" when the school has none yet.
func (r *DirectoryRepository) MaxGeneratedID(ctx context.Context, schoolID primitive.ObjectID, prefix string) (string, error) {
	filter := bson.M{
		"school_id":    schoolID,
		"generated_id": bson.M{"$regex": "^" + prefix},
	}
	opts := options.FindOne().SetSort(bson.M{"generated_id": -1})
	var student Student
	err := r.studentsCollection.FindOne(ctx, filter, opts).Decode(&student)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", nil
		}
		return "", err
	}
	return student.GeneratedID, nil
}

// GeneratedIDExists reports whether any student in any school already
// holds the candidate ID.
func (r *DirectoryRepository) GeneratedIDExists(ctx context.Context, generatedID string) (bool, error) {
	count, err := r.studentsCollection.CountDocuments(ctx, bson.M{"generated_id": generatedID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
