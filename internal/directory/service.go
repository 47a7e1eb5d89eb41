package directory

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrMissingParentContact = errors.New("parent contact information is required")

// DirectoryService handles business logic for schools and students.
type DirectoryService struct {
	repo      *DirectoryRepository
	allocator *IdentifierAllocator
}

func NewDirectoryService(repo *DirectoryRepository, allocator *IdentifierAllocator) *DirectoryService {
	return &DirectoryService{repo: repo, allocator: allocator}
}

func (s *DirectoryService) CreateSchool(ctx context.Context, req CreateSchoolRequest) (*School, error) {
	if req.Name == "" {
		return nil, errors.New("school name is required")
	}
	school := &School{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Initials:  SchoolInitials(req.Name),
		Address:   req.Address,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.repo.CreateSchool(ctx, school); err != nil {
		return nil, err
	}
	return school, nil
}

func (s *DirectoryService) GetSchool(ctx context.Context, id primitive.ObjectID) (*School, error) {
	return s.repo.FindSchoolByID(ctx, id)
}

func (s *DirectoryService) ListSchools(ctx context.Context) ([]*School, error) {
	return s.repo.ListSchools(ctx)
}

func (s *DirectoryService) UpdateSchool(ctx context.Context, id primitive.ObjectID, req UpdateSchoolRequest) (*School, error) {
	school, err := s.repo.FindSchoolByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		school.Name = req.Name
		school.Initials = SchoolInitials(req.Name)
	}
	if req.Address != "" {
		school.Address = req.Address
	}
	if err := s.repo.UpdateSchool(ctx, school); err != nil {
		return nil, err
	}
	return school, nil
}

func (s *DirectoryService) DeleteSchool(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.DeleteSchool(ctx, id)
}

// CreateStudent allocates an identifier and persists the student. A
// duplicate key on insert means a concurrent creation won the same
// sequence number, so allocation is repeated from scratch.
func (s *DirectoryService) CreateStudent(ctx context.Context, req CreateStudentRequest) (*Student, error) {
	if req.ParentContact == (ParentContact{}) {
		return nil, ErrMissingParentContact
	}
	schoolID, err := primitive.ObjectIDFromHex(req.SchoolID)
	if err != nil {
		return nil, errors.New("invalid school ID")
	}

	classIDs := make([]primitive.ObjectID, 0, len(req.ClassIDs))
	for _, raw := range req.ClassIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, errors.New("invalid class ID")
		}
		classIDs = append(classIDs, id)
	}

	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		generatedID, err := s.allocator.Allocate(ctx, schoolID)
		if err != nil {
			return nil, err
		}
		student := &Student{
			ID:            primitive.NewObjectID(),
			SchoolID:      schoolID,
			GeneratedID:   generatedID,
			Name:          req.Name,
			Email:         req.Email,
			ClassIDs:      classIDs,
			ParentContact: req.ParentContact,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		err = s.repo.CreateStudent(ctx, student)
		if err == nil {
			return student, nil
		}
		if !errors.Is(err, ErrDuplicateGeneratedID) {
			return nil, err
		}
		log.Printf("Student ID %s lost the insert race, reallocating", generatedID)
	}
	return nil, ErrAllocationExhausted
}

func (s *DirectoryService) GetStudent(ctx context.Context, id primitive.ObjectID) (*Student, error) {
	return s.repo.FindStudentByID(ctx, id)
}

func (s *DirectoryService) GetStudentByGeneratedID(ctx context.Context, generatedID string) (*Student, error) {
	return s.repo.FindStudentByGeneratedID(ctx, generatedID)
}

func (s *DirectoryService) ListStudents(ctx context.Context, schoolID primitive.ObjectID) ([]*Student, error) {
	return s.repo.ListStudentsBySchool(ctx, schoolID)
}

func (s *DirectoryService) UpdateStudent(ctx context.Context, id primitive.ObjectID, req UpdateStudentRequest) (*Student, error) {
	return s.repo.UpdateStudent(ctx, id, req)
}

func (s *DirectoryService) DeleteStudent(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.DeleteStudent(ctx, id)
}
