package directory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxAllocationAttempts bounds collision retries. Exhausting it means the
// stored sequence is corrupt, so the caller gets a hard error instead of
// an endless loop.
const maxAllocationAttempts = 5

var ErrAllocationExhausted = errors.New("student ID allocation attempts exhausted")

// IdentifierStore is the slice of the directory repository the allocator
// needs: the school record, the greatest assigned ID for a prefix, and a
// global existence check.
type IdentifierStore interface {
	FindSchoolByID(ctx context.Context, id primitive.ObjectID) (*School, error)
	MaxGeneratedID(ctx context.Context, schoolID primitive.ObjectID, prefix string) (string, error)
	GeneratedIDExists(ctx context.Context, generatedID string) (bool, error)
}

// IdentifierAllocator produces school-scoped student IDs of the form
// INITIALS + YY + "-" + NNNNN, e.g. ABC24-00001. The allocator does not
// reserve the number; the unique index on generated_id is the final
// authority and callers retry on a duplicate key at persistence time.
type IdentifierAllocator struct {
	store IdentifierStore

	// NowFunc is swapped in tests to pin the year segment.
	NowFunc func() time.Time
}

func NewIdentifierAllocator(store IdentifierStore) *IdentifierAllocator {
	return &IdentifierAllocator{store: store, NowFunc: time.Now}
}

// Allocate computes the next free identifier for the school. A candidate
// colliding with an existing ID (possible when another school's initials
// and digits line up) bumps the sequence and tries again, up to
// maxAllocationAttempts.
func (a *IdentifierAllocator) Allocate(ctx context.Context, schoolID primitive.ObjectID) (string, error) {
	school, err := a.store.FindSchoolByID(ctx, schoolID)
	if err != nil {
		return "", err
	}

	initials := school.Initials
	if initials == "" {
		initials = SchoolInitials(school.Name)
	}
	prefix := fmt.Sprintf("%s%02d-", initials, a.NowFunc().Year()%100)

	maxID, err := a.store.MaxGeneratedID(ctx, schoolID, prefix)
	if err != nil {
		return "", err
	}
	seq := 1
	if maxID != "" {
		parsed, err := parseSequence(maxID, prefix)
		if err != nil {
			return "", err
		}
		seq = parsed + 1
	}

	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		candidate := fmt.Sprintf("%s%05d", prefix, seq)
		exists, err := a.store.GeneratedIDExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		log.Printf("Student ID %s already taken, retrying", candidate)
		seq++
	}
	return "", ErrAllocationExhausted
}

func parseSequence(generatedID, prefix string) (int, error) {
	suffix := strings.TrimPrefix(generatedID, prefix)
	seq, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("malformed student ID %q: %w", generatedID, err)
	}
	return seq, nil
}

// SchoolInitials derives up to three uppercase initials from the school
// name, one per word.
func SchoolInitials(name string) string {
	words := strings.Fields(name)
	var b strings.Builder
	for _, w := range words {
		if b.Len() == 3 {
			break
		}
		b.WriteString(strings.ToUpper(w[:1]))
	}
	return b.String()
}

// RandomStudentID is the lighter-weight variant for students without a
// school parent: current year plus a 4-digit random number. Collision
// avoidance is probabilistic only; systems requiring exactness use the
// allocator instead.
func RandomStudentID() string {
	return fmt.Sprintf("%d-%04d", time.Now().Year(), rand.Intn(9000)+1000)
}
