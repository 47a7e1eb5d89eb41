package resultchecker

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// TokenTypeResultChecker is the claim value that separates result
	// checker tokens from login JWTs signed with the same key family.
	TokenTypeResultChecker = "RESULT_CHECKER"

	// DefaultMaxTrials bounds brute-force guessing on a shared code.
	DefaultMaxTrials = 3

	// TokenValidity is how long an issued token stays usable.
	TokenValidity = 30 * 24 * time.Hour
)

var (
	ErrInvalidToken      = errors.New("invalid result checker token")
	ErrTokenNotFound     = errors.New("no result checker token for this student and class")
	ErrTokenExpired      = errors.New("result checker token expired")
	ErrTrialsExceeded    = errors.New("maximum verification attempts exceeded")
	ErrStudentNotInClass = errors.New("student does not belong to this class")
)

// ResultCheckerToken is the single record per (student, class) pair.
// Generating again for the same pair updates this record in place:
// trial count back to zero, token string replaced, expiry extended.
type ResultCheckerToken struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	StudentID      primitive.ObjectID `bson:"student_id" json:"student_id"`
	ClassID        primitive.ObjectID `bson:"class_id" json:"class_id"`
	Token          string             `bson:"token" json:"-"`
	TrialCount     int                `bson:"trial_count" json:"trial_count"`
	MaxTrials      int                `bson:"max_trials" json:"max_trials"`
	Active         bool               `bson:"active" json:"active"`
	ExpiresAt      time.Time          `bson:"expires_at" json:"expires_at"`
	LastAccessedAt time.Time          `bson:"last_accessed_at" json:"last_accessed_at"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// ResultCheckerLog is an append-only audit entry for a failed
// verification attempt. Rows are never mutated or deleted.
type ResultCheckerLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	StudentID   primitive.ObjectID `bson:"student_id" json:"student_id"`
	ClassID     primitive.ObjectID `bson:"class_id" json:"class_id"`
	AttemptType string             `bson:"attempt_type" json:"attempt_type"`
	Reason      string             `bson:"reason" json:"reason"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// TokenGrant is what generate-token returns to the caller.
type TokenGrant struct {
	Token           string    `json:"token"`
	ExpiresAt       time.Time `json:"expiresAt"`
	TrialsRemaining int       `json:"trialsRemaining"`
}

// VerifyResult reports a successful verification.
type VerifyResult struct {
	Valid           bool `json:"valid"`
	TrialsRemaining int  `json:"trialsRemaining"`
}
