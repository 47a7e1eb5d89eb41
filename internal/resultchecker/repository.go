package resultchecker

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// errNoEligibleToken signals that the conditional trial consume matched
// no document; the service re-reads the record to classify why.
var errNoEligibleToken = errors.New("no eligible token record")

// TokenRepository handles DB operations for result checker tokens and
// their audit log.
type TokenRepository struct {
	tokensCollection *mongo.Collection
	logsCollection   *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{
		tokensCollection: db.Collection("result_checker_tokens"),
		logsCollection:   db.Collection("result_checker_logs"),
	}
}

// UpsertToken creates or regenerates the record for a pair: the token
// string is replaced, the trial count reset and the expiry extended. The
// unique (student_id, class_id) index keeps concurrent upserts down to a
// single record.
func (r *TokenRepository) UpsertToken(ctx context.Context, studentID, classID primitive.ObjectID, token string, expiresAt time.Time, maxTrials int) (*ResultCheckerToken, error) {
	now := time.Now()
	filter := bson.M{"student_id": studentID, "class_id": classID}
	update := bson.M{
		"$set": bson.M{
			"token":       token,
			"trial_count": 0,
			"max_trials":  maxTrials,
			"active":      true,
			"expires_at":  expiresAt,
			"updated_at":  now,
		},
		"$setOnInsert": bson.M{
			"student_id": studentID,
			"class_id":   classID,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var record ResultCheckerToken
	if err := r.tokensCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *TokenRepository) FindToken(ctx context.Context, studentID, classID primitive.ObjectID) (*ResultCheckerToken, error) {
	var record ResultCheckerToken
	err := r.tokensCollection.FindOne(ctx, bson.M{"student_id": studentID, "class_id": classID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &record, nil
}

// ConsumeTrial increments the trial counter in a single conditional
// update. The filter requires trial_count < max_trials so two
// overlapping verifications cannot both pass the budget check before
// either increment lands.
func (r *TokenRepository) ConsumeTrial(ctx context.Context, studentID, classID primitive.ObjectID, now time.Time) (*ResultCheckerToken, error) {
	filter := bson.M{
		"student_id": studentID,
		"class_id":   classID,
		"active":     true,
		"expires_at": bson.M{"$gt": now},
		"$expr":      bson.M{"$lt": bson.A{"$trial_count", "$max_trials"}},
	}
	update := bson.M{
		"$inc": bson.M{"trial_count": 1},
		"$set": bson.M{"last_accessed_at": now, "updated_at": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var record ResultCheckerToken
	err := r.tokensCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errNoEligibleToken
		}
		return nil, err
	}
	return &record, nil
}

// ResetTrials zeroes the counter and reactivates the record. It reports
// false when no record exists for the pair so the caller can answer 404
// instead of silently succeeding.
func (r *TokenRepository) ResetTrials(ctx context.Context, studentID, classID primitive.ObjectID) (bool, error) {
	update := bson.M{"$set": bson.M{
		"trial_count": 0,
		"active":      true,
		"updated_at":  time.Now(),
	}}
	res, err := r.tokensCollection.UpdateOne(ctx, bson.M{"student_id": studentID, "class_id": classID}, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *TokenRepository) AppendLog(ctx context.Context, entry *ResultCheckerLog) error {
	_, err := r.logsCollection.InsertOne(ctx, entry)
	return err
}
