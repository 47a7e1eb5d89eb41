package notification

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository handles DB operations for notifications.
type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{collection: db.Collection("notifications")}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, n *Notification) error {
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// UpdateOutcome stores the final status and per-channel results after
// dispatch.
func (r *NotificationRepository) UpdateOutcome(ctx context.Context, id primitive.ObjectID, status string, channels []ChannelOutcome) error {
	update := bson.M{"$set": bson.M{
		"status":     status,
		"channels":   channels,
		"sent_at":    time.Now(),
		"updated_at": time.Now(),
	}}
	res, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]*Notification, error) {
	opts := options.Find().SetSort(bson.M{"sent_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	var notifications []*Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// ListBySchoolSince feeds the stats aggregation.
func (r *NotificationRepository) ListBySchoolSince(ctx context.Context, schoolID primitive.ObjectID, since time.Time) ([]*Notification, error) {
	filter := bson.M{"school_id": schoolID, "created_at": bson.M{"$gte": since}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var notifications []*Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// FindDueScheduled fetches notifications created through the schedule
// path whose delivery time has passed.
func (r *NotificationRepository) FindDueScheduled(ctx context.Context, now time.Time) ([]*Notification, error) {
	filter := bson.M{"status": StatusScheduled, "metadata.scheduled_for": bson.M{"$lte": now}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var notifications []*Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) DeleteNotification(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
