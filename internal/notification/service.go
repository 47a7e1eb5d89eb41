package notification

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"SmartScore/internal/directory"
)

// bulkConcurrency bounds parallel recipients so a large bulk send does
// not overwhelm the outbound mail/SMS provider.
const bulkConcurrency = 5

// NotificationStore is the repository surface the dispatcher depends on.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *Notification) error
	UpdateOutcome(ctx context.Context, id primitive.ObjectID, status string, channels []ChannelOutcome) error
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]*Notification, error)
	ListBySchoolSince(ctx context.Context, schoolID primitive.ObjectID, since time.Time) ([]*Notification, error)
	FindDueScheduled(ctx context.Context, now time.Time) ([]*Notification, error)
	DeleteNotification(ctx context.Context, id primitive.ObjectID) error
}

// StudentDirectory resolves recipients and their parent contacts.
type StudentDirectory interface {
	FindStudentByID(ctx context.Context, id primitive.ObjectID) (*directory.Student, error)
	FindSchoolByID(ctx context.Context, id primitive.ObjectID) (*directory.School, error)
}

// EmailSender and SMSSender are the two delivery capabilities. The
// concrete clients live in internal/config; tests substitute fakes.
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

type SMSSender interface {
	SendSMS(to, message string) error
}

// NotificationService translates a logical notification request into
// per-channel sends and a single persisted record.
type NotificationService struct {
	store    NotificationStore
	students StudentDirectory
	email    EmailSender
	sms      SMSSender
}

func NewNotificationService(store NotificationStore, students StudentDirectory, email EmailSender, sms SMSSender) *NotificationService {
	return &NotificationService{store: store, students: students, email: email, sms: sms}
}

// Send dispatches a custom notification to one student's parent.
func (s *NotificationService) Send(ctx context.Context, studentID primitive.ObjectID, message string, opts SendOptions) (*Notification, error) {
	return s.sendAs(ctx, studentID, message, TypeCustom, "School Notification", opts)
}

// ResultAlert notifies a parent that a new result was published.
func (s *NotificationService) ResultAlert(ctx context.Context, studentID primitive.ObjectID, subject string, finalScore float64) (*Notification, error) {
	student, err := s.students.FindStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	message := fmt.Sprintf("New result available for %s. Subject: %s, Score: %.0f", student.Name, subject, finalScore)
	return s.sendAs(ctx, studentID, message, TypeResultAlert, "New Result Available", SendOptions{})
}

// CAAlert notifies a parent of an updated continuous assessment score.
func (s *NotificationService) CAAlert(ctx context.Context, studentID primitive.ObjectID, subject string, caScore, totalCA float64) (*Notification, error) {
	message := fmt.Sprintf("CA Score Updated: %s - %.0f/%.0f", subject, caScore, totalCA)
	return s.sendAs(ctx, studentID, message, TypeCAAlert, "CA Score Update", SendOptions{})
}

func (s *NotificationService) sendAs(ctx context.Context, studentID primitive.ObjectID, message, notifType, subject string, opts SendOptions) (*Notification, error) {
	opts.applyDefaults()

	student, err := s.students.FindStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	// One record per logical request, regardless of channel count.
	n := &Notification{
		ID:        primitive.NewObjectID(),
		StudentID: student.ID,
		SchoolID:  student.SchoolID,
		Message:   message,
		Type:      notifType,
		Metadata: Metadata{
			Priority:     opts.Priority,
			Template:     opts.Template,
			ScheduledFor: opts.ScheduledFor,
		},
		Status:    StatusSent,
		SentAt:    time.Now(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	schoolName := "School"
	if school, err := s.students.FindSchoolByID(ctx, student.SchoolID); err == nil {
		schoolName = school.Name
	}

	outcomes := s.dispatch(student, message, subject+" - "+schoolName, opts.Channels)
	status, allFailed := summarize(outcomes)
	n.Status = status
	n.Channels = outcomes
	if err := s.store.UpdateOutcome(ctx, n.ID, status, outcomes); err != nil {
		log.Println("Failed to record notification outcome:", err)
	}
	if allFailed {
		return n, ErrAllChannelsFailed
	}
	return n, nil
}

// dispatch fans out over the requested channels concurrently. A channel
// without contact info is skipped and logged, never escalated; a failed
// channel records its error without affecting the others.
func (s *NotificationService) dispatch(student *directory.Student, message, subject string, channels []string) []ChannelOutcome {
	outcomes := make([]ChannelOutcome, len(channels))
	var wg sync.WaitGroup
	for i, channel := range channels {
		outcomes[i] = ChannelOutcome{Channel: channel}
		switch channel {
		case ChannelEmail:
			if student.ParentContact.Email == "" {
				log.Println("No parent email found for student:", student.Name)
				outcomes[i].Skipped = true
				continue
			}
			wg.Add(1)
			go func(out *ChannelOutcome) {
				defer wg.Done()
				body := emailBody(student.Name, subject, message)
				if err := s.email.SendEmail(student.ParentContact.Email, subject, body); err != nil {
					log.Println("Error sending email:", err)
					out.Error = err.Error()
					return
				}
				out.Sent = true
			}(&outcomes[i])
		case ChannelSMS:
			if student.ParentContact.Phone == "" {
				log.Println("No parent phone found for student:", student.Name)
				outcomes[i].Skipped = true
				continue
			}
			wg.Add(1)
			go func(out *ChannelOutcome) {
				defer wg.Done()
				if err := s.sms.SendSMS(student.ParentContact.Phone, message); err != nil {
					log.Println("Error sending SMS:", err)
					out.Error = err.Error()
					return
				}
				out.Sent = true
			}(&outcomes[i])
		default:
			log.Println("Unknown notification channel:", channel)
			outcomes[i].Skipped = true
		}
	}
	wg.Wait()
	return outcomes
}

// summarize decides the record status: FAILED only when every attempted
// channel failed. A fully skipped dispatch still counts as sent.
func summarize(outcomes []ChannelOutcome) (string, bool) {
	attempted, failed := 0, 0
	for _, out := range outcomes {
		if out.Skipped {
			continue
		}
		attempted++
		if !out.Sent {
			failed++
		}
	}
	if attempted > 0 && failed == attempted {
		return StatusFailed, true
	}
	return StatusSent, false
}

// SendBulk fans out one Send per recipient with bounded concurrency.
// One recipient's failure is captured in its result without aborting
// the rest.
func (s *NotificationService) SendBulk(ctx context.Context, studentIDs []primitive.ObjectID, message string, opts SendOptions) []BulkResult {
	results := make([]BulkResult, len(studentIDs))
	sem := make(chan struct{}, bulkConcurrency)
	var wg sync.WaitGroup

	for i, studentID := range studentIDs {
		wg.Add(1)
		go func(i int, studentID primitive.ObjectID) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			n, err := s.Send(ctx, studentID, message, opts)
			if err != nil {
				results[i] = BulkResult{StudentID: studentID.Hex(), Success: false, Error: err.Error()}
				return
			}
			results[i] = BulkResult{StudentID: studentID.Hex(), Success: true, Notification: n}
		}(i, studentID)
	}
	wg.Wait()
	return results
}

// Schedule persists a notification for later delivery by the sweeper.
// This is the only path where scheduledFor defers anything.
func (s *NotificationService) Schedule(ctx context.Context, studentID primitive.ObjectID, message string, opts SendOptions) (*Notification, error) {
	if opts.ScheduledFor == nil {
		return nil, fmt.Errorf("scheduledFor is required")
	}
	opts.applyDefaults()

	student, err := s.students.FindStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	n := &Notification{
		ID:        primitive.NewObjectID(),
		StudentID: student.ID,
		SchoolID:  student.SchoolID,
		Message:   message,
		Type:      TypeCustom,
		Metadata: Metadata{
			Priority:     opts.Priority,
			Template:     opts.Template,
			ScheduledFor: opts.ScheduledFor,
		},
		Status:    StatusScheduled,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// SendDueScheduled dispatches every scheduled notification whose time
// has passed. Called periodically by the scheduler.
func (s *NotificationService) SendDueScheduled(ctx context.Context) {
	due, err := s.store.FindDueScheduled(ctx, time.Now())
	if err != nil {
		log.Println("Failed to fetch due notifications:", err)
		return
	}
	for _, n := range due {
		student, err := s.students.FindStudentByID(ctx, n.StudentID)
		if err != nil {
			log.Printf("Failed to resolve student for scheduled notification %v: %v", n.ID, err)
			continue
		}
		schoolName := "School"
		if school, err := s.students.FindSchoolByID(ctx, student.SchoolID); err == nil {
			schoolName = school.Name
		}
		outcomes := s.dispatch(student, n.Message, "School Notification - "+schoolName, []string{ChannelEmail, ChannelSMS})
		status, _ := summarize(outcomes)
		if err := s.store.UpdateOutcome(ctx, n.ID, status, outcomes); err != nil {
			log.Printf("Failed to record outcome for scheduled notification %v: %v", n.ID, err)
		}
	}
}

func (s *NotificationService) List(ctx context.Context, studentID primitive.ObjectID) ([]*Notification, error) {
	return s.store.ListByStudent(ctx, studentID)
}

func (s *NotificationService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.store.DeleteNotification(ctx, id)
}

// Stats aggregates dispatch volume for a school over the trailing date
// range: per-type counts plus daily volume mean and max.
func (s *NotificationService) Stats(ctx context.Context, schoolID primitive.ObjectID, days int) (*StatsReport, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	notifications, err := s.store.ListBySchoolSince(ctx, schoolID, since)
	if err != nil {
		return nil, err
	}

	typeCounts := make(map[string]int)
	dayCounts := make(map[string]int)
	for _, n := range notifications {
		typeCounts[n.Type]++
		dayCounts[n.CreatedAt.Format("2006-01-02")]++
	}

	report := &StatsReport{DateRange: days, Statistics: make([]TypeCount, 0, len(typeCounts))}
	for _, t := range []string{TypeResultAlert, TypeCAAlert, TypeCustom} {
		if count, ok := typeCounts[t]; ok {
			report.Statistics = append(report.Statistics, TypeCount{Type: t, Count: count})
		}
	}

	report.Volume.Total = len(notifications)
	if len(dayCounts) > 0 {
		daily := make([]float64, 0, len(dayCounts))
		for _, count := range dayCounts {
			daily = append(daily, float64(count))
		}
		mean, _ := stats.Mean(daily)
		rounded, _ := stats.Round(mean, 2)
		max, _ := stats.Max(daily)
		report.Volume.PerDayMean = rounded
		report.Volume.PerDayMax = max
	}
	return report, nil
}

// emailBody renders the parent-facing HTML shell around the message.
func emailBody(studentName, subject, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; }
    .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; }
    .content { padding: 20px; background-color: #f9f9f9; }
    .footer { text-align: center; padding: 10px; font-size: 12px; color: #666; }
  </style>
</head>
<body>
  <div class="header"><h2>%s</h2></div>
  <div class="content">
    <p>Dear Parent/Guardian,</p>
    <p><strong>Student:</strong> %s</p>
    <p><strong>Message:</strong> %s</p>
    <p>Please log into the SmartScore portal for more details.</p>
  </div>
  <div class="footer"><p>This is an automated message from SmartScore</p></div>
</body>
</html>`, subject, studentName, message)
}
