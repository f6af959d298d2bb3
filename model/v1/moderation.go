package v1

import (
	"time"

	"github.com/mongodb/anser/bsonutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExamEnvironmentExamModerationCollection holds moderation records in the v1
// shape.
const ExamEnvironmentExamModerationCollection = "ExamEnvironmentExamModeration"

var (
	ModerationIdKey                = bsonutil.MustHaveTag(ExamEnvironmentExamModeration{}, "ID")
	ModerationExamAttemptIdKey     = bsonutil.MustHaveTag(ExamEnvironmentExamModeration{}, "ExamAttemptID")
	ModerationStatusKey            = bsonutil.MustHaveTag(ExamEnvironmentExamModeration{}, "Status")
	ModerationChallengesAwardedKey = bsonutil.MustHaveTag(ExamEnvironmentExamModeration{}, "ChallengesAwarded")
	ModerationVersionKey           = bsonutil.MustHaveTag(ExamEnvironmentExamModeration{}, "Version")
)

type ExamEnvironmentExamModerationStatus string

const (
	ModerationStatusApproved ExamEnvironmentExamModerationStatus = "Approved"
	ModerationStatusDenied   ExamEnvironmentExamModerationStatus = "Denied"
	ModerationStatusPending  ExamEnvironmentExamModerationStatus = "Pending"
)

type ExamEnvironmentExamModeration struct {
	ID                primitive.ObjectID                  `bson:"_id"`
	Status            ExamEnvironmentExamModerationStatus `bson:"status"`
	ExamAttemptID     primitive.ObjectID                  `bson:"examAttemptId"`
	Feedback          *string                             `bson:"feedback,omitempty"`
	ModerationDate    *time.Time                          `bson:"moderationDate,omitempty"`
	ModeratorID       *primitive.ObjectID                 `bson:"moderatorId,omitempty"`
	SubmissionDate    time.Time                           `bson:"submissionDate"`
	ChallengesAwarded *bool                               `bson:"challengesAwarded,omitempty"`
	Version           int64                               `bson:"version"`
}

func (m ExamEnvironmentExamModeration) RecordID() primitive.ObjectID { return m.ID }
