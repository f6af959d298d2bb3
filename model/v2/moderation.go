// Package v2 holds record shapes introduced by the second schema revision.
//
// Moderation records gain a challengesAwarded flag, which defaults to false
// for records moderated before challenges were awarded automatically.
package v2

import (
	"time"

	v1 "github.com/evergreen-ci/docmigrate/model/v1"
	"github.com/mongodb/anser/bsonutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// ExamEnvironmentExamModerationCollection holds moderation records in
	// the v2 shape.
	ExamEnvironmentExamModerationCollection = "ExamEnvironmentExamModerationV2"

	Version int64 = 2

	DefaultChallengesAwarded = false
)

var (
	IdKey                = bsonutil.MustHaveTag(ExamEnvironmentExamModeration{}, "ID")
	ChallengesAwardedKey = bsonutil.MustHaveTag(ExamEnvironmentExamModeration{}, "ChallengesAwarded")
	VersionKey           = bsonutil.MustHaveTag(ExamEnvironmentExamModeration{}, "Version")
)

type ExamEnvironmentExamModeration struct {
	ID                primitive.ObjectID                     `bson:"_id"`
	Status            v1.ExamEnvironmentExamModerationStatus `bson:"status"`
	ExamAttemptID     primitive.ObjectID                     `bson:"examAttemptId"`
	Feedback          *string                                `bson:"feedback,omitempty"`
	ModerationDate    *time.Time                             `bson:"moderationDate,omitempty"`
	ModeratorID       *primitive.ObjectID                    `bson:"moderatorId,omitempty"`
	SubmissionDate    time.Time                              `bson:"submissionDate"`
	ChallengesAwarded bool                                   `bson:"challengesAwarded"`
	Version           int64                                  `bson:"version"`
}

func (m ExamEnvironmentExamModeration) RecordID() primitive.ObjectID { return m.ID }

// FromV1Moderation converts a v1 moderation record. Shared fields are copied,
// challengesAwarded keeps the source value or takes its default when the
// source has none, and the version tag becomes Version.
func FromV1Moderation(m v1.ExamEnvironmentExamModeration) ExamEnvironmentExamModeration {
	out := ExamEnvironmentExamModeration{
		ID:                m.ID,
		Status:            m.Status,
		ExamAttemptID:     m.ExamAttemptID,
		SubmissionDate:    m.SubmissionDate,
		ChallengesAwarded: DefaultChallengesAwarded,
		Version:           Version,
	}

	if m.ChallengesAwarded != nil {
		out.ChallengesAwarded = *m.ChallengesAwarded
	}
	if m.Feedback != nil {
		feedback := *m.Feedback
		out.Feedback = &feedback
	}
	if m.ModerationDate != nil {
		date := *m.ModerationDate
		out.ModerationDate = &date
	}
	if m.ModeratorID != nil {
		id := *m.ModeratorID
		out.ModeratorID = &id
	}

	return out
}
