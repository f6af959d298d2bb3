package v1

import (
	"github.com/mongodb/anser/bsonutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// ExamCreatorExamCollection holds exams in the v1 shape.
	ExamCreatorExamCollection = "ExamCreatorExam"

	// Version is the schema version tag stamped on every v1 record.
	Version int64 = 1
)

var (
	IdKey            = bsonutil.MustHaveTag(ExamCreatorExam{}, "ID")
	QuestionSetsKey  = bsonutil.MustHaveTag(ExamCreatorExam{}, "QuestionSets")
	ConfigKey        = bsonutil.MustHaveTag(ExamCreatorExam{}, "Config")
	PrerequisitesKey = bsonutil.MustHaveTag(ExamCreatorExam{}, "Prerequisites")
	DeprecatedKey    = bsonutil.MustHaveTag(ExamCreatorExam{}, "Deprecated")
	VersionKey       = bsonutil.MustHaveTag(ExamCreatorExam{}, "Version")
)

type ExamEnvironmentQuestionType string

const (
	ExamEnvironmentQuestionTypeMultipleChoice ExamEnvironmentQuestionType = "MultipleChoice"
	ExamEnvironmentQuestionTypeDialogue       ExamEnvironmentQuestionType = "Dialogue"
)

type ExamCreatorExam struct {
	ID            primitive.ObjectID           `bson:"_id"`
	QuestionSets  []ExamEnvironmentQuestionSet `bson:"questionSets"`
	Config        ExamEnvironmentConfig        `bson:"config"`
	Prerequisites []primitive.ObjectID         `bson:"prerequisites"`
	Deprecated    bool                         `bson:"deprecated"`
	Version       int64                        `bson:"version"`
}

func (e ExamCreatorExam) RecordID() primitive.ObjectID { return e.ID }

type ExamEnvironmentQuestionSet struct {
	ID        primitive.ObjectID                      `bson:"id"`
	Type      ExamEnvironmentQuestionType             `bson:"type"`
	Context   *string                                 `bson:"context,omitempty"`
	Questions []ExamEnvironmentMultipleChoiceQuestion `bson:"questions"`
}

type ExamEnvironmentMultipleChoiceQuestion struct {
	ID         primitive.ObjectID      `bson:"id"`
	Text       string                  `bson:"text"`
	Tags       []string                `bson:"tags"`
	Audio      *ExamEnvironmentAudio   `bson:"audio,omitempty"`
	Answers    []ExamEnvironmentAnswer `bson:"answers"`
	Deprecated bool                    `bson:"deprecated"`
}

type ExamEnvironmentAudio struct {
	URL      string  `bson:"url"`
	Captions *string `bson:"captions,omitempty"`
}

type ExamEnvironmentAnswer struct {
	ID        primitive.ObjectID `bson:"id"`
	Text      string             `bson:"text"`
	IsCorrect bool               `bson:"isCorrect"`
}

type ExamEnvironmentConfig struct {
	Name           string                             `bson:"name"`
	Note           string                             `bson:"note"`
	Tags           []ExamEnvironmentTagConfig         `bson:"tags"`
	TotalTimeInMS  int64                              `bson:"totalTimeInMS"`
	QuestionSets   []ExamEnvironmentQuestionSetConfig `bson:"questionSets"`
	RetakeTimeInMS int64                              `bson:"retakeTimeInMS"`
	PassingPercent float64                            `bson:"passingPercent"`
}

type ExamEnvironmentTagConfig struct {
	Group             []string `bson:"group"`
	NumberOfQuestions int64    `bson:"numberOfQuestions"`
}

type ExamEnvironmentQuestionSetConfig struct {
	Type                     ExamEnvironmentQuestionType `bson:"type"`
	NumberOfSet              int64                       `bson:"numberOfSet"`
	NumberOfQuestions        int64                       `bson:"numberOfQuestions"`
	NumberOfCorrectAnswers   int64                       `bson:"numberOfCorrectAnswers"`
	NumberOfIncorrectAnswers int64                       `bson:"numberOfIncorrectAnswers"`
}
