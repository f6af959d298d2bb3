// Package v0 holds the record shapes of the first exam environment
// schema, before exams were moved under the exam creator.
package v0

import (
	"github.com/mongodb/anser/bsonutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnvExamTempCollection holds exams in the v0 shape.
const EnvExamTempCollection = "EnvExamTemp"

var (
	IdKey            = bsonutil.MustHaveTag(EnvExamTemp{}, "ID")
	QuestionSetsKey  = bsonutil.MustHaveTag(EnvExamTemp{}, "QuestionSets")
	ConfigKey        = bsonutil.MustHaveTag(EnvExamTemp{}, "Config")
	PrerequisitesKey = bsonutil.MustHaveTag(EnvExamTemp{}, "Prerequisites")
	DeprecatedKey    = bsonutil.MustHaveTag(EnvExamTemp{}, "Deprecated")
)

type EnvQuestionType string

const (
	EnvQuestionTypeMultipleChoice EnvQuestionType = "MultipleChoice"
	EnvQuestionTypeDialogue       EnvQuestionType = "Dialogue"
)

type EnvExamTemp struct {
	ID            primitive.ObjectID   `bson:"_id"`
	QuestionSets  []EnvQuestionSet     `bson:"questionSets"`
	Config        EnvConfig            `bson:"config"`
	Prerequisites []primitive.ObjectID `bson:"prerequisites"`
	Deprecated    bool                 `bson:"deprecated"`
}

func (e EnvExamTemp) RecordID() primitive.ObjectID { return e.ID }

type EnvQuestionSet struct {
	ID        primitive.ObjectID          `bson:"id"`
	Type      EnvQuestionType             `bson:"type"`
	Context   *string                     `bson:"context,omitempty"`
	Questions []EnvMultipleChoiceQuestion `bson:"questions"`
}

type EnvMultipleChoiceQuestion struct {
	ID         primitive.ObjectID `bson:"id"`
	Text       string             `bson:"text"`
	Tags       []string           `bson:"tags"`
	Audio      *EnvAudio          `bson:"audio,omitempty"`
	Answers    []EnvAnswer        `bson:"answers"`
	Deprecated bool               `bson:"deprecated"`
}

type EnvAudio struct {
	URL      string  `bson:"url"`
	Captions *string `bson:"captions,omitempty"`
}

type EnvAnswer struct {
	ID        primitive.ObjectID `bson:"id"`
	Text      string             `bson:"text"`
	IsCorrect bool               `bson:"isCorrect"`
}

type EnvConfig struct {
	Name           string                 `bson:"name"`
	Note           string                 `bson:"note"`
	Tags           []EnvTagConfig         `bson:"tags"`
	TotalTimeInMS  int64                  `bson:"totalTimeInMS"`
	QuestionSets   []EnvQuestionSetConfig `bson:"questionSets"`
	RetakeTimeInMS int64                  `bson:"retakeTimeInMS"`
	PassingPercent float64                `bson:"passingPercent"`
}

type EnvTagConfig struct {
	Group             []string `bson:"group"`
	NumberOfQuestions int64    `bson:"numberOfQuestions"`
}

type EnvQuestionSetConfig struct {
	Type                     EnvQuestionType `bson:"type"`
	NumberOfSet              int64           `bson:"numberOfSet"`
	NumberOfQuestions        int64           `bson:"numberOfQuestions"`
	NumberOfCorrectAnswers   int64           `bson:"numberOfCorrectAnswers"`
	NumberOfIncorrectAnswers int64           `bson:"numberOfIncorrectAnswers"`
}
