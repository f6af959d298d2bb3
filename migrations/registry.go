package migrations

import (
	v0 "github.com/evergreen-ci/docmigrate/model/v0"
	v1 "github.com/evergreen-ci/docmigrate/model/v1"
	v2 "github.com/evergreen-ci/docmigrate/model/v2"
)

const (
	migrationV0ToV1 = "v0->v1"
	migrationV1ToV2 = "v1->v2"
)

// ExamCreatorExamStep copies EnvExamTemp exams into ExamCreatorExam, adding
// the version tag.
func ExamCreatorExamStep() *Step[v0.EnvExamTemp, v1.ExamCreatorExam] {
	return NewStep(migrationV0ToV1, v0.EnvExamTempCollection, v1.ExamCreatorExamCollection, v1.FromEnvExamTemp).
		WithIDKey(v0.IdKey)
}

// ExamModerationStep copies moderation records into the v2 collection,
// adding challengesAwarded.
func ExamModerationStep() *Step[v1.ExamEnvironmentExamModeration, v2.ExamEnvironmentExamModeration] {
	return NewStep(migrationV1ToV2, v1.ExamEnvironmentExamModerationCollection, v2.ExamEnvironmentExamModerationCollection, v2.FromV1Moderation).
		WithIDKey(v1.ModerationIdKey)
}

// DefaultChain returns every registered migration in schema version order.
func DefaultChain() Chain {
	return Chain{
		ExamCreatorExamStep(),
		ExamModerationStep(),
	}
}
