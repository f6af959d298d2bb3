package v1

import (
	"slices"

	v0 "github.com/evergreen-ci/docmigrate/model/v0"
)

// FromEnvExamTemp converts a v0 exam into the v1 exam creator shape. Every
// field of the v0 record carries over unchanged; the version tag is set to
// Version.
func FromEnvExamTemp(exam v0.EnvExamTemp) ExamCreatorExam {
	return ExamCreatorExam{
		ID:            exam.ID,
		QuestionSets:  convertQuestionSets(exam.QuestionSets),
		Config:        convertConfig(exam.Config),
		Prerequisites: slices.Clone(exam.Prerequisites),
		Deprecated:    exam.Deprecated,
		Version:       Version,
	}
}

func convertQuestionSets(sets []v0.EnvQuestionSet) []ExamEnvironmentQuestionSet {
	if sets == nil {
		return nil
	}

	out := make([]ExamEnvironmentQuestionSet, 0, len(sets))
	for _, set := range sets {
		out = append(out, ExamEnvironmentQuestionSet{
			ID:        set.ID,
			Type:      ExamEnvironmentQuestionType(set.Type),
			Context:   copyString(set.Context),
			Questions: convertQuestions(set.Questions),
		})
	}

	return out
}

func convertQuestions(questions []v0.EnvMultipleChoiceQuestion) []ExamEnvironmentMultipleChoiceQuestion {
	if questions == nil {
		return nil
	}

	out := make([]ExamEnvironmentMultipleChoiceQuestion, 0, len(questions))
	for _, q := range questions {
		converted := ExamEnvironmentMultipleChoiceQuestion{
			ID:         q.ID,
			Text:       q.Text,
			Tags:       slices.Clone(q.Tags),
			Answers:    convertAnswers(q.Answers),
			Deprecated: q.Deprecated,
		}
		if q.Audio != nil {
			converted.Audio = &ExamEnvironmentAudio{
				URL:      q.Audio.URL,
				Captions: copyString(q.Audio.Captions),
			}
		}
		out = append(out, converted)
	}

	return out
}

func convertAnswers(answers []v0.EnvAnswer) []ExamEnvironmentAnswer {
	if answers == nil {
		return nil
	}

	out := make([]ExamEnvironmentAnswer, 0, len(answers))
	for _, a := range answers {
		out = append(out, ExamEnvironmentAnswer{
			ID:        a.ID,
			Text:      a.Text,
			IsCorrect: a.IsCorrect,
		})
	}

	return out
}

func convertConfig(conf v0.EnvConfig) ExamEnvironmentConfig {
	out := ExamEnvironmentConfig{
		Name:           conf.Name,
		Note:           conf.Note,
		TotalTimeInMS:  conf.TotalTimeInMS,
		RetakeTimeInMS: conf.RetakeTimeInMS,
		PassingPercent: conf.PassingPercent,
	}

	if conf.Tags != nil {
		out.Tags = make([]ExamEnvironmentTagConfig, 0, len(conf.Tags))
		for _, t := range conf.Tags {
			out.Tags = append(out.Tags, ExamEnvironmentTagConfig{
				Group:             slices.Clone(t.Group),
				NumberOfQuestions: t.NumberOfQuestions,
			})
		}
	}

	if conf.QuestionSets != nil {
		out.QuestionSets = make([]ExamEnvironmentQuestionSetConfig, 0, len(conf.QuestionSets))
		for _, qs := range conf.QuestionSets {
			out.QuestionSets = append(out.QuestionSets, ExamEnvironmentQuestionSetConfig{
				Type:                     ExamEnvironmentQuestionType(qs.Type),
				NumberOfSet:              qs.NumberOfSet,
				NumberOfQuestions:        qs.NumberOfQuestions,
				NumberOfCorrectAnswers:   qs.NumberOfCorrectAnswers,
				NumberOfIncorrectAnswers: qs.NumberOfIncorrectAnswers,
			})
		}
	}

	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
