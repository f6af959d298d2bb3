package migrations

import (
	"context"
	"testing"
	"time"

	"github.com/evergreen-ci/docmigrate/mock"
	v0 "github.com/evergreen-ci/docmigrate/model/v0"
	v1 "github.com/evergreen-ci/docmigrate/model/v1"
	v2 "github.com/evergreen-ci/docmigrate/model/v2"
	"github.com/evergreen-ci/docmigrate/testutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func makeModerations(n int) []v1.ExamEnvironmentExamModeration {
	out := make([]v1.ExamEnvironmentExamModeration, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, v1.ExamEnvironmentExamModeration{
			ID:             primitive.NewObjectID(),
			Status:         v1.ModerationStatusPending,
			ExamAttemptID:  primitive.NewObjectID(),
			SubmissionDate: time.Date(2025, 1, i+1, 0, 0, 0, 0, time.UTC),
			Version:        v1.Version,
		})
	}
	return out
}

func seedModerations(t *testing.T, store *mock.Store, mods []v1.ExamEnvironmentExamModeration) {
	c := store.C(v1.ExamEnvironmentExamModerationCollection)
	for _, m := range mods {
		require.NoError(t, c.Seed(m))
	}
}

func TestMigrate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("RunsEveryStepInOrder", func(t *testing.T) {
		store := mock.NewStore()
		seedExams(t, store, makeExams(4))
		seedModerations(t, store, makeModerations(3))

		var order []string
		store.C(v1.ExamCreatorExamCollection).OnInsert = func(context.Context, bson.Raw) error {
			order = append(order, migrationV0ToV1)
			return nil
		}
		store.C(v2.ExamEnvironmentExamModerationCollection).OnInsert = func(context.Context, bson.Raw) error {
			order = append(order, migrationV1ToV2)
			return nil
		}

		require.NoError(t, Migrate(ctx, store, DefaultChain()))
		assert.Equal(t, 4, store.C(v1.ExamCreatorExamCollection).Len())
		assert.Equal(t, 3, store.C(v2.ExamEnvironmentExamModerationCollection).Len())
		assert.Equal(t, []string{
			migrationV0ToV1, migrationV0ToV1, migrationV0ToV1, migrationV0ToV1,
			migrationV1ToV2, migrationV1ToV2, migrationV1ToV2,
		}, order)

		for _, raw := range store.C(v2.ExamEnvironmentExamModerationCollection).Documents() {
			var mod v2.ExamEnvironmentExamModeration
			require.NoError(t, bson.Unmarshal(raw, &mod))
			assert.Equal(t, v2.Version, mod.Version)
			assert.False(t, mod.ChallengesAwarded)
		}
	})
	t.Run("FirstFailureSkipsLaterSteps", func(t *testing.T) {
		store := mock.NewStore()
		seedExams(t, store, makeExams(3))
		seedModerations(t, store, makeModerations(3))

		store.C(v1.ExamCreatorExamCollection).OnInsert = func(context.Context, bson.Raw) error {
			return errors.New("disk full")
		}

		err := Migrate(ctx, store, DefaultChain())
		require.Error(t, err)

		var stepErr *StepError
		require.True(t, errors.As(err, &stepErr))
		assert.Equal(t, migrationV0ToV1, stepErr.Step)
		assert.Equal(t, InsertError, stepErr.Kind)

		assert.Zero(t, store.C(v2.ExamEnvironmentExamModerationCollection).Len())
		assert.Zero(t, store.C(v2.ExamEnvironmentExamModerationCollection).Inserts())
	})
	t.Run("InvalidChainRunsNothing", func(t *testing.T) {
		store := mock.NewStore()
		seedExams(t, store, makeExams(2))

		err := Migrate(ctx, store, Chain{ExamCreatorExamStep(), ExamCreatorExamStep()})
		require.Error(t, err)
		assert.Zero(t, store.C(v1.ExamCreatorExamCollection).Len())
	})
}

func TestChainValidate(t *testing.T) {
	identity := func(e v1.ExamCreatorExam) v1.ExamCreatorExam { return e }

	for name, test := range map[string]struct {
		chain Chain
		valid bool
	}{
		"Default":        {chain: DefaultChain(), valid: true},
		"Empty":          {chain: Chain{}, valid: false},
		"Nil":            {chain: nil, valid: false},
		"NilStep":        {chain: Chain{ExamCreatorExamStep(), nil}, valid: false},
		"DuplicateNames": {chain: Chain{ExamCreatorExamStep(), ExamCreatorExamStep()}, valid: false},
		"MissingName": {
			chain: Chain{NewStep("", v1.ExamCreatorExamCollection, "Other", identity)},
			valid: false,
		},
		"InPlace": {
			chain: Chain{NewStep("noop", v1.ExamCreatorExamCollection, v1.ExamCreatorExamCollection, identity)},
			valid: false,
		},
	} {
		t.Run(name, func(t *testing.T) {
			err := test.chain.Validate()
			if test.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDefaultChain(t *testing.T) {
	chain := DefaultChain()
	assert.Equal(t, []string{migrationV0ToV1, migrationV1ToV2}, chain.Names())
	assert.Equal(t, v0.EnvExamTempCollection, chain[0].Source())
	assert.Equal(t, v1.ExamCreatorExamCollection, chain[0].Destination())
	assert.Equal(t, v1.ExamEnvironmentExamModerationCollection, chain[1].Source())
	assert.Equal(t, v2.ExamEnvironmentExamModerationCollection, chain[1].Destination())
}

func TestMigrateTelemetry(t *testing.T) {
	tm := testutil.CaptureTelemetry(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("SuccessfulChain", func(t *testing.T) {
		store := mock.NewStore()
		seedExams(t, store, makeExams(4))
		seedModerations(t, store, makeModerations(2))
		before := tm.Sum(recordsMigratedInstrument, stepAttribute, migrationV0ToV1)

		require.NoError(t, Migrate(ctx, store, DefaultChain()))

		root, ok := tm.SpanNamed("migrate")
		require.True(t, ok)
		assert.Equal(t, codes.Unset, root.Status.Code)

		step, ok := tm.SpanNamed(migrationV0ToV1)
		require.True(t, ok)
		assert.Equal(t, root.SpanContext.SpanID(), step.Parent.SpanID())
		assert.Contains(t, step.Attributes, attribute.Int("migrations.records", 4))
		assert.Contains(t, step.Attributes, attribute.String("migrations.source", v0.EnvExamTempCollection))

		assert.EqualValues(t, 4, tm.Sum(recordsMigratedInstrument, stepAttribute, migrationV0ToV1)-before)
	})
	t.Run("FailedStep", func(t *testing.T) {
		store := mock.NewStore()
		seedExams(t, store, makeExams(2))
		store.C(v1.ExamCreatorExamCollection).OnInsert = func(context.Context, bson.Raw) error {
			return errors.New("write concern timeout")
		}
		before := tm.Sum(stepFailuresInstrument, errorKindAttribute, string(InsertError))

		require.Error(t, Migrate(ctx, store, DefaultChain()))

		step, ok := tm.SpanNamed(migrationV0ToV1)
		require.True(t, ok)
		assert.Equal(t, codes.Error, step.Status.Code)
		assert.NotEmpty(t, step.Events, "error must be recorded on the span")

		assert.EqualValues(t, 1, tm.Sum(stepFailuresInstrument, errorKindAttribute, string(InsertError))-before)
	})
}
