package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestIncrementViewsSkipsInactiveProblems(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("filters on is_active", func(mt *mtest.T) {
		repo := &ProblemRepository{collection: mt.Coll}

		// a soft-deleted problem matches nothing, so the driver sees a
		// null value and the counter is never bumped
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.IncrementViews(context.Background(), primitive.NewObjectID())
		require.Error(t, err)

		evt := mt.GetStartedEvent()
		require.NotNil(t, evt)
		assert.Equal(t, "findAndModify", evt.CommandName)

		active, lookupErr := evt.Command.LookupErr("query", "is_active")
		require.NoError(t, lookupErr)
		assert.True(t, active.Boolean())
	})
}
