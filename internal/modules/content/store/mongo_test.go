package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/youth-club/core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

func TestListFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, listFilter(Filter{}))

	assert.Equal(t,
		bson.M{"status": models.StatusApproved},
		listFilter(Filter{Status: []models.ContentStatus{models.StatusApproved}}))

	assert.Equal(t,
		bson.M{
			"status":    bson.M{"$in": []models.ContentStatus{models.StatusPending, models.StatusRejected}},
			"createdBy": "u-1",
		},
		listFilter(Filter{
			Status:    []models.ContentStatus{models.StatusPending, models.StatusRejected},
			CreatedBy: "u-1",
		}))
}

func TestTransitionUpdate(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	update := transitionUpdate(Decision{To: models.StatusApproved, By: "admin-1", At: at})
	set := update["$set"].(bson.M)
	assert.Equal(t, models.StatusApproved, set["status"])
	assert.Equal(t, "admin-1", set["approvedBy"])
	assert.NotContains(t, set, "moderationNote")
	assert.Equal(t, bson.M{"updatedAt": at}, update["$max"])

	update = transitionUpdate(Decision{To: models.StatusRejected, By: "admin-1", Note: "blurry", At: at})
	assert.Equal(t, "blurry", update["$set"].(bson.M)["moderationNote"])
}
