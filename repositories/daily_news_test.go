package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"vocab-updated/models"
)

func dailyNewsDoc(summary string) bson.D {
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "date", Value: "2026-08-29"},
		{Key: "briefs", Value: bson.D{
			{Key: "hrv", Value: bson.D{
				{Key: "summary", Value: summary},
				{Key: "fetched_at", Value: time.Now()},
			}},
		}},
		{Key: "fetched_at", Value: time.Now()},
		{Key: "created_at", Value: time.Now()},
	}
}

func TestUpsertByDateInsertsWhenAbsent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("first writer stores and reads back its row", func(mt *mtest.T) {
		ns := fmt.Sprintf("%s.%s", mt.DB.Name(), mt.Coll.Name())
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, dailyNewsDoc("fresh")))

		repo := &DailyNewsRepository{col: mt.Coll}
		stored, err := repo.UpsertByDate(context.Background(), &models.DailyNews{
			Date:   "2026-08-29",
			Briefs: map[string]models.CategoryBrief{"hrv": {Summary: "fresh"}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stored == nil || stored.Briefs["hrv"].Summary != "fresh" {
			t.Fatalf("unexpected stored row: %+v", stored)
		}
	})
}

func TestUpsertByDateConvergesOnDuplicateKey(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("losing a cross-process race returns the winner's row", func(mt *mtest.T) {
		ns := fmt.Sprintf("%s.%s", mt.DB.Name(), mt.Coll.Name())
		// another process inserted between our filter match and our insert
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: daily_news index: uniq_date",
		}))
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, dailyNewsDoc("winner")))

		repo := &DailyNewsRepository{col: mt.Coll}
		stored, err := repo.UpsertByDate(context.Background(), &models.DailyNews{
			Date:   "2026-08-29",
			Briefs: map[string]models.CategoryBrief{"hrv": {Summary: "loser"}},
		})
		if err != nil {
			t.Fatalf("duplicate key must converge, not error: %v", err)
		}
		if stored == nil || stored.Briefs["hrv"].Summary != "winner" {
			t.Fatalf("expected the winner's row, got %+v", stored)
		}
	})
}

func TestUpsertByDateOtherWriteErrorsPropagate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("non-duplicate write errors surface", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    13, // unauthorized
			Message: "not authorized",
		}))

		repo := &DailyNewsRepository{col: mt.Coll}
		if _, err := repo.UpsertByDate(context.Background(), &models.DailyNews{Date: "2026-08-29"}); err == nil {
			t.Fatalf("expected the write error to propagate")
		}
	})
}

func TestGetByDateMissIsNotAnError(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("absent day reports found=false", func(mt *mtest.T) {
		ns := fmt.Sprintf("%s.%s", mt.DB.Name(), mt.Coll.Name())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		repo := &DailyNewsRepository{col: mt.Coll}
		row, found, err := repo.GetByDate(context.Background(), "2001-01-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found || row != nil {
			t.Fatalf("expected a clean miss, got found=%v row=%+v", found, row)
		}
	})
}
