package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vocab-updated/models"
)

type DailyNewsRepository struct {
	col *mongo.Collection
}

func NewDailyNewsRepository(db *mongo.Database) *DailyNewsRepository {
	return &DailyNewsRepository{col: db.Collection("daily_news")}
}

// GetByDate returns the cached payload for a calendar day key, if present.
func (r *DailyNewsRepository) GetByDate(ctx context.Context, date string) (*models.DailyNews, bool, error) {
	var d models.DailyNews
	err := r.col.FindOne(ctx, bson.M{"date": date}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &d, true, nil
}

// UpsertByDate writes the payload for its date unless a row already exists.
// All payload fields go through $setOnInsert so the first complete writer
// wins; a concurrent loser's write is a no-op. The stored row is returned
// either way and is what callers must serve.
func (r *DailyNewsRepository) UpsertByDate(ctx context.Context, d *models.DailyNews) (*models.DailyNews, error) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	filter := bson.M{"date": d.Date}
	update := bson.M{
		"$setOnInsert": bson.M{
			"date":       d.Date,
			"briefs":     d.Briefs,
			"fetched_at": d.FetchedAt,
			"created_at": d.CreatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.col.UpdateOne(ctx, filter, update, opts); err != nil {
		// Two processes can race past the filter and both attempt the
		// insert; the unique date index turns the loser's write into a
		// duplicate-key error. The winner's row is the day's row, so fall
		// through and read it back.
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
	}

	stored, _, err := r.GetByDate(ctx, d.Date)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ListRecent returns up to n most recent cached days, newest first.
// Used by anti-repetition lookups; not part of the serve path.
func (r *DailyNewsRepository) ListRecent(ctx context.Context, n int) ([]models.DailyNews, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(n))
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.DailyNews
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
