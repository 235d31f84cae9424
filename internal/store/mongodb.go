package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"yt-comment-crawler-go/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Comments are keyed by their YouTube id (_id), which gives the same
// dedupe as the SQL primary key.
type mongoComment struct {
	ID       string         `bson:"_id"`
	VideoID  string         `bson:"video_id"`
	ParentID string         `bson:"parent_id,omitempty"`
	Position int            `bson:"position"`
	Body     map[string]any `bson:"body"`
	SavedAt  time.Time      `bson:"saved_at"`
}

type mongoVideo struct {
	ID         string    `bson:"_id"`
	URL        string    `bson:"url"`
	Sort       string    `bson:"sort"`
	Comments   int       `bson:"comment_count"`
	TopLevel   int       `bson:"top_level"`
	Replies    int       `bson:"replies"`
	Orphaned   int       `bson:"orphaned"`
	Requests   int       `bson:"requests"`
	StopReason string    `bson:"stop_reason,omitempty"`
	CrawledAt  time.Time `bson:"crawled_at"`
}

var (
	mongoMu  sync.Mutex
	mongoCli *mongo.Client
)

func mongoDatabase(cli *mongo.Client) *mongo.Database {
	name := strings.TrimSpace(config.AppConfig.MongoDB)
	if name == "" {
		name = "yt_comments"
	}
	return cli.Database(name)
}

func mongoClient(ctx context.Context) (*mongo.Client, error) {
	mongoMu.Lock()
	defer mongoMu.Unlock()
	if mongoCli != nil {
		return mongoCli, nil
	}
	uri := strings.TrimSpace(config.AppConfig.MongoURI)
	if uri == "" {
		return nil, errors.New("MONGO_URI is empty")
	}
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}
	_, err = mongoDatabase(cli).Collection("comments").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "video_id", Value: 1}, {Key: "position", Value: 1}},
		Options: options.Index().SetName("idx_video_position"),
	})
	if err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb index: %w", err)
	}
	mongoCli = cli
	return cli, nil
}

func mongoUpsertVideo(ctx context.Context, v VideoSummary) error {
	cli, err := mongoClient(ctx)
	if err != nil {
		return err
	}
	doc := mongoVideo{
		ID:         v.VideoID,
		URL:        v.URL,
		Sort:       v.Sort,
		Comments:   v.Comments,
		TopLevel:   v.TopLevel,
		Replies:    v.Replies,
		Orphaned:   v.Orphaned,
		Requests:   v.Requests,
		StopReason: v.StopReason,
		CrawledAt:  time.Unix(v.CrawledAt, 0).UTC(),
	}
	_, err = mongoDatabase(cli).Collection("videos").
		ReplaceOne(ctx, bson.D{{Key: "_id", Value: v.VideoID}}, doc, options.Replace().SetUpsert(true))
	return err
}

// mongoInsertComments inserts unordered and ignores duplicate-key failures,
// which are comments an earlier crawl already stored.
func mongoInsertComments(ctx context.Context, videoID string, rows []commentRow) error {
	if len(rows) == 0 {
		return nil
	}
	cli, err := mongoClient(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	docs := make([]any, 0, len(rows))
	for _, r := range rows {
		raw, err := json.Marshal(r.Item)
		if err != nil {
			return fmt.Errorf("marshal comment %s: %w", r.ID, err)
		}
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			return fmt.Errorf("marshal comment %s: %w", r.ID, err)
		}
		docs = append(docs, mongoComment{
			ID:       r.ID,
			VideoID:  videoID,
			ParentID: r.ParentID,
			Position: r.Position,
			Body:     body,
			SavedAt:  now,
		})
	}
	_, err = mongoDatabase(cli).Collection("comments").InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !onlyDuplicates(err) {
		return err
	}
	return nil
}

func onlyDuplicates(err error) bool {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || bwe.WriteConcernError != nil {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != 11000 {
			return false
		}
	}
	return true
}

func mongoCountComments(ctx context.Context, videoID string) (int, error) {
	cli, err := mongoClient(ctx)
	if err != nil {
		return 0, err
	}
	n, err := mongoDatabase(cli).Collection("comments").CountDocuments(ctx, bson.D{{Key: "video_id", Value: videoID}})
	return int(n), err
}
