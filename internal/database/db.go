package database

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"magnet-search-web/internal/models"
)

var log = logging.Logger("database")

// ErrNotFound 未找到种子
var ErrNotFound = fmt.Errorf("未找到种子")

// 可排序字段
const (
	SortDate  = "date"
	SortSize  = "size"
	SortFiles = "files"
)

var sortFields = map[string]string{
	SortDate:  "create_date",
	SortSize:  "total_size",
	SortFiles: "file_count",
}

// DB 封装MongoDB客户端和集合
type DB struct {
	client   *mongo.Client
	Torrents *mongo.Collection
}

// SearchRequest 搜索参数
type SearchRequest struct {
	Query    string // 搜索关键词
	Sort     string // 排序字段 date、size、files
	Order    string // 排序顺序 asc、desc
	Page     int    // 页码
	PageSize int    // 每页结果数
}

// InitDB 初始化MongoDB连接并创建索引
func InitDB(ctx context.Context, mongoURL, dbName string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(mongoURL).
		SetMaxPoolSize(100).                // 最大连接池大小
		SetMinPoolSize(10).                 // 最小连接池大小
		SetMaxConnIdleTime(5 * time.Minute) // 空闲连接最大存活时间

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("连接MongoDB失败: %v", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB Ping失败: %v", err)
	}

	torrents := client.Database(dbName).Collection("torrents")

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "info_hash", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "create_date", Value: -1}}},
		{Keys: bson.D{{Key: "total_size", Value: -1}}},
		{Keys: bson.D{{Key: "file_count", Value: -1}}},
	}
	if _, err := torrents.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Warnf("创建索引失败: %v", err)
	}

	log.Infof("MongoDB 连接成功: %s", dbName)

	return &DB{
		client:   client,
		Torrents: torrents,
	}, nil
}

// Close 关闭MongoDB连接
func (db *DB) Close() error {
	if db.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return db.client.Disconnect(ctx)
}

// buildFilter 按名称做不区分大小写的匹配
func buildFilter(query string) bson.M {
	filter := bson.M{}
	if query != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{
			Pattern: regexp.QuoteMeta(query),
			Options: "i",
		}}
	}
	return filter
}

// sortOption 排序选项，未指定排序时按创建时间倒序
func sortOption(sortBy, order string) bson.D {
	field, ok := sortFields[sortBy]
	if !ok {
		return bson.D{{Key: "create_date", Value: -1}}
	}
	direction := -1
	if order == "asc" {
		direction = 1
	}
	// info_hash 作为第二排序键，保证分页稳定
	return bson.D{{Key: field, Value: direction}, {Key: "info_hash", Value: 1}}
}

// skipFor 第 page 页之前的条数，溢出时取 math.MaxInt64，超出总数的页返回空结果
func skipFor(page, pageSize int) int64 {
	if page <= 1 || pageSize < 1 {
		return 0
	}
	before := int64(page - 1)
	if before > math.MaxInt64/int64(pageSize) {
		return math.MaxInt64
	}
	return before * int64(pageSize)
}

// SearchTorrents 搜索种子
func SearchTorrents(ctx context.Context, db *DB, req SearchRequest) (*models.SearchResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 15
	}

	filter := buildFilter(req.Query)

	total, err := db.Torrents.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find().
		SetSort(sortOption(req.Sort, req.Order)).
		SetSkip(skipFor(req.Page, req.PageSize)).
		SetLimit(int64(req.PageSize)).
		SetProjection(bson.M{"files": 0})

	cursor, err := db.Torrents.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}

	torrents := make([]models.TorrentSummary, 0, req.PageSize)
	if err := cursor.All(ctx, &torrents); err != nil {
		return nil, err
	}

	return &models.SearchResponse{
		Results: torrents,
		Total:   total,
		Page:    req.Page,
		PerPage: req.PageSize,
	}, nil
}

// GetTorrentByInfoHash 通过InfoHash获取种子
func GetTorrentByInfoHash(ctx context.Context, db *DB, infoHash string) (*models.TorrentSummary, error) {
	var torrent models.TorrentSummary
	err := db.Torrents.FindOne(ctx, bson.M{"info_hash": infoHash}).Decode(&torrent)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &torrent, nil
}

// AddTorrent 添加新种子，已存在时忽略
func AddTorrent(ctx context.Context, db *DB, torrent *models.TorrentSummary) error {
	_, err := db.Torrents.UpdateOne(ctx,
		bson.M{"info_hash": torrent.InfoHash},
		bson.M{"$setOnInsert": torrent},
		options.Update().SetUpsert(true),
	)
	return err
}

// CountTorrents 返回种子总数
func CountTorrents(ctx context.Context, db *DB) (int64, error) {
	return db.Torrents.CountDocuments(ctx, bson.M{})
}
