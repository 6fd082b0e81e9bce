// Package mongodb は store パッケージの契約を MongoDB 上に実装します。
package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bhoomimiglani/library-management-system/internal/store"
)

const (
	usersCollection = "users"
	booksCollection = "books"

	pingTimeout = 10 * time.Second
)

// Store は MongoDB クライアントと各コレクションへのアクセスを保持します。
type Store struct {
	client *mongo.Client
	users  *Users
	books  *Books
}

// Connect は MongoDB に接続し、疎通確認の上で Store を返します。
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, store.Unavailable("failed to connect to mongodb", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, store.Unavailable("failed to ping mongodb", err)
	}

	db := client.Database(dbName)
	return &Store{
		client: client,
		users:  &Users{c: db.Collection(usersCollection)},
		books:  &Books{c: db.Collection(booksCollection)},
	}, nil
}

// EnsureIndexes はユーザー名の一意インデックスを作成します。
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return store.Unavailable("failed to create username index", err)
	}
	return nil
}

// Users はユーザーストアを返します。
func (s *Store) Users() *Users { return s.users }

// Books は蔵書ストアを返します。
func (s *Store) Books() *Books { return s.books }

// Close は接続を切断します。
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Users は store.UserStore の MongoDB 実装です。
type Users struct {
	c *mongo.Collection
}

var _ store.UserStore = (*Users)(nil)

func (u *Users) Create(ctx context.Context, user *store.User) error {
	result, err := u.c.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.Conflict("username already exists")
		}
		return store.Unavailable("failed to insert user", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (u *Users) FindByUsername(ctx context.Context, username string) (*store.User, error) {
	var user store.User
	err := u.c.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, store.NotFound("user not found")
		}
		return nil, store.Unavailable("failed to fetch user", err)
	}
	return &user, nil
}

// Books は store.BookStore の MongoDB 実装です。
type Books struct {
	c *mongo.Collection
}

var _ store.BookStore = (*Books)(nil)

func (b *Books) Insert(ctx context.Context, book *store.Book) error {
	result, err := b.c.InsertOne(ctx, book)
	if err != nil {
		return store.Unavailable("failed to insert book", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		book.ID = oid
	}
	return nil
}

func (b *Books) List(ctx context.Context) ([]store.Book, error) {
	cursor, err := b.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, store.Unavailable("failed to list books", err)
	}
	defer cursor.Close(ctx)

	var books []store.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, store.Unavailable("failed to decode books", err)
	}
	return books, nil
}

func (b *Books) Get(ctx context.Context, id string) (*store.Book, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var book store.Book
	if err := b.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&book); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, store.NotFound("book not found")
		}
		return nil, store.Unavailable("failed to fetch book", err)
	}
	return &book, nil
}

func (b *Books) Update(ctx context.Context, id string, update store.BookUpdate) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	fields := bson.M{
		"title":  update.Title,
		"author": update.Author,
		"year":   update.Year,
	}
	if update.Cover != nil {
		fields["cover"] = *update.Cover
	}

	if _, err := b.c.UpdateByID(ctx, oid, bson.M{"$set": fields}); err != nil {
		return store.Unavailable("failed to update book", err)
	}
	return nil
}

func (b *Books) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	// 存在しないIDの削除はストア層の仕様どおり何もしない
	if _, err := b.c.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return store.Unavailable("failed to delete book", err)
	}
	return nil
}

func (b *Books) SetLifecycle(ctx context.Context, id string, lc store.Lifecycle) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"available": lc.Available,
		"issuedTo":  lc.IssuedTo,
	}}
	if _, err := b.c.UpdateByID(ctx, oid, update); err != nil {
		return store.Unavailable("failed to update book lifecycle", err)
	}
	return nil
}

func (b *Books) CoverPaths(ctx context.Context) ([]string, error) {
	values, err := b.c.Distinct(ctx, "cover", bson.M{"cover": bson.M{"$ne": ""}})
	if err != nil {
		return nil, store.Unavailable("failed to list cover paths", err)
	}

	paths := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			paths = append(paths, s)
		}
	}
	return paths, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, store.Invalid("invalid book id")
	}
	return oid, nil
}
