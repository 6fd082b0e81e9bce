// Package store は User / Book エンティティの永続化層の契約を定義します。
// 実装は mongodb サブパッケージにあります。
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User は登録済みユーザーを表します。登録後は不変です。
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password"`
}

// Lifecycle は書籍の貸出状態を表します。
// Available=false のとき IssuedTo は貸出先を保持し、
// Available=true のとき IssuedTo は空文字列です。
type Lifecycle struct {
	Available bool   `bson:"available"`
	IssuedTo  string `bson:"issuedTo"`
}

// Issued は貸出状態への遷移を返します。
// すでに貸出中の書籍に適用した場合は貸出先を上書きします（観測された仕様）。
func Issued(holder string) Lifecycle {
	return Lifecycle{Available: false, IssuedTo: holder}
}

// Returned は返却済み（貸出可能）状態への遷移を返します。
// 貸出可能な書籍に適用しても状態は変わらず、冪等です。
func Returned() Lifecycle {
	return Lifecycle{Available: true, IssuedTo: ""}
}

// Book は蔵書レコードを表します。
type Book struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Author    string             `bson:"author"`
	Year      int                `bson:"year"`
	Cover     string             `bson:"cover"`
	Lifecycle `bson:",inline"`
}

// NewBook は貸出可能状態の新しい書籍を作成します。
func NewBook(title, author string, year int, cover string) *Book {
	return &Book{
		Title:     title,
		Author:    author,
		Year:      year,
		Cover:     cover,
		Lifecycle: Returned(),
	}
}

// BookUpdate は編集時に上書きするフィールドを保持します。
// Cover が nil の場合、既存の表紙パスを維持します。
type BookUpdate struct {
	Title  string
	Author string
	Year   int
	Cover  *string
}

// UserStore はユーザーの永続化を提供します。
type UserStore interface {
	// Create はユーザーを作成します。ユーザー名が重複する場合は
	// KindConflict のエラーを返します。
	Create(ctx context.Context, user *User) error
	// FindByUsername はユーザー名でユーザーを検索します。
	// 見つからない場合は KindNotFound のエラーを返します。
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// BookStore は蔵書の永続化を提供します。
type BookStore interface {
	// Insert は書籍を作成し、生成されたIDを book.ID に設定します。
	Insert(ctx context.Context, book *Book) error
	// List はすべての書籍をストア順で返します。
	List(ctx context.Context) ([]Book, error)
	// Get はIDで書籍を取得します。見つからない場合は KindNotFound を返します。
	Get(ctx context.Context, id string) (*Book, error)
	// Update はタイトル・著者・年を無条件で上書きします。
	// update.Cover が非nilの場合のみ表紙パスも上書きします。
	Update(ctx context.Context, id string, update BookUpdate) error
	// Delete はIDで書籍を削除します。存在しないIDは何もしません。
	Delete(ctx context.Context, id string) error
	// SetLifecycle は貸出状態のみを更新します。
	SetLifecycle(ctx context.Context, id string, lc Lifecycle) error
	// CoverPaths は書籍が参照しているすべての表紙パスを返します。
	CoverPaths(ctx context.Context) ([]string, error)
}
