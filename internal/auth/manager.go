// Package auth は登録・ログイン・セッション検証を提供します。
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/bhoomimiglani/library-management-system/internal/store"
)

const (
	// SessionCookieName はセッションクッキーの名前です。
	SessionCookieName = "library_session"

	sessionKeyUserID = "user_id"
)

// ContextUserKey は、ハンドラー間でログイン済みユーザーIDを共有するためのキーです。
const ContextUserKey = "auth.user"

// Manager は認証処理をまとめた構造体です。
type Manager struct {
	users      store.UserStore
	bcryptCost int
	compat     bool
}

// Options は Manager の動作設定です。
type Options struct {
	// BcryptCost はパスワードハッシュのコストファクターです。
	// 0 以下の場合は bcrypt.DefaultCost を使用します。
	BcryptCost int
	// CompatFlatErrors は失敗を 200 + プレーンテキストに平坦化します。
	CompatFlatErrors bool
}

// NewManager は認証マネージャーを作成します。
func NewManager(users store.UserStore, opts Options) *Manager {
	cost := opts.BcryptCost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Manager{
		users:      users,
		bcryptCost: cost,
		compat:     opts.CompatFlatErrors,
	}
}

func (m *Manager) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (m *Manager) verifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
