package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/bhoomimiglani/library-management-system/internal/store"
)

// ShowRegister は GET /register のハンドラーです。
func (m *Manager) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", nil)
}

// Register は POST /register のハンドラーです。
// 成功時は /login にリダイレクトします。ユーザー名重複は専用メッセージで応答します。
func (m *Manager) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	hash, err := m.hashPassword(password)
	if err != nil {
		m.respondError(c, err)
		return
	}

	err = m.users.Create(c.Request.Context(), &store.User{
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		var serr *store.Error
		if errors.As(err, &serr) && serr.Kind == store.KindConflict {
			status := http.StatusConflict
			if m.compat {
				status = http.StatusOK
			}
			c.String(status, "Username already exists")
			return
		}
		m.respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

// ShowLogin は GET /login のハンドラーです。
func (m *Manager) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

// Login は POST /login のハンドラーです。
// 認証に成功するとセッションにユーザーIDを記録し / にリダイレクトします。
// ユーザー不在とパスワード不一致は同一メッセージで応答します（列挙攻撃対策の区別なし）。
func (m *Manager) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := m.users.FindByUsername(c.Request.Context(), username)
	if err != nil {
		var serr *store.Error
		if errors.As(err, &serr) && serr.Kind == store.KindNotFound {
			m.respondInvalidCredentials(c)
			return
		}
		m.respondError(c, err)
		return
	}

	if !m.verifyPassword(user.PasswordHash, password) {
		m.respondInvalidCredentials(c)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyUserID, user.ID.Hex())
	if err := session.Save(); err != nil {
		m.respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout は GET /logout のハンドラーです。
// セッションを無条件に破棄して /login にリダイレクトします。
func (m *Manager) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/login")
}

func (m *Manager) respondInvalidCredentials(c *gin.Context) {
	status := http.StatusUnauthorized
	if m.compat {
		status = http.StatusOK
	}
	c.String(status, "Invalid credentials")
}

func (m *Manager) respondError(c *gin.Context, err error) {
	if m.compat {
		c.String(http.StatusOK, "Error: "+err.Error())
		return
	}

	var serr *store.Error
	if errors.As(err, &serr) {
		c.String(statusForKind(serr.Kind), "Error: "+serr.Message)
		return
	}
	c.String(http.StatusInternalServerError, "Error: "+err.Error())
}

func statusForKind(kind store.Kind) int {
	switch kind {
	case store.KindConflict:
		return http.StatusConflict
	case store.KindNotFound:
		return http.StatusNotFound
	case store.KindValidationFailed:
		return http.StatusBadRequest
	case store.KindStoreUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
