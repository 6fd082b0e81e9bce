// Package book は蔵書のCRUDと貸出・返却のHTTPハンドラーを提供します。
package book

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bhoomimiglani/library-management-system/internal/store"
)

// CoverStorage は表紙画像の保存先が実装します。
type CoverStorage interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
}

// Options はハンドラー共通の動作設定です。
type Options struct {
	// CompatFlatErrors は失敗を 200 + プレーンテキストに平坦化します。
	CompatFlatErrors bool
}

// ListHandler は GET / のハンドラーを返します。
// 全書籍をストア順のまま一覧ページに描画します。
func ListHandler(books store.BookStore, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := books.List(c.Request.Context())
		if err != nil {
			respondWithError(c, opts, err)
			return
		}
		c.HTML(http.StatusOK, "index.html", gin.H{"Books": all})
	}
}

// AddFormHandler は GET /add のハンドラーを返します。
func AddFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "add.html", nil)
	}
}

// AddHandler は POST /add のハンドラーを返します。
// 表紙ファイルは任意で、省略時は空パスで登録されます。
func AddHandler(books store.BookStore, covers CoverStorage, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		cover, err := saveCoverIfPresent(c, covers)
		if err != nil {
			respondWithError(c, opts, err)
			return
		}

		b := store.NewBook(
			c.PostForm("title"),
			c.PostForm("author"),
			parseYear(c.PostForm("year")),
			cover,
		)
		if err := books.Insert(c.Request.Context(), b); err != nil {
			respondWithError(c, opts, err)
			return
		}

		c.Redirect(http.StatusFound, "/")
	}
}

// EditFormHandler は GET /edit/:id のハンドラーを返します。
func EditFormHandler(books store.BookStore, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := books.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondWithError(c, opts, err)
			return
		}
		c.HTML(http.StatusOK, "edit.html", gin.H{"Book": b})
	}
}

// EditHandler は POST /edit/:id のハンドラーを返します。
// タイトル・著者・年は無条件で上書きし、表紙は新しいファイルが
// アップロードされた場合のみ差し替えます。
func EditHandler(books store.BookStore, covers CoverStorage, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		update := store.BookUpdate{
			Title:  c.PostForm("title"),
			Author: c.PostForm("author"),
			Year:   parseYear(c.PostForm("year")),
		}

		cover, err := saveCoverIfPresent(c, covers)
		if err != nil {
			respondWithError(c, opts, err)
			return
		}
		if cover != "" {
			update.Cover = &cover
		}

		if err := books.Update(c.Request.Context(), c.Param("id"), update); err != nil {
			respondWithError(c, opts, err)
			return
		}

		c.Redirect(http.StatusFound, "/")
	}
}

// DeleteHandler は GET /delete/:id のハンドラーを返します。
// 存在しないIDでも成功扱いでリダイレクトします。
func DeleteHandler(books store.BookStore, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := books.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondWithError(c, opts, err)
			return
		}
		c.Redirect(http.StatusFound, "/")
	}
}

// IssueHandler は POST /issue/:id のハンドラーを返します。
// 貸出先はフォームの user フィールドをそのまま記録します。
// 貸出中の書籍への再貸出は貸出先を上書きします（観測された仕様）。
func IssueHandler(books store.BookStore, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		lc := store.Issued(c.PostForm("user"))
		if err := books.SetLifecycle(c.Request.Context(), c.Param("id"), lc); err != nil {
			respondWithError(c, opts, err)
			return
		}
		c.Redirect(http.StatusFound, "/")
	}
}

// ReturnHandler は GET /return/:id のハンドラーを返します。
// 貸出可能な書籍への返却は状態を変えず、冪等です。
func ReturnHandler(books store.BookStore, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := books.SetLifecycle(c.Request.Context(), c.Param("id"), store.Returned()); err != nil {
			respondWithError(c, opts, err)
			return
		}
		c.Redirect(http.StatusFound, "/")
	}
}

// saveCoverIfPresent は cover フィールドのファイルが存在すれば保存し、
// 公開パスを返します。ファイルがない場合は空文字列を返します。
func saveCoverIfPresent(c *gin.Context, covers CoverStorage) (string, error) {
	fh, err := c.FormFile("cover")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	return covers.Save(c.Request.Context(), fh)
}

func parseYear(raw string) int {
	// 旧実装は年を検証しないため、数値でない入力は 0 に落とす
	year, _ := strconv.Atoi(raw)
	return year
}

func respondWithError(c *gin.Context, opts Options, err error) {
	if opts.CompatFlatErrors {
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
