package store

import "fmt"

// Kind はストア操作の失敗種別を表します。
type Kind string

const (
	KindConflict         Kind = "CONFLICT"
	KindNotFound         Kind = "NOT_FOUND"
	KindValidationFailed Kind = "VALIDATION_FAILED"
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
)

// Error は種別付きのストアエラーです。
// HTTP層が Kind をステータスコードに対応付けます。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Conflict は一意性制約違反のエラーを作成します。
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NotFound は対象が存在しない場合のエラーを作成します。
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Invalid は入力が不正な場合のエラーを作成します。
func Invalid(message string) *Error {
	return &Error{Kind: KindValidationFailed, Message: message}
}

// Unavailable はストア自体の障害を包んだエラーを作成します。
func Unavailable(message string, err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: message, Err: err}
}
