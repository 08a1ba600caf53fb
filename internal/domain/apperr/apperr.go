// Package apperr はユースケース全体で共有するエラー種別を定義する
package apperr

import (
	"errors"
	"fmt"
)

// Kind はエラー種別
type Kind string

const (
	KindRetrieval       Kind = "retrieval"        // 取得元ページ・フラグメントへの通信失敗
	KindExtractionEmpty Kind = "extraction_empty" // 解析は完了したがメニューが0件
	KindInvalidArgument Kind = "invalid_argument" // 入力値の不正
)

// String はKindの文字列表現を返す
func (k Kind) String() string {
	return string(k)
}

// Error は種別付きのエラー
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error はエラーメッセージを返す
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap は原因エラーを返す
func (e *Error) Unwrap() error {
	return e.Err
}

// Retrieval は通信失敗エラーを作成
func Retrieval(message string, cause error) *Error {
	return &Error{Kind: KindRetrieval, Message: message, Err: cause}
}

// ExtractionEmpty はメニュー0件エラーを作成
func ExtractionEmpty(message string) *Error {
	return &Error{Kind: KindExtractionEmpty, Message: message}
}

// InvalidArgument は入力値不正エラーを作成
func InvalidArgument(message string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: message}
}

// KindOf はエラーチェーンからKindを取り出す
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

// Is はerrが指定Kindかを判定
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
