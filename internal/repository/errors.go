package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound は更新・削除対象の行が存在しないことを表す。
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail はusers.emailの一意制約違反を表す。
	// サービス層の事前チェックをすり抜けた同時登録はここで検出される。
	ErrDuplicateEmail = errors.New("email already exists")
)

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolation = "23505"

// isUniqueViolation はerrが指定制約の一意制約違反かどうかを返す。
// constraintが空の場合は制約名を問わない。
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// checkAffected はUPDATE/DELETEの影響行数が0の場合にErrNotFoundを返す。
func checkAffected(rowsAffected int64) error {
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
