package repository

import (
	"strconv"
	"testing"
	"time"

	"dbmis/internal/testutil"

	"github.com/alicebob/miniredis/v2"
)

const testJWTKey = "test-secret"

func newTestRepository(t *testing.T) (*Repository, *miniredis.Miniredis) {
	t.Helper()
	db := testutil.OpenSQLite(t)
	rdb, mr := testutil.Redis(t)
	return New(db, WithRedis(rdb), WithJWT(testJWTKey, time.Hour)), mr
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
